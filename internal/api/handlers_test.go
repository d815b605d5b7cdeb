package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/api"
	"github.com/phrazzld/flashdeck-api/internal/platform/memstore"
	"github.com/phrazzld/flashdeck-api/internal/service"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// newTestServer wires the full route table over a fresh in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, store.Repository) {
	t.Helper()

	repo := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewReviewService(repo, logger)

	deckHandler := api.NewDeckHandler(repo, logger)
	cardHandler := api.NewCardHandler(repo, logger)
	reviewHandler := api.NewReviewHandler(svc, logger)
	statsHandler := api.NewStatsHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/decks", deckHandler.ListDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Delete("/decks/{id}", deckHandler.DeleteDeck)
		r.Get("/decks/{id}/cards", deckHandler.ListDeckCards)
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Put("/cards/{id}", cardHandler.UpdateCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.Get("/cards/{id}/reviews", cardHandler.ListCardReviews)
		r.Get("/due", reviewHandler.DueQueue)
		r.Post("/review", reviewHandler.SubmitReview)
		r.Get("/stats", statsHandler.GetStats)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func createDeck(t *testing.T, srv *httptest.Server, name string) api.DeckResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/decks",
		map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var deck api.DeckResponse
	require.NoError(t, json.Unmarshal(body, &deck))
	return deck
}

func createCard(t *testing.T, srv *httptest.Server, deckID, front, back string) api.CardResponse {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{
		"deck_id": deckID,
		"front":   front,
		"back":    back,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var card api.CardResponse
	require.NoError(t, json.Unmarshal(body, &card))
	return card
}

func TestDeckEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	deck := createDeck(t, srv, "Spanish")
	assert.Equal(t, "Spanish", deck.Name)

	// Duplicate names conflict, case-insensitively.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/decks",
		map[string]string{"name": "SPANISH"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Blank name is rejected before the store is touched.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/decks",
		map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/decks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decks []api.DeckResponse
	require.NoError(t, json.Unmarshal(body, &decks))
	assert.Len(t, decks, 1)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/decks/"+deck.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/decks/"+deck.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/decks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCardEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	deck := createDeck(t, srv, "Spanish")

	card := createCard(t, srv, deck.ID.String(), "hola", "hello")
	assert.Equal(t, "new", card.DueStatus)
	assert.Equal(t, 2.5, card.EaseFactor)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/cards/"+card.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got api.CardResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "hola", got.Front)

	// Unknown deck on create.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{
		"deck_id": "6d2f1d5e-0000-4000-8000-000000000000",
		"front":   "x",
		"back":    "y",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing front.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/cards", map[string]interface{}{
		"deck_id": deck.ID.String(),
		"back":    "y",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/cards/"+card.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/cards/"+card.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateCardEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	deck := createDeck(t, srv, "Spanish")
	card := createCard(t, srv, deck.ID.String(), "hola", "helo")

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/cards/"+card.ID.String(),
		map[string]interface{}{
			"back":      "hello",
			"add_tags":  []string{"basics", "Basics", "greetings"},
			"suspended": true,
		})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var updated api.CardResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "hello", updated.Back)
	assert.Equal(t, []string{"basics", "greetings"}, updated.Tags)
	assert.True(t, updated.Suspended)

	// Remove a tag, case-insensitively.
	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/cards/"+card.ID.String(),
		map[string]interface{}{"remove_tags": []string{"BASICS"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, []string{"greetings"}, updated.Tags)

	// Blanking out the front is rejected.
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/cards/"+card.ID.String(),
		map[string]interface{}{"front": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReviewFlow(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	deck := createDeck(t, srv, "Spanish")
	card := createCard(t, srv, deck.ID.String(), "hola", "hello")

	// The new card is in the default queue.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/due", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []api.CardResponse
	require.NoError(t, json.Unmarshal(body, &queue))
	require.Len(t, queue, 1)
	assert.Equal(t, card.ID, queue[0].ID)

	// Grade it Easy.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/review", map[string]interface{}{
		"card_id": card.ID.String(),
		"grade":   3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var result api.SubmitReviewResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 1, result.Card.Reps)
	assert.Equal(t, "future", result.Card.DueStatus)
	assert.Equal(t, 3, int(result.Review.Grade))

	// The card left the queue.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/due", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &queue))
	assert.Empty(t, queue)

	// The review shows in the card's history.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/cards/"+card.ID.String()+"/reviews", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []api.ReviewResponse
	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 1)
	assert.Equal(t, result.Review.ID, history[0].ID)

	// An out-of-range grade is rejected.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/review", map[string]interface{}{
		"card_id": card.ID.String(),
		"grade":   4,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDueQueue_DeckSelectorAndOptions(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	spanish := createDeck(t, srv, "Spanish")
	french := createDeck(t, srv, "French")
	createCard(t, srv, spanish.ID.String(), "hola", "hello")
	createCard(t, srv, french.ID.String(), "bonjour", "hello")

	// Deck by name, case-insensitive.
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/due?deck=spanish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue []api.CardResponse
	require.NoError(t, json.Unmarshal(body, &queue))
	require.Len(t, queue, 1)
	assert.Equal(t, "hola", queue[0].Front)

	// Excluding new cards empties the queue of never-reviewed cards.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/due?include_new=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &queue))
	assert.Empty(t, queue)

	// Max caps the queue.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/due?max=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &queue))
	assert.Len(t, queue, 1)

	// Unknown deck selector.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/due?deck=Klingon", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Negative max is rejected.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/due?max=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed boolean flags are rejected, not silently defaulted.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/due?include_new=xyz", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/due?include_lapsed=xyz", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeckCardsEndpoint_Filters(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	deck := createDeck(t, srv, "Spanish")
	createCard(t, srv, deck.ID.String(), "hola", "hello")
	verb := createCard(t, srv, deck.ID.String(), "ir", "to go")

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/cards/"+verb.ID.String(),
		map[string]interface{}{"add_tags": []string{"verbs"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/api/decks/"+deck.ID.String()+"/cards?q=hola", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []api.CardResponse
	require.NoError(t, json.Unmarshal(body, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "hola", cards[0].Front)

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/api/decks/"+deck.ID.String()+"/cards?tag=verbs", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "ir", cards[0].Front)

	// Unknown deck is a 404, not an empty list.
	resp, _ = doJSON(t, http.MethodGet,
		srv.URL+"/api/decks/6d2f1d5e-0000-4000-8000-000000000000/cards", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	deck := createDeck(t, srv, "Spanish")
	card := createCard(t, srv, deck.ID.String(), "hola", "hello")

	for _, grade := range []int{3, 3, 1} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/review", map[string]interface{}{
			"card_id": card.ID.String(),
			"grade":   grade,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/stats?deck=Spanish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got api.StatsResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 3, got.Totals.Total)
	assert.Equal(t, 2, got.Totals.Easy)
	assert.Equal(t, 1, got.Totals.Hard)
	assert.InDelta(t, 2.0/3.0, got.Totals.Accuracy, 1e-9)
	assert.Equal(t, 1, got.Streak)
	assert.Len(t, got.PerDay, 1)
}
