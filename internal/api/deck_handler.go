package api

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/flashdeck-api/internal/api/shared"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// DeckHandler holds dependencies for deck-related HTTP handlers.
type DeckHandler struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(repo store.Repository, logger *slog.Logger) *DeckHandler {
	if repo == nil {
		panic("repo cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC
	}
	return &DeckHandler{
		repo:   repo,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /api/decks. Decks come back oldest first; the
// contract does not order them, so presentation order is fixed here.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.repo.ListDecks(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	sort.Slice(decks, func(i, j int) bool {
		return decks[i].CreatedAt.Before(decks[j].CreatedAt)
	})

	out := make([]DeckResponse, 0, len(decks))
	for _, d := range decks {
		out = append(out, NewDeckResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "deck name is required")
		return
	}

	deck, err := h.repo.CreateDeck(r.Context(), req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("trace_id", shared.GetTraceID(r.Context())))

	shared.RespondWithJSON(w, r, http.StatusCreated, NewDeckResponse(*deck))
}

// DeleteDeck handles DELETE /api/decks/{id}. Deleting a deck also removes
// its cards and their review history.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck ID")
		return
	}

	if err := h.repo.DeleteDeck(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("deck deleted",
		slog.String("deck_id", id.String()),
		slog.String("trace_id", shared.GetTraceID(r.Context())))

	w.WriteHeader(http.StatusNoContent)
}

// ListDeckCards handles GET /api/decks/{id}/cards. Supports optional
// filtering with ?q= (text search over front, back, hint, and tags) and
// ?tag= (exact tag match).
func (h *DeckHandler) ListDeckCards(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck ID")
		return
	}

	// Confirm the deck exists so an unknown ID is a 404, not an empty list.
	if _, err := h.repo.GetDeck(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	cards, err := h.repo.ListCards(r.Context(), &id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	cards = applyCardFilters(cards, r.URL.Query().Get("q"), r.URL.Query().Get("tag"))

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponses(cards, time.Now().UTC()))
}
