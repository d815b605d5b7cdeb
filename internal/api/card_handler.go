package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/flashdeck-api/internal/api/shared"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/filters"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// CardHandler holds dependencies for card-related HTTP handlers.
type CardHandler struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(repo store.Repository, logger *slog.Logger) *CardHandler {
	if repo == nil {
		panic("repo cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC
	}
	return &CardHandler{
		repo:   repo,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"deck_id, front, and back are required")
		return
	}

	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid deck ID")
		return
	}

	card, err := h.repo.AddCard(r.Context(), deckID, req.Front, req.Back, req.Hint, req.Tags)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.String("trace_id", shared.GetTraceID(r.Context())))

	shared.RespondWithJSON(w, r, http.StatusCreated, NewCardResponse(*card, time.Now().UTC()))
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card ID")
		return
	}

	card, err := h.repo.GetCard(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(*card, time.Now().UTC()))
}

// UpdateCard handles PUT /api/cards/{id}. Only the fields present in the
// request body change; scheduling state is never editable through this
// endpoint.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card ID")
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	card, err := h.repo.GetCard(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	updated := *card
	if req.Front != nil {
		updated.Front = *req.Front
	}
	if req.Back != nil {
		updated.Back = *req.Back
	}
	if req.Hint != nil {
		updated.Hint = *req.Hint
	}
	for _, tag := range req.AddTags {
		updated.AddTag(tag)
	}
	for _, tag := range req.RemoveTags {
		updated.RemoveTag(tag)
	}
	if req.Suspended != nil {
		updated.Suspended = *req.Suspended
	}

	if err := updated.Validate(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "front and back cannot be empty")
		return
	}

	if _, err := h.repo.UpdateCard(r.Context(), &updated); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(updated, time.Now().UTC()))
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card ID")
		return
	}

	if err := h.repo.DeleteCard(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("card deleted",
		slog.String("card_id", id.String()),
		slog.String("trace_id", shared.GetTraceID(r.Context())))

	w.WriteHeader(http.StatusNoContent)
}

// ListCardReviews handles GET /api/cards/{id}/reviews.
func (h *CardHandler) ListCardReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card ID")
		return
	}

	reviews, err := h.repo.ListReviewsForCard(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, NewReviewResponse(rv))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// applyCardFilters narrows a card list by the q and tag query parameters.
func applyCardFilters(cards []domain.Card, query, tag string) []domain.Card {
	cards = filters.ByText(cards, query)
	if tag != "" {
		cards = filters.ByTag(cards, tag)
	}
	return cards
}
