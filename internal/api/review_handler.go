package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/flashdeck-api/internal/api/shared"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/filters"
	"github.com/phrazzld/flashdeck-api/internal/service"
)

// ReviewHandler holds dependencies for review and queue HTTP handlers.
type ReviewHandler struct {
	svc    *service.ReviewService
	logger *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if svc == nil {
		panic("review service cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC
	}
	return &ReviewHandler{
		svc:    svc,
		logger: logger.With(slog.String("component", "review_handler")),
	}
}

// DueQueue handles GET /api/due. Query parameters:
//
//	deck           deck ID or name; omit for all decks
//	include_new    include never-reviewed cards (default true)
//	include_lapsed include cards at least a day overdue (default true)
//	max            cap on queue length; 0 means no cap
func (h *ReviewHandler) DueQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var deckID *uuid.UUID
	if selector := q.Get("deck"); selector != "" {
		deck, err := h.svc.ResolveDeck(r.Context(), selector)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		deckID = &deck.ID
	}

	includeNew, err := boolParam(q.Get("include_new"), true)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"include_new must be a boolean")
		return
	}
	includeLapsed, err := boolParam(q.Get("include_lapsed"), true)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"include_lapsed must be a boolean")
		return
	}

	opts := filters.QueueOptions{
		IncludeNew:    includeNew,
		IncludeLapsed: includeLapsed,
	}
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"max must be a non-negative integer")
			return
		}
		opts.Max = n
	}

	cards, err := h.svc.DueQueue(r.Context(), deckID, opts)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponses(cards, time.Now().UTC()))
}

// SubmitReview handles POST /api/review.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"card_id and a grade between 1 and 3 are required")
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid card ID")
		return
	}

	card, review, err := h.svc.SubmitReview(r.Context(), cardID, domain.Grade(req.Grade))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("review submitted",
		slog.String("card_id", cardID.String()),
		slog.Int("grade", req.Grade),
		slog.Int("interval_days", card.IntervalDays),
		slog.String("trace_id", shared.GetTraceID(r.Context())))

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitReviewResponse{
		Card:   NewCardResponse(*card, time.Now().UTC()),
		Review: NewReviewResponse(*review),
	})
}

// boolParam parses a query flag, using def when the flag is absent. A
// present but unparseable value is an error, like a malformed max.
func boolParam(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
