package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/flashdeck-api/internal/api/shared"
	"github.com/phrazzld/flashdeck-api/internal/service"
	"github.com/phrazzld/flashdeck-api/internal/stats"
)

// StatsHandler holds dependencies for the statistics HTTP handler.
type StatsHandler struct {
	svc    *service.ReviewService
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc *service.ReviewService, logger *slog.Logger) *StatsHandler {
	if svc == nil {
		panic("review service cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		panic("logger cannot be nil") // ALLOW-PANIC
	}
	return &StatsHandler{
		svc:    svc,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /api/stats. An optional ?deck= parameter (ID or
// name) restricts the summary to one deck.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var deckID *uuid.UUID
	if selector := r.URL.Query().Get("deck"); selector != "" {
		deck, err := h.svc.ResolveDeck(r.Context(), selector)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		deckID = &deck.ID
	}

	summary, streak, err := h.svc.DeckStats(r.Context(), deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newStatsResponse(summary, streak))
}

func newStatsResponse(summary stats.Summary, streak int) StatsResponse {
	perDay := make(map[string]StatsTotals, len(summary.PerDay))
	for day, t := range summary.PerDay {
		perDay[day] = newStatsTotals(t)
	}
	return StatsResponse{
		Totals: newStatsTotals(summary.Totals),
		PerDay: perDay,
		Streak: streak,
	}
}

func newStatsTotals(t stats.Totals) StatsTotals {
	return StatsTotals{
		Total:    t.Total,
		Hard:     t.Hard,
		Medium:   t.Medium,
		Easy:     t.Easy,
		Accuracy: t.Accuracy(),
	}
}
