package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/flashdeck-api/internal/api"
	apiMiddleware "github.com/phrazzld/flashdeck-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	deckHandler := api.NewDeckHandler(app.repo, app.logger)
	cardHandler := api.NewCardHandler(app.repo, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	statsHandler := api.NewStatsHandler(app.reviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Deck endpoints
		r.Get("/decks", deckHandler.ListDecks)
		r.Post("/decks", deckHandler.CreateDeck)
		r.Delete("/decks/{id}", deckHandler.DeleteDeck)
		r.Get("/decks/{id}/cards", deckHandler.ListDeckCards)

		// Card endpoints
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Put("/cards/{id}", cardHandler.UpdateCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.Get("/cards/{id}/reviews", cardHandler.ListCardReviews)

		// Review endpoints
		r.Get("/due", reviewHandler.DueQueue)
		r.Post("/review", reviewHandler.SubmitReview)

		// Statistics
		r.Get("/stats", statsHandler.GetStats)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
