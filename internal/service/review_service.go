// Package service orchestrates domain logic over the store.Repository
// contract: grading cards, building review queues, resolving deck
// selectors, and aggregating statistics. Handlers stay thin; everything a
// front-end shares lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/domain/srs"
	"github.com/phrazzld/flashdeck-api/internal/filters"
	"github.com/phrazzld/flashdeck-api/internal/stats"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// ReviewService coordinates grading and queue construction for one
// repository backend.
type ReviewService struct {
	repo   store.Repository
	logger *slog.Logger
}

// NewReviewService creates a ReviewService. The repository is required; if
// logger is nil, the default logger is used.
func NewReviewService(repo store.Repository, logger *slog.Logger) *ReviewService {
	if repo == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("repo cannot be nil for ReviewService")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewService{
		repo:   repo,
		logger: logger.With(slog.String("component", "review_service")),
	}
}

// SubmitReview grades a card: the scheduler advances the card's state, the
// card is persisted, then the audit review is persisted.
//
// The two persist steps are not one transaction across the contract. If the
// card update succeeds and the review insert fails, the card keeps its new
// schedule with no matching audit record; this partial-failure state is
// accepted and surfaced as the insert error, not rolled back.
func (s *ReviewService) SubmitReview(ctx context.Context, cardID uuid.UUID, grade domain.Grade) (*domain.Card, *domain.Review, error) {
	if !grade.IsValid() {
		return nil, nil, fmt.Errorf("%w: grade %d", domain.ErrInvalidGrade, int(grade))
	}

	card, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}

	outcome := srs.ApplyGrade(*card, grade, time.Now().UTC())

	updated, err := s.repo.UpdateCard(ctx, &outcome.Card)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.InsertReview(ctx, &outcome.Review); err != nil {
		s.logger.Error("card updated but review insert failed; audit record is missing",
			slog.String("card_id", cardID.String()),
			slog.String("grade", grade.String()),
			slog.String("error", err.Error()))
		return nil, nil, err
	}

	s.logger.Debug("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("grade", grade.String()),
		slog.Int("interval_days", updated.IntervalDays))

	return updated, &outcome.Review, nil
}

// DueQueue builds the shared review queue: the deck's (or all) cards run
// through the filters.BuildQueue policy at the current time.
func (s *ReviewService) DueQueue(ctx context.Context, deckID *uuid.UUID, opts filters.QueueOptions) ([]domain.Card, error) {
	cards, err := s.repo.ListCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return filters.BuildQueue(cards, time.Now().UTC(), opts), nil
}

// ResolveDeck accepts either a deck ID or a deck name (case-insensitive)
// and returns the matching deck. Returns store.ErrDeckNotFound when nothing
// matches.
func (s *ReviewService) ResolveDeck(ctx context.Context, selector string) (*domain.Deck, error) {
	if id, err := uuid.Parse(selector); err == nil {
		deck, err := s.repo.GetDeck(ctx, id)
		if err == nil {
			return deck, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		// An ID-shaped selector may still be a deck name; fall through.
	}

	decks, err := s.repo.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range decks {
		if strings.EqualFold(d.Name, selector) {
			deck := d
			return &deck, nil
		}
	}

	return nil, store.ErrDeckNotFound
}

// DeckStats aggregates the review history of one deck (or all decks when
// deckID is nil) into a summary plus the current daily streak.
func (s *ReviewService) DeckStats(ctx context.Context, deckID *uuid.UUID) (stats.Summary, int, error) {
	cards, err := s.repo.ListCards(ctx, deckID)
	if err != nil {
		return stats.Summary{}, 0, err
	}

	var reviews []domain.Review
	for _, c := range cards {
		rs, err := s.repo.ListReviewsForCard(ctx, c.ID)
		if err != nil {
			return stats.Summary{}, 0, err
		}
		reviews = append(reviews, rs...)
	}

	summary := stats.Summarize(reviews)
	streak := stats.DailyStreak(reviews, time.Now().UTC())
	return summary, streak, nil
}
