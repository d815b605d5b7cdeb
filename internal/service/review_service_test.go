package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/domain"
	"github.com/phrazzld/flashdeck-api/internal/filters"
	"github.com/phrazzld/flashdeck-api/internal/platform/memstore"
	"github.com/phrazzld/flashdeck-api/internal/service"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

func newFixture(t *testing.T) (*service.ReviewService, store.Repository, *domain.Deck, *domain.Card) {
	t.Helper()

	ctx := context.Background()
	repo := memstore.New()

	deck, err := repo.CreateDeck(ctx, "Spanish")
	require.NoError(t, err)
	card, err := repo.AddCard(ctx, deck.ID, "hola", "hello", "", nil)
	require.NoError(t, err)

	return service.NewReviewService(repo, nil), repo, deck, card
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, _, card := newFixture(t)

	updated, review, err := svc.SubmitReview(ctx, card.ID, domain.GradeEasy)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Reps)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.InDelta(t, 2.6, updated.EF, 1e-9)
	assert.Equal(t, card.ID, review.CardID)
	assert.Equal(t, domain.GradeEasy, review.Grade)

	// Both the card update and the audit record are persisted.
	stored, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Reps)

	reviews, err := repo.ListReviewsForCard(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)
}

func TestSubmitReview_InvalidGrade(t *testing.T) {
	t.Parallel()

	svc, _, _, card := newFixture(t)

	_, _, err := svc.SubmitReview(context.Background(), card.ID, domain.Grade(0))
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
}

func TestSubmitReview_CardNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newFixture(t)

	_, _, err := svc.SubmitReview(context.Background(), uuid.New(), domain.GradeMedium)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

// failingReviewRepo lets the card update through but refuses the review
// insert, exercising the accepted partial-failure path.
type failingReviewRepo struct {
	store.Repository
}

func (r *failingReviewRepo) InsertReview(ctx context.Context, review *domain.Review) error {
	return fmt.Errorf("%w: disk full", store.ErrStorage)
}

func TestSubmitReview_ReviewInsertFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memstore.New()
	deck, err := repo.CreateDeck(ctx, "Spanish")
	require.NoError(t, err)
	card, err := repo.AddCard(ctx, deck.ID, "hola", "hello", "", nil)
	require.NoError(t, err)

	svc := service.NewReviewService(&failingReviewRepo{Repository: repo}, nil)

	_, _, err = svc.SubmitReview(ctx, card.ID, domain.GradeEasy)
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))

	// The card keeps its advanced schedule; only the audit record is lost.
	stored, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Reps)
}

func TestDueQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, repo, deck, card := newFixture(t)

	// A second deck whose card must not appear in a deck-scoped queue.
	other, err := repo.CreateDeck(ctx, "French")
	require.NoError(t, err)
	_, err = repo.AddCard(ctx, other.ID, "bonjour", "hello", "", nil)
	require.NoError(t, err)

	queue, err := svc.DueQueue(ctx, &deck.ID, filters.QueueOptions{IncludeNew: true, IncludeLapsed: true})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, card.ID, queue[0].ID)

	all, err := svc.DueQueue(ctx, nil, filters.QueueOptions{IncludeNew: true, IncludeLapsed: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolveDeck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, deck, _ := newFixture(t)

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		got, err := svc.ResolveDeck(ctx, deck.ID.String())
		require.NoError(t, err)
		assert.Equal(t, deck.ID, got.ID)
	})

	t.Run("by name case-insensitive", func(t *testing.T) {
		t.Parallel()

		got, err := svc.ResolveDeck(ctx, "SPANISH")
		require.NoError(t, err)
		assert.Equal(t, deck.ID, got.ID)
	})

	t.Run("unknown selector", func(t *testing.T) {
		t.Parallel()

		_, err := svc.ResolveDeck(ctx, "Klingon")
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("id-shaped name misses", func(t *testing.T) {
		t.Parallel()

		_, err := svc.ResolveDeck(ctx, uuid.New().String())
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})
}

func TestDeckStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, deck, card := newFixture(t)

	now := time.Now().UTC()
	_, _, err := svc.SubmitReview(ctx, card.ID, domain.GradeEasy)
	require.NoError(t, err)
	_, _, err = svc.SubmitReview(ctx, card.ID, domain.GradeHard)
	require.NoError(t, err)

	summary, streak, err := svc.DeckStats(ctx, &deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Totals.Total)
	assert.Equal(t, 1, summary.Totals.Easy)
	assert.Equal(t, 1, summary.Totals.Hard)
	assert.Equal(t, 1, streak)
	assert.Contains(t, summary.PerDay, now.Format("2006-01-02"))
}

func TestNewReviewService_NilRepoPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		service.NewReviewService(nil, nil)
	})
}
