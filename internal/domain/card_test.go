package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()
	card, err := domain.NewCard(deckID, "What is the capital of France?", "Paris")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, deckID, card.DeckID)
	assert.Equal(t, domain.EaseFactorDefault, card.EF)
	assert.Equal(t, 0, card.Reps)
	assert.True(t, card.IsNew())
	assert.Equal(t, card.CreatedAt, card.DueAt)
	assert.Nil(t, card.LastGrade)
	assert.False(t, card.Suspended)
}

func TestNewCard_Validation(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()

	_, err := domain.NewCard(deckID, "", "back")
	assert.ErrorIs(t, err, domain.ErrCardFrontEmpty)

	_, err = domain.NewCard(deckID, "front", "   ")
	assert.ErrorIs(t, err, domain.ErrCardBackEmpty)

	_, err = domain.NewCard(uuid.Nil, "front", "back")
	assert.ErrorIs(t, err, domain.ErrCardDeckIDEmpty)
}

func TestCardDueStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		reps  int
		dueAt time.Time
		want  domain.DueStatus
	}{
		{
			name:  "never reviewed is new regardless of due time",
			reps:  0,
			dueAt: now.Add(-48 * time.Hour),
			want:  domain.DueStatusNew,
		},
		{
			name:  "due in the future",
			reps:  3,
			dueAt: now.Add(time.Hour),
			want:  domain.DueStatusFuture,
		},
		{
			name:  "due exactly now",
			reps:  3,
			dueAt: now,
			want:  domain.DueStatusDueToday,
		},
		{
			name:  "due less than a day ago",
			reps:  3,
			dueAt: now.Add(-23 * time.Hour),
			want:  domain.DueStatusDueToday,
		},
		{
			name:  "overdue exactly 24 hours is lapsed",
			reps:  3,
			dueAt: now.Add(-24 * time.Hour),
			want:  domain.DueStatusLapsed,
		},
		{
			name:  "overdue several days is lapsed",
			reps:  3,
			dueAt: now.Add(-96 * time.Hour),
			want:  domain.DueStatusLapsed,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			card := domain.Card{Reps: tc.reps, DueAt: tc.dueAt}
			assert.Equal(t, tc.want, card.DueStatus(now))
		})
	}
}

func TestCardTags(t *testing.T) {
	t.Parallel()

	card := domain.Card{Tags: []string{}}

	card.AddTag("geography")
	card.AddTag("Geography") // duplicate, case-insensitive
	card.AddTag("europe")
	assert.Equal(t, []string{"geography", "europe"}, card.Tags)

	card.RemoveTag("GEOGRAPHY")
	assert.Equal(t, []string{"europe"}, card.Tags)

	card.RemoveTag("not-present")
	assert.Equal(t, []string{"europe"}, card.Tags)
}
