package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bounds for the easiness factor. Every scheduling step clamps the ease
// factor into [EaseFactorMin, EaseFactorMax].
const (
	EaseFactorMin     = 1.3
	EaseFactorMax     = 2.8
	EaseFactorDefault = 2.5
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front side is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back side is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")
)

// DueStatus classifies a card's readiness for review relative to a
// reference time. It is derived, never stored.
type DueStatus string

const (
	// DueStatusNew marks a card that has never been reviewed (reps == 0).
	// DueAt is meaningless until the first review.
	DueStatusNew DueStatus = "new"

	// DueStatusDueToday marks a card whose due time passed less than 24
	// hours ago.
	DueStatusDueToday DueStatus = "due_today"

	// DueStatusLapsed marks a card whose due time passed 24 hours ago or
	// more.
	DueStatusLapsed DueStatus = "lapsed"

	// DueStatusFuture marks a card not yet due.
	DueStatusFuture DueStatus = "future"
)

// Card is a front/back flashcard together with its spaced-repetition
// scheduling state. Scheduling fields (Reps, IntervalDays, EF, DueAt,
// LastGrade, LastReviewedAt) are mutated only by srs.ApplyGrade; content
// fields change only through explicit edits.
type Card struct {
	ID     uuid.UUID `json:"id"`
	DeckID uuid.UUID `json:"deck_id"`
	Front  string    `json:"front"`
	Back   string    `json:"back"`
	Hint   string    `json:"hint,omitempty"`
	Tags   []string  `json:"tags"`

	Reps           int        `json:"reps"`
	IntervalDays   int        `json:"interval_days"`
	EF             float64    `json:"ef"`
	DueAt          time.Time  `json:"due_at"`
	LastGrade      *Grade     `json:"last_grade,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	Suspended      bool       `json:"suspended"`

	CreatedAt time.Time `json:"created_at"`
}

// NewCard creates a Card in the given deck with a fresh ID, the default
// ease factor, and a due time of "now" so that new cards interleave with
// due cards by creation order once included in a queue.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     front,
		Back:      back,
		Tags:      []string{},
		EF:        EaseFactorDefault,
		DueAt:     now,
		CreatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrCardBackEmpty
	}

	return nil
}

// IsNew reports whether the card has never been reviewed.
func (c *Card) IsNew() bool {
	return c.Reps == 0
}

// DueStatus derives the card's status relative to now. The order of the
// checks is contractual: New wins over everything, then Future, then the
// 24-hour boundary separates Lapsed from DueToday.
func (c *Card) DueStatus(now time.Time) DueStatus {
	if c.IsNew() {
		return DueStatusNew
	}
	if c.DueAt.After(now) {
		return DueStatusFuture
	}
	if now.Sub(c.DueAt) >= 24*time.Hour {
		return DueStatusLapsed
	}
	return DueStatusDueToday
}

// AddTag appends a tag unless an equal tag (case-insensitive) is already
// present. Tag order is preserved.
func (c *Card) AddTag(tag string) {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return
		}
	}
	c.Tags = append(c.Tags, tag)
}

// RemoveTag deletes every tag equal to the given one, case-insensitively.
func (c *Card) RemoveTag(tag string) {
	kept := c.Tags[:0]
	for _, t := range c.Tags {
		if !strings.EqualFold(t, tag) {
			kept = append(kept, t)
		}
	}
	c.Tags = kept
}
