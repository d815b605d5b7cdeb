package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// CreateDeckRequest is the request body for creating a deck.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// DeckResponse is the API representation of a deck.
type DeckResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeckResponse converts a domain deck to its API representation.
func NewDeckResponse(d domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	DeckID string   `json:"deck_id" validate:"required,uuid"`
	Front  string   `json:"front" validate:"required"`
	Back   string   `json:"back" validate:"required"`
	Hint   string   `json:"hint,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// UpdateCardRequest is the request body for editing a card. All fields are
// optional; absent fields leave the card unchanged.
type UpdateCardRequest struct {
	Front      *string  `json:"front,omitempty"`
	Back       *string  `json:"back,omitempty"`
	Hint       *string  `json:"hint,omitempty"`
	AddTags    []string `json:"add_tags,omitempty"`
	RemoveTags []string `json:"remove_tags,omitempty"`
	Suspended  *bool    `json:"suspended,omitempty"`
}

// CardResponse is the API representation of a card, including its computed
// due status at response time.
type CardResponse struct {
	ID             uuid.UUID     `json:"id"`
	DeckID         uuid.UUID     `json:"deck_id"`
	Front          string        `json:"front"`
	Back           string        `json:"back"`
	Hint           string        `json:"hint,omitempty"`
	Tags           []string      `json:"tags"`
	Reps           int           `json:"reps"`
	IntervalDays   int           `json:"interval_days"`
	EaseFactor     float64       `json:"ease_factor"`
	DueAt          time.Time     `json:"due_at"`
	DueStatus      string        `json:"due_status"`
	LastGrade      *domain.Grade `json:"last_grade,omitempty"`
	LastReviewedAt *time.Time    `json:"last_reviewed_at,omitempty"`
	Suspended      bool          `json:"suspended"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewCardResponse converts a domain card to its API representation,
// computing the due status against the given clock reading.
func NewCardResponse(c domain.Card, now time.Time) CardResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return CardResponse{
		ID:             c.ID,
		DeckID:         c.DeckID,
		Front:          c.Front,
		Back:           c.Back,
		Hint:           c.Hint,
		Tags:           tags,
		Reps:           c.Reps,
		IntervalDays:   c.IntervalDays,
		EaseFactor:     c.EF,
		DueAt:          c.DueAt,
		DueStatus:      string(c.DueStatus(now)),
		LastGrade:      c.LastGrade,
		LastReviewedAt: c.LastReviewedAt,
		Suspended:      c.Suspended,
		CreatedAt:      c.CreatedAt,
	}
}

// NewCardResponses converts a slice of domain cards, preserving order.
func NewCardResponses(cards []domain.Card, now time.Time) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, NewCardResponse(c, now))
	}
	return out
}

// SubmitReviewRequest is the request body for grading a card.
type SubmitReviewRequest struct {
	CardID string `json:"card_id" validate:"required,uuid"`
	Grade  int    `json:"grade" validate:"required,min=1,max=3"`
}

// ReviewResponse is the API representation of a recorded review.
type ReviewResponse struct {
	ID              uuid.UUID    `json:"id"`
	CardID          uuid.UUID    `json:"card_id"`
	Grade           domain.Grade `json:"grade"`
	ReviewedAt      time.Time    `json:"reviewed_at"`
	IntervalApplied int          `json:"interval_applied"`
	EaseFactorAfter float64      `json:"ease_factor_after"`
}

// NewReviewResponse converts a domain review to its API representation.
func NewReviewResponse(rv domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:              rv.ID,
		CardID:          rv.CardID,
		Grade:           rv.Grade,
		ReviewedAt:      rv.ReviewedAt,
		IntervalApplied: rv.IntervalApplied,
		EaseFactorAfter: rv.EFAfter,
	}
}

// SubmitReviewResponse returns both the updated card and the recorded
// review so clients can refresh state with a single round trip.
type SubmitReviewResponse struct {
	Card   CardResponse   `json:"card"`
	Review ReviewResponse `json:"review"`
}

// StatsTotals mirrors the per-grade counters of a stats summary.
type StatsTotals struct {
	Total    int     `json:"total"`
	Hard     int     `json:"hard"`
	Medium   int     `json:"medium"`
	Easy     int     `json:"easy"`
	Accuracy float64 `json:"accuracy"`
}

// StatsResponse is the API representation of deck statistics.
type StatsResponse struct {
	Totals StatsTotals            `json:"totals"`
	PerDay map[string]StatsTotals `json:"per_day"`
	Streak int                    `json:"streak"`
}
