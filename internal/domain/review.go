package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review-specific validation errors
var (
	// ErrReviewIDEmpty is returned when a review ID is empty or nil.
	ErrReviewIDEmpty = errors.New("review ID cannot be empty")

	// ErrReviewCardIDEmpty is returned when a review's card ID is empty or nil.
	ErrReviewCardIDEmpty = errors.New("review card ID cannot be empty")

	// ErrReviewGradeInvalid is returned when a review carries an undefined grade.
	ErrReviewGradeInvalid = errors.New("review grade is invalid")
)

// Review is the append-only audit record of one grading action. Reviews are
// never mutated; they are deleted only when their card is deleted.
type Review struct {
	ID              uuid.UUID `json:"id"`
	CardID          uuid.UUID `json:"card_id"`
	Grade           Grade     `json:"grade"`
	ReviewedAt      time.Time `json:"reviewed_at"`
	IntervalApplied int       `json:"interval_applied"`
	EFAfter         float64   `json:"ef_after"`
}

// NewReview creates a Review with a fresh ID for a completed grading action.
func NewReview(cardID uuid.UUID, grade Grade, reviewedAt time.Time, intervalApplied int, efAfter float64) *Review {
	return &Review{
		ID:              uuid.New(),
		CardID:          cardID,
		Grade:           grade,
		ReviewedAt:      reviewedAt,
		IntervalApplied: intervalApplied,
		EFAfter:         efAfter,
	}
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReviewIDEmpty
	}

	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}

	if !r.Grade.IsValid() {
		return ErrReviewGradeInvalid
	}

	return nil
}
