// Package srs implements the spaced-repetition scheduling algorithm, an
// SM-2 variant over the three-valued Hard/Medium/Easy grade scale.
//
// Everything in this package is pure: ApplyGrade takes the card, the grade,
// and an explicit "now" and returns the rescheduled card plus the audit
// review. No I/O happens here; the caller is responsible for persisting
// both results through the store.Repository contract.
package srs

import (
	"math"
	"time"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// Outcome bundles the two values produced by grading a card: the card with
// its scheduling state advanced, and the review record documenting the step.
type Outcome struct {
	Card   domain.Card
	Review domain.Review
}

// clampEaseFactor bounds an ease factor to the domain limits.
func clampEaseFactor(ef float64) float64 {
	if ef < domain.EaseFactorMin {
		return domain.EaseFactorMin
	}
	if ef > domain.EaseFactorMax {
		return domain.EaseFactorMax
	}
	return ef
}

// easeFactorDelta computes the ease factor adjustment for an ordinal score.
//
// The formula is delta = 0.1 - (3-g)*(0.08 + (3-g)*0.02), which works out to:
//   - Easy (g=3):   +0.1
//   - Medium (g=2):  0.0
//   - Hard (g=1):   -0.14
func easeFactorDelta(score int) float64 {
	miss := float64(3 - score)
	return 0.1 - miss*(0.08+miss*0.02)
}

// nextInterval computes the interval in days for a successful (non-Hard)
// repetition. The first repetition waits one day, the second six; after
// that the prior interval (floored at 1) grows by the new ease factor,
// rounded to the nearest day and never below 1.
func nextInterval(reps, priorIntervalDays int, ef float64) int {
	switch reps {
	case 1:
		return 1
	case 2:
		return 6
	default:
		base := float64(max(priorIntervalDays, 1))
		days := math.Round(base * ef)
		if days < 1 {
			days = 1
		}
		return int(days)
	}
}

// ApplyGrade advances a card's scheduling state for one grading action and
// produces the matching review record.
//
// A Hard grade is a lapse: reps resets to 0 and the card comes back in one
// day. Medium and Easy count the repetition and grow the interval. The ease
// factor is adjusted first and the new value drives the interval growth.
//
// The returned card is a copy; the input card is not modified. ApplyGrade
// always succeeds for a well-formed card and a defined grade.
func ApplyGrade(card domain.Card, grade domain.Grade, now time.Time) Outcome {
	score := grade.Score()
	ef := clampEaseFactor(card.EF + easeFactorDelta(score))

	var reps, intervalDays int
	if score < domain.GradeMedium.Score() {
		// Lapse: start over, but keep the (lowered) ease factor.
		reps = 0
		intervalDays = 1
	} else {
		reps = card.Reps + 1
		intervalDays = nextInterval(reps, card.IntervalDays, ef)
	}

	reviewedAt := now
	card.EF = ef
	card.Reps = reps
	card.IntervalDays = intervalDays
	card.DueAt = now.AddDate(0, 0, intervalDays)
	card.LastGrade = &grade
	card.LastReviewedAt = &reviewedAt

	review := domain.NewReview(card.ID, grade, reviewedAt, intervalDays, ef)

	return Outcome{Card: card, Review: *review}
}
