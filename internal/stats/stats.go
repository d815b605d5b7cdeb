// Package stats provides pure aggregation over review history: grade
// totals, per-day breakdowns, daily streaks, and per-deck rollups. Nothing
// here touches storage; callers fetch reviews through the repository and
// hand them in.
package stats

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// Totals counts reviews by grade.
type Totals struct {
	Total  int `json:"total"`
	Hard   int `json:"hard"`
	Medium int `json:"medium"`
	Easy   int `json:"easy"`
}

// Record adds one review's grade to the totals.
func (t *Totals) Record(g domain.Grade) {
	t.Total++
	switch g {
	case domain.GradeHard:
		t.Hard++
	case domain.GradeMedium:
		t.Medium++
	case domain.GradeEasy:
		t.Easy++
	}
}

// Accuracy is the fraction of reviews graded Medium or Easy. Zero reviews
// yield zero accuracy.
func (t *Totals) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Medium+t.Easy) / float64(t.Total)
}

// Summary aggregates a review history overall and per calendar day. Days
// are identified by the UTC date of the review timestamp, formatted as
// 2006-01-02.
type Summary struct {
	Totals Totals            `json:"totals"`
	PerDay map[string]Totals `json:"per_day"`
}

// dayKey normalizes a timestamp to its UTC calendar date.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Summarize builds the overall and per-day totals for a review history.
func Summarize(reviews []domain.Review) Summary {
	summary := Summary{PerDay: make(map[string]Totals)}
	for _, r := range reviews {
		summary.Totals.Record(r.Grade)

		day := dayKey(r.ReviewedAt)
		t := summary.PerDay[day]
		t.Record(r.Grade)
		summary.PerDay[day] = t
	}
	return summary
}

// Days returns the summary's days in ascending order, for stable
// presentation.
func (s Summary) Days() []string {
	days := make([]string, 0, len(s.PerDay))
	for d := range s.PerDay {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// DailyStreak counts how many consecutive days ending at today (inclusive)
// have at least one review. A day without reviews breaks the streak.
func DailyStreak(reviews []domain.Review, today time.Time) int {
	perDay := Summarize(reviews).PerDay

	streak := 0
	day := today.UTC().Truncate(24 * time.Hour)
	for {
		t, ok := perDay[dayKey(day)]
		if !ok || t.Total == 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// PerDeckTotals rolls reviews up to their decks using the card-to-deck
// mapping. Reviews of unknown cards are skipped.
func PerDeckTotals(reviews []domain.Review, cardToDeck map[uuid.UUID]uuid.UUID) map[uuid.UUID]Totals {
	out := make(map[uuid.UUID]Totals)
	for _, r := range reviews {
		deckID, ok := cardToDeck[r.CardID]
		if !ok {
			continue
		}
		t := out[deckID]
		t.Record(r.Grade)
		out[deckID] = t
	}
	return out
}
