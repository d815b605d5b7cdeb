// Package filters provides pure selection functions over card slices:
// suspension filtering, due-status classification, text and tag search, and
// the shared review-queue builder every front-end uses.
package filters

import (
	"strings"
	"time"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// NotSuspended returns the cards that are not suspended.
func NotSuspended(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if !c.Suspended {
			out = append(out, c)
		}
	}
	return out
}

// ByDue returns the cards whose derived due status at the given time equals
// the wanted status.
func ByDue(cards []domain.Card, now time.Time, want domain.DueStatus) []domain.Card {
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if c.DueStatus(now) == want {
			out = append(out, c)
		}
	}
	return out
}

// ByText returns the cards whose front, back, hint, or any tag contains the
// query, case-insensitively. A blank query returns all cards unchanged.
func ByText(cards []domain.Card, query string) []domain.Card {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return cards
	}

	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if matchesText(&c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matchesText(c *domain.Card, q string) bool {
	if strings.Contains(strings.ToLower(c.Front), q) ||
		strings.Contains(strings.ToLower(c.Back), q) ||
		strings.Contains(strings.ToLower(c.Hint), q) {
		return true
	}
	for _, t := range c.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// ByTag returns the cards carrying a tag exactly equal to the given one,
// case-insensitively.
func ByTag(cards []domain.Card, tag string) []domain.Card {
	q := strings.TrimSpace(tag)

	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		for _, t := range c.Tags {
			if strings.EqualFold(t, q) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
