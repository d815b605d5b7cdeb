package filters

import (
	"sort"
	"time"

	"github.com/phrazzld/flashdeck-api/internal/domain"
)

// QueueOptions controls which due-status classes enter a review queue.
// DueToday cards are always included.
type QueueOptions struct {
	IncludeNew    bool
	IncludeLapsed bool

	// Max truncates the queue after sorting; zero means no limit.
	Max int
}

// BuildQueue assembles the review queue used identically by every
// front-end: suspended cards are dropped, then New (optional), DueToday
// (always), and Lapsed (optional) cards are collected and sorted by
// (due_at, created_at) ascending. The sorted order is the contract; the
// collection order above only matters for cards with identical timestamps.
// New cards carry their creation time as due_at, so they interleave with
// due cards by age.
func BuildQueue(cards []domain.Card, now time.Time, opts QueueOptions) []domain.Card {
	pool := NotSuspended(cards)

	queue := make([]domain.Card, 0, len(pool))
	if opts.IncludeNew {
		queue = append(queue, ByDue(pool, now, domain.DueStatusNew)...)
	}
	queue = append(queue, ByDue(pool, now, domain.DueStatusDueToday)...)
	if opts.IncludeLapsed {
		queue = append(queue, ByDue(pool, now, domain.DueStatusLapsed)...)
	}

	sort.SliceStable(queue, func(i, j int) bool {
		if !queue[i].DueAt.Equal(queue[j].DueAt) {
			return queue[i].DueAt.Before(queue[j].DueAt)
		}
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})

	if opts.Max > 0 && len(queue) > opts.Max {
		queue = queue[:opts.Max]
	}

	return queue
}
