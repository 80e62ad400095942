package segment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type ranking struct {
	userID       uuid.UUID
	value        float64
	efforts      int
	lastEffortAt time.Time
}

// RebuildLeaderboards recomputes every (category, timeframe) leaderboard of a
// segment from the full effort history in range and upserts the ranked rows.
// The recompute is idempotent; rows for users whose efforts aged out of a
// timeframe window are pruned.
func (e *Engine) RebuildLeaderboards(ctx context.Context, segmentID uuid.UUID) error {
	for _, timeframe := range Timeframes {
		startDate := e.startDateFor(timeframe)

		efforts, err := e.store.EffortsSince(ctx, segmentID, startDate)
		if err != nil {
			return fmt.Errorf("failed to load efforts for %s: %w", timeframe, err)
		}

		for _, category := range Categories {
			rankings := rankEfforts(efforts, category)

			keep := make([]uuid.UUID, 0, len(rankings))
			for i, r := range rankings {
				entry := &LeaderboardEntry{
					SegmentID:    segmentID,
					UserID:       r.userID,
					Category:     category,
					Timeframe:    timeframe,
					Value:        r.value,
					Rank:         i + 1,
					Efforts:      r.efforts,
					LastEffortAt: r.lastEffortAt,
				}
				if err := e.store.UpsertLeaderboardEntry(ctx, entry); err != nil {
					return fmt.Errorf("failed to upsert %s/%s entry: %w", category, timeframe, err)
				}
				keep = append(keep, r.userID)
			}

			if err := e.store.PruneLeaderboard(ctx, segmentID, category, timeframe, keep); err != nil {
				return fmt.Errorf("failed to prune %s/%s: %w", category, timeframe, err)
			}
		}
	}

	return nil
}

func (e *Engine) startDateFor(timeframe Timeframe) time.Time {
	now := e.now()

	switch timeframe {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Unix(0, 0).UTC()
	}
}

// rankEfforts groups efforts by user and reduces them to the category's
// aggregate: sums for most_catches/total_weight/species_diversity, max for
// biggest_fish. Ordering is value descending with user id as the secondary
// key, so equal values always rank in the same order.
func rankEfforts(efforts []*Effort, category Category) []ranking {
	byUser := make(map[uuid.UUID]*ranking)
	var order []uuid.UUID

	for _, eff := range efforts {
		r, ok := byUser[eff.UserID]
		if !ok {
			r = &ranking{userID: eff.UserID, lastEffortAt: eff.CompletedAt}
			byUser[eff.UserID] = r
			order = append(order, eff.UserID)
		}

		var value float64
		switch category {
		case CategoryMostCatches:
			value = float64(eff.CatchCount)
		case CategoryBiggestFish:
			value = eff.BiggestFish
		case CategoryTotalWeight:
			value = eff.TotalWeight
		case CategorySpeciesDiversity:
			value = float64(eff.SpeciesDiversity)
		}

		if category == CategoryBiggestFish {
			if value > r.value {
				r.value = value
			}
		} else {
			r.value += value
		}

		r.efforts++
		if eff.CompletedAt.After(r.lastEffortAt) {
			r.lastEffortAt = eff.CompletedAt
		}
	}

	rankings := make([]ranking, 0, len(order))
	for _, userID := range order {
		rankings = append(rankings, *byUser[userID])
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].value != rankings[j].value {
			return rankings[i].value > rankings[j].value
		}
		return rankings[i].userID.String() < rankings[j].userID.String()
	})

	return rankings
}
