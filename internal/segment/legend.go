package segment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// legendWindowDays is the rolling window legend standing is judged over.
	legendWindowDays = 90
	// legendMinEfforts keeps a single lucky outing from seizing the title; it
	// applies to first coronation and to dethroning alike.
	legendMinEfforts = 3

	legendMaxAttempts = 3
)

// checkLegendStatus runs the challenger/incumbent state machine after an
// effort lands. Conditional store writes enforce at most one active legend
// per segment; a lost race is re-evaluated against fresh state rather than
// dropped.
func (e *Engine) checkLegendStatus(ctx context.Context, segmentID, userID uuid.UUID) error {
	var lastErr error

	for attempt := 0; attempt < legendMaxAttempts; attempt++ {
		transitioned, tr, err := e.tryLegendTransition(ctx, segmentID, userID)
		if errors.Is(err, ErrConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return err
		}
		if transitioned && e.OnLegendChange != nil {
			e.OnLegendChange(ctx, tr)
		}
		return nil
	}

	return fmt.Errorf("legend transition kept conflicting for segment %s: %w", segmentID, lastErr)
}

func (e *Engine) tryLegendTransition(ctx context.Context, segmentID, userID uuid.UUID) (bool, LegendTransition, error) {
	none := LegendTransition{}

	windowStart := e.now().AddDate(0, 0, -legendWindowDays)

	challengerCount, err := e.store.CountUserEffortsSince(ctx, segmentID, userID, windowStart)
	if err != nil {
		return false, none, fmt.Errorf("failed to count challenger efforts: %w", err)
	}
	if challengerCount < legendMinEfforts {
		return false, none, nil
	}

	current, err := e.store.ActiveLegend(ctx, segmentID)
	if err != nil {
		return false, none, fmt.Errorf("failed to load active legend: %w", err)
	}

	if current == nil {
		top, unique, err := e.topUserInWindow(ctx, segmentID, windowStart)
		if err != nil {
			return false, none, err
		}
		// Ties never crown: the title waits for a unique front runner.
		if !unique || top != userID {
			return false, none, nil
		}

		legend, err := e.crownLegend(ctx, segmentID, userID, challengerCount)
		if err != nil {
			return false, none, err
		}
		return true, LegendTransition{SegmentID: segmentID, NewLegend: legend}, nil
	}

	// The incumbent accruing more efforts only raises the bar.
	if current.UserID == userID {
		return false, none, nil
	}

	incumbentCount, err := e.store.CountUserEffortsSince(ctx, segmentID, current.UserID, windowStart)
	if err != nil {
		return false, none, fmt.Errorf("failed to count incumbent efforts: %w", err)
	}
	if challengerCount <= incumbentCount {
		return false, none, nil
	}

	now := e.now()
	if err := e.store.DethroneLegend(ctx, current.ID, now); err != nil {
		return false, none, err
	}
	current.Status = LegendDethroned
	current.DethronedAt = &now

	legend, err := e.crownLegend(ctx, segmentID, userID, challengerCount)
	if err != nil {
		return false, none, err
	}

	return true, LegendTransition{SegmentID: segmentID, NewLegend: legend, Dethroned: current}, nil
}

func (e *Engine) crownLegend(ctx context.Context, segmentID, userID uuid.UUID, effortCount int) (*LocalLegend, error) {
	legend := &LocalLegend{
		ID:          uuid.New(),
		SegmentID:   segmentID,
		UserID:      userID,
		Status:      LegendActive,
		EffortCount: effortCount,
		AchievedAt:  e.now(),
	}
	if err := e.store.CreateLegend(ctx, legend); err != nil {
		return nil, err
	}
	return legend, nil
}

// topUserInWindow returns the user with the most efforts on the segment since
// windowStart. unique is false when the maximum is shared.
func (e *Engine) topUserInWindow(ctx context.Context, segmentID uuid.UUID, windowStart time.Time) (uuid.UUID, bool, error) {
	efforts, err := e.store.EffortsSince(ctx, segmentID, windowStart)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to load window efforts: %w", err)
	}

	counts := make(map[uuid.UUID]int)
	for _, eff := range efforts {
		counts[eff.UserID]++
	}

	var top uuid.UUID
	maxCount := 0
	holders := 0
	for userID, count := range counts {
		switch {
		case count > maxCount:
			maxCount = count
			top = userID
			holders = 1
		case count == maxCount:
			holders++
		}
	}

	return top, holders == 1, nil
}
