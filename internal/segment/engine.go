package segment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// CatchData is the slice of a catch the engine needs for segment matching.
// Catches without coordinates cannot match any segment and are skipped.
type CatchData struct {
	ID        uuid.UUID
	Latitude  *float64
	Longitude *float64
	WeightKg  *float64
	Species   *string
}

// LegendTransition describes a legend change produced by the pipeline.
// Dethroned is nil on a first coronation.
type LegendTransition struct {
	SegmentID uuid.UUID
	NewLegend *LocalLegend
	Dethroned *LocalLegend
}

// Engine runs the full effort pipeline: membership matching, scoring, PR
// detection, effort persistence, leaderboard rebuild and the local-legend
// check. Both the session-completion path and the manual-effort path funnel
// through the same recordEffort so the two can never diverge.
type Engine struct {
	store Store
	now   func() time.Time
	locks *pairLocks

	// OnLegendChange, when set, is invoked after a coronation or dethroning.
	OnLegendChange func(ctx context.Context, tr LegendTransition)
	// OnPersonalBest, when set, is invoked for every effort flagged as a PR.
	OnPersonalBest func(ctx context.Context, e *Effort)
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		locks: newPairLocks(),
	}
}

// RecordSessionEfforts detects which active segments a completed session
// visited and records one effort per matched segment. A session whose catches
// match nothing is a no-op. A segment that disappears mid-iteration is
// skipped without aborting the remaining segments; store failures abort.
func (e *Engine) RecordSessionEfforts(ctx context.Context, sessionID, userID uuid.UUID, catches []CatchData, weatherDifficulty *float64) error {
	if len(catches) == 0 {
		return nil
	}

	segments, err := e.store.ActiveSegments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active segments: %w", err)
	}

	for _, seg := range segments {
		matched := matchCatches(catches, seg)
		if len(matched) == 0 {
			continue
		}

		in := aggregateCatches(matched)
		if weatherDifficulty != nil {
			in.WeatherDifficulty = *weatherDifficulty
		}

		catchID := matched[0].ID
		_, err := e.recordEffort(ctx, seg, userID, &sessionID, &catchID, in, weatherDifficulty)
		if errors.Is(err, ErrNotFound) {
			log.Printf("RecordSessionEfforts: segment %s vanished during recording, skipping", seg.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to record effort on segment %s: %w", seg.ID, err)
		}
	}

	return nil
}

// RecordManualEffort records a single effort from caller-supplied aggregates,
// used for backfilling and admin correction. Defaults mirror the session
// path: one catch, one species, neutral weather.
func (e *Engine) RecordManualEffort(ctx context.Context, segmentID, userID uuid.UUID, req *ManualEffortRequest) (*Effort, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: missing request body", ErrInvalidInput)
	}
	if req.CatchCount < 0 {
		return nil, fmt.Errorf("%w: catch_count must not be negative", ErrInvalidInput)
	}

	seg, err := e.store.SegmentByID(ctx, segmentID)
	if err != nil {
		return nil, err
	}

	in := ScoreInput{
		CatchCount:        req.CatchCount,
		SpeciesDiversity:  1,
		WeatherDifficulty: DefaultWeatherDifficulty,
	}
	if in.CatchCount == 0 {
		in.CatchCount = 1
	}
	if req.TotalWeight != nil {
		if *req.TotalWeight < 0 {
			return nil, fmt.Errorf("%w: total_weight must not be negative", ErrInvalidInput)
		}
		in.TotalWeight = *req.TotalWeight
	}
	if req.BiggestFish != nil {
		if *req.BiggestFish < 0 {
			return nil, fmt.Errorf("%w: biggest_fish must not be negative", ErrInvalidInput)
		}
		in.BiggestFish = *req.BiggestFish
	}
	if req.SpeciesDiversity != nil {
		if *req.SpeciesDiversity < 0 {
			return nil, fmt.Errorf("%w: species_diversity must not be negative", ErrInvalidInput)
		}
		in.SpeciesDiversity = *req.SpeciesDiversity
	}
	if req.WeatherDifficulty != nil {
		in.WeatherDifficulty = *req.WeatherDifficulty
	}

	return e.recordEffort(ctx, seg, userID, req.SessionID, req.CatchID, in, req.WeatherDifficulty)
}

// recordEffort is the single shared pipeline. The (segment, user) lock keeps
// PR detection and the downstream leaderboard rebuild serialized for that
// pair; pipelines for other segments run unimpeded.
func (e *Engine) recordEffort(ctx context.Context, seg *Segment, userID uuid.UUID, sessionID, catchID *uuid.UUID, in ScoreInput, weatherDifficulty *float64) (*Effort, error) {
	unlock := e.locks.lock(seg.ID, userID)
	defer unlock()

	score := CalculateEffortScore(in)

	best, hasPrior, err := e.store.BestEffortScore(ctx, seg.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up best effort: %w", err)
	}
	isPR := !hasPrior || score > best

	effort := &Effort{
		ID:                uuid.New(),
		SegmentID:         seg.ID,
		UserID:            userID,
		SessionID:         sessionID,
		CatchID:           catchID,
		EffortScore:       score,
		CatchCount:        in.CatchCount,
		TotalWeight:       in.TotalWeight,
		BiggestFish:       in.BiggestFish,
		SpeciesDiversity:  in.SpeciesDiversity,
		WeatherDifficulty: weatherDifficulty,
		IsPR:              isPR,
		CompletedAt:       e.now(),
	}

	if err := e.store.CreateEffort(ctx, effort); err != nil {
		return nil, fmt.Errorf("failed to create effort: %w", err)
	}

	if err := e.store.IncrementSegmentStats(ctx, seg.ID, in.CatchCount); err != nil {
		return nil, fmt.Errorf("failed to update segment stats: %w", err)
	}

	if err := e.RebuildLeaderboards(ctx, seg.ID); err != nil {
		return nil, fmt.Errorf("failed to rebuild leaderboards: %w", err)
	}

	if err := e.checkLegendStatus(ctx, seg.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to check legend status: %w", err)
	}

	if isPR && e.OnPersonalBest != nil {
		e.OnPersonalBest(ctx, effort)
	}

	return effort, nil
}

func matchCatches(catches []CatchData, seg *Segment) []CatchData {
	var matched []CatchData
	for _, c := range catches {
		if c.Latitude == nil || c.Longitude == nil {
			continue
		}
		if IsWithin(*c.Latitude, *c.Longitude, seg) {
			matched = append(matched, c)
		}
	}
	return matched
}

func aggregateCatches(catches []CatchData) ScoreInput {
	in := ScoreInput{
		CatchCount:        len(catches),
		WeatherDifficulty: DefaultWeatherDifficulty,
	}

	species := make(map[string]struct{})
	for _, c := range catches {
		if c.WeightKg != nil {
			in.TotalWeight += *c.WeightKg
			if *c.WeightKg > in.BiggestFish {
				in.BiggestFish = *c.WeightKg
			}
		}
		if c.Species != nil && *c.Species != "" {
			species[*c.Species] = struct{}{}
		}
	}
	in.SpeciesDiversity = len(species)

	return in
}
