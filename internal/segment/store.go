package segment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a referenced segment or session does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional write loses a race, e.g. two
	// challengers dethroning the same legend at once.
	ErrConflict = errors.New("concurrency conflict")
	// ErrInvalidInput is returned for requests missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the engine's only view of persistence. Implementations must honor
// the invariants documented per method; the pgx implementation lives in the
// services package.
type Store interface {
	// ActiveSegments returns every segment with is_active=true.
	ActiveSegments(ctx context.Context) ([]*Segment, error)
	// SegmentByID returns ErrNotFound for unknown or inactive-and-unknown ids.
	SegmentByID(ctx context.Context, id uuid.UUID) (*Segment, error)

	// BestEffortScore returns the user's highest effort score on the segment.
	// ok is false when the user has no prior effort there.
	BestEffortScore(ctx context.Context, segmentID, userID uuid.UUID) (score int, ok bool, err error)
	CreateEffort(ctx context.Context, e *Effort) error
	// EffortsSince returns all efforts on the segment with completedAt >= since.
	EffortsSince(ctx context.Context, segmentID uuid.UUID, since time.Time) ([]*Effort, error)
	CountUserEffortsSince(ctx context.Context, segmentID, userID uuid.UUID, since time.Time) (int, error)

	// IncrementSegmentStats bumps activity_count by 1 and total_catches by catches.
	IncrementSegmentStats(ctx context.Context, segmentID uuid.UUID, catches int) error

	UpsertLeaderboardEntry(ctx context.Context, entry *LeaderboardEntry) error
	// PruneLeaderboard deletes rows for the (segment, category, timeframe) key
	// whose user is not in keep. Users whose efforts aged out of a timeframe
	// window are removed on rebuild rather than filtered at read time.
	PruneLeaderboard(ctx context.Context, segmentID uuid.UUID, category Category, timeframe Timeframe, keep []uuid.UUID) error

	// ActiveLegend returns the segment's current legend, or nil when vacant.
	ActiveLegend(ctx context.Context, segmentID uuid.UUID) (*LocalLegend, error)
	// DethroneLegend marks the row dethroned iff it is still active; returns
	// ErrConflict when another caller got there first.
	DethroneLegend(ctx context.Context, legendID uuid.UUID, at time.Time) error
	// CreateLegend inserts an active row; returns ErrConflict when the segment
	// already has an active legend.
	CreateLegend(ctx context.Context, l *LocalLegend) error
}
