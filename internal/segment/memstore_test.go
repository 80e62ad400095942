package segment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type leaderboardKey struct {
	segmentID uuid.UUID
	userID    uuid.UUID
	category  Category
	timeframe Timeframe
}

// memStore is an in-memory Store with the same invariant behavior as the pgx
// implementation: conditional legend writes return ErrConflict instead of
// silently overwriting.
type memStore struct {
	mu       sync.Mutex
	segments map[uuid.UUID]*Segment
	efforts  []*Effort
	entries  map[leaderboardKey]*LeaderboardEntry
	legends  map[uuid.UUID]*LocalLegend

	// failCreateEffort simulates a store outage on the effort write.
	failCreateEffort error
}

func newMemStore() *memStore {
	return &memStore{
		segments: make(map[uuid.UUID]*Segment),
		entries:  make(map[leaderboardKey]*LeaderboardEntry),
		legends:  make(map[uuid.UUID]*LocalLegend),
	}
}

func (m *memStore) addSegment(seg *Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[seg.ID] = seg
}

func (m *memStore) ActiveSegments(ctx context.Context) ([]*Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Segment
	for _, seg := range m.segments {
		if seg.IsActive {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (m *memStore) SegmentByID(ctx context.Context, id uuid.UUID) (*Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return seg, nil
}

func (m *memStore) BestEffortScore(ctx context.Context, segmentID, userID uuid.UUID) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	best := 0
	found := false
	for _, e := range m.efforts {
		if e.SegmentID == segmentID && e.UserID == userID {
			if !found || e.EffortScore > best {
				best = e.EffortScore
			}
			found = true
		}
	}
	return best, found, nil
}

func (m *memStore) CreateEffort(ctx context.Context, e *Effort) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateEffort != nil {
		return m.failCreateEffort
	}
	clone := *e
	m.efforts = append(m.efforts, &clone)
	return nil
}

func (m *memStore) EffortsSince(ctx context.Context, segmentID uuid.UUID, since time.Time) ([]*Effort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Effort
	for _, e := range m.efforts {
		if e.SegmentID == segmentID && !e.CompletedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) CountUserEffortsSince(ctx context.Context, segmentID, userID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.efforts {
		if e.SegmentID == segmentID && e.UserID == userID && !e.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) IncrementSegmentStats(ctx context.Context, segmentID uuid.UUID, catches int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seg, ok := m.segments[segmentID]
	if !ok {
		return ErrNotFound
	}
	seg.ActivityCount++
	seg.TotalCatches += catches
	return nil
}

func (m *memStore) UpsertLeaderboardEntry(ctx context.Context, entry *LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := leaderboardKey{entry.SegmentID, entry.UserID, entry.Category, entry.Timeframe}
	clone := *entry
	m.entries[key] = &clone
	return nil
}

func (m *memStore) PruneLeaderboard(ctx context.Context, segmentID uuid.UUID, category Category, timeframe Timeframe, keep []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keepSet := make(map[uuid.UUID]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	for key := range m.entries {
		if key.segmentID == segmentID && key.category == category && key.timeframe == timeframe {
			if _, ok := keepSet[key.userID]; !ok {
				delete(m.entries, key)
			}
		}
	}
	return nil
}

func (m *memStore) ActiveLegend(ctx context.Context, segmentID uuid.UUID) (*LocalLegend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.legends {
		if l.SegmentID == segmentID && l.Status == LegendActive {
			clone := *l
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStore) DethroneLegend(ctx context.Context, legendID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.legends[legendID]
	if !ok || l.Status != LegendActive {
		return ErrConflict
	}
	l.Status = LegendDethroned
	l.DethronedAt = &at
	return nil
}

func (m *memStore) CreateLegend(ctx context.Context, legend *LocalLegend) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.legends {
		if l.SegmentID == legend.SegmentID && l.Status == LegendActive {
			return ErrConflict
		}
	}
	clone := *legend
	m.legends[legend.ID] = &clone
	return nil
}

func (m *memStore) entry(segmentID, userID uuid.UUID, category Category, timeframe Timeframe) *LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[leaderboardKey{segmentID, userID, category, timeframe}]
}

func (m *memStore) entriesFor(segmentID uuid.UUID, category Category, timeframe Timeframe) []*LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LeaderboardEntry
	for key, e := range m.entries {
		if key.segmentID == segmentID && key.category == category && key.timeframe == timeframe {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) legendRows(segmentID uuid.UUID) []*LocalLegend {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LocalLegend
	for _, l := range m.legends {
		if l.SegmentID == segmentID {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out
}

func (m *memStore) effortRows(segmentID uuid.UUID) []*Effort {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Effort
	for _, e := range m.efforts {
		if e.SegmentID == segmentID {
			out = append(out, e)
		}
	}
	return out
}
