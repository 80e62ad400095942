package segment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(store Store) (*Engine, *time.Time) {
	e := NewEngine(store)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return e, &now
}

func ptr[T any](v T) *T { return &v }

func oneCatch(lat, lng, weight float64, species string) []CatchData {
	return []CatchData{{
		ID:        uuid.New(),
		Latitude:  &lat,
		Longitude: &lng,
		WeightKg:  &weight,
		Species:   &species,
	}}
}

// Walks the full pipeline for three sessions of one user on one spot segment:
// scores, PR flags, segment stat increments and the biggest_fish leaderboard
// aggregating by max rather than sum.
func TestSessionPipeline(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	e, now := newTestEngine(store)

	seg := spotSegment(55.0, 12.0, 100)
	seg.ID = uuid.New()
	store.addSegment(seg)
	user := uuid.New()

	// Session 1: one 2kg pike ~50m from the center.
	require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), user, oneCatch(55.00045, 12.0, 2, "pike"), nil))

	efforts := store.effortRows(seg.ID)
	require.Len(t, efforts, 1)
	first := efforts[0]
	assert.Equal(t, 1, first.CatchCount)
	assert.Equal(t, 2.0, first.TotalWeight)
	assert.Equal(t, 2.0, first.BiggestFish)
	assert.Equal(t, 1, first.SpeciesDiversity)
	assert.Equal(t, 21, first.EffortScore)
	assert.True(t, first.IsPR)
	require.NotNil(t, first.SessionID)
	require.NotNil(t, first.CatchID)

	// Session 2: 5kg beats the previous best.
	*now = now.Add(24 * time.Hour)
	require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), user, oneCatch(55.00045, 12.0, 5, "pike"), nil))

	// Session 3: 1kg does not.
	*now = now.Add(24 * time.Hour)
	require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), user, oneCatch(55.00045, 12.0, 1, "perch"), nil))

	efforts = store.effortRows(seg.ID)
	require.Len(t, efforts, 3)
	assert.Equal(t, 41, efforts[1].EffortScore)
	assert.True(t, efforts[1].IsPR)
	assert.Equal(t, 15, efforts[2].EffortScore)
	assert.False(t, efforts[2].IsPR)

	assert.Equal(t, 3, seg.ActivityCount)
	assert.Equal(t, 3, seg.TotalCatches)

	// biggest_fish all_time aggregates by max: max(2, 5, 1) = 5, not 8.
	entry := store.entry(seg.ID, user, CategoryBiggestFish, TimeframeAllTime)
	require.NotNil(t, entry)
	assert.Equal(t, 5.0, entry.Value)
	assert.Equal(t, 1, entry.Rank)
	assert.Equal(t, 3, entry.Efforts)
	assert.Equal(t, *now, entry.LastEffortAt)

	// total_weight all_time sums: 2 + 5 + 1 = 8.
	entry = store.entry(seg.ID, user, CategoryTotalWeight, TimeframeAllTime)
	require.NotNil(t, entry)
	assert.Equal(t, 8.0, entry.Value)
}

func TestSessionNoMatchIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	e, _ := newTestEngine(store)

	seg := spotSegment(55.0, 12.0, 100)
	seg.ID = uuid.New()
	store.addSegment(seg)

	t.Run("no catches", func(t *testing.T) {
		require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), uuid.New(), nil, nil))
		assert.Empty(t, store.effortRows(seg.ID))
	})

	t.Run("catches outside every segment", func(t *testing.T) {
		require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), uuid.New(), oneCatch(40.0, -70.0, 3, "bass"), nil))
		assert.Empty(t, store.effortRows(seg.ID))
	})

	t.Run("catches without coordinates never match", func(t *testing.T) {
		catches := []CatchData{{ID: uuid.New(), WeightKg: ptr(3.0), Species: ptr("pike")}}
		require.NoError(t, e.RecordSessionEfforts(ctx, uuid.New(), uuid.New(), catches, nil))
		assert.Empty(t, store.effortRows(seg.ID))
	})
}

func TestManualEffort(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	e, _ := newTestEngine(store)

	seg := spotSegment(55.0, 12.0, 100)
	seg.ID = uuid.New()
	store.addSegment(seg)
	user := uuid.New()

	t.Run("records with defaults", func(t *testing.T) {
		eff, err := e.RecordManualEffort(ctx, seg.ID, user, &ManualEffortRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, eff.CatchCount)
		assert.Equal(t, 1, eff.SpeciesDiversity)
		assert.Equal(t, 8, eff.EffortScore) // 3 + 5 at 1.0x
		assert.True(t, eff.IsPR)
	})

	t.Run("recording identical data twice is a PR only once", func(t *testing.T) {
		req := &ManualEffortRequest{CatchCount: 4, TotalWeight: ptr(6.0), BiggestFish: ptr(3.0), SpeciesDiversity: ptr(2)}

		eff1, err := e.RecordManualEffort(ctx, seg.ID, user, req)
		require.NoError(t, err)
		assert.True(t, eff1.IsPR)

		eff2, err := e.RecordManualEffort(ctx, seg.ID, user, req)
		require.NoError(t, err)
		assert.False(t, eff2.IsPR, "equal score must not count as a new PR")
	})

	t.Run("unknown segment", func(t *testing.T) {
		_, err := e.RecordManualEffort(ctx, uuid.New(), user, &ManualEffortRequest{CatchCount: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("negative input rejected before any write", func(t *testing.T) {
		before := len(store.effortRows(seg.ID))
		_, err := e.RecordManualEffort(ctx, seg.ID, user, &ManualEffortRequest{CatchCount: -1})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = e.RecordManualEffort(ctx, seg.ID, user, &ManualEffortRequest{CatchCount: 1, TotalWeight: ptr(-2.0)})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Len(t, store.effortRows(seg.ID), before)
	})
}

// A store failure on the effort write must stop the pipeline before the
// leaderboard rebuild and legend check run.
func TestStoreFailureStopsPipeline(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	e, _ := newTestEngine(store)

	seg := spotSegment(55.0, 12.0, 100)
	seg.ID = uuid.New()
	store.addSegment(seg)

	store.failCreateEffort = errors.New("connection refused")

	_, err := e.RecordManualEffort(ctx, seg.ID, uuid.New(), &ManualEffortRequest{CatchCount: 1})
	require.Error(t, err)
	assert.Empty(t, store.entriesFor(seg.ID, CategoryMostCatches, TimeframeAllTime))
	assert.Empty(t, store.legendRows(seg.ID))
	assert.Equal(t, 0, seg.ActivityCount)
}

// vanishStore reports one extra active segment that no longer exists in the
// backing store, mimicking a segment deactivated between listing and writing.
type vanishStore struct {
	*memStore
	ghost *Segment
}

func (v *vanishStore) ActiveSegments(ctx context.Context) ([]*Segment, error) {
	segs, err := v.memStore.ActiveSegments(ctx)
	if err != nil {
		return nil, err
	}
	return append(segs, v.ghost), nil
}

func TestVanishedSegmentDoesNotAbortOthers(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()

	real := spotSegment(55.0, 12.0, 100)
	real.ID = uuid.New()
	mem.addSegment(real)

	ghost := spotSegment(55.0, 12.0, 100)
	ghost.ID = uuid.New()

	store := &vanishStore{memStore: mem, ghost: ghost}
	e, _ := newTestEngine(store)

	err := e.RecordSessionEfforts(ctx, uuid.New(), uuid.New(), oneCatch(55.0, 12.0, 2, "pike"), nil)
	require.NoError(t, err)
	assert.Len(t, mem.effortRows(real.ID), 1, "surviving segment still gets its effort")
}

// Concurrent sessions for the same (segment, user) must serialize: exactly
// one of two identical efforts may be flagged as the PR.
func TestConcurrentEffortsSinglePR(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	e, _ := newTestEngine(store)

	seg := spotSegment(55.0, 12.0, 100)
	seg.ID = uuid.New()
	store.addSegment(seg)
	user := uuid.New()

	req := &ManualEffortRequest{CatchCount: 2, TotalWeight: ptr(4.0), BiggestFish: ptr(3.0)}

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := e.RecordManualEffort(ctx, seg.ID, user, req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	prs := 0
	for _, eff := range store.effortRows(seg.ID) {
		if eff.IsPR {
			prs++
		}
	}
	assert.Equal(t, 1, prs, "identical concurrent efforts must yield exactly one PR")
}
