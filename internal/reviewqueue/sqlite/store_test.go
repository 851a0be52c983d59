package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/model"
	"github.com/vibethink-edu/vibethink-orchestrator-main-sub004/internal/reviewqueue"
)

var (
	restaurantCtx = model.TenantContext{Locale: "es", Vertical: "hospitality", Subvertical: "restaurant", Modules: []string{"pos", "kds"}}
	reviewResult  = model.ClassifierOutput{
		Action:     model.ActionNeedsReview,
		Confidence: 0.6,
		Reason:     "low confidence, multiple possible placements",
		MatchedCandidates: []model.Candidate{
			{Key: "pos.fire_order", Score: 0.6, Source: model.SourceRegistry},
		},
	}
	baseTime = time.Date(2026, 2, 21, 23, 30, 0, 0, time.UTC)
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	var n atomic.Int64
	store, err := Open(
		filepath.Join(t.TempDir(), "review.db"),
		WithClock(func() time.Time { return baseTime.Add(time.Hour) }),
		WithIDGenerator(func() string { return fmt.Sprintf("item-%d", n.Add(1)) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStore_AppendRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	id, err := store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)

	item, found, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Comanda", item.Term)
	assert.Equal(t, restaurantCtx, item.Context)
	assert.Equal(t, model.StatusPending, item.Status)
	assert.True(t, item.Timestamp.Equal(baseTime))
	assert.Nil(t, item.ReviewedAt)
	assert.Nil(t, item.Resolution)
	require.Len(t, item.Result.MatchedCandidates, 1)
	assert.Equal(t, "pos.fire_order", item.Result.MatchedCandidates[0].Key)
}

func TestStore_AppendDeduplicatesPending(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)
	second, err := store.Append(ctx, "comanda", restaurantCtx, reviewResult, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	ok, err := store.Resolve(ctx, first, model.Resolution{Action: model.ResolveCreateNew}, "ana")
	require.NoError(t, err)
	require.True(t, ok)

	third, err := store.Append(ctx, "COMANDA", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "resolved items do not block a new pending item")
}

func TestStore_ConcurrentAppendsKeepOnePending(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	for i, term := range []string{"alpha", "beta", "gamma"} {
		_, err := store.Append(ctx, term, restaurantCtx, reviewResult, baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	items, err := store.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "gamma", items[0].Term)
	assert.Equal(t, "alpha", items[2].Term)

	limited, err := store.List(ctx, model.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "gamma", limited[0].Term)

	merged, err := store.List(ctx, model.ListOptions{Status: model.StatusMerged})
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestStore_StateMachine(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	id, err := store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)

	ok, err := store.MarkMerged(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "pending items cannot merge")

	res := model.Resolution{Action: model.ResolveUseExisting, Key: "pos.fire_order"}
	ok, err = store.Resolve(ctx, id, res, "ana")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Resolve(ctx, id, model.Resolution{Action: model.ResolveSkip}, "bob")
	require.NoError(t, err)
	assert.False(t, ok, "already resolved")

	item, _, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, item.Status)
	assert.Equal(t, "ana", item.ReviewedBy)
	require.NotNil(t, item.ReviewedAt)
	assert.True(t, item.ReviewedAt.Equal(baseTime.Add(time.Hour)))
	require.NotNil(t, item.Resolution)
	assert.Equal(t, res, *item.Resolution)

	ok, err = store.MarkMerged(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStats{Merged: 1, Total: 1}, stats)
}

func TestStore_SkipRejects(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	id, err := store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)

	ok, err := store.Resolve(ctx, id, model.Resolution{Action: model.ResolveSkip, Notes: "noise"}, "ana")
	require.NoError(t, err)
	require.True(t, ok)

	item, _, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, item.Status)

	ok, err = store.MarkMerged(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_InvalidResolution(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	id, err := store.Append(ctx, "Comanda", restaurantCtx, reviewResult, baseTime)
	require.NoError(t, err)

	_, err = store.Resolve(ctx, id, model.Resolution{Action: "merge"}, "ana")
	assert.ErrorIs(t, err, reviewqueue.ErrInvalidResolution)
}

func TestStore_UnknownID(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.MarkMerged(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
