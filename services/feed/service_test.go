package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"platepick/models"
	"platepick/services/location"
	"platepick/services/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memSnapshotCache struct {
	mu    sync.Mutex
	snaps map[string]models.FeedSnapshot
}

func newMemSnapshotCache() *memSnapshotCache {
	return &memSnapshotCache{snaps: make(map[string]models.FeedSnapshot)}
}

func (c *memSnapshotCache) Set(ctx context.Context, userID string, snap models.FeedSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps[userID] = snap
	return nil
}

func (c *memSnapshotCache) Get(ctx context.Context, userID string) (*models.FeedSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (c *memSnapshotCache) Delete(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, userID)
	return nil
}

func newTestService(client *scriptedClient) (*DefaultFeedService, *memSnapshotCache) {
	cache := newMemSnapshotCache()
	return NewDefaultFeedService(client, cache, 20, 4000, zap.NewNop()), cache
}

func singlePageClient(ids ...string) *scriptedClient {
	return &scriptedClient{
		fn: func(call int, token *string) (*places.Page, error) {
			records := make([]places.PlaceRecord, 0, len(ids))
			for _, id := range ids {
				records = append(records, rawRecord(id))
			}
			return pageWith("", records...), nil
		},
	}
}

func fixedLocator() location.Provider {
	return location.Fixed{Coordinate: testOrigin}
}

func TestServiceStartSessionLoadsFirstPage(t *testing.T) {
	svc, cache := newTestService(singlePageClient("A", "B"))
	ctx := context.Background()

	snap, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, StateReady, snapState(snap))
	require.NotNil(t, snap.Current)
	assert.Equal(t, "A", snap.Current.ID)

	cached, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, snap.SessionID, cached.SessionID)
}

func TestServiceOperationsWithoutSession(t *testing.T) {
	svc, _ := newTestService(singlePageClient("A"))
	ctx := context.Background()

	_, err := svc.Current(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Advance(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = svc.Refresh(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, svc.StageFilters(ctx, "ghost", models.SearchFilters{}), ErrNoSession)
}

func TestServiceCurrentFallsBackToCachedSnapshot(t *testing.T) {
	svc, _ := newTestService(singlePageClient("A"))
	ctx := context.Background()

	started, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)

	// Evict the live session; the cached snapshot still serves Current.
	reaped := svc.ReapIdle(0)
	assert.Equal(t, 1, reaped)

	snap, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, started.SessionID, snap.SessionID)

	// But Advance needs a live session.
	_, err = svc.Advance(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestServiceStartSessionReplacesExisting(t *testing.T) {
	svc, _ := newTestService(singlePageClient("A"))
	ctx := context.Background()

	first, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)
	second, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionID, second.SessionID)

	snap, err := svc.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.SessionID, snap.SessionID)
}

func TestServiceCloseSessionDropsCache(t *testing.T) {
	svc, cache := newTestService(singlePageClient("A"))
	ctx := context.Background()

	_, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)

	svc.CloseSession(ctx, "u1")

	cached, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, cached)
	_, err = svc.Current(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestServiceReapIdleKeepsActiveSessions(t *testing.T) {
	svc, _ := newTestService(singlePageClient("A"))
	ctx := context.Background()

	_, err := svc.StartSession(ctx, "u1", fixedLocator(), models.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, 0, svc.ReapIdle(time.Hour))
	_, err = svc.Advance(ctx, "u1")
	require.NoError(t, err)
}
