package locations

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nearby-route-service/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisLocationStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := NewRedisLocationStore(client, ttl)
	require.NoError(t, err)
	return store, mr
}

func TestPublishAndReadPositions(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	roster := domain.Roster{
		Version: 2,
		Consumers: []domain.Consumer{
			{ID: "consumer_1", Coords: domain.Coordinates{Lat: 28.61, Lon: 77.21}},
			{ID: "consumer_2", Coords: domain.Coordinates{Lat: 28.62, Lon: 77.20}},
		},
	}
	require.NoError(t, store.PublishPositions(ctx, roster))

	got, err := store.Positions(ctx, []string{"consumer_2", "consumer_1", "unknown"})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, domain.Coordinates{Lat: 28.61, Lon: 77.21}, got["consumer_1"])
	assert.Equal(t, domain.Coordinates{Lat: 28.62, Lon: 77.20}, got["consumer_2"])
}

func TestPublishOverwritesPreviousPosition(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	first := domain.Roster{Consumers: []domain.Consumer{{ID: "c", Coords: domain.Coordinates{Lat: 1, Lon: 1}}}}
	second := domain.Roster{Consumers: []domain.Consumer{{ID: "c", Coords: domain.Coordinates{Lat: 2, Lon: 2}}}}
	require.NoError(t, store.PublishPositions(ctx, first))
	require.NoError(t, store.PublishPositions(ctx, second))

	got, err := store.Positions(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Lat: 2, Lon: 2}, got["c"])
}

func TestPositionsExpireAfterTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	roster := domain.Roster{Consumers: []domain.Consumer{{ID: "c", Coords: domain.Coordinates{Lat: 1, Lon: 1}}}}
	require.NoError(t, store.PublishPositions(ctx, roster))

	mr.FastForward(2 * time.Minute)

	got, err := store.Positions(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClearRemovesPositions(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	roster := domain.Roster{Consumers: []domain.Consumer{{ID: "c", Coords: domain.Coordinates{Lat: 1, Lon: 1}}}}
	require.NoError(t, store.PublishPositions(ctx, roster))
	require.NoError(t, store.Clear(ctx))

	got, err := store.Positions(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPositionsRedisDown(t *testing.T) {
	store, mr := newTestStore(t, 0)
	mr.Close()

	_, err := store.Positions(context.Background(), []string{"c"})
	assert.Error(t, err)
}

func TestNewRedisLocationStoreNilClient(t *testing.T) {
	_, err := NewRedisLocationStore(nil, 0)
	assert.Error(t, err)
}

func TestResetPositionsRemovesPositions(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.PublishPositions(ctx, domain.Roster{
		Consumers: []domain.Consumer{{ID: "a", Coords: domain.Coordinates{Lat: 1, Lon: 2}}},
	}))
	require.NoError(t, store.ResetPositions(ctx))

	assert.False(t, mr.Exists(defaultKey))
}
