package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nearby-route-service/internal/domain"
	"nearby-route-service/internal/platform/obs"
)

const defaultKey = "nearby:consumer_positions"

type position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	At  int64   `json:"at_ms"`
}

// RedisLocationStore keeps the last-known position of every consumer in a
// single Redis hash (field = consumer id). The simulator publishes into it
// on every tick and roster loads read it back.
//
// The store is safe for concurrent use.
type RedisLocationStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisLocationStore wraps client. A positive ttl expires the whole hash
// when nothing publishes for that long.
func NewRedisLocationStore(client *redis.Client, ttl time.Duration) (*RedisLocationStore, error) {
	if client == nil {
		return nil, errors.New("redis location store: client is nil")
	}
	return &RedisLocationStore{
		client: client,
		key:    defaultKey,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Store all consumer positions of a roster snapshot.
func (s *RedisLocationStore) PublishPositions(ctx context.Context, roster domain.Roster) (err error) {
	defer obs.Time(ctx, "locations.Publish")(&err)

	if len(roster.Consumers) == 0 {
		return nil
	}

	at := s.now().UnixMilli()
	values := make(map[string]any, len(roster.Consumers))
	for _, c := range roster.Consumers {
		b, err := json.Marshal(position{Lat: c.Coords.Lat, Lon: c.Coords.Lon, At: at})
		if err != nil {
			return fmt.Errorf("publish positions: encode %q: %w", c.ID, err)
		}
		values[c.ID] = string(b)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, values)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish positions: redis exec: %w", err)
	}

	return nil
}

// Return stored positions for ids; ids never published are omitted.
func (s *RedisLocationStore) Positions(ctx context.Context, ids []string) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := s.client.HMGet(ctx, s.key, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("get positions: redis hmget: %w", err)
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p position
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("get positions: decode %q: %w", ids[i], err)
		}
		out[ids[i]] = domain.Coordinates{Lat: p.Lat, Lon: p.Lon}
	}

	return out, nil
}

// Remove every stored position.
func (s *RedisLocationStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear positions: redis del: %w", err)
	}
	return nil
}

// ResetPositions drops simulated positions once a simulation stops, so
// later roster loads fall back to repository positions.
func (s *RedisLocationStore) ResetPositions(ctx context.Context) (err error) {
	defer obs.Time(ctx, "locations.Reset")(&err)
	return s.Clear(ctx)
}
