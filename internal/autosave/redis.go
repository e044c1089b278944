package autosave

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps snapshots in Redis. Retention bounds how long a snapshot
// physically survives; it must exceed the recovery freshness window, which is
// enforced by readers, not by the TTL.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

// NewRedisClient connects to Redis from a URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) Write(ctx context.Context, snap *Snapshot) error {
	if err := snap.Key.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Set(ctx, snap.Key.String(), data, r.retention).Err(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (r *RedisStore) Read(ctx context.Context, key Key) (*Snapshot, error) {
	data, err := r.client.Get(ctx, key.String()).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
