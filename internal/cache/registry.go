// Package cache tracks live matches in Redis so external tooling (and
// future multi-node deployments) can see which matches are running.
// Like the database, it is optional.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "lever:match:"
	// matchTTL bounds how long a crashed server's matches linger.
	matchTTL = 5 * time.Minute
)

// Registry is the live-match registry backed by Redis.
type Registry struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string) (*Registry, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Registry{client: client}, nil
}

// Close releases the client.
func (r *Registry) Close() error {
	return r.client.Close()
}

// Register records a match as live.
func (r *Registry) Register(ctx context.Context, matchID uuid.UUID, humanCount int) error {
	key := keyPrefix + matchID.String()
	if err := r.client.Set(ctx, key, humanCount, matchTTL).Err(); err != nil {
		return fmt.Errorf("register match %s: %w", matchID, err)
	}
	return nil
}

// Heartbeat refreshes a live match's TTL.
func (r *Registry) Heartbeat(ctx context.Context, matchID uuid.UUID) error {
	key := keyPrefix + matchID.String()
	if err := r.client.Expire(ctx, key, matchTTL).Err(); err != nil {
		return fmt.Errorf("heartbeat match %s: %w", matchID, err)
	}
	return nil
}

// Unregister drops a finished match.
func (r *Registry) Unregister(ctx context.Context, matchID uuid.UUID) error {
	key := keyPrefix + matchID.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("unregister match %s: %w", matchID, err)
	}
	return nil
}

// Active lists the IDs of currently registered matches.
func (r *Registry) Active(ctx context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(iter.Val()[len(keyPrefix):])
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan live matches: %w", err)
	}
	return out, nil
}
