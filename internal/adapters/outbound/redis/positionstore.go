// Package redis provides a Redis implementation of the PositionStore port
// for multi-instance deployments where the in-memory store would fragment
// the cache.
//
// Keys are prefix:address. The Redis expiry is a retention window, not the
// freshness TTL: snapshots must outlive freshness so an expired one can be
// served as a degraded fallback when a refetch fails.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// Compile-time check that PositionStore implements outbound.PositionStore.
var _ outbound.PositionStore = (*PositionStore)(nil)

// Config holds Redis store configuration.
type Config struct {
	// Addr is the Redis server address (e.g., "localhost:6379")
	Addr string
	// Password for Redis authentication (empty for no auth)
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// Retention is how long snapshots are kept before Redis expires them.
	Retention time.Duration
	// KeyPrefix is prepended to all keys
	KeyPrefix string
}

// ConfigDefaults returns sensible defaults for the Redis store.
func ConfigDefaults() Config {
	return Config{
		Addr:      "localhost:6379",
		Retention: 24 * time.Hour,
		KeyPrefix: "lens",
	}
}

// PositionStore is a Redis implementation of the outbound.PositionStore port.
type PositionStore struct {
	client    *redis.Client
	retention time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// NewPositionStore creates a new Redis-backed position store.
func NewPositionStore(cfg Config, logger *slog.Logger) (*PositionStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.Retention == 0 {
		cfg.Retention = ConfigDefaults().Retention
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = ConfigDefaults().KeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &PositionStore{
		client:    client,
		retention: cfg.Retention,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger.With("component", "redis-positions"),
	}, nil
}

func (s *PositionStore) key(address string) string {
	return fmt.Sprintf("%s:positions:%s", s.keyPrefix, normalize(address))
}

// Get returns the snapshot for the address and whether one exists.
func (s *PositionStore) Get(ctx context.Context, address string) (entity.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Snapshot{}, false, nil
	}
	if err != nil {
		return entity.Snapshot{}, false, fmt.Errorf("redis get %s: %w", address, err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		s.logger.Warn("dropping undecodable snapshot", "address", address, "error", err)
		return entity.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Set stores or overwrites the snapshot for the address.
func (s *PositionStore) Set(ctx context.Context, address string, snap entity.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", address, err)
	}
	if err := s.client.Set(ctx, s.key(address), raw, s.retention).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", address, err)
	}
	return nil
}

// Delete removes the address's snapshot.
func (s *PositionStore) Delete(ctx context.Context, address string) error {
	if err := s.client.Del(ctx, s.key(address)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", address, err)
	}
	return nil
}

// Clear removes every snapshot under the store's key prefix.
func (s *PositionStore) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("%s:positions:*", s.keyPrefix)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *PositionStore) Close() error {
	return s.client.Close()
}

func normalize(address string) string {
	return strings.ToLower(address)
}
