package outbound

import (
	"context"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// PositionStore caches portfolio snapshots keyed by lowercase wallet
// address. Freshness is judged by the caller from Snapshot.FetchedAt, so an
// implementation must retain entries past the freshness TTL: expired
// snapshots are still served as a degraded fallback when a refetch fails.
type PositionStore interface {
	// Get returns the snapshot for the address and whether one exists.
	Get(ctx context.Context, address string) (entity.Snapshot, bool, error)

	// Set stores or overwrites the snapshot for the address.
	Set(ctx context.Context, address string, snap entity.Snapshot) error

	// Delete removes the address's snapshot. Deleting a missing entry is
	// not an error.
	Delete(ctx context.Context, address string) error

	// Clear removes all snapshots.
	Clear(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
