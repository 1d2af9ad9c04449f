// Package inbound defines the interfaces the engine exposes to callers.
package inbound

import (
	"context"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// PositionService is the engine's caller-facing surface: cached portfolio
// reads plus explicit invalidation. Health factors are derived from the
// returned positions by the pure calculator in pkg/risk; they are never
// cached here.
type PositionService interface {
	// GetPositions returns the wallet's portfolio, served from cache when
	// fresh. On a fetch failure an expired snapshot, if any, is returned
	// with the Stale flag set instead of an error.
	GetPositions(ctx context.Context, address string) (entity.Portfolio, error)

	// Invalidate removes the cached snapshot for the address, or every
	// snapshot when address is empty, forcing the next read to the chain.
	Invalidate(ctx context.Context, address string) error

	// Ping reports whether the service's dependencies are reachable.
	Ping(ctx context.Context) error
}
