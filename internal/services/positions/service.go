package positions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/inbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

var _ inbound.PositionService = (*Service)(nil)

// DefaultSnapshotTTL is how long a cached portfolio is served without
// refetching.
const DefaultSnapshotTTL = 60 * time.Second

// Service is the cached portfolio read surface. Snapshots younger than the
// TTL are served from the store; a failed refetch falls back to an expired
// snapshot marked stale rather than erroring when one exists.
type Service struct {
	reconstructor *Reconstructor
	store         outbound.PositionStore
	metrics       outbound.MetricsRecorder
	logger        *slog.Logger
	ttl           time.Duration
	now           func() time.Time
}

// NewService creates the position service. A ttl of 0 selects
// DefaultSnapshotTTL.
func NewService(reconstructor *Reconstructor, store outbound.PositionStore, metrics outbound.MetricsRecorder, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Service{
		reconstructor: reconstructor,
		store:         store,
		metrics:       metrics,
		logger:        logger.With("component", "position_service"),
		ttl:           ttl,
		now:           time.Now,
	}
}

// GetPositions returns the wallet's portfolio, served from the snapshot
// store when fresh.
func (s *Service) GetPositions(ctx context.Context, address string) (entity.Portfolio, error) {
	if !common.IsHexAddress(address) {
		return entity.Portfolio{}, fmt.Errorf("invalid address %q", address)
	}
	key := strings.ToLower(address)

	snap, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("snapshot lookup failed", "address", key, "error", err)
		found = false
	}
	if found && snap.Fresh(s.now(), s.ttl) {
		s.metrics.RecordCacheLookup(ctx, "hit")
		return snap.Portfolio, nil
	}
	s.metrics.RecordCacheLookup(ctx, "miss")

	started := s.now()
	portfolio, err := s.reconstructor.Reconstruct(ctx, common.HexToAddress(address))
	if err != nil {
		s.metrics.RecordReconstruction(ctx, s.now().Sub(started), "error")
		if found {
			// An expired snapshot beats an error.
			s.logger.Warn("refetch failed, serving stale snapshot",
				"address", key,
				"snapshotAge", s.now().Sub(snap.FetchedAt),
				"error", err)
			s.metrics.RecordCacheLookup(ctx, "stale")
			stale := snap.Portfolio
			stale.Stale = true
			return stale, nil
		}
		return entity.Portfolio{}, fmt.Errorf("fetching positions for %s: %w", key, err)
	}

	status := "ok"
	if portfolio.Degraded {
		status = "degraded"
	}
	s.metrics.RecordReconstruction(ctx, s.now().Sub(started), status)

	snapshot := entity.Snapshot{Portfolio: portfolio, FetchedAt: s.now()}
	if err := s.store.Set(ctx, key, snapshot); err != nil {
		s.logger.Warn("snapshot store failed", "address", key, "error", err)
	}

	return portfolio, nil
}

// Invalidate removes the cached snapshot for the address, or every snapshot
// when address is empty.
func (s *Service) Invalidate(ctx context.Context, address string) error {
	if address == "" {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clearing position cache: %w", err)
		}
		s.logger.Info("position cache cleared")
		return nil
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid address %q", address)
	}
	key := strings.ToLower(address)
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidating snapshot for %s: %w", key, err)
	}
	s.logger.Info("snapshot invalidated", "address", key)
	return nil
}

// Ping verifies the snapshot store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if _, _, err := s.store.Get(ctx, "0x0000000000000000000000000000000000000000"); err != nil {
		return fmt.Errorf("position store unreachable: %w", err)
	}
	return nil
}

// SetClock replaces the service clock (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
