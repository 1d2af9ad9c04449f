package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// Compile-time check that PositionStore implements outbound.PositionStore.
var _ outbound.PositionStore = (*PositionStore)(nil)

// PositionStore is an in-memory snapshot store keyed by lowercase wallet
// address. Entries survive past the freshness TTL so an expired snapshot
// can still be served when a refetch fails; freshness is the caller's
// judgment.
type PositionStore struct {
	mu        sync.RWMutex
	snapshots map[string]entity.Snapshot
}

// NewPositionStore creates an empty in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		snapshots: make(map[string]entity.Snapshot),
	}
}

// Get returns the snapshot for the address and whether one exists.
func (s *PositionStore) Get(_ context.Context, address string) (entity.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[normalize(address)]
	return snap, ok, nil
}

// Set stores or overwrites the snapshot for the address.
func (s *PositionStore) Set(_ context.Context, address string, snap entity.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[normalize(address)] = snap
	return nil
}

// Delete removes the address's snapshot.
func (s *PositionStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, normalize(address))
	return nil
}

// Clear removes all snapshots.
func (s *PositionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[string]entity.Snapshot)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *PositionStore) Close() error {
	return nil
}

// Len returns the number of stored snapshots (for testing).
func (s *PositionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

func normalize(address string) string {
	return strings.ToLower(address)
}
