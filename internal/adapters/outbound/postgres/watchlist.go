package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// Verify interface compliance at compile time.
var _ outbound.WatchlistRepository = (*WatchlistRepository)(nil)

const watchlistSchema = `
CREATE TABLE IF NOT EXISTS lens_watchlist (
    address           TEXT PRIMARY KEY,
    danger_threshold  DOUBLE PRECISION NOT NULL,
    warning_threshold DOUBLE PRECISION NOT NULL,
    last_status       TEXT NOT NULL DEFAULT '',
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// WatchlistRepository implements outbound.WatchlistRepository backed by
// PostgreSQL. Addresses are stored lowercased.
type WatchlistRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewWatchlistRepository creates a PostgreSQL-backed watchlist repository.
func NewWatchlistRepository(db *pgxpool.Pool, logger *slog.Logger) *WatchlistRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchlistRepository{
		db:     db,
		logger: logger.With("component", "watchlist_repository"),
	}
}

// EnsureSchema creates the watchlist table if it does not exist.
func (r *WatchlistRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, watchlistSchema); err != nil {
		return fmt.Errorf("failed to create watchlist schema: %w", err)
	}
	return nil
}

// ListWatched returns every watched address with its thresholds and the
// status it was last alerted at.
func (r *WatchlistRepository) ListWatched(ctx context.Context) ([]entity.WatchedAddress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT address, danger_threshold, warning_threshold, last_status, updated_at
		FROM lens_watchlist
		ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var watched []entity.WatchedAddress
	for rows.Next() {
		var w entity.WatchedAddress
		var status string
		if err := rows.Scan(&w.Address, &w.Thresholds.Danger, &w.Thresholds.Warning, &status, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		w.LastStatus = entity.HealthStatus(status)
		watched = append(watched, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist rows: %w", err)
	}

	return watched, nil
}

// Watch adds an address to the watchlist, or updates its thresholds if it is
// already present.
func (r *WatchlistRepository) Watch(ctx context.Context, w entity.WatchedAddress) error {
	if err := w.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds for %s: %w", w.Address, err)
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO lens_watchlist (address, danger_threshold, warning_threshold, last_status, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (address) DO UPDATE SET
			danger_threshold = EXCLUDED.danger_threshold,
			warning_threshold = EXCLUDED.warning_threshold,
			updated_at = now()`,
		strings.ToLower(w.Address), w.Thresholds.Danger, w.Thresholds.Warning, string(w.LastStatus))
	if err != nil {
		return fmt.Errorf("failed to upsert watched address %s: %w", w.Address, err)
	}

	r.logger.Debug("address watched",
		"address", w.Address,
		"danger", w.Thresholds.Danger,
		"warning", w.Thresholds.Warning)
	return nil
}

// Unwatch removes an address from the watchlist. Removing an address that is
// not watched is not an error.
func (r *WatchlistRepository) Unwatch(ctx context.Context, address string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM lens_watchlist WHERE address = $1`,
		strings.ToLower(address))
	if err != nil {
		return fmt.Errorf("failed to unwatch address %s: %w", address, err)
	}

	r.logger.Debug("address unwatched", "address", address, "removed", tag.RowsAffected())
	return nil
}

// UpdateStatus records the status an address was last alerted at.
func (r *WatchlistRepository) UpdateStatus(ctx context.Context, address string, status entity.HealthStatus) error {
	_, err := r.db.Exec(ctx, `
		UPDATE lens_watchlist
		SET last_status = $2, updated_at = now()
		WHERE address = $1`,
		strings.ToLower(address), string(status))
	if err != nil {
		return fmt.Errorf("failed to update status for %s: %w", address, err)
	}
	return nil
}
