package outbound

import (
	"context"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// WatchlistRepository stores the set of wallets the risk watcher monitors.
type WatchlistRepository interface {
	// ListWatched returns every watched address with its thresholds and
	// the status it was last alerted at.
	ListWatched(ctx context.Context) ([]entity.WatchedAddress, error)

	// Watch adds or updates a watched address.
	Watch(ctx context.Context, w entity.WatchedAddress) error

	// Unwatch removes an address from the watchlist.
	Unwatch(ctx context.Context, address string) error

	// UpdateStatus records the status an address was last alerted at, used
	// to deduplicate notifications.
	UpdateStatus(ctx context.Context, address string, status entity.HealthStatus) error
}

// Alerter delivers health-status alerts to an external notification target.
type Alerter interface {
	SendAlert(ctx context.Context, alert entity.Alert) error
}
