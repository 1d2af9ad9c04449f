// Package watcher runs the background risk watcher: it periodically
// recomputes aggregate health factors for every watched address and fires
// webhook alerts when an address's status worsens.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/risk"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/inbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// DefaultInterval is how often the watchlist is swept.
const DefaultInterval = 5 * time.Minute

// statusRank orders statuses by severity; a rank increase is a downgrade.
var statusRank = map[entity.HealthStatus]int{
	entity.StatusHealthy: 0,
	entity.StatusWarning: 1,
	entity.StatusDanger:  2,
}

// Service sweeps the watchlist on an interval, alerting on health-status
// downgrades. Alerts deduplicate against the last status recorded per
// address.
type Service struct {
	positions inbound.PositionService
	watchlist outbound.WatchlistRepository
	alerter   outbound.Alerter
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time
}

// NewService creates a risk watcher. An interval of 0 selects
// DefaultInterval.
func NewService(positions inbound.PositionService, watchlist outbound.WatchlistRepository, alerter outbound.Alerter, interval time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		positions: positions,
		watchlist: watchlist,
		alerter:   alerter,
		logger:    logger.With("component", "risk_watcher"),
		interval:  interval,
		now:       time.Now,
	}
}

// Run sweeps the watchlist until the context is cancelled. The first sweep
// happens immediately.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("risk watcher started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("risk watcher stopping")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep recomputes health for every watched address once. Per-address
// failures are logged and do not abort the sweep.
func (s *Service) Sweep(ctx context.Context) {
	watched, err := s.watchlist.ListWatched(ctx)
	if err != nil {
		s.logger.Error("failed to list watchlist", "error", err)
		return
	}

	for _, w := range watched {
		if err := s.checkAddress(ctx, w); err != nil {
			s.logger.Warn("watch check failed", "address", w.Address, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Service) checkAddress(ctx context.Context, w entity.WatchedAddress) error {
	portfolio, err := s.positions.GetPositions(ctx, w.Address)
	if err != nil {
		return err
	}

	result := risk.AggregateHealthFactor(portfolio.Positions, w.Thresholds)
	s.logger.Debug("health computed",
		"address", w.Address,
		"status", result.Status,
		"collateralUsd", result.CollateralUsd,
		"borrowUsd", result.BorrowAssetsUsd)

	if result.Status == w.LastStatus {
		return nil
	}

	if statusRank[result.Status] > statusRank[w.LastStatus] {
		alert := entity.Alert{
			Address:         w.Address,
			Status:          result.Status,
			PrevStatus:      w.LastStatus,
			HealthFactor:    result.Value,
			Infinite:        result.Infinite(),
			CollateralUsd:   result.CollateralUsd,
			BorrowAssetsUsd: result.BorrowAssetsUsd,
			At:              s.now().UTC(),
		}
		if result.Infinite() {
			alert.HealthFactor = 0
		}
		if err := s.alerter.SendAlert(ctx, alert); err != nil {
			// Leave the recorded status unchanged so the alert is
			// retried on the next sweep.
			return err
		}
	}

	return s.watchlist.UpdateStatus(ctx, w.Address, result.Status)
}
