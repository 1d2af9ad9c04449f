// Package webhook delivers health-status alerts to an HTTP endpoint.
package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/httpclient"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

var _ outbound.Alerter = (*Alerter)(nil)

// Config holds configuration for the webhook alerter.
type Config struct {
	// URL is the endpoint alerts are POSTed to.
	URL string

	// AuthToken, when set, is sent as a bearer token.
	AuthToken string

	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
}

// Alerter posts health-status alerts as JSON to a configured webhook URL.
type Alerter struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// NewAlerter creates a webhook alerter.
func NewAlerter(cfg Config, logger *slog.Logger) *Alerter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Timeout

	return &Alerter{
		cfg:    cfg,
		client: httpclient.NewClient(clientCfg, logger),
		logger: logger.With("component", "webhook_alerter"),
	}
}

// SendAlert delivers an alert to the webhook endpoint.
func (a *Alerter) SendAlert(ctx context.Context, alert entity.Alert) error {
	headers := map[string]string{}
	if a.cfg.AuthToken != "" {
		headers["Authorization"] = "Bearer " + a.cfg.AuthToken
	}

	if err := a.client.PostJSON(ctx, a.cfg.URL, headers, alert, nil); err != nil {
		return fmt.Errorf("failed to deliver alert for %s: %w", alert.Address, err)
	}

	a.logger.Info("alert delivered",
		"address", alert.Address,
		"status", alert.Status,
		"prevStatus", alert.PrevStatus)
	return nil
}
