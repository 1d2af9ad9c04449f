// Package prices implements the PriceProvider port against the unified
// price API: one GET returns best-effort USD prices for the full known
// token set, and partial responses are expected rather than exceptional.
package prices

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/httpclient"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// Compile-time check that Client implements outbound.PriceProvider.
var _ outbound.PriceProvider = (*Client)(nil)

// ClientConfig holds configuration for the price API client.
type ClientConfig struct {
	// BaseURL is the price API base URL.
	BaseURL string

	// APIKey is an optional bearer token.
	APIKey string

	// Timeout is the maximum time to wait for a single HTTP request.
	Timeout time.Duration

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int

	// RateLimitPerMin caps outgoing requests per minute.
	RateLimitPerMin int

	// Logger is the structured logger for the client.
	Logger *slog.Logger
}

// ClientConfigDefaults returns a config with default values.
func ClientConfigDefaults() ClientConfig {
	return ClientConfig{
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RateLimitPerMin: 120,
		Logger:          slog.Default(),
	}
}

// Client fetches bulk USD prices from the unified price API.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  *slog.Logger
}

// NewClient creates a new price API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	defaults := ClientConfigDefaults()
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RateLimitPerMin == 0 {
		cfg.RateLimitPerMin = defaults.RateLimitPerMin
	}
	if cfg.Logger == nil {
		cfg.Logger = defaults.Logger
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = rate.Limit(float64(cfg.RateLimitPerMin) / 60.0)

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpclient.NewClient(httpCfg, cfg.Logger),
		logger:  cfg.Logger.With("component", "price-client"),
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "unified-price-api"
}

// FetchPrices returns USD prices for the symbols the API could price.
// Symbols missing from the response are simply absent from the map.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	params := url.Values{
		"symbols":  {strings.Join(symbols, ",")},
		"currency": {"USD"},
	}
	endpoint := fmt.Sprintf("%s/v1/prices?%s", c.baseURL, params.Encode())

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	var response bulkPriceResponse
	if err := c.http.GetJSON(ctx, endpoint, headers, &response); err != nil {
		return nil, fmt.Errorf("fetching prices for %d symbols: %w", len(symbols), err)
	}

	out := make(map[string]float64, len(response.Prices))
	for symbol, price := range response.Prices {
		if price < 0 {
			c.logger.Warn("ignoring negative price", "symbol", symbol, "price", price)
			continue
		}
		out[strings.ToUpper(symbol)] = price
	}

	if len(out) < len(symbols) {
		c.logger.Debug("price response was partial",
			"requested", len(symbols), "returned", len(out))
	}

	return out, nil
}
