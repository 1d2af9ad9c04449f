// Package positions implements portfolio reconstruction: batched on-chain
// reads, USD price resolution, and the cached position service.
package positions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/memory"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// PriceResolver resolves USD prices for token symbols, consulting a TTL
// cache before the bulk price provider. Symbols the provider cannot price
// resolve to 0, which downstream valuation treats as "unpriced" rather
// than an error.
type PriceResolver struct {
	cache    *memory.PriceCache
	provider outbound.PriceProvider
	metrics  outbound.MetricsRecorder
	logger   *slog.Logger
}

// NewPriceResolver creates a price resolver.
func NewPriceResolver(cache *memory.PriceCache, provider outbound.PriceProvider, metrics outbound.MetricsRecorder, logger *slog.Logger) *PriceResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &PriceResolver{
		cache:    cache,
		provider: provider,
		metrics:  metrics,
		logger:   logger.With("component", "price_resolver"),
	}
}

// ResolveAll returns USD prices for the given symbols. Cached fresh prices
// are served directly; the remainder is fetched from the provider in one
// bulk call. Every requested symbol appears in the returned map, with 0
// for symbols no source could price.
func (r *PriceResolver) ResolveAll(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	var missing []string
	seen := make(map[string]struct{}, len(symbols))

	for _, symbol := range symbols {
		normalized := strings.ToUpper(symbol)
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		if price, ok := r.cache.Get(normalized); ok {
			prices[normalized] = price
			continue
		}
		missing = append(missing, normalized)
	}

	if len(missing) == 0 {
		return prices, nil
	}

	fetched, err := r.provider.FetchPrices(ctx, missing)
	if err != nil {
		// A provider outage degrades the missing symbols to 0; cached
		// prices already collected are still returned.
		r.logger.Warn("bulk price fetch failed",
			"provider", r.provider.Name(),
			"symbols", missing,
			"error", err)
		fetched = nil
	}

	for _, symbol := range missing {
		price, ok := fetched[symbol]
		if !ok || price <= 0 {
			r.logger.Warn("no USD price available, valuing as zero", "symbol", symbol)
			r.metrics.RecordDegradedPrice(ctx, symbol)
			prices[symbol] = 0
			continue
		}
		r.cache.Set(symbol, price)
		prices[symbol] = price
	}

	return prices, nil
}

// Resolve returns the USD price for a single symbol, or 0 when no source
// can price it.
func (r *PriceResolver) Resolve(ctx context.Context, symbol string) (float64, error) {
	prices, err := r.ResolveAll(ctx, []string{symbol})
	if err != nil {
		return 0, fmt.Errorf("resolving price for %s: %w", symbol, err)
	}
	return prices[strings.ToUpper(symbol)], nil
}
