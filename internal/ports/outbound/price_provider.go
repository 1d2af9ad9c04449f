package outbound

import "context"

// PriceProvider is a bulk external price source. One call returns USD
// prices for the full requested symbol set; partial responses are allowed
// and symbols the source cannot price are simply absent from the map.
type PriceProvider interface {
	// Name returns the provider name (e.g., "worldpricer").
	Name() string

	// FetchPrices returns USD prices keyed by symbol for the symbols the
	// source could price. A missing symbol is not an error.
	FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error)
}
