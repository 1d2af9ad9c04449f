package entity

import "time"

// PositionMarket is the market half of a normalized position.
type PositionMarket struct {
	ID              string   `json:"id"`
	LiquidationLTV  float64  `json:"liquidationLTV"`
	LoanAsset       TokenRef `json:"loanAsset"`
	CollateralAsset TokenRef `json:"collateralAsset"`
}

// PositionState is the user's holdings in one market, with amounts rendered
// as decimal strings in token units and USD values computed from resolved
// prices. A USD value of 0 can mean "priced at nothing" when no price
// source succeeded; that is a degraded state, not an error.
type PositionState struct {
	CollateralAmount string  `json:"collateralAmount"`
	CollateralUsd    float64 `json:"collateralUsd"`
	BorrowAmount     string  `json:"borrowAmount"`
	BorrowAssetsUsd  float64 `json:"borrowAssetsUsd"`
	BorrowShares     string  `json:"borrowShares"`
	SupplyAmount     string  `json:"supplyAmount"`
	SupplyAssetsUsd  float64 `json:"supplyAssetsUsd"`
	SupplyShares     string  `json:"supplyShares"`
}

// NormalizedPosition is the canonical output unit of the engine: one
// non-zero (market, user) position with share amounts converted to assets
// and USD values attached.
type NormalizedPosition struct {
	Market PositionMarket `json:"market"`
	State  PositionState  `json:"state"`
}

// Portfolio is everything the engine reconstructs for one wallet address:
// lending positions, vault holdings, interest-vault deposits, and the
// ordered diagnostic trace emitted while reconstructing them.
type Portfolio struct {
	Positions        []NormalizedPosition `json:"positions"`
	Vaults           []VaultPosition      `json:"vaults,omitempty"`
	InterestDeposits []InterestDeposit    `json:"interestDeposits,omitempty"`
	Trace            []TraceEvent         `json:"trace,omitempty"`

	// Degraded is set when any read or price resolution failed and the
	// result reflects zero/absent values instead of an error.
	Degraded bool `json:"degraded,omitempty"`

	// Stale is set when the result was served from an expired snapshot
	// because a fresh fetch failed.
	Stale bool `json:"stale,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
}

// Snapshot is a cached portfolio keyed by wallet address.
type Snapshot struct {
	Portfolio Portfolio `json:"portfolio"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Fresh reports whether the snapshot is younger than ttl at time now.
func (s Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.FetchedAt) < ttl
}
