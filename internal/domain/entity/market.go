package entity

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MarketConfig describes one known lending market. Loaded at startup and
// never mutated; one config exists per market the engine tracks.
type MarketConfig struct {
	// MarketID is the 32-byte market identifier used by the lending contract.
	MarketID common.Hash `json:"marketId"`

	CollateralToken TokenRef `json:"collateralToken"`
	LoanToken       TokenRef `json:"loanToken"`

	// LiquidationLTV is the liquidation loan-to-value as a fraction in (0,1].
	// The on-chain value is reconciled against this at read time; the
	// configured value stays authoritative for health computation.
	LiquidationLTV float64 `json:"liquidationLTV"`

	// OracleAddress is the market's own price oracle, if it has one.
	OracleAddress *common.Address `json:"oracleAddress,omitempty"`

	Active bool `json:"active"`
}

// Validate checks the config invariants.
func (m MarketConfig) Validate() error {
	if m.MarketID == (common.Hash{}) {
		return fmt.Errorf("market id must not be zero")
	}
	if m.LiquidationLTV <= 0 || m.LiquidationLTV > 1 {
		return fmt.Errorf("liquidationLTV must be in (0,1], got %v", m.LiquidationLTV)
	}
	if m.CollateralToken.Symbol == "" || m.LoanToken.Symbol == "" {
		return fmt.Errorf("market %s: collateral and loan tokens are required", m.MarketID)
	}
	return nil
}

// RawPosition is the verbatim (market, user) position returned by the
// lending contract. Fetched per request, never persisted.
type RawPosition struct {
	SupplyShares *big.Int
	BorrowShares *big.Int
	Collateral   *big.Int
}

// IsZero reports whether the position carries no supply, borrow, or
// collateral. Zero positions produce no output entry.
func (p RawPosition) IsZero() bool {
	return sign(p.SupplyShares) == 0 && sign(p.BorrowShares) == 0 && sign(p.Collateral) == 0
}

// RawMarketState is the verbatim market accounting state returned by the
// lending contract for one market.
type RawMarketState struct {
	TotalSupplyAssets *big.Int
	TotalSupplyShares *big.Int
	TotalBorrowAssets *big.Int
	TotalBorrowShares *big.Int
	LastUpdate        *big.Int
	Fee               *big.Int
}

func sign(x *big.Int) int {
	if x == nil {
		return 0
	}
	return x.Sign()
}
