// Package blockchain holds the protocol-level read helpers of the position
// engine: share/asset math, Morpho call packing and unpacking, and the
// market-oracle price ratio fallback.
package blockchain

import (
	"math"
	"math/big"
	"strings"
)

// SharesToAssets converts protocol shares to underlying assets with the
// proportional formula assets = shares * totalAssets / totalShares. The
// division truncates, matching the contract's integer semantics; no
// rounding up. Returns 0 when totalShares is zero or any input is nil.
func SharesToAssets(shares, totalAssets, totalShares *big.Int) *big.Int {
	if shares == nil || totalAssets == nil || totalShares == nil || totalShares.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(shares, totalAssets)
	return out.Quo(out, totalShares)
}

// FormatUnits renders a raw token amount as a decimal string in token
// units, trimming trailing zeros ("1500000" at 6 decimals → "1.5").
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	s := amount.String()
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}

	intPart := s[:len(s)-d]
	fracPart := strings.TrimRight(s[len(s)-d:], "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// AmountToFloat converts a raw token amount to a float64 in token units.
// Precision loss beyond float64's 53 bits is acceptable here: the value
// feeds USD display math, not on-chain accounting.
func AmountToFloat(amount *big.Int, decimals uint8) float64 {
	if amount == nil || amount.Sign() == 0 {
		return 0
	}
	f := new(big.Float).SetInt(amount)
	divisor := new(big.Float).SetFloat64(math.Pow10(int(decimals)))
	out, _ := new(big.Float).Quo(f, divisor).Float64()
	return out
}
