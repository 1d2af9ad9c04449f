// Package risk computes health factors from normalized positions. All
// functions are pure: the same inputs always yield the same result, which
// is what makes what-if simulation and live display share one code path.
package risk

import (
	"math"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// HealthFactor computes the risk ratio of a single position:
// (collateralUsd * liquidationLTV) / borrowAssetsUsd, or +Inf when there is
// no borrow exposure.
func HealthFactor(p entity.NormalizedPosition, t entity.Thresholds) entity.HealthFactorResult {
	return compute(p.State.CollateralUsd, p.State.BorrowAssetsUsd, p.Market.LiquidationLTV, t)
}

// AggregateHealthFactor computes the risk ratio across positions using
// summed USD values and a collateral-value-weighted average liquidation
// LTV. A straight average would misrepresent risk when position sizes
// differ sharply.
func AggregateHealthFactor(positions []entity.NormalizedPosition, t entity.Thresholds) entity.HealthFactorResult {
	var collateralUsd, borrowUsd, weighted float64
	for _, p := range positions {
		collateralUsd += p.State.CollateralUsd
		borrowUsd += p.State.BorrowAssetsUsd
		weighted += p.Market.LiquidationLTV * p.State.CollateralUsd
	}

	var ltv float64
	if collateralUsd > 0 {
		ltv = weighted / collateralUsd
	}

	return compute(collateralUsd, borrowUsd, ltv, t)
}

// Simulate recomputes the aggregate health factor with the given USD deltas
// applied to total collateral and borrow. Negative results clamp to zero;
// the formula is otherwise identical to the live computation.
func Simulate(positions []entity.NormalizedPosition, collateralDeltaUsd, borrowDeltaUsd float64, t entity.Thresholds) entity.HealthFactorResult {
	base := AggregateHealthFactor(positions, t)
	collateral := math.Max(0, base.CollateralUsd+collateralDeltaUsd)
	borrow := math.Max(0, base.BorrowAssetsUsd+borrowDeltaUsd)
	return compute(collateral, borrow, base.LiquidationLTV, t)
}

func compute(collateralUsd, borrowUsd, ltv float64, t entity.Thresholds) entity.HealthFactorResult {
	out := entity.HealthFactorResult{
		LiquidationLTV:  ltv,
		CollateralUsd:   collateralUsd,
		BorrowAssetsUsd: borrowUsd,
	}

	if borrowUsd == 0 {
		out.Value = math.Inf(1)
		out.Status = entity.StatusHealthy
		return out
	}

	out.Value = collateralUsd * ltv / borrowUsd
	out.Status = classify(out.Value, t)
	return out
}

// classify maps a health factor onto the half-open threshold intervals:
// [0, danger) → danger, [danger, warning) → warning, [warning, ∞) → healthy.
func classify(hf float64, t entity.Thresholds) entity.HealthStatus {
	switch {
	case hf < t.Danger:
		return entity.StatusDanger
	case hf < t.Warning:
		return entity.StatusWarning
	default:
		return entity.StatusHealthy
	}
}
