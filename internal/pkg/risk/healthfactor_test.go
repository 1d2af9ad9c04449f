package risk

import (
	"math"
	"testing"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

var testThresholds = entity.Thresholds{Danger: 1.05, Warning: 1.3}

func position(collateralUsd, borrowUsd, ltv float64) entity.NormalizedPosition {
	return entity.NormalizedPosition{
		Market: entity.PositionMarket{LiquidationLTV: ltv},
		State: entity.PositionState{
			CollateralUsd:   collateralUsd,
			BorrowAssetsUsd: borrowUsd,
		},
	}
}

func TestHealthFactor(t *testing.T) {
	tests := []struct {
		name          string
		collateralUsd float64
		borrowUsd     float64
		ltv           float64
		wantValue     float64
		wantInfinite  bool
		wantStatus    entity.HealthStatus
	}{
		{
			name:          "no borrow is infinitely healthy",
			collateralUsd: 1000,
			borrowUsd:     0,
			ltv:           0.77,
			wantInfinite:  true,
			wantStatus:    entity.StatusHealthy,
		},
		{
			name:          "zero collateral with borrow",
			collateralUsd: 0,
			borrowUsd:     100,
			ltv:           0.77,
			wantValue:     0,
			wantStatus:    entity.StatusDanger,
		},
		{
			name:          "healthy position",
			collateralUsd: 1000,
			borrowUsd:     500,
			ltv:           0.77,
			wantValue:     1.54,
			wantStatus:    entity.StatusHealthy,
		},
		{
			name:          "warning band",
			collateralUsd: 1000,
			borrowUsd:     700,
			ltv:           0.86,
			wantValue:     1.2285714285714286,
			wantStatus:    entity.StatusWarning,
		},
		{
			name:          "under liquidation threshold",
			collateralUsd: 1000,
			borrowUsd:     900,
			ltv:           0.86,
			wantValue:     0.9555555555555556,
			wantStatus:    entity.StatusDanger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HealthFactor(position(tt.collateralUsd, tt.borrowUsd, tt.ltv), testThresholds)
			if tt.wantInfinite {
				if !got.Infinite() {
					t.Fatalf("expected infinite health factor, got %v", got.Value)
				}
			} else if math.Abs(got.Value-tt.wantValue) > 1e-12 {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestClassifyBoundariesAreHalfOpen(t *testing.T) {
	thresholds := entity.Thresholds{Danger: 1.2, Warning: 1.5}

	tests := []struct {
		hf   float64
		want entity.HealthStatus
	}{
		{1.1999999, entity.StatusDanger},
		{1.2, entity.StatusWarning}, // danger boundary belongs to warning
		{1.4999999, entity.StatusWarning},
		{1.5, entity.StatusHealthy}, // warning boundary belongs to healthy
		{2.0, entity.StatusHealthy},
	}

	for _, tt := range tests {
		// Craft collateral so that hf = collateral*1.0/100 = tt.hf.
		got := HealthFactor(position(tt.hf*100, 100, 1.0), thresholds)
		if got.Status != tt.want {
			t.Errorf("hf=%v: Status = %s, want %s", tt.hf, got.Status, tt.want)
		}
	}
}

func TestAggregateHealthFactorWeightsLTVByCollateral(t *testing.T) {
	// All collateral value sits in the 0.86 market, so the weighted LTV
	// must be 0.86 even though another market configures 0.77.
	positions := []entity.NormalizedPosition{
		position(0, 100, 0.77),
		position(1000, 200, 0.86),
	}

	got := AggregateHealthFactor(positions, testThresholds)
	if got.LiquidationLTV != 0.86 {
		t.Errorf("LiquidationLTV = %v, want 0.86", got.LiquidationLTV)
	}
	if got.CollateralUsd != 1000 || got.BorrowAssetsUsd != 300 {
		t.Errorf("sums: collateral=%v borrow=%v, want 1000/300", got.CollateralUsd, got.BorrowAssetsUsd)
	}
	want := 1000 * 0.86 / 300
	if math.Abs(got.Value-want) > 1e-12 {
		t.Errorf("Value = %v, want %v", got.Value, want)
	}
}

func TestAggregateHealthFactorMixedWeights(t *testing.T) {
	positions := []entity.NormalizedPosition{
		position(600, 100, 0.77),
		position(400, 100, 0.86),
	}
	got := AggregateHealthFactor(positions, testThresholds)
	wantLTV := (0.77*600 + 0.86*400) / 1000
	if math.Abs(got.LiquidationLTV-wantLTV) > 1e-12 {
		t.Errorf("LiquidationLTV = %v, want %v", got.LiquidationLTV, wantLTV)
	}
}

func TestAggregateHealthFactorEmpty(t *testing.T) {
	got := AggregateHealthFactor(nil, testThresholds)
	if !got.Infinite() {
		t.Errorf("no positions should be infinitely healthy, got %v", got.Value)
	}
	if got.Status != entity.StatusHealthy {
		t.Errorf("Status = %s, want healthy", got.Status)
	}
}

func TestSimulate(t *testing.T) {
	positions := []entity.NormalizedPosition{position(1000, 500, 0.8)}

	t.Run("added borrow lowers health", func(t *testing.T) {
		base := AggregateHealthFactor(positions, testThresholds)
		simulated := Simulate(positions, 0, 300, testThresholds)
		if simulated.Value >= base.Value {
			t.Errorf("simulated %v should be below base %v", simulated.Value, base.Value)
		}
		want := 1000 * 0.8 / 800
		if math.Abs(simulated.Value-want) > 1e-12 {
			t.Errorf("Value = %v, want %v", simulated.Value, want)
		}
	})

	t.Run("negative totals clamp to zero", func(t *testing.T) {
		simulated := Simulate(positions, -2000, 0, testThresholds)
		if simulated.CollateralUsd != 0 {
			t.Errorf("CollateralUsd = %v, want 0", simulated.CollateralUsd)
		}
		if simulated.Status != entity.StatusDanger {
			t.Errorf("Status = %s, want danger", simulated.Status)
		}
	})

	t.Run("repaying everything is infinitely healthy", func(t *testing.T) {
		simulated := Simulate(positions, 0, -500, testThresholds)
		if !simulated.Infinite() {
			t.Errorf("expected infinite health factor, got %v", simulated.Value)
		}
	})
}
