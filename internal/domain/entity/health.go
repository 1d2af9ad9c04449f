package entity

import (
	"encoding/json"
	"fmt"
	"math"
)

// HealthStatus classifies a health factor against caller thresholds.
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy"
	StatusWarning HealthStatus = "warning"
	StatusDanger  HealthStatus = "danger"
)

// Thresholds are the classification boundaries supplied by the caller.
// Invariant: 0 < Danger < Warning, enforced at the settings boundary
// before a value reaches the calculator.
type Thresholds struct {
	Danger  float64 `json:"dangerThreshold"`
	Warning float64 `json:"warningThreshold"`
}

// Validate rejects threshold configurations that would make the
// classification ambiguous.
func (t Thresholds) Validate() error {
	if t.Danger <= 0 || t.Warning <= 0 {
		return fmt.Errorf("thresholds must be positive, got danger=%v warning=%v", t.Danger, t.Warning)
	}
	if t.Danger >= t.Warning {
		return fmt.Errorf("danger threshold %v must be below warning threshold %v", t.Danger, t.Warning)
	}
	return nil
}

// HealthFactorResult is a derived risk metric. It is recomputed from
// positions plus thresholds on every read and never persisted.
type HealthFactorResult struct {
	// Value may be +Inf when there is no borrow exposure.
	Value           float64      `json:"-"`
	Status          HealthStatus `json:"status"`
	LiquidationLTV  float64      `json:"liquidationLTV"`
	CollateralUsd   float64      `json:"collateralUsd"`
	BorrowAssetsUsd float64      `json:"borrowAssetsUsd"`
}

// Infinite reports whether the health factor is unbounded (no borrow).
func (r HealthFactorResult) Infinite() bool {
	return math.IsInf(r.Value, 1)
}

// MarshalJSON renders +Inf as a null value with an explicit infinite flag,
// since JSON has no representation for infinity.
func (r HealthFactorResult) MarshalJSON() ([]byte, error) {
	type alias HealthFactorResult
	out := struct {
		Value    *float64 `json:"value"`
		Infinite bool     `json:"infinite"`
		alias
	}{alias: alias(r), Infinite: r.Infinite()}
	if !r.Infinite() {
		v := r.Value
		out.Value = &v
	}
	return json.Marshal(out)
}
