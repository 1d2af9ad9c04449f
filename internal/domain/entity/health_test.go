package entity

import (
	"encoding/json"
	"math"
	"testing"
)

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name    string
		t       Thresholds
		wantErr bool
	}{
		{"valid", Thresholds{Danger: 1.05, Warning: 1.3}, false},
		{"danger above warning", Thresholds{Danger: 1.5, Warning: 1.2}, true},
		{"danger equals warning", Thresholds{Danger: 1.2, Warning: 1.2}, true},
		{"zero danger", Thresholds{Danger: 0, Warning: 1.2}, true},
		{"negative warning", Thresholds{Danger: 1.05, Warning: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.t.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHealthFactorResultMarshalJSON(t *testing.T) {
	t.Run("finite value", func(t *testing.T) {
		result := HealthFactorResult{
			Value:           1.54,
			Status:          StatusHealthy,
			LiquidationLTV:  0.77,
			CollateralUsd:   1000,
			BorrowAssetsUsd: 500,
		}
		raw, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if decoded["value"] != 1.54 {
			t.Errorf("value = %v, want 1.54", decoded["value"])
		}
		if decoded["infinite"] != false {
			t.Errorf("infinite = %v, want false", decoded["infinite"])
		}
	})

	t.Run("infinite value renders null", func(t *testing.T) {
		result := HealthFactorResult{
			Value:  math.Inf(1),
			Status: StatusHealthy,
		}
		raw, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if decoded["value"] != nil {
			t.Errorf("value = %v, want null", decoded["value"])
		}
		if decoded["infinite"] != true {
			t.Errorf("infinite = %v, want true", decoded["infinite"])
		}
	})
}

func TestHealthFactorResultInfinite(t *testing.T) {
	if (HealthFactorResult{Value: 1.5}).Infinite() {
		t.Error("finite value reported infinite")
	}
	if !(HealthFactorResult{Value: math.Inf(1)}).Infinite() {
		t.Error("+Inf not reported infinite")
	}
}
