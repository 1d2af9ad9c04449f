package entity

import "time"

// WatchedAddress is a wallet the risk watcher monitors, with per-address
// alert thresholds and the last status it was alerted at.
type WatchedAddress struct {
	Address    string       `json:"address"`
	Thresholds Thresholds   `json:"thresholds"`
	LastStatus HealthStatus `json:"lastStatus"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Alert is a health-status change notification sent to a webhook.
type Alert struct {
	Address         string       `json:"address"`
	Status          HealthStatus `json:"status"`
	PrevStatus      HealthStatus `json:"prevStatus"`
	HealthFactor    float64      `json:"healthFactor,omitempty"`
	Infinite        bool         `json:"infinite,omitempty"`
	CollateralUsd   float64      `json:"collateralUsd"`
	BorrowAssetsUsd float64      `json:"borrowAssetsUsd"`
	At              time.Time    `json:"at"`
}
