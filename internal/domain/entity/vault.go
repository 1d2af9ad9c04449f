package entity

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// VaultConfig describes a single-asset yield-vault wrapper over the lending
// protocol. Static configuration, one per known vault.
type VaultConfig struct {
	VaultAddress    common.Address `json:"vaultAddress"`
	UnderlyingAsset TokenRef       `json:"underlyingAsset"`
}

// InterestVaultConfig describes the custom interest-bearing vault whose
// balance is read through a dedicated getDeposit getter.
type InterestVaultConfig struct {
	VaultAddress    common.Address `json:"vaultAddress"`
	UnderlyingAsset TokenRef       `json:"underlyingAsset"`
}

// VaultPosition is a user's holding in a wrapper vault: a share balance
// convertible to assets via the vault's own share-price function.
type VaultPosition struct {
	VaultAddress common.Address `json:"vaultAddress"`
	Asset        TokenRef       `json:"asset"`
	Shares       string         `json:"shares"`
	Assets       string         `json:"assets"`
	AssetsUsd    float64        `json:"assetsUsd"`
}

// InterestDeposit is a user's deposit in the interest-bearing vault.
// Interest is currentAmount - depositedAmount as reported by the contract;
// the engine never accrues it independently.
type InterestDeposit struct {
	VaultAddress    common.Address `json:"vaultAddress"`
	Asset           TokenRef       `json:"asset"`
	CurrentAmount   string         `json:"currentAmount"`
	DepositedAmount string         `json:"depositedAmount"`
	Interest        string         `json:"interest"`
	CurrentUsd      float64        `json:"currentUsd"`
	EndTime         time.Time      `json:"endTime"`
	LastAccrual     time.Time      `json:"lastAccrual"`
}

// RawDeposit is the verbatim getDeposit(user) tuple from the interest vault.
type RawDeposit struct {
	CurrentAmount   *big.Int
	EndTime         *big.Int
	DepositedAmount *big.Int
	LastAccrual     *big.Int
}

// IsZero reports whether the deposit is empty.
func (d RawDeposit) IsZero() bool {
	return sign(d.CurrentAmount) == 0 && sign(d.DepositedAmount) == 0
}
