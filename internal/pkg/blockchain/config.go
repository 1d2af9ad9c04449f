package blockchain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// Config is the static market/vault universe the engine tracks, loaded once
// at startup and never mutated.
type Config struct {
	Morpho         common.Address               `json:"morpho"`
	Markets        []entity.MarketConfig        `json:"markets"`
	Vaults         []entity.VaultConfig         `json:"vaults"`
	InterestVaults []entity.InterestVaultConfig `json:"interestVaults"`
}

// Validate checks every market config.
func (c Config) Validate() error {
	if c.Morpho == (common.Address{}) {
		return fmt.Errorf("morpho address is required")
	}
	for i, m := range c.Markets {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("market %d: %w", i, err)
		}
	}
	return nil
}

// ActiveMarkets returns the markets flagged active, in configured order.
func (c Config) ActiveMarkets() []entity.MarketConfig {
	out := make([]entity.MarketConfig, 0, len(c.Markets))
	for _, m := range c.Markets {
		if m.Active {
			out = append(out, m)
		}
	}
	return out
}

// LoadConfig reads a market universe from a JSON file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultWorldChainConfig returns the compiled-in World Chain universe used
// when no config file is supplied.
func DefaultWorldChainConfig() Config {
	wld := entity.TokenRef{Address: WorldChainWLD, Symbol: "WLD", Decimals: 18}
	usdc := entity.TokenRef{Address: WorldChainUSDC, Symbol: "USDC", Decimals: 6}
	wbtc := entity.TokenRef{Address: WorldChainWBTC, Symbol: "WBTC", Decimals: 8}
	weth := entity.TokenRef{Address: WorldChainWETH, Symbol: "WETH", Decimals: 18}

	return Config{
		Morpho: WorldChainMorpho,
		Markets: []entity.MarketConfig{
			{
				MarketID:        common.HexToHash("0x9db88bd1be7e2e62d715b65b2e9c6b9b4a06226bf3d4cfcb28d7f26c07a8f7b4"),
				CollateralToken: wld,
				LoanToken:       usdc,
				LiquidationLTV:  0.77,
				Active:          true,
			},
			{
				MarketID:        common.HexToHash("0x2b6cabb81ed18f1eb7a0a138b0a1d0c0e4c885f4a4a989f8e6a1c30a7e1b0d2f"),
				CollateralToken: weth,
				LoanToken:       usdc,
				LiquidationLTV:  0.86,
				Active:          true,
			},
			{
				MarketID:        common.HexToHash("0x60e57ffe02c8a13c13e707c0ccd4b66b1a4a0f07463e8eb9a6e49bfdbe04e2d7"),
				CollateralToken: wbtc,
				LoanToken:       usdc,
				LiquidationLTV:  0.86,
				Active:          true,
			},
		},
		Vaults: []entity.VaultConfig{
			{
				VaultAddress:    common.HexToAddress("0x348831b46876d3dF2DB98BdDCA6bAe24E1D33d1B"),
				UnderlyingAsset: usdc,
			},
		},
		InterestVaults: []entity.InterestVaultConfig{
			{
				VaultAddress:    common.HexToAddress("0x4Dee1bde0DcB0Bb200317d774c3CF05A6261E05a"),
				UnderlyingAsset: wld,
			},
		},
	}
}
