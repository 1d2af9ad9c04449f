package blockchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

// MarketParams is the on-chain market parameter tuple returned by
// idToMarketParams, used to reconcile the configured liquidation LTV.
type MarketParams struct {
	LoanToken       common.Address
	CollateralToken common.Address
	Oracle          common.Address
	IRM             common.Address
	LLTV            *big.Int
}

// LLTVScale is the fixed-point scale of the on-chain lltv value (1e18 = 100%).
var LLTVScale = new(big.Float).SetFloat64(1e18)

// LLTVFraction converts the raw on-chain lltv to a decimal fraction.
func (p MarketParams) LLTVFraction() float64 {
	if p.LLTV == nil {
		return 0
	}
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(p.LLTV), LLTVScale).Float64()
	return out
}

// PackPosition packs a position(id, user) call.
func PackPosition(morphoABI *abi.ABI, id common.Hash, user common.Address) ([]byte, error) {
	data, err := morphoABI.Pack("position", id, user)
	if err != nil {
		return nil, fmt.Errorf("packing position for market %s: %w", id, err)
	}
	return data, nil
}

// PackMarket packs a market(id) call.
func PackMarket(morphoABI *abi.ABI, id common.Hash) ([]byte, error) {
	data, err := morphoABI.Pack("market", id)
	if err != nil {
		return nil, fmt.Errorf("packing market for %s: %w", id, err)
	}
	return data, nil
}

// PackMarketParams packs an idToMarketParams(id) call.
func PackMarketParams(morphoABI *abi.ABI, id common.Hash) ([]byte, error) {
	data, err := morphoABI.Pack("idToMarketParams", id)
	if err != nil {
		return nil, fmt.Errorf("packing idToMarketParams for %s: %w", id, err)
	}
	return data, nil
}

// UnpackPosition decodes a position() result into the verbatim raw position.
func UnpackPosition(morphoABI *abi.ABI, data []byte) (entity.RawPosition, error) {
	unpacked, err := morphoABI.Unpack("position", data)
	if err != nil {
		return entity.RawPosition{}, fmt.Errorf("unpacking position: %w", err)
	}
	if len(unpacked) != 3 {
		return entity.RawPosition{}, fmt.Errorf("position: expected 3 values, got %d", len(unpacked))
	}
	return entity.RawPosition{
		SupplyShares: unpacked[0].(*big.Int),
		BorrowShares: unpacked[1].(*big.Int),
		Collateral:   unpacked[2].(*big.Int),
	}, nil
}

// UnpackMarket decodes a market() result into the raw market state.
func UnpackMarket(morphoABI *abi.ABI, data []byte) (entity.RawMarketState, error) {
	unpacked, err := morphoABI.Unpack("market", data)
	if err != nil {
		return entity.RawMarketState{}, fmt.Errorf("unpacking market: %w", err)
	}
	if len(unpacked) != 6 {
		return entity.RawMarketState{}, fmt.Errorf("market: expected 6 values, got %d", len(unpacked))
	}
	return entity.RawMarketState{
		TotalSupplyAssets: unpacked[0].(*big.Int),
		TotalSupplyShares: unpacked[1].(*big.Int),
		TotalBorrowAssets: unpacked[2].(*big.Int),
		TotalBorrowShares: unpacked[3].(*big.Int),
		LastUpdate:        unpacked[4].(*big.Int),
		Fee:               unpacked[5].(*big.Int),
	}, nil
}

// UnpackMarketParams decodes an idToMarketParams() result.
func UnpackMarketParams(morphoABI *abi.ABI, data []byte) (MarketParams, error) {
	unpacked, err := morphoABI.Unpack("idToMarketParams", data)
	if err != nil {
		return MarketParams{}, fmt.Errorf("unpacking idToMarketParams: %w", err)
	}
	if len(unpacked) != 5 {
		return MarketParams{}, fmt.Errorf("idToMarketParams: expected 5 values, got %d", len(unpacked))
	}
	return MarketParams{
		LoanToken:       unpacked[0].(common.Address),
		CollateralToken: unpacked[1].(common.Address),
		Oracle:          unpacked[2].(common.Address),
		IRM:             unpacked[3].(common.Address),
		LLTV:            unpacked[4].(*big.Int),
	}, nil
}
