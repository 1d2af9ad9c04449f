package testutil

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain/abis"
)

// EncodePositionReturn ABI-encodes a position() return tuple for use as
// mocked call return data.
func EncodePositionReturn(t *testing.T, supplyShares, borrowShares, collateral *big.Int) []byte {
	t.Helper()
	morphoABI, err := abis.GetMorphoABI()
	if err != nil {
		t.Fatalf("parsing morpho ABI: %v", err)
	}
	data, err := morphoABI.Methods["position"].Outputs.Pack(supplyShares, borrowShares, collateral)
	if err != nil {
		t.Fatalf("packing position return: %v", err)
	}
	return data
}

// EncodeMarketReturn ABI-encodes a market() return tuple.
func EncodeMarketReturn(t *testing.T, totalSupplyAssets, totalSupplyShares, totalBorrowAssets, totalBorrowShares, lastUpdate, fee *big.Int) []byte {
	t.Helper()
	morphoABI, err := abis.GetMorphoABI()
	if err != nil {
		t.Fatalf("parsing morpho ABI: %v", err)
	}
	data, err := morphoABI.Methods["market"].Outputs.Pack(
		totalSupplyAssets, totalSupplyShares, totalBorrowAssets, totalBorrowShares, lastUpdate, fee)
	if err != nil {
		t.Fatalf("packing market return: %v", err)
	}
	return data
}

// EncodeMarketParamsReturn ABI-encodes an idToMarketParams() return tuple.
func EncodeMarketParamsReturn(t *testing.T, loanToken, collateralToken, oracle, irm common.Address, lltv *big.Int) []byte {
	t.Helper()
	morphoABI, err := abis.GetMorphoABI()
	if err != nil {
		t.Fatalf("parsing morpho ABI: %v", err)
	}
	data, err := morphoABI.Methods["idToMarketParams"].Outputs.Pack(loanToken, collateralToken, oracle, irm, lltv)
	if err != nil {
		t.Fatalf("packing idToMarketParams return: %v", err)
	}
	return data
}

// EncodeUint256Return ABI-encodes a single uint256 return value, as
// balanceOf and convertToAssets produce.
func EncodeUint256Return(t *testing.T, value *big.Int) []byte {
	t.Helper()
	vaultABI, err := abis.GetVaultABI()
	if err != nil {
		t.Fatalf("parsing vault ABI: %v", err)
	}
	data, err := vaultABI.Methods["balanceOf"].Outputs.Pack(value)
	if err != nil {
		t.Fatalf("packing uint256 return: %v", err)
	}
	return data
}

// EncodeDepositReturn ABI-encodes a getDeposit() return tuple.
func EncodeDepositReturn(t *testing.T, amount, endTime, depositedAmount, lastAccrual *big.Int) []byte {
	t.Helper()
	interestABI, err := abis.GetInterestVaultABI()
	if err != nil {
		t.Fatalf("parsing interest vault ABI: %v", err)
	}
	data, err := interestABI.Methods["getDeposit"].Outputs.Pack(amount, endTime, depositedAmount, lastAccrual)
	if err != nil {
		t.Fatalf("packing getDeposit return: %v", err)
	}
	return data
}

// EncodeOraclePriceReturn ABI-encodes a price() return value.
func EncodeOraclePriceReturn(t *testing.T, value *big.Int) []byte {
	t.Helper()
	oracleABI, err := abis.GetMarketOracleABI()
	if err != nil {
		t.Fatalf("parsing oracle ABI: %v", err)
	}
	data, err := oracleABI.Methods["price"].Outputs.Pack(value)
	if err != nil {
		t.Fatalf("packing price return: %v", err)
	}
	return data
}
