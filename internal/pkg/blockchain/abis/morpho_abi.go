package abis

import "github.com/ethereum/go-ethereum/accounts/abi"

// GetMorphoABI returns the read-only ABI fragments of the Morpho Blue
// lending contract used by the position engine: per-user positions, market
// accounting state, and the market parameter lookup used to reconcile the
// configured liquidation LTV.
func GetMorphoABI() (*abi.ABI, error) {
	return ParseABI(`[
		{
			"inputs": [
				{"name": "id", "type": "bytes32"},
				{"name": "user", "type": "address"}
			],
			"name": "position",
			"outputs": [
				{"name": "supplyShares", "type": "uint256"},
				{"name": "borrowShares", "type": "uint128"},
				{"name": "collateral", "type": "uint128"}
			],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [{"name": "id", "type": "bytes32"}],
			"name": "market",
			"outputs": [
				{"name": "totalSupplyAssets", "type": "uint128"},
				{"name": "totalSupplyShares", "type": "uint128"},
				{"name": "totalBorrowAssets", "type": "uint128"},
				{"name": "totalBorrowShares", "type": "uint128"},
				{"name": "lastUpdate", "type": "uint128"},
				{"name": "fee", "type": "uint128"}
			],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [{"name": "id", "type": "bytes32"}],
			"name": "idToMarketParams",
			"outputs": [
				{"name": "loanToken", "type": "address"},
				{"name": "collateralToken", "type": "address"},
				{"name": "oracle", "type": "address"},
				{"name": "irm", "type": "address"},
				{"name": "lltv", "type": "uint256"}
			],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}
