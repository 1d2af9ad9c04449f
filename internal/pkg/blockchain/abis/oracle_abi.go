package abis

import "github.com/ethereum/go-ethereum/accounts/abi"

// GetMarketOracleABI returns the two oracle interfaces a market's price
// oracle can implement. Morpho-style oracles expose price() as a fixed
// point ratio scaled by 10^(36 + loanDecimals - collateralDecimals);
// Chainlink-style adapters expose latestAnswer() with 8 decimals. The
// resolver tries them in that order, independently.
func GetMarketOracleABI() (*abi.ABI, error) {
	return ParseABI(`[
		{
			"inputs": [],
			"name": "price",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [],
			"name": "latestAnswer",
			"outputs": [{"name": "", "type": "int256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}
