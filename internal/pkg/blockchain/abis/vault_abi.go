package abis

import "github.com/ethereum/go-ethereum/accounts/abi"

// GetVaultABI returns the ERC-4626 fragments a wrapper vault exposes:
// the user's share balance and the vault's own share→asset conversion.
func GetVaultABI() (*abi.ABI, error) {
	return ParseABI(`[
		{
			"inputs": [{"name": "account", "type": "address"}],
			"name": "balanceOf",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [{"name": "shares", "type": "uint256"}],
			"name": "convertToAssets",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}

// GetInterestVaultABI returns the dedicated getter of the custom
// interest-bearing vault. Interest is currentAmount - depositedAmount as
// reported here; it is never accrued independently.
func GetInterestVaultABI() (*abi.ABI, error) {
	return ParseABI(`[
		{
			"inputs": [{"name": "account", "type": "address"}],
			"name": "getDeposit",
			"outputs": [
				{"name": "amount", "type": "uint256"},
				{"name": "endTime", "type": "uint256"},
				{"name": "depositedAmount", "type": "uint256"},
				{"name": "lastInterestCalculation", "type": "uint256"}
			],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}
