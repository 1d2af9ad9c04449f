package entity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenRef identifies an ERC20 token from static configuration.
// Identity is the address; symbols are display labels only.
type TokenRef struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

// NewTokenRef creates a TokenRef with validation.
func NewTokenRef(address, symbol string, decimals uint8) (TokenRef, error) {
	if !common.IsHexAddress(address) {
		return TokenRef{}, fmt.Errorf("invalid token address %q", address)
	}
	if symbol == "" {
		return TokenRef{}, fmt.Errorf("token symbol must not be empty")
	}
	return TokenRef{
		Address:  common.HexToAddress(address),
		Symbol:   symbol,
		Decimals: decimals,
	}, nil
}

// Equal compares tokens by address. common.Address is canonical, so this is
// case-insensitive with respect to the source hex string.
func (t TokenRef) Equal(other TokenRef) bool {
	return t.Address == other.Address
}
