// Package outbound defines the outbound port interfaces.
package outbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call is one contract read in a batch.
type Call struct {
	Target       common.Address
	AllowFailure bool
	CallData     []byte
}

// Result is the outcome of one call. Results are returned in submission
// order: Result[i] always corresponds to Call[i].
type Result struct {
	Success    bool
	ReturnData []byte
}

// Multicaller executes a set of contract reads as one batch. An individual
// call failing is reported as a tagged failure for that call only; an error
// return means the batch mechanism itself failed.
type Multicaller interface {
	Execute(ctx context.Context, calls []Call, blockNumber *big.Int) ([]Result, error)
	Address() common.Address
}

// ChainReader is the engine's read substrate: batched reads with per-call
// failure isolation plus a single-read path that errors on failure.
type ChainReader interface {
	Multicaller

	// SingleRead issues one eth_call and returns its raw return data.
	SingleRead(ctx context.Context, call Call, blockNumber *big.Int) ([]byte, error)
}
