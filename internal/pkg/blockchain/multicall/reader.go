package multicall

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// Reader is the engine's chain-read strategy: it batches everything through
// the Multicall3 contract first and, when that mechanism itself fails
// (transport error, contract missing on the chain), replays the same call
// set through batched individual eth_calls. Individual call reverts are
// never promoted to batch failures on either path.
type Reader struct {
	primary  outbound.Multicaller
	fallback outbound.Multicaller
	eth      *ethclient.Client
	logger   *slog.Logger
}

// NewReader wires the two-stage strategy from a dialled RPC client.
func NewReader(rpcClient *rpc.Client, multicall3Address common.Address, logger *slog.Logger) (*Reader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	eth := ethclient.NewClient(rpcClient)
	primary, err := NewClient(eth, multicall3Address)
	if err != nil {
		return nil, err
	}

	return &Reader{
		primary:  primary,
		fallback: NewDirectCaller(rpcClient),
		eth:      eth,
		logger:   logger.With("component", "chain-reader"),
	}, nil
}

// NewReaderWithCallers builds a Reader from explicit callers, used by tests
// to exercise the fallback path without a live node.
func NewReaderWithCallers(primary, fallback outbound.Multicaller, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("component", "chain-reader"),
	}
}

func (r *Reader) Address() common.Address {
	return r.primary.Address()
}

// Execute attempts the contract batch and falls back to individual calls
// when the batch mechanism is unavailable. Results keep submission order on
// both paths.
func (r *Reader) Execute(ctx context.Context, calls []outbound.Call, blockNumber *big.Int) ([]outbound.Result, error) {
	results, err := r.primary.Execute(ctx, calls, blockNumber)
	if err == nil {
		return results, nil
	}

	r.logger.Warn("multicall batch failed, retrying calls individually",
		"calls", len(calls), "error", err)

	results, fbErr := r.fallback.Execute(ctx, calls, blockNumber)
	if fbErr != nil {
		return nil, fmt.Errorf("batch read failed on both paths: multicall: %v; direct: %w", err, fbErr)
	}
	return results, nil
}

// SingleRead issues one eth_call directly and returns its raw return data.
// Unlike Execute, a failure here is an error.
func (r *Reader) SingleRead(ctx context.Context, call outbound.Call, blockNumber *big.Int) ([]byte, error) {
	if r.eth == nil {
		results, err := r.Execute(ctx, []outbound.Call{{
			Target:       call.Target,
			AllowFailure: false,
			CallData:     call.CallData,
		}}, blockNumber)
		if err != nil {
			return nil, err
		}
		if len(results) != 1 || !results[0].Success {
			return nil, fmt.Errorf("single read to %s failed", call.Target.Hex())
		}
		return results[0].ReturnData, nil
	}

	msg := ethereum.CallMsg{
		To:   &call.Target,
		Data: call.CallData,
	}
	raw, err := r.eth.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("eth_call to %s failed: %w", call.Target.Hex(), err)
	}
	return raw, nil
}
