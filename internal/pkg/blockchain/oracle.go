package blockchain

import (
	"context"
	"log/slog"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// latestAnswerDecimals is the fixed-point precision of the Chainlink-style
// latestAnswer() interface.
const latestAnswerDecimals = 8

// FetchOracleRatio reads a market oracle's price ratio, used to derive an
// effective borrow-side price when no direct USD price exists for the loan
// token. It tries price() first (scaled by 10^(36 + loanDecimals -
// collateralDecimals)), then latestAnswer() (8 decimals). The two
// interfaces are tried independently; both failing yields 0, which callers
// treat as "no ratio available", not an error.
func FetchOracleRatio(
	ctx context.Context,
	mc outbound.Multicaller,
	oracleABI *abi.ABI,
	oracleAddr common.Address,
	loanDecimals, collateralDecimals uint8,
	logger *slog.Logger,
) float64 {
	if ratio, ok := fetchRatio(ctx, mc, oracleABI, oracleAddr, "price",
		36+int(loanDecimals)-int(collateralDecimals)); ok {
		return ratio
	}

	logger.Debug("oracle price() unavailable, trying latestAnswer()",
		"oracle", oracleAddr.Hex())

	if ratio, ok := fetchRatio(ctx, mc, oracleABI, oracleAddr, "latestAnswer",
		latestAnswerDecimals); ok {
		return ratio
	}

	logger.Warn("no oracle interface answered", "oracle", oracleAddr.Hex())
	return 0
}

func fetchRatio(
	ctx context.Context,
	mc outbound.Multicaller,
	oracleABI *abi.ABI,
	oracleAddr common.Address,
	method string,
	scaleDecimals int,
) (float64, bool) {
	callData, err := oracleABI.Pack(method)
	if err != nil {
		return 0, false
	}

	results, err := mc.Execute(ctx, []outbound.Call{
		{Target: oracleAddr, AllowFailure: true, CallData: callData},
	}, nil)
	if err != nil || len(results) != 1 || !results[0].Success || len(results[0].ReturnData) == 0 {
		return 0, false
	}

	unpacked, err := oracleABI.Unpack(method, results[0].ReturnData)
	if err != nil || len(unpacked) == 0 {
		return 0, false
	}

	raw, ok := unpacked[0].(*big.Int)
	if !ok || raw.Sign() <= 0 {
		return 0, false
	}

	f := new(big.Float).SetInt(raw)
	divisor := new(big.Float).SetFloat64(math.Pow10(scaleDecimals))
	ratio, _ := new(big.Float).Quo(f, divisor).Float64()
	return ratio, true
}
