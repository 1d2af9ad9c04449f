package blockchain

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain/abis"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/testutil"
)

func TestFetchOracleRatio(t *testing.T) {
	oracleABI, err := abis.GetMarketOracleABI()
	if err != nil {
		t.Fatalf("parsing oracle ABI: %v", err)
	}
	oracleAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	logger := slog.Default()

	// price() scaled by 10^(36 + loanDecimals - collateralDecimals);
	// loan USDC (6), collateral WLD (18) → scale 24.
	priceRaw, _ := new(big.Int).SetString("1170000000000000000000000", 10) // 1.17
	priceData, err := oracleABI.Methods["price"].Outputs.Pack(priceRaw)
	if err != nil {
		t.Fatalf("packing price return: %v", err)
	}
	answerData, err := oracleABI.Methods["latestAnswer"].Outputs.Pack(big.NewInt(234000000)) // 2.34 at 8 decimals
	if err != nil {
		t.Fatalf("packing latestAnswer return: %v", err)
	}

	tests := []struct {
		name      string
		executeFn func(ctx context.Context, calls []outbound.Call, blockNumber *big.Int) ([]outbound.Result, error)
		want      float64
	}{
		{
			name: "price() answers",
			executeFn: func(_ context.Context, calls []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
				return []outbound.Result{{Success: true, ReturnData: priceData}}, nil
			},
			want: 1.17,
		},
		{
			name: "price() reverts, latestAnswer() answers",
			executeFn: func(_ context.Context, calls []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
				if common.Bytes2Hex(calls[0].CallData[:4]) == common.Bytes2Hex(answerSelector(t, oracleABI, "price")) {
					return []outbound.Result{{Success: false}}, nil
				}
				return []outbound.Result{{Success: true, ReturnData: answerData}}, nil
			},
			want: 2.34,
		},
		{
			name: "both interfaces fail",
			executeFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
				return []outbound.Result{{Success: false}}, nil
			},
			want: 0,
		},
		{
			name: "batch mechanism errors",
			executeFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
				return nil, errors.New("transport down")
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &testutil.MockMulticaller{ExecuteFn: tt.executeFn}
			got := FetchOracleRatio(context.Background(), mc, oracleABI, oracleAddr, 6, 18, logger)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FetchOracleRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func answerSelector(t *testing.T, oracleABI *abi.ABI, method string) []byte {
	t.Helper()
	data, err := oracleABI.Pack(method)
	if err != nil {
		t.Fatalf("packing %s: %v", method, err)
	}
	return data[:4]
}

func TestFetchOracleRatioNonPositiveAnswer(t *testing.T) {
	oracleABI, err := abis.GetMarketOracleABI()
	if err != nil {
		t.Fatalf("parsing oracle ABI: %v", err)
	}
	zeroData, err := oracleABI.Methods["price"].Outputs.Pack(big.NewInt(0))
	if err != nil {
		t.Fatalf("packing zero return: %v", err)
	}

	mc := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return []outbound.Result{{Success: true, ReturnData: zeroData}}, nil
		},
	}
	got := FetchOracleRatio(context.Background(), mc, oracleABI,
		common.HexToAddress("0x22"), 6, 18, slog.Default())
	if got != 0 {
		t.Errorf("zero answer should yield 0, got %v", got)
	}
}
