package multicall

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/testutil"
)

func TestReaderExecutePrimarySucceeds(t *testing.T) {
	want := []outbound.Result{{Success: true, ReturnData: []byte{0x01}}}
	primary := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, calls []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return want, nil
		},
	}
	fallback := &testutil.MockMulticaller{}

	reader := NewReaderWithCallers(primary, fallback, nil)
	got, err := reader.Execute(context.Background(), []outbound.Call{{}}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 1 || !got[0].Success {
		t.Errorf("unexpected results: %+v", got)
	}
	if fallback.ExecuteCalls != 0 {
		t.Errorf("fallback invoked %d times on a healthy primary", fallback.ExecuteCalls)
	}
}

func TestReaderExecuteFallsBackWhenBatchMechanismFails(t *testing.T) {
	primary := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return nil, errors.New("execution reverted")
		},
	}
	fallback := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, calls []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			results := make([]outbound.Result, len(calls))
			for i := range results {
				results[i] = outbound.Result{Success: true, ReturnData: []byte{byte(i)}}
			}
			return results, nil
		},
	}

	reader := NewReaderWithCallers(primary, fallback, nil)
	calls := []outbound.Call{
		{Target: common.HexToAddress("0x01"), AllowFailure: true},
		{Target: common.HexToAddress("0x02"), AllowFailure: true},
	}
	got, err := reader.Execute(context.Background(), calls, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	// Submission order survives the fallback path.
	if got[0].ReturnData[0] != 0 || got[1].ReturnData[0] != 1 {
		t.Errorf("results out of order: %+v", got)
	}
	if fallback.ExecuteCalls != 1 {
		t.Errorf("fallback invoked %d times, want 1", fallback.ExecuteCalls)
	}
}

func TestReaderExecuteBothPathsFail(t *testing.T) {
	primary := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return nil, errors.New("multicall down")
		},
	}
	fallback := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return nil, errors.New("rpc down")
		},
	}

	reader := NewReaderWithCallers(primary, fallback, nil)
	_, err := reader.Execute(context.Background(), []outbound.Call{{}}, nil)
	if err == nil {
		t.Fatal("expected error when both paths fail")
	}
	if !strings.Contains(err.Error(), "both paths") {
		t.Errorf("error should mention both paths, got %q", err.Error())
	}
}

func TestReaderSingleReadWithoutEthClient(t *testing.T) {
	primary := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, calls []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			if calls[0].AllowFailure {
				t.Error("single read must not allow failure")
			}
			return []outbound.Result{{Success: true, ReturnData: []byte{0xaa}}}, nil
		},
	}
	reader := NewReaderWithCallers(primary, &testutil.MockMulticaller{}, nil)

	data, err := reader.SingleRead(context.Background(), outbound.Call{
		Target: common.HexToAddress("0x03"),
	}, nil)
	if err != nil {
		t.Fatalf("SingleRead: %v", err)
	}
	if len(data) != 1 || data[0] != 0xaa {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestReaderSingleReadFailure(t *testing.T) {
	primary := &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return []outbound.Result{{Success: false}}, nil
		},
	}
	reader := NewReaderWithCallers(primary, &testutil.MockMulticaller{
		ExecuteFn: func(_ context.Context, _ []outbound.Call, _ *big.Int) ([]outbound.Result, error) {
			return []outbound.Result{{Success: false}}, nil
		},
	}, nil)

	if _, err := reader.SingleRead(context.Background(), outbound.Call{}, nil); err == nil {
		t.Error("expected error for failed single read")
	}
}
