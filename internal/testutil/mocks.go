// Package testutil holds shared test fakes for the position engine.
package testutil

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// MockMulticaller is a function-field mock of the Multicaller port.
type MockMulticaller struct {
	ExecuteFn    func(ctx context.Context, calls []outbound.Call, blockNumber *big.Int) ([]outbound.Result, error)
	AddressFn    func() common.Address
	ExecuteCalls int
}

func (m *MockMulticaller) Execute(ctx context.Context, calls []outbound.Call, blockNumber *big.Int) ([]outbound.Result, error) {
	m.ExecuteCalls++
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, calls, blockNumber)
	}
	return make([]outbound.Result, len(calls)), nil
}

func (m *MockMulticaller) Address() common.Address {
	if m.AddressFn != nil {
		return m.AddressFn()
	}
	return common.Address{}
}

// MockChainReader is a function-field mock of the ChainReader port.
type MockChainReader struct {
	MockMulticaller
	SingleReadFn    func(ctx context.Context, call outbound.Call, blockNumber *big.Int) ([]byte, error)
	SingleReadCalls int
}

func (m *MockChainReader) SingleRead(ctx context.Context, call outbound.Call, blockNumber *big.Int) ([]byte, error) {
	m.SingleReadCalls++
	if m.SingleReadFn != nil {
		return m.SingleReadFn(ctx, call, blockNumber)
	}
	return nil, nil
}

// MockPriceProvider is a function-field mock of the PriceProvider port.
type MockPriceProvider struct {
	NameFn        func() string
	FetchPricesFn func(ctx context.Context, symbols []string) (map[string]float64, error)
	FetchCalls    int
}

func (m *MockPriceProvider) Name() string {
	if m.NameFn != nil {
		return m.NameFn()
	}
	return "mock"
}

func (m *MockPriceProvider) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	m.FetchCalls++
	if m.FetchPricesFn != nil {
		return m.FetchPricesFn(ctx, symbols)
	}
	return map[string]float64{}, nil
}
