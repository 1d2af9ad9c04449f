package positions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain/abis"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
)

// ErrFatalFetch marks a failure of the batch read mechanism itself, as
// opposed to an individual call revert. Callers fall back to a stale
// snapshot when they see it.
var ErrFatalFetch = errors.New("fatal fetch failure")

// lltvTolerance absorbs float conversion noise when comparing the
// configured liquidation LTV against the on-chain 1e18 fixed-point value.
const lltvTolerance = 1e-9

// Reconstructor rebuilds a wallet's portfolio from batched contract reads:
// lending positions across the configured markets, wrapper-vault holdings,
// and interest-vault deposits, all valued in USD.
type Reconstructor struct {
	reader   outbound.ChainReader
	resolver *PriceResolver
	cfg      blockchain.Config
	logger   *slog.Logger

	morphoABI   *abi.ABI
	vaultABI    *abi.ABI
	interestABI *abi.ABI
	oracleABI   *abi.ABI
}

// NewReconstructor creates a reconstructor over the given market universe.
func NewReconstructor(reader outbound.ChainReader, resolver *PriceResolver, cfg blockchain.Config, logger *slog.Logger) (*Reconstructor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	morphoABI, err := abis.GetMorphoABI()
	if err != nil {
		return nil, fmt.Errorf("parsing morpho ABI: %w", err)
	}
	vaultABI, err := abis.GetVaultABI()
	if err != nil {
		return nil, fmt.Errorf("parsing vault ABI: %w", err)
	}
	interestABI, err := abis.GetInterestVaultABI()
	if err != nil {
		return nil, fmt.Errorf("parsing interest vault ABI: %w", err)
	}
	oracleABI, err := abis.GetMarketOracleABI()
	if err != nil {
		return nil, fmt.Errorf("parsing oracle ABI: %w", err)
	}

	return &Reconstructor{
		reader:      reader,
		resolver:    resolver,
		cfg:         cfg,
		logger:      logger.With("component", "reconstructor"),
		morphoABI:   morphoABI,
		vaultABI:    vaultABI,
		interestABI: interestABI,
		oracleABI:   oracleABI,
	}, nil
}

// marketRead holds the decoded per-market batch results before valuation.
type marketRead struct {
	market   entity.MarketConfig
	position entity.RawPosition
	state    entity.RawMarketState
}

// Reconstruct rebuilds the wallet's full portfolio. It returns ErrFatalFetch
// (wrapped) when the batch mechanism itself fails on both paths; individual
// call failures degrade the result instead.
func (r *Reconstructor) Reconstruct(ctx context.Context, user common.Address) (entity.Portfolio, error) {
	trace := &entity.Trace{}
	degraded := false

	markets := r.cfg.ActiveMarkets()
	trace.Addf("markets", "reading %d markets for %s", len(markets), user.Hex())

	positionResults, stateResults, paramsResults, err := r.readMarketBatches(ctx, user, markets)
	if err != nil {
		return entity.Portfolio{}, fmt.Errorf("%w: %v", ErrFatalFetch, err)
	}

	var reads []marketRead
	for i, m := range markets {
		pos, ok := r.decodePosition(positionResults[i], m, trace)
		if !ok {
			degraded = true
			continue
		}
		if pos.IsZero() {
			trace.Addf("positions", "market %s: no position", m.MarketID)
			continue
		}

		state, ok := r.decodeMarketState(stateResults[i], m, trace)
		if !ok {
			degraded = true
			continue
		}

		r.reconcileLLTV(paramsResults[i], m, trace)

		reads = append(reads, marketRead{market: m, position: pos, state: state})
	}

	vaultShares := r.readVaultBalances(ctx, user, trace, &degraded)
	deposits := r.readInterestDeposits(ctx, user, trace, &degraded)
	vaultAssets := r.convertVaultShares(ctx, vaultShares, trace, &degraded)

	prices, err := r.resolver.ResolveAll(ctx, r.collectSymbols(reads, vaultShares, deposits))
	if err != nil {
		return entity.Portfolio{}, fmt.Errorf("resolving prices: %w", err)
	}

	portfolio := entity.Portfolio{FetchedAt: time.Now().UTC()}
	for _, mr := range reads {
		np, posDegraded := r.valuePosition(ctx, mr, prices, trace)
		if posDegraded {
			degraded = true
		}
		portfolio.Positions = append(portfolio.Positions, np)
	}
	portfolio.Vaults = r.valueVaults(vaultShares, vaultAssets, prices)
	portfolio.InterestDeposits = r.valueDeposits(deposits, prices)
	portfolio.Trace = trace.Events()
	portfolio.Degraded = degraded

	return portfolio, nil
}

// readMarketBatches issues the three per-market read sets concurrently.
// Each batch tolerates individual call failures; only a failure of the
// batch mechanism itself errors out.
func (r *Reconstructor) readMarketBatches(ctx context.Context, user common.Address, markets []entity.MarketConfig) (positions, states, params []outbound.Result, err error) {
	positionCalls := make([]outbound.Call, len(markets))
	stateCalls := make([]outbound.Call, len(markets))
	paramsCalls := make([]outbound.Call, len(markets))

	for i, m := range markets {
		posData, packErr := blockchain.PackPosition(r.morphoABI, m.MarketID, user)
		if packErr != nil {
			return nil, nil, nil, packErr
		}
		stateData, packErr := blockchain.PackMarket(r.morphoABI, m.MarketID)
		if packErr != nil {
			return nil, nil, nil, packErr
		}
		paramsData, packErr := blockchain.PackMarketParams(r.morphoABI, m.MarketID)
		if packErr != nil {
			return nil, nil, nil, packErr
		}

		positionCalls[i] = outbound.Call{Target: r.cfg.Morpho, AllowFailure: true, CallData: posData}
		stateCalls[i] = outbound.Call{Target: r.cfg.Morpho, AllowFailure: true, CallData: stateData}
		paramsCalls[i] = outbound.Call{Target: r.cfg.Morpho, AllowFailure: true, CallData: paramsData}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var execErr error
		positions, execErr = r.reader.Execute(gctx, positionCalls, nil)
		return execErr
	})
	g.Go(func() error {
		var execErr error
		states, execErr = r.reader.Execute(gctx, stateCalls, nil)
		return execErr
	})
	g.Go(func() error {
		var execErr error
		params, execErr = r.reader.Execute(gctx, paramsCalls, nil)
		return execErr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	return positions, states, params, nil
}

func (r *Reconstructor) decodePosition(res outbound.Result, m entity.MarketConfig, trace *entity.Trace) (entity.RawPosition, bool) {
	if !res.Success || len(res.ReturnData) == 0 {
		r.logger.Warn("position read failed, skipping market", "market", m.MarketID)
		trace.AddErr("positions", nil, "market %s: position read failed", m.MarketID)
		return entity.RawPosition{}, false
	}
	pos, err := blockchain.UnpackPosition(r.morphoABI, res.ReturnData)
	if err != nil {
		r.logger.Warn("position decode failed, skipping market", "market", m.MarketID, "error", err)
		trace.AddErr("positions", err, "market %s: position decode failed", m.MarketID)
		return entity.RawPosition{}, false
	}
	return pos, true
}

func (r *Reconstructor) decodeMarketState(res outbound.Result, m entity.MarketConfig, trace *entity.Trace) (entity.RawMarketState, bool) {
	if !res.Success || len(res.ReturnData) == 0 {
		r.logger.Warn("market state read failed, skipping market", "market", m.MarketID)
		trace.AddErr("markets", nil, "market %s: state read failed", m.MarketID)
		return entity.RawMarketState{}, false
	}
	state, err := blockchain.UnpackMarket(r.morphoABI, res.ReturnData)
	if err != nil {
		r.logger.Warn("market state decode failed, skipping market", "market", m.MarketID, "error", err)
		trace.AddErr("markets", err, "market %s: state decode failed", m.MarketID)
		return entity.RawMarketState{}, false
	}
	return state, true
}

// reconcileLLTV compares the on-chain lltv against the configured value.
// A mismatch is surfaced but the configured value stays authoritative.
func (r *Reconstructor) reconcileLLTV(res outbound.Result, m entity.MarketConfig, trace *entity.Trace) {
	if !res.Success || len(res.ReturnData) == 0 {
		trace.Addf("lltv", "market %s: params read unavailable", m.MarketID)
		return
	}
	params, err := blockchain.UnpackMarketParams(r.morphoABI, res.ReturnData)
	if err != nil {
		trace.AddErr("lltv", err, "market %s: params decode failed", m.MarketID)
		return
	}
	onChain := params.LLTVFraction()
	if math.Abs(onChain-m.LiquidationLTV) > lltvTolerance {
		r.logger.Warn("configured liquidation LTV differs from chain",
			"market", m.MarketID,
			"configured", m.LiquidationLTV,
			"onChain", onChain)
		trace.Addf("lltv", "market %s: configured lltv %.4f != on-chain %.4f, using configured",
			m.MarketID, m.LiquidationLTV, onChain)
	}
}

// valuePosition converts one raw read into a normalized position with USD
// values attached. Returns the position and whether valuation degraded.
func (r *Reconstructor) valuePosition(ctx context.Context, mr marketRead, prices map[string]float64, trace *entity.Trace) (entity.NormalizedPosition, bool) {
	m := mr.market
	degraded := false

	supplyAssets := blockchain.SharesToAssets(mr.position.SupplyShares, mr.state.TotalSupplyAssets, mr.state.TotalSupplyShares)
	borrowAssets := blockchain.SharesToAssets(mr.position.BorrowShares, mr.state.TotalBorrowAssets, mr.state.TotalBorrowShares)
	collateral := mr.position.Collateral
	if collateral == nil {
		collateral = new(big.Int)
	}

	collateralPrice := prices[m.CollateralToken.Symbol]
	loanPrice := prices[m.LoanToken.Symbol]

	collateralAmount := blockchain.AmountToFloat(collateral, m.CollateralToken.Decimals)
	supplyAmount := blockchain.AmountToFloat(supplyAssets, m.LoanToken.Decimals)
	borrowAmount := blockchain.AmountToFloat(borrowAssets, m.LoanToken.Decimals)

	if collateralAmount > 0 && collateralPrice == 0 {
		trace.Addf("pricing", "market %s: collateral %s unpriced", m.MarketID, m.CollateralToken.Symbol)
		degraded = true
	}

	effectiveLoanPrice := loanPrice
	if borrowAmount > 0 && loanPrice == 0 {
		if m.OracleAddress != nil {
			ratio := blockchain.FetchOracleRatio(ctx, r.reader, r.oracleABI, *m.OracleAddress,
				m.LoanToken.Decimals, m.CollateralToken.Decimals, r.logger)
			if ratio > 0 {
				effectiveLoanPrice = collateralPrice * ratio
				trace.Addf("pricing", "market %s: loan %s priced via oracle ratio %.6g",
					m.MarketID, m.LoanToken.Symbol, ratio)
			}
		}
		if effectiveLoanPrice == 0 {
			trace.Addf("pricing", "market %s: loan %s unpriced", m.MarketID, m.LoanToken.Symbol)
			degraded = true
		}
	}

	return entity.NormalizedPosition{
		Market: entity.PositionMarket{
			ID:              mr.market.MarketID.Hex(),
			LiquidationLTV:  m.LiquidationLTV,
			LoanAsset:       m.LoanToken,
			CollateralAsset: m.CollateralToken,
		},
		State: entity.PositionState{
			CollateralAmount: blockchain.FormatUnits(collateral, m.CollateralToken.Decimals),
			CollateralUsd:    collateralAmount * collateralPrice,
			BorrowAmount:     blockchain.FormatUnits(borrowAssets, m.LoanToken.Decimals),
			BorrowAssetsUsd:  borrowAmount * effectiveLoanPrice,
			BorrowShares:     bigString(mr.position.BorrowShares),
			SupplyAmount:     blockchain.FormatUnits(supplyAssets, m.LoanToken.Decimals),
			SupplyAssetsUsd:  supplyAmount * loanPrice,
			SupplyShares:     bigString(mr.position.SupplyShares),
		},
	}, degraded
}

// readVaultBalances reads balanceOf(user) for every configured wrapper
// vault in one batch. Failed reads are skipped; the map holds only vaults
// with a decodable non-zero balance.
func (r *Reconstructor) readVaultBalances(ctx context.Context, user common.Address, trace *entity.Trace, degraded *bool) map[common.Address]*big.Int {
	shares := make(map[common.Address]*big.Int)
	if len(r.cfg.Vaults) == 0 {
		return shares
	}

	calls := make([]outbound.Call, 0, len(r.cfg.Vaults))
	for _, v := range r.cfg.Vaults {
		data, err := r.vaultABI.Pack("balanceOf", user)
		if err != nil {
			r.logger.Warn("packing vault balanceOf failed", "vault", v.VaultAddress.Hex(), "error", err)
			continue
		}
		calls = append(calls, outbound.Call{Target: v.VaultAddress, AllowFailure: true, CallData: data})
	}

	results, err := r.reader.Execute(ctx, calls, nil)
	if err != nil {
		r.logger.Warn("vault balance batch failed", "error", err)
		trace.AddErr("vaults", err, "vault balance batch failed")
		*degraded = true
		return shares
	}

	for i, res := range results {
		vault := r.cfg.Vaults[i]
		if !res.Success || len(res.ReturnData) == 0 {
			trace.AddErr("vaults", nil, "vault %s: balance read failed", vault.VaultAddress.Hex())
			*degraded = true
			continue
		}
		unpacked, err := r.vaultABI.Unpack("balanceOf", res.ReturnData)
		if err != nil || len(unpacked) != 1 {
			trace.AddErr("vaults", err, "vault %s: balance decode failed", vault.VaultAddress.Hex())
			*degraded = true
			continue
		}
		balance, ok := unpacked[0].(*big.Int)
		if !ok || balance.Sign() == 0 {
			continue
		}
		shares[vault.VaultAddress] = balance
	}

	return shares
}

// convertVaultShares asks each vault with a non-zero balance for its own
// share→asset conversion.
func (r *Reconstructor) convertVaultShares(ctx context.Context, shares map[common.Address]*big.Int, trace *entity.Trace, degraded *bool) map[common.Address]*big.Int {
	assets := make(map[common.Address]*big.Int)
	if len(shares) == 0 {
		return assets
	}

	var targets []common.Address
	var calls []outbound.Call
	for _, v := range r.cfg.Vaults {
		balance, ok := shares[v.VaultAddress]
		if !ok {
			continue
		}
		data, err := r.vaultABI.Pack("convertToAssets", balance)
		if err != nil {
			r.logger.Warn("packing convertToAssets failed", "vault", v.VaultAddress.Hex(), "error", err)
			continue
		}
		targets = append(targets, v.VaultAddress)
		calls = append(calls, outbound.Call{Target: v.VaultAddress, AllowFailure: true, CallData: data})
	}

	results, err := r.reader.Execute(ctx, calls, nil)
	if err != nil {
		r.logger.Warn("vault conversion batch failed", "error", err)
		trace.AddErr("vaults", err, "vault conversion batch failed")
		*degraded = true
		return assets
	}

	for i, res := range results {
		vault := targets[i]
		if !res.Success || len(res.ReturnData) == 0 {
			trace.AddErr("vaults", nil, "vault %s: conversion failed", vault.Hex())
			*degraded = true
			continue
		}
		unpacked, err := r.vaultABI.Unpack("convertToAssets", res.ReturnData)
		if err != nil || len(unpacked) != 1 {
			trace.AddErr("vaults", err, "vault %s: conversion decode failed", vault.Hex())
			*degraded = true
			continue
		}
		if converted, ok := unpacked[0].(*big.Int); ok {
			assets[vault] = converted
		}
	}

	return assets
}

// readInterestDeposits reads getDeposit(user) for every interest vault in
// one batch.
func (r *Reconstructor) readInterestDeposits(ctx context.Context, user common.Address, trace *entity.Trace, degraded *bool) map[common.Address]entity.RawDeposit {
	deposits := make(map[common.Address]entity.RawDeposit)
	if len(r.cfg.InterestVaults) == 0 {
		return deposits
	}

	calls := make([]outbound.Call, 0, len(r.cfg.InterestVaults))
	for _, v := range r.cfg.InterestVaults {
		data, err := r.interestABI.Pack("getDeposit", user)
		if err != nil {
			r.logger.Warn("packing getDeposit failed", "vault", v.VaultAddress.Hex(), "error", err)
			continue
		}
		calls = append(calls, outbound.Call{Target: v.VaultAddress, AllowFailure: true, CallData: data})
	}

	results, err := r.reader.Execute(ctx, calls, nil)
	if err != nil {
		r.logger.Warn("interest deposit batch failed", "error", err)
		trace.AddErr("vaults", err, "interest deposit batch failed")
		*degraded = true
		return deposits
	}

	for i, res := range results {
		vault := r.cfg.InterestVaults[i]
		if !res.Success || len(res.ReturnData) == 0 {
			trace.AddErr("vaults", nil, "interest vault %s: read failed", vault.VaultAddress.Hex())
			*degraded = true
			continue
		}
		unpacked, err := r.interestABI.Unpack("getDeposit", res.ReturnData)
		if err != nil || len(unpacked) != 4 {
			trace.AddErr("vaults", err, "interest vault %s: decode failed", vault.VaultAddress.Hex())
			*degraded = true
			continue
		}
		dep := entity.RawDeposit{
			CurrentAmount:   unpacked[0].(*big.Int),
			EndTime:         unpacked[1].(*big.Int),
			DepositedAmount: unpacked[2].(*big.Int),
			LastAccrual:     unpacked[3].(*big.Int),
		}
		if dep.IsZero() {
			continue
		}
		deposits[vault.VaultAddress] = dep
	}

	return deposits
}

// collectSymbols gathers every token symbol the portfolio needs priced.
func (r *Reconstructor) collectSymbols(reads []marketRead, vaultShares map[common.Address]*big.Int, deposits map[common.Address]entity.RawDeposit) []string {
	var symbols []string
	for _, mr := range reads {
		symbols = append(symbols, mr.market.CollateralToken.Symbol, mr.market.LoanToken.Symbol)
	}
	for _, v := range r.cfg.Vaults {
		if _, ok := vaultShares[v.VaultAddress]; ok {
			symbols = append(symbols, v.UnderlyingAsset.Symbol)
		}
	}
	for _, v := range r.cfg.InterestVaults {
		if _, ok := deposits[v.VaultAddress]; ok {
			symbols = append(symbols, v.UnderlyingAsset.Symbol)
		}
	}
	return symbols
}

func (r *Reconstructor) valueVaults(shares, assets map[common.Address]*big.Int, prices map[string]float64) []entity.VaultPosition {
	var out []entity.VaultPosition
	for _, v := range r.cfg.Vaults {
		balance, ok := shares[v.VaultAddress]
		if !ok {
			continue
		}
		converted := assets[v.VaultAddress]
		out = append(out, entity.VaultPosition{
			VaultAddress: v.VaultAddress,
			Asset:        v.UnderlyingAsset,
			Shares:       bigString(balance),
			Assets:       blockchain.FormatUnits(converted, v.UnderlyingAsset.Decimals),
			AssetsUsd:    blockchain.AmountToFloat(converted, v.UnderlyingAsset.Decimals) * prices[v.UnderlyingAsset.Symbol],
		})
	}
	return out
}

func (r *Reconstructor) valueDeposits(deposits map[common.Address]entity.RawDeposit, prices map[string]float64) []entity.InterestDeposit {
	var out []entity.InterestDeposit
	for _, v := range r.cfg.InterestVaults {
		dep, ok := deposits[v.VaultAddress]
		if !ok {
			continue
		}
		interest := new(big.Int).Sub(dep.CurrentAmount, dep.DepositedAmount)
		out = append(out, entity.InterestDeposit{
			VaultAddress:    v.VaultAddress,
			Asset:           v.UnderlyingAsset,
			CurrentAmount:   blockchain.FormatUnits(dep.CurrentAmount, v.UnderlyingAsset.Decimals),
			DepositedAmount: blockchain.FormatUnits(dep.DepositedAmount, v.UnderlyingAsset.Decimals),
			Interest:        blockchain.FormatUnits(interest, v.UnderlyingAsset.Decimals),
			CurrentUsd:      blockchain.AmountToFloat(dep.CurrentAmount, v.UnderlyingAsset.Decimals) * prices[v.UnderlyingAsset.Symbol],
			EndTime:         unixTime(dep.EndTime),
			LastAccrual:     unixTime(dep.LastAccrual),
		})
	}
	return out
}

func bigString(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return x.String()
}

func unixTime(x *big.Int) time.Time {
	if x == nil || x.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(x.Int64(), 0).UTC()
}
