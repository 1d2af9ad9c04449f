// Package main runs the background risk watcher: it sweeps a PostgreSQL
// watchlist on an interval, recomputes aggregate health factors through the
// position engine, and fires webhook alerts on status downgrades.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/memory"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/postgres"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/prices"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/webhook"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain/multicall"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/env"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/services/positions"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/services/watcher"
)

func main() {
	rpcURL := flag.String("rpc", "", "Ethereum JSON-RPC endpoint")
	dbURL := flag.String("db", "", "PostgreSQL connection URL")
	webhookURL := flag.String("webhook", "", "alert webhook URL")
	configPath := flag.String("config", "", "market universe JSON (compiled-in defaults when empty)")
	interval := flag.Duration("interval", watcher.DefaultInterval, "sweep interval")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	if *rpcURL == "" {
		*rpcURL = env.Get("RPC_URL", "")
	}
	if *rpcURL == "" {
		logger.Error("RPC endpoint not provided (use -rpc flag or RPC_URL env var)")
		os.Exit(1)
	}
	if *dbURL == "" {
		*dbURL = env.Get("DATABASE_URL", "")
	}
	if *dbURL == "" {
		logger.Error("database URL not provided (use -db flag or DATABASE_URL env var)")
		os.Exit(1)
	}
	if *webhookURL == "" {
		*webhookURL = env.Get("ALERT_WEBHOOK_URL", "")
	}
	if *webhookURL == "" {
		logger.Error("webhook URL not provided (use -webhook flag or ALERT_WEBHOOK_URL env var)")
		os.Exit(1)
	}

	cfg := blockchain.DefaultWorldChainConfig()
	if *configPath != "" {
		loaded, err := blockchain.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load market config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rpcClient, err := rpc.DialContext(ctx, *rpcURL)
	if err != nil {
		logger.Error("failed to connect to RPC endpoint", "error", err)
		os.Exit(1)
	}
	defer rpcClient.Close()
	logger.Info("RPC endpoint connected")

	pool, err := postgres.OpenPool(ctx, postgres.DefaultDBConfig(*dbURL))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("PostgreSQL connected")

	watchlist := postgres.NewWatchlistRepository(pool, logger)
	if err := watchlist.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure watchlist schema", "error", err)
		os.Exit(1)
	}

	reader, err := multicall.NewReader(rpcClient, blockchain.Multicall3Address, logger)
	if err != nil {
		logger.Error("failed to create chain reader", "error", err)
		os.Exit(1)
	}

	priceClient, err := prices.NewClient(prices.ClientConfig{
		BaseURL: env.Get("PRICE_API_URL", "https://app-backend.worldcoin.dev"),
		APIKey:  env.Get("PRICE_API_KEY", ""),
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create price client", "error", err)
		os.Exit(1)
	}

	priceCache := memory.NewPriceCache(env.GetDuration("PRICE_CACHE_TTL", 60*time.Second))
	resolver := positions.NewPriceResolver(priceCache, priceClient, outbound.NopMetrics{}, logger)

	reconstructor, err := positions.NewReconstructor(reader, resolver, cfg, logger)
	if err != nil {
		logger.Error("failed to create reconstructor", "error", err)
		os.Exit(1)
	}

	store := memory.NewPositionStore()
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close snapshot store", "error", err)
		}
	}()

	positionService := positions.NewService(reconstructor, store, outbound.NopMetrics{},
		env.GetDuration("SNAPSHOT_TTL", positions.DefaultSnapshotTTL), logger)

	alerter := webhook.NewAlerter(webhook.Config{
		URL:       *webhookURL,
		AuthToken: env.Get("ALERT_WEBHOOK_TOKEN", ""),
	}, logger)

	svc := watcher.NewService(positionService, watchlist, alerter, *interval, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := svc.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("watcher stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
