// Package main runs the position engine's HTTP service: cached portfolio
// reconstruction for wallet addresses over batched on-chain reads, with USD
// valuation and health-factor endpoints.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	inboundhttp "github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/inbound/http"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/memory"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/prices"
	redisstore "github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/redis"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/adapters/outbound/telemetry"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/blockchain/multicall"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/env"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/outbound"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/services/positions"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	rpcURL := flag.String("rpc", "", "Ethereum JSON-RPC endpoint")
	configPath := flag.String("config", "", "market universe JSON (compiled-in defaults when empty)")
	redisAddr := flag.String("redis", "", "Redis address for the snapshot store (in-memory when empty)")
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

	cfg := blockchain.DefaultWorldChainConfig()
	if *configPath != "" {
		loaded, err := blockchain.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load market config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx := context.Background()

	shutdownMetrics, err := telemetry.InitMetrics(ctx, telemetry.MetricConfig{
		ServiceName:    "positiond",
		ServiceVersion: env.Get("SERVICE_VERSION", "dev"),
		Environment:    env.Get("ENVIRONMENT", "local"),
		OTLPEndpoint:   env.Get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			logger.Warn("metrics shutdown failed", "error", err)
		}
	}()

	var metrics outbound.MetricsRecorder = outbound.NopMetrics{}
	if recorder, err := telemetry.NewMetrics("positiond"); err != nil {
		logger.Warn("metrics recorder unavailable", "error", err)
	} else {
		metrics = recorder
	}

	rpcClient, err := rpc.DialContext(ctx, *rpcURL)
	if err != nil {
		logger.Error("failed to connect to RPC endpoint", "error", err)
		os.Exit(1)
	}
	defer rpcClient.Close()
	logger.Info("RPC endpoint connected")

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
	resolver := positions.NewPriceResolver(priceCache, priceClient, metrics, logger)

	var store outbound.PositionStore
	if *redisAddr == "" {
		*redisAddr = env.Get("REDIS_ADDR", "")
	}
	if *redisAddr != "" {
		redisStore, err := redisstore.NewPositionStore(redisstore.Config{
			Addr:     *redisAddr,
			Password: env.Get("REDIS_PASSWORD", ""),
		}, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		store = redisStore
		logger.Info("Redis snapshot store connected", "addr", *redisAddr)
	} else {
		store = memory.NewPositionStore()
		logger.Info("using in-memory snapshot store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close snapshot store", "error", err)
		}
	}()

	reconstructor, err := positions.NewReconstructor(reader, resolver, cfg, logger)
	if err != nil {
		logger.Error("failed to create reconstructor", "error", err)
		os.Exit(1)
	}

	service := positions.NewService(reconstructor, store, metrics,
		env.GetDuration("SNAPSHOT_TTL", positions.DefaultSnapshotTTL), logger)

	mux := http.NewServeMux()
	handler := inboundhttp.NewHandler(service, logger)
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", *addr, "markets", len(cfg.ActiveMarkets()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
