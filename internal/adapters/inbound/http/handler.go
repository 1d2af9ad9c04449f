// Package http provides the inbound HTTP adapter for the position engine.
//
// Routes:
//   - GET    /v1/positions/{address}         — reconstructed portfolio
//   - GET    /v1/positions/{address}/health  — aggregate health factor
//   - POST   /v1/positions/{address}/refresh — invalidate and refetch
//   - DELETE /v1/cache                       — drop every cached snapshot
//   - GET    /health                         — liveness probe
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/pkg/risk"
	"github.com/Masa1984a/morpho-monitor-sub000/internal/ports/inbound"
)

// DefaultThresholds classify health factors when the caller supplies none.
var DefaultThresholds = entity.Thresholds{Danger: 1.05, Warning: 1.2}

// Handler implements HTTP handlers for the API.
type Handler struct {
	service inbound.PositionService
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler with the given service.
func NewHandler(service inbound.PositionService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger.With("component", "http_handler"),
	}
}

// RegisterRoutes registers the HTTP routes with the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/positions/{address}", h.GetPositions)
	mux.HandleFunc("GET /v1/positions/{address}/health", h.GetHealth)
	mux.HandleFunc("POST /v1/positions/{address}/refresh", h.Refresh)
	mux.HandleFunc("DELETE /v1/cache", h.ClearCache)
	mux.HandleFunc("GET /health", h.Health)
}

// GetPositions returns the wallet's portfolio, served from cache when fresh.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	address, ok := h.pathAddress(w, r)
	if !ok {
		return
	}

	portfolio, err := h.service.GetPositions(r.Context(), address)
	if err != nil {
		h.logger.Error("position fetch failed", "address", address, "error", err)
		h.respondError(w, http.StatusBadGateway, "position fetch failed")
		return
	}
	h.respondJSON(w, http.StatusOK, portfolio)
}

// GetHealth computes the aggregate health factor for the wallet's current
// positions. Thresholds come from the danger/warning query parameters, or
// DefaultThresholds when absent.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	address, ok := h.pathAddress(w, r)
	if !ok {
		return
	}

	thresholds, err := parseThresholds(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	portfolio, err := h.service.GetPositions(r.Context(), address)
	if err != nil {
		h.logger.Error("position fetch failed", "address", address, "error", err)
		h.respondError(w, http.StatusBadGateway, "position fetch failed")
		return
	}

	result := risk.AggregateHealthFactor(portfolio.Positions, thresholds)
	h.respondJSON(w, http.StatusOK, result)
}

// Refresh drops the wallet's snapshot and refetches from the chain.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	address, ok := h.pathAddress(w, r)
	if !ok {
		return
	}

	if err := h.service.Invalidate(r.Context(), address); err != nil {
		h.logger.Error("invalidate failed", "address", address, "error", err)
		h.respondError(w, http.StatusInternalServerError, "invalidate failed")
		return
	}

	portfolio, err := h.service.GetPositions(r.Context(), address)
	if err != nil {
		h.logger.Error("refresh fetch failed", "address", address, "error", err)
		h.respondError(w, http.StatusBadGateway, "position fetch failed")
		return
	}
	h.respondJSON(w, http.StatusOK, portfolio)
}

// ClearCache drops every cached snapshot.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context(), ""); err != nil {
		h.logger.Error("cache clear failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "cache clear failed")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "service unhealthy")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) pathAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := r.PathValue("address")
	if !common.IsHexAddress(address) {
		h.respondError(w, http.StatusBadRequest, "invalid address")
		return "", false
	}
	return address, true
}

func parseThresholds(r *http.Request) (entity.Thresholds, error) {
	thresholds := DefaultThresholds

	if raw := r.URL.Query().Get("danger"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return entity.Thresholds{}, err
		}
		thresholds.Danger = v
	}
	if raw := r.URL.Query().Get("warning"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return entity.Thresholds{}, err
		}
		thresholds.Warning = v
	}

	if err := thresholds.Validate(); err != nil {
		return entity.Thresholds{}, err
	}
	return thresholds, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
