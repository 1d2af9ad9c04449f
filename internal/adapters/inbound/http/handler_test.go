package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Masa1984a/morpho-monitor-sub000/internal/domain/entity"
)

type mockService struct {
	getPositionsFn func(ctx context.Context, address string) (entity.Portfolio, error)
	invalidateFn   func(ctx context.Context, address string) error
	pingErr        error
	invalidated    []string
}

func (m *mockService) GetPositions(ctx context.Context, address string) (entity.Portfolio, error) {
	if m.getPositionsFn != nil {
		return m.getPositionsFn(ctx, address)
	}
	return entity.Portfolio{}, nil
}

func (m *mockService) Invalidate(ctx context.Context, address string) error {
	m.invalidated = append(m.invalidated, address)
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, address)
	}
	return nil
}

func (m *mockService) Ping(context.Context) error { return m.pingErr }

func newTestServer(t *testing.T, service *mockService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(service, nil).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

const validAddr = "0x1111111111111111111111111111111111111111"

func TestGetPositions(t *testing.T) {
	service := &mockService{
		getPositionsFn: func(_ context.Context, address string) (entity.Portfolio, error) {
			return entity.Portfolio{
				Positions: []entity.NormalizedPosition{{
					Market: entity.PositionMarket{ID: "0x01", LiquidationLTV: 0.77},
				}},
				Degraded: true,
			}, nil
		},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/v1/positions/" + validAddr)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var portfolio entity.Portfolio
	if err := json.NewDecoder(resp.Body).Decode(&portfolio); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(portfolio.Positions) != 1 || !portfolio.Degraded {
		t.Errorf("unexpected portfolio: %+v", portfolio)
	}
}

func TestGetPositionsInvalidAddress(t *testing.T) {
	server := newTestServer(t, &mockService{})

	resp, err := http.Get(server.URL + "/v1/positions/not-an-address")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetPositionsUpstreamFailure(t *testing.T) {
	service := &mockService{
		getPositionsFn: func(_ context.Context, _ string) (entity.Portfolio, error) {
			return entity.Portfolio{}, errors.New("rpc down")
		},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/v1/positions/" + validAddr)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestGetHealth(t *testing.T) {
	service := &mockService{
		getPositionsFn: func(_ context.Context, _ string) (entity.Portfolio, error) {
			return entity.Portfolio{
				Positions: []entity.NormalizedPosition{{
					Market: entity.PositionMarket{LiquidationLTV: 0.8},
					State:  entity.PositionState{CollateralUsd: 1000, BorrowAssetsUsd: 500},
				}},
			}, nil
		},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/v1/positions/" + validAddr + "/health?danger=1.1&warning=1.4")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Value    *float64            `json:"value"`
		Infinite bool                `json:"infinite"`
		Status   entity.HealthStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Value == nil || *body.Value != 1.6 {
		t.Errorf("value = %v, want 1.6", body.Value)
	}
	if body.Status != entity.StatusHealthy {
		t.Errorf("status = %s, want healthy", body.Status)
	}
}

func TestGetHealthInfiniteRendersNull(t *testing.T) {
	service := &mockService{
		getPositionsFn: func(_ context.Context, _ string) (entity.Portfolio, error) {
			return entity.Portfolio{}, nil // no positions, no borrow
		},
	}
	server := newTestServer(t, service)

	resp, err := http.Get(server.URL + "/v1/positions/" + validAddr + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Value    *float64 `json:"value"`
		Infinite bool     `json:"infinite"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Value != nil {
		t.Errorf("value = %v, want null", *body.Value)
	}
	if !body.Infinite {
		t.Error("infinite flag not set")
	}
}

func TestGetHealthRejectsBadThresholds(t *testing.T) {
	server := newTestServer(t, &mockService{})

	// danger must stay below warning.
	resp, err := http.Get(server.URL + "/v1/positions/" + validAddr + "/health?danger=2&warning=1.5")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRefreshInvalidatesThenFetches(t *testing.T) {
	service := &mockService{}
	server := newTestServer(t, service)

	resp, err := http.Post(server.URL+"/v1/positions/"+validAddr+"/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(service.invalidated) != 1 || service.invalidated[0] != validAddr {
		t.Errorf("invalidated = %v, want [%s]", service.invalidated, validAddr)
	}
}

func TestClearCache(t *testing.T) {
	service := &mockService{}
	server := newTestServer(t, service)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/v1/cache", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(service.invalidated) != 1 || service.invalidated[0] != "" {
		t.Errorf("invalidated = %v, want one empty-address call", service.invalidated)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := newTestServer(t, &mockService{})
		resp, err := http.Get(server.URL + "/health")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := newTestServer(t, &mockService{pingErr: errors.New("store down")})
		resp, err := http.Get(server.URL + "/health")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
	})
}
