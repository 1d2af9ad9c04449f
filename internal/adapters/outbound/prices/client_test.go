package prices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:         server.URL,
		APIKey:          "test-key",
		RateLimitPerMin: 600000,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestFetchPrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/v1/prices" {
			t.Errorf("path = %q, want /v1/prices", got)
		}
		if got := r.URL.Query().Get("symbols"); got != "WLD,USDC" {
			t.Errorf("symbols = %q, want WLD,USDC", got)
		}
		if got := r.URL.Query().Get("currency"); got != "USD" {
			t.Errorf("currency = %q, want USD", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]float64{"WLD": 1.87, "USDC": 0.9998},
		})
	})

	prices, err := client.FetchPrices(context.Background(), []string{"WLD", "USDC"})
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if prices["WLD"] != 1.87 || prices["USDC"] != 0.9998 {
		t.Errorf("unexpected prices: %v", prices)
	}
}

func TestFetchPricesPartialResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]float64{"WLD": 1.87},
		})
	})

	prices, err := client.FetchPrices(context.Background(), []string{"WLD", "WBTC"})
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if len(prices) != 1 {
		t.Errorf("got %d prices, want 1", len(prices))
	}
	if _, ok := prices["WBTC"]; ok {
		t.Error("unpriced symbol must be absent, not zero")
	}
}

func TestFetchPricesSkipsNegativeValues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]float64{"WLD": -1, "USDC": 1.0},
		})
	})

	prices, err := client.FetchPrices(context.Background(), []string{"WLD", "USDC"})
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if _, ok := prices["WLD"]; ok {
		t.Error("negative price must be dropped")
	}
	if prices["USDC"] != 1.0 {
		t.Errorf("USDC = %v, want 1.0", prices["USDC"])
	}
}

func TestFetchPricesUppercasesSymbols(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]float64{"wld": 1.87},
		})
	})

	prices, err := client.FetchPrices(context.Background(), []string{"WLD"})
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if prices["WLD"] != 1.87 {
		t.Errorf("lowercase response key not normalized: %v", prices)
	}
}

func TestFetchPricesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"prices": map[string]float64{"WLD": 1.87},
		})
	})

	prices, err := client.FetchPrices(context.Background(), []string{"WLD"})
	if err != nil {
		t.Fatalf("FetchPrices after retry: %v", err)
	}
	if prices["WLD"] != 1.87 {
		t.Errorf("unexpected prices: %v", prices)
	}
	if calls.Load() != 2 {
		t.Errorf("server hit %d times, want 2", calls.Load())
	}
}

func TestFetchPricesClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := client.FetchPrices(context.Background(), []string{"WLD"}); err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}
}

func TestFetchPricesEmptySymbolList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty symbol list")
	})
	prices, err := client.FetchPrices(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if len(prices) != 0 {
		t.Errorf("got %v, want empty map", prices)
	}
}
