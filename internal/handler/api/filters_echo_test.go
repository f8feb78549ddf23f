package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SignalGate/internal/service/cooldown"
	"SignalGate/internal/service/ratelimit"
	"SignalGate/internal/services/filters"
	"SignalGate/internal/services/monitor"
	"SignalGate/pkg/config"
	xlogger "SignalGate/pkg/logger"

	"github.com/labstack/echo/v4"
)

type staticFeed struct{ connected bool }

func (f staticFeed) IsConnected() bool { return f.connected }

func newTestHandler(t *testing.T, burst int) (*FiltersEchoHandler, *echo.Echo) {
	t.Helper()

	instant := filters.NewInstantGate(config.InstantConfig{
		MinVolume:      1000,
		MinLiquidity:   5000,
		MinConfidence:  0.5,
		RSIExtremeLow:  5,
		RSIExtremeHigh: 95,
	})
	orch := filters.NewOrchestrator([]filters.Stage{instant}, 100*time.Millisecond, nil, nil)

	limiter := ratelimit.New(config.RateLimitConfig{
		Enabled:      true,
		Strategy:     "token_bucket",
		MaxPerMinute: 60,
		MaxPerHour:   1000,
		BurstSize:    burst,
	}, nil)

	mon := monitor.New(config.MonitorConfig{
		HistorySize:     10,
		MinHealthyRate:  0.85,
		MaxHealthyRate:  0.97,
		SpikeMultiplier: 1.5,
		AlertCooldown:   5 * time.Minute,
		MinHistory:      5,
	}, "test", nil, nil, "")

	lg, err := xlogger.New(&xlogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	h := NewFiltersEchoHandler(lg, orch, limiter, mon, staticFeed{connected: true},
		cooldown.New(30*time.Second, 5, time.Hour))

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Client-ID", "tester")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const evaluateBody = `{"signals":[
  {"symbol":"PEPE","action":"BUY","confidence":0.8,"timeframe":"1m","timestamp":1700000000,"volume":10000,"liquidity":50000,"rsi_value":55},
  {"symbol":"RUG","action":"BUY","confidence":0.8,"timeframe":"1m","timestamp":1700000000,"volume":10,"liquidity":50000,"rsi_value":55}
]}`

func TestEvaluateEndpoint(t *testing.T) {
	_, e := newTestHandler(t, 20)

	rec := doJSON(e, http.MethodPost, "/api/evaluate", evaluateBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Admitted []struct {
				Symbol string `json:"symbol"`
			} `json:"admitted"`
			Rejected int `json:"rejected"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Admitted) != 1 || resp.Data.Admitted[0].Symbol != "PEPE" {
		t.Fatalf("unexpected admitted set: %+v", resp.Data)
	}
	if resp.Data.Rejected != 1 {
		t.Fatalf("expected one rejection, got %d", resp.Data.Rejected)
	}
}

func TestEvaluateRejectsEmptyBatch(t *testing.T) {
	_, e := newTestHandler(t, 20)
	rec := doJSON(e, http.MethodPost, "/api/evaluate", `{"signals":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestEvaluateRateLimited(t *testing.T) {
	_, e := newTestHandler(t, 2)

	for i := 0; i < 2; i++ {
		if rec := doJSON(e, http.MethodPost, "/api/evaluate", evaluateBody); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	rec := doJSON(e, http.MethodPost, "/api/evaluate", evaluateBody)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("429 body should name the reason: %s", rec.Body.String())
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, e := newTestHandler(t, 20)
	doJSON(e, http.MethodPost, "/api/evaluate", evaluateBody)

	rec := doJSON(e, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_processed":2`) {
		t.Fatalf("stats missing totals: %s", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestHandler(t, 20)
	rec := doJSON(e, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"feed_connected":true`) {
		t.Fatalf("health missing feed state: %s", rec.Body.String())
	}
}

func TestMonitorExpositionEndpoint(t *testing.T) {
	_, e := newTestHandler(t, 20)
	rec := doJSON(e, http.MethodGet, "/api/monitor", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "signalgate_rejection_rate") {
		t.Fatalf("exposition missing metrics: %s", rec.Body.String())
	}
}

func TestResetEndpoint(t *testing.T) {
	h, e := newTestHandler(t, 20)
	doJSON(e, http.MethodPost, "/api/evaluate", evaluateBody)

	rec := doJSON(e, http.MethodPost, "/api/reset", `{"target":"stats"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if snap := h.orch.Stats().Snapshot(); snap.TotalProcessed != 0 {
		t.Fatalf("stats not reset: %+v", snap)
	}
}

func TestResetRejectsUnknownTarget(t *testing.T) {
	_, e := newTestHandler(t, 20)
	rec := doJSON(e, http.MethodPost, "/api/reset", `{"target":"everything"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
