package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/config"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"go.uber.org/goleak"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                config.EnvDev,
		HTTPAddr:              ":0",
		StorageDriver:         config.StorageMemory,
		CacheEnabled:          true,
		CacheTTL:              time.Minute,
		CORSAllowedOrigins:    []string{"*"},
		AnubisBaseURL:         "http://127.0.0.1:1",
		AnubisIntrospectPath:  "/v1/auth/introspect",
		AnubisTimeout:         time.Second,
		MarketProvider:        "simulated",
		SimModel:              "basic",
		SimFactorVol:          0.0025,
		DraftEnforcerInterval: 10 * time.Millisecond,
		DraftEnforcerWorkers:  2,
		WeeklyJobInterval:     10 * time.Millisecond,
		WeeklyWorkers:         2,
		MarketTickInterval:    10 * time.Millisecond,
	}
}

func TestNew_MemoryStackServesHealthz(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			t.Fatalf("close app: %v", err)
		}
	}()

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/market/quotes", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "AAPL") {
		t.Fatalf("quotes status = %d, body=%s", rec.Code, rec.Body.String())
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestNew_RejectsUnknownMarketProvider(t *testing.T) {
	cfg := memoryConfig()
	cfg.MarketProvider = "bloomberg"
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown market provider")
	}
}

func TestRunBackground_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := memoryConfig()
	cfg.DraftEnforcerEnabled = true
	cfg.WeeklyJobEnabled = true
	cfg.MarketTickEnabled = true
	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.RunBackground(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("background loops did not stop after cancel")
	}
}

func TestRunPeriodic_InvokesUntilCancelled(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		runPeriodic(ctx, logging.NewNop(), "test loop", time.Millisecond, func(context.Context) error {
			if calls.Add(1) == 3 {
				cancel()
			}
			return errors.New("keeps going")
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("runPeriodic did not return")
	}
	if calls.Load() < 3 {
		t.Fatalf("expected at least 3 calls, got %d", calls.Load())
	}
}
