package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/asset-draft/internal/domain/user"
	"github.com/riskibarqy/asset-draft/internal/usecase"
)

func TestShouldTraceRequest(t *testing.T) {
	for _, path := range []string{"/healthz", "/livez", "/readyz", " /HEALTHZ "} {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for probe path %q", path)
		}
	}
	for _, path := range []string{"/v1/leagues/lg-1/draft", "/v1/market/quotes", "/", "/docs"} {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != "good" {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return user.Principal{UserID: "user-1"}, nil
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := requirePrincipal(r.Context())
		if err != nil || principal.UserID != "user-1" {
			t.Errorf("unexpected principal %+v, %v", principal, err)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAuth(stubVerifier{}, next)

	for header, want := range map[string]int{
		"":            http.StatusUnauthorized,
		"Basic good":  http.StatusUnauthorized,
		"Bearer ":     http.StatusUnauthorized,
		"Bearer bad":  http.StatusUnauthorized,
		"bearer good": http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/leagues/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("Authorization %q: status = %d, want %d", header, rec.Code, want)
		}
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		want       int
	}{
		{name: "not configured", configured: "", provided: "x", want: http.StatusServiceUnavailable},
		{name: "wrong token", configured: "secret", provided: "secreT", want: http.StatusUnauthorized},
		{name: "missing token", configured: "secret", want: http.StatusUnauthorized},
		{name: "match", configured: "secret", provided: " secret ", want: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/weekly", nil)
			req.Header.Set(internalJobTokenHeader, tc.provided)
			rec := httptest.NewRecorder()
			RequireInternalJobToken(tc.configured, next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
