package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/user"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/riskibarqy/asset-draft/internal/usecase"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-token"

type staticVerifier map[string]string

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	userID, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: userID}, nil
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       map[string]any `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

type testServer struct {
	handler    http.Handler
	dispatches *memory.JobDispatchRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	assets := memory.NewAssetRepository([]asset.Asset{
		{ID: "AAPL", Name: "Apple", Kind: asset.KindEquity, Risk: asset.RiskMedium, Active: true},
		{ID: "BND", Name: "Total Bond", Kind: asset.KindETF, Risk: asset.RiskLow, Active: true},
		{ID: "BTC", Name: "Bitcoin", Kind: asset.KindCrypto, Risk: asset.RiskHigh, Active: true},
	})
	leagues := memory.NewLeagueRepository()
	drafts := memory.NewDraftRepository()
	insights := memory.NewInsightRepository()
	dispatches := memory.NewJobDispatchRepository()
	logger := logging.NewNop()

	draftService := usecase.NewDraftService(leagues, assets, drafts, insights, dispatches, nil, nil, nil, nil, usecase.DraftServiceConfig{}, logger)
	handler := NewHandler(
		usecase.NewLeagueService(leagues, insights, nil),
		draftService,
		usecase.NewSeasonService(leagues, assets, drafts, memory.NewScheduleRepository(), memory.NewScoringRepository(), insights, nil, usecase.SeasonServiceConfig{}, logger),
		usecase.NewMarketService(assets, nil, logger),
		usecase.NewDraftEnforcerService(drafts, draftService, usecase.DraftEnforcerConfig{Workers: 2}, logger),
		dispatches,
		logger,
	)
	verifier := staticVerifier{"tok-u1": "u1", "tok-u2": "u2", "tok-u3": "u3"}

	return &testServer{
		handler:    NewRouter(handler, verifier, logger, RouterConfig{SwaggerEnabled: true, InternalJobToken: testJobToken}),
		dispatches: dispatches,
	}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		// array payloads do not decode into Data; those callers only check the status.
		_ = sonic.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func TestRouter_DraftFlow(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodPost, "/v1/leagues", "tok-u1", `{"name":"Index Hunters","capacity":2}`)
	require.Equal(t, http.StatusCreated, code)
	leagueID, _ := body.Data["id"].(string)
	inviteCode, _ := body.Data["invite_code"].(string)
	require.NotEmpty(t, leagueID)
	require.NotEmpty(t, inviteCode)

	code, _ = srv.do(t, http.MethodPost, "/v1/leagues/join", "tok-u2", fmt.Sprintf(`{"invite_code":%q}`, inviteCode))
	require.Equal(t, http.StatusOK, code)

	code, body = srv.do(t, http.MethodPost, "/v1/leagues/join", "tok-u3", fmt.Sprintf(`{"invite_code":%q}`, inviteCode))
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "FAILED_PRECONDITION", body.Error.Status)

	draftPath := "/v1/leagues/" + leagueID + "/draft"

	code, _ = srv.do(t, http.MethodPost, draftPath+"/start", "tok-u2", "")
	require.Equal(t, http.StatusForbidden, code)

	code, body = srv.do(t, http.MethodPost, draftPath+"/start", "tok-u1", `{"rounds":1,"pick_seconds":30,"countdown_seconds":0}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "live", body.Data["status"])

	code, _ = srv.do(t, http.MethodPost, draftPath+"/pick", "tok-u2", `{"asset_id":"BTC"}`)
	require.Equal(t, http.StatusForbidden, code)

	code, body = srv.do(t, http.MethodPost, draftPath+"/pick", "tok-u1", `{"asset_id":"aapl"}`)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "AAPL", body.Data["asset_id"])
	require.Equal(t, "user", body.Data["source"])

	code, _ = srv.do(t, http.MethodPost, draftPath+"/pick", "tok-u2", `{"asset_id":"AAPL"}`)
	require.Equal(t, http.StatusConflict, code)

	code, _ = srv.do(t, http.MethodPost, draftPath+"/pick", "tok-u2", `{"asset_id":"BTC"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body = srv.do(t, http.MethodGet, draftPath, "tok-u2", "")
	require.Equal(t, http.StatusOK, code)
	state, _ := body.Data["state"].(map[string]any)
	require.Equal(t, "completed", state["status"])
	require.EqualValues(t, 2, body.Data["total_picks"])
}

func TestRouter_RejectsBadRequests(t *testing.T) {
	srv := newTestServer(t)

	code, body := srv.do(t, http.MethodGet, "/v1/leagues/me", "", "")
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "UNAUTHENTICATED", body.Error.Status)

	code, _ = srv.do(t, http.MethodGet, "/v1/leagues/me", "tok-nobody", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, body = srv.do(t, http.MethodPost, "/v1/leagues", "tok-u1", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "INVALID_ARGUMENT", body.Error.Status)

	code, _ = srv.do(t, http.MethodPost, "/v1/leagues", "tok-u1", `{"name":"x","unknown":1}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = srv.do(t, http.MethodGet, "/v1/leagues/missing/draft", "tok-u1", "")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = srv.do(t, http.MethodGet, "/v1/leagues/missing/matchups?week=zero", "tok-u1", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_InternalJobs(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/weekly", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/weekly", strings.NewReader(`{"dispatch_id":"weekly-2026-10"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	event, ok := srv.dispatches.Get("weekly-2026-10")
	require.True(t, ok)
	require.Equal(t, "weekly", event.JobName)

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/market-tick", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/draft-tick", strings.NewReader(`{}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ServesOpenAPI(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/v1/leagues/{leagueID}/draft/pick")
}

func TestRouter_OpenAPIConditionalAndDocs(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req = httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "openapi.yaml")
}

func TestRouter_ServesOpenAPIAsJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &doc))
	require.NotEmpty(t, doc.OpenAPI)
	require.Contains(t, doc.Paths, "/v1/leagues/{leagueID}/standings")
}
