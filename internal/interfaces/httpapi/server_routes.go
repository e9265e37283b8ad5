package httpapi

import (
	"net/http"

	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET "+openAPIJSONPath, handler.OpenAPIJSON)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/market/quotes", handler.ListMarketQuotes)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("GET /v1/leagues/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/members", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueMembers)))
	mux.Handle("GET /v1/leagues/{leagueID}/insights", RequireAuth(verifier, http.HandlerFunc(handler.ListLeagueInsights)))
	mux.Handle("PUT /v1/leagues/{leagueID}/pool", RequireAuth(verifier, http.HandlerFunc(handler.SetLeaguePool)))
}

func registerDraftRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/leagues/{leagueID}/draft", RequireAuth(verifier, http.HandlerFunc(handler.GetDraftBoard)))
	mux.Handle("GET /v1/leagues/{leagueID}/draft/available", RequireAuth(verifier, http.HandlerFunc(handler.ListAvailableAssets)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/start", RequireAuth(verifier, http.HandlerFunc(handler.StartDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/randomize-order", RequireAuth(verifier, http.HandlerFunc(handler.RandomizeDraftOrder)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/pause", RequireAuth(verifier, http.HandlerFunc(handler.PauseDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/resume", RequireAuth(verifier, http.HandlerFunc(handler.ResumeDraft)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/settings", RequireAuth(verifier, http.HandlerFunc(handler.UpdateDraftSettings)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/pick", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPick)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/override-pick", RequireAuth(verifier, http.HandlerFunc(handler.OverridePick)))
	mux.Handle("POST /v1/leagues/{leagueID}/draft/tick", RequireAuth(verifier, http.HandlerFunc(handler.TickDraft)))
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/schedule", RequireAuth(verifier, http.HandlerFunc(handler.GenerateSchedule)))
	mux.Handle("GET /v1/leagues/{leagueID}/matchups", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchups)))
	mux.Handle("GET /v1/leagues/{leagueID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.ListStandings)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST "+jobscheduler.DraftTick.Path, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDraftTickJob)))
	mux.Handle("POST "+jobscheduler.DraftEnforce.Path, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDraftEnforceJob)))
	mux.Handle("POST "+jobscheduler.Weekly.Path, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWeeklyJob)))
	mux.Handle("POST "+jobscheduler.MarketTick.Path, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMarketTickJob)))
}
