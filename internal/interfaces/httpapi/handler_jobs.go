package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
	"github.com/riskibarqy/asset-draft/internal/usecase"
)

// RunDraftTickJob is the callback target of deadline-aligned tick jobs.
// The draft service closes the dispatch record itself.
func (h *Handler) RunDraftTickJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDraftTickJob")
	defer span.End()

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.LeagueID) == "" {
		writeError(ctx, w, fmt.Errorf("%w: league_id is required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.draftService.RunTickJob(ctx, req.LeagueID, req.DispatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run draft tick job failed", "league_id", req.LeagueID, "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tickResultToDTO(result))
}

func (h *Handler) RunDraftEnforceJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDraftEnforceJob")
	defer span.End()

	if h.draftEnforcer == nil {
		writeError(ctx, w, fmt.Errorf("%w: draft enforcer is not configured", usecase.ErrDependencyUnavailable))
		return
	}
	h.runInternalJob(ctx, w, r, jobscheduler.DraftEnforce, func(ctx context.Context) (any, error) {
		return h.draftEnforcer.TickAll(ctx)
	})
}

func (h *Handler) RunWeeklyJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunWeeklyJob")
	defer span.End()

	h.runInternalJob(ctx, w, r, jobscheduler.Weekly, func(ctx context.Context) (any, error) {
		return h.seasonService.RunWeekly(ctx)
	})
}

func (h *Handler) RunMarketTickJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMarketTickJob")
	defer span.End()

	h.runInternalJob(ctx, w, r, jobscheduler.MarketTick, func(ctx context.Context) (any, error) {
		return h.marketService.RefreshPrices(ctx)
	})
}

func (h *Handler) runInternalJob(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	job jobscheduler.Job,
	run func(ctx context.Context) (any, error),
) {
	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := run(ctx)
	event := job.Event(req.DispatchID, req.LeagueID, jobscheduler.StatusCompleted, buildInternalJobPayload(req), time.Now().UTC())
	event.Fail(err)
	h.recordInternalJobDispatch(ctx, event)

	if err != nil {
		h.logger.WarnContext(ctx, "run internal job failed", "job_name", job.Name, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeInternalJobRequest(r *http.Request) (internalJobRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req internalJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return internalJobRequest{}, nil
		}
		return internalJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	req.LeagueID = strings.TrimSpace(req.LeagueID)
	req.DispatchID = strings.TrimSpace(req.DispatchID)
	return req, nil
}

func (h *Handler) recordInternalJobDispatch(ctx context.Context, event jobscheduler.DispatchEvent) {
	if h.jobDispatchRepo == nil {
		return
	}

	if event.DispatchID == "" {
		event.DispatchID = jobscheduler.ManualDispatchID(event.JobName, event.LeagueID, event.OccurredAt)
	}
	event.AttachTrace(ctx)

	if err := h.jobDispatchRepo.UpsertEvent(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "record internal job dispatch failed",
			"dispatch_id", event.DispatchID,
			"job_name", event.JobName,
			"status", event.Status,
			"error", err,
		)
	}
}

func buildInternalJobPayload(req internalJobRequest) map[string]any {
	payload := map[string]any{}
	if req.LeagueID != "" {
		payload["league_id"] = req.LeagueID
	}
	if req.DispatchID != "" {
		payload["dispatch_id"] = req.DispatchID
	}
	return payload
}
