package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/usecase"
)

func (h *Handler) GetDraftBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraftBoard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	board, err := h.draftService.GetBoard(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get draft board failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftBoardToDTO(board))
}

func (h *Handler) ListAvailableAssets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAvailableAssets")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	items, err := h.draftService.ListAvailableAssets(ctx, leagueID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list available assets failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assetsToDTO(items))
}

func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartDraft")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req startDraftRequest
	if err := h.decodeAndValidate(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	state, err := h.draftService.Start(ctx, usecase.StartDraftInput{
		LeagueID:         leagueID,
		UserID:           principal.UserID,
		Rounds:           req.Rounds,
		PickSeconds:      req.PickSeconds,
		CountdownSeconds: req.CountdownSeconds,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "start draft failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) RandomizeDraftOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RandomizeDraftOrder")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	order, err := h.draftService.RandomizeOrder(ctx, usecase.RandomizeOrderInput{LeagueID: leagueID, UserID: principal.UserID})
	if err != nil {
		h.logger.WarnContext(ctx, "randomize draft order failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftSlotsToDTO(order))
}

func (h *Handler) PauseDraft(w http.ResponseWriter, r *http.Request) {
	h.runDraftCommand(w, r, "httpapi.Handler.PauseDraft", "pause draft failed", h.draftService.Pause)
}

func (h *Handler) ResumeDraft(w http.ResponseWriter, r *http.Request) {
	h.runDraftCommand(w, r, "httpapi.Handler.ResumeDraft", "resume draft failed", h.draftService.Resume)
}

func (h *Handler) runDraftCommand(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	failureMsg string,
	command func(ctx context.Context, input usecase.DraftCommandInput) (draft.State, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	state, err := command(ctx, usecase.DraftCommandInput{LeagueID: leagueID, UserID: principal.UserID})
	if err != nil {
		h.logger.WarnContext(ctx, failureMsg, "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) UpdateDraftSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateDraftSettings")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateDraftSettingsRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	state, err := h.draftService.UpdateSettings(ctx, usecase.UpdateDraftSettingsInput{
		LeagueID:    leagueID,
		UserID:      principal.UserID,
		Rounds:      req.Rounds,
		PickSeconds: req.PickSeconds,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update draft settings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftStateToDTO(state))
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req pickRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	pick, err := h.draftService.SubmitPick(ctx, usecase.SubmitPickInput{
		LeagueID: leagueID,
		UserID:   principal.UserID,
		AssetID:  req.AssetID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed", "league_id", leagueID, "user_id", principal.UserID, "asset_id", req.AssetID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, draftPickToDTO(pick))
}

func (h *Handler) OverridePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OverridePick")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req pickRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	pick, err := h.draftService.OverridePick(ctx, usecase.OverridePickInput{
		LeagueID: leagueID,
		UserID:   principal.UserID,
		AssetID:  req.AssetID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "override pick failed", "league_id", leagueID, "asset_id", req.AssetID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, draftPickToDTO(pick))
}

// TickDraft lets any signed-in client nudge a league's draft forward.
// Ticks are idempotent so polling clients are safe.
func (h *Handler) TickDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TickDraft")
	defer span.End()

	if _, err := requirePrincipal(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	result, err := h.draftService.Tick(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "tick draft failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tickResultToDTO(result))
}

func (h *Handler) SetLeaguePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetLeaguePool")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setPoolRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	leagueID := leagueIDFromPath(r)

	ids, err := h.draftService.SetPool(ctx, usecase.SetPoolInput{
		LeagueID: leagueID,
		UserID:   principal.UserID,
		AssetIDs: req.AssetIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set league pool failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"asset_ids": ids})
}
