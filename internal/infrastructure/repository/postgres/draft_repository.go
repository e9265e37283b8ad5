package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

const (
	draftPicksLeaguePickKey  = "draft_picks_league_pick_key"
	draftPicksLeagueAssetKey = "draft_picks_league_asset_key"
	rostersPrimaryKey        = "rosters_pkey"
)

// DraftRepository commits draft transitions with a version-guarded update.
// A writer whose expected version is stale affects zero rows and gets
// draft.ErrStaleState.
type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

var draftStateColumns = []string{
	"league_public_id",
	"status",
	"rounds",
	"pick_seconds",
	"current_pick",
	"pick_deadline",
	"starts_at",
	"version",
	"updated_at",
}

func (r *DraftRepository) GetState(ctx context.Context, leagueID string) (draft.State, bool, error) {
	query, args, err := qb.Select(draftStateColumns...).From("draft_states").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return draft.State{}, false, fmt.Errorf("build get draft state query: %w", err)
	}

	var row draftStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return draft.State{}, false, nil
		}
		return draft.State{}, false, fmt.Errorf("get draft state: %w", err)
	}
	return draftStateFromRow(row), true, nil
}

func (r *DraftRepository) ListStatesByStatus(ctx context.Context, statuses ...draft.Status) ([]draft.State, error) {
	if len(statuses) == 0 {
		return []draft.State{}, nil
	}

	values := make([]any, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	query, args, err := qb.Select(draftStateColumns...).From("draft_states").
		Where(qb.In("status", values)).
		OrderBy("league_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list draft states query: %w", err)
	}

	var rows []draftStateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list draft states: %w", err)
	}

	out := make([]draft.State, 0, len(rows))
	for _, row := range rows {
		out = append(out, draftStateFromRow(row))
	}
	return out, nil
}

func (r *DraftRepository) Apply(ctx context.Context, commit draft.Commit) (draft.State, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return draft.State{}, fmt.Errorf("begin tx for draft commit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	next := commit.State
	next.Version = commit.ExpectedVersion + 1
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}

	if commit.ExpectedVersion == 0 {
		err = insertDraftState(ctx, tx, next)
	} else {
		err = updateDraftState(ctx, tx, commit.ExpectedVersion, next)
	}
	if err != nil {
		return draft.State{}, err
	}

	if commit.Order != nil {
		if err := replaceDraftOrder(ctx, tx, next.LeagueID, commit.Order); err != nil {
			return draft.State{}, err
		}
	}

	if commit.Pick != nil {
		if err := insertDraftPick(ctx, tx, next.LeagueID, *commit.Pick); err != nil {
			return draft.State{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return draft.State{}, fmt.Errorf("commit draft tx: %w", err)
	}
	return next, nil
}

func insertDraftState(ctx context.Context, tx *sqlx.Tx, state draft.State) error {
	query, args, err := qb.InsertModel("draft_states", draftStateInsertModel{
		LeaguePublicID: state.LeagueID,
		Status:         string(state.Status),
		Rounds:         state.Rounds,
		PickSeconds:    state.PickSeconds,
		CurrentPick:    state.CurrentPick,
		PickDeadline:   utcPtr(state.PickDeadline),
		StartsAt:       utcPtr(state.StartsAt),
		Version:        state.Version,
		UpdatedAt:      state.UpdatedAt.UTC(),
	}, "ON CONFLICT (league_public_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert draft state query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert draft state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read insert draft state affected rows: %w", err)
	}
	if affected == 0 {
		return draft.ErrStaleState
	}
	return nil
}

func updateDraftState(ctx context.Context, tx *sqlx.Tx, expected int64, state draft.State) error {
	query, args, err := qb.Update("draft_states").
		Set("status", string(state.Status)).
		Set("rounds", state.Rounds).
		Set("pick_seconds", state.PickSeconds).
		Set("current_pick", state.CurrentPick).
		Set("pick_deadline", utcPtr(state.PickDeadline)).
		Set("starts_at", utcPtr(state.StartsAt)).
		Set("updated_at", state.UpdatedAt.UTC()).
		SetExpr("version", "version + 1").
		Where(qb.Eq("league_public_id", state.LeagueID), qb.Eq("version", expected)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update draft state query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update draft state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update draft state affected rows: %w", err)
	}
	if affected == 0 {
		return draft.ErrStaleState
	}
	return nil
}

func replaceDraftOrder(ctx context.Context, tx *sqlx.Tx, leagueID string, order []draft.Slot) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM draft_order WHERE league_public_id = $1`, leagueID); err != nil {
		return fmt.Errorf("clear draft order: %w", err)
	}

	for _, slot := range order {
		query, args, err := qb.InsertModel("draft_order", draftSlotTableModel{
			LeaguePublicID: leagueID,
			Slot:           slot.Slot,
			UserID:         slot.UserID,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert draft slot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert draft slot %d: %w", slot.Slot, err)
		}
	}
	return nil
}

func insertDraftPick(ctx context.Context, tx *sqlx.Tx, leagueID string, pick draft.Pick) error {
	createdAt := pick.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("draft_picks", draftPickInsertModel{
		PublicID:       pick.ID,
		LeaguePublicID: leagueID,
		PickNumber:     pick.PickNumber,
		Round:          pick.Round,
		Slot:           pick.Slot,
		UserID:         pick.UserID,
		AssetID:        optionalString(pick.AssetID),
		Source:         string(pick.Source),
		CreatedAt:      createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert draft pick query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if mapped := mapPickViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert draft pick %d: %w", pick.PickNumber, err)
	}

	if pick.IsSkip() {
		return nil
	}

	query, args, err = qb.InsertModel("rosters", rosterTableModel{
		LeaguePublicID: leagueID,
		UserID:         pick.UserID,
		AssetID:        pick.AssetID,
		PickNumber:     pick.PickNumber,
		AcquiredAt:     createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert roster entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if mapped := mapPickViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert roster entry: %w", err)
	}
	return nil
}

// mapPickViolation translates unique violations raised while recording a pick
// into draft sentinel errors. It returns nil for anything else.
func mapPickViolation(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case draftPicksLeaguePickKey:
		return draft.ErrPickTaken
	case draftPicksLeagueAssetKey, rostersPrimaryKey:
		return draft.ErrAssetTaken
	default:
		return nil
	}
}

func (r *DraftRepository) ListOrder(ctx context.Context, leagueID string) ([]draft.Slot, error) {
	query, args, err := qb.Select("league_public_id", "slot", "user_id").From("draft_order").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("slot").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list draft order query: %w", err)
	}

	var rows []draftSlotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list draft order: %w", err)
	}

	out := make([]draft.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.Slot{LeagueID: row.LeaguePublicID, Slot: row.Slot, UserID: row.UserID})
	}
	return out, nil
}

func (r *DraftRepository) ListPicks(ctx context.Context, leagueID string) ([]draft.Pick, error) {
	query, args, err := qb.Select("*").From("draft_picks").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("pick_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list draft picks query: %w", err)
	}

	var rows []draftPickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list draft picks: %w", err)
	}

	out := make([]draft.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.Pick{
			ID:         row.PublicID,
			LeagueID:   row.LeaguePublicID,
			PickNumber: row.PickNumber,
			Round:      row.Round,
			Slot:       row.Slot,
			UserID:     row.UserID,
			AssetID:    nullStringValue(row.AssetID),
			Source:     draft.Source(row.Source),
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *DraftRepository) ListDraftedAssetIDs(ctx context.Context, leagueID string) ([]string, error) {
	query, args, err := qb.Select("asset_id").From("draft_picks").
		Where(qb.Eq("league_public_id", leagueID), qb.Expr("asset_id IS NOT NULL")).
		OrderBy("pick_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list drafted assets query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list drafted assets: %w", err)
	}
	return out, nil
}

func (r *DraftRepository) ListRoster(ctx context.Context, leagueID, userID string) ([]draft.RosterEntry, error) {
	return r.listRosters(ctx, qb.Eq("league_public_id", leagueID), qb.Eq("user_id", userID))
}

func (r *DraftRepository) ListRosters(ctx context.Context, leagueID string) ([]draft.RosterEntry, error) {
	return r.listRosters(ctx, qb.Eq("league_public_id", leagueID))
}

func (r *DraftRepository) listRosters(ctx context.Context, conditions ...qb.Condition) ([]draft.RosterEntry, error) {
	query, args, err := qb.Select("league_public_id", "user_id", "asset_id", "pick_number", "acquired_at").
		From("rosters").
		Where(conditions...).
		OrderBy("pick_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rosters query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}

	out := make([]draft.RosterEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, draft.RosterEntry{
			LeagueID:   row.LeaguePublicID,
			UserID:     row.UserID,
			AssetID:    row.AssetID,
			PickNumber: row.PickNumber,
			AcquiredAt: row.AcquiredAt.UTC(),
		})
	}
	return out, nil
}

func draftStateFromRow(row draftStateTableModel) draft.State {
	return draft.State{
		LeagueID:     row.LeaguePublicID,
		Status:       draft.Status(row.Status),
		Rounds:       row.Rounds,
		PickSeconds:  row.PickSeconds,
		CurrentPick:  row.CurrentPick,
		PickDeadline: nullTimePtr(row.PickDeadline),
		StartsAt:     nullTimePtr(row.StartsAt),
		Version:      row.Version,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}
