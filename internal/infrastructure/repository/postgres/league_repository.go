package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League, commissioner league.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for league create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		PublicID:   item.ID,
		Name:       item.Name,
		Capacity:   item.Capacity,
		Status:     string(item.Status),
		InviteCode: item.InviteCode,
		CreatedBy:  item.CreatedBy,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert league: %w", err)
	}

	if err := insertMember(ctx, tx, commissioner); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit league create tx: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getOne(ctx, "get league by id", qb.Eq("public_id", leagueID))
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	return r.getOne(ctx, "get league by invite code", qb.Eq("invite_code", inviteCode))
}

func (r *LeagueRepository) getOne(ctx context.Context, action string, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(cond, qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build %s query: %w", action, err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("%s: %w", action, err)
	}
	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) ListByStatus(ctx context.Context, status league.Status) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("status", string(status)), qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by status query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues by status: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	const query = `
SELECT l.*
FROM leagues l
JOIN league_members m ON m.league_public_id = l.public_id
WHERE m.user_id = $1
  AND l.deleted_at IS NULL
ORDER BY l.created_at, l.public_id`

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

// AddMember locks the league row so concurrent joins cannot overfill it.
func (r *LeagueRepository) AddMember(ctx context.Context, member league.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for add member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var capacity int
	if err := tx.GetContext(ctx, &capacity, `
SELECT capacity
FROM leagues
WHERE public_id = $1
  AND deleted_at IS NULL
FOR UPDATE`, member.LeagueID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("league %s not found", member.LeagueID)
		}
		return fmt.Errorf("lock league for add member: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM league_members WHERE league_public_id = $1`, member.LeagueID); err != nil {
		return fmt.Errorf("count league members: %w", err)
	}
	if count >= capacity {
		return league.ErrLeagueFull
	}

	if err := insertMember(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add member tx: %w", err)
	}
	return nil
}

func insertMember(ctx context.Context, tx *sqlx.Tx, member league.Member) error {
	joinedAt := member.JoinedAt.UTC()
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}

	query, args, err := qb.InsertModel("league_members", leagueMemberTableModel{
		LeaguePublicID: member.LeagueID,
		UserID:         member.UserID,
		Role:           string(member.Role),
		JoinedAt:       joinedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert league member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if _, dup := uniqueViolation(err); dup {
			return league.ErrDuplicateMember
		}
		return fmt.Errorf("insert league member: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	query, args, err := qb.Select("league_public_id", "user_id", "role", "joined_at").
		From("league_members").
		Where(qb.Eq("league_public_id", leagueID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return league.Member{}, false, fmt.Errorf("build get league member query: %w", err)
	}

	var row leagueMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Member{}, false, nil
		}
		return league.Member{}, false, fmt.Errorf("get league member: %w", err)
	}
	return memberFromRow(row), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	query, args, err := qb.Select("league_public_id", "user_id", "role", "joined_at").
		From("league_members").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) MarkDrafting(ctx context.Context, leagueID string, draftStartAt time.Time) error {
	query, args, err := qb.Update("leagues").
		Set("status", string(league.StatusDrafting)).
		Set("draft_start_at", draftStartAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark league drafting query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark league drafting: %w", err)
	}
	return nil
}

func (r *LeagueRepository) MarkActive(ctx context.Context, leagueID string, startedAt time.Time) error {
	query, args, err := qb.Update("leagues").
		Set("status", string(league.StatusActive)).
		SetExpr("started_at", "COALESCE(started_at, ?)", startedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", leagueID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark league active query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark league active: %w", err)
	}
	return nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:           row.PublicID,
		Name:         row.Name,
		Capacity:     row.Capacity,
		Status:       league.Status(row.Status),
		InviteCode:   row.InviteCode,
		CreatedBy:    row.CreatedBy,
		DraftStartAt: nullTimePtr(row.DraftStartAt),
		StartedAt:    nullTimePtr(row.StartedAt),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func memberFromRow(row leagueMemberTableModel) league.Member {
	return league.Member{
		LeagueID: row.LeaguePublicID,
		UserID:   row.UserID,
		Role:     league.Role(row.Role),
		JoinedAt: row.JoinedAt.UTC(),
	}
}
