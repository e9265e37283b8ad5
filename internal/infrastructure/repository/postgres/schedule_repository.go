package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/schedule"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

type scheduleMatchupTableModel struct {
	LeaguePublicID string `db:"league_public_id"`
	Week           int    `db:"week"`
	HomeUserID     string `db:"home_user_id"`
	AwayUserID     string `db:"away_user_id"`
}

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateIfAbsent serialises on the league row so two concurrent generators
// cannot both write a schedule.
func (r *ScheduleRepository) CreateIfAbsent(ctx context.Context, leagueID string, matchups []schedule.Matchup) (bool, error) {
	if len(matchups) == 0 {
		return false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for create schedule: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT 1 FROM leagues WHERE public_id = $1 AND deleted_at IS NULL FOR UPDATE`, leagueID); err != nil {
		return false, fmt.Errorf("lock league for schedule: %w", err)
	}

	var existing int
	if err := tx.GetContext(ctx, &existing, `SELECT COUNT(1) FROM schedule_matchups WHERE league_public_id = $1`, leagueID); err != nil {
		return false, fmt.Errorf("count schedule matchups: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	for _, m := range matchups {
		query, args, err := qb.InsertModel("schedule_matchups", scheduleMatchupTableModel{
			LeaguePublicID: leagueID,
			Week:           m.Week,
			HomeUserID:     m.HomeUserID,
			AwayUserID:     m.AwayUserID,
		}, "")
		if err != nil {
			return false, fmt.Errorf("build insert matchup query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, fmt.Errorf("insert matchup week=%d: %w", m.Week, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit create schedule tx: %w", err)
	}
	return true, nil
}

func (r *ScheduleRepository) ListByLeague(ctx context.Context, leagueID string) ([]schedule.Matchup, error) {
	return r.list(ctx, qb.Eq("league_public_id", leagueID))
}

func (r *ScheduleRepository) ListByWeek(ctx context.Context, leagueID string, week int) ([]schedule.Matchup, error) {
	return r.list(ctx, qb.Eq("league_public_id", leagueID), qb.Eq("week", week))
}

func (r *ScheduleRepository) list(ctx context.Context, conditions ...qb.Condition) ([]schedule.Matchup, error) {
	query, args, err := qb.Select("league_public_id", "week", "home_user_id", "away_user_id").
		From("schedule_matchups").
		Where(conditions...).
		OrderBy("week", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matchups query: %w", err)
	}

	var rows []scheduleMatchupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matchups: %w", err)
	}

	out := make([]schedule.Matchup, 0, len(rows))
	for _, row := range rows {
		out = append(out, schedule.Matchup{
			LeagueID:   row.LeaguePublicID,
			Week:       row.Week,
			HomeUserID: row.HomeUserID,
			AwayUserID: row.AwayUserID,
		})
	}
	return out, nil
}

func (r *ScheduleRepository) LastWeek(ctx context.Context, leagueID string) (int, error) {
	var last int
	if err := r.db.GetContext(ctx, &last, `SELECT COALESCE(MAX(week), 0) FROM schedule_matchups WHERE league_public_id = $1`, leagueID); err != nil {
		return 0, fmt.Errorf("get last schedule week: %w", err)
	}
	return last, nil
}
