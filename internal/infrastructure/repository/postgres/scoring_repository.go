package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/scoring"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

type weeklyScoreTableModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	Week           int       `db:"week"`
	UserID         string    `db:"user_id"`
	RosterValue    float64   `db:"roster_value"`
	Points         float64   `db:"points"`
	ComputedAt     time.Time `db:"computed_at"`
}

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) UpsertWeeklyScores(ctx context.Context, scores []scoring.WeeklyScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for upsert weekly scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, s := range scores {
		computedAt := s.ComputedAt.UTC()
		if computedAt.IsZero() {
			computedAt = time.Now().UTC()
		}
		query, args, err := qb.InsertModel("weekly_scores", weeklyScoreTableModel{
			LeaguePublicID: s.LeagueID,
			Week:           s.Week,
			UserID:         s.UserID,
			RosterValue:    s.RosterValue,
			Points:         s.Points,
			ComputedAt:     computedAt,
		}, `ON CONFLICT (league_public_id, week, user_id)
DO UPDATE SET
    roster_value = EXCLUDED.roster_value,
    points = EXCLUDED.points,
    computed_at = EXCLUDED.computed_at`)
		if err != nil {
			return fmt.Errorf("build upsert weekly score query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert weekly score week=%d user=%s: %w", s.Week, s.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert weekly scores tx: %w", err)
	}
	return nil
}

func (r *ScoringRepository) ListWeeklyScores(ctx context.Context, leagueID string, week int) ([]scoring.WeeklyScore, error) {
	return r.list(ctx, qb.Eq("league_public_id", leagueID), qb.Eq("week", week))
}

func (r *ScoringRepository) ListWeeklyScoresUpTo(ctx context.Context, leagueID string, maxWeek int) ([]scoring.WeeklyScore, error) {
	return r.list(ctx, qb.Eq("league_public_id", leagueID), qb.Expr("week <= ?", maxWeek))
}

func (r *ScoringRepository) list(ctx context.Context, conditions ...qb.Condition) ([]scoring.WeeklyScore, error) {
	query, args, err := qb.Select("league_public_id", "week", "user_id", "roster_value", "points", "computed_at").
		From("weekly_scores").
		Where(conditions...).
		OrderBy("week", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weekly scores query: %w", err)
	}

	var rows []weeklyScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weekly scores: %w", err)
	}

	out := make([]scoring.WeeklyScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.WeeklyScore{
			LeagueID:    row.LeaguePublicID,
			Week:        row.Week,
			UserID:      row.UserID,
			RosterValue: row.RosterValue,
			Points:      row.Points,
			ComputedAt:  row.ComputedAt.UTC(),
		})
	}
	return out, nil
}
