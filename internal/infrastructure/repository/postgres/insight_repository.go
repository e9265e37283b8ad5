package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

type insightTableModel struct {
	PublicID       string        `db:"public_id"`
	LeaguePublicID string        `db:"league_public_id"`
	UserID         string        `db:"user_id"`
	Week           sql.NullInt64 `db:"week"`
	EventType      string        `db:"event_type"`
	Headline       string        `db:"headline"`
	Body           string        `db:"body"`
	CreatedAt      time.Time     `db:"created_at"`
}

type InsightRepository struct {
	db *sqlx.DB
}

func NewInsightRepository(db *sqlx.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

func (r *InsightRepository) Insert(ctx context.Context, items ...insight.Insight) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for insert insights: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		var week sql.NullInt64
		if item.Week > 0 {
			week = sql.NullInt64{Int64: int64(item.Week), Valid: true}
		}
		query, args, err := qb.InsertModel("insights", insightTableModel{
			PublicID:       item.ID,
			LeaguePublicID: item.LeagueID,
			UserID:         item.UserID,
			Week:           week,
			EventType:      string(item.EventType),
			Headline:       item.Headline,
			Body:           item.Body,
			CreatedAt:      item.CreatedAt.UTC(),
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert insight query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert insight %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert insights tx: %w", err)
	}
	return nil
}

func (r *InsightRepository) ListRecent(ctx context.Context, leagueID, userID string, limit int) ([]insight.Insight, error) {
	query, args, err := qb.Select("*").From("insights").
		Where(qb.Eq("league_public_id", leagueID), qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "public_id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list insights query: %w", err)
	}

	var rows []insightTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}

	out := make([]insight.Insight, 0, len(rows))
	for _, row := range rows {
		out = append(out, insight.Insight{
			ID:        row.PublicID,
			LeagueID:  row.LeaguePublicID,
			UserID:    row.UserID,
			Week:      int(row.Week.Int64),
			EventType: insight.EventType(row.EventType),
			Headline:  row.Headline,
			Body:      row.Body,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return out, nil
}
