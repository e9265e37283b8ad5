package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID           int64        `db:"id"`
	PublicID     string       `db:"public_id"`
	Name         string       `db:"name"`
	Capacity     int          `db:"capacity"`
	Status       string       `db:"status"`
	InviteCode   string       `db:"invite_code"`
	CreatedBy    string       `db:"created_by"`
	DraftStartAt sql.NullTime `db:"draft_start_at"`
	StartedAt    sql.NullTime `db:"started_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	DeletedAt    *time.Time   `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID   string `db:"public_id"`
	Name       string `db:"name"`
	Capacity   int    `db:"capacity"`
	Status     string `db:"status"`
	InviteCode string `db:"invite_code"`
	CreatedBy  string `db:"created_by"`
}

type leagueMemberTableModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	UserID         string    `db:"user_id"`
	Role           string    `db:"role"`
	JoinedAt       time.Time `db:"joined_at"`
}
