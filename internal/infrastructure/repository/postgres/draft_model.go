package postgres

import (
	"database/sql"
	"time"
)

type draftStateTableModel struct {
	LeaguePublicID string       `db:"league_public_id"`
	Status         string       `db:"status"`
	Rounds         int          `db:"rounds"`
	PickSeconds    int          `db:"pick_seconds"`
	CurrentPick    int          `db:"current_pick"`
	PickDeadline   sql.NullTime `db:"pick_deadline"`
	StartsAt       sql.NullTime `db:"starts_at"`
	Version        int64        `db:"version"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

type draftStateInsertModel struct {
	LeaguePublicID string     `db:"league_public_id"`
	Status         string     `db:"status"`
	Rounds         int        `db:"rounds"`
	PickSeconds    int        `db:"pick_seconds"`
	CurrentPick    int        `db:"current_pick"`
	PickDeadline   *time.Time `db:"pick_deadline"`
	StartsAt       *time.Time `db:"starts_at"`
	Version        int64      `db:"version"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type draftSlotTableModel struct {
	LeaguePublicID string `db:"league_public_id"`
	Slot           int    `db:"slot"`
	UserID         string `db:"user_id"`
}

type draftPickTableModel struct {
	PublicID       string         `db:"public_id"`
	LeaguePublicID string         `db:"league_public_id"`
	PickNumber     int            `db:"pick_number"`
	Round          int            `db:"round"`
	Slot           int            `db:"slot"`
	UserID         string         `db:"user_id"`
	AssetID        sql.NullString `db:"asset_id"`
	Source         string         `db:"source"`
	CreatedAt      time.Time      `db:"created_at"`
}

type draftPickInsertModel struct {
	PublicID       string    `db:"public_id"`
	LeaguePublicID string    `db:"league_public_id"`
	PickNumber     int       `db:"pick_number"`
	Round          int       `db:"round"`
	Slot           int       `db:"slot"`
	UserID         string    `db:"user_id"`
	AssetID        *string   `db:"asset_id"`
	Source         string    `db:"source"`
	CreatedAt      time.Time `db:"created_at"`
}

type rosterTableModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	UserID         string    `db:"user_id"`
	AssetID        string    `db:"asset_id"`
	PickNumber     int       `db:"pick_number"`
	AcquiredAt     time.Time `db:"acquired_at"`
}
