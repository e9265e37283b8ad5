package postgres

import (
	"database/sql"
	"time"
)

type assetTableModel struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Kind       string         `db:"kind"`
	RiskBucket string         `db:"risk_bucket"`
	Active     bool           `db:"active"`
	KrakenPair sql.NullString `db:"kraken_pair"`
}

type assetPriceTableModel struct {
	AssetID string    `db:"asset_id"`
	Price   float64   `db:"price"`
	AsOf    time.Time `db:"as_of"`
}
