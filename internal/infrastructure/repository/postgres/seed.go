package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

// BootstrapSeed loads the starter catalog when the assets table is empty.
// Existing rows are never touched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM assets`); err != nil {
		return fmt.Errorf("count assets for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	query, args, err := seedAssetsQuery(memory.SeedAssets())
	if err != nil {
		return fmt.Errorf("build seed query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed assets: %w", err)
	}
	return nil
}

func seedAssetsQuery(items []asset.Asset) (string, []any, error) {
	insert := qb.InsertInto("assets").
		Columns("id", "name", "kind", "risk_bucket", "active", "kraken_pair").
		Suffix("ON CONFLICT (id) DO NOTHING")
	for _, a := range items {
		insert.Values(a.ID, a.Name, string(a.Kind), string(a.Risk), a.Active, optionalString(a.KrakenPair))
	}
	return insert.ToSQL()
}
