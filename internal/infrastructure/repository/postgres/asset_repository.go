package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	qb "github.com/riskibarqy/asset-draft/internal/platform/querybuilder"
)

type AssetRepository struct {
	db *sqlx.DB
}

func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

var assetColumns = []string{"id", "name", "kind", "risk_bucket", "active", "kraken_pair"}

func (r *AssetRepository) ListActive(ctx context.Context) ([]asset.Asset, error) {
	query, args, err := qb.Select(assetColumns...).From("assets").
		Where(qb.Eq("active", true)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active assets query: %w", err)
	}
	return r.selectAssets(ctx, "list active assets", query, args)
}

func (r *AssetRepository) GetByIDs(ctx context.Context, assetIDs []string) ([]asset.Asset, error) {
	if len(assetIDs) == 0 {
		return []asset.Asset{}, nil
	}

	query, args, err := qb.Select(assetColumns...).From("assets").
		Where(qb.In("id", stringSliceToAny(assetIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get assets by ids query: %w", err)
	}
	return r.selectAssets(ctx, "get assets by ids", query, args)
}

func (r *AssetRepository) selectAssets(ctx context.Context, action, query string, args []any) ([]asset.Asset, error) {
	var rows []assetTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	out := make([]asset.Asset, 0, len(rows))
	for _, row := range rows {
		out = append(out, asset.Asset{
			ID:         row.ID,
			Name:       row.Name,
			Kind:       asset.Kind(row.Kind),
			Risk:       asset.RiskBucket(row.RiskBucket),
			Active:     row.Active,
			KrakenPair: nullStringValue(row.KrakenPair),
		})
	}
	return out, nil
}

func (r *AssetRepository) ListPool(ctx context.Context, leagueID string) ([]string, error) {
	query, args, err := qb.Select("asset_id").From("league_asset_pools").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("asset_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league pool query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list league pool: %w", err)
	}
	return out, nil
}

// ReplacePool swaps the whole pool atomically. An empty list clears it.
func (r *AssetRepository) ReplacePool(ctx context.Context, leagueID string, assetIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for replace pool: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM league_asset_pools WHERE league_public_id = $1`, leagueID); err != nil {
		return fmt.Errorf("clear league pool: %w", err)
	}

	for _, assetID := range assetIDs {
		query, args, err := qb.InsertInto("league_asset_pools").
			Columns("league_public_id", "asset_id").
			Values(leagueID, assetID).
			Suffix("ON CONFLICT DO NOTHING").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert pool asset query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert pool asset %s: %w", assetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace pool tx: %w", err)
	}
	return nil
}

func (r *AssetRepository) LatestPrices(ctx context.Context, assetIDs []string) (map[string]asset.Price, error) {
	out := make(map[string]asset.Price, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("asset_id", "price", "as_of").From("asset_prices").
		Where(qb.In("asset_id", stringSliceToAny(assetIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build latest prices query: %w", err)
	}

	var rows []assetPriceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list latest prices: %w", err)
	}
	for _, row := range rows {
		out[row.AssetID] = asset.Price{AssetID: row.AssetID, Price: row.Price, AsOf: row.AsOf.UTC()}
	}
	return out, nil
}

// UpsertPrices keeps the newest quote per asset; an older AsOf never
// overwrites a newer one.
func (r *AssetRepository) UpsertPrices(ctx context.Context, prices []asset.Price) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for upsert prices: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range prices {
		query, args, err := qb.InsertModel("asset_prices", assetPriceTableModel{
			AssetID: p.AssetID,
			Price:   p.Price,
			AsOf:    p.AsOf.UTC(),
		}, `ON CONFLICT (asset_id)
DO UPDATE SET
    price = EXCLUDED.price,
    as_of = EXCLUDED.as_of
WHERE EXCLUDED.as_of >= asset_prices.as_of`)
		if err != nil {
			return fmt.Errorf("build upsert asset price query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert asset price %s: %w", p.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert prices tx: %w", err)
	}
	return nil
}
