package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	basecache "github.com/riskibarqy/asset-draft/internal/platform/cache"
)

const (
	assetActiveKey   = "asset:active"
	assetPoolPrefix  = "asset:pool:"
	assetByIDsPrefix = "asset:ids:"
)

// AssetRepository caches the asset catalog and league pools. Prices always
// go to the underlying repository.
type AssetRepository struct {
	next  asset.Repository
	cache *basecache.Store
}

func NewAssetRepository(next asset.Repository, cache *basecache.Store) *AssetRepository {
	return &AssetRepository{next: next, cache: cache}
}

func (r *AssetRepository) ListActive(ctx context.Context) ([]asset.Asset, error) {
	items, err := basecache.Load(ctx, r.cache, assetActiveKey, func(ctx context.Context) ([]asset.Asset, error) {
		return r.next.ListActive(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]asset.Asset(nil), items...), nil
}

func (r *AssetRepository) GetByIDs(ctx context.Context, assetIDs []string) ([]asset.Asset, error) {
	key := assetByIDsPrefix + idsKey(assetIDs)
	items, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) ([]asset.Asset, error) {
		return r.next.GetByIDs(ctx, assetIDs)
	})
	if err != nil {
		return nil, err
	}
	return append([]asset.Asset(nil), items...), nil
}

func (r *AssetRepository) ListPool(ctx context.Context, leagueID string) ([]string, error) {
	items, err := basecache.Load(ctx, r.cache, assetPoolPrefix+leagueID, func(ctx context.Context) ([]string, error) {
		return r.next.ListPool(ctx, leagueID)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), items...), nil
}

func (r *AssetRepository) ReplacePool(ctx context.Context, leagueID string, assetIDs []string) error {
	if err := r.next.ReplacePool(ctx, leagueID, assetIDs); err != nil {
		return err
	}
	r.cache.Delete(ctx, assetPoolPrefix+leagueID)
	return nil
}

func (r *AssetRepository) LatestPrices(ctx context.Context, assetIDs []string) (map[string]asset.Price, error) {
	return r.next.LatestPrices(ctx, assetIDs)
}

func (r *AssetRepository) UpsertPrices(ctx context.Context, prices []asset.Price) error {
	return r.next.UpsertPrices(ctx, prices)
}

func idsKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
