package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
)

type AssetRepository struct {
	mu     sync.RWMutex
	items  map[string]asset.Asset
	pools  map[string][]string
	prices map[string]asset.Price
}

func NewAssetRepository(assets []asset.Asset) *AssetRepository {
	items := make(map[string]asset.Asset, len(assets))
	for _, a := range assets {
		items[a.ID] = a
	}
	return &AssetRepository{
		items:  items,
		pools:  make(map[string][]string),
		prices: make(map[string]asset.Price),
	}
}

func (r *AssetRepository) ListActive(_ context.Context) ([]asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]asset.Asset, 0, len(r.items))
	for _, a := range r.items {
		if a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AssetRepository) GetByIDs(_ context.Context, assetIDs []string) ([]asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]asset.Asset, 0, len(assetIDs))
	seen := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if a, ok := r.items[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AssetRepository) ListPool(_ context.Context, leagueID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.pools[leagueID]...), nil
}

func (r *AssetRepository) ReplacePool(_ context.Context, leagueID string, assetIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(assetIDs) == 0 {
		delete(r.pools, leagueID)
		return nil
	}
	ids := append([]string(nil), assetIDs...)
	sort.Strings(ids)
	r.pools[leagueID] = ids
	return nil
}

func (r *AssetRepository) LatestPrices(_ context.Context, assetIDs []string) (map[string]asset.Price, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]asset.Price, len(assetIDs))
	for _, id := range assetIDs {
		if p, ok := r.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// UpsertPrices keeps only the newest quote per asset.
func (r *AssetRepository) UpsertPrices(_ context.Context, prices []asset.Price) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range prices {
		if current, ok := r.prices[p.AssetID]; ok && current.AsOf.After(p.AsOf) {
			continue
		}
		r.prices[p.AssetID] = p
	}
	return nil
}
