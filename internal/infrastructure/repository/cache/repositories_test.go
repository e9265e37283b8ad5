package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	assetmock "github.com/riskibarqy/asset-draft/internal/mocks/domain/asset"
	basecache "github.com/riskibarqy/asset-draft/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAssetRepository_CachesCatalog(t *testing.T) {
	ctx := context.Background()
	next := assetmock.NewRepository(t)
	next.On("ListActive", mock.Anything).
		Return([]asset.Asset{{ID: "AAPL", Active: true}}, nil).
		Once()

	repo := NewAssetRepository(next, basecache.NewStore(time.Minute))
	for i := 0; i < 3; i++ {
		items, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
}

func TestAssetRepository_GetByIDsKeyIgnoresOrder(t *testing.T) {
	ctx := context.Background()
	next := assetmock.NewRepository(t)
	next.On("GetByIDs", mock.Anything, []string{"BTC", "AAPL"}).
		Return([]asset.Asset{{ID: "AAPL"}, {ID: "BTC"}}, nil).
		Once()

	repo := NewAssetRepository(next, basecache.NewStore(time.Minute))
	_, err := repo.GetByIDs(ctx, []string{"BTC", "AAPL"})
	require.NoError(t, err)

	items, err := repo.GetByIDs(ctx, []string{"AAPL", "BTC"})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestAssetRepository_ReplacePoolInvalidates(t *testing.T) {
	ctx := context.Background()
	next := assetmock.NewRepository(t)
	next.On("ListPool", mock.Anything, "lg").Return([]string{"AAPL"}, nil).Once()
	next.On("ReplacePool", mock.Anything, "lg", []string{"BTC"}).Return(nil).Once()
	next.On("ListPool", mock.Anything, "lg").Return([]string{"BTC"}, nil).Once()

	repo := NewAssetRepository(next, basecache.NewStore(time.Minute))

	pool, err := repo.ListPool(ctx, "lg")
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL"}, pool)

	pool, err = repo.ListPool(ctx, "lg")
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL"}, pool)

	require.NoError(t, repo.ReplacePool(ctx, "lg", []string{"BTC"}))

	pool, err = repo.ListPool(ctx, "lg")
	require.NoError(t, err)
	require.Equal(t, []string{"BTC"}, pool)
}

func TestAssetRepository_PricesBypassCache(t *testing.T) {
	ctx := context.Background()
	next := assetmock.NewRepository(t)
	prices := map[string]asset.Price{"AAPL": {AssetID: "AAPL", Price: 10}}
	next.On("LatestPrices", mock.Anything, []string{"AAPL"}).Return(prices, nil).Twice()

	repo := NewAssetRepository(next, basecache.NewStore(time.Minute))
	for i := 0; i < 2; i++ {
		got, err := repo.LatestPrices(ctx, []string{"AAPL"})
		require.NoError(t, err)
		require.Equal(t, 10.0, got["AAPL"].Price)
	}
}
