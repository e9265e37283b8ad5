package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/memory"
	assetmock "github.com/riskibarqy/asset-draft/internal/mocks/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubPriceFeed struct {
	quotes   []asset.Price
	err      error
	previous map[string]asset.Price
}

func (f *stubPriceFeed) Name() string {
	return "stub"
}

func (f *stubPriceFeed) Quotes(_ context.Context, _ []asset.Asset, previous map[string]asset.Price) ([]asset.Price, error) {
	f.previous = previous
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

func TestMarketService_RefreshPrices(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssetRepository(draftTestAssets())
	asOf := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertPrices(ctx, []asset.Price{{AssetID: "AAPL", Price: 180, AsOf: asOf.Add(-time.Hour)}}))

	feed := &stubPriceFeed{quotes: []asset.Price{
		{AssetID: "AAPL", Price: 181.25},
		{AssetID: "BTC", Price: 0},
		{AssetID: "BND", Price: 72.1, AsOf: asOf},
	}}
	service := NewMarketService(repo, feed, logging.NewNop())
	service.now = func() time.Time { return asOf }

	result, err := service.RefreshPrices(ctx)
	require.NoError(t, err)
	require.Equal(t, MarketTickResult{Provider: "stub", Requested: 4, Updated: 2}, result)
	require.Equal(t, 180.0, feed.previous["AAPL"].Price)

	quotes, err := service.ListQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 4)

	byID := make(map[string]AssetQuote, len(quotes))
	for _, q := range quotes {
		byID[q.Asset.ID] = q
	}
	require.NotNil(t, byID["AAPL"].Price)
	require.Equal(t, 181.25, byID["AAPL"].Price.Price)
	require.True(t, byID["AAPL"].Price.AsOf.Equal(asOf))
	require.Nil(t, byID["BTC"].Price)
	require.Nil(t, byID["IXIC"].Price)
}

func TestMarketService_RefreshPricesFeedFailure(t *testing.T) {
	ctx := context.Background()
	repo := assetmock.NewRepository(t)
	repo.On("ListActive", mock.Anything).Return([]asset.Asset{{ID: "BTC", Active: true}}, nil).Once()
	repo.On("LatestPrices", mock.Anything, []string{"BTC"}).Return(map[string]asset.Price{}, nil).Once()

	feedErr := errors.New("upstream timeout")
	service := NewMarketService(repo, &stubPriceFeed{err: feedErr}, logging.NewNop())

	_, err := service.RefreshPrices(ctx)
	require.ErrorIs(t, err, ErrDependencyUnavailable)
	require.ErrorIs(t, err, feedErr)
}

func TestMarketService_RefreshPricesWithoutFeed(t *testing.T) {
	service := NewMarketService(memory.NewAssetRepository(nil), nil, logging.NewNop())

	_, err := service.RefreshPrices(context.Background())
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}
