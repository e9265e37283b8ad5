package asset

import "context"

// Repository describes asset, pool and price persistence needs from use cases.
type Repository interface {
	ListActive(ctx context.Context) ([]Asset, error)
	GetByIDs(ctx context.Context, assetIDs []string) ([]Asset, error)

	ListPool(ctx context.Context, leagueID string) ([]string, error)
	ReplacePool(ctx context.Context, leagueID string, assetIDs []string) error

	LatestPrices(ctx context.Context, assetIDs []string) (map[string]Price, error)
	UpsertPrices(ctx context.Context, prices []Price) error
}

// PriceFeed yields fresh quotes for a set of assets. previous carries the last
// stored price per asset so simulated feeds can continue a walk.
type PriceFeed interface {
	Name() string
	Quotes(ctx context.Context, assets []Asset, previous map[string]Price) ([]Price, error)
}
