package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

type MarketTickResult struct {
	Provider  string `json:"provider"`
	Requested int    `json:"requested"`
	Updated   int    `json:"updated"`
}

type AssetQuote struct {
	Asset asset.Asset
	Price *asset.Price
}

// MarketService refreshes stored prices from the configured price feed.
type MarketService struct {
	assetRepo asset.Repository
	feed      asset.PriceFeed
	logger    *logging.Logger
	now       func() time.Time
}

func NewMarketService(assetRepo asset.Repository, feed asset.PriceFeed, logger *logging.Logger) *MarketService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MarketService{
		assetRepo: assetRepo,
		feed:      feed,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *MarketService) RefreshPrices(ctx context.Context) (MarketTickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.RefreshPrices")
	defer span.End()

	if s.feed == nil {
		return MarketTickResult{}, fmt.Errorf("%w: price feed is not configured", ErrDependencyUnavailable)
	}

	active, err := s.assetRepo.ListActive(ctx)
	if err != nil {
		return MarketTickResult{}, fmt.Errorf("list active assets: %w", err)
	}
	result := MarketTickResult{Provider: s.feed.Name(), Requested: len(active)}
	if len(active) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(active))
	for _, item := range active {
		ids = append(ids, item.ID)
	}
	previous, err := s.assetRepo.LatestPrices(ctx, ids)
	if err != nil {
		return MarketTickResult{}, fmt.Errorf("get latest prices: %w", err)
	}

	quotes, err := s.feed.Quotes(ctx, active, previous)
	if err != nil {
		return MarketTickResult{}, errors.Join(ErrDependencyUnavailable, fmt.Errorf("fetch quotes from %s: %w", s.feed.Name(), err))
	}

	now := s.now().UTC()
	valid := make([]asset.Price, 0, len(quotes))
	for _, q := range quotes {
		if q.AssetID == "" || q.Price <= 0 {
			continue
		}
		if q.AsOf.IsZero() {
			q.AsOf = now
		}
		valid = append(valid, q)
	}
	if err := s.assetRepo.UpsertPrices(ctx, valid); err != nil {
		return MarketTickResult{}, fmt.Errorf("upsert prices: %w", err)
	}
	result.Updated = len(valid)

	s.logger.InfoContext(ctx, "market prices refreshed",
		"provider", result.Provider,
		"requested", result.Requested,
		"updated", result.Updated,
	)
	return result, nil
}

// ListQuotes returns every active asset with its latest stored price, if any.
func (s *MarketService) ListQuotes(ctx context.Context) ([]AssetQuote, error) {
	active, err := s.assetRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active assets: %w", err)
	}
	ids := make([]string, 0, len(active))
	for _, item := range active {
		ids = append(ids, item.ID)
	}
	prices := map[string]asset.Price{}
	if len(ids) > 0 {
		prices, err = s.assetRepo.LatestPrices(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get latest prices: %w", err)
		}
	}

	out := make([]AssetQuote, 0, len(active))
	for _, item := range active {
		quote := AssetQuote{Asset: item}
		if p, ok := prices[item.ID]; ok {
			p := p
			quote.Price = &p
		}
		out = append(out, quote)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset.ID < out[j].Asset.ID })
	return out, nil
}
