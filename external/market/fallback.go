package market

import (
	"context"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

// FallbackFeed asks the primary feed first and fills whatever it could not
// price from the secondary. A primary error sends every asset to the secondary.
type FallbackFeed struct {
	primary   asset.PriceFeed
	secondary asset.PriceFeed
	logger    *logging.Logger
}

func NewFallbackFeed(primary, secondary asset.PriceFeed, logger *logging.Logger) *FallbackFeed {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackFeed{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackFeed) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *FallbackFeed) Quotes(ctx context.Context, assets []asset.Asset, previous map[string]asset.Price) ([]asset.Price, error) {
	quotes, err := f.primary.Quotes(ctx, assets, previous)
	if err != nil {
		f.logger.WarnContext(ctx, "primary price feed failed, using fallback",
			"primary", f.primary.Name(),
			"fallback", f.secondary.Name(),
			"error", err,
		)
		return f.secondary.Quotes(ctx, assets, previous)
	}

	priced := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if q.Price > 0 {
			priced[q.AssetID] = struct{}{}
		}
	}
	missing := make([]asset.Asset, 0)
	for _, a := range assets {
		if _, ok := priced[a.ID]; !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return quotes, nil
	}

	f.logger.DebugContext(ctx, "filling missing quotes from fallback feed",
		"fallback", f.secondary.Name(),
		"missing", len(missing),
	)
	filled, err := f.secondary.Quotes(ctx, missing, previous)
	if err != nil {
		return nil, err
	}
	return append(quotes, filled...), nil
}
