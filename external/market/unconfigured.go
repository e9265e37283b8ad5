package market

import (
	"context"
	"fmt"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/usecase"
)

// UnconfiguredFeed stands in for a provider whose adapter has no credentials
// wired yet. Every call fails so a Fallback can take over.
type UnconfiguredFeed struct {
	name string
}

func NewUnconfiguredFeed(name string) UnconfiguredFeed {
	return UnconfiguredFeed{name: name}
}

func (f UnconfiguredFeed) Name() string {
	return f.name
}

func (f UnconfiguredFeed) Quotes(_ context.Context, _ []asset.Asset, _ map[string]asset.Price) ([]asset.Price, error) {
	return nil, fmt.Errorf("%w: %s provider is not configured", usecase.ErrDependencyUnavailable, f.name)
}
