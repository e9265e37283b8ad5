package market

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

const (
	ProviderSimulated = "simulated"
	ProviderKraken    = "kraken"
	ProviderPolygon   = "polygon"
	ProviderIEX       = "iex"
)

type FeedConfig struct {
	Provider        string
	FallbackEnabled bool
	Simulated       SimulatedConfig
	Kraken          KrakenConfig
}

// NewFeed builds the price feed named by cfg.Provider. With FallbackEnabled
// every non-simulated provider is backed by the simulated walk.
func NewFeed(cfg FeedConfig, logger *logging.Logger) (asset.PriceFeed, error) {
	if logger == nil {
		logger = logging.Default()
	}
	simulated := NewSimulatedFeed(cfg.Simulated)

	var primary asset.PriceFeed
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", ProviderSimulated:
		return simulated, nil
	case ProviderKraken:
		if cfg.Kraken.Logger == nil {
			cfg.Kraken.Logger = logger
		}
		primary = NewKrakenFeed(NewKrakenClient(cfg.Kraken), simulated)
	case ProviderPolygon, ProviderIEX:
		primary = NewUnconfiguredFeed(provider)
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}

	if !cfg.FallbackEnabled {
		return primary, nil
	}
	return NewFallbackFeed(primary, simulated, logger), nil
}
