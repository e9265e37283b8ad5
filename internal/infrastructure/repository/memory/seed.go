package memory

import "github.com/riskibarqy/asset-draft/internal/domain/asset"

// SeedAssets is the starter catalog used by the memory storage driver.
func SeedAssets() []asset.Asset {
	return []asset.Asset{
		{ID: "BTC", Name: "Bitcoin", Kind: asset.KindCrypto, Risk: asset.RiskHigh, Active: true, KrakenPair: "XBTUSD"},
		{ID: "ETH", Name: "Ethereum", Kind: asset.KindCrypto, Risk: asset.RiskHigh, Active: true},
		{ID: "SOL", Name: "Solana", Kind: asset.KindCrypto, Risk: asset.RiskHigh, Active: true},
		{ID: "AAPL", Name: "Apple Inc.", Kind: asset.KindEquity, Risk: asset.RiskMedium, Active: true},
		{ID: "MSFT", Name: "Microsoft Corp.", Kind: asset.KindEquity, Risk: asset.RiskMedium, Active: true},
		{ID: "NVDA", Name: "NVIDIA Corp.", Kind: asset.KindEquity, Risk: asset.RiskHigh, Active: true},
		{ID: "KO", Name: "Coca-Cola Co.", Kind: asset.KindEquity, Risk: asset.RiskLow, Active: true},
		{ID: "JNJ", Name: "Johnson & Johnson", Kind: asset.KindEquity, Risk: asset.RiskLow, Active: true},
		{ID: "SPY", Name: "SPDR S&P 500 ETF", Kind: asset.KindETF, Risk: asset.RiskLow, Active: true},
		{ID: "QQQ", Name: "Invesco QQQ Trust", Kind: asset.KindETF, Risk: asset.RiskMedium, Active: true},
		{ID: "BND", Name: "Vanguard Total Bond Market ETF", Kind: asset.KindETF, Risk: asset.RiskLow, Active: true},
		{ID: "ARKK", Name: "ARK Innovation ETF", Kind: asset.KindETF, Risk: asset.RiskHigh, Active: true},
		{ID: "IXIC", Name: "NASDAQ Composite", Kind: asset.KindIndex, Risk: asset.RiskMedium, Active: true},
		{ID: "DJI", Name: "Dow Jones Industrial Average", Kind: asset.KindIndex, Risk: asset.RiskLow, Active: true},
		{ID: "GME", Name: "GameStop Corp.", Kind: asset.KindEquity, Risk: asset.RiskHigh, Active: false},
	}
}
