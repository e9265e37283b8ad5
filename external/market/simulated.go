package market

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
)

type SimModel string

const (
	// SimBasic walks every asset independently.
	SimBasic SimModel = "basic"
	// SimNasdaq adds a shared market factor so equities, ETFs and indexes
	// move together. Crypto stays independent.
	SimNasdaq SimModel = "nasdaq"
)

const (
	defaultDriftBps  = 0.5
	defaultFactorVol = 0.0025
	maxFactorShock   = 0.02
	minSimPrice      = 0.01
)

type SimulatedConfig struct {
	Model     SimModel
	DriftBps  float64
	FactorVol float64
	// Seed makes the walk reproducible. Zero seeds from the clock.
	Seed uint64
}

// SimulatedFeed produces a random walk continuing from the last stored price.
type SimulatedFeed struct {
	model     SimModel
	drift     float64
	factorVol float64
	now       func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedFeed(cfg SimulatedConfig) *SimulatedFeed {
	model := SimModel(strings.ToLower(strings.TrimSpace(string(cfg.Model))))
	if model != SimNasdaq {
		model = SimBasic
	}
	driftBps := cfg.DriftBps
	if math.IsNaN(driftBps) || math.IsInf(driftBps, 0) {
		driftBps = defaultDriftBps
	}
	factorVol := cfg.FactorVol
	if factorVol <= 0 || math.IsNaN(factorVol) {
		factorVol = defaultFactorVol
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &SimulatedFeed{
		model:     model,
		drift:     driftBps / 10000,
		factorVol: factorVol,
		now:       time.Now,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (f *SimulatedFeed) Name() string {
	return "simulated:" + string(f.model)
}

func (f *SimulatedFeed) Quotes(_ context.Context, assets []asset.Asset, previous map[string]asset.Price) ([]asset.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	asOf := f.now().UTC()
	marketShock := 0.0
	if f.model == SimNasdaq {
		u := (f.rng.Float64() + f.rng.Float64() + f.rng.Float64() + f.rng.Float64()) / 4
		marketShock = clamp((u-0.5)*2*f.factorVol, -maxFactorShock, maxFactorShock)
	}

	out := make([]asset.Price, 0, len(assets))
	for _, a := range assets {
		current := seedPrice(a)
		if p, ok := previous[a.ID]; ok && p.Price > 0 {
			current = p.Price
		}

		idio := (f.rng.Float64()*2 - 1) * kindBaseVol(a.Kind) * riskScale(a.Risk)
		shock := idio + f.drift
		if f.model == SimNasdaq {
			shock += factorBeta(a.Kind) * marketShock
		}

		next := math.Max(minSimPrice, current*(1+shock))
		out = append(out, asset.Price{
			AssetID: a.ID,
			Price:   math.Round(next*10000) / 10000,
			AsOf:    asOf,
		})
	}
	return out, nil
}

func seedPrice(a asset.Asset) float64 {
	switch a.Kind {
	case asset.KindCrypto:
		switch a.ID {
		case "BTC":
			return 45000
		case "ETH":
			return 2500
		}
		return 1000
	case asset.KindETF:
		return 420
	case asset.KindIndex:
		if a.ID == "IXIC" || a.ID == "NASDAQ" {
			return 16000
		}
		return 5000
	default:
		return 150
	}
}

func kindBaseVol(kind asset.Kind) float64 {
	switch kind {
	case asset.KindCrypto:
		return 0.015
	case asset.KindEquity:
		return 0.008
	case asset.KindETF:
		return 0.004
	case asset.KindIndex:
		return 0.003
	default:
		return 0.006
	}
}

func riskScale(risk asset.RiskBucket) float64 {
	switch risk {
	case asset.RiskLow:
		return 0.6
	case asset.RiskHigh:
		return 1.6
	default:
		return 1.0
	}
}

func factorBeta(kind asset.Kind) float64 {
	switch kind {
	case asset.KindEquity:
		return 1.15
	case asset.KindETF:
		return 0.85
	case asset.KindIndex:
		return 1.0
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
