package asset

import (
	"strings"
	"time"
)

type Kind string

const (
	KindEquity Kind = "equity"
	KindETF    Kind = "etf"
	KindCrypto Kind = "crypto"
	KindIndex  Kind = "index"
)

type RiskBucket string

const (
	RiskLow    RiskBucket = "low"
	RiskMedium RiskBucket = "medium"
	RiskHigh   RiskBucket = "high"
)

// Asset is a draftable instrument. Assets are immutable while a draft is running.
type Asset struct {
	ID         string
	Name       string
	Kind       Kind
	Risk       RiskBucket
	Active     bool
	KrakenPair string
}

// Price is the latest known quote of an asset.
type Price struct {
	AssetID string
	Price   float64
	AsOf    time.Time
}

// NormalizeID upper-cases an asset identifier.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// AllowedPool resolves the assets a league may draft. An empty pool allows
// every active asset; otherwise only active assets listed in the pool qualify.
func AllowedPool(poolIDs []string, active []Asset) []Asset {
	if len(poolIDs) == 0 {
		out := make([]Asset, 0, len(active))
		for _, a := range active {
			if a.Active {
				out = append(out, a)
			}
		}
		return out
	}

	inPool := make(map[string]struct{}, len(poolIDs))
	for _, id := range poolIDs {
		inPool[NormalizeID(id)] = struct{}{}
	}

	out := make([]Asset, 0, len(poolIDs))
	for _, a := range active {
		if !a.Active {
			continue
		}
		if _, ok := inPool[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// IsAllowed reports whether assetID belongs to the allowed pool.
func IsAllowed(poolIDs []string, active []Asset, assetID string) bool {
	assetID = NormalizeID(assetID)
	for _, a := range AllowedPool(poolIDs, active) {
		if a.ID == assetID {
			return true
		}
	}
	return false
}
