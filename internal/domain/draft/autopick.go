package draft

import (
	"sort"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
)

const (
	riskUnknown = "unknown"
	kindOther   = "other"
)

var (
	riskTierScores = [...]int{30, 20, 10}
	kindTierScores = [...]int{25, 18, 12}
)

const (
	riskUnmatchedScore = 5
	kindUnmatchedScore = 6
)

// RosterProfile counts a member's drafted assets per risk bucket and kind.
type RosterProfile struct {
	RiskCounts map[string]int
	KindCounts map[string]int
}

func BuildRosterProfile(roster []asset.Asset) RosterProfile {
	profile := RosterProfile{
		RiskCounts: map[string]int{
			string(asset.RiskLow):    0,
			string(asset.RiskMedium): 0,
			string(asset.RiskHigh):   0,
			riskUnknown:              0,
		},
		KindCounts: map[string]int{
			string(asset.KindCrypto): 0,
			string(asset.KindEquity): 0,
			string(asset.KindETF):    0,
			string(asset.KindIndex):  0,
			kindOther:                0,
		},
	}

	for _, a := range roster {
		switch a.Risk {
		case asset.RiskLow, asset.RiskMedium, asset.RiskHigh:
			profile.RiskCounts[string(a.Risk)]++
		default:
			profile.RiskCounts[riskUnknown]++
		}

		switch a.Kind {
		case asset.KindCrypto, asset.KindEquity, asset.KindETF, asset.KindIndex:
			profile.KindCounts[string(a.Kind)]++
		default:
			profile.KindCounts[kindOther]++
		}
	}

	return profile
}

// DesiredRisk ranks risk buckets from least to most represented.
func (p RosterProfile) DesiredRisk() []asset.RiskBucket {
	out := []asset.RiskBucket{asset.RiskLow, asset.RiskMedium, asset.RiskHigh}
	sort.SliceStable(out, func(i, j int) bool {
		return p.RiskCounts[string(out[i])] < p.RiskCounts[string(out[j])]
	})
	return out
}

// DesiredKind ranks kinds from least to most represented.
func (p RosterProfile) DesiredKind() []asset.Kind {
	out := []asset.Kind{asset.KindEquity, asset.KindETF, asset.KindCrypto, asset.KindIndex}
	sort.SliceStable(out, func(i, j int) bool {
		return p.KindCounts[string(out[i])] < p.KindCounts[string(out[j])]
	})
	return out
}

// PickScorer rates how well a candidate fits a roster. Higher is better.
type PickScorer interface {
	Score(candidate asset.Asset, profile RosterProfile) int
}

// DiversificationScorer favours the member's least represented risk bucket and kind.
// It is greedy: only the immediate pick is optimised.
type DiversificationScorer struct{}

func (DiversificationScorer) Score(candidate asset.Asset, profile RosterProfile) int {
	risk := candidate.Risk
	if risk == "" {
		risk = asset.RiskMedium
	}
	kind := candidate.Kind
	if kind == "" {
		kind = asset.KindEquity
	}

	score := riskUnmatchedScore
	for tier, desired := range profile.DesiredRisk() {
		if desired == risk {
			score = riskTierScores[tier]
			break
		}
	}

	kindScore := kindUnmatchedScore
	desiredKind := profile.DesiredKind()
	for tier := 0; tier < len(kindTierScores); tier++ {
		if desiredKind[tier] == kind {
			kindScore = kindTierScores[tier]
			break
		}
	}

	return score + kindScore
}

// SelectBest returns the highest scoring candidate. Ties go to the smallest asset id.
func SelectBest(candidates []asset.Asset, profile RosterProfile, scorer PickScorer) (asset.Asset, int, bool) {
	if len(candidates) == 0 {
		return asset.Asset{}, 0, false
	}
	if scorer == nil {
		scorer = DiversificationScorer{}
	}

	best := candidates[0]
	bestScore := scorer.Score(best, profile)
	for _, candidate := range candidates[1:] {
		score := scorer.Score(candidate, profile)
		if score > bestScore || (score == bestScore && candidate.ID < best.ID) {
			best = candidate
			bestScore = score
		}
	}

	return best, bestScore, true
}
