package draft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
)

func TestBuildRosterProfile_CountsUnknownBuckets(t *testing.T) {
	profile := BuildRosterProfile([]asset.Asset{
		{ID: "AAPL", Kind: asset.KindEquity, Risk: asset.RiskMedium},
		{ID: "BTC", Kind: asset.KindCrypto, Risk: asset.RiskHigh},
		{ID: "ODD", Kind: "bond", Risk: "extreme"},
	})

	wantRisk := map[string]int{"low": 0, "medium": 1, "high": 1, "unknown": 1}
	wantKind := map[string]int{"crypto": 1, "equity": 1, "etf": 0, "index": 0, "other": 1}
	if diff := cmp.Diff(wantRisk, profile.RiskCounts); diff != "" {
		t.Fatalf("risk counts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantKind, profile.KindCounts); diff != "" {
		t.Fatalf("kind counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRosterProfile_DesiredOrderIsStable(t *testing.T) {
	empty := BuildRosterProfile(nil)
	if diff := cmp.Diff([]asset.RiskBucket{asset.RiskLow, asset.RiskMedium, asset.RiskHigh}, empty.DesiredRisk()); diff != "" {
		t.Fatalf("desired risk mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]asset.Kind{asset.KindEquity, asset.KindETF, asset.KindCrypto, asset.KindIndex}, empty.DesiredKind()); diff != "" {
		t.Fatalf("desired kind mismatch (-want +got):\n%s", diff)
	}

	heavy := BuildRosterProfile([]asset.Asset{
		{ID: "A", Kind: asset.KindEquity, Risk: asset.RiskLow},
		{ID: "B", Kind: asset.KindEquity, Risk: asset.RiskLow},
		{ID: "C", Kind: asset.KindETF, Risk: asset.RiskMedium},
	})
	if diff := cmp.Diff([]asset.RiskBucket{asset.RiskHigh, asset.RiskMedium, asset.RiskLow}, heavy.DesiredRisk()); diff != "" {
		t.Fatalf("desired risk mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]asset.Kind{asset.KindCrypto, asset.KindIndex, asset.KindETF, asset.KindEquity}, heavy.DesiredKind()); diff != "" {
		t.Fatalf("desired kind mismatch (-want +got):\n%s", diff)
	}
}

func TestDiversificationScorer_Score(t *testing.T) {
	profile := BuildRosterProfile([]asset.Asset{
		{ID: "AAPL", Kind: asset.KindEquity, Risk: asset.RiskMedium},
	})
	scorer := DiversificationScorer{}

	tests := []struct {
		name      string
		candidate asset.Asset
		want      int
	}{
		{name: "top risk and top kind", candidate: asset.Asset{Kind: asset.KindETF, Risk: asset.RiskLow}, want: 30 + 25},
		{name: "second risk third kind", candidate: asset.Asset{Kind: asset.KindIndex, Risk: asset.RiskHigh}, want: 20 + 12},
		{name: "most held risk and kind outside tiers", candidate: asset.Asset{Kind: asset.KindEquity, Risk: asset.RiskMedium}, want: 10 + 6},
		{name: "missing fields default to medium equity", candidate: asset.Asset{}, want: 10 + 6},
		{name: "unknown risk", candidate: asset.Asset{Kind: asset.KindETF, Risk: "extreme"}, want: 5 + 25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := scorer.Score(tc.candidate, profile); got != tc.want {
				t.Fatalf("Score() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSelectBest(t *testing.T) {
	profile := BuildRosterProfile([]asset.Asset{
		{ID: "AAPL", Kind: asset.KindEquity, Risk: asset.RiskMedium},
		{ID: "MSFT", Kind: asset.KindEquity, Risk: asset.RiskMedium},
	})

	t.Run("prefers underrepresented buckets", func(t *testing.T) {
		got, score, ok := SelectBest([]asset.Asset{
			{ID: "NVDA", Kind: asset.KindEquity, Risk: asset.RiskHigh},
			{ID: "VOO", Kind: asset.KindETF, Risk: asset.RiskLow},
			{ID: "BTC", Kind: asset.KindCrypto, Risk: asset.RiskHigh},
		}, profile, nil)
		if !ok {
			t.Fatalf("expected a selection")
		}
		if got.ID != "VOO" || score != 55 {
			t.Fatalf("got %s/%d, want VOO/55", got.ID, score)
		}
	})

	t.Run("ties go to smallest id", func(t *testing.T) {
		got, _, ok := SelectBest([]asset.Asset{
			{ID: "VTI", Kind: asset.KindETF, Risk: asset.RiskLow},
			{ID: "SPY", Kind: asset.KindETF, Risk: asset.RiskLow},
			{ID: "VOO", Kind: asset.KindETF, Risk: asset.RiskLow},
		}, profile, DiversificationScorer{})
		if !ok || got.ID != "SPY" {
			t.Fatalf("got %q, want SPY", got.ID)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		if _, _, ok := SelectBest(nil, profile, nil); ok {
			t.Fatalf("expected no selection")
		}
	})
}
