package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
)

func TestUniqueViolation(t *testing.T) {
	t.Run("returns constraint for unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert pick: %w", &pq.Error{Code: "23505", Constraint: "draft_picks_league_asset_key"})
		constraint, ok := uniqueViolation(err)
		if !ok || constraint != "draft_picks_league_asset_key" {
			t.Fatalf("unexpected result: constraint=%q ok=%v", constraint, ok)
		}
	})

	t.Run("ignores other postgres errors", func(t *testing.T) {
		err := &pq.Error{Code: "42P01", Message: "relation draft_picks does not exist"}
		if _, ok := uniqueViolation(err); ok {
			t.Fatalf("expected false for undefined table error")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if _, ok := uniqueViolation(fakeErr("duplicate key value violates unique constraint")); ok {
			t.Fatalf("expected false for non postgres error")
		}
	})
}

func TestMapPickViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "pick number", constraint: "draft_picks_league_pick_key", want: draft.ErrPickTaken},
		{name: "asset", constraint: "draft_picks_league_asset_key", want: draft.ErrAssetTaken},
		{name: "roster asset", constraint: "rosters_pkey", want: draft.ErrAssetTaken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPickViolation(&pq.Error{Code: "23505", Constraint: tc.constraint})
			if got != tc.want {
				t.Fatalf("mapPickViolation(%s) = %v, want %v", tc.constraint, got, tc.want)
			}
		})
	}

	if got := mapPickViolation(fakeErr("connection reset")); got != nil {
		t.Fatalf("expected nil for unrelated error, got %v", got)
	}
}

func TestNullHelpers(t *testing.T) {
	if got := nullStringValue(sql.NullString{String: "XBTUSD", Valid: true}); got != "XBTUSD" {
		t.Fatalf("unexpected string: %s", got)
	}
	if got := nullStringValue(sql.NullString{}); got != "" {
		t.Fatalf("expected empty string for null, got %s", got)
	}
	if got := nullTimePtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil time for null, got %v", got)
	}

	local := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	got := nullTimePtr(sql.NullTime{Time: local, Valid: true})
	if got == nil || got.Location() != time.UTC || !got.Equal(local) {
		t.Fatalf("expected utc time, got %v", got)
	}
	if optionalString("  ") != nil {
		t.Fatalf("expected nil for blank string")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestSeedAssetsQuery(t *testing.T) {
	items := []asset.Asset{
		{ID: "AAPL", Name: "Apple", Kind: asset.KindEquity, Risk: asset.RiskMedium, Active: true},
		{ID: "BTC", Name: "Bitcoin", Kind: asset.KindCrypto, Risk: asset.RiskHigh, Active: true, KrakenPair: "XBTUSD"},
	}
	query, args, err := seedAssetsQuery(items)
	if err != nil {
		t.Fatalf("build seed query: %v", err)
	}
	if !strings.HasSuffix(query, "($7, $8, $9, $10, $11, $12) ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("unexpected seed query: %s", query)
	}
	if len(args) != 12 {
		t.Fatalf("expected 12 args, got %d", len(args))
	}
	if pair, ok := args[5].(*string); !ok || pair != nil {
		t.Fatalf("expected NULL kraken pair for AAPL, got %#v", args[5])
	}
}
