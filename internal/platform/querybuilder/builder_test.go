package querybuilder

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "headline").
		From("insights").
		Where(Eq("league_public_id", "lg-1"), IsNull("deleted_at"), In("event_type", []any{"matchup", "roster_change"})).
		OrderBy("created_at DESC", "public_id DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, headline FROM insights WHERE league_public_id = $1 AND deleted_at IS NULL AND event_type IN ($2, $3) ORDER BY created_at DESC, public_id DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if diff := cmp.Diff([]any{"lg-1", "matchup", "roster_change"}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("assets").Where(In("id", nil), Expr("active = ?", true)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM assets WHERE 1=0 AND active = $1" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("league_asset_pools").
		Columns("league_public_id", "asset_id").
		Values("lg-1", "AAPL").
		Values("lg-1", "BTC").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO league_asset_pools (league_public_id, asset_id) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "BTC" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdateBuilder_CompareAndSwap(t *testing.T) {
	query, args, err := Update("draft_states").
		Set("status", "live").
		SetExpr("version", "version + ?", 1).
		Where(Eq("league_public_id", "lg-1"), Eq("version", int64(4))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE draft_states SET status = $1, version = version + $2 WHERE league_public_id = $3 AND version = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if diff := cmp.Diff([]any{"live", 1, "lg-1", int64(4)}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string    `db:"public_id"`
		Price    float64   `db:"price"`
		AsOf     time.Time `db:"as_of"`
		Ignored  string    `db:"-"`
		internal string
	}
	asOf := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	query, args, err := InsertModel("asset_prices", &row{ID: "AAPL", Price: 181.5, AsOf: asOf, internal: "x"}, "ON CONFLICT (public_id) DO NOTHING")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO asset_prices (public_id, price, as_of) VALUES ($1, $2, $3) ON CONFLICT (public_id) DO NOTHING" {
		t.Fatalf("unexpected query: %s", query)
	}
	if diff := cmp.Diff([]any{"AAPL", 181.5, asOf}, args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := InsertModel("t", (*row)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}
