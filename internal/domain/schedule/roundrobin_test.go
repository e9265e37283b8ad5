package schedule

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundRobin_FourMembers(t *testing.T) {
	got := RoundRobin([]string{"a", "b", "c", "d"})
	want := [][]Pairing{
		{{Home: "a", Away: "d"}, {Home: "b", Away: "c"}},
		{{Home: "c", Away: "a"}, {Home: "b", Away: "d"}},
		{{Home: "a", Away: "b"}, {Home: "c", Away: "d"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RoundRobin mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundRobin_EveryPairMeetsOnce(t *testing.T) {
	for n := 2; n <= 9; n++ {
		t.Run(fmt.Sprintf("%d members", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("u%d", i+1)
			}

			weeks := RoundRobin(ids)
			wantWeeks := n - 1
			if n%2 == 1 {
				wantWeeks = n
			}
			if len(weeks) != wantWeeks {
				t.Fatalf("weeks = %d, want %d", len(weeks), wantWeeks)
			}

			met := make(map[string]int)
			for w, pairs := range weeks {
				playing := make(map[string]bool)
				for _, p := range pairs {
					if p.Home == bye || p.Away == bye {
						t.Fatalf("week %d contains bye", w+1)
					}
					if playing[p.Home] || playing[p.Away] {
						t.Fatalf("week %d schedules a member twice", w+1)
					}
					playing[p.Home], playing[p.Away] = true, true
					a, b := p.Home, p.Away
					if b < a {
						a, b = b, a
					}
					met[a+"|"+b]++
				}
			}

			if len(met) != n*(n-1)/2 {
				t.Fatalf("distinct pairs = %d, want %d", len(met), n*(n-1)/2)
			}
			for pair, count := range met {
				if count != 1 {
					t.Fatalf("pair %s met %d times", pair, count)
				}
			}
		})
	}
}

func TestRoundRobin_TooFewMembers(t *testing.T) {
	if got := RoundRobin([]string{"solo"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestRoundRobin_DoesNotMutateInput(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	_ = RoundRobin(ids)
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, ids); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestExpand(t *testing.T) {
	got := Expand("lg", [][]Pairing{{{Home: "a", Away: "b"}}, {{Home: "b", Away: "a"}}})
	want := []Matchup{
		{LeagueID: "lg", Week: 1, HomeUserID: "a", AwayUserID: "b"},
		{LeagueID: "lg", Week: 2, HomeUserID: "b", AwayUserID: "a"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Expand mismatch (-want +got):\n%s", diff)
	}
}
