package draft

import "testing"

func TestSnakeSlot(t *testing.T) {
	tests := []struct {
		name      string
		pick      int
		teams     int
		wantRound int
		wantSlot  int
	}{
		{name: "first pick", pick: 1, teams: 4, wantRound: 1, wantSlot: 1},
		{name: "end of first round", pick: 4, teams: 4, wantRound: 1, wantSlot: 4},
		{name: "second round turns back", pick: 5, teams: 4, wantRound: 2, wantSlot: 4},
		{name: "end of second round", pick: 8, teams: 4, wantRound: 2, wantSlot: 1},
		{name: "third round forward again", pick: 9, teams: 4, wantRound: 3, wantSlot: 1},
		{name: "single team", pick: 3, teams: 1, wantRound: 3, wantSlot: 1},
		{name: "zero pick", pick: 0, teams: 4, wantRound: 0, wantSlot: 0},
		{name: "zero teams", pick: 1, teams: 0, wantRound: 0, wantSlot: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			round, slot := SnakeSlot(tc.pick, tc.teams)
			if round != tc.wantRound || slot != tc.wantSlot {
				t.Fatalf("SnakeSlot(%d, %d) = (%d, %d), want (%d, %d)",
					tc.pick, tc.teams, round, slot, tc.wantRound, tc.wantSlot)
			}
		})
	}
}

func TestSnakeSlot_EveryRoundVisitsEachSlotOnce(t *testing.T) {
	const teams, rounds = 5, 6
	for r := 1; r <= rounds; r++ {
		seen := make(map[int]bool, teams)
		for i := 0; i < teams; i++ {
			pick := (r-1)*teams + i + 1
			gotRound, slot := SnakeSlot(pick, teams)
			if gotRound != r {
				t.Fatalf("pick %d: round %d, want %d", pick, gotRound, r)
			}
			if seen[slot] {
				t.Fatalf("round %d visits slot %d twice", r, slot)
			}
			seen[slot] = true
		}
	}
}

func TestTotalPicks(t *testing.T) {
	if got := TotalPicks(4, 6); got != 24 {
		t.Fatalf("TotalPicks(4, 6) = %d, want 24", got)
	}
	if got := TotalPicks(0, 6); got != 0 {
		t.Fatalf("TotalPicks(0, 6) = %d, want 0", got)
	}
}
