package schedule

import "fmt"

// Matchup is one scheduled head-to-head game in a league week.
type Matchup struct {
	LeagueID   string
	Week       int
	HomeUserID string
	AwayUserID string
}

func (m Matchup) Validate() error {
	if m.LeagueID == "" {
		return fmt.Errorf("league id is required")
	}
	if m.Week < 1 {
		return fmt.Errorf("week must be >= 1")
	}
	if m.HomeUserID == "" || m.AwayUserID == "" {
		return fmt.Errorf("home and away user are required")
	}
	if m.HomeUserID == m.AwayUserID {
		return fmt.Errorf("member cannot play itself")
	}
	return nil
}

// Pairing is a home/away pair produced by the round-robin generator.
type Pairing struct {
	Home string
	Away string
}

// Expand turns generated weeks into league matchups, numbering weeks from 1.
func Expand(leagueID string, weeks [][]Pairing) []Matchup {
	out := make([]Matchup, 0, len(weeks)*2)
	for i, pairs := range weeks {
		for _, p := range pairs {
			out = append(out, Matchup{
				LeagueID:   leagueID,
				Week:       i + 1,
				HomeUserID: p.Home,
				AwayUserID: p.Away,
			})
		}
	}
	return out
}
