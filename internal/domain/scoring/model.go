package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/schedule"
)

// WeeklyScore is a member's roster valuation for one league week.
type WeeklyScore struct {
	LeagueID    string
	Week        int
	UserID      string
	RosterValue float64
	Points      float64
	ComputedAt  time.Time
}

// MatchupResult is a scheduled matchup joined with computed points.
// WinnerUserID is empty on a tie.
type MatchupResult struct {
	Week         int
	HomeUserID   string
	AwayUserID   string
	HomePoints   float64
	AwayPoints   float64
	WinnerUserID string
}

func (r MatchupResult) IsTie() bool {
	return r.WinnerUserID == ""
}

type Standing struct {
	UserID    string
	Wins      int
	Losses    int
	Ties      int
	PointsFor float64
}

// RoundValue rounds a valuation to 4 decimal places.
func RoundValue(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func scoreKey(week int, userID string) struct {
	week int
	user string
} {
	return struct {
		week int
		user string
	}{week: week, user: userID}
}

// DeriveMatchups joins matchups with scores. Members without a score count 0 points.
func DeriveMatchups(matchups []schedule.Matchup, scores []WeeklyScore) []MatchupResult {
	points := make(map[struct {
		week int
		user string
	}]float64, len(scores))
	for _, s := range scores {
		points[scoreKey(s.Week, s.UserID)] = s.Points
	}

	out := make([]MatchupResult, 0, len(matchups))
	for _, m := range matchups {
		home := points[scoreKey(m.Week, m.HomeUserID)]
		away := points[scoreKey(m.Week, m.AwayUserID)]
		result := MatchupResult{
			Week:       m.Week,
			HomeUserID: m.HomeUserID,
			AwayUserID: m.AwayUserID,
			HomePoints: home,
			AwayPoints: away,
		}
		switch {
		case home > away:
			result.WinnerUserID = m.HomeUserID
		case away > home:
			result.WinnerUserID = m.AwayUserID
		}
		out = append(out, result)
	}
	return out
}

// DeriveStandings aggregates results per member, ranked by wins then points for.
// Every member in memberIDs is listed even without games.
func DeriveStandings(memberIDs []string, results []MatchupResult) []Standing {
	byUser := make(map[string]*Standing, len(memberIDs))
	order := make([]string, 0, len(memberIDs))
	get := func(userID string) *Standing {
		if s, ok := byUser[userID]; ok {
			return s
		}
		s := &Standing{UserID: userID}
		byUser[userID] = s
		order = append(order, userID)
		return s
	}
	for _, id := range memberIDs {
		get(id)
	}

	for _, r := range results {
		home := get(r.HomeUserID)
		away := get(r.AwayUserID)
		home.PointsFor += r.HomePoints
		away.PointsFor += r.AwayPoints
		switch r.WinnerUserID {
		case "":
			home.Ties++
			away.Ties++
		case r.HomeUserID:
			home.Wins++
			away.Losses++
		default:
			away.Wins++
			home.Losses++
		}
	}

	out := make([]Standing, 0, len(order))
	for _, id := range order {
		s := *byUser[id]
		s.PointsFor = math.Round(s.PointsFor*100) / 100
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].PointsFor > out[j].PointsFor
	})
	return out
}
