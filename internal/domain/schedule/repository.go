package schedule

import "context"

type Repository interface {
	// CreateIfAbsent stores matchups only when the league has no schedule yet.
	// It reports whether rows were written.
	CreateIfAbsent(ctx context.Context, leagueID string, matchups []Matchup) (bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Matchup, error)
	ListByWeek(ctx context.Context, leagueID string, week int) ([]Matchup, error)
	LastWeek(ctx context.Context, leagueID string) (int, error)
}
