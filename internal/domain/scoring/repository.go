package scoring

import "context"

type Repository interface {
	// UpsertWeeklyScores is keyed by (league, week, user).
	UpsertWeeklyScores(ctx context.Context, scores []WeeklyScore) error
	ListWeeklyScores(ctx context.Context, leagueID string, week int) ([]WeeklyScore, error)
	ListWeeklyScoresUpTo(ctx context.Context, leagueID string, maxWeek int) ([]WeeklyScore, error)
}
