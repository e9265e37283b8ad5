package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/scoring"
)

type ScoringRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.WeeklyScore
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{items: make(map[string]scoring.WeeklyScore)}
}

func (r *ScoringRepository) UpsertWeeklyScores(_ context.Context, scores []scoring.WeeklyScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range scores {
		r.items[weeklyScoreKey(s.LeagueID, s.Week, s.UserID)] = s
	}
	return nil
}

func (r *ScoringRepository) ListWeeklyScores(_ context.Context, leagueID string, week int) ([]scoring.WeeklyScore, error) {
	return r.list(leagueID, func(w int) bool { return w == week }), nil
}

func (r *ScoringRepository) ListWeeklyScoresUpTo(_ context.Context, leagueID string, maxWeek int) ([]scoring.WeeklyScore, error) {
	return r.list(leagueID, func(w int) bool { return w <= maxWeek }), nil
}

func (r *ScoringRepository) list(leagueID string, match func(week int) bool) []scoring.WeeklyScore {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.WeeklyScore, 0)
	for _, s := range r.items {
		if s.LeagueID == leagueID && match(s.Week) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func weeklyScoreKey(leagueID string, week int, userID string) string {
	return leagueID + "::" + userID + "::" + strconv.Itoa(week)
}
