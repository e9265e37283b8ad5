package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/schedule"
)

type ScheduleRepository struct {
	mu    sync.RWMutex
	items map[string][]schedule.Matchup
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{items: make(map[string][]schedule.Matchup)}
}

func (r *ScheduleRepository) CreateIfAbsent(_ context.Context, leagueID string, matchups []schedule.Matchup) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items[leagueID]) > 0 || len(matchups) == 0 {
		return false, nil
	}
	r.items[leagueID] = append([]schedule.Matchup(nil), matchups...)
	return true, nil
}

func (r *ScheduleRepository) ListByLeague(_ context.Context, leagueID string) ([]schedule.Matchup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]schedule.Matchup(nil), r.items[leagueID]...), nil
}

func (r *ScheduleRepository) ListByWeek(_ context.Context, leagueID string, week int) ([]schedule.Matchup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Matchup, 0)
	for _, m := range r.items[leagueID] {
		if m.Week == week {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *ScheduleRepository) LastWeek(_ context.Context, leagueID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last := 0
	for _, m := range r.items[leagueID] {
		if m.Week > last {
			last = m.Week
		}
	}
	return last, nil
}
