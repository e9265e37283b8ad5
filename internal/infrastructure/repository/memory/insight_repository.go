package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/insight"
)

type InsightRepository struct {
	mu    sync.RWMutex
	items []insight.Insight
}

func NewInsightRepository() *InsightRepository {
	return &InsightRepository{}
}

func (r *InsightRepository) Insert(_ context.Context, items ...insight.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, items...)
	return nil
}

func (r *InsightRepository) ListRecent(_ context.Context, leagueID, userID string, limit int) ([]insight.Insight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]insight.Insight, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
