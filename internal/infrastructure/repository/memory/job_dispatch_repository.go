package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
)

// JobDispatchRepository keeps the latest status per dispatch id.
type JobDispatchRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{items: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[event.DispatchID] = event
	return nil
}

func (r *JobDispatchRepository) Get(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[dispatchID]
	return event, ok
}
