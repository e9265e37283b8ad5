package usecase

import (
	"context"
	"time"
)

// JobQueue schedules an HTTP callback into the internal job endpoints.
// deduplicationID lets the queue drop a second enqueue of the same run.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

// NewNoopJobQueue is used when no queue is configured; the enforcer and
// pollers still advance deadlines.
func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}
