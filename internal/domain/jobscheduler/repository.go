package jobscheduler

import "context"

// Repository records dispatch events. Upserting merges every status of a
// DispatchID into one row.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
}
