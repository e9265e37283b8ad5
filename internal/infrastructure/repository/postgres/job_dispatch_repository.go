package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
)

// dispatchStatusColumns names the timestamp and trace columns owned by each
// dispatch status. Only the columns of the incoming status are overwritten.
var dispatchStatusColumns = map[jobscheduler.DispatchStatus][3]string{
	jobscheduler.StatusSent:      {"sent_at", "sent_trace_id", "sent_span_id"},
	jobscheduler.StatusCompleted: {"completed_at", "completed_trace_id", "completed_span_id"},
	jobscheduler.StatusFailed:    {"failed_at", "failed_trace_id", "failed_span_id"},
}

// JobDispatchRepository keeps one row per queued draft tick so operators can
// follow a tick from enqueue to completion.
type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}
	columns, ok := dispatchStatusColumns[event.Status]
	if !ok {
		return fmt.Errorf("unknown dispatch status %q", event.Status)
	}

	occurredAt := event.OccurredAt.UTC()
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	payload := "{}"
	if len(event.Payload) > 0 {
		raw, err := jsoniter.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal job dispatch payload: %w", err)
		}
		payload = string(raw)
	}

	var lastError *string
	if event.Status == jobscheduler.StatusFailed {
		lastError = optionalString(event.ErrorMessage)
	}

	at, traceCol, spanCol := columns[0], columns[1], columns[2]
	statement := fmt.Sprintf(`
INSERT INTO job_dispatches (dispatch_id, job_name, job_path, league_public_id, payload, status, last_error, %[1]s, %[2]s, %[3]s)
VALUES (:dispatch_id, :job_name, :job_path, :league_public_id, :payload, :status, :last_error, :occurred_at, :trace_id, :span_id)
ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL
DO UPDATE SET
    status = EXCLUDED.status,
    payload = EXCLUDED.payload,
    last_error = EXCLUDED.last_error,
    %[1]s = EXCLUDED.%[1]s,
    %[2]s = EXCLUDED.%[2]s,
    %[3]s = EXCLUDED.%[3]s,
    updated_at = NOW()`, at, traceCol, spanCol)

	query, args, err := sqlx.Named(statement, map[string]any{
		"dispatch_id":      dispatchID,
		"job_name":         defaultString(event.JobName, "unknown"),
		"job_path":         defaultString(event.JobPath, "/unknown"),
		"league_public_id": defaultString(event.LeagueID, "unknown"),
		"payload":          payload,
		"status":           string(event.Status),
		"last_error":       lastError,
		"occurred_at":      occurredAt,
		"trace_id":         optionalString(event.TraceID),
		"span_id":          optionalString(event.SpanID),
	})
	if err != nil {
		return fmt.Errorf("bind upsert job dispatch query: %w", err)
	}
	query = r.db.Rebind(query)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}
	return nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
