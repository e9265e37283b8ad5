package jobscheduler

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// Job is an internal callback route that a queue or operator can trigger.
type Job struct {
	Name string
	Path string
}

var (
	DraftTick    = Job{Name: "draft-tick", Path: "/v1/internal/jobs/draft-tick"}
	DraftEnforce = Job{Name: "draft-enforce", Path: "/v1/internal/jobs/draft-enforce"}
	Weekly       = Job{Name: "weekly", Path: "/v1/internal/jobs/weekly"}
	MarketTick   = Job{Name: "market-tick", Path: "/v1/internal/jobs/market-tick"}
)

// DispatchEvent is one status transition of a dispatched job. Events with
// the same DispatchID describe the same job run.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	LeagueID     string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

func (j Job) Event(dispatchID, leagueID string, status DispatchStatus, payload map[string]any, at time.Time) DispatchEvent {
	return DispatchEvent{
		DispatchID: dispatchID,
		JobName:    j.Name,
		JobPath:    j.Path,
		LeagueID:   leagueID,
		Status:     status,
		Payload:    payload,
		OccurredAt: at,
	}
}

// Fail marks the event failed when err is non-nil.
func (e *DispatchEvent) Fail(err error) {
	if err == nil {
		return
	}
	e.Status = StatusFailed
	e.ErrorMessage = err.Error()
}

// AttachTrace stamps the event with the active span, if any.
func (e *DispatchEvent) AttachTrace(ctx context.Context) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}
	e.TraceID = sc.TraceID().String()
	e.SpanID = sc.SpanID().String()
}

var dispatchUnsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func dispatchSegment(value, empty string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return empty
	}
	return dispatchUnsafeChars.ReplaceAllString(value, "-")
}

// TickDispatchID is stable per league, pick and state version so a queue
// that deduplicates by id never runs the same deadline twice.
func TickDispatchID(leagueID string, pick int, version int64) string {
	return dispatchSegment(DraftTick.Name, "unknown") + "-" +
		dispatchSegment(leagueID, "unknown") + "-" +
		strconv.Itoa(pick) + "-" +
		strconv.FormatInt(version, 10)
}

// ManualDispatchID names a job run that arrived without a dispatch id.
func ManualDispatchID(jobName, leagueID string, at time.Time) string {
	return "manual-" + dispatchSegment(jobName, "all") + "-" + dispatchSegment(leagueID, "all") + "-" +
		at.UTC().Format("20060102T150405.000000000Z")
}
