package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	draftmock "github.com/riskibarqy/asset-draft/internal/mocks/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
)

type scriptedTicker struct {
	mu       sync.Mutex
	calls    map[string]int
	outcomes map[string]TickOutcome
	failing  map[string]error
}

func newScriptedTicker() *scriptedTicker {
	return &scriptedTicker{
		calls:    make(map[string]int),
		outcomes: make(map[string]TickOutcome),
		failing:  make(map[string]error),
	}
}

func (s *scriptedTicker) Tick(_ context.Context, leagueID string) (TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[leagueID]++
	if err, ok := s.failing[leagueID]; ok {
		return TickResult{}, err
	}
	result := TickResult{LeagueID: leagueID, Outcome: s.outcomes[leagueID]}
	if result.Outcome == TickAutoPicked {
		result.Pick = &draft.Pick{LeagueID: leagueID, PickNumber: 3}
	}
	return result, nil
}

func (s *scriptedTicker) callCount(leagueID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[leagueID]
}

func TestDraftEnforcerService_TickAll(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	draftRepo := draftmock.NewRepository(t)
	draftRepo.
		On("ListStatesByStatus", mock.Anything, draft.StatusCountdown, draft.StatusLive).
		Return([]draft.State{
			{LeagueID: "lg-c", Status: draft.StatusLive},
			{LeagueID: "lg-a", Status: draft.StatusLive},
			{LeagueID: "lg-b", Status: draft.StatusCountdown},
		}, nil).
		Once()

	ticker := newScriptedTicker()
	ticker.outcomes["lg-a"] = TickAutoPicked
	ticker.outcomes["lg-b"] = TickCountdown
	ticker.failing["lg-c"] = errors.New("database unavailable")

	service := NewDraftEnforcerService(draftRepo, ticker, DraftEnforcerConfig{Workers: 2}, logging.NewNop())
	result, err := service.TickAll(context.Background())
	if err != nil {
		t.Fatalf("tick all: %v", err)
	}

	want := EnforcerRunResult{
		LeagueCount: 3,
		FailedCount: 1,
		WorkerCount: 2,
		Outcomes:    map[TickOutcome]int{TickAutoPicked: 1, TickCountdown: 1},
		Leagues: []EnforcerTick{
			{LeagueID: "lg-a", Outcome: TickAutoPicked, PickNumber: 3},
			{LeagueID: "lg-b", Outcome: TickCountdown},
			{LeagueID: "lg-c", Error: "database unavailable"},
		},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("run result mismatch (-want +got):\n%s", diff)
	}
}

func TestDraftEnforcerService_TickAllWithoutRunningDrafts(t *testing.T) {
	draftRepo := draftmock.NewRepository(t)
	draftRepo.
		On("ListStatesByStatus", mock.Anything, draft.StatusCountdown, draft.StatusLive).
		Return(nil, nil).
		Once()

	service := NewDraftEnforcerService(draftRepo, newScriptedTicker(), DraftEnforcerConfig{}, logging.NewNop())
	result, err := service.TickAll(context.Background())
	if err != nil {
		t.Fatalf("tick all: %v", err)
	}
	if result.LeagueCount != 0 || result.WorkerCount != 0 || len(result.Leagues) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDraftEnforcerService_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newDraftFixture(t, 2)
	f.startLive(t)
	f.clock.Advance(time.Minute)

	ticker := newScriptedTicker()
	service := NewDraftEnforcerService(f.drafts, ticker, DraftEnforcerConfig{Interval: 5 * time.Millisecond, Workers: 1}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		service.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for ticker.callCount("lg") == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("enforcer never ticked the live draft")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enforcer did not stop after cancel")
	}
}

func TestDraftEnforcerService_DrivesAutoPicks(t *testing.T) {
	f := newDraftFixture(t, 2)
	f.startLive(t)
	f.clock.Advance(time.Minute)

	service := NewDraftEnforcerService(f.drafts, f.service, DraftEnforcerConfig{Workers: 4}, logging.NewNop())
	result, err := service.TickAll(context.Background())
	if err != nil {
		t.Fatalf("tick all: %v", err)
	}
	if result.Outcomes[TickAutoPicked] != 1 || result.Leagues[0].PickNumber != 1 {
		t.Fatalf("expected one auto pick, got %+v", result)
	}
}
