package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	idgen "github.com/riskibarqy/asset-draft/internal/platform/id"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

// commands issued by a commissioner retry when a tick commits in between.
const commandAttempts = 3

var (
	ErrDraftNotStarted = fmt.Errorf("%w: draft has not started", ErrConflict)
	ErrDraftAdvanced   = fmt.Errorf("%w: draft advanced concurrently, refresh and retry", ErrConflict)
)

type TickOutcome string

const (
	TickNoop        TickOutcome = "noop"
	TickCountdown   TickOutcome = "counting_down"
	TickWentLive    TickOutcome = "went_live"
	TickDeadlineSet TickOutcome = "deadline_set"
	TickWaiting     TickOutcome = "waiting"
	TickAutoPicked  TickOutcome = "auto_picked"
	TickSkipped     TickOutcome = "skipped"
	TickCompleted   TickOutcome = "completed"
	TickLostRace    TickOutcome = "lost_race"
)

type TickResult struct {
	LeagueID string
	Outcome  TickOutcome
	State    draft.State
	Pick     *draft.Pick
}

// DraftEventPublisher fans committed draft transitions out to listeners.
type DraftEventPublisher interface {
	Publish(ctx context.Context, event draft.Event) error
}

type noopDraftEventPublisher struct{}

func (noopDraftEventPublisher) Publish(_ context.Context, _ draft.Event) error {
	return nil
}

func NewNoopDraftEventPublisher() DraftEventPublisher {
	return noopDraftEventPublisher{}
}

type DraftServiceConfig struct {
	Defaults draft.Settings
}

type StartDraftInput struct {
	LeagueID         string
	UserID           string
	Rounds           *int
	PickSeconds      *int
	CountdownSeconds *int
}

type RandomizeOrderInput struct {
	LeagueID string
	UserID   string
}

type SubmitPickInput struct {
	LeagueID string
	UserID   string
	AssetID  string
}

type OverridePickInput struct {
	LeagueID string
	UserID   string
	AssetID  string
}

type DraftCommandInput struct {
	LeagueID string
	UserID   string
}

type UpdateDraftSettingsInput struct {
	LeagueID    string
	UserID      string
	Rounds      *int
	PickSeconds *int
}

type SetPoolInput struct {
	LeagueID string
	UserID   string
	AssetIDs []string
}

// DraftBoard is the read model shown to league members.
type DraftBoard struct {
	State            draft.State
	Order            []draft.Slot
	Picks            []draft.Pick
	TotalPicks       int
	OnTheClockUserID string
	OnTheClockPick   int
	RemainingSeconds int
}

type DraftService struct {
	leagueRepo   league.Repository
	assetRepo    asset.Repository
	draftRepo    draft.Repository
	insightRepo  insight.Repository
	dispatchRepo jobscheduler.Repository
	selector     *AutoPickSelector
	events       DraftEventPublisher
	queue        JobQueue
	idGen        idgen.Generator
	cfg          DraftServiceConfig
	logger       *logging.Logger
	now          func() time.Time
	shuffle      func(n int, swap func(i, j int))
}

func NewDraftService(
	leagueRepo league.Repository,
	assetRepo asset.Repository,
	draftRepo draft.Repository,
	insightRepo insight.Repository,
	dispatchRepo jobscheduler.Repository,
	selector *AutoPickSelector,
	events DraftEventPublisher,
	queue JobQueue,
	idGen idgen.Generator,
	cfg DraftServiceConfig,
	logger *logging.Logger,
) *DraftService {
	if selector == nil {
		selector = NewAutoPickSelector(assetRepo, draftRepo, nil)
	}
	if events == nil {
		events = NewNoopDraftEventPublisher()
	}
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if idGen == nil {
		idGen = idgen.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Defaults.Rounds <= 0 {
		cfg.Defaults.Rounds = 6
	}
	if cfg.Defaults.PickSeconds <= 0 {
		cfg.Defaults.PickSeconds = 60
	}
	if cfg.Defaults.CountdownSeconds < 0 {
		cfg.Defaults.CountdownSeconds = 0
	}

	return &DraftService{
		leagueRepo:   leagueRepo,
		assetRepo:    assetRepo,
		draftRepo:    draftRepo,
		insightRepo:  insightRepo,
		dispatchRepo: dispatchRepo,
		selector:     selector,
		events:       events,
		queue:        queue,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
		shuffle:      rand.Shuffle,
	}
}

func (s *DraftService) Start(ctx context.Context, input StartDraftInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Start")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.LeagueID == "" {
		return draft.State{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	lg, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return draft.State{}, err
	}
	if err := s.requireCommissioner(ctx, input.LeagueID, input.UserID); err != nil {
		return draft.State{}, err
	}

	state, err := s.loadState(ctx, input.LeagueID)
	if err != nil {
		return draft.State{}, err
	}
	if state.Status != draft.StatusNotStarted {
		if err := s.ensureLeagueDrafting(ctx, lg, state); err != nil {
			return draft.State{}, err
		}
		return draft.State{}, ErrDraftAlreadyStarted
	}
	if lg.Status != league.StatusForming {
		return draft.State{}, ErrDraftAlreadyStarted
	}

	settings := draft.Settings{
		Rounds:           state.Rounds,
		PickSeconds:      state.PickSeconds,
		CountdownSeconds: s.cfg.Defaults.CountdownSeconds,
	}
	if input.Rounds != nil {
		settings.Rounds = *input.Rounds
	}
	if input.PickSeconds != nil {
		settings.PickSeconds = *input.PickSeconds
	}
	if input.CountdownSeconds != nil {
		settings.CountdownSeconds = *input.CountdownSeconds
	}
	if err := settings.Validate(); err != nil {
		return draft.State{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	members, err := s.leagueRepo.ListMembers(ctx, input.LeagueID)
	if err != nil {
		return draft.State{}, fmt.Errorf("list league members: %w", err)
	}
	if len(members) < league.MinCapacity {
		return draft.State{}, ErrNotEnoughMembers
	}

	existingOrder, err := s.draftRepo.ListOrder(ctx, input.LeagueID)
	if err != nil {
		return draft.State{}, fmt.Errorf("list draft order: %w", err)
	}
	order := resolveStartOrder(input.LeagueID, members, existingOrder)

	now := s.now().UTC()
	next := state
	next.Rounds = settings.Rounds
	next.PickSeconds = settings.PickSeconds
	next.CurrentPick = 0
	next.UpdatedAt = now
	draftStartAt := now
	if settings.CountdownSeconds > 0 {
		startsAt := now.Add(time.Duration(settings.CountdownSeconds) * time.Second)
		next.Status = draft.StatusCountdown
		next.StartsAt = &startsAt
		next.PickDeadline = nil
		draftStartAt = startsAt
	} else {
		deadline := next.DeadlineFrom(now)
		next.Status = draft.StatusLive
		next.StartsAt = nil
		next.PickDeadline = &deadline
	}

	committed, err := s.draftRepo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Order:           order,
	})
	if err != nil {
		if errors.Is(err, draft.ErrStaleState) {
			return draft.State{}, s.startConflict(ctx, lg)
		}
		return draft.State{}, fmt.Errorf("commit draft start: %w", err)
	}

	if err := s.leagueRepo.MarkDrafting(ctx, input.LeagueID, draftStartAt); err != nil {
		return draft.State{}, fmt.Errorf("mark league drafting: %w", err)
	}

	s.logger.InfoContext(ctx, "draft started",
		"league_id", input.LeagueID,
		"status", committed.Status,
		"rounds", committed.Rounds,
		"pick_seconds", committed.PickSeconds,
		"team_count", len(order),
	)
	s.publish(ctx, draft.Event{Type: draft.EventDraftStarted, LeagueID: input.LeagueID, Status: committed.Status, OccurredAt: now})
	if committed.Status == draft.StatusLive {
		s.scheduleTick(ctx, committed, now)
	} else if committed.StartsAt != nil {
		s.scheduleTickAt(ctx, committed, *committed.StartsAt, now)
	}

	return committed, nil
}

// RandomizeOrder reshuffles the draft order. Only allowed before the draft starts.
func (s *DraftService) RandomizeOrder(ctx context.Context, input RandomizeOrderInput) ([]draft.Slot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.RandomizeOrder")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.LeagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return nil, err
	}
	if err := s.requireCommissioner(ctx, input.LeagueID, input.UserID); err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, input.LeagueID)
	if err != nil {
		return nil, err
	}
	if state.Status != draft.StatusNotStarted {
		return nil, ErrDraftAlreadyStarted
	}

	members, err := s.leagueRepo.ListMembers(ctx, input.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrNotEnoughMembers
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	s.shuffle(len(userIDs), func(i, j int) {
		userIDs[i], userIDs[j] = userIDs[j], userIDs[i]
	})
	order := make([]draft.Slot, 0, len(userIDs))
	for i, userID := range userIDs {
		order = append(order, draft.Slot{LeagueID: input.LeagueID, Slot: i + 1, UserID: userID})
	}

	now := s.now().UTC()
	next := state
	next.UpdatedAt = now
	if _, err := s.draftRepo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Order:           order,
	}); err != nil {
		if errors.Is(err, draft.ErrStaleState) {
			return nil, ErrDraftAdvanced
		}
		return nil, fmt.Errorf("commit randomized draft order: %w", err)
	}

	s.publish(ctx, draft.Event{Type: draft.EventOrderRandomized, LeagueID: input.LeagueID, Status: next.Status, OccurredAt: now})
	return order, nil
}

// Tick is the enforcement primitive. It is safe to call repeatedly and
// concurrently; a caller that loses the commit race gets TickLostRace.
func (s *DraftService) Tick(ctx context.Context, leagueID string) (TickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Tick")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return TickResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	state, exists, err := s.draftRepo.GetState(ctx, leagueID)
	if err != nil {
		return TickResult{}, fmt.Errorf("get draft state: %w", err)
	}
	result := TickResult{LeagueID: leagueID, Outcome: TickNoop, State: state}
	if !exists {
		result.State = draft.NewState(leagueID, s.cfg.Defaults)
		return result, nil
	}

	now := s.now().UTC()
	switch state.Status {
	case draft.StatusCompleted:
		if err := s.ensureLeagueActive(ctx, leagueID, now); err != nil {
			return TickResult{}, err
		}
		return result, nil
	case draft.StatusCountdown, draft.StatusLive, draft.StatusPaused:
		lg, err := s.getLeague(ctx, leagueID)
		if err != nil {
			return TickResult{}, err
		}
		if err := s.ensureLeagueDrafting(ctx, lg, state); err != nil {
			return TickResult{}, err
		}
	}

	switch state.Status {
	case draft.StatusCountdown:
		if state.StartsAt != nil && now.Before(*state.StartsAt) {
			result.Outcome = TickCountdown
			return result, nil
		}
		next := state
		deadline := next.DeadlineFrom(now)
		next.Status = draft.StatusLive
		next.PickDeadline = &deadline
		next.UpdatedAt = now
		committed, err := s.draftRepo.Apply(ctx, draft.Commit{ExpectedVersion: state.Version, State: next})
		if err != nil {
			return s.lostRaceOr(ctx, result, err, "commit draft live")
		}
		s.publish(ctx, draft.Event{Type: draft.EventDraftLive, LeagueID: leagueID, Status: committed.Status, OccurredAt: now})
		s.scheduleTick(ctx, committed, now)
		result.Outcome = TickWentLive
		result.State = committed
		return result, nil
	case draft.StatusLive:
	default:
		return result, nil
	}

	if state.PickDeadline == nil {
		next := state
		deadline := next.DeadlineFrom(now)
		next.PickDeadline = &deadline
		next.UpdatedAt = now
		committed, err := s.draftRepo.Apply(ctx, draft.Commit{ExpectedVersion: state.Version, State: next})
		if err != nil {
			return s.lostRaceOr(ctx, result, err, "commit draft deadline")
		}
		s.scheduleTick(ctx, committed, now)
		result.Outcome = TickDeadlineSet
		result.State = committed
		return result, nil
	}
	if now.Before(*state.PickDeadline) {
		result.Outcome = TickWaiting
		return result, nil
	}

	return s.resolveLapsedPick(ctx, state, now)
}

// RunTickJob ticks a league on behalf of a queued job and closes the job's
// dispatch record as completed or failed.
func (s *DraftService) RunTickJob(ctx context.Context, leagueID, dispatchID string) (TickResult, error) {
	result, err := s.Tick(ctx, leagueID)

	dispatchID = strings.TrimSpace(dispatchID)
	if dispatchID == "" {
		return result, err
	}
	event := jobscheduler.DraftTick.Event(dispatchID, leagueID, jobscheduler.StatusCompleted,
		map[string]any{"league_id": leagueID, "outcome": string(result.Outcome)}, s.now().UTC())
	event.Fail(err)
	s.recordDispatch(ctx, event)
	return result, err
}

func (s *DraftService) resolveLapsedPick(ctx context.Context, state draft.State, now time.Time) (TickResult, error) {
	leagueID := state.LeagueID
	result := TickResult{LeagueID: leagueID, Outcome: TickNoop, State: state}

	order, err := s.draftRepo.ListOrder(ctx, leagueID)
	if err != nil {
		return TickResult{}, fmt.Errorf("list draft order: %w", err)
	}
	total := draft.TotalPicks(len(order), state.Rounds)
	pickNumber := state.CurrentPick + 1

	if len(order) == 0 || pickNumber > total {
		next := state
		next.Status = draft.StatusCompleted
		next.PickDeadline = nil
		next.UpdatedAt = now
		committed, err := s.draftRepo.Apply(ctx, draft.Commit{ExpectedVersion: state.Version, State: next})
		if err != nil {
			return s.lostRaceOr(ctx, result, err, "commit draft completion")
		}
		if err := s.completeLeague(ctx, committed, now); err != nil {
			return TickResult{}, err
		}
		result.Outcome = TickCompleted
		result.State = committed
		return result, nil
	}

	round, slot := draft.SnakeSlot(pickNumber, len(order))
	userID, ok := draft.SlotOwner(order, slot)
	if !ok {
		return TickResult{}, fmt.Errorf("draft order has no member for slot=%d league=%s", slot, leagueID)
	}

	choice, found, err := s.selector.Select(ctx, leagueID, userID)
	if err != nil {
		return TickResult{}, fmt.Errorf("select auto pick: %w", err)
	}

	pick, err := s.newPick(leagueID, pickNumber, round, slot, userID, now)
	if err != nil {
		return TickResult{}, err
	}
	if found {
		pick.AssetID = choice.Asset.ID
		pick.Source = draft.SourceAuto
	} else {
		pick.Source = draft.SourceSkip
	}

	committed, err := s.commitPick(ctx, state, pick, total, true, now)
	if err != nil {
		if errors.Is(err, draft.ErrAssetTaken) || errors.Is(err, draft.ErrPickTaken) {
			err = draft.ErrStaleState
		}
		return s.lostRaceOr(ctx, result, err, "commit auto pick")
	}

	notice := ""
	if found {
		notice = autoPickNotice(choice)
		s.recordAutoPickInsight(ctx, pick, notice, now)
		s.logger.InfoContext(ctx, "draft auto pick recorded",
			"league_id", leagueID,
			"pick_number", pick.PickNumber,
			"user_id", userID,
			"asset_id", pick.AssetID,
			"score", choice.Score,
		)
		result.Outcome = TickAutoPicked
	} else {
		s.logger.InfoContext(ctx, "draft pick skipped, no asset available",
			"league_id", leagueID,
			"pick_number", pick.PickNumber,
			"user_id", userID,
		)
		result.Outcome = TickSkipped
	}

	if err := s.afterPick(ctx, committed, pick, notice, now); err != nil {
		return TickResult{}, err
	}
	result.State = committed
	result.Pick = &pick
	return result, nil
}

func (s *DraftService) SubmitPick(ctx context.Context, input SubmitPickInput) (draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SubmitPick")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.AssetID = asset.NormalizeID(input.AssetID)
	if input.LeagueID == "" {
		return draft.Pick{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.AssetID == "" {
		return draft.Pick{}, fmt.Errorf("%w: asset id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return draft.Pick{}, err
	}
	if _, err := s.requireMember(ctx, input.LeagueID, input.UserID); err != nil {
		return draft.Pick{}, err
	}

	state, err := s.loadState(ctx, input.LeagueID)
	if err != nil {
		return draft.Pick{}, err
	}
	switch state.Status {
	case draft.StatusLive:
	case draft.StatusCompleted:
		return draft.Pick{}, ErrDraftComplete
	default:
		return draft.Pick{}, ErrDraftNotLive
	}

	now := s.now().UTC()
	if state.PickDeadline != nil && !now.Before(*state.PickDeadline) {
		return draft.Pick{}, ErrDeadlineExpired
	}

	order, err := s.draftRepo.ListOrder(ctx, input.LeagueID)
	if err != nil {
		return draft.Pick{}, fmt.Errorf("list draft order: %w", err)
	}
	total := draft.TotalPicks(len(order), state.Rounds)
	pickNumber := state.CurrentPick + 1
	if pickNumber > total {
		return draft.Pick{}, ErrDraftComplete
	}
	round, slot := draft.SnakeSlot(pickNumber, len(order))
	owner, ok := draft.SlotOwner(order, slot)
	if !ok {
		return draft.Pick{}, fmt.Errorf("draft order has no member for slot=%d league=%s", slot, input.LeagueID)
	}
	if owner != input.UserID {
		return draft.Pick{}, ErrNotYourTurn
	}

	if err := s.validatePickAsset(ctx, input.LeagueID, input.AssetID); err != nil {
		return draft.Pick{}, err
	}

	pick, err := s.newPick(input.LeagueID, pickNumber, round, slot, owner, now)
	if err != nil {
		return draft.Pick{}, err
	}
	pick.AssetID = input.AssetID
	pick.Source = draft.SourceUser

	committed, err := s.commitPick(ctx, state, pick, total, true, now)
	if err != nil {
		return draft.Pick{}, mapPickCommitError(err)
	}

	s.logger.InfoContext(ctx, "draft pick recorded",
		"league_id", input.LeagueID,
		"pick_number", pick.PickNumber,
		"user_id", pick.UserID,
		"asset_id", pick.AssetID,
	)
	if err := s.afterPick(ctx, committed, pick, "", now); err != nil {
		return draft.Pick{}, err
	}
	return pick, nil
}

// OverridePick lets the commissioner fill the due pick while the draft is paused.
// The draft stays paused unless the pick completes it.
func (s *DraftService) OverridePick(ctx context.Context, input OverridePickInput) (draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.OverridePick")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.AssetID = asset.NormalizeID(input.AssetID)
	if input.LeagueID == "" {
		return draft.Pick{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.AssetID == "" {
		return draft.Pick{}, fmt.Errorf("%w: asset id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return draft.Pick{}, err
	}
	if err := s.requireCommissioner(ctx, input.LeagueID, input.UserID); err != nil {
		return draft.Pick{}, err
	}

	state, err := s.loadState(ctx, input.LeagueID)
	if err != nil {
		return draft.Pick{}, err
	}
	switch state.Status {
	case draft.StatusPaused:
	case draft.StatusCompleted:
		return draft.Pick{}, ErrDraftComplete
	default:
		return draft.Pick{}, ErrDraftNotPaused
	}

	order, err := s.draftRepo.ListOrder(ctx, input.LeagueID)
	if err != nil {
		return draft.Pick{}, fmt.Errorf("list draft order: %w", err)
	}
	total := draft.TotalPicks(len(order), state.Rounds)
	pickNumber := state.CurrentPick + 1
	if pickNumber > total {
		return draft.Pick{}, ErrDraftComplete
	}
	round, slot := draft.SnakeSlot(pickNumber, len(order))
	owner, ok := draft.SlotOwner(order, slot)
	if !ok {
		return draft.Pick{}, fmt.Errorf("draft order has no member for slot=%d league=%s", slot, input.LeagueID)
	}

	if err := s.validatePickAsset(ctx, input.LeagueID, input.AssetID); err != nil {
		return draft.Pick{}, err
	}

	now := s.now().UTC()
	pick, err := s.newPick(input.LeagueID, pickNumber, round, slot, owner, now)
	if err != nil {
		return draft.Pick{}, err
	}
	pick.AssetID = input.AssetID
	pick.Source = draft.SourceCommissioner

	committed, err := s.commitPick(ctx, state, pick, total, false, now)
	if err != nil {
		return draft.Pick{}, mapPickCommitError(err)
	}

	s.logger.InfoContext(ctx, "draft override pick recorded",
		"league_id", input.LeagueID,
		"pick_number", pick.PickNumber,
		"user_id", pick.UserID,
		"asset_id", pick.AssetID,
		"commissioner_id", input.UserID,
	)
	if err := s.afterPick(ctx, committed, pick, "", now); err != nil {
		return draft.Pick{}, err
	}
	return pick, nil
}

// Pause freezes the timer. The in-flight deadline is discarded.
func (s *DraftService) Pause(ctx context.Context, input DraftCommandInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Pause")
	defer span.End()

	return s.runCommand(ctx, input, func(state draft.State, now time.Time) (draft.State, bool, error) {
		// Pause is accepted in every status; only a running clock changes.
		if state.Status != draft.StatusCountdown && state.Status != draft.StatusLive {
			return state, false, nil
		}
		next := state
		next.Status = draft.StatusPaused
		next.PickDeadline = nil
		next.UpdatedAt = now
		return next, true, nil
	}, draft.EventDraftPaused)
}

// Resume issues a fresh full-length deadline; remaining time is not carried over.
func (s *DraftService) Resume(ctx context.Context, input DraftCommandInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Resume")
	defer span.End()

	state, err := s.runCommand(ctx, input, func(state draft.State, now time.Time) (draft.State, bool, error) {
		switch state.Status {
		case draft.StatusPaused:
		case draft.StatusCompleted:
			return draft.State{}, false, ErrDraftComplete
		case draft.StatusNotStarted:
			return draft.State{}, false, ErrDraftNotStarted
		default:
			return draft.State{}, false, ErrDraftNotPaused
		}
		next := state
		deadline := next.DeadlineFrom(now)
		next.Status = draft.StatusLive
		next.PickDeadline = &deadline
		next.UpdatedAt = now
		return next, true, nil
	}, draft.EventDraftResumed)
	if err != nil {
		return draft.State{}, err
	}

	s.scheduleTick(ctx, state, s.now().UTC())
	return state, nil
}

// UpdateSettings changes rounds and/or pick seconds before the start or while paused.
func (s *DraftService) UpdateSettings(ctx context.Context, input UpdateDraftSettingsInput) (draft.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.UpdateSettings")
	defer span.End()

	if input.Rounds == nil && input.PickSeconds == nil {
		return draft.State{}, fmt.Errorf("%w: no settings provided", ErrInvalidInput)
	}
	if input.Rounds != nil && (*input.Rounds < draft.MinRounds || *input.Rounds > draft.MaxRounds) {
		return draft.State{}, fmt.Errorf("%w: rounds must be between %d and %d", ErrInvalidInput, draft.MinRounds, draft.MaxRounds)
	}
	if input.PickSeconds != nil && (*input.PickSeconds < draft.MinPickSeconds || *input.PickSeconds > draft.MaxPickSeconds) {
		return draft.State{}, fmt.Errorf("%w: pick seconds must be between %d and %d", ErrInvalidInput, draft.MinPickSeconds, draft.MaxPickSeconds)
	}

	return s.runCommand(ctx, DraftCommandInput{LeagueID: input.LeagueID, UserID: input.UserID}, func(state draft.State, now time.Time) (draft.State, bool, error) {
		if state.Status != draft.StatusNotStarted && state.Status != draft.StatusPaused {
			return draft.State{}, false, ErrSettingsLocked
		}
		next := state
		if input.Rounds != nil {
			next.Rounds = *input.Rounds
		}
		if input.PickSeconds != nil {
			next.PickSeconds = *input.PickSeconds
		}
		if next.Status == draft.StatusPaused {
			order, err := s.draftRepo.ListOrder(ctx, state.LeagueID)
			if err != nil {
				return draft.State{}, false, fmt.Errorf("list draft order: %w", err)
			}
			// A paused draft must keep at least one open pick to resume into.
			if next.CurrentPick >= draft.TotalPicks(len(order), next.Rounds) {
				return draft.State{}, false, fmt.Errorf("%w: rounds must leave at least one pick after those already made", ErrInvalidInput)
			}
		}
		next.UpdatedAt = now
		return next, true, nil
	}, draft.EventSettingsChanged)
}

// runCommand applies a commissioner command, re-reading the state when a tick
// commits in between. mutate reports false when nothing needs to change.
func (s *DraftService) runCommand(
	ctx context.Context,
	input DraftCommandInput,
	mutate func(state draft.State, now time.Time) (draft.State, bool, error),
	eventType draft.EventType,
) (draft.State, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.LeagueID == "" {
		return draft.State{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return draft.State{}, err
	}
	if err := s.requireCommissioner(ctx, input.LeagueID, input.UserID); err != nil {
		return draft.State{}, err
	}

	for attempt := 1; ; attempt++ {
		state, err := s.loadState(ctx, input.LeagueID)
		if err != nil {
			return draft.State{}, err
		}

		now := s.now().UTC()
		next, changed, err := mutate(state, now)
		if err != nil {
			return draft.State{}, err
		}
		if !changed {
			return state, nil
		}

		committed, err := s.draftRepo.Apply(ctx, draft.Commit{ExpectedVersion: state.Version, State: next})
		if err == nil {
			s.logger.InfoContext(ctx, "draft command applied",
				"league_id", input.LeagueID,
				"event", eventType,
				"status", committed.Status,
				"user_id", input.UserID,
			)
			s.publish(ctx, draft.Event{Type: eventType, LeagueID: input.LeagueID, Status: committed.Status, OccurredAt: now})
			return committed, nil
		}
		if !errors.Is(err, draft.ErrStaleState) {
			return draft.State{}, fmt.Errorf("commit draft %s: %w", eventType, err)
		}
		if attempt >= commandAttempts {
			return draft.State{}, ErrDraftAdvanced
		}
	}
}

func (s *DraftService) GetBoard(ctx context.Context, leagueID, userID string) (DraftBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.GetBoard")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return DraftBoard{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return DraftBoard{}, err
	}
	if _, err := s.requireMember(ctx, leagueID, userID); err != nil {
		return DraftBoard{}, err
	}

	state, err := s.loadState(ctx, leagueID)
	if err != nil {
		return DraftBoard{}, err
	}
	order, err := s.draftRepo.ListOrder(ctx, leagueID)
	if err != nil {
		return DraftBoard{}, fmt.Errorf("list draft order: %w", err)
	}
	picks, err := s.draftRepo.ListPicks(ctx, leagueID)
	if err != nil {
		return DraftBoard{}, fmt.Errorf("list draft picks: %w", err)
	}

	board := DraftBoard{
		State:      state,
		Order:      order,
		Picks:      picks,
		TotalPicks: draft.TotalPicks(len(order), state.Rounds),
	}
	if state.IsTerminal() || len(order) == 0 || state.Status == draft.StatusNotStarted {
		return board, nil
	}

	pickNumber := state.CurrentPick + 1
	if pickNumber <= board.TotalPicks {
		_, slot := draft.SnakeSlot(pickNumber, len(order))
		if owner, ok := draft.SlotOwner(order, slot); ok {
			board.OnTheClockUserID = owner
			board.OnTheClockPick = pickNumber
		}
	}
	if state.PickDeadline != nil {
		remaining := state.PickDeadline.Sub(s.now().UTC())
		if remaining > 0 {
			board.RemainingSeconds = int(math.Ceil(remaining.Seconds()))
		}
	}
	return board, nil
}

func (s *DraftService) ListAvailableAssets(ctx context.Context, leagueID, userID string) ([]asset.Asset, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.ListAvailableAssets")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, leagueID, userID); err != nil {
		return nil, err
	}

	return s.selector.Available(ctx, leagueID)
}

// SetPool replaces the league's draftable assets. An empty list allows every
// active asset. The pool is frozen once the draft starts.
func (s *DraftService) SetPool(ctx context.Context, input SetPoolInput) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.SetPool")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return nil, err
	}
	if err := s.requireCommissioner(ctx, input.LeagueID, input.UserID); err != nil {
		return nil, err
	}

	state, err := s.loadState(ctx, input.LeagueID)
	if err != nil {
		return nil, err
	}
	if state.Status != draft.StatusNotStarted {
		return nil, ErrDraftAlreadyStarted
	}

	ids := make([]string, 0, len(input.AssetIDs))
	seen := make(map[string]struct{}, len(input.AssetIDs))
	for _, raw := range input.AssetIDs {
		id := asset.NormalizeID(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		known, err := s.assetRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get pool assets: %w", err)
		}
		found := make(map[string]struct{}, len(known))
		for _, item := range known {
			found[item.ID] = struct{}{}
		}
		missing := make([]string, 0)
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: unknown assets %s", ErrInvalidInput, strings.Join(missing, ","))
		}
	}

	if err := s.assetRepo.ReplacePool(ctx, input.LeagueID, ids); err != nil {
		return nil, fmt.Errorf("replace league pool: %w", err)
	}

	s.logger.InfoContext(ctx, "league pool replaced", "league_id", input.LeagueID, "asset_count", len(ids))
	return ids, nil
}

func (s *DraftService) commitPick(ctx context.Context, state draft.State, pick draft.Pick, total int, liveAfter bool, now time.Time) (draft.State, error) {
	next := state
	next.CurrentPick = pick.PickNumber
	next.UpdatedAt = now
	switch {
	case next.CurrentPick >= total:
		next.Status = draft.StatusCompleted
		next.PickDeadline = nil
	case liveAfter:
		deadline := next.DeadlineFrom(now)
		next.Status = draft.StatusLive
		next.PickDeadline = &deadline
	}

	return s.draftRepo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Pick:            &pick,
	})
}

func (s *DraftService) afterPick(ctx context.Context, committed draft.State, pick draft.Pick, notice string, now time.Time) error {
	s.publish(ctx, draft.Event{
		Type:       draft.EventPickMade,
		LeagueID:   pick.LeagueID,
		Status:     committed.Status,
		PickNumber: pick.PickNumber,
		Round:      pick.Round,
		Slot:       pick.Slot,
		UserID:     pick.UserID,
		AssetID:    pick.AssetID,
		Source:     pick.Source,
		Notice:     notice,
		OccurredAt: now,
	})

	if committed.Status == draft.StatusCompleted {
		return s.completeLeague(ctx, committed, now)
	}
	if committed.Status == draft.StatusLive {
		s.scheduleTick(ctx, committed, now)
	}
	return nil
}

func (s *DraftService) completeLeague(ctx context.Context, committed draft.State, now time.Time) error {
	if err := s.leagueRepo.MarkActive(ctx, committed.LeagueID, now); err != nil {
		return fmt.Errorf("mark league active: %w", err)
	}
	s.logger.InfoContext(ctx, "draft completed", "league_id", committed.LeagueID, "picks", committed.CurrentPick)
	s.publish(ctx, draft.Event{Type: draft.EventDraftCompleted, LeagueID: committed.LeagueID, Status: committed.Status, OccurredAt: now})
	return nil
}

// startConflict classifies a lost start commit. Another Start wins with
// ErrDraftAlreadyStarted; a settings or order change only advanced the
// version, so the caller may retry.
func (s *DraftService) startConflict(ctx context.Context, lg league.League) error {
	current, err := s.loadState(ctx, lg.ID)
	if err != nil {
		return err
	}
	if current.Status == draft.StatusNotStarted {
		return ErrDraftAdvanced
	}
	if err := s.ensureLeagueDrafting(ctx, lg, current); err != nil {
		return err
	}
	return ErrDraftAlreadyStarted
}

// ensureLeagueDrafting closes a league that is still forming while its draft
// already runs. Start commits the draft before the league, so a failed
// MarkDrafting is repaired here.
func (s *DraftService) ensureLeagueDrafting(ctx context.Context, lg league.League, state draft.State) error {
	if lg.Status != league.StatusForming {
		return nil
	}
	switch state.Status {
	case draft.StatusCountdown, draft.StatusLive, draft.StatusPaused:
	default:
		return nil
	}
	draftStartAt := state.UpdatedAt
	if state.StartsAt != nil {
		draftStartAt = *state.StartsAt
	}
	if err := s.leagueRepo.MarkDrafting(ctx, lg.ID, draftStartAt); err != nil {
		return fmt.Errorf("mark league drafting: %w", err)
	}
	s.logger.WarnContext(ctx, "league closed after started draft", "league_id", lg.ID, "draft_status", state.Status)
	return nil
}

// ensureLeagueActive repairs a league left in drafting after its draft completed.
func (s *DraftService) ensureLeagueActive(ctx context.Context, leagueID string, now time.Time) error {
	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if lg.Status == league.StatusActive {
		return nil
	}
	if err := s.leagueRepo.MarkActive(ctx, leagueID, now); err != nil {
		return fmt.Errorf("mark league active: %w", err)
	}
	s.logger.WarnContext(ctx, "league activated after completed draft", "league_id", leagueID)
	return nil
}

func (s *DraftService) lostRaceOr(ctx context.Context, result TickResult, err error, action string) (TickResult, error) {
	if errors.Is(err, draft.ErrStaleState) {
		s.logger.DebugContext(ctx, "draft tick lost race", "league_id", result.LeagueID, "action", action)
		result.Outcome = TickLostRace
		return result, nil
	}
	return TickResult{}, fmt.Errorf("%s: %w", action, err)
}

func (s *DraftService) validatePickAsset(ctx context.Context, leagueID, assetID string) error {
	pool, err := s.assetRepo.ListPool(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("list league pool: %w", err)
	}
	active, err := s.assetRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active assets: %w", err)
	}
	if !asset.IsAllowed(pool, active, assetID) {
		return ErrAssetNotAllowed
	}

	drafted, err := s.draftRepo.ListDraftedAssetIDs(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("list drafted assets: %w", err)
	}
	for _, id := range drafted {
		if id == assetID {
			return ErrAssetAlreadyDrafted
		}
	}
	return nil
}

func (s *DraftService) newPick(leagueID string, pickNumber, round, slot int, userID string, now time.Time) (draft.Pick, error) {
	pickID, err := s.idGen.NewID()
	if err != nil {
		return draft.Pick{}, fmt.Errorf("generate pick id: %w", err)
	}
	return draft.Pick{
		ID:         pickID,
		LeagueID:   leagueID,
		PickNumber: pickNumber,
		Round:      round,
		Slot:       slot,
		UserID:     userID,
		CreatedAt:  now,
	}, nil
}

func (s *DraftService) recordAutoPickInsight(ctx context.Context, pick draft.Pick, notice string, now time.Time) {
	if s.insightRepo == nil {
		return
	}
	insightID, err := s.idGen.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate insight id failed", "league_id", pick.LeagueID, "error", err)
		return
	}
	item := insight.Insight{
		ID:        insightID,
		LeagueID:  pick.LeagueID,
		UserID:    pick.UserID,
		EventType: insight.EventRosterChange,
		Headline:  "Insight: Roster updated",
		Body:      notice,
		CreatedAt: now,
	}
	if err := s.insightRepo.Insert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "record auto pick insight failed",
			"league_id", pick.LeagueID,
			"user_id", pick.UserID,
			"error", err,
		)
	}
}

func autoPickNotice(choice AutoPickChoice) string {
	return fmt.Sprintf(
		"%s was added automatically to balance your roster (risk %s, kind %s). Consider balancing risk buckets and mixing asset kinds.",
		choice.Asset.ID, choice.Asset.Risk, choice.Asset.Kind,
	)
}

func (s *DraftService) publish(ctx context.Context, event draft.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish draft event failed",
			"league_id", event.LeagueID,
			"event", event.Type,
			"error", err,
		)
	}
}

func (s *DraftService) scheduleTick(ctx context.Context, state draft.State, now time.Time) {
	if state.PickDeadline == nil {
		return
	}
	s.scheduleTickAt(ctx, state, *state.PickDeadline, now)
}

// scheduleTickAt enqueues a delayed tick for the given instant, deduplicated per
// league and pick. Failures are logged; pollers and the enforcer still tick.
func (s *DraftService) scheduleTickAt(ctx context.Context, state draft.State, at time.Time, now time.Time) {
	delay := at.Sub(now)
	if delay < 0 {
		delay = 0
	}
	dispatchID := jobscheduler.TickDispatchID(state.LeagueID, state.CurrentPick+1, state.Version)
	payload := map[string]any{
		"league_id":   state.LeagueID,
		"dispatch_id": dispatchID,
	}

	event := jobscheduler.DraftTick.Event(dispatchID, state.LeagueID, jobscheduler.StatusSent, payload, now)
	if err := s.queue.Enqueue(ctx, jobscheduler.DraftTick.Path, payload, delay, dispatchID); err != nil {
		s.logger.WarnContext(ctx, "enqueue draft tick failed", "league_id", state.LeagueID, "error", err)
		event.Fail(err)
	}
	s.recordDispatch(ctx, event)
}

func (s *DraftService) recordDispatch(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil {
		return
	}
	event.AttachTrace(ctx)
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func (s *DraftService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return item, nil
}

func (s *DraftService) requireMember(ctx context.Context, leagueID, userID string) (league.Member, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return league.Member{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	member, exists, err := s.leagueRepo.GetMember(ctx, leagueID, userID)
	if err != nil {
		return league.Member{}, fmt.Errorf("get league member: %w", err)
	}
	if !exists {
		return league.Member{}, ErrNotMember
	}
	return member, nil
}

func (s *DraftService) requireCommissioner(ctx context.Context, leagueID, userID string) error {
	member, err := s.requireMember(ctx, leagueID, userID)
	if err != nil {
		return err
	}
	if !member.IsCommissioner() {
		return ErrNotCommissioner
	}
	return nil
}

func (s *DraftService) loadState(ctx context.Context, leagueID string) (draft.State, error) {
	state, exists, err := s.draftRepo.GetState(ctx, leagueID)
	if err != nil {
		return draft.State{}, fmt.Errorf("get draft state: %w", err)
	}
	if !exists {
		return draft.NewState(leagueID, s.cfg.Defaults), nil
	}
	return state, nil
}

func mapPickCommitError(err error) error {
	switch {
	case errors.Is(err, draft.ErrAssetTaken):
		return ErrAssetAlreadyDrafted
	case errors.Is(err, draft.ErrStaleState), errors.Is(err, draft.ErrPickTaken):
		return ErrDraftAdvanced
	default:
		return fmt.Errorf("commit draft pick: %w", err)
	}
}

// resolveStartOrder keeps a pre-start randomized order when it still covers
// exactly the current members; otherwise members are ordered by join time.
func resolveStartOrder(leagueID string, members []league.Member, existing []draft.Slot) []draft.Slot {
	if len(existing) == len(members) {
		memberSet := make(map[string]struct{}, len(members))
		for _, m := range members {
			memberSet[m.UserID] = struct{}{}
		}
		valid := true
		slots := make(map[int]struct{}, len(existing))
		for _, slot := range existing {
			_, isMember := memberSet[slot.UserID]
			_, dup := slots[slot.Slot]
			if !isMember || dup || slot.Slot < 1 || slot.Slot > len(existing) {
				valid = false
				break
			}
			slots[slot.Slot] = struct{}{}
			delete(memberSet, slot.UserID)
		}
		if valid && len(memberSet) == 0 {
			return append([]draft.Slot(nil), existing...)
		}
	}

	order := make([]draft.Slot, 0, len(members))
	for i, m := range members {
		order = append(order, draft.Slot{LeagueID: leagueID, Slot: i + 1, UserID: m.UserID})
	}
	return order
}
