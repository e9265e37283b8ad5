package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

const (
	defaultEnforcerInterval = 5 * time.Second
	defaultEnforcerWorkers  = 8
)

// DraftTicker is the single-league tick entry point the enforcer drives.
type DraftTicker interface {
	Tick(ctx context.Context, leagueID string) (TickResult, error)
}

type DraftEnforcerConfig struct {
	Interval time.Duration
	Workers  int
}

type EnforcerRunResult struct {
	LeagueCount int                 `json:"league_count"`
	FailedCount int                 `json:"failed_count"`
	WorkerCount int                 `json:"worker_count"`
	Outcomes    map[TickOutcome]int `json:"outcomes"`
	Leagues     []EnforcerTick      `json:"leagues"`
}

type EnforcerTick struct {
	LeagueID   string      `json:"league_id"`
	Outcome    TickOutcome `json:"outcome,omitempty"`
	PickNumber int         `json:"pick_number,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// DraftEnforcerService ticks every draft that has a running clock. It is one
// of possibly many tick sources; correctness relies on Tick being idempotent.
type DraftEnforcerService struct {
	draftRepo draft.Repository
	ticker    DraftTicker
	cfg       DraftEnforcerConfig
	logger    *logging.Logger
}

func NewDraftEnforcerService(draftRepo draft.Repository, ticker DraftTicker, cfg DraftEnforcerConfig, logger *logging.Logger) *DraftEnforcerService {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultEnforcerInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultEnforcerWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DraftEnforcerService{
		draftRepo: draftRepo,
		ticker:    ticker,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *DraftEnforcerService) TickAll(ctx context.Context) (EnforcerRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftEnforcerService.TickAll")
	defer span.End()

	states, err := s.draftRepo.ListStatesByStatus(ctx, draft.StatusCountdown, draft.StatusLive)
	if err != nil {
		return EnforcerRunResult{}, fmt.Errorf("list running drafts: %w", err)
	}

	result := EnforcerRunResult{
		LeagueCount: len(states),
		Outcomes:    make(map[TickOutcome]int),
		Leagues:     make([]EnforcerTick, 0, len(states)),
	}
	if len(states) == 0 {
		return result, nil
	}

	workerCount := s.cfg.Workers
	if workerCount > len(states) {
		workerCount = len(states)
	}
	result.WorkerCount = workerCount

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return EnforcerRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	rows := make(chan EnforcerTick, len(states))
	var workers sync.WaitGroup
	for _, state := range states {
		leagueID := state.LeagueID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			row := EnforcerTick{LeagueID: leagueID}
			tick, err := s.ticker.Tick(ctx, leagueID)
			if err != nil {
				row.Error = err.Error()
				s.logger.WarnContext(ctx, "draft enforcer tick failed", "league_id", leagueID, "error", err)
			} else {
				row.Outcome = tick.Outcome
				if tick.Pick != nil {
					row.PickNumber = tick.Pick.PickNumber
				}
			}
			rows <- row
		}); err != nil {
			workers.Done()
			return EnforcerRunResult{}, fmt.Errorf("submit tick to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		if row.Error != "" {
			result.FailedCount++
		} else {
			result.Outcomes[row.Outcome]++
		}
		result.Leagues = append(result.Leagues, row)
	}
	sort.Slice(result.Leagues, func(i, j int) bool {
		return result.Leagues[i].LeagueID < result.Leagues[j].LeagueID
	})

	return result, nil
}

// Run ticks on every interval until ctx is cancelled.
func (s *DraftEnforcerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "draft enforcer started", "interval", s.cfg.Interval.String(), "workers", s.cfg.Workers)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(context.WithoutCancel(ctx), "draft enforcer stopped")
			return
		case <-ticker.C:
			result, err := s.TickAll(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "draft enforcer run failed", "error", err)
				continue
			}
			if result.LeagueCount > 0 {
				s.logger.DebugContext(ctx, "draft enforcer run finished",
					"league_count", result.LeagueCount,
					"failed", result.FailedCount,
				)
			}
		}
	}
}
