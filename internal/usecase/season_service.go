package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	"github.com/riskibarqy/asset-draft/internal/domain/schedule"
	"github.com/riskibarqy/asset-draft/internal/domain/scoring"
	idgen "github.com/riskibarqy/asset-draft/internal/platform/id"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultWeeklyWorkers = 4

type SeasonServiceConfig struct {
	WeeklyWorkers int
}

type MatchupsView struct {
	Week    int
	Results []scoring.MatchupResult
}

type StandingsView struct {
	Week int
	Rows []scoring.Standing
}

type WeeklyRunResult struct {
	LeagueCount int                  `json:"league_count"`
	Processed   int                  `json:"processed"`
	FailedCount int                  `json:"failed_count"`
	Leagues     []WeeklyLeagueResult `json:"leagues"`
}

type WeeklyLeagueResult struct {
	LeagueID        string `json:"league_id"`
	Week            int    `json:"week"`
	ScheduleCreated bool   `json:"schedule_created"`
	ScoredUsers     int    `json:"scored_users"`
	OutsideSeason   bool   `json:"outside_season,omitempty"`
	Error           string `json:"error,omitempty"`
}

// SeasonService owns the round-robin calendar and weekly roster-value scoring.
type SeasonService struct {
	leagueRepo   league.Repository
	assetRepo    asset.Repository
	draftRepo    draft.Repository
	scheduleRepo schedule.Repository
	scoringRepo  scoring.Repository
	insightRepo  insight.Repository
	idGen        idgen.Generator
	cfg          SeasonServiceConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewSeasonService(
	leagueRepo league.Repository,
	assetRepo asset.Repository,
	draftRepo draft.Repository,
	scheduleRepo schedule.Repository,
	scoringRepo scoring.Repository,
	insightRepo insight.Repository,
	idGen idgen.Generator,
	cfg SeasonServiceConfig,
	logger *logging.Logger,
) *SeasonService {
	if idGen == nil {
		idGen = idgen.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WeeklyWorkers <= 0 {
		cfg.WeeklyWorkers = defaultWeeklyWorkers
	}

	return &SeasonService{
		leagueRepo:   leagueRepo,
		assetRepo:    assetRepo,
		draftRepo:    draftRepo,
		scheduleRepo: scheduleRepo,
		scoringRepo:  scoringRepo,
		insightRepo:  insightRepo,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// EnsureSchedule writes a full round-robin across members ordered by join time,
// unless the league already has one. It reports whether a schedule was written.
func (s *SeasonService) EnsureSchedule(ctx context.Context, leagueID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.EnsureSchedule")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return false, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return false, err
	}

	existing, err := s.scheduleRepo.LastWeek(ctx, leagueID)
	if err != nil {
		return false, fmt.Errorf("get last scheduled week: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return false, fmt.Errorf("list league members: %w", err)
	}
	if len(members) < league.MinCapacity {
		return false, nil
	}

	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	matchups := schedule.Expand(leagueID, schedule.RoundRobin(userIDs))

	created, err := s.scheduleRepo.CreateIfAbsent(ctx, leagueID, matchups)
	if err != nil {
		return false, fmt.Errorf("create league schedule: %w", err)
	}
	if created {
		s.logger.InfoContext(ctx, "league schedule created",
			"league_id", leagueID,
			"members", len(userIDs),
			"matchups", len(matchups),
		)
	}
	return created, nil
}

// GenerateSchedule is the commissioner-triggered form of EnsureSchedule.
func (s *SeasonService) GenerateSchedule(ctx context.Context, leagueID, userID string) (bool, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return false, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return false, err
	}
	member, err := s.requireMember(ctx, leagueID, userID)
	if err != nil {
		return false, err
	}
	if !member.IsCommissioner() {
		return false, ErrNotCommissioner
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return false, fmt.Errorf("list league members: %w", err)
	}
	if len(members) < league.MinCapacity {
		return false, ErrNotEnoughMembers
	}
	return s.EnsureSchedule(ctx, leagueID)
}

// ComputeWeek values every member's roster at the latest known prices and
// upserts the week's scores. Missing prices count as zero.
func (s *SeasonService) ComputeWeek(ctx context.Context, leagueID string, week int) ([]scoring.WeeklyScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ComputeWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if week < 1 {
		return nil, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}
	if _, err := s.getLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	lastWeek, err := s.scheduleRepo.LastWeek(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get last scheduled week: %w", err)
	}
	if lastWeek > 0 && week > lastWeek {
		return nil, fmt.Errorf("%w: week %d is outside the season (last week %d)", ErrInvalidInput, week, lastWeek)
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}
	rosters, err := s.draftRepo.ListRosters(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league rosters: %w", err)
	}

	assetIDs := make([]string, 0, len(rosters))
	seen := make(map[string]struct{}, len(rosters))
	for _, entry := range rosters {
		if _, ok := seen[entry.AssetID]; ok {
			continue
		}
		seen[entry.AssetID] = struct{}{}
		assetIDs = append(assetIDs, entry.AssetID)
	}

	prices := map[string]asset.Price{}
	if len(assetIDs) > 0 {
		prices, err = s.assetRepo.LatestPrices(ctx, assetIDs)
		if err != nil {
			return nil, fmt.Errorf("get latest prices: %w", err)
		}
	}

	totals := make(map[string]float64, len(members))
	for _, m := range members {
		totals[m.UserID] = 0
	}
	for _, entry := range rosters {
		totals[entry.UserID] += prices[entry.AssetID].Price
	}

	now := s.now().UTC()
	scores := make([]scoring.WeeklyScore, 0, len(totals))
	for userID, total := range totals {
		value := scoring.RoundValue(total)
		scores = append(scores, scoring.WeeklyScore{
			LeagueID:    leagueID,
			Week:        week,
			UserID:      userID,
			RosterValue: value,
			Points:      value,
			ComputedAt:  now,
		})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].UserID < scores[j].UserID })

	if err := s.scoringRepo.UpsertWeeklyScores(ctx, scores); err != nil {
		return nil, fmt.Errorf("upsert weekly scores: %w", err)
	}
	return scores, nil
}

// Matchups projects one week's schedule joined with scores. A nil week means
// the league's current week.
func (s *SeasonService) Matchups(ctx context.Context, leagueID, userID string, week *int) (MatchupsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Matchups")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return MatchupsView{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return MatchupsView{}, err
	}
	if _, err := s.requireMember(ctx, leagueID, userID); err != nil {
		return MatchupsView{}, err
	}

	target := league.CurrentWeek(lg.StartedAt, s.now().UTC())
	if week != nil {
		if *week < 1 {
			return MatchupsView{}, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
		}
		target = *week
	}

	matchups, err := s.scheduleRepo.ListByWeek(ctx, leagueID, target)
	if err != nil {
		return MatchupsView{}, fmt.Errorf("list week schedule: %w", err)
	}
	scores, err := s.scoringRepo.ListWeeklyScores(ctx, leagueID, target)
	if err != nil {
		return MatchupsView{}, fmt.Errorf("list weekly scores: %w", err)
	}

	return MatchupsView{Week: target, Results: scoring.DeriveMatchups(matchups, scores)}, nil
}

// Standings aggregates scheduled weeks up to the current one.
func (s *SeasonService) Standings(ctx context.Context, leagueID, userID string) (StandingsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Standings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return StandingsView{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return StandingsView{}, err
	}
	if _, err := s.requireMember(ctx, leagueID, userID); err != nil {
		return StandingsView{}, err
	}

	current := league.CurrentWeek(lg.StartedAt, s.now().UTC())
	lastWeek, err := s.scheduleRepo.LastWeek(ctx, leagueID)
	if err != nil {
		return StandingsView{}, fmt.Errorf("get last scheduled week: %w", err)
	}
	upTo := current
	if lastWeek < upTo {
		upTo = lastWeek
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return StandingsView{}, fmt.Errorf("list league members: %w", err)
	}
	memberIDs := make([]string, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	var results []scoring.MatchupResult
	if upTo > 0 {
		all, err := s.scheduleRepo.ListByLeague(ctx, leagueID)
		if err != nil {
			return StandingsView{}, fmt.Errorf("list league schedule: %w", err)
		}
		played := make([]schedule.Matchup, 0, len(all))
		for _, m := range all {
			if m.Week <= upTo {
				played = append(played, m)
			}
		}
		scores, err := s.scoringRepo.ListWeeklyScoresUpTo(ctx, leagueID, upTo)
		if err != nil {
			return StandingsView{}, fmt.Errorf("list weekly scores: %w", err)
		}
		results = scoring.DeriveMatchups(played, scores)
	}

	return StandingsView{Week: current, Rows: scoring.DeriveStandings(memberIDs, results)}, nil
}

// RunWeekly ensures schedules and scores the current week for every active
// league. One league failing does not stop the others.
func (s *SeasonService) RunWeekly(ctx context.Context) (WeeklyRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.RunWeekly")
	defer span.End()

	leagues, err := s.leagueRepo.ListByStatus(ctx, league.StatusActive)
	if err != nil {
		return WeeklyRunResult{}, fmt.Errorf("list active leagues: %w", err)
	}

	var failed atomic.Int32
	workers := pool.NewWithResults[WeeklyLeagueResult]().WithMaxGoroutines(s.cfg.WeeklyWorkers)
	for _, item := range leagues {
		item := item
		workers.Go(func() WeeklyLeagueResult {
			row, err := s.runLeagueWeek(ctx, item)
			if err != nil {
				failed.Add(1)
				row.Error = err.Error()
				s.logger.WarnContext(ctx, "weekly league run failed", "league_id", item.ID, "error", err)
			}
			return row
		})
	}
	rows := workers.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].LeagueID < rows[j].LeagueID })
	result := WeeklyRunResult{
		LeagueCount: len(leagues),
		FailedCount: int(failed.Load()),
		Leagues:     rows,
	}
	result.Processed = result.LeagueCount - result.FailedCount

	s.logger.InfoContext(ctx, "weekly scoring run finished",
		"league_count", result.LeagueCount,
		"processed", result.Processed,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (s *SeasonService) runLeagueWeek(ctx context.Context, item league.League) (WeeklyLeagueResult, error) {
	week := league.CurrentWeek(item.StartedAt, s.now().UTC())
	row := WeeklyLeagueResult{LeagueID: item.ID, Week: week}

	created, err := s.EnsureSchedule(ctx, item.ID)
	if err != nil {
		return row, err
	}
	row.ScheduleCreated = created

	lastWeek, err := s.scheduleRepo.LastWeek(ctx, item.ID)
	if err != nil {
		return row, fmt.Errorf("get last scheduled week: %w", err)
	}
	if week > lastWeek {
		row.OutsideSeason = true
		return row, nil
	}

	scores, err := s.ComputeWeek(ctx, item.ID, week)
	if err != nil {
		return row, err
	}
	row.ScoredUsers = len(scores)

	matchups, err := s.scheduleRepo.ListByWeek(ctx, item.ID, week)
	if err != nil {
		return row, fmt.Errorf("list week schedule: %w", err)
	}
	s.recordMatchupInsights(ctx, item.ID, week, scoring.DeriveMatchups(matchups, scores))
	return row, nil
}

func (s *SeasonService) recordMatchupInsights(ctx context.Context, leagueID string, week int, results []scoring.MatchupResult) {
	if s.insightRepo == nil || len(results) == 0 {
		return
	}

	now := s.now().UTC()
	items := make([]insight.Insight, 0, len(results)*2)
	for _, r := range results {
		sides := []struct {
			userID string
			own    float64
			other  float64
		}{
			{userID: r.HomeUserID, own: r.HomePoints, other: r.AwayPoints},
			{userID: r.AwayUserID, own: r.AwayPoints, other: r.HomePoints},
		}
		for _, side := range sides {
			insightID, err := s.idGen.NewID()
			if err != nil {
				s.logger.WarnContext(ctx, "generate insight id failed", "league_id", leagueID, "error", err)
				return
			}
			items = append(items, insight.Insight{
				ID:        insightID,
				LeagueID:  leagueID,
				UserID:    side.userID,
				Week:      week,
				EventType: insight.EventMatchup,
				Headline:  "Matchup update",
				Body:      matchupInsightBody(week, side.own, side.other),
				CreatedAt: now,
			})
		}
	}

	if err := s.insightRepo.Insert(ctx, items...); err != nil {
		s.logger.WarnContext(ctx, "record matchup insights failed", "league_id", leagueID, "week", week, "error", err)
	}
}

func matchupInsightBody(week int, own, other float64) string {
	switch {
	case own == other:
		return fmt.Sprintf("Week %d is currently tied (%.2f vs %.2f). Diversify to reduce volatility.", week, own, other)
	case own > other:
		return fmt.Sprintf("Week %d: You are leading (%.2f vs %.2f). Protect the lead by avoiding concentrated risk.", week, own, other)
	default:
		return fmt.Sprintf("Week %d: You are trailing (%.2f vs %.2f). Balance risk buckets and asset kinds to stabilize points.", week, own, other)
	}
}

func (s *SeasonService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return item, nil
}

func (s *SeasonService) requireMember(ctx context.Context, leagueID, userID string) (league.Member, error) {
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
