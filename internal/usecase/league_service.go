package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	idgen "github.com/riskibarqy/asset-draft/internal/platform/id"
)

const (
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength   = 8
	defaultLeagueSize  = 12
	insightListLimit   = 20
	inviteCodeAttempts = 3
)

var ErrLeagueClosed = fmt.Errorf("%w: league no longer accepts members", ErrConflict)

type CreateLeagueInput struct {
	UserID   string
	Name     string
	Capacity int
}

type JoinLeagueInput struct {
	UserID     string
	InviteCode string
}

type LeagueService struct {
	leagueRepo  league.Repository
	insightRepo insight.Repository
	idGen       idgen.Generator
	now         func() time.Time
}

func NewLeagueService(leagueRepo league.Repository, insightRepo insight.Repository, idGen idgen.Generator) *LeagueService {
	if idGen == nil {
		idGen = idgen.NewUUIDGenerator()
	}
	return &LeagueService{
		leagueRepo:  leagueRepo,
		insightRepo: insightRepo,
		idGen:       idGen,
		now:         time.Now,
	}
}

// CreateLeague creates a forming league and seats the creator as commissioner.
func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.CreateLeague")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if input.Capacity == 0 {
		input.Capacity = defaultLeagueSize
	}
	if input.Capacity < league.MinCapacity || input.Capacity > league.MaxCapacity {
		return league.League{}, fmt.Errorf("%w: capacity must be between %d and %d", ErrInvalidInput, league.MinCapacity, league.MaxCapacity)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	now := s.now().UTC()
	item := league.League{
		ID:        leagueID,
		Name:      input.Name,
		Capacity:  input.Capacity,
		Status:    league.StatusForming,
		CreatedBy: input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	commissioner := league.Member{
		LeagueID: leagueID,
		UserID:   input.UserID,
		Role:     league.RoleCommissioner,
		JoinedAt: now,
	}

	for attempt := 1; ; attempt++ {
		item.InviteCode, err = generateInviteCode(ctx, inviteCodeLength)
		if err != nil {
			return league.League{}, fmt.Errorf("generate invite code: %w", err)
		}
		if err := item.Validate(); err != nil {
			return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		err = s.leagueRepo.Create(ctx, item, commissioner)
		if err == nil {
			return item, nil
		}
		if !isDuplicateConstraintError(err) || attempt >= inviteCodeAttempts {
			return league.League{}, fmt.Errorf("create league: %w", err)
		}
	}
}

// JoinLeague seats the caller as a member. Only forming leagues accept members.
func (s *LeagueService) JoinLeague(ctx context.Context, input JoinLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.JoinLeague")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.InviteCode = strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	if input.InviteCode == "" {
		return league.League{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	item, exists, err := s.leagueRepo.GetByInviteCode(ctx, input.InviteCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by invite code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league not found for invite code", ErrNotFound)
	}

	_, isMember, err := s.leagueRepo.GetMember(ctx, item.ID, input.UserID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league member: %w", err)
	}
	if isMember {
		return item, nil
	}
	if item.Status != league.StatusForming {
		return league.League{}, ErrLeagueClosed
	}

	err = s.leagueRepo.AddMember(ctx, league.Member{
		LeagueID: item.ID,
		UserID:   input.UserID,
		Role:     league.RoleMember,
		JoinedAt: s.now().UTC(),
	})
	switch {
	case err == nil, errors.Is(err, league.ErrDuplicateMember):
		return item, nil
	case errors.Is(err, league.ErrLeagueFull):
		return league.League{}, fmt.Errorf("%w: league is full", ErrConflict)
	default:
		return league.League{}, fmt.Errorf("add league member: %w", err)
	}
}

func (s *LeagueService) ListMyLeagues(ctx context.Context, userID string) ([]league.League, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}

	items, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}
	return items, nil
}

func (s *LeagueService) ListMembers(ctx context.Context, leagueID, userID string) ([]league.Member, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if err := s.requireMembership(ctx, leagueID, userID); err != nil {
		return nil, err
	}

	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}
	return members, nil
}

// ListInsights returns the caller's most recent coaching notices in a league.
func (s *LeagueService) ListInsights(ctx context.Context, leagueID, userID string) ([]insight.Insight, error) {
	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if err := s.requireMembership(ctx, leagueID, userID); err != nil {
		return nil, err
	}

	items, err := s.insightRepo.ListRecent(ctx, leagueID, userID, insightListLimit)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return items, nil
}

func (s *LeagueService) requireMembership(ctx context.Context, leagueID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrUnauthorized)
	}
	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	_, isMember, err := s.leagueRepo.GetMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("get league member: %w", err)
	}
	if !isMember {
		return ErrNotMember
	}
	return nil
}

func generateInviteCode(ctx context.Context, length int) (string, error) {
	_ = ctx
	if length < 6 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(out), nil
}

func isDuplicateConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key value violates unique constraint")
}
