package league

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateMember = errors.New("member already joined league")
	ErrLeagueFull      = errors.New("league is full")
)

// Repository describes league persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, league League, commissioner Member) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]League, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)

	// AddMember enforces capacity and returns ErrLeagueFull or ErrDuplicateMember.
	AddMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	// ListMembers returns members ordered by join time.
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)

	MarkDrafting(ctx context.Context, leagueID string, draftStartAt time.Time) error
	// MarkActive keeps an existing StartedAt.
	MarkActive(ctx context.Context, leagueID string, startedAt time.Time) error
}
