package draft

import (
	"context"
	"errors"
)

var (
	// ErrStaleState means the stored version no longer matches the expected one;
	// another writer already committed.
	ErrStaleState = errors.New("draft state changed concurrently")
	// ErrAssetTaken means the asset already belongs to a pick in the league.
	ErrAssetTaken = errors.New("asset already drafted in league")
	// ErrPickTaken means the pick number was already recorded.
	ErrPickTaken = errors.New("pick number already recorded")
)

// Commit is one atomic draft mutation. It applies only when the stored state
// version equals ExpectedVersion; ExpectedVersion 0 requires that no state exists.
// On success the stored version becomes ExpectedVersion+1.
type Commit struct {
	ExpectedVersion int64
	State           State
	// Order replaces the draft order when non-nil.
	Order []Slot
	// Pick is appended when non-nil, together with its roster entry unless it is a skip.
	Pick *Pick
}

type Repository interface {
	GetState(ctx context.Context, leagueID string) (State, bool, error)
	ListStatesByStatus(ctx context.Context, statuses ...Status) ([]State, error)
	Apply(ctx context.Context, commit Commit) (State, error)

	ListOrder(ctx context.Context, leagueID string) ([]Slot, error)
	ListPicks(ctx context.Context, leagueID string) ([]Pick, error)
	ListDraftedAssetIDs(ctx context.Context, leagueID string) ([]string, error)
	ListRoster(ctx context.Context, leagueID, userID string) ([]RosterEntry, error)
	ListRosters(ctx context.Context, leagueID string) ([]RosterEntry, error)
}
