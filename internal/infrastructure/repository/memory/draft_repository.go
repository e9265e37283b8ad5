package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/asset-draft/internal/domain/draft"
)

// DraftRepository serialises every commit behind one mutex, which gives the
// same compare-and-swap semantics as the conditional update in Postgres.
type DraftRepository struct {
	mu      sync.RWMutex
	states  map[string]draft.State
	orders  map[string][]draft.Slot
	picks   map[string][]draft.Pick
	rosters map[string][]draft.RosterEntry
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{
		states:  make(map[string]draft.State),
		orders:  make(map[string][]draft.Slot),
		picks:   make(map[string][]draft.Pick),
		rosters: make(map[string][]draft.RosterEntry),
	}
}

func (r *DraftRepository) GetState(_ context.Context, leagueID string) (draft.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[leagueID]
	if !ok {
		return draft.State{}, false, nil
	}
	return cloneState(state), true, nil
}

func (r *DraftRepository) ListStatesByStatus(_ context.Context, statuses ...draft.Status) ([]draft.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[draft.Status]struct{}, len(statuses))
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	out := make([]draft.State, 0)
	for _, state := range r.states {
		if _, ok := wanted[state.Status]; ok {
			out = append(out, cloneState(state))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeagueID < out[j].LeagueID })
	return out, nil
}

func (r *DraftRepository) Apply(_ context.Context, commit draft.Commit) (draft.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leagueID := commit.State.LeagueID
	current, exists := r.states[leagueID]
	switch {
	case commit.ExpectedVersion == 0 && exists:
		return draft.State{}, draft.ErrStaleState
	case commit.ExpectedVersion > 0 && (!exists || current.Version != commit.ExpectedVersion):
		return draft.State{}, draft.ErrStaleState
	}

	if commit.Pick != nil {
		for _, p := range r.picks[leagueID] {
			if p.PickNumber == commit.Pick.PickNumber {
				return draft.State{}, draft.ErrPickTaken
			}
			if !commit.Pick.IsSkip() && p.AssetID == commit.Pick.AssetID {
				return draft.State{}, draft.ErrAssetTaken
			}
		}
	}

	next := cloneState(commit.State)
	next.Version = commit.ExpectedVersion + 1
	r.states[leagueID] = next

	if commit.Order != nil {
		r.orders[leagueID] = append([]draft.Slot(nil), commit.Order...)
	}
	if commit.Pick != nil {
		pick := *commit.Pick
		r.picks[leagueID] = append(r.picks[leagueID], pick)
		if !pick.IsSkip() {
			r.rosters[leagueID] = append(r.rosters[leagueID], draft.RosterEntry{
				LeagueID:   leagueID,
				UserID:     pick.UserID,
				AssetID:    pick.AssetID,
				PickNumber: pick.PickNumber,
				AcquiredAt: pick.CreatedAt,
			})
		}
	}

	return cloneState(next), nil
}

func (r *DraftRepository) ListOrder(_ context.Context, leagueID string) ([]draft.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]draft.Slot(nil), r.orders[leagueID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out, nil
}

func (r *DraftRepository) ListPicks(_ context.Context, leagueID string) ([]draft.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]draft.Pick(nil), r.picks[leagueID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].PickNumber < out[j].PickNumber })
	return out, nil
}

func (r *DraftRepository) ListDraftedAssetIDs(_ context.Context, leagueID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.picks[leagueID]))
	for _, p := range r.picks[leagueID] {
		if !p.IsSkip() {
			out = append(out, p.AssetID)
		}
	}
	return out, nil
}

func (r *DraftRepository) ListRoster(_ context.Context, leagueID, userID string) ([]draft.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]draft.RosterEntry, 0)
	for _, entry := range r.rosters[leagueID] {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *DraftRepository) ListRosters(_ context.Context, leagueID string) ([]draft.RosterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]draft.RosterEntry(nil), r.rosters[leagueID]...), nil
}

func cloneState(state draft.State) draft.State {
	copied := state
	if state.PickDeadline != nil {
		at := *state.PickDeadline
		copied.PickDeadline = &at
	}
	if state.StartsAt != nil {
		at := *state.StartsAt
		copied.StartsAt = &at
	}
	return copied
}
