package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[string]league.League
	orders  []string
	members map[string][]league.Member
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		items:   make(map[string]league.League),
		members: make(map[string][]league.Member),
	}
}

func (r *LeagueRepository) Create(_ context.Context, item league.League, commissioner league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if item.InviteCode != "" && existing.InviteCode == item.InviteCode {
			return fmt.Errorf("duplicate key value violates unique constraint \"leagues_invite_code_key\"")
		}
	}

	r.items[item.ID] = cloneLeague(item)
	r.orders = append(r.orders, item.ID)
	r.members[item.ID] = []league.Member{commissioner}
	return nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return cloneLeague(item), true, nil
}

func (r *LeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		if item := r.items[id]; item.InviteCode == inviteCode {
			return cloneLeague(item), true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) ListByStatus(_ context.Context, status league.Status) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range r.orders {
		if item := r.items[id]; item.Status == status {
			out = append(out, cloneLeague(item))
		}
	}
	return out, nil
}

func (r *LeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0)
	for _, id := range r.orders {
		for _, m := range r.members[id] {
			if m.UserID == userID {
				out = append(out, cloneLeague(r.items[id]))
				break
			}
		}
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, member league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[member.LeagueID]
	if !ok {
		return fmt.Errorf("league %s not found", member.LeagueID)
	}
	current := r.members[member.LeagueID]
	for _, m := range current {
		if m.UserID == member.UserID {
			return league.ErrDuplicateMember
		}
	}
	if len(current) >= item.Capacity {
		return league.ErrLeagueFull
	}

	r.members[member.LeagueID] = append(current, member)
	return nil
}

func (r *LeagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.members[leagueID] {
		if m.UserID == userID {
			return m, true, nil
		}
	}
	return league.Member{}, false, nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]league.Member(nil), r.members[leagueID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *LeagueRepository) MarkDrafting(_ context.Context, leagueID string, draftStartAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	at := draftStartAt.UTC()
	item.Status = league.StatusDrafting
	item.DraftStartAt = &at
	item.UpdatedAt = at
	r.items[leagueID] = item
	return nil
}

func (r *LeagueRepository) MarkActive(_ context.Context, leagueID string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	at := startedAt.UTC()
	item.Status = league.StatusActive
	if item.StartedAt == nil {
		item.StartedAt = &at
	}
	item.UpdatedAt = at
	r.items[leagueID] = item
	return nil
}

func cloneLeague(item league.League) league.League {
	copied := item
	if item.DraftStartAt != nil {
		at := *item.DraftStartAt
		copied.DraftStartAt = &at
	}
	if item.StartedAt != nil {
		at := *item.StartedAt
		copied.StartedAt = &at
	}
	return copied
}
