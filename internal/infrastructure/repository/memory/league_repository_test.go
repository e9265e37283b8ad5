package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/league"
)

func TestLeagueRepository_MembersAndCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	item := league.League{ID: "lg", Name: "Test", Capacity: 2, Status: league.StatusForming, InviteCode: "ABCDEFGH"}
	if err := repo.Create(ctx, item, league.Member{LeagueID: "lg", UserID: "boss", Role: league.RoleCommissioner, JoinedAt: base}); err != nil {
		t.Fatalf("create league: %v", err)
	}

	if err := repo.AddMember(ctx, league.Member{LeagueID: "lg", UserID: "boss", Role: league.RoleMember, JoinedAt: base}); !errors.Is(err, league.ErrDuplicateMember) {
		t.Fatalf("expected ErrDuplicateMember, got %v", err)
	}
	if err := repo.AddMember(ctx, league.Member{LeagueID: "lg", UserID: "u2", Role: league.RoleMember, JoinedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := repo.AddMember(ctx, league.Member{LeagueID: "lg", UserID: "u3", Role: league.RoleMember, JoinedAt: base.Add(2 * time.Minute)}); !errors.Is(err, league.ErrLeagueFull) {
		t.Fatalf("expected ErrLeagueFull, got %v", err)
	}

	members, err := repo.ListMembers(ctx, "lg")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].UserID != "boss" || members[1].UserID != "u2" {
		t.Fatalf("unexpected members order: %+v", members)
	}

	got, ok, err := repo.GetByInviteCode(ctx, "ABCDEFGH")
	if err != nil || !ok || got.ID != "lg" {
		t.Fatalf("get by invite code: ok=%v err=%v league=%+v", ok, err, got)
	}
}

func TestLeagueRepository_MarkActiveKeepsFirstStart(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository()
	if err := repo.Create(ctx, league.League{ID: "lg", Name: "Test", Capacity: 4, Status: league.StatusForming}, league.Member{LeagueID: "lg", UserID: "boss", Role: league.RoleCommissioner}); err != nil {
		t.Fatalf("create league: %v", err)
	}

	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.MarkActive(ctx, "lg", first); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	if err := repo.MarkActive(ctx, "lg", first.Add(48*time.Hour)); err != nil {
		t.Fatalf("mark active again: %v", err)
	}

	got, _, _ := repo.GetByID(ctx, "lg")
	if got.Status != league.StatusActive {
		t.Fatalf("status = %s, want active", got.Status)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(first) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, first)
	}
}
