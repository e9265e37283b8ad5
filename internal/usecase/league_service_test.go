package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/memory"
)

func TestLeagueService_CreateAndJoin(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository()
	service := NewLeagueService(leagueRepo, memory.NewInsightRepository(), &sequenceIDGenerator{prefix: "lg"})

	firstNow := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return firstNow }

	created, err := service.CreateLeague(ctx, CreateLeagueInput{UserID: "u1", Name: "  Index Hunters ", Capacity: 3})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	if created.Name != "Index Hunters" || created.Status != league.StatusForming || created.InviteCode == "" {
		t.Fatalf("unexpected league: %+v", created)
	}

	secondNow := firstNow.Add(time.Minute)
	service.now = func() time.Time { return secondNow }

	joined, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u2", InviteCode: created.InviteCode})
	if err != nil {
		t.Fatalf("join league: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("joined league id = %s, want %s", joined.ID, created.ID)
	}

	if _, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u2", InviteCode: created.InviteCode}); err != nil {
		t.Fatalf("rejoin must be idempotent: %v", err)
	}

	members, err := service.ListMembers(ctx, created.ID, "u2")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0].UserID != "u1" || members[1].UserID != "u2" {
		t.Fatalf("unexpected members: %+v", members)
	}

	mine, err := service.ListMyLeagues(ctx, "u2")
	if err != nil {
		t.Fatalf("list my leagues: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("unexpected leagues for u2: %+v", mine)
	}
}

func TestLeagueService_CreateLeagueValidation(t *testing.T) {
	service := NewLeagueService(memory.NewLeagueRepository(), memory.NewInsightRepository(), nil)

	tests := []struct {
		name      string
		input     CreateLeagueInput
		targetErr error
	}{
		{name: "missing user", input: CreateLeagueInput{Name: "A"}, targetErr: ErrUnauthorized},
		{name: "missing name", input: CreateLeagueInput{UserID: "u1"}, targetErr: ErrInvalidInput},
		{name: "capacity too small", input: CreateLeagueInput{UserID: "u1", Name: "A", Capacity: 1}, targetErr: ErrInvalidInput},
		{name: "capacity too large", input: CreateLeagueInput{UserID: "u1", Name: "A", Capacity: 51}, targetErr: ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateLeague(context.Background(), tc.input)
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestLeagueService_JoinLeagueRejections(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository()
	service := NewLeagueService(leagueRepo, memory.NewInsightRepository(), nil)

	created, err := service.CreateLeague(ctx, CreateLeagueInput{UserID: "u1", Name: "Pair", Capacity: 2})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}

	if _, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u2", InviteCode: "NOPE1234"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u2", InviteCode: created.InviteCode}); err != nil {
		t.Fatalf("join league: %v", err)
	}
	if _, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u3", InviteCode: created.InviteCode}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for full league, got %v", err)
	}

	if err := leagueRepo.MarkDrafting(ctx, created.ID, time.Now()); err != nil {
		t.Fatalf("mark drafting: %v", err)
	}
	if _, err := service.JoinLeague(ctx, JoinLeagueInput{UserID: "u4", InviteCode: created.InviteCode}); !errors.Is(err, ErrLeagueClosed) {
		t.Fatalf("expected ErrLeagueClosed, got %v", err)
	}
}

func TestLeagueService_ListInsights(t *testing.T) {
	ctx := context.Background()
	leagueRepo := memory.NewLeagueRepository()
	insightRepo := memory.NewInsightRepository()
	service := NewLeagueService(leagueRepo, insightRepo, &sequenceIDGenerator{prefix: "lg"})

	created, err := service.CreateLeague(ctx, CreateLeagueInput{UserID: "u1", Name: "Notes"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if err := insightRepo.Insert(ctx,
		insight.Insight{ID: "i1", LeagueID: created.ID, UserID: "u1", EventType: insight.EventRosterChange, Headline: "old", CreatedAt: base},
		insight.Insight{ID: "i2", LeagueID: created.ID, UserID: "u1", EventType: insight.EventMatchup, Headline: "new", CreatedAt: base.Add(time.Hour)},
		insight.Insight{ID: "i3", LeagueID: created.ID, UserID: "u9", EventType: insight.EventMatchup, Headline: "other", CreatedAt: base},
	); err != nil {
		t.Fatalf("insert insights: %v", err)
	}

	items, err := service.ListInsights(ctx, created.ID, "u1")
	if err != nil {
		t.Fatalf("list insights: %v", err)
	}
	if len(items) != 2 || items[0].ID != "i2" || items[1].ID != "i1" {
		t.Fatalf("unexpected insights: %+v", items)
	}

	if _, err := service.ListInsights(ctx, created.ID, "u9"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}
