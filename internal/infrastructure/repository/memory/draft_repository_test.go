package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/stretchr/testify/require"
)

func TestDraftRepository_ApplyCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository()

	state := draft.NewState("lg", draft.Settings{Rounds: 2, PickSeconds: 30})
	first, err := repo.Apply(ctx, draft.Commit{ExpectedVersion: 0, State: state})
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Version)

	_, err = repo.Apply(ctx, draft.Commit{ExpectedVersion: 0, State: state})
	require.ErrorIs(t, err, draft.ErrStaleState)

	_, err = repo.Apply(ctx, draft.Commit{ExpectedVersion: 7, State: state})
	require.ErrorIs(t, err, draft.ErrStaleState)
}

func TestDraftRepository_ConcurrentPickCommitsOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository()

	base, err := repo.Apply(ctx, draft.Commit{
		State: draft.State{LeagueID: "lg", Status: draft.StatusLive, Rounds: 1, PickSeconds: 30},
		Order: []draft.Slot{{LeagueID: "lg", Slot: 1, UserID: "u1"}, {LeagueID: "lg", Slot: 2, UserID: "u2"}},
	})
	require.NoError(t, err)

	const racers = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		stale int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := base
			next.CurrentPick = 1
			_, err := repo.Apply(ctx, draft.Commit{
				ExpectedVersion: base.Version,
				State:           next,
				Pick:            &draft.Pick{LeagueID: "lg", PickNumber: 1, Round: 1, Slot: 1, UserID: "u1", AssetID: "BTC", Source: draft.SourceAuto},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, draft.ErrStaleState):
				stale++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, racers-1, stale)

	picks, err := repo.ListPicks(ctx, "lg")
	require.NoError(t, err)
	require.Len(t, picks, 1)

	roster, err := repo.ListRoster(ctx, "lg", "u1")
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, "BTC", roster[0].AssetID)
}

func TestDraftRepository_RejectsDuplicateAssetAndSkipsRosterForSkip(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository()

	state, err := repo.Apply(ctx, draft.Commit{State: draft.State{LeagueID: "lg", Status: draft.StatusLive, Rounds: 2}})
	require.NoError(t, err)

	next := state
	next.CurrentPick = 1
	state, err = repo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Pick:            &draft.Pick{LeagueID: "lg", PickNumber: 1, UserID: "u1", AssetID: "ETH", Source: draft.SourceUser},
	})
	require.NoError(t, err)

	next = state
	next.CurrentPick = 2
	_, err = repo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Pick:            &draft.Pick{LeagueID: "lg", PickNumber: 2, UserID: "u2", AssetID: "ETH", Source: draft.SourceUser},
	})
	require.ErrorIs(t, err, draft.ErrAssetTaken)

	_, err = repo.Apply(ctx, draft.Commit{
		ExpectedVersion: state.Version,
		State:           next,
		Pick:            &draft.Pick{LeagueID: "lg", PickNumber: 2, UserID: "u2", Source: draft.SourceSkip},
	})
	require.NoError(t, err)

	rosters, err := repo.ListRosters(ctx, "lg")
	require.NoError(t, err)
	require.Len(t, rosters, 1)

	drafted, err := repo.ListDraftedAssetIDs(ctx, "lg")
	require.NoError(t, err)
	require.Equal(t, []string{"ETH"}, drafted)
}
