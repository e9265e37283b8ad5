package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
)

// AutoPickChoice is the selector's answer for one member.
type AutoPickChoice struct {
	Asset   asset.Asset
	Score   int
	Profile draft.RosterProfile
}

// AutoPickSelector loads pool, drafted set and roster for a league and
// delegates candidate scoring to a draft.PickScorer.
type AutoPickSelector struct {
	assetRepo asset.Repository
	draftRepo draft.Repository
	scorer    draft.PickScorer
}

func NewAutoPickSelector(assetRepo asset.Repository, draftRepo draft.Repository, scorer draft.PickScorer) *AutoPickSelector {
	if scorer == nil {
		scorer = draft.DiversificationScorer{}
	}
	return &AutoPickSelector{
		assetRepo: assetRepo,
		draftRepo: draftRepo,
		scorer:    scorer,
	}
}

// Select returns false when no asset is left to draft; the caller records a skip.
func (s *AutoPickSelector) Select(ctx context.Context, leagueID, userID string) (AutoPickChoice, bool, error) {
	available, err := s.Available(ctx, leagueID)
	if err != nil {
		return AutoPickChoice{}, false, err
	}
	if len(available) == 0 {
		return AutoPickChoice{}, false, nil
	}

	roster, err := s.draftRepo.ListRoster(ctx, leagueID, userID)
	if err != nil {
		return AutoPickChoice{}, false, fmt.Errorf("list roster league=%s user=%s: %w", leagueID, userID, err)
	}
	rosterIDs := make([]string, 0, len(roster))
	for _, entry := range roster {
		rosterIDs = append(rosterIDs, entry.AssetID)
	}

	var owned []asset.Asset
	if len(rosterIDs) > 0 {
		owned, err = s.assetRepo.GetByIDs(ctx, rosterIDs)
		if err != nil {
			return AutoPickChoice{}, false, fmt.Errorf("get roster assets: %w", err)
		}
	}

	profile := draft.BuildRosterProfile(owned)
	best, score, ok := draft.SelectBest(available, profile, s.scorer)
	if !ok {
		return AutoPickChoice{}, false, nil
	}

	return AutoPickChoice{Asset: best, Score: score, Profile: profile}, true, nil
}

// Available is the allowed pool minus every asset drafted in the league,
// ordered by kind then id.
func (s *AutoPickSelector) Available(ctx context.Context, leagueID string) ([]asset.Asset, error) {
	pool, err := s.assetRepo.ListPool(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league pool: %w", err)
	}
	active, err := s.assetRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active assets: %w", err)
	}
	drafted, err := s.draftRepo.ListDraftedAssetIDs(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list drafted assets: %w", err)
	}

	taken := make(map[string]struct{}, len(drafted))
	for _, id := range drafted {
		taken[id] = struct{}{}
	}

	allowed := asset.AllowedPool(pool, active)
	out := make([]asset.Asset, 0, len(allowed))
	for _, item := range allowed {
		if _, ok := taken[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
