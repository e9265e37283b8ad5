package httpapi

import (
	"time"

	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	"github.com/riskibarqy/asset-draft/internal/domain/scoring"
	"github.com/riskibarqy/asset-draft/internal/usecase"
)

type createLeagueRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	Capacity int    `json:"capacity" validate:"omitempty,min=2,max=50"`
}

type joinLeagueRequest struct {
	InviteCode string `json:"invite_code" validate:"required,max=32"`
}

type startDraftRequest struct {
	Rounds           *int `json:"rounds"`
	PickSeconds      *int `json:"pick_seconds"`
	CountdownSeconds *int `json:"countdown_seconds"`
}

type updateDraftSettingsRequest struct {
	Rounds      *int `json:"rounds"`
	PickSeconds *int `json:"pick_seconds"`
}

type pickRequest struct {
	AssetID string `json:"asset_id" validate:"required,max=32"`
}

type setPoolRequest struct {
	AssetIDs []string `json:"asset_ids" validate:"dive,required,max=32"`
}

type internalJobRequest struct {
	LeagueID   string `json:"league_id"`
	DispatchID string `json:"dispatch_id"`
}

type leagueDTO struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Capacity     int        `json:"capacity"`
	Status       string     `json:"status"`
	InviteCode   string     `json:"invite_code"`
	CreatedBy    string     `json:"created_by"`
	DraftStartAt *time.Time `json:"draft_start_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type memberDTO struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type insightDTO struct {
	ID        string    `json:"id"`
	Week      int       `json:"week,omitempty"`
	EventType string    `json:"event_type"`
	Headline  string    `json:"headline"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type draftStateDTO struct {
	LeagueID     string     `json:"league_id"`
	Status       string     `json:"status"`
	Rounds       int        `json:"rounds"`
	PickSeconds  int        `json:"pick_seconds"`
	CurrentPick  int        `json:"current_pick"`
	PickDeadline *time.Time `json:"pick_deadline,omitempty"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	Version      int64      `json:"version"`
}

type draftSlotDTO struct {
	Slot   int    `json:"slot"`
	UserID string `json:"user_id"`
}

type draftPickDTO struct {
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	Slot       int       `json:"slot"`
	UserID     string    `json:"user_id"`
	AssetID    string    `json:"asset_id,omitempty"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

type draftBoardDTO struct {
	State            draftStateDTO  `json:"state"`
	Order            []draftSlotDTO `json:"order"`
	Picks            []draftPickDTO `json:"picks"`
	TotalPicks       int            `json:"total_picks"`
	OnTheClockUserID string         `json:"on_the_clock_user_id,omitempty"`
	OnTheClockPick   int            `json:"on_the_clock_pick,omitempty"`
	RemainingSeconds int            `json:"remaining_seconds"`
}

type tickResultDTO struct {
	LeagueID string        `json:"league_id"`
	Outcome  string        `json:"outcome"`
	State    draftStateDTO `json:"state"`
	Pick     *draftPickDTO `json:"pick,omitempty"`
}

type assetDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Risk       string `json:"risk_bucket"`
	KrakenPair string `json:"kraken_pair,omitempty"`
}

type quoteDTO struct {
	assetDTO
	Price *float64   `json:"price,omitempty"`
	AsOf  *time.Time `json:"as_of,omitempty"`
}

type matchupDTO struct {
	Week         int     `json:"week"`
	HomeUserID   string  `json:"home_user_id"`
	AwayUserID   string  `json:"away_user_id"`
	HomePoints   float64 `json:"home_points"`
	AwayPoints   float64 `json:"away_points"`
	WinnerUserID string  `json:"winner_user_id,omitempty"`
}

type matchupsDTO struct {
	Week     int          `json:"week"`
	Matchups []matchupDTO `json:"matchups"`
}

type standingDTO struct {
	Rank      int     `json:"rank"`
	UserID    string  `json:"user_id"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Ties      int     `json:"ties"`
	PointsFor float64 `json:"points_for"`
}

type standingsDTO struct {
	Week int           `json:"week"`
	Rows []standingDTO `json:"rows"`
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:           v.ID,
		Name:         v.Name,
		Capacity:     v.Capacity,
		Status:       string(v.Status),
		InviteCode:   v.InviteCode,
		CreatedBy:    v.CreatedBy,
		DraftStartAt: v.DraftStartAt,
		StartedAt:    v.StartedAt,
		CreatedAt:    v.CreatedAt,
	}
}

func membersToDTO(items []league.Member) []memberDTO {
	out := make([]memberDTO, 0, len(items))
	for _, m := range items {
		out = append(out, memberDTO{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt})
	}
	return out
}

func insightsToDTO(items []insight.Insight) []insightDTO {
	out := make([]insightDTO, 0, len(items))
	for _, item := range items {
		out = append(out, insightDTO{
			ID:        item.ID,
			Week:      item.Week,
			EventType: string(item.EventType),
			Headline:  item.Headline,
			Body:      item.Body,
			CreatedAt: item.CreatedAt,
		})
	}
	return out
}

func draftStateToDTO(v draft.State) draftStateDTO {
	return draftStateDTO{
		LeagueID:     v.LeagueID,
		Status:       string(v.Status),
		Rounds:       v.Rounds,
		PickSeconds:  v.PickSeconds,
		CurrentPick:  v.CurrentPick,
		PickDeadline: v.PickDeadline,
		StartsAt:     v.StartsAt,
		Version:      v.Version,
	}
}

func draftSlotsToDTO(items []draft.Slot) []draftSlotDTO {
	out := make([]draftSlotDTO, 0, len(items))
	for _, s := range items {
		out = append(out, draftSlotDTO{Slot: s.Slot, UserID: s.UserID})
	}
	return out
}

func draftPickToDTO(p draft.Pick) draftPickDTO {
	return draftPickDTO{
		PickNumber: p.PickNumber,
		Round:      p.Round,
		Slot:       p.Slot,
		UserID:     p.UserID,
		AssetID:    p.AssetID,
		Source:     string(p.Source),
		CreatedAt:  p.CreatedAt,
	}
}

func draftBoardToDTO(b usecase.DraftBoard) draftBoardDTO {
	picks := make([]draftPickDTO, 0, len(b.Picks))
	for _, p := range b.Picks {
		picks = append(picks, draftPickToDTO(p))
	}
	return draftBoardDTO{
		State:            draftStateToDTO(b.State),
		Order:            draftSlotsToDTO(b.Order),
		Picks:            picks,
		TotalPicks:       b.TotalPicks,
		OnTheClockUserID: b.OnTheClockUserID,
		OnTheClockPick:   b.OnTheClockPick,
		RemainingSeconds: b.RemainingSeconds,
	}
}

func tickResultToDTO(r usecase.TickResult) tickResultDTO {
	out := tickResultDTO{
		LeagueID: r.LeagueID,
		Outcome:  string(r.Outcome),
		State:    draftStateToDTO(r.State),
	}
	if r.Pick != nil {
		pick := draftPickToDTO(*r.Pick)
		out.Pick = &pick
	}
	return out
}

func assetToDTO(a asset.Asset) assetDTO {
	return assetDTO{
		ID:         a.ID,
		Name:       a.Name,
		Kind:       string(a.Kind),
		Risk:       string(a.Risk),
		KrakenPair: a.KrakenPair,
	}
}

func assetsToDTO(items []asset.Asset) []assetDTO {
	out := make([]assetDTO, 0, len(items))
	for _, a := range items {
		out = append(out, assetToDTO(a))
	}
	return out
}

func quotesToDTO(items []usecase.AssetQuote) []quoteDTO {
	out := make([]quoteDTO, 0, len(items))
	for _, q := range items {
		item := quoteDTO{assetDTO: assetToDTO(q.Asset)}
		if q.Price != nil {
			price, asOf := q.Price.Price, q.Price.AsOf
			item.Price = &price
			item.AsOf = &asOf
		}
		out = append(out, item)
	}
	return out
}

func matchupsToDTO(v usecase.MatchupsView) matchupsDTO {
	items := make([]matchupDTO, 0, len(v.Results))
	for _, m := range v.Results {
		items = append(items, matchupResultToDTO(m))
	}
	return matchupsDTO{Week: v.Week, Matchups: items}
}

func matchupResultToDTO(m scoring.MatchupResult) matchupDTO {
	return matchupDTO{
		Week:         m.Week,
		HomeUserID:   m.HomeUserID,
		AwayUserID:   m.AwayUserID,
		HomePoints:   m.HomePoints,
		AwayPoints:   m.AwayPoints,
		WinnerUserID: m.WinnerUserID,
	}
}

func standingsToDTO(v usecase.StandingsView) standingsDTO {
	rows := make([]standingDTO, 0, len(v.Rows))
	for i, row := range v.Rows {
		rows = append(rows, standingDTO{
			Rank:      i + 1,
			UserID:    row.UserID,
			Wins:      row.Wins,
			Losses:    row.Losses,
			Ties:      row.Ties,
			PointsFor: row.PointsFor,
		})
	}
	return standingsDTO{Week: v.Week, Rows: rows}
}
