package insight

import (
	"context"
	"time"
)

type EventType string

const (
	EventRosterChange EventType = "roster_change"
	EventMatchup      EventType = "matchup"
)

// Insight is a short coaching notice addressed to one league member.
type Insight struct {
	ID        string
	LeagueID  string
	UserID    string
	Week      int
	EventType EventType
	Headline  string
	Body      string
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, items ...Insight) error
	// ListRecent returns newest first.
	ListRecent(ctx context.Context, leagueID, userID string, limit int) ([]Insight, error)
}
