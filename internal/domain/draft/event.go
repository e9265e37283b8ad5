package draft

import "time"

type EventType string

const (
	EventDraftStarted    EventType = "draft.started"
	EventDraftLive       EventType = "draft.live"
	EventOrderRandomized EventType = "draft.order_randomized"
	EventPickMade        EventType = "draft.pick_made"
	EventDraftPaused     EventType = "draft.paused"
	EventDraftResumed    EventType = "draft.resumed"
	EventSettingsChanged EventType = "draft.settings_changed"
	EventDraftCompleted  EventType = "draft.completed"
)

// Event is emitted after a committed draft transition.
type Event struct {
	Type       EventType `json:"type"`
	LeagueID   string    `json:"league_id"`
	Status     Status    `json:"status"`
	PickNumber int       `json:"pick_number,omitempty"`
	Round      int       `json:"round,omitempty"`
	Slot       int       `json:"slot,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	AssetID    string    `json:"asset_id,omitempty"`
	Source     Source    `json:"source,omitempty"`
	Notice     string    `json:"notice,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
