package draft

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusCountdown  Status = "countdown"
	StatusLive       Status = "live"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

type Source string

const (
	SourceUser         Source = "user"
	SourceAuto         Source = "auto"
	SourceCommissioner Source = "commissioner"
	SourceSkip         Source = "skip"
)

const (
	MinPickSeconds = 10
	MaxPickSeconds = 180
	MinRounds      = 1
	MaxRounds      = 30
)

// Settings are the tunable parameters of a draft.
type Settings struct {
	Rounds           int
	PickSeconds      int
	CountdownSeconds int
}

func (s Settings) Validate() error {
	if s.Rounds < MinRounds || s.Rounds > MaxRounds {
		return fmt.Errorf("rounds must be between %d and %d", MinRounds, MaxRounds)
	}
	if s.PickSeconds < MinPickSeconds || s.PickSeconds > MaxPickSeconds {
		return fmt.Errorf("pick seconds must be between %d and %d", MinPickSeconds, MaxPickSeconds)
	}
	if s.CountdownSeconds < 0 {
		return fmt.Errorf("countdown seconds must be >= 0")
	}
	return nil
}

// State is the per-league draft singleton. Version increases by one on every
// committed change and guards concurrent writers.
type State struct {
	LeagueID     string
	Status       Status
	Rounds       int
	PickSeconds  int
	CurrentPick  int
	PickDeadline *time.Time
	StartsAt     *time.Time
	Version      int64
	UpdatedAt    time.Time
}

// NewState is the implicit state of a league whose draft was never touched.
func NewState(leagueID string, defaults Settings) State {
	return State{
		LeagueID:    leagueID,
		Status:      StatusNotStarted,
		Rounds:      defaults.Rounds,
		PickSeconds: defaults.PickSeconds,
	}
}

func (s State) IsTerminal() bool {
	return s.Status == StatusCompleted
}

// DeadlineFrom returns now plus the configured pick duration.
func (s State) DeadlineFrom(now time.Time) time.Time {
	return now.Add(time.Duration(s.PickSeconds) * time.Second)
}

// Slot maps a draft-order position to a member.
type Slot struct {
	LeagueID string
	Slot     int
	UserID   string
}

// Pick is an append-only draft record. AssetID is empty for skipped picks.
type Pick struct {
	ID         string
	LeagueID   string
	PickNumber int
	Round      int
	Slot       int
	UserID     string
	AssetID    string
	Source     Source
	CreatedAt  time.Time
}

func (p Pick) IsSkip() bool {
	return p.AssetID == ""
}

// RosterEntry records ownership of a drafted asset.
type RosterEntry struct {
	LeagueID   string
	UserID     string
	AssetID    string
	PickNumber int
	AcquiredAt time.Time
}

// SlotOwner returns the member holding slot, if any.
func SlotOwner(order []Slot, slot int) (string, bool) {
	for _, s := range order {
		if s.Slot == slot {
			return s.UserID, true
		}
	}
	return "", false
}
