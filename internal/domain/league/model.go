package league

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusForming  Status = "forming"
	StatusDrafting Status = "drafting"
	StatusActive   Status = "active"
)

type Role string

const (
	RoleCommissioner Role = "commissioner"
	RoleMember       Role = "member"
)

const (
	MinCapacity = 2
	MaxCapacity = 50
)

// League groups members that draft from one asset pool and play a weekly schedule.
type League struct {
	ID           string
	Name         string
	Capacity     int
	Status       Status
	InviteCode   string
	CreatedBy    string
	DraftStartAt *time.Time
	StartedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.Capacity < MinCapacity || l.Capacity > MaxCapacity {
		return fmt.Errorf("league capacity must be between %d and %d", MinCapacity, MaxCapacity)
	}
	switch l.Status {
	case StatusForming, StatusDrafting, StatusActive:
	default:
		return fmt.Errorf("unknown league status %q", l.Status)
	}

	return nil
}

// Member is one user's seat in a league. JoinedAt seeds the default draft order.
type Member struct {
	LeagueID string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

func (m Member) IsCommissioner() bool {
	return m.Role == RoleCommissioner
}
