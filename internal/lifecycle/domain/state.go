package domain

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// State is embedded by every record that can be moved through the recycle bin.
type State struct {
	Status    Status     `json:"status"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

func (s State) LifecycleStatus() Status { return s.Status }

func (s State) IsDeleted() bool { return s.Status == StatusDeleted }

func (s State) DeletedTime() *time.Time { return s.DeletedAt }

func (s *State) MarkDeleted(at time.Time) {
	at = at.UTC()
	s.Status = StatusDeleted
	s.DeletedAt = &at
}

// MarkRestored always returns the record to active, an inactive product
// comes back active.
func (s *State) MarkRestored() {
	s.Status = StatusActive
	s.DeletedAt = nil
}

// CloneState returns a copy that shares no pointers with s.
func (s State) CloneState() State {
	out := State{Status: s.Status}
	if s.DeletedAt != nil {
		at := *s.DeletedAt
		out.DeletedAt = &at
	}
	return out
}

// Deletable is implemented by pointers to records embedding State.
type Deletable interface {
	LifecycleStatus() Status
	DeletedTime() *time.Time
	MarkDeleted(at time.Time)
	MarkRestored()
	DisplayName() string
}
