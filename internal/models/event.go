package models

import "time"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	EventType   string    `json:"event_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedBy   string    `json:"created_by"`
	IsApproved  bool      `json:"is_approved"`
	ApprovedBy  *string   `json:"approved_by,omitempty"` // set iff is_approved
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Computed fields (from JOINs)
	CreatorName      string `json:"creator_name,omitempty"`
	ParticipantCount int    `json:"participant_count,omitempty"`
}

// Event type constants
const (
	EventTypeShoot     = "shoot"
	EventTypeScreening = "screening"
	EventTypeOther     = "other"
)

// ValidEventType reports whether t is a known event type.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeShoot, EventTypeScreening, EventTypeOther:
		return true
	}
	return false
}

type EventParticipant struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Computed fields (from JOINs)
	UserName string `json:"user_name,omitempty"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventType   string    `json:"event_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type UpdateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	EventType   string    `json:"event_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}
