package model

import "time"

// Participant is a registered player within one event. The display name
// carries a 4-digit suffix unique within the event so duplicate base names
// stay distinguishable.
type Participant struct {
	ID            string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	DisplayName   string    `json:"display_name"`
	DisplaySuffix string    `json:"display_suffix"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ParticipantSession is the anonymous cookie session created on join.
// UserID stays nil until registration attaches a Participant.
type ParticipantSession struct {
	ID        string    `json:"session_id"`
	EventID   string    `json:"event_id"`
	UserID    *string   `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
