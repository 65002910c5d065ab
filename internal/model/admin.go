package model

import "time"

// Admin is the single operator account. Credential management beyond a
// bcrypt hash check is out of scope.
type Admin struct {
	ID           string    `json:"admin_id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLog records one admin mutation for post-hoc review.
type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	EventID   *string   `json:"event_id,omitempty"`
	Payload   *string   `json:"payload,omitempty"`
	CreatedAt time.Time `json:"ts"`
}
