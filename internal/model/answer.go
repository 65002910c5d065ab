package model

import "time"

// RejectReasonDeadline marks a submission that arrived past the deadline
// grace window. A late answer is normal traffic, not an error.
const RejectReasonDeadline = "deadline_passed"

// Answer records one submission attempt for an (event, question, participant)
// triple. Rows are append-only: a second attempt for the same triple is
// rejected by the unique constraint, never merged.
type Answer struct {
	ID          string    `json:"-"`
	EventID     string    `json:"-"`
	QuestionID  string    `json:"question_id"`
	UserID      string    `json:"-"`
	ChoiceIndex int       `json:"choice_index"`
	DeliveredAt time.Time `json:"delivered_at"`
	SubmittedAt time.Time `json:"submitted_at"`
	Accepted    bool      `json:"accepted"`
	// RejectReason is set only when Accepted is false.
	RejectReason *string `json:"reject_reason,omitempty"`
	// IsCorrect stays nil for rejected answers — they are never scored.
	IsCorrect *bool `json:"is_correct,omitempty"`
	// ResponseTimeSec is submitted-delivered, rounded to one decimal.
	// Nil when the timing could not be computed.
	ResponseTimeSec *float64 `json:"response_time_sec,omitempty"`
}
