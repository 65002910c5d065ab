package model

import "time"

// EventState enumerates the lifecycle states of a quiz event.
type EventState string

const (
	EventStateWaiting  EventState = "waiting"
	EventStateRunning  EventState = "running"
	EventStateFinished EventState = "finished"
	EventStateAborted  EventState = "aborted"
)

// Terminal reports whether no further progression is possible from s.
func (s EventState) Terminal() bool {
	return s == EventStateFinished || s == EventStateAborted
}

// Event is one running instance of a quiz session with a fixed ordered
// question list. CurrentQuestionID is non-nil only while a question is
// active during the running state.
type Event struct {
	ID           string     `json:"event_id"`
	Title        string     `json:"title"`
	JoinCode     string     `json:"-"`
	TimeLimitSec int        `json:"time_limit_sec"`
	State        EventState `json:"state"`

	CurrentQuestionID *string    `json:"current_question_id,omitempty"`
	CurrentIndex      int        `json:"current_index"`
	ShownAt           *time.Time `json:"question_started_at,omitempty"`
	DeadlineAt        *time.Time `json:"answer_deadline_at,omitempty"`
	Revealed          bool       `json:"revealed"`
	Closed            bool       `json:"closed"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EventQuestion binds a question to an event at a fixed sort position.
// The sequence is immutable once the event has started; that rule lives
// in the service layer, not the schema.
type EventQuestion struct {
	EventID    string `json:"event_id"`
	QuestionID string `json:"question_id"`
	SortOrder  int    `json:"sort_order"`
}
