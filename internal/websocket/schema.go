package websocket

import (
	"time"

	"github.com/quizlive/quizlive-backend/internal/model"
)

// ─── Events (Server → Client) ───────────────────────────────────────
//
// The push channel is one-directional: participants only ever receive.
// Client→server traffic goes through the HTTP API.

type Event string

const (
	EventStateChanged     Event = "event.state_changed"
	EventQuestionShown    Event = "question.shown"
	EventQuestionClosed   Event = "question.closed"
	EventQuestionRevealed Event = "question.revealed"
	EventFinished         Event = "event.finished"
)

// Envelope is the wire frame for every broadcast message.
type Envelope struct {
	Type Event       `json:"type"`
	Data interface{} `json:"data"`
}

type StateChangedData struct {
	State      model.EventState `json:"state"`
	ServerTime time.Time        `json:"server_time"`
}

// QuestionShownData carries the question payload without the correct
// choice index.
type QuestionShownData struct {
	QuestionID string               `json:"question_id"`
	Question   model.QuestionPublic `json:"question"`
	StartedAt  time.Time            `json:"started_at"`
	DeadlineAt time.Time            `json:"deadline_at"`
}

type QuestionClosedData struct {
	QuestionID string    `json:"question_id"`
	ClosedAt   time.Time `json:"closed_at"`
}

type QuestionRevealedData struct {
	QuestionID         string `json:"question_id"`
	CorrectChoiceIndex int    `json:"correct_choice_index"`
}

type FinishedData struct {
	EventID string `json:"event_id"`
}
