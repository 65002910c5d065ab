package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// EventService owns the quiz event lifecycle: waiting → running →
// {finished, aborted}, with an explicit reset back to waiting. Admin
// operations against one event are serialized by a per-event mutex; they
// read-then-write the progression snapshot and are not commutative.
type EventService struct {
	events       EventStore
	questions    QuestionStore
	participants ParticipantStore
	answers      AnswerStore
	broadcaster  Broadcaster
	clock        Clock
	log          zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEventService creates an EventService.
func NewEventService(
	events EventStore,
	questions QuestionStore,
	participants ParticipantStore,
	answers AnswerStore,
	broadcaster Broadcaster,
	clock Clock,
	log zerolog.Logger,
) *EventService {
	return &EventService{
		events:       events,
		questions:    questions,
		participants: participants,
		answers:      answers,
		broadcaster:  broadcaster,
		clock:        clock,
		log:          log.With().Str("component", "event_service").Logger(),
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockEvent serializes admin progression per event id.
func (s *EventService) lockEvent(eventID string) func() {
	s.mu.Lock()
	l, ok := s.locks[eventID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[eventID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ─── Results ────────────────────────────────────────────────────────

type EventBrief struct {
	EventID string           `json:"event_id"`
	Title   string           `json:"title"`
	State   model.EventState `json:"state"`
}

type StartResult struct {
	Status string           `json:"status"`
	State  model.EventState `json:"state"`
}

// NextResult reports either the newly shown question or, when the sequence
// is exhausted, the finished state.
type NextResult struct {
	Status     string           `json:"status"`
	State      model.EventState `json:"state,omitempty"`
	QuestionID string           `json:"question_id,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	DeadlineAt *time.Time       `json:"deadline_at,omitempty"`
}

type CloseResult struct {
	Status   string    `json:"status"`
	ClosedAt time.Time `json:"closed_at"`
}

type RevealResult struct {
	Status             string    `json:"status"`
	RevealedAt         time.Time `json:"revealed_at"`
	CorrectChoiceIndex int       `json:"correct_choice_index"`
}

// ─── Admin operations ───────────────────────────────────────────────

// CreateEvent creates a waiting event with an optional fixed question
// sequence. A missing join code is generated.
func (s *EventService) CreateEvent(ctx context.Context, title, joinCode string, timeLimitSec int, questionIDs []string) (*EventBrief, error) {
	if joinCode == "" {
		joinCode = strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	}
	event := &model.Event{
		ID:           strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
		Title:        title,
		JoinCode:     joinCode,
		TimeLimitSec: timeLimitSec,
		State:        model.EventStateWaiting,
		CurrentIndex: -1,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	if len(questionIDs) > 0 {
		if err := s.events.SetQuestions(ctx, event.ID, questionIDs); err != nil {
			return nil, err
		}
	}
	s.log.Info().Str("event_id", event.ID).Str("title", title).Msg("event created")
	return &EventBrief{EventID: event.ID, Title: title, State: model.EventStateWaiting}, nil
}

// UpdateJoinCode replaces the event's join code.
func (s *EventService) UpdateJoinCode(ctx context.Context, eventID, joinCode string) (*EventBrief, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	event.JoinCode = joinCode
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return &EventBrief{EventID: event.ID, Title: event.Title, State: event.State}, nil
}

// SetEventQuestions replaces the fixed question sequence. Rejected once the
// event has left the waiting state — the sequence is immutable mid-run.
func (s *EventService) SetEventQuestions(ctx context.Context, eventID string, questionIDs []string) error {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.State != model.EventStateWaiting {
		return domain.ErrEventStarted
	}
	return s.events.SetQuestions(ctx, eventID, questionIDs)
}

// ListEvents returns every event, newest first (store order).
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// Start moves a waiting event into the running state.
func (s *EventService) Start(ctx context.Context, eventID string) (*StartResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != model.EventStateWaiting {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	event.State = model.EventStateRunning
	event.CurrentIndex = -1
	event.StartedAt = &now
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, eventID, ws.Envelope{
		Type: ws.EventStateChanged,
		Data: ws.StateChangedData{State: model.EventStateRunning, ServerTime: now},
	})

	s.log.Info().Str("event_id", eventID).Msg("event started")
	return &StartResult{Status: "ok", State: model.EventStateRunning}, nil
}

// NextQuestion advances to the next question in the fixed sequence. Past
// the end of the sequence it is equivalent to Finish. The broadcast carries
// the question without its correct choice index and records per-recipient
// delivery timestamps.
func (s *EventService) NextQuestion(ctx context.Context, eventID string) (*NextResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != model.EventStateRunning {
		return nil, domain.ErrInvalidState
	}

	questionIDs, err := s.events.QuestionIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}

	nextIndex := event.CurrentIndex + 1
	if nextIndex >= len(questionIDs) {
		if err := s.finishEvent(ctx, event); err != nil {
			return nil, err
		}
		return &NextResult{Status: "ok", State: model.EventStateFinished}, nil
	}

	questionID := questionIDs[nextIndex]
	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	deadline := now.Add(time.Duration(event.TimeLimitSec) * time.Second)

	event.CurrentQuestionID = &questionID
	event.CurrentIndex = nextIndex
	event.ShownAt = &now
	event.DeadlineAt = &deadline
	event.Revealed = false
	event.Closed = false
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	delivered := s.broadcaster.BroadcastQuestion(ctx, eventID, ws.Envelope{
		Type: ws.EventQuestionShown,
		Data: ws.QuestionShownData{
			QuestionID: questionID,
			Question:   question.Public(false),
			StartedAt:  now,
			DeadlineAt: deadline,
		},
	})

	s.log.Info().
		Str("event_id", eventID).
		Str("question_id", questionID).
		Int("index", nextIndex).
		Int("recipients", len(delivered)).
		Msg("question shown")

	return &NextResult{
		Status:     "ok",
		QuestionID: questionID,
		StartedAt:  &now,
		DeadlineAt: &deadline,
	}, nil
}

// CloseQuestion ends the answer window early by pulling the deadline to now.
func (s *EventService) CloseQuestion(ctx context.Context, eventID, questionID string) (*CloseResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CurrentQuestionID == nil || *event.CurrentQuestionID != questionID {
		return nil, domain.ErrQuestionNotActive
	}

	now := s.clock.Now()
	event.DeadlineAt = &now
	event.Closed = true
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, eventID, ws.Envelope{
		Type: ws.EventQuestionClosed,
		Data: ws.QuestionClosedData{QuestionID: questionID, ClosedAt: now},
	})

	return &CloseResult{Status: "ok", ClosedAt: now}, nil
}

// RevealAnswer exposes the correct choice index to participants. Reveal
// without a prior close is allowed — admins may want to reveal live.
func (s *EventService) RevealAnswer(ctx context.Context, eventID, questionID string) (*RevealResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CurrentQuestionID == nil || *event.CurrentQuestionID != questionID {
		return nil, domain.ErrQuestionNotActive
	}

	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}

	event.Revealed = true
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, eventID, ws.Envelope{
		Type: ws.EventQuestionRevealed,
		Data: ws.QuestionRevealedData{
			QuestionID:         questionID,
			CorrectChoiceIndex: question.CorrectChoiceIndex,
		},
	})

	return &RevealResult{
		Status:             "ok",
		RevealedAt:         s.clock.Now(),
		CorrectChoiceIndex: question.CorrectChoiceIndex,
	}, nil
}

// Finish ends a running event.
func (s *EventService) Finish(ctx context.Context, eventID string) (*StartResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != model.EventStateRunning {
		return nil, domain.ErrInvalidState
	}
	if err := s.finishEvent(ctx, event); err != nil {
		return nil, err
	}
	return &StartResult{Status: "ok", State: model.EventStateFinished}, nil
}

// Abort terminates an event from any non-terminal state.
func (s *EventService) Abort(ctx context.Context, eventID string) (*StartResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State.Terminal() {
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	event.State = model.EventStateAborted
	event.FinishedAt = &now
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, eventID, ws.Envelope{
		Type: ws.EventFinished,
		Data: ws.FinishedData{EventID: eventID},
	})

	s.log.Info().Str("event_id", eventID).Msg("event aborted")
	return &StartResult{Status: "ok", State: model.EventStateAborted}, nil
}

// Reset purges every answer, participant and participant session for the
// event and restores the waiting defaults.
func (s *EventService) Reset(ctx context.Context, eventID string) (*StartResult, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Answers first: they reference participants.
	if err := s.answers.DeleteByEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.participants.DeleteByEvent(ctx, eventID); err != nil {
		return nil, err
	}

	event.State = model.EventStateWaiting
	event.CurrentIndex = -1
	event.CurrentQuestionID = nil
	event.ShownAt = nil
	event.DeadlineAt = nil
	event.Revealed = false
	event.Closed = false
	event.StartedAt = nil
	event.FinishedAt = nil
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, eventID, ws.Envelope{
		Type: ws.EventStateChanged,
		Data: ws.StateChangedData{State: model.EventStateWaiting, ServerTime: s.clock.Now()},
	})

	s.log.Info().Str("event_id", eventID).Msg("event reset")
	return &StartResult{Status: "ok", State: model.EventStateWaiting}, nil
}

// finishEvent writes the terminal finished state and broadcasts it.
// Callers hold the event lock.
func (s *EventService) finishEvent(ctx context.Context, event *model.Event) error {
	now := s.clock.Now()
	event.State = model.EventStateFinished
	event.FinishedAt = &now
	if err := s.events.Update(ctx, event); err != nil {
		return err
	}

	s.broadcaster.Broadcast(ctx, event.ID, ws.Envelope{
		Type: ws.EventFinished,
		Data: ws.FinishedData{EventID: event.ID},
	})

	s.log.Info().Str("event_id", event.ID).Msg("event finished")
	return nil
}

// ─── Participant state views ────────────────────────────────────────

type EventStateInfo struct {
	State             model.EventState `json:"state"`
	ServerTime        time.Time        `json:"server_time"`
	CurrentQuestionID *string          `json:"current_question_id,omitempty"`
	QuestionStartedAt *time.Time       `json:"question_started_at,omitempty"`
	AnswerDeadlineAt  *time.Time       `json:"answer_deadline_at,omitempty"`
}

// UserState is the composite "what should my screen show" view.
type UserState struct {
	Event           EventStateInfo        `json:"event"`
	Me              *model.Participant    `json:"me,omitempty"`
	CurrentQuestion *model.QuestionPublic `json:"current_question,omitempty"`
	MyAnswer        *AnswerInfo           `json:"my_answer,omitempty"`
}

// CurrentQuestionView is the polling fallback for clients without a push
// channel.
type CurrentQuestionView struct {
	EventState model.EventState      `json:"event_state"`
	Question   *model.QuestionPublic `json:"question,omitempty"`
	StartedAt  *time.Time            `json:"started_at,omitempty"`
	DeadlineAt *time.Time            `json:"deadline_at,omitempty"`
}

// GetUserState resolves the session and assembles the participant's view:
// event timing, registered identity, the current question (answer hidden
// until revealed) and their own answer for it.
func (s *EventService) GetUserState(ctx context.Context, eventID, sessionID string) (*UserState, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	session, err := s.participants.GetSession(ctx, sessionID)
	if err != nil || session.EventID != eventID {
		return nil, domain.ErrUnauthenticated
	}

	state := &UserState{
		Event: EventStateInfo{
			State:             event.State,
			ServerTime:        s.clock.Now(),
			CurrentQuestionID: event.CurrentQuestionID,
			QuestionStartedAt: event.ShownAt,
			AnswerDeadlineAt:  event.DeadlineAt,
		},
	}

	var me *model.Participant
	if session.UserID != nil {
		if me, err = s.participants.GetUser(ctx, *session.UserID); err == nil {
			state.Me = me
		}
	}

	if event.CurrentQuestionID != nil {
		if q, err := s.questions.Get(ctx, *event.CurrentQuestionID); err == nil {
			pub := q.Public(event.Revealed)
			state.CurrentQuestion = &pub
		}
	}

	if me != nil && event.CurrentQuestionID != nil {
		ans, err := s.answers.Get(ctx, eventID, *event.CurrentQuestionID, me.ID)
		if err == nil {
			info := newAnswerInfo(ans)
			if !event.Revealed {
				// Correctness stays hidden until the admin reveals.
				info.IsCorrect = nil
			}
			state.MyAnswer = &info
		}
	}

	return state, nil
}

// GetCurrentQuestion is the pull counterpart of the question broadcast.
func (s *EventService) GetCurrentQuestion(ctx context.Context, eventID string) (*CurrentQuestionView, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	view := &CurrentQuestionView{EventState: event.State}
	if event.CurrentQuestionID == nil {
		return view, nil
	}

	if q, err := s.questions.Get(ctx, *event.CurrentQuestionID); err == nil {
		pub := q.Public(event.Revealed)
		view.Question = &pub
	}
	view.StartedAt = event.ShownAt
	view.DeadlineAt = event.DeadlineAt
	return view, nil
}
