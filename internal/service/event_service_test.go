package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

type fixture struct {
	events       *memEvents
	questions    *memQuestions
	participants *memParticipants
	answers      *memAnswers
	bc           *fakeBroadcaster
	clock        *fakeClock

	eventSvc       *EventService
	answerSvc      *AnswerService
	participantSvc *ParticipantService
	rankingSvc     *RankingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		events:       newMemEvents(),
		questions:    newMemQuestions(),
		participants: newMemParticipants(),
		answers:      newMemAnswers(),
		clock:        newFakeClock(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)),
	}
	f.bc = newFakeBroadcaster(f.clock.Now)
	log := zerolog.Nop()
	f.eventSvc = NewEventService(f.events, f.questions, f.participants, f.answers, f.bc, f.clock, log)
	f.answerSvc = NewAnswerService(f.events, f.questions, f.participants, f.answers, f.bc, f.clock, log)
	f.participantSvc = NewParticipantService(f.events, f.participants, f.clock, log)
	f.rankingSvc = NewRankingService(f.events, f.participants, f.answers, log)
	return f
}

func (f *fixture) seedQuestion(t *testing.T, id string, correct int) {
	t.Helper()
	q := &model.Question{ID: id, Text: "q " + id, CorrectChoiceIndex: correct, IsEnabled: true}
	for i := 0; i < model.ChoiceCount; i++ {
		q.Choices = append(q.Choices, model.QuestionChoice{
			QuestionID:  id,
			ChoiceIndex: i,
			Text:        fmt.Sprintf("choice %d", i),
		})
	}
	require.NoError(t, f.questions.Create(context.Background(), q))
}

func (f *fixture) seedEvent(t *testing.T, id string, timeLimitSec int, questionIDs ...string) {
	t.Helper()
	require.NoError(t, f.events.Create(context.Background(), &model.Event{
		ID:           id,
		Title:        "event " + id,
		JoinCode:     "code-" + id,
		TimeLimitSec: timeLimitSec,
		State:        model.EventStateWaiting,
		CurrentIndex: -1,
		CreatedAt:    f.clock.Now(),
	}))
	require.NoError(t, f.events.SetQuestions(context.Background(), id, questionIDs))
}

// joinAndRegister returns (sessionID, userID).
func (f *fixture) joinAndRegister(t *testing.T, eventID, name string) (string, string) {
	t.Helper()
	sess, err := f.participantSvc.Join(context.Background(), eventID, "code-"+eventID)
	require.NoError(t, err)
	user, err := f.participantSvc.Register(context.Background(), eventID, sess.ID, name)
	require.NoError(t, err)
	return sess.ID, user.ID
}

func TestStartTransitionsWaitingToRunning(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 20, "q1")

	res, err := f.eventSvc.Start(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateRunning, res.State)

	ev, err := f.events.Get(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateRunning, ev.State)
	require.NotNil(t, ev.StartedAt)
	require.Equal(t, -1, ev.CurrentIndex)

	env, ok := f.bc.lastOfType(ws.EventStateChanged)
	require.True(t, ok)
	require.Equal(t, model.EventStateRunning, env.Data.(ws.StateChangedData).State)
}

func TestStartRejectsNonWaitingStates(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 20, "q1")

	_, err := f.eventSvc.Start(context.Background(), "ev1")
	require.NoError(t, err)

	_, err = f.eventSvc.Start(context.Background(), "ev1")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.eventSvc.Finish(context.Background(), "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.Start(context.Background(), "ev1")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestNextQuestionRequiresRunning(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 20, "q1")

	_, err := f.eventSvc.NextQuestion(context.Background(), "ev1")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestNextQuestionWalksSequenceAndAutoFinishes(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedQuestion(t, "q2", 1)
	f.seedEvent(t, "ev1", 30, "q1", "q2")
	ctx := context.Background()

	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)

	first, err := f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, "q1", first.QuestionID)
	require.Equal(t, f.clock.Now().Add(30*time.Second), *first.DeadlineAt)

	second, err := f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, "q2", second.QuestionID)

	ev, _ := f.events.Get(ctx, "ev1")
	require.Equal(t, 1, ev.CurrentIndex)
	require.False(t, ev.Revealed)
	require.False(t, ev.Closed)

	// Past the end of the sequence the event finishes.
	last, err := f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateFinished, last.State)

	ev, _ = f.events.Get(ctx, "ev1")
	require.Equal(t, model.EventStateFinished, ev.State)
	require.NotNil(t, ev.FinishedAt)

	_, ok := f.bc.lastOfType(ws.EventFinished)
	require.True(t, ok)
}

func TestNextQuestionBroadcastHidesCorrectChoice(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 2)
	f.seedEvent(t, "ev1", 30, "q1")
	ctx := context.Background()

	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)

	env, ok := f.bc.lastOfType(ws.EventQuestionShown)
	require.True(t, ok)
	data := env.Data.(ws.QuestionShownData)
	require.Equal(t, "q1", data.QuestionID)
	require.Nil(t, data.Question.CorrectChoiceIndex)
}

func TestCloseQuestionPullsDeadlineToNow(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	res, err := f.eventSvc.CloseQuestion(ctx, "ev1", "q1")
	require.NoError(t, err)
	require.Equal(t, f.clock.Now(), res.ClosedAt)

	ev, _ := f.events.Get(ctx, "ev1")
	require.True(t, ev.Closed)
	require.Equal(t, f.clock.Now(), *ev.DeadlineAt)
}

func TestCloseQuestionRejectsInactiveQuestion(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	_, err := f.eventSvc.CloseQuestion(ctx, "ev1", "q1")
	require.ErrorIs(t, err, domain.ErrQuestionNotActive)

	_, err = f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)

	_, err = f.eventSvc.CloseQuestion(ctx, "ev1", "other")
	require.ErrorIs(t, err, domain.ErrQuestionNotActive)
}

func TestRevealWorksWithoutClose(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 3)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)

	res, err := f.eventSvc.RevealAnswer(ctx, "ev1", "q1")
	require.NoError(t, err)
	require.Equal(t, 3, res.CorrectChoiceIndex)

	ev, _ := f.events.Get(ctx, "ev1")
	require.True(t, ev.Revealed)
	require.False(t, ev.Closed)

	env, ok := f.bc.lastOfType(ws.EventQuestionRevealed)
	require.True(t, ok)
	require.Equal(t, 3, env.Data.(ws.QuestionRevealedData).CorrectChoiceIndex)
}

func TestFinishRequiresRunning(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")

	_, err := f.eventSvc.Finish(context.Background(), "ev1")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestAbortFromAnyNonTerminalState(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	f.seedEvent(t, "ev2", 60, "q1")
	ctx := context.Background()

	// From waiting.
	res, err := f.eventSvc.Abort(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateAborted, res.State)

	// From running.
	_, err = f.eventSvc.Start(ctx, "ev2")
	require.NoError(t, err)
	_, err = f.eventSvc.Abort(ctx, "ev2")
	require.NoError(t, err)

	// Terminal states refuse.
	_, err = f.eventSvc.Abort(ctx, "ev1")
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestResetPurgesParticipantsAndAnswers(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	sessID, _ := f.joinAndRegister(t, "ev1", "alice")
	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.answerSvc.Submit(ctx, "ev1", sessID, "q1", 0)
	require.NoError(t, err)

	res, err := f.eventSvc.Reset(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateWaiting, res.State)

	ev, _ := f.events.Get(ctx, "ev1")
	require.Equal(t, model.EventStateWaiting, ev.State)
	require.Nil(t, ev.CurrentQuestionID)
	require.Nil(t, ev.StartedAt)
	require.Equal(t, -1, ev.CurrentIndex)

	answers, _ := f.answers.ListByEvent(ctx, "ev1")
	require.Empty(t, answers)

	// The old session is gone with the participants.
	_, err = f.eventSvc.GetUserState(ctx, "ev1", sessID)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSetEventQuestionsLockedAfterStart(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedQuestion(t, "q2", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	require.NoError(t, f.eventSvc.SetEventQuestions(ctx, "ev1", []string{"q2", "q1"}))

	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	err = f.eventSvc.SetEventQuestions(ctx, "ev1", []string{"q1"})
	require.ErrorIs(t, err, domain.ErrEventStarted)
}

func TestGetUserStateAssemblesView(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 1)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	sessID, _ := f.joinAndRegister(t, "ev1", "bob")
	_, err := f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	f.bc.sessions = []string{sessID}
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.answerSvc.Submit(ctx, "ev1", sessID, "q1", 1)
	require.NoError(t, err)

	state, err := f.eventSvc.GetUserState(ctx, "ev1", sessID)
	require.NoError(t, err)
	require.Equal(t, model.EventStateRunning, state.Event.State)
	require.Equal(t, "q1", *state.Event.CurrentQuestionID)
	require.NotNil(t, state.Me)
	require.Equal(t, "bob", state.Me.DisplayName)
	require.NotNil(t, state.CurrentQuestion)
	require.Nil(t, state.CurrentQuestion.CorrectChoiceIndex)
	require.NotNil(t, state.MyAnswer)
	// Correctness is masked until the reveal.
	require.Nil(t, state.MyAnswer.IsCorrect)

	_, err = f.eventSvc.RevealAnswer(ctx, "ev1", "q1")
	require.NoError(t, err)

	state, err = f.eventSvc.GetUserState(ctx, "ev1", sessID)
	require.NoError(t, err)
	require.NotNil(t, state.CurrentQuestion.CorrectChoiceIndex)
	require.NotNil(t, state.MyAnswer.IsCorrect)
	require.True(t, *state.MyAnswer.IsCorrect)
}

func TestGetCurrentQuestionPollingFallback(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 60, "q1")
	ctx := context.Background()

	view, err := f.eventSvc.GetCurrentQuestion(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, model.EventStateWaiting, view.EventState)
	require.Nil(t, view.Question)

	_, err = f.eventSvc.Start(ctx, "ev1")
	require.NoError(t, err)
	_, err = f.eventSvc.NextQuestion(ctx, "ev1")
	require.NoError(t, err)

	view, err = f.eventSvc.GetCurrentQuestion(ctx, "ev1")
	require.NoError(t, err)
	require.NotNil(t, view.Question)
	require.Equal(t, "q1", view.Question.QuestionID)
	require.NotNil(t, view.DeadlineAt)
	require.Nil(t, view.Question.CorrectChoiceIndex)
}

func TestCreateEventGeneratesIDAndJoinCode(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	ctx := context.Background()

	brief, err := f.eventSvc.CreateEvent(ctx, "friday quiz", "", 20, []string{"q1"})
	require.NoError(t, err)
	require.Len(t, brief.EventID, 12)
	require.Equal(t, model.EventStateWaiting, brief.State)

	ev, err := f.events.Get(ctx, brief.EventID)
	require.NoError(t, err)
	require.Len(t, ev.JoinCode, 6)
	require.Equal(t, -1, ev.CurrentIndex)

	ids, err := f.events.QuestionIDs(ctx, brief.EventID)
	require.NoError(t, err)
	require.Equal(t, []string{"q1"}, ids)
}
