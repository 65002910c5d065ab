package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// answerGrace is the tolerance added to the answer deadline before a
// submission is rejected. It absorbs client/network clock skew.
const answerGrace = 2 * time.Second

// AnswerService runs the submission pipeline: session resolution,
// active-question check, duplicate guard, deadline verdict and scoring.
// Every attempt that passes the duplicate guard is persisted, accepted or
// not — the ledger is the audit trail.
type AnswerService struct {
	events       EventStore
	questions    QuestionStore
	participants ParticipantStore
	answers      AnswerStore
	broadcaster  Broadcaster
	clock        Clock
	log          zerolog.Logger
}

// NewAnswerService creates an AnswerService.
func NewAnswerService(
	events EventStore,
	questions QuestionStore,
	participants ParticipantStore,
	answers AnswerStore,
	broadcaster Broadcaster,
	clock Clock,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		events:       events,
		questions:    questions,
		participants: participants,
		answers:      answers,
		broadcaster:  broadcaster,
		clock:        clock,
		log:          log.With().Str("component", "answer_service").Logger(),
	}
}

// AnswerInfo is the participant-facing view of one ledger row.
type AnswerInfo struct {
	QuestionID      string     `json:"question_id"`
	ChoiceIndex     int        `json:"choice_index"`
	Accepted        bool       `json:"accepted"`
	RejectReason    *string    `json:"reject_reason,omitempty"`
	IsCorrect       *bool      `json:"is_correct,omitempty"`
	ResponseTimeSec *float64   `json:"response_time_sec,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
}

func newAnswerInfo(a *model.Answer) AnswerInfo {
	submitted := a.SubmittedAt
	return AnswerInfo{
		QuestionID:      a.QuestionID,
		ChoiceIndex:     a.ChoiceIndex,
		Accepted:        a.Accepted,
		RejectReason:    a.RejectReason,
		IsCorrect:       a.IsCorrect,
		ResponseTimeSec: a.ResponseTimeSec,
		SubmittedAt:     &submitted,
	}
}

// SubmitResult is the immediate verdict returned to the submitting client.
type SubmitResult struct {
	Accepted        bool     `json:"accepted"`
	RejectReason    *string  `json:"reject_reason,omitempty"`
	ResponseTimeSec *float64 `json:"response_time_sec,omitempty"`
}

// Submit records one answer attempt.
//
// The pipeline order matters: session → registration → active question →
// duplicate → deadline. A duplicate is reported before the deadline verdict
// so a retry of an already-recorded answer never flips its outcome.
func (s *AnswerService) Submit(ctx context.Context, eventID, sessionID, questionID string, choiceIndex int) (*SubmitResult, error) {
	session, err := s.participants.GetSession(ctx, sessionID)
	if err != nil || session.EventID != eventID {
		return nil, domain.ErrUnauthenticated
	}
	if session.UserID == nil {
		return nil, domain.ErrNotRegistered
	}
	userID := *session.UserID

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State.Terminal() {
		return nil, domain.ErrEventFinished
	}
	if event.CurrentQuestionID == nil || *event.CurrentQuestionID != questionID {
		return nil, domain.ErrQuestionNotActive
	}
	if choiceIndex < 0 || choiceIndex >= model.ChoiceCount {
		return nil, domain.ErrInvalidQuestion
	}

	if _, err := s.answers.Get(ctx, eventID, questionID, userID); err == nil {
		return nil, domain.ErrDuplicateSubmission
	}

	now := s.clock.Now()

	// A session that never got the broadcast (reconnect, polling client)
	// has no delivery timestamp; fall back to the submit time, which yields
	// a zero response time rather than a failed submission.
	deliveredAt, ok := s.broadcaster.DeliveredAt(ctx, eventID, sessionID)
	if !ok {
		deliveredAt = now
	}

	responseTime := round1(now.Sub(deliveredAt).Seconds())
	if responseTime < 0 {
		responseTime = 0
	}

	answer := &model.Answer{
		ID:              strings.ReplaceAll(uuid.New().String(), "-", ""),
		EventID:         eventID,
		QuestionID:      questionID,
		UserID:          userID,
		ChoiceIndex:     choiceIndex,
		DeliveredAt:     deliveredAt,
		SubmittedAt:     now,
		ResponseTimeSec: &responseTime,
	}

	deadline := event.DeadlineAt
	if deadline != nil && now.After(deadline.Add(answerGrace)) {
		reason := model.RejectReasonDeadline
		answer.Accepted = false
		answer.RejectReason = &reason
	} else {
		question, err := s.questions.Get(ctx, questionID)
		if err != nil {
			return nil, err
		}
		correct := choiceIndex == question.CorrectChoiceIndex
		answer.Accepted = true
		answer.IsCorrect = &correct
	}

	if err := s.answers.Create(ctx, answer); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			// Lost the race against a concurrent submit for the same triple.
			return nil, domain.ErrDuplicateSubmission
		}
		return nil, err
	}

	s.log.Debug().
		Str("event_id", eventID).
		Str("question_id", questionID).
		Str("user_id", userID).
		Bool("accepted", answer.Accepted).
		Float64("response_time_sec", responseTime).
		Msg("answer recorded")

	return &SubmitResult{
		Accepted:        answer.Accepted,
		RejectReason:    answer.RejectReason,
		ResponseTimeSec: answer.ResponseTimeSec,
	}, nil
}

// GetMyAnswer returns the caller's ledger row for one question. Correctness
// is masked until the admin reveals the answer.
func (s *AnswerService) GetMyAnswer(ctx context.Context, eventID, sessionID, questionID string) (*AnswerInfo, error) {
	session, err := s.participants.GetSession(ctx, sessionID)
	if err != nil || session.EventID != eventID {
		return nil, domain.ErrUnauthenticated
	}
	if session.UserID == nil {
		return nil, domain.ErrNotRegistered
	}

	answer, err := s.answers.Get(ctx, eventID, questionID, *session.UserID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	info := newAnswerInfo(answer)
	revealed := event.Revealed && event.CurrentQuestionID != nil && *event.CurrentQuestionID == questionID
	if !revealed && !event.State.Terminal() {
		info.IsCorrect = nil
	}
	return &info, nil
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
