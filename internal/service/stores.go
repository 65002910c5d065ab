package service

import (
	"context"
	"time"

	"github.com/quizlive/quizlive-backend/internal/model"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// The services accept narrow store interfaces instead of concrete
// repositories so the state machine, ledger and ranking logic can be tested
// against in-memory fakes with a deterministic clock. The pgx repositories
// under internal/repository implement these.

// EventStore is the persistence surface for events and their fixed question
// sequence. Get returns domain.ErrNotFound for unknown ids. Update writes
// the full progression snapshot; callers hold the per-event lock, so the
// store only needs single-statement atomicity.
type EventStore interface {
	Get(ctx context.Context, id string) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	QuestionIDs(ctx context.Context, eventID string) ([]string, error)
	SetQuestions(ctx context.Context, eventID string, questionIDs []string) error
}

// QuestionStore is the read/write surface for the question catalog.
type QuestionStore interface {
	Get(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context, enabledOnly bool) ([]model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	Update(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, orderedIDs []string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// ParticipantStore manages participants and their anonymous sessions.
// DeleteByEvent removes both, scoped to one event (bulk reset).
type ParticipantStore interface {
	CreateSession(ctx context.Context, s *model.ParticipantSession) error
	GetSession(ctx context.Context, id string) (*model.ParticipantSession, error)
	DeleteSession(ctx context.Context, id string) error
	AttachUser(ctx context.Context, sessionID, userID string) error
	CreateUser(ctx context.Context, p *model.Participant) error
	GetUser(ctx context.Context, id string) (*model.Participant, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error)
	SuffixExists(ctx context.Context, eventID, suffix string) (bool, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

// AnswerStore is the append-only answer ledger surface. Create must be
// atomic under the (event, question, user) unique constraint and return
// domain.ErrDuplicateSubmission when the row already exists — a concurrent
// double insert is expected traffic, not a crash.
type AnswerStore interface {
	Create(ctx context.Context, a *model.Answer) error
	Get(ctx context.Context, eventID, questionID, userID string) (*model.Answer, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Answer, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

// AdminStore resolves the operator account and records audit entries.
type AdminStore interface {
	GetAdmin(ctx context.Context) (*model.Admin, error)
	CreateAuditLog(ctx context.Context, entry *model.AuditLog) error
	ListAuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error)
}

// Broadcaster is the push surface of the connection registry. Both the
// in-process hub and the Redis pub/sub relay satisfy it; the services
// cannot tell the difference.
type Broadcaster interface {
	Broadcast(ctx context.Context, eventID string, msg ws.Envelope)
	BroadcastQuestion(ctx context.Context, eventID string, msg ws.Envelope) map[string]time.Time
	DeliveredAt(ctx context.Context, eventID, sessionID string) (time.Time, bool)
}

// Clock abstracts time.Now so deadline logic is deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
