package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// In-memory store fakes. They honor the same contracts the pgx
// repositories do (ErrNotFound on misses, ErrDuplicateSubmission on the
// answer unique key) so the services cannot tell them apart.

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type memEvents struct {
	mu     sync.Mutex
	events map[string]*model.Event
	seq    map[string][]string
}

func newMemEvents() *memEvents {
	return &memEvents{events: map[string]*model.Event{}, seq: map[string][]string{}}
}

func (m *memEvents) Get(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) Create(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEvents) Update(_ context.Context, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEvents) List(_ context.Context) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEvents) QuestionIDs(_ context.Context, eventID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seq[eventID]...), nil
}

func (m *memEvents) SetQuestions(_ context.Context, eventID string, questionIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[eventID] = append([]string(nil), questionIDs...)
	return nil
}

type memQuestions struct {
	mu        sync.Mutex
	questions map[string]*model.Question
	order     []string
}

func newMemQuestions() *memQuestions {
	return &memQuestions{questions: map[string]*model.Question{}}
}

func (m *memQuestions) Get(_ context.Context, id string) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *q
	cp.Choices = append([]model.QuestionChoice(nil), q.Choices...)
	return &cp, nil
}

func (m *memQuestions) List(_ context.Context, enabledOnly bool) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Question, 0, len(m.order))
	for _, id := range m.order {
		q := m.questions[id]
		if enabledOnly && !q.IsEnabled {
			continue
		}
		out = append(out, *q)
	}
	return out, nil
}

func (m *memQuestions) Create(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.questions[q.ID] = &cp
	m.order = append(m.order, q.ID)
	return nil
}

func (m *memQuestions) Update(_ context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *memQuestions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.questions, id)
	for i, qid := range m.order {
		if qid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memQuestions) Reorder(_ context.Context, orderedIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append([]string(nil), orderedIDs...)
	return nil
}

func (m *memQuestions) SetEnabled(_ context.Context, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.IsEnabled = enabled
	return nil
}

type memParticipants struct {
	mu       sync.Mutex
	sessions map[string]*model.ParticipantSession
	users    map[string]*model.Participant
}

func newMemParticipants() *memParticipants {
	return &memParticipants{
		sessions: map[string]*model.ParticipantSession{},
		users:    map[string]*model.Participant{},
	}
}

func (m *memParticipants) CreateSession(_ context.Context, s *model.ParticipantSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memParticipants) GetSession(_ context.Context, id string) (*model.ParticipantSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memParticipants) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *memParticipants) AttachUser(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.UserID = &userID
	return nil
}

func (m *memParticipants) CreateUser(_ context.Context, p *model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.users[p.ID] = &cp
	return nil
}

func (m *memParticipants) GetUser(_ context.Context, id string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memParticipants) ListByEvent(_ context.Context, eventID string) ([]model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Participant
	for _, p := range m.users {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memParticipants) SuffixExists(_ context.Context, eventID, suffix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.users {
		if p.EventID == eventID && p.DisplaySuffix == suffix {
			return true, nil
		}
	}
	return false, nil
}

func (m *memParticipants) DeleteByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.users {
		if p.EventID == eventID {
			delete(m.users, id)
		}
	}
	for id, s := range m.sessions {
		if s.EventID == eventID {
			delete(m.sessions, id)
		}
	}
	return nil
}

type answerKey struct{ event, question, user string }

type memAnswers struct {
	mu   sync.Mutex
	rows map[answerKey]*model.Answer
}

func newMemAnswers() *memAnswers { return &memAnswers{rows: map[answerKey]*model.Answer{}} }

func (m *memAnswers) Create(_ context.Context, a *model.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := answerKey{a.EventID, a.QuestionID, a.UserID}
	if _, ok := m.rows[k]; ok {
		return domain.ErrDuplicateSubmission
	}
	cp := *a
	m.rows[k] = &cp
	return nil
}

func (m *memAnswers) Get(_ context.Context, eventID, questionID, userID string) (*model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[answerKey{eventID, questionID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAnswers) ListByEvent(_ context.Context, eventID string) ([]model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Answer
	for k, a := range m.rows {
		if k.event == eventID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAnswers) DeleteByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.rows {
		if k.event == eventID {
			delete(m.rows, k)
		}
	}
	return nil
}

type memAdmin struct {
	mu    sync.Mutex
	admin *model.Admin
	logs  []model.AuditLog
}

func (m *memAdmin) GetAdmin(_ context.Context) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.admin == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.admin
	return &cp, nil
}

func (m *memAdmin) CreateAuditLog(_ context.Context, entry *model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memAdmin) ListAuditLogs(_ context.Context, limit int) ([]model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.AuditLog(nil), m.logs...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// fakeBroadcaster records broadcasts and plays back scripted delivery
// timestamps.
type fakeBroadcaster struct {
	mu        sync.Mutex
	sent      []ws.Envelope
	delivered map[string]map[string]time.Time
	now       func() time.Time
	sessions  []string
}

func newFakeBroadcaster(now func() time.Time) *fakeBroadcaster {
	return &fakeBroadcaster{delivered: map[string]map[string]time.Time{}, now: now}
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, _ string, msg ws.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
}

func (b *fakeBroadcaster) BroadcastQuestion(_ context.Context, eventID string, msg ws.Envelope) map[string]time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
	delivered := make(map[string]time.Time, len(b.sessions))
	for _, sid := range b.sessions {
		delivered[sid] = b.now()
	}
	b.delivered[eventID] = delivered
	return delivered
}

func (b *fakeBroadcaster) DeliveredAt(_ context.Context, eventID, sessionID string) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.delivered[eventID][sessionID]
	return t, ok
}

func (b *fakeBroadcaster) types() []ws.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ws.Event, len(b.sent))
	for i, m := range b.sent {
		out[i] = m.Type
	}
	return out
}

func (b *fakeBroadcaster) lastOfType(t ws.Event) (ws.Envelope, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.sent) - 1; i >= 0; i-- {
		if b.sent[i].Type == t {
			return b.sent[i], true
		}
	}
	return ws.Envelope{}, false
}
