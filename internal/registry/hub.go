// Package registry tracks live participant connections per event and fans
// broadcast messages out to them. It also records, per question round, when
// the payload reached each connection; the answer ledger uses those
// timestamps as the response-time baseline.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// DeliveryStore persists per-question delivery timestamps. Replace swaps the
// whole per-event map: delivery fairness is scoped to one question, so stale
// timestamps from a prior round must never leak into the next.
type DeliveryStore interface {
	Replace(ctx context.Context, eventID string, deliveredAt map[string]time.Time) error
	Get(ctx context.Context, eventID, sessionID string) (time.Time, bool, error)
	Clear(ctx context.Context, eventID string) error
}

// Hub is the in-process connection registry. Connections are keyed by
// (event, participant session); a session reconnecting replaces its old
// connection entry.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[string]ws.Conn

	delivery DeliveryStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewHub creates a Hub backed by the given delivery store.
func NewHub(delivery DeliveryStore, log zerolog.Logger) *Hub {
	return &Hub{
		conns:    make(map[string]map[string]ws.Conn),
		delivery: delivery,
		log:      log.With().Str("component", "registry").Logger(),
		now:      time.Now,
	}
}

// Connect registers a connection for an event session.
func (h *Hub) Connect(eventID, sessionID string, conn ws.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[eventID] == nil {
		h.conns[eventID] = make(map[string]ws.Conn)
	}
	h.conns[eventID][sessionID] = conn
}

// Disconnect removes a connection. Called only on an explicit disconnect
// signal from the transport; send failures never deregister.
func (h *Hub) Disconnect(eventID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conns[eventID]; ok {
		delete(conns, sessionID)
		if len(conns) == 0 {
			delete(h.conns, eventID)
		}
	}
}

// snapshot copies the recipient set so connects/disconnects during a
// broadcast cannot race the fan-out.
func (h *Hub) snapshot(eventID string) map[string]ws.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.conns[eventID]
	out := make(map[string]ws.Conn, len(conns))
	for sid, c := range conns {
		out[sid] = c
	}
	return out
}

// Broadcast sends a message to every connection registered for the event.
// Best effort: a failed send is logged and swallowed so one dead client
// cannot fail an admin's progression command.
func (h *Hub) Broadcast(ctx context.Context, eventID string, msg ws.Envelope) {
	conns := h.snapshot(eventID)

	var wg sync.WaitGroup
	for sid, conn := range conns {
		wg.Add(1)
		go func(sid string, conn ws.Conn) {
			defer wg.Done()
			if err := conn.SendJSON(msg); err != nil {
				h.log.Debug().Err(err).
					Str("event_id", eventID).
					Str("session_id", sid).
					Msg("broadcast send failed")
			}
		}(sid, conn)
	}
	wg.Wait()
}

// BroadcastQuestion fans out a question payload and records the delivery
// timestamp for every connection the send succeeded to. The recorded map
// replaces the previous question's map entirely.
func (h *Hub) BroadcastQuestion(ctx context.Context, eventID string, msg ws.Envelope) map[string]time.Time {
	conns := h.snapshot(eventID)

	var (
		mu        sync.Mutex
		delivered = make(map[string]time.Time, len(conns))
		wg        sync.WaitGroup
	)
	for sid, conn := range conns {
		wg.Add(1)
		go func(sid string, conn ws.Conn) {
			defer wg.Done()
			if err := conn.SendJSON(msg); err != nil {
				h.log.Debug().Err(err).
					Str("event_id", eventID).
					Str("session_id", sid).
					Msg("question send failed")
				return
			}
			mu.Lock()
			delivered[sid] = h.now()
			mu.Unlock()
		}(sid, conn)
	}
	wg.Wait()

	if err := h.delivery.Replace(ctx, eventID, delivered); err != nil {
		h.log.Error().Err(err).Str("event_id", eventID).Msg("record delivery timestamps")
	}
	return delivered
}

// LocalSessions lists the session ids currently connected to this instance
// for an event.
func (h *Hub) LocalSessions(eventID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sessions := make([]string, 0, len(h.conns[eventID]))
	for sid := range h.conns[eventID] {
		sessions = append(sessions, sid)
	}
	return sessions
}

// DeliveredAt returns the last recorded question delivery time for a
// session, if any.
func (h *Hub) DeliveredAt(ctx context.Context, eventID, sessionID string) (time.Time, bool) {
	t, ok, err := h.delivery.Get(ctx, eventID, sessionID)
	if err != nil {
		h.log.Warn().Err(err).Str("event_id", eventID).Msg("delivery lookup failed")
		return time.Time{}, false
	}
	return t, ok
}

// ClearDelivered drops all delivery timestamps for an event.
func (h *Hub) ClearDelivered(ctx context.Context, eventID string) {
	if err := h.delivery.Clear(ctx, eventID); err != nil {
		h.log.Warn().Err(err).Str("event_id", eventID).Msg("delivery clear failed")
	}
}
