package registry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/config"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// Relay is the shared-store variant of the broadcast surface. Messages are
// published to Redis pub/sub and every instance (including the publisher)
// delivers them to its own local connections via the subscribe loop, so a
// multi-instance deployment fans out to all participants.
//
// The contract is identical to Hub's: callers cannot tell which backing
// they talk to.
type Relay struct {
	hub      *Hub
	delivery DeliveryStore
	rdb      *redis.Client
	log      zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	now      func() time.Time
}

// NewRelay wires a Relay over a local Hub and a shared delivery store.
// The delivery store should be Redis-backed so submissions landing on a
// different instance still resolve delivery times.
func NewRelay(hub *Hub, delivery DeliveryStore, rdb *redis.Client, log zerolog.Logger) *Relay {
	return &Relay{
		hub:      hub,
		delivery: delivery,
		rdb:      rdb,
		log:      log.With().Str("component", "registry_relay").Logger(),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start launches the subscribe loop. Call once at startup.
func (r *Relay) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	pubsub := r.rdb.PSubscribe(ctx, config.CacheKey.EventChannelPattern())

	go func() {
		defer close(r.done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				eventID := strings.TrimPrefix(msg.Channel, "event:")
				var env ws.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					r.log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad relay payload")
					continue
				}
				r.hub.Broadcast(ctx, eventID, env)
			}
		}
	}()
}

// Stop tears the subscribe loop down and waits for it to exit.
func (r *Relay) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// Connect registers a connection on the local hub.
func (r *Relay) Connect(eventID, sessionID string, conn ws.Conn) {
	r.hub.Connect(eventID, sessionID, conn)
}

// Disconnect removes a connection from the local hub.
func (r *Relay) Disconnect(eventID, sessionID string) {
	r.hub.Disconnect(eventID, sessionID)
}

// Broadcast publishes the message for delivery on every instance.
func (r *Relay) Broadcast(ctx context.Context, eventID string, msg ws.Envelope) {
	raw, err := json.Marshal(msg)
	if err != nil {
		r.log.Error().Err(err).Msg("marshal broadcast")
		return
	}
	if err := r.rdb.Publish(ctx, config.CacheKey.EventChannel(eventID), raw).Err(); err != nil {
		r.log.Error().Err(err).Str("event_id", eventID).Msg("publish broadcast")
	}
}

// BroadcastQuestion publishes the question and records delivery timestamps
// for this instance's local connections into the shared store. Each
// instance records its own connections, so the union covers the event.
func (r *Relay) BroadcastQuestion(ctx context.Context, eventID string, msg ws.Envelope) map[string]time.Time {
	r.Broadcast(ctx, eventID, msg)

	delivered := make(map[string]time.Time)
	now := r.now()
	for _, sid := range r.hub.LocalSessions(eventID) {
		delivered[sid] = now
	}
	if err := r.delivery.Replace(ctx, eventID, delivered); err != nil {
		r.log.Error().Err(err).Str("event_id", eventID).Msg("record delivery timestamps")
	}
	return delivered
}

// DeliveredAt resolves a delivery timestamp from the shared store.
func (r *Relay) DeliveredAt(ctx context.Context, eventID, sessionID string) (time.Time, bool) {
	t, ok, err := r.delivery.Get(ctx, eventID, sessionID)
	if err != nil {
		r.log.Warn().Err(err).Str("event_id", eventID).Msg("delivery lookup failed")
		return time.Time{}, false
	}
	return t, ok
}
