package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/middleware"
	"github.com/quizlive/quizlive-backend/internal/service"
	ws "github.com/quizlive/quizlive-backend/internal/websocket"
)

// ConnectionRegistry is the registration surface of the connection
// registry. Both the local hub and the Redis relay satisfy it.
type ConnectionRegistry interface {
	Connect(eventID, sessionID string, conn ws.Conn)
	Disconnect(eventID, sessionID string)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler upgrades participant connections and binds them to the
// registry for question broadcasts.
type WSHandler struct {
	registry           ConnectionRegistry
	participantService *service.ParticipantService
	eventService       *service.EventService
	log                zerolog.Logger
	upgrader           websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(
	registry ConnectionRegistry,
	participantService *service.ParticipantService,
	eventService *service.EventService,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		registry:           registry,
		participantService: participantService,
		eventService:       eventService,
		log:                log.With().Str("component", "ws_handler").Logger(),
		upgrader:           buildUpgrader(allowedOrigins),
	}
}

// EventStream godoc
// WS /ws/v1/events/:event_id/stream
// Upgrades to WebSocket for live event broadcasts. The session cookie from
// the join step authenticates the connection.
func (h *WSHandler) EventStream(c *gin.Context) {
	eventID := c.Param("event_id")
	sessionID := middleware.ParticipantSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// The session must belong to this event before any broadcast reaches it.
	if _, err := h.eventService.GetUserState(c.Request.Context(), eventID, sessionID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("event_id", eventID).
		Str("session_id", sessionID).
		Logger()

	h.registry.Connect(eventID, sessionID, ws.NewGorillaConn(conn))
	defer h.registry.Disconnect(eventID, sessionID)
	wsLog.Info().Msg("Participant connected")

	// Participants never send payloads; the read loop exists to notice the
	// close and to answer pings.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			break
		}
	}

	wsLog.Info().Msg("Participant disconnected")
}
