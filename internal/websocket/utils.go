package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// sendTimeout bounds how long one recipient can stall a broadcast.
const sendTimeout = 5 * time.Second

// Conn is the outbound half of a participant connection as seen by the
// registry. Wrapping the gorilla conn keeps the fan-out code testable.
type Conn interface {
	SendJSON(v interface{}) error
}

// GorillaConn adapts a *websocket.Conn to the registry's Conn interface.
// The mutex serializes writes: broadcast fan-out goroutines and the
// handler's control frames must not interleave on one socket.
type GorillaConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewGorillaConn wraps an upgraded connection.
func NewGorillaConn(conn *websocket.Conn) *GorillaConn {
	return &GorillaConn{conn: conn}
}

// SendJSON writes v with a write deadline so a hung peer cannot block the
// sender longer than sendTimeout.
func (c *GorillaConn) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	return c.conn.WriteJSON(v)
}
