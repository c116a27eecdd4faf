package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	actionConnect = "connect"
	actionPlace   = "game:place"
	actionReset   = "game:reset"
	actionState   = "game:state"
	actionUpdate  = "game:update"
)

// writeWait - how long a single write may take before the peer is considered gone.
const writeWait = 10 * time.Second

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Row       *int   `json:"row,omitempty"`
	Col       *int   `json:"col,omitempty"`
}

type ResponsePayload struct {
	SessionID string       `json:"session_id,omitempty"`
	Game      *entity.Game `json:"game,omitempty"`
	Placed    *bool        `json:"placed,omitempty"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// client - one WebSocket connection. gorilla connections support a single concurrent writer.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	sessionID   string
	unsubscribe func()
}

func (that *client) send(action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// close - says goodbye to the peer and drops the connection. It is safe to call from any goroutine.
func (that *client) close(code int, text string) {
	deadline := time.Now().Add(writeWait)
	_ = that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
	_ = that.conn.Close()
}

// follow - remembers the session the client plays and the subscription pushing its updates.
func (that *client) follow(sessionID string, unsubscribe func()) {
	that.stopFollowing()

	that.sessionID = sessionID
	that.unsubscribe = unsubscribe
}

func (that *client) stopFollowing() {
	if that.unsubscribe != nil {
		that.unsubscribe()
		that.unsubscribe = nil
	}
}
