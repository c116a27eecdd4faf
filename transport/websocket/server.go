package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type gameManager interface {
	GetOrCreateSession(ctx context.Context, id string) (string, *gomoku.BoardState, error)
	Place(ctx context.Context, id string, row, col int) (bool, entity.Game, error)
	Reset(ctx context.Context, id string) (entity.Game, error)
	State(ctx context.Context, id string) (entity.Game, error)
}

type handlerFunc func(ctx context.Context, client *client, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameManager gameManager
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc

	mu       sync.Mutex
	server   *http.Server
	clients  map[*client]struct{}
	stopping bool
}

func New(logger *slog.Logger, gameManager gameManager) *Server {
	server := &Server{
		logger:      logger,
		gameManager: gameManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]handlerFunc),
		clients:  make(map[*client]struct{}),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionPlace] = server.handlePlace
	server.handlers[actionReset] = server.handleReset
	server.handlers[actionState] = server.handleState

	return server
}

// Handler - serves the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server. It blocks until Stop is called.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	that.mu.Lock()
	that.server = srv
	that.mu.Unlock()

	that.logger.Info("WebSocket server listening", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop - stops accepting connections and closes the open ones.
// Shutdown does not track hijacked connections, so each client is closed here.
func (that *Server) Stop(ctx context.Context) error {
	that.mu.Lock()
	that.stopping = true
	srv := that.server

	clients := make([]*client, 0, len(that.clients))
	for current := range that.clients {
		clients = append(clients, current)
	}
	that.mu.Unlock()

	var err error
	if srv != nil {
		if err = srv.Shutdown(ctx); err != nil {
			err = fmt.Errorf("failed to stop server: %w", err)
		}
	}

	for _, current := range clients {
		current.close(websocket.CloseGoingAway, "server shutting down")
	}

	that.logger.Info("WebSocket server stopped", "closed_clients", len(clients))

	return err
}

func (that *Server) track(current *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stopping {
		return false
	}

	that.clients[current] = struct{}{}

	return true
}

func (that *Server) untrack(current *client) {
	that.mu.Lock()
	delete(that.clients, current)
	that.mu.Unlock()
}

func (that *Server) isStopping() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.stopping
}

// upgradeToWebSocket - upgrades the connection to WebSocket and serves it until it closes.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	current := &client{conn: conn}

	if !that.track(current) {
		current.close(websocket.CloseGoingAway, "server shutting down")
		return
	}

	defer func() {
		that.untrack(current)
		current.stopFollowing()
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.handleMessages(ctx, current); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client one at a time.
func (that *Server) handleMessages(ctx context.Context, current *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, body, err := current.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || that.isStopping() {
				log.Info("WebSocket connection closed", "session_id", current.sessionID)
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(body, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)

			if err = current.send("", ResponsePayload{Error: "invalid message"}); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = current.send(message.Action, ResponsePayload{Error: "unknown action"}); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, current, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
