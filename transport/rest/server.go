package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Server struct {
	logger *slog.Logger
	server *http.Server
}

func NewServer(logger *slog.Logger, port string, gameManager gameManager) *Server {
	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(logger, gameManager),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

// NewRouter - routes of the HTTP API.
func NewRouter(logger *slog.Logger, gameManager gameManager) http.Handler {
	handlers := newSessionHandlers(logger, gameManager)

	router := mux.NewRouter()
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	router.HandleFunc("/sessions", handlers.create).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", handlers.get).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}", handlers.close).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{id}/stones", handlers.place).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/reset", handlers.reset).Methods(http.MethodPost)

	return router
}

// Start - blocks until the server is stopped. A clean Stop is not an error.
func (that *Server) Start() error {
	that.logger.Info("HTTP server listening", "addr", that.server.Addr)

	if err := that.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Stop(ctx context.Context) error {
	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	return nil
}
