package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type gameManager interface {
	CreateSession(ctx context.Context) (string, entity.Game, error)
	Place(ctx context.Context, id string, row, col int) (bool, entity.Game, error)
	Reset(ctx context.Context, id string) (entity.Game, error)
	State(ctx context.Context, id string) (entity.Game, error)
	CloseSession(ctx context.Context, id string) error
}

type placeRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	Game      *entity.Game `json:"game"`
	Placed    *bool        `json:"placed,omitempty"`
	Message   string       `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionHandlers struct {
	logger      *slog.Logger
	gameManager gameManager
}

func newSessionHandlers(logger *slog.Logger, gameManager gameManager) *sessionHandlers {
	return &sessionHandlers{
		logger:      logger,
		gameManager: gameManager,
	}
}

func (that *sessionHandlers) create(w http.ResponseWriter, r *http.Request) {
	id, game, err := that.gameManager.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newSessionResponse(id, game))
}

func (that *sessionHandlers) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	game, err := that.gameManager.State(r.Context(), id)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(id, game))
}

func (that *sessionHandlers) place(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var request placeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if request.Row == nil || request.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	placed, game, err := that.gameManager.Place(r.Context(), id, *request.Row, *request.Col)
	if err != nil {
		that.writeError(w, err)
		return
	}

	response := newSessionResponse(id, game)
	response.Placed = &placed

	that.writeJSON(w, http.StatusOK, response)
}

func (that *sessionHandlers) reset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	game, err := that.gameManager.Reset(r.Context(), id)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(id, game))
}

func (that *sessionHandlers) close(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := that.gameManager.CloseSession(r.Context(), id); err != nil {
		that.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func newSessionResponse(id string, game entity.Game) sessionResponse {
	return sessionResponse{
		SessionID: id,
		Game:      &game,
		Message:   gomoku.StatusMessage(game),
	}
}

func (that *sessionHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrOutOfRange):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrOutOfRange.Error()})
	default:
		that.logger.Error("request failed", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
