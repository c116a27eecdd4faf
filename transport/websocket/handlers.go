package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

func (that *Server) handleConnect(ctx context.Context, current *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq RequestPayload
	if err := decodePayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(current, msg.Action, "invalid payload")
	}

	sessionID, state, err := that.gameManager.GetOrCreateSession(ctx, payloadReq.SessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return that.sendErrorResponse(current, msg.Action, apperror.ErrSessionNotFound.Error())
	}

	if err != nil {
		log.Error("failed to get or create session", "error", err)
		return that.sendErrorResponse(current, msg.Action, "failed to connect to session")
	}

	current.stopFollowing()

	// pushes wait for the reply, so an update is never lost or sent ahead of it
	ready := make(chan struct{})
	defer close(ready)

	game, unsubscribe := state.Watch(gomoku.ObserverFunc(func(game entity.Game) {
		<-ready

		if err := current.send(actionUpdate, newResponsePayload(sessionID, game)); err != nil {
			log.Warn("dropping client after failed push", "session_id", sessionID, "error", err)
			current.close(websocket.CloseGoingAway, "write failed")
		}
	}))
	current.follow(sessionID, unsubscribe)

	if err = current.send(msg.Action, newResponsePayload(sessionID, game)); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("client connected to session", "session_id", sessionID)

	return nil
}

func (that *Server) handlePlace(ctx context.Context, current *client, msg *Message) error {
	if current.sessionID == "" {
		return that.sendErrorResponse(current, msg.Action, "not connected to a session")
	}

	var payloadReq RequestPayload
	if err := decodePayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(current, msg.Action, "invalid payload")
	}

	if payloadReq.Row == nil || payloadReq.Col == nil {
		return that.sendErrorResponse(current, msg.Action, "row and col are required")
	}

	placed, game, err := that.gameManager.Place(ctx, current.sessionID, *payloadReq.Row, *payloadReq.Col)
	if err != nil {
		return that.handleGameError(current, msg.Action, err)
	}

	payloadResp := newResponsePayload(current.sessionID, game)
	payloadResp.Placed = &placed

	return current.send(msg.Action, payloadResp)
}

func (that *Server) handleReset(ctx context.Context, current *client, msg *Message) error {
	if current.sessionID == "" {
		return that.sendErrorResponse(current, msg.Action, "not connected to a session")
	}

	game, err := that.gameManager.Reset(ctx, current.sessionID)
	if err != nil {
		return that.handleGameError(current, msg.Action, err)
	}

	return current.send(msg.Action, newResponsePayload(current.sessionID, game))
}

func (that *Server) handleState(ctx context.Context, current *client, msg *Message) error {
	if current.sessionID == "" {
		return that.sendErrorResponse(current, msg.Action, "not connected to a session")
	}

	game, err := that.gameManager.State(ctx, current.sessionID)
	if err != nil {
		return that.handleGameError(current, msg.Action, err)
	}

	return current.send(msg.Action, newResponsePayload(current.sessionID, game))
}

func (that *Server) handleGameError(current *client, action string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrOutOfRange):
		return that.sendErrorResponse(current, action, apperror.ErrOutOfRange.Error())
	case errors.Is(err, apperror.ErrSessionNotFound):
		return that.sendErrorResponse(current, action, apperror.ErrSessionNotFound.Error())
	default:
		that.logger.Error("game operation failed", "action", action, "session_id", current.sessionID, "error", err)
		return that.sendErrorResponse(current, action, "internal error")
	}
}

func (that *Server) sendErrorResponse(current *client, action, errorMsg string) error {
	if err := current.send(action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func newResponsePayload(sessionID string, game entity.Game) ResponsePayload {
	return ResponsePayload{
		SessionID: sessionID,
		Game:      &game,
		Message:   gomoku.StatusMessage(game),
	}
}

func decodePayload(msg *Message, payload *RequestPayload) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}
