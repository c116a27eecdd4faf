package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, game *entity.Game) error
	GetByID(ctx context.Context, sessionID string) (*entity.Game, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	mu       sync.Mutex
	sessions map[string]*gomoku.BoardState
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger,
		gameRepo: gameRepo,

		sessions: make(map[string]*gomoku.BoardState),
	}
}

// CreateSession - starts a new session with an empty board and stores it.
func (that *GameManager) CreateSession(ctx context.Context) (string, entity.Game, error) {
	id, current, err := that.createSession(ctx)
	if err != nil {
		return "", entity.Game{}, err
	}

	return id, current.State(), nil
}

// GetOrCreateSession - returns the live board of the session, resuming it from storage if needed.
// An empty id creates a new session.
func (that *GameManager) GetOrCreateSession(ctx context.Context, id string) (string, *gomoku.BoardState, error) {
	if id == "" {
		newID, current, err := that.createSession(ctx)
		if err != nil {
			return "", nil, err
		}

		return newID, current, nil
	}

	current, err := that.getSession(ctx, id)
	if err != nil {
		return "", nil, err
	}

	return id, current, nil
}

// Place - puts a stone on the session board. The next game is stored before anyone can see it,
// so a storage failure leaves the session as it was and the same move can be retried.
func (that *GameManager) Place(ctx context.Context, id string, row, col int) (bool, entity.Game, error) {
	current, err := that.getSession(ctx, id)
	if err != nil {
		return false, entity.Game{}, err
	}

	placed, game, err := current.PlaceWith(row, col, func(next entity.Game) error {
		return that.updateGame(ctx, id, &next)
	})

	switch {
	case errors.Is(err, apperror.ErrOutOfRange):
		return false, game, fmt.Errorf("failed to place stone: %w", err)
	case err != nil:
		return false, game, err
	case !placed:
		return false, game, nil
	}

	if game.IsOver() {
		that.logger.Info("game finished", "session_id", id, "winner", game.Winner.String(), "moves", game.Moves)
	}

	return true, game, nil
}

func (that *GameManager) Reset(ctx context.Context, id string) (entity.Game, error) {
	current, err := that.getSession(ctx, id)
	if err != nil {
		return entity.Game{}, err
	}

	return current.ResetWith(func(next entity.Game) error {
		return that.updateGame(ctx, id, &next)
	})
}

func (that *GameManager) State(ctx context.Context, id string) (entity.Game, error) {
	current, err := that.getSession(ctx, id)
	if err != nil {
		return entity.Game{}, err
	}

	return current.State(), nil
}

// CloseSession - forgets the session both in memory and in storage.
func (that *GameManager) CloseSession(ctx context.Context, id string) error {
	log := that.logger.With("method", "CloseSession", "session_id", id)

	that.mu.Lock()
	_, inMemory := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	err := that.gameRepo.DeleteByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrGameNotFound) && !inMemory:
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	case errors.Is(err, repository.ErrGameNotFound):
		// expired in storage while still live here
	case err != nil:
		return fmt.Errorf("failed to delete game: %w", err)
	}

	log.Info("session closed")

	return nil
}

func (that *GameManager) createSession(ctx context.Context) (string, *gomoku.BoardState, error) {
	id := pkg.GenerateSessionID()

	created := gomoku.NewBoardState()

	game := created.State()
	if err := that.gameRepo.CreateOrUpdate(ctx, id, &game); err != nil {
		return "", nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.mu.Lock()
	that.sessions[id] = created
	that.mu.Unlock()

	that.logger.Info("session created", "session_id", id)

	return id, created, nil
}

func (that *GameManager) getSession(ctx context.Context, id string) (*gomoku.BoardState, error) {
	that.mu.Lock()
	current, ok := that.sessions[id]
	that.mu.Unlock()

	if ok {
		return current, nil
	}

	if !pkg.IsValidSessionID(id) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	stored, err := that.gameRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	restored, err := gomoku.RestoreBoardState(*stored)
	if err != nil {
		that.logger.Error("stored game rejected", "session_id", id, "error", err)
		return nil, err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	// another caller may have resumed it meanwhile
	if current, ok = that.sessions[id]; ok {
		return current, nil
	}

	that.sessions[id] = restored

	that.logger.Info("session resumed", "session_id", id, "moves", restored.State().Moves)

	return restored, nil
}

func (that *GameManager) updateGame(ctx context.Context, id string, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, id, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}
