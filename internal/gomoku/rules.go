package gomoku

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// NewGame - returns an empty board with black to move.
func NewGame() entity.Game {
	return entity.Game{
		Turn:   entity.StoneBlack,
		Winner: entity.StoneEmpty,
		Status: entity.StatusOngoing,
	}
}

// Place puts the current player's stone on (row, col) and advances the game.
// Moves on an occupied cell or after the game is over are ignored and report placed == false.
// Coordinates outside the board are a caller bug and return apperror.ErrOutOfRange.
func Place(game *entity.Game, row, col int) (bool, error) {
	if err := validateMove(game, row, col); err != nil {
		if errors.Is(err, apperror.ErrGameFinished) || errors.Is(err, apperror.ErrCellOccupied) {
			return false, nil
		}

		return false, err
	}

	color := game.Turn
	game.Board[row][col] = color
	game.Moves++

	updateGameStatus(game, row, col, color)

	return true, nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, row, col int) error {
	if !entity.InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfRange, row, col)
	}

	if game.IsOver() {
		return apperror.ErrGameFinished
	}

	if game.Board[row][col] != entity.StoneEmpty {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(game *entity.Game, row, col int, color entity.Stone) {
	switch {
	case CheckWin(&game.Board, row, col, color):
		game.Winner = color
		game.Status = entity.StatusFinished
	case game.IsBoardFull():
		game.Winner = entity.StoneEmpty
		game.Status = entity.StatusFinished
	default:
		game.Turn = color.Opponent()
	}
}

// normalizeGame - checks a game that did not come from Place and recounts its moves from the board.
func normalizeGame(game *entity.Game) error {
	var black, white int

	for row := range entity.BoardSize {
		for col := range entity.BoardSize {
			switch game.Board[row][col] {
			case entity.StoneBlack:
				black++
			case entity.StoneWhite:
				white++
			case entity.StoneEmpty:
			default:
				return fmt.Errorf("%w: unknown stone at (%d, %d)", apperror.ErrInvalidGame, row, col)
			}
		}
	}

	if black != white && black != white+1 {
		return fmt.Errorf("%w: %d black and %d white stones", apperror.ErrInvalidGame, black, white)
	}

	if game.Turn != entity.StoneBlack && game.Turn != entity.StoneWhite {
		return fmt.Errorf("%w: no player to move", apperror.ErrInvalidGame)
	}

	switch game.Status {
	case entity.StatusOngoing:
		if game.Winner != entity.StoneEmpty {
			return fmt.Errorf("%w: ongoing game has a winner", apperror.ErrInvalidGame)
		}

		// black moves first, so equal counts mean black is next
		if expected := turnFor(black, white); game.Turn != expected {
			return fmt.Errorf("%w: %s to move after %d moves", apperror.ErrInvalidGame, game.Turn, black+white)
		}
	case entity.StatusFinished:
	default:
		return fmt.Errorf("%w: unknown status %q", apperror.ErrInvalidGame, game.Status)
	}

	game.Moves = black + white

	if game.IsOngoing() && game.IsBoardFull() {
		return fmt.Errorf("%w: full board is still ongoing", apperror.ErrInvalidGame)
	}

	return nil
}

func turnFor(black, white int) entity.Stone {
	if black == white {
		return entity.StoneBlack
	}

	return entity.StoneWhite
}
