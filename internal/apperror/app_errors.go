package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrOutOfRange      = errors.New("coordinate is out of range")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidGame     = errors.New("game state is inconsistent")
)
