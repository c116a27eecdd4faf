package entity

import (
	"errors"
	"fmt"
)

const (
	BoardSize = 15
	WinLength = 5

	// CellCount is the number of intersections, and so the most moves a game can have.
	CellCount = BoardSize * BoardSize
)

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
)

var ErrUnknownStone = errors.New("unknown stone")

// Stone is the content of a single intersection.
type Stone int8

const (
	StoneEmpty Stone = iota
	StoneBlack
	StoneWhite
)

func (that Stone) String() string {
	switch that {
	case StoneBlack:
		return "black"
	case StoneWhite:
		return "white"
	default:
		return ""
	}
}

// Opponent - returns the other color. Empty has no opponent.
func (that Stone) Opponent() Stone {
	switch that {
	case StoneBlack:
		return StoneWhite
	case StoneWhite:
		return StoneBlack
	default:
		return StoneEmpty
	}
}

func (that Stone) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Stone) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*that = StoneEmpty
	case "black":
		*that = StoneBlack
	case "white":
		*that = StoneWhite
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStone, text)
	}

	return nil
}

// Board is the 15x15 grid, indexed [row][col].
type Board [BoardSize][BoardSize]Stone

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// At - returns the stone at (row, col), or StoneEmpty when outside the board.
func (that *Board) At(row, col int) Stone {
	if !InBounds(row, col) {
		return StoneEmpty
	}

	return that[row][col]
}

// Game is the complete state of one match. It is a plain value: assigning it copies the board.
type Game struct {
	Board  Board  `json:"board"`
	Turn   Stone  `json:"turn"`
	Winner Stone  `json:"winner"`
	Status string `json:"status"`
	Moves  int    `json:"moves"`
}

func (that *Game) IsOver() bool {
	return that.Status == StatusFinished
}

// IsBoardFull - every intersection holds a stone.
func (that *Game) IsBoardFull() bool {
	return that.Moves >= CellCount
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// IsDraw - the board filled up without anyone completing a line.
func (that *Game) IsDraw() bool {
	return that.IsOver() && that.Winner == StoneEmpty
}
