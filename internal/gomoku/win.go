package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

type direction struct {
	dRow, dCol int
}

// axes are walked in both directions: horizontal, vertical, down-right and down-left diagonals.
var axes = [4]direction{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// CheckWin reports whether the stone of the given color at (row, col) is part of an
// unbroken line of at least entity.WinLength stones on any axis.
// (row, col) must be on the board.
func CheckWin(board *entity.Board, row, col int, color entity.Stone) bool {
	for _, axis := range axes {
		count := 1 +
			countRun(board, row, col, axis.dRow, axis.dCol, color) +
			countRun(board, row, col, -axis.dRow, -axis.dCol, color)

		if count >= entity.WinLength {
			return true
		}
	}

	return false
}

// countRun - counts consecutive stones of color starting next to (row, col) and moving by (dRow, dCol).
func countRun(board *entity.Board, row, col, dRow, dCol int, color entity.Stone) int {
	count := 0

	for r, c := row+dRow, col+dCol; entity.InBounds(r, c) && board[r][c] == color; r, c = r+dRow, c+dCol {
		count++
	}

	return count
}
