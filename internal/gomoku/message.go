package gomoku

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// StatusMessage - formats the line shown above the board.
func StatusMessage(game entity.Game) string {
	switch {
	case game.IsDraw():
		return "Game over! Draw."
	case game.IsOver():
		return fmt.Sprintf("Game over! %s wins!", colorName(game.Winner))
	default:
		return "Current turn: " + colorName(game.Turn)
	}
}

func colorName(stone entity.Stone) string {
	switch stone {
	case entity.StoneBlack:
		return "Black"
	case entity.StoneWhite:
		return "White"
	default:
		return "-"
	}
}
