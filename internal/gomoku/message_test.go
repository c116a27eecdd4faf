package gomoku

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func TestStatusMessage(t *testing.T) {
	t.Run("Turn", func(t *testing.T) {
		game := NewGame()
		assert.Equal(t, "Current turn: Black", StatusMessage(game))

		game.Turn = entity.StoneWhite
		assert.Equal(t, "Current turn: White", StatusMessage(game))
	})

	t.Run("Winner", func(t *testing.T) {
		game := NewGame()
		game.Status = entity.StatusFinished
		game.Winner = entity.StoneWhite

		assert.Equal(t, "Game over! White wins!", StatusMessage(game))
	})

	t.Run("Draw", func(t *testing.T) {
		game := NewGame()
		game.Status = entity.StatusFinished

		assert.Equal(t, "Game over! Draw.", StatusMessage(game))
	})
}
