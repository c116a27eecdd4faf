package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

type command int

const (
	commandNone command = iota
	commandUp
	commandDown
	commandLeft
	commandRight
	commandPlace
	commandReset
	commandQuit
)

// CellAt - maps a screen position to the intersection drawn there. Positions outside the board report false.
func CellAt(x, y int) (int, int, bool) {
	if x < boardLeft || y < boardTop {
		return 0, 0, false
	}

	row, col := y-boardTop, (x-boardLeft)/cellWidth
	if !entity.InBounds(row, col) {
		return 0, 0, false
	}

	return row, col, true
}

func keyCommand(ev *tcell.EventKey) command {
	switch ev.Key() {
	case tcell.KeyUp:
		return commandUp
	case tcell.KeyDown:
		return commandDown
	case tcell.KeyLeft:
		return commandLeft
	case tcell.KeyRight:
		return commandRight
	case tcell.KeyEnter:
		return commandPlace
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return commandQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return commandPlace
		case 'r', 'R':
			return commandReset
		case 'q', 'Q':
			return commandQuit
		}
	}

	return commandNone
}
