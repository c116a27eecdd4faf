package tui

import (
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Screen layout. Each intersection is two columns wide so the board looks square.
const (
	boardLeft = 3
	boardTop  = 1
	cellWidth = 2

	statusLine = boardTop + entity.BoardSize + 1
	helpLine   = statusLine + 1

	helpText = "arrows: move  enter/space: place  r: reset  q: quit"
)

const (
	runeBlack = '●'
	runeWhite = '○'
	runeStar  = '+'
)

var starPoints = map[[2]int]bool{
	{3, 3}:   true,
	{11, 3}:  true,
	{3, 11}:  true,
	{11, 11}: true,
	{7, 7}:   true,
}

var (
	styleBoard  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorBurlyWood)
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus = tcell.StyleDefault.Bold(true)
)

// Renderer draws the board of one session. It redraws whenever the game changes.
// Updates arrive on the observer goroutine while input is handled on another, so drawing is serialized.
type Renderer struct {
	screen tcell.Screen
	drawMu sync.Mutex

	mu        sync.Mutex
	game      entity.Game
	cursorRow int
	cursorCol int
}

func NewRenderer(screen tcell.Screen, game entity.Game) *Renderer {
	return &Renderer{
		screen:    screen,
		game:      game,
		cursorRow: entity.BoardSize / 2,
		cursorCol: entity.BoardSize / 2,
	}
}

// GameUpdated - redraws with the new game.
func (that *Renderer) GameUpdated(game entity.Game) {
	that.mu.Lock()
	that.game = game
	that.mu.Unlock()

	that.Draw()
}

// Cursor - returns the highlighted intersection.
func (that *Renderer) Cursor() (int, int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.cursorRow, that.cursorCol
}

// MoveCursor - moves the cursor, stopping at the edges of the board.
func (that *Renderer) MoveCursor(dRow, dCol int) {
	that.mu.Lock()
	that.cursorRow = clamp(that.cursorRow+dRow, 0, entity.BoardSize-1)
	that.cursorCol = clamp(that.cursorCol+dCol, 0, entity.BoardSize-1)
	that.mu.Unlock()

	that.Draw()
}

// SetCursor - puts the cursor on (row, col) if it is on the board.
func (that *Renderer) SetCursor(row, col int) {
	if !entity.InBounds(row, col) {
		return
	}

	that.mu.Lock()
	that.cursorRow, that.cursorCol = row, col
	that.mu.Unlock()

	that.Draw()
}

func (that *Renderer) Draw() {
	that.drawMu.Lock()
	defer that.drawMu.Unlock()

	that.mu.Lock()
	game := that.game
	cursorRow, cursorCol := that.cursorRow, that.cursorCol
	that.mu.Unlock()

	that.screen.Clear()

	that.drawLabels()

	for row := range entity.BoardSize {
		for col := range entity.BoardSize {
			style := styleBoard
			if row == cursorRow && col == cursorCol {
				style = style.Reverse(true)
			}

			that.drawCell(row, col, game.Board.At(row, col), style)
		}
	}

	that.drawText(0, statusLine, gomoku.StatusMessage(game), styleStatus)
	that.drawText(0, helpLine, helpText, styleLabel)

	that.screen.Show()
}

func (that *Renderer) drawLabels() {
	for col := range entity.BoardSize {
		that.screen.SetContent(boardLeft+col*cellWidth, 0, rune('A'+col), nil, styleLabel)
	}

	for row := range entity.BoardSize {
		label := strconv.Itoa(row + 1)
		if len(label) == 1 {
			label = " " + label
		}

		that.drawText(0, boardTop+row, label, styleLabel)
	}
}

func (that *Renderer) drawCell(row, col int, stone entity.Stone, style tcell.Style) {
	x, y := boardLeft+col*cellWidth, boardTop+row

	connector := '─'
	if col == entity.BoardSize-1 {
		connector = ' '
	}

	switch stone {
	case entity.StoneBlack:
		that.screen.SetContent(x, y, runeBlack, nil, style)
	case entity.StoneWhite:
		that.screen.SetContent(x, y, runeWhite, nil, style)
	default:
		that.screen.SetContent(x, y, gridRune(row, col), nil, style)
	}

	that.screen.SetContent(x+1, y, connector, nil, styleBoard)
}

func (that *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		that.screen.SetContent(x+i, y, r, nil, style)
	}
}

// gridRune returns the box-drawing character of an empty intersection.
func gridRune(row, col int) rune {
	if starPoints[[2]int{row, col}] {
		return runeStar
	}

	last := entity.BoardSize - 1

	switch {
	case row == 0 && col == 0:
		return '┌'
	case row == 0 && col == last:
		return '┐'
	case row == last && col == 0:
		return '└'
	case row == last && col == last:
		return '┘'
	case row == 0:
		return '┬'
	case row == last:
		return '┴'
	case col == 0:
		return '├'
	case col == last:
		return '┤'
	default:
		return '┼'
	}
}

func clamp(value, low, high int) int {
	return max(low, min(value, high))
}
