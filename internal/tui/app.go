package tui

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// App is a hot-seat game in the terminal: both players share the keyboard and mouse.
type App struct {
	logger   *slog.Logger
	screen   tcell.Screen
	state    *gomoku.BoardState
	renderer *Renderer

	lastButtons tcell.ButtonMask
}

func NewApp(logger *slog.Logger, screen tcell.Screen, state *gomoku.BoardState) *App {
	return &App{
		logger:   logger,
		screen:   screen,
		state:    state,
		renderer: NewRenderer(screen, state.State()),
	}
}

// Run - draws the board and handles input until the player quits. The screen must be initialized.
func (that *App) Run() {
	// updates wait until the renderer holds the game they follow
	ready := make(chan struct{})

	game, unsubscribe := that.state.Watch(gomoku.ObserverFunc(func(game entity.Game) {
		<-ready
		that.renderer.GameUpdated(game)
	}))
	defer unsubscribe()

	that.screen.EnableMouse()
	that.renderer.GameUpdated(game)
	close(ready)

	for {
		ev := that.screen.PollEvent()
		if ev == nil {
			return
		}

		if quit := that.HandleEvent(ev); quit {
			return
		}
	}
}

// HandleEvent - applies one terminal event and reports whether the app should stop.
func (that *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		that.screen.Sync()
		that.renderer.Draw()
	case *tcell.EventKey:
		return that.handleKey(ev)
	case *tcell.EventMouse:
		that.handleMouse(ev)
	}

	return false
}

func (that *App) handleKey(ev *tcell.EventKey) bool {
	switch keyCommand(ev) {
	case commandUp:
		that.renderer.MoveCursor(-1, 0)
	case commandDown:
		that.renderer.MoveCursor(1, 0)
	case commandLeft:
		that.renderer.MoveCursor(0, -1)
	case commandRight:
		that.renderer.MoveCursor(0, 1)
	case commandPlace:
		that.place(that.renderer.Cursor())
	case commandReset:
		that.state.Reset()
		that.logger.Info("game reset")
	case commandQuit:
		return true
	case commandNone:
	}

	return false
}

func (that *App) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && that.lastButtons&tcell.Button1 == 0
	that.lastButtons = buttons

	if !pressed {
		return
	}

	row, col, ok := CellAt(ev.Position())
	if !ok {
		return
	}

	that.renderer.SetCursor(row, col)
	that.place(row, col)
}

func (that *App) place(row, col int) {
	placed, game, err := that.state.Place(row, col)
	if err != nil {
		that.logger.Error("failed to place stone", "row", row, "col", col, "error", err)
		return
	}

	if !placed {
		that.logger.Debug("move ignored", "row", row, "col", col, "status", game.Status)
		return
	}

	if game.IsOver() {
		that.logger.Info("game finished", "winner", game.Winner.String(), "moves", game.Moves)
	}
}
