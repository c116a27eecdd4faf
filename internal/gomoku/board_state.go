package gomoku

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Observer receives a snapshot of the game after every placement and every reset.
// Each observer is called from its own goroutine, one snapshot at a time, in mutation order.
type Observer interface {
	GameUpdated(game entity.Game)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(game entity.Game)

func (that ObserverFunc) GameUpdated(game entity.Game) {
	that(game)
}

// CommitFunc is called with the next game before it replaces the current one.
// An error leaves the current game untouched.
type CommitFunc func(next entity.Game) error

// BoardState owns the game of one session. All mutation goes through Place and Reset;
// readers only ever get copies.
type BoardState struct {
	mu     sync.Mutex
	game   entity.Game
	nextID int

	subscriptions map[int]*subscription
}

func NewBoardState() *BoardState {
	return newBoardState(NewGame())
}

// RestoreBoardState - resumes a session from a previously captured game.
// The game is checked first and its move counter is recounted from the board.
func RestoreBoardState(game entity.Game) (*BoardState, error) {
	if err := normalizeGame(&game); err != nil {
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	return newBoardState(game), nil
}

func newBoardState(game entity.Game) *BoardState {
	return &BoardState{
		game:          game,
		subscriptions: make(map[int]*subscription),
	}
}

// Place puts the current player's stone on (row, col). See the package level Place for the rules.
// The returned game is the state right after this call, whether or not a stone was placed.
func (that *BoardState) Place(row, col int) (bool, entity.Game, error) {
	return that.PlaceWith(row, col, nil)
}

// PlaceWith - like Place, but a placed stone only becomes visible once commit accepts the next game.
func (that *BoardState) PlaceWith(row, col int, commit CommitFunc) (bool, entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	next := that.game

	placed, err := Place(&next, row, col)
	if err != nil || !placed {
		return false, that.game, err
	}

	if commit != nil {
		if err = commit(next); err != nil {
			return false, that.game, err
		}
	}

	that.game = next
	that.publish(next)

	return true, next, nil
}

// Reset - starts a new game on the same session. It always succeeds.
func (that *BoardState) Reset() entity.Game {
	game, _ := that.ResetWith(nil)
	return game
}

// ResetWith - like Reset, but the new game only replaces the current one once commit accepts it.
func (that *BoardState) ResetWith(commit CommitFunc) (entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	next := NewGame()

	if commit != nil {
		if err := commit(next); err != nil {
			return that.game, err
		}
	}

	that.game = next
	that.publish(next)

	return next, nil
}

// State - returns a copy of the current game.
func (that *BoardState) State() entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.game
}

// Subscribe registers an observer and returns a function that removes it.
func (that *BoardState) Subscribe(observer Observer) func() {
	_, unsubscribe := that.Watch(observer)
	return unsubscribe
}

// Watch - registers an observer and returns the game it starts from.
// Every mutation after that snapshot reaches the observer, and none before it does.
func (that *BoardState) Watch(observer Observer) (entity.Game, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextID
	that.nextID++

	sub := newSubscription(observer)
	that.subscriptions[id] = sub

	go sub.run()

	var once sync.Once

	return that.game, func() {
		once.Do(func() {
			that.mu.Lock()
			delete(that.subscriptions, id)
			that.mu.Unlock()

			sub.stop()
		})
	}
}

// publish queues the snapshot for every observer. It must be called with mu held and never blocks.
func (that *BoardState) publish(snapshot entity.Game) {
	for _, sub := range that.subscriptions {
		sub.push(snapshot)
	}
}

// subscription delivers snapshots to one observer. A slow observer only delays itself.
type subscription struct {
	observer Observer

	mu      sync.Mutex
	pending []entity.Game

	wake chan struct{}
	done chan struct{}
}

func newSubscription(observer Observer) *subscription {
	return &subscription{
		observer: observer,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (that *subscription) push(game entity.Game) {
	that.mu.Lock()
	that.pending = append(that.pending, game)
	that.mu.Unlock()

	select {
	case that.wake <- struct{}{}:
	default:
	}
}

func (that *subscription) stop() {
	close(that.done)
}

func (that *subscription) run() {
	for {
		select {
		case <-that.done:
			return
		case <-that.wake:
		}

		for {
			that.mu.Lock()
			batch := that.pending
			that.pending = nil
			that.mu.Unlock()

			if len(batch) == 0 {
				break
			}

			for _, game := range batch {
				select {
				case <-that.done:
					return
				default:
				}

				that.observer.GameUpdated(game)
			}
		}
	}
}
