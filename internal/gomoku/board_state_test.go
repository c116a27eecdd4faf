package gomoku

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// play places stones in order and fails the test on any rejected move.
func play(t *testing.T, state *BoardState, cells ...[2]int) entity.Game {
	t.Helper()

	var game entity.Game
	for _, cell := range cells {
		placed, snapshot, err := state.Place(cell[0], cell[1])
		require.NoError(t, err)
		require.True(t, placed, "move (%d, %d) was rejected", cell[0], cell[1])
		game = snapshot
	}

	return game
}

func TestBoardState_HorizontalWin(t *testing.T) {
	// Given: a new session
	state := NewBoardState()

	// When: black builds four in a row while white plays elsewhere
	game := play(t, state,
		[2]int{7, 7}, [2]int{0, 0},
		[2]int{7, 8}, [2]int{0, 2},
		[2]int{7, 9}, [2]int{0, 4},
		[2]int{7, 10},
	)

	// Then: the game is still on
	assert.False(t, game.IsOver())
	assert.Equal(t, entity.StoneWhite, game.Turn)

	// When: white moves and black places the fifth stone
	game = play(t, state, [2]int{0, 6}, [2]int{7, 11})

	// Then: black wins
	assert.True(t, game.IsOver())
	assert.Equal(t, entity.StoneBlack, game.Winner)
	assert.Equal(t, game, state.State())
}

func TestBoardState_DiagonalWin(t *testing.T) {
	state := NewBoardState()

	game := play(t, state,
		[2]int{0, 0}, [2]int{0, 14},
		[2]int{1, 1}, [2]int{2, 14},
		[2]int{2, 2}, [2]int{4, 14},
		[2]int{3, 3}, [2]int{6, 14},
	)
	require.False(t, game.IsOver())

	game = play(t, state, [2]int{4, 4})

	assert.True(t, game.IsOver())
	assert.Equal(t, entity.StoneBlack, game.Winner)
}

func TestBoardState_TurnAlternates(t *testing.T) {
	state := NewBoardState()
	expected := entity.StoneBlack

	for i, cell := range [][2]int{{0, 0}, {5, 5}, {10, 10}, {0, 14}, {14, 0}} {
		require.Equal(t, expected, state.State().Turn, "before move %d", i)

		play(t, state, cell)
		assert.Equal(t, expected, state.State().Board[cell[0]][cell[1]])

		expected = expected.Opponent()
	}
}

func TestBoardState_OccupiedCell(t *testing.T) {
	// Given: black at (0, 0)
	state := NewBoardState()
	play(t, state, [2]int{0, 0})
	before := state.State()

	// When: white tries (0, 0)
	placed, game, err := state.Place(0, 0)

	// Then: board and turn are unchanged
	require.NoError(t, err)
	assert.False(t, placed)
	assert.Equal(t, before, game)
	assert.Equal(t, entity.StoneWhite, game.Turn)
	assert.Equal(t, entity.StoneBlack, game.Board[0][0])
}

func TestBoardState_MoveAfterGameOver(t *testing.T) {
	// Given: a game black has won
	state := NewBoardState()
	play(t, state,
		[2]int{0, 0}, [2]int{1, 0},
		[2]int{0, 1}, [2]int{1, 1},
		[2]int{0, 2}, [2]int{1, 2},
		[2]int{0, 3}, [2]int{1, 3},
		[2]int{0, 4},
	)
	before := state.State()
	require.True(t, before.IsOver())

	// When: another stone is placed
	placed, game, err := state.Place(1, 4)

	// Then: it is a no-op
	require.NoError(t, err)
	assert.False(t, placed)
	assert.Equal(t, before, game)
}

func TestBoardState_OutOfRange(t *testing.T) {
	state := NewBoardState()

	placed, game, err := state.Place(entity.BoardSize, 3)

	require.ErrorIs(t, err, apperror.ErrOutOfRange)
	assert.False(t, placed)
	assert.Equal(t, NewGame(), game)
}

func TestBoardState_Reset(t *testing.T) {
	// Given: a finished game
	state := NewBoardState()
	play(t, state,
		[2]int{5, 0}, [2]int{6, 0},
		[2]int{5, 1}, [2]int{6, 1},
		[2]int{5, 2}, [2]int{6, 2},
		[2]int{5, 3}, [2]int{6, 3},
		[2]int{5, 4},
	)

	// When: the session is reset
	game := state.Reset()

	// Then: everything is back to the start
	assert.Equal(t, NewGame(), game)
	assert.Equal(t, NewGame(), state.State())
	assert.False(t, game.IsOver())

	// And: play continues from scratch
	play(t, state, [2]int{5, 0})
}

func TestBoardState_SnapshotsAreCopies(t *testing.T) {
	state := NewBoardState()
	snapshot := state.State()

	snapshot.Board[3][3] = entity.StoneWhite

	assert.Equal(t, entity.StoneEmpty, state.State().Board[3][3])
}

const waitFor = 2 * time.Second

var errCommitFailed = errors.New("commit failed")

// recorder collects the snapshots an observer receives.
type recorder struct {
	mu      sync.Mutex
	updates []entity.Game
}

func (that *recorder) GameUpdated(game entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.updates = append(that.updates, game)
}

func (that *recorder) snapshot() []entity.Game {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Game(nil), that.updates...)
}

// waitForUpdates blocks until the recorder holds n snapshots.
func (that *recorder) waitForUpdates(t *testing.T, n int) []entity.Game {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(that.snapshot()) >= n
	}, waitFor, 5*time.Millisecond)

	return that.snapshot()
}

func TestRestoreBoardState(t *testing.T) {
	t.Run("Continues a stored game", func(t *testing.T) {
		// Given: a stored game with white to move
		stored := NewGame()
		stored.Board[7][7] = entity.StoneBlack
		stored.Turn = entity.StoneWhite
		stored.Moves = 1

		// When: the session is restored and white plays
		state, err := RestoreBoardState(stored)
		require.NoError(t, err)
		game := play(t, state, [2]int{7, 8})

		// Then: play continues from the stored position
		assert.Equal(t, entity.StoneBlack, game.Board[7][7])
		assert.Equal(t, entity.StoneWhite, game.Board[7][8])
		assert.Equal(t, entity.StoneBlack, game.Turn)
		assert.Equal(t, 2, game.Moves)
	})

	t.Run("Recounts moves from the board", func(t *testing.T) {
		// Given: a stored game whose move counter disagrees with its stones
		stored := NewGame()
		stored.Board[0][0] = entity.StoneBlack
		stored.Board[0][1] = entity.StoneWhite
		stored.Moves = 224

		// When: it is restored
		state, err := RestoreBoardState(stored)
		require.NoError(t, err)

		// Then: the counter matches the board and the next move is not a draw
		assert.Equal(t, 2, state.State().Moves)

		game := play(t, state, [2]int{5, 5})
		assert.True(t, game.IsOngoing())
		assert.Equal(t, 3, game.Moves)
	})

	t.Run("Rejects inconsistent games", func(t *testing.T) {
		unknownStatus := NewGame()
		unknownStatus.Status = "paused"

		tooManyWhite := NewGame()
		tooManyWhite.Board[0][0] = entity.StoneWhite

		wrongTurn := NewGame()
		wrongTurn.Board[0][0] = entity.StoneBlack

		noTurn := NewGame()
		noTurn.Turn = entity.StoneEmpty

		ongoingWinner := NewGame()
		ongoingWinner.Winner = entity.StoneBlack

		tests := map[string]entity.Game{
			"unknown status":           unknownStatus,
			"white moved first":        tooManyWhite,
			"turn does not match":      wrongTurn,
			"nobody to move":           noTurn,
			"ongoing with a winner":    ongoingWinner,
			"zero value is not a game": {},
		}

		for name, stored := range tests {
			t.Run(name, func(t *testing.T) {
				state, err := RestoreBoardState(stored)

				require.ErrorIs(t, err, apperror.ErrInvalidGame)
				assert.Nil(t, state)
			})
		}
	})
}

func TestBoardState_PlaceWith(t *testing.T) {
	t.Run("Commit sees the next game before it is visible", func(t *testing.T) {
		state := NewBoardState()

		var committed entity.Game
		placed, game, err := state.PlaceWith(7, 7, func(next entity.Game) error {
			committed = next
			assert.Equal(t, 0, state.game.Moves)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, placed)
		assert.Equal(t, committed, game)
		assert.Equal(t, game, state.State())
	})

	t.Run("Failed commit leaves the game untouched", func(t *testing.T) {
		// Given: a session with an observer
		state := NewBoardState()
		updates := &recorder{}
		state.Subscribe(updates)

		// When: the commit of a placement fails
		placed, game, err := state.PlaceWith(7, 7, func(entity.Game) error {
			return errCommitFailed
		})

		// Then: nothing was placed and nobody was told
		require.ErrorIs(t, err, errCommitFailed)
		assert.False(t, placed)
		assert.Equal(t, NewGame(), game)
		assert.Equal(t, NewGame(), state.State())

		// And: a retry of the same move succeeds
		game = play(t, state, [2]int{7, 7})
		assert.Equal(t, 1, game.Moves)

		got := updates.waitForUpdates(t, 1)
		assert.Len(t, got, 1)
	})

	t.Run("Ignored moves are not committed", func(t *testing.T) {
		state := NewBoardState()
		play(t, state, [2]int{7, 7})

		placed, _, err := state.PlaceWith(7, 7, func(entity.Game) error {
			t.Fatal("commit called for an ignored move")
			return nil
		})

		require.NoError(t, err)
		assert.False(t, placed)
	})
}

func TestBoardState_ResetWith(t *testing.T) {
	state := NewBoardState()
	play(t, state, [2]int{7, 7})
	before := state.State()

	game, err := state.ResetWith(func(entity.Game) error {
		return errCommitFailed
	})

	require.ErrorIs(t, err, errCommitFailed)
	assert.Equal(t, before, game)
	assert.Equal(t, before, state.State())

	game, err = state.ResetWith(func(next entity.Game) error {
		assert.Equal(t, NewGame(), next)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, NewGame(), game)
}

func TestBoardState_Subscribe(t *testing.T) {
	t.Run("Observers see placements and resets but not ignored moves", func(t *testing.T) {
		state := NewBoardState()
		updates := &recorder{}
		state.Subscribe(updates)

		play(t, state, [2]int{7, 7})
		_, _, _ = state.Place(7, 7)
		_, _, _ = state.Place(-1, 7)
		state.Reset()

		got := updates.waitForUpdates(t, 2)
		require.Len(t, got, 2)
		assert.Equal(t, entity.StoneBlack, got[0].Board[7][7])
		assert.Equal(t, NewGame(), got[1])
	})

	t.Run("Unsubscribed observers get nothing", func(t *testing.T) {
		state := NewBoardState()

		var calls atomic.Int32
		unsubscribe := state.Subscribe(ObserverFunc(func(entity.Game) {
			calls.Add(1)
		}))

		unsubscribe()
		unsubscribe()
		play(t, state, [2]int{1, 1})

		assert.Never(t, func() bool {
			return calls.Load() > 0
		}, 100*time.Millisecond, 5*time.Millisecond)
	})

	t.Run("Observers may read and mutate state", func(t *testing.T) {
		state := NewBoardState()
		seen := make(chan entity.Game, 2)

		state.Subscribe(ObserverFunc(func(game entity.Game) {
			seen <- state.State()

			if game.Moves == 1 {
				_, _, _ = state.Place(0, 0)
			}
		}))

		play(t, state, [2]int{2, 2})

		for range 2 {
			select {
			case <-seen:
			case <-time.After(waitFor):
				t.Fatal("observer was not called")
			}
		}

		assert.Equal(t, 2, state.State().Moves)
	})
}

func TestBoardState_BlockedObserver(t *testing.T) {
	// Given: one observer that never returns until released and one that does not block
	state := NewBoardState()

	release := make(chan struct{})
	state.Subscribe(ObserverFunc(func(entity.Game) {
		<-release
	}))

	updates := &recorder{}
	state.Subscribe(updates)

	// When: two placements and a read happen while the first observer is stuck
	done := make(chan entity.Game)
	go func() {
		_, _, err := state.Place(0, 0)
		assert.NoError(t, err)
		_, _, err = state.Place(1, 1)
		assert.NoError(t, err)

		done <- state.State()
	}()

	// Then: none of them wait for the stuck observer
	select {
	case game := <-done:
		assert.Equal(t, 2, game.Moves)
	case <-time.After(waitFor):
		t.Fatal("mutations blocked behind a stuck observer")
	}

	// And: the other observer still sees both updates
	got := updates.waitForUpdates(t, 2)
	assert.Equal(t, 1, got[0].Moves)
	assert.Equal(t, 2, got[1].Moves)

	close(release)
}

func TestBoardState_Watch(t *testing.T) {
	t.Run("Returns the current game", func(t *testing.T) {
		state := NewBoardState()
		game := play(t, state, [2]int{4, 4})

		snapshot, unsubscribe := state.Watch(&recorder{})
		defer unsubscribe()

		assert.Equal(t, game, snapshot)
	})

	t.Run("No placement falls between the snapshot and the subscription", func(t *testing.T) {
		for range 200 {
			state := NewBoardState()
			updates := &recorder{}

			// When: a placement races with Watch
			placed := make(chan struct{})
			go func() {
				defer close(placed)
				_, _, _ = state.Place(7, 7)
			}()

			snapshot, unsubscribe := state.Watch(updates)
			<-placed

			// Then: the move is either in the snapshot or delivered afterwards
			if snapshot.Moves == 1 {
				assert.Never(t, func() bool { return len(updates.snapshot()) > 0 }, 10*time.Millisecond, time.Millisecond)
			} else {
				got := updates.waitForUpdates(t, 1)
				assert.Equal(t, 1, got[0].Moves)
			}

			unsubscribe()
		}
	})
}

func TestBoardState_ConcurrentPlacements(t *testing.T) {
	// Given: many goroutines racing for distinct, non-adjacent cells
	state := NewBoardState()
	updates := &recorder{}
	state.Subscribe(updates)

	var wg sync.WaitGroup
	for row := 0; row < entity.BoardSize; row++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			_, _, err := state.Place(row, (2*row)%entity.BoardSize)
			assert.NoError(t, err)
		}(row)
	}
	wg.Wait()

	// Then: every placement was applied once and the observer saw them in order
	game := state.State()
	assert.Equal(t, entity.BoardSize, game.Moves)

	got := updates.waitForUpdates(t, entity.BoardSize)
	require.Len(t, got, entity.BoardSize)
	for i, update := range got {
		assert.Equal(t, i+1, update.Moves)
	}
}
