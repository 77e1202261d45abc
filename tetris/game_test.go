package tetris_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetrii/config"
	"tetrii/tetris"
)

func testGame(t *testing.T) *tetris.Game {
	t.Helper()
	cfg := config.Default()
	cfg.BaseDelay = 10 * time.Millisecond
	cfg.Seed = 1
	game, err := tetris.NewGame(cfg, nil, nil)
	require.NoError(t, err)
	return game
}

func TestUpdateCh(t *testing.T) {
	game := testGame(t)
	var at atomic.Int32
	doneCh := make(chan struct{})
	defer close(doneCh)

	go func() {
		for {
			select {
			case <-game.Updates():
				at.Add(1)
			case <-doneCh:
				return
			}
		}
	}()
	game.Start()
	defer game.Stop()

	time.Sleep(50 * time.Millisecond)
	if at.Load() != 0 {
		t.Errorf("Expected no updates before resume, got %d", at.Load())
	}
	game.Action(tetris.Cmd(tetris.Resume))
	assert.Eventually(t, func() bool { return at.Load() > 1 }, time.Second, 5*time.Millisecond, "ticks signal updates")
}

func TestGameRead(t *testing.T) {
	game := testGame(t)
	game.Start()
	defer game.Stop()

	s := game.Read()
	assert.Equal(t, tetris.Initial, s.State)
	require.Len(t, s.Boards, 2)

	game.Action(tetris.Cmd(tetris.Resume))
	assert.Eventually(t, func() bool {
		s := game.Read()
		return s.State == tetris.Running && s.Boards[0].Piece != nil && s.Boards[0].Piece.Y > 0
	}, time.Second, 5*time.Millisecond)

	game.Action(tetris.Cmd(tetris.Pause))
	y := game.Read().Boards[0].Piece.Y
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, y, game.Read().Boards[0].Piece.Y)
}

func TestStartStop(t *testing.T) {
	game := testGame(t)
	game.Start()
	game.Action(tetris.Cmd(tetris.Resume))
	game.Stop()
	game.Stop()

	done := make(chan struct{})
	go func() {
		game.Action(tetris.Cmd(tetris.MoveLeft))
		game.Read()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Timed out: stopped game blocked the caller")
	}
}

func TestNewGameInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Width = 100
	_, err := tetris.NewGame(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrOutOfRange)
}
