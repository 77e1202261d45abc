package terminal

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetrii/config"
	"tetrii/tetris"
)

const cyanCell = "\x1b[7m\x1b[36m[]\x1b[0m"

func testSnapshot(t *testing.T) tetris.SessionSnapshot {
	t.Helper()
	b, _, _ := tetris.NewTestBoard(tetris.Bar)
	bs := b.Snapshot()
	return tetris.SessionSnapshot{State: tetris.Running, Boards: []tetris.BoardSnapshot{bs, bs}}
}

func TestStack(t *testing.T) {
	got := stack(testSnapshot(t).Boards[0])
	require.Len(t, got, 20)
	want := make([]string, 10)
	for x := range want {
		want[x] = "  "
	}
	for x := 3; x <= 6; x++ {
		want[x] = cyanCell
	}
	assert.Equal(t, want, got[0])
	for y := 1; y < 20; y++ {
		assert.Equal(t, "                    ", strings.Join(got[y], ""), "row %d", y)
	}
}

func TestNextPiece(t *testing.T) {
	// a 10 wide board is 22 columns on screen, the preview 8
	const (
		margin     = "       "
		yellowCell = "\x1b[7m\x1b[33m[]\x1b[0m"
	)
	tests := []struct {
		shape tetris.ShapeID
		want  []string
	}{
		{tetris.Bar, []string{margin + strings.Repeat(cyanCell, 4) + margin, strings.Repeat(" ", 22)}},
		{tetris.Square, []string{
			margin + "  " + strings.Repeat(yellowCell, 2) + "  " + margin,
			margin + "  " + strings.Repeat(yellowCell, 2) + "  " + margin,
		}},
	}
	for _, tt := range tests {
		sh := tetris.ShapeByID(tt.shape)
		t.Run(sh.Name, func(t *testing.T) {
			got := nextPiece(tetris.BoardSnapshot{Width: 10, Next: sh.Name, NextMask: sh.Mask(tetris.North)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrame(t *testing.T) {
	s := testSnapshot(t)
	s.Active = 1
	s.Boards[1].ID = 1
	lines := frame(&templateData{Session: s, Preview: true})
	// title, 2 preview lines, 2 borders, 20 rows
	require.Len(t, lines, 25)
	assert.True(t, strings.HasPrefix(lines[0], " 1 0/0"))
	assert.Contains(t, lines[0], ">2 0/0")
	assert.Equal(t, "+"+strings.Repeat("--", 10)+"+  +"+strings.Repeat("--", 10)+"+", lines[3])

	lines = frame(&templateData{Session: s})
	assert.Len(t, lines, 23)
	assert.Nil(t, frame(&templateData{}))
}

func TestRenderGame(t *testing.T) {
	w := &bytes.Buffer{}
	term, err := New(&Options{Writer: w, Keys: make(chan keyboard.KeyEvent), Game: newFakeGame(testSnapshot(t))})
	require.NoError(t, err)

	s := testSnapshot(t)
	s.Elapsed = 75 * time.Second
	term.renderGame(s)
	out := w.String()
	assert.True(t, strings.HasPrefix(out, resetPos))
	assert.Contains(t, out, "Terminal Tetrii")
	assert.Contains(t, out, "time 01:15")
	assert.Contains(t, out, "running")
	assert.NotContains(t, out, "total")
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n", "every new line carries a carriage return")

	w.Reset()
	s.State = tetris.Finished
	term.renderGame(s)
	assert.Contains(t, w.String(), "total")
}

func TestKeymap(t *testing.T) {
	km := newKeymap()
	tests := []struct {
		name  string
		event keyboard.KeyEvent
		want  tetris.Command
		ok    bool
	}{
		{name: "arrow left", event: keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}, want: tetris.Cmd(tetris.MoveLeft), ok: true},
		{name: "d", event: keyboard.KeyEvent{Rune: 'd'}, want: tetris.Cmd(tetris.MoveRight), ok: true},
		{name: "space", event: keyboard.KeyEvent{Key: keyboard.KeySpace}, want: tetris.Cmd(tetris.DropDown), ok: true},
		{name: "q", event: keyboard.KeyEvent{Rune: 'q'}, want: tetris.Cmd(tetris.RotateLeft), ok: true},
		{name: "t", event: keyboard.KeyEvent{Rune: 't'}, want: tetris.Cmd(tetris.TogglePause), ok: true},
		{name: "select 3", event: keyboard.KeyEvent{Rune: '3'}, want: tetris.Select(2), ok: true},
		{name: "force square", event: keyboard.KeyEvent{Rune: '#'}, want: tetris.ForceNext(tetris.Square), ok: true},
		{name: "hex dump", event: keyboard.KeyEvent{Key: keyboard.KeyCtrlX}, want: cheat(tetris.CheatDumpHex), ok: true},
		{name: "unmapped", event: keyboard.KeyEvent{Rune: 'z'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := km.command(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListenKB(t *testing.T) {
	keys := make(chan keyboard.KeyEvent)
	g := newFakeGame(testSnapshot(t))
	term, err := New(&Options{Writer: &syncWriter{}, Keys: keys, Game: g})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		term.Start()
		close(done)
	}()

	keys <- keyboard.KeyEvent{Rune: 'x'}
	keys <- keyboard.KeyEvent{Rune: 'p'}
	assert.Equal(t, tetris.Cmd(tetris.Resume), g.next(t))

	keys <- keyboard.KeyEvent{Key: keyboard.KeyArrowLeft}
	assert.Equal(t, tetris.Cmd(tetris.MoveLeft), g.next(t))
	keys <- keyboard.KeyEvent{Rune: '2'}
	assert.Equal(t, tetris.Select(1), g.next(t))

	g.finish()
	assert.Eventually(t, term.lobby.Load, time.Second, 5*time.Millisecond, "game over shows the lobby")
	keys <- keyboard.KeyEvent{Rune: 'p'}
	assert.Equal(t, tetris.Cmd(tetris.TogglePause), g.next(t))
	assert.Equal(t, tetris.Cmd(tetris.Resume), g.next(t))

	keys <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for the terminal to quit")
	}
	assert.True(t, g.stopped.Load())
}

func TestNewWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Boards = 0
	_, err := New(&Options{Writer: &bytes.Buffer{}, Keys: make(chan keyboard.KeyEvent), Config: cfg})
	assert.ErrorIs(t, err, config.ErrOutOfRange)
}

type fakeGame struct {
	mu       sync.Mutex
	snapshot tetris.SessionSnapshot
	actions  chan tetris.Command
	updates  chan struct{}
	stopped  atomic.Bool
}

func newFakeGame(s tetris.SessionSnapshot) *fakeGame {
	return &fakeGame{
		snapshot: s,
		actions:  make(chan tetris.Command, 10),
		updates:  make(chan struct{}, 1),
	}
}

func (g *fakeGame) Start()                   {}
func (g *fakeGame) Stop()                    { g.stopped.Store(true) }
func (g *fakeGame) Action(c tetris.Command)  { g.actions <- c }
func (g *fakeGame) Updates() <-chan struct{} { return g.updates }

func (g *fakeGame) Read() tetris.SessionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

func (g *fakeGame) finish() {
	g.mu.Lock()
	g.snapshot.State = tetris.Finished
	g.mu.Unlock()
	g.updates <- struct{}{}
}

func (g *fakeGame) next(t *testing.T) tetris.Command {
	t.Helper()
	select {
	case c := <-g.actions:
		return c
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for an action")
		return tetris.Command{}
	}
}

type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
