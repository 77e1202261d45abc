package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"text/template"

	"github.com/eiannone/keyboard"

	"tetrii/config"
	"tetrii/tetris"
)

type game interface {
	Start()
	Stop()
	Action(tetris.Command)
	Read() tetris.SessionSnapshot
	Updates() <-chan struct{}
}

type Terminal struct {
	writer       io.Writer
	game         game
	template     *template.Template
	logger       *slog.Logger
	keysEventsCh <-chan keyboard.KeyEvent
	closeKeys    func()
	keymap       *keymap
	preview      bool
	doneCh       chan struct{}
	lobby        atomic.Bool
	finished     atomic.Bool

	// mu serializes writes from the keyboard and game goroutines.
	mu sync.Mutex
}

type Options struct {
	Writer io.Writer
	Logger *slog.Logger
	Config config.Config
	// Keys and Game replace the real keyboard and engine, mostly for tests.
	Keys <-chan keyboard.KeyEvent
	Game game
}

func New(o *Options) (*Terminal, error) {
	tp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("unable to load template: %w", err)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Terminal{
		writer:       o.Writer,
		game:         o.Game,
		template:     tp,
		logger:       logger,
		keysEventsCh: o.Keys,
		closeKeys:    func() {},
		keymap:       newKeymap(),
		preview:      o.Config.Preview,
		doneCh:       make(chan struct{}),
	}
	if t.writer == nil {
		t.writer = os.Stdout
	}
	if t.game == nil {
		g, err := tetris.NewGame(o.Config, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("unable to create game: %w", err)
		}
		t.game = g
	}
	if t.keysEventsCh == nil {
		kc, err := keyboard.GetKeys(20)
		if err != nil {
			return nil, fmt.Errorf("unable to open keyboard: %w", err)
		}
		t.keysEventsCh = kc
		t.closeKeys = func() {
			if err := keyboard.Close(); err != nil {
				t.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
			}
		}
	}
	return t, nil
}

// Start blocks until the player quits.
func (t *Terminal) Start() {
	t.game.Start()
	defer t.closeKeys()
	defer t.game.Stop()

	t.renderGame(t.game.Read())
	t.renderLobby(welcome)
	go t.listenGame()
	go t.listenKB()
	<-t.doneCh
}

func (t *Terminal) listenGame() {
	for {
		select {
		case <-t.game.Updates():
			s := t.game.Read()
			t.renderGame(s)
			if s.State == tetris.Finished && !t.finished.Swap(true) {
				t.renderLobby(gameOver)
			}
		case <-t.doneCh:
			return
		}
	}
}

func (t *Terminal) listenKB() {
	defer close(t.doneCh)
	for {
		event, ok := <-t.keysEventsCh
		if !ok {
			t.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			t.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		if t.lobby.Load() {
			switch event.Rune {
			case 'p':
				t.lobby.Store(false)
				// clear the screen after the lobby
				t.write(clearScreen + resetPos)
				if t.finished.Swap(false) {
					t.game.Action(tetris.Cmd(tetris.TogglePause))
				}
				t.game.Action(tetris.Cmd(tetris.Resume))
			case 'q':
				return
			}
			continue
		}
		if c, ok := t.keymap.command(event); ok {
			t.logger.Debug("command", slog.String("command", c.String()))
			t.game.Action(c)
		}
	}
}

const (
	welcome  = "|      Welcome to Terminal Tetrii      |"
	gameOver = "|             Game Over :)             |"
)

func (t *Terminal) renderLobby(msg string) {
	t.lobby.Store(true)
	t.write("\033[10;9H+--------------------------------------+" +
		"\033[11;9H" + msg +
		"\033[12;9H|                                      |" +
		"\033[13;9H|          (p)lay      (q)uit          |" +
		"\033[14;9H+--------------------------------------+")
}

func (t *Terminal) renderGame(s tetris.SessionSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.writer, resetPos)
	if err := t.template.Execute(t.writer, newTemplateData(s, t.preview)); err != nil {
		t.logger.Error("Unable to execute template", slog.String("error", err.Error()))
	}
}

func (t *Terminal) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.writer, s)
}
