package tetris

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tetrii/config"
)

// Game runs a Session on its own goroutine. Commands, timer callbacks and
// reads are all serialized through listen, so the session never needs a lock.
type Game struct {
	// UpdateCh receives a value after every command or tick that may have
	// changed the session. It is buffered and never blocks the loop.
	UpdateCh chan struct{}

	session  *Session
	actionCh chan Command
	fnCh     chan func()
	readCh   chan chan SessionSnapshot
	doneCh   chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

func NewGame(cfg config.Config, listener SessionListener, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &Game{
		UpdateCh: make(chan struct{}, 1),
		actionCh: make(chan Command),
		fnCh:     make(chan func()),
		readCh:   make(chan chan SessionSnapshot),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
	s, err := NewSession(SessionOptions{
		Config:    cfg,
		Scheduler: g,
		Listener:  listener,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	g.session = s
	return g, nil
}

func (g *Game) Start() {
	g.logger.Info("game started", slog.String("session", g.session.ID()))
	go g.listen()
}

// Stop ends the loop. Pending timer callbacks are dropped.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.doneCh) })
}

func (g *Game) Action(c Command) {
	select {
	case g.actionCh <- c:
	case <-g.doneCh:
	}
}

// Read returns a copy of the session that's safe to read concurrently. It
// returns the zero value once the game is stopped.
func (g *Game) Read() SessionSnapshot {
	r := make(chan SessionSnapshot, 1)
	select {
	case g.readCh <- r:
	case <-g.doneCh:
		return SessionSnapshot{}
	}
	return <-r
}

func (g *Game) Updates() <-chan struct{} { return g.UpdateCh }

// AfterFunc implements Scheduler: f runs on the loop goroutine after d.
func (g *Game) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		select {
		case g.fnCh <- f:
		case <-g.doneCh:
		}
	})
}

func (g *Game) listen() {
	for {
		select {
		case c := <-g.actionCh:
			g.session.Do(c)
		case f := <-g.fnCh:
			f()
		case r := <-g.readCh:
			r <- g.session.Snapshot()
			continue
		case <-g.doneCh:
			g.logger.Info("game stopped", slog.String("state", g.session.State().String()))
			return
		}
		g.notify()
	}
}

func (g *Game) notify() {
	select {
	case g.UpdateCh <- struct{}{}:
	default:
	}
}
