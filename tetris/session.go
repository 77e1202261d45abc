package tetris

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tetrii/config"
)

// Session cheat codes, handled here instead of by the active board.
const (
	CheatSummary     = 21
	CheatDumpSession = 22
)

type SessionOptions struct {
	Config    config.Config
	Scheduler Scheduler
	Listener  SessionListener
	Logger    *slog.Logger
	// Rand builds the piece generator of each board. Defaults to
	// NewRandomizer seeded from Config.Seed plus the board index.
	Rand func(board int) Randomizer
}

// Session owns the boards of one game. Commands go to the active board,
// except pause and resume which apply to all of them. The first board that
// loses finishes the whole session.
type Session struct {
	id     uuid.UUID
	boards []*Board
	active int

	state   State
	points  int
	lines   int
	elapsed time.Duration
	clock   *Timer

	listener SessionListener
	logger   *slog.Logger
}

func NewSession(o SessionOptions) (*Session, error) {
	if err := o.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if o.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	s := &Session{
		id:       uuid.New(),
		listener: o.Listener,
		logger:   o.Logger,
	}
	if s.listener == nil {
		s.listener = NopSessionListener{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With(slog.String("session", s.id.String()))
	s.clock = newTimer(o.Scheduler, func() time.Duration { return time.Second }, s.tick)

	newRand := o.Rand
	if newRand == nil {
		seed := o.Config.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		newRand = func(board int) Randomizer { return NewRandomizer(seed + uint64(board)) }
	}
	for i := range o.Config.Boards {
		b, err := NewBoard(i, BoardOptions{
			Config:    o.Config,
			Scheduler: o.Scheduler,
			Rand:      newRand(i),
			Listener:  relay{s},
			Logger:    s.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create board %d: %w", i, err)
		}
		s.boards = append(s.boards, b)
	}
	return s, nil
}

func (s *Session) ID() string             { return s.id.String() }
func (s *Session) State() State           { return s.state }
func (s *Session) Active() int            { return s.active }
func (s *Session) Totals() (int, int)     { return s.points, s.lines }
func (s *Session) Elapsed() time.Duration { return s.elapsed }
func (s *Session) Len() int               { return len(s.boards) }
func (s *Session) Board(i int) *Board     { return s.boards[i] }

func (s *Session) Do(c Command) {
	switch c.Action {
	case TogglePause:
		switch s.state {
		case Running:
			s.pause()
		case Finished:
			s.NewGame()
		default:
			s.resume()
		}
		return
	case Pause:
		if s.state == Running {
			s.pause()
		}
		return
	case Resume:
		if s.state == Initial || s.state == Paused {
			s.resume()
		}
		return
	case SelectBoard:
		if s.state != Finished {
			s.selectBoard(c.Code)
		}
		return
	case Cheat:
		if c.Code >= 20 {
			s.cheat(c.Code)
			return
		}
		s.boards[s.active].Do(c)
		return
	}
	if s.state != Running {
		return
	}
	s.boards[s.active].Do(c)
}

// NewGame resets every board, the totals and the clock.
func (s *Session) NewGame() {
	for _, b := range s.boards {
		b.Reset()
	}
	s.points, s.lines, s.elapsed = 0, 0, 0
	s.listener.TotalsChanged(0, 0)
	s.listener.ClockTicked(0)
	s.setState(Initial)
}

func (s *Session) resume() {
	for _, b := range s.boards {
		b.Do(Cmd(Resume))
		if s.state == Finished {
			return
		}
	}
	s.setState(Running)
}

func (s *Session) pause() {
	for _, b := range s.boards {
		b.Do(Cmd(Pause))
	}
	s.setState(Paused)
}

func (s *Session) selectBoard(i int) {
	if i < 0 || i >= len(s.boards) || i == s.active {
		return
	}
	s.active = i
	s.listener.ActiveChanged(i)
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	if st == Running {
		s.clock.Start()
	} else {
		s.clock.Stop()
	}
	s.logger.Info("session state changed", slog.String("from", s.state.String()), slog.String("to", st.String()))
	s.state = st
	s.listener.StateChanged(st)
}

func (s *Session) tick() {
	s.elapsed += time.Second
	s.listener.ClockTicked(s.elapsed)
}

func (s *Session) lost(board int) {
	if s.state == Finished {
		return
	}
	for _, b := range s.boards {
		if b.id != board {
			b.stop()
		}
	}
	s.logger.Info("board lost", slog.Int("board", board), slog.Int("points", s.points), slog.Int("lines", s.lines))
	s.setState(Finished)
}

func (s *Session) cheat(code int) {
	switch code {
	case CheatSummary:
		s.logger.Info("summary", slog.String("table", s.Summary().String()))
	case CheatDumpSession:
		data, err := MarshalSessionSnapshot(s.Snapshot())
		if err != nil {
			s.logger.Error("unable to marshal session snapshot", slog.String("error", err.Error()))
			return
		}
		s.logger.Info("session", slog.String("snapshot", string(data)))
	default:
		s.logger.Warn("unrecognized cheat code", slog.Int("code", code))
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	ss := SessionSnapshot{
		ID:      s.id.String(),
		State:   s.state,
		Active:  s.active,
		Points:  s.points,
		Lines:   s.lines,
		Elapsed: s.elapsed,
		Boards:  make([]BoardSnapshot, len(s.boards)),
	}
	for i, b := range s.boards {
		ss.Boards[i] = b.Snapshot()
	}
	return ss
}

// relay is the Listener of every board: it folds board events into the
// session before passing them on.
type relay struct{ s *Session }

func (r relay) CellChanged(board, x, y int, shape string) {
	r.s.listener.CellChanged(board, x, y, shape)
}

func (r relay) ScoreChanged(board, points, lines int) {
	r.s.points += points
	r.s.lines += lines
	r.s.listener.ScoreChanged(board, points, lines)
	r.s.listener.TotalsChanged(r.s.points, r.s.lines)
}

func (r relay) NextPieceChanged(board int, shape string) {
	r.s.listener.NextPieceChanged(board, shape)
}

func (r relay) Finished(board int) {
	r.s.listener.Finished(board)
	r.s.lost(board)
}
