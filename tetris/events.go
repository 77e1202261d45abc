package tetris

import "time"

// Empty is the shape name reported for cleared cells.
const Empty = "empty"

// Listener receives the outbound events of a board. Callbacks run on the
// goroutine that drives the engine and must not call back into it.
type Listener interface {
	CellChanged(board, x, y int, shape string)
	ScoreChanged(board, points, lines int)
	NextPieceChanged(board int, shape string)
	Finished(board int)
}

// SessionListener adds the session wide events.
type SessionListener interface {
	Listener
	TotalsChanged(points, lines int)
	StateChanged(s State)
	ActiveChanged(board int)
	ClockTicked(elapsed time.Duration)
}

// NopListener can be embedded to implement only some callbacks.
type NopListener struct{}

func (NopListener) CellChanged(int, int, int, string) {}
func (NopListener) ScoreChanged(int, int, int)        {}
func (NopListener) NextPieceChanged(int, string)      {}
func (NopListener) Finished(int)                      {}

type NopSessionListener struct{ NopListener }

func (NopSessionListener) TotalsChanged(int, int)    {}
func (NopSessionListener) StateChanged(State)        {}
func (NopSessionListener) ActiveChanged(int)         {}
func (NopSessionListener) ClockTicked(time.Duration) {}
