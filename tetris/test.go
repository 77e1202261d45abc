package tetris

import (
	"fmt"
	"slices"
	"time"

	"tetrii/config"
)

// ManualScheduler is a Scheduler driven by a virtual clock.
type ManualScheduler struct {
	now     time.Duration
	seq     int
	pending []scheduled
}

type scheduled struct {
	at  time.Duration
	seq int
	f   func()
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) {
	m.seq++
	m.pending = append(m.pending, scheduled{at: m.now + d, seq: m.seq, f: f})
}

func (m *ManualScheduler) Now() time.Duration { return m.now }
func (m *ManualScheduler) Pending() int       { return len(m.pending) }

// Advance moves the clock forward by d firing every callback due, including
// the ones scheduled by callbacks during the advance. It returns how many ran.
func (m *ManualScheduler) Advance(d time.Duration) int {
	end := m.now + d
	fired := 0
	for {
		i := m.due(end)
		if i < 0 {
			break
		}
		s := m.pending[i]
		m.pending = slices.Delete(m.pending, i, i+1)
		m.now = s.at
		s.f()
		fired++
	}
	m.now = end
	return fired
}

func (m *ManualScheduler) due(end time.Duration) int {
	best := -1
	for i, s := range m.pending {
		if s.at > end {
			continue
		}
		if best < 0 || s.at < m.pending[best].at || (s.at == m.pending[best].at && s.seq < m.pending[best].seq) {
			best = i
		}
	}
	return best
}

// Recorder is a SessionListener that keeps every event it receives.
type Recorder struct {
	Cells    map[[3]int]string
	Scores   [][3]int
	Nexts    []string
	Finishes []int
	Totals   [][2]int
	States   []State
	Actives  []int
	Ticks    []time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{Cells: make(map[[3]int]string)}
}

func (r *Recorder) CellChanged(board, x, y int, shape string) {
	r.Cells[[3]int{board, x, y}] = shape
}
func (r *Recorder) ScoreChanged(board, points, lines int) {
	r.Scores = append(r.Scores, [3]int{board, points, lines})
}
func (r *Recorder) NextPieceChanged(_ int, shape string) { r.Nexts = append(r.Nexts, shape) }
func (r *Recorder) Finished(board int)                   { r.Finishes = append(r.Finishes, board) }
func (r *Recorder) TotalsChanged(points, lines int)      { r.Totals = append(r.Totals, [2]int{points, lines}) }
func (r *Recorder) StateChanged(s State)                 { r.States = append(r.States, s) }
func (r *Recorder) ActiveChanged(board int)              { r.Actives = append(r.Actives, board) }
func (r *Recorder) ClockTicked(d time.Duration)          { r.Ticks = append(r.Ticks, d) }

// Cell returns the last shape reported for a cell, Empty if none.
func (r *Recorder) Cell(board, x, y int) string {
	if s, ok := r.Cells[[3]int{board, x, y}]; ok {
		return s
	}
	return Empty
}

// Fixed always returns the same shape.
func Fixed(id ShapeID) Randomizer { return func() ShapeID { return id } }

// NewTestBoard creates a 10x20 running board whose pieces are all shape,
// with a manual scheduler and a recorder attached.
func NewTestBoard(shape ShapeID) (*Board, *ManualScheduler, *Recorder) {
	sched := &ManualScheduler{}
	rec := NewRecorder()
	b, err := NewBoard(0, BoardOptions{
		Config:    config.Default(),
		Scheduler: sched,
		Rand:      Fixed(shape),
		Listener:  rec,
	})
	if err != nil {
		panic(fmt.Sprintf("unable to create test board: %v", err))
	}
	b.Do(Cmd(Resume))
	return b, sched, rec
}
