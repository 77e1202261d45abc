// Package tetris contains the logic of the game: pieces, the board bitmap,
// the per board command state machine, its timers and the session that
// coordinates several boards.
package tetris

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"tetrii/config"
)

var (
	ErrInvalidSize = errors.New("invalid board size")
	ErrNoScheduler = errors.New("no scheduler")
)

// Randomizer picks the next shape.
type Randomizer func() ShapeID

// NewRandomizer returns a uniform shape generator. Seed 0 uses the clock.
func NewRandomizer(seed uint64) Randomizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func() ShapeID { return ShapeID(r.IntN(shapeCount)) }
}

type BoardOptions struct {
	Config    config.Config
	Scheduler Scheduler
	Rand      Randomizer
	Listener  Listener
	Logger    *slog.Logger
}

// Board is one play area. It is not safe for concurrent use: every method
// must be called from the goroutine its Scheduler delivers callbacks on.
type Board struct {
	id            int
	width, height int
	cfg           config.Config

	bitmap *Bitmap
	// paint holds the shape name of every settled visible cell, "" if empty.
	paint [][]string
	piece piece

	state    State
	dropping bool
	points   int
	lines    int
	// dropBonus collects the soft drop points until the piece locks.
	dropBonus int
	pieces    [shapeCount]int

	timer    *Timer
	rand     Randomizer
	listener Listener
	logger   *slog.Logger
}

func NewBoard(id int, o BoardOptions) (*Board, error) {
	c := o.Config
	if c.Width < config.MinWidth || c.Width > config.MaxWidth || c.Height < config.MinHeight || c.Height > config.MaxHeight {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Width, c.Height)
	}
	if o.Scheduler == nil {
		return nil, ErrNoScheduler
	}
	b := &Board{
		id:       id,
		width:    c.Width,
		height:   c.Height,
		cfg:      c,
		bitmap:   newBitmap(c.Width, c.Height),
		paint:    make([][]string, c.Height),
		rand:     o.Rand,
		listener: o.Listener,
		logger:   o.Logger,
	}
	for y := range b.paint {
		b.paint[y] = make([]string, c.Width)
	}
	if b.rand == nil {
		b.rand = NewRandomizer(c.Seed)
	}
	if b.listener == nil {
		b.listener = NopListener{}
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	b.logger = b.logger.With(slog.Int("board", id))
	b.timer = newTimer(o.Scheduler, b.period, b.tick)
	b.Reset()
	return b, nil
}

func (b *Board) ID() int                  { return b.id }
func (b *Board) State() State             { return b.state }
func (b *Board) Dropping() bool           { return b.dropping }
func (b *Board) Score() (int, int)        { return b.points, b.lines }
func (b *Board) Next() *Shape             { return b.piece.next }
func (b *Board) Pieces() [shapeCount]int  { return b.pieces }
func (b *Board) Rows() []uint32           { return b.bitmap.Rows() }
func (b *Board) Size() (int, int)         { return b.width, b.height }
func (b *Board) Timer() *Timer            { return b.timer }
func (b *Board) Dump(f DumpFormat) string { return b.bitmap.Dump(f) }

// Reset empties the board for a new game. The first piece is spawned by the
// first Resume so a cheat can still choose it.
func (b *Board) Reset() {
	b.timer.Stop()
	b.bitmap.Reset()
	for y := range b.paint {
		for x := range b.paint[y] {
			if b.paint[y][x] != "" {
				b.paint[y][x] = ""
				b.listener.CellChanged(b.id, x, y, Empty)
			}
		}
	}
	if b.piece.placed {
		b.erase()
	}
	b.piece = piece{next: ShapeByID(b.rand())}
	b.state = Initial
	b.dropping = false
	b.points, b.lines, b.dropBonus = 0, 0, 0
	b.pieces = [shapeCount]int{}
	b.listener.NextPieceChanged(b.id, b.piece.next.Name)
}

// Do applies c and reports whether it had an effect. Illegal moves and
// commands the current state does not accept return false.
func (b *Board) Do(c Command) bool {
	switch c.Action {
	case Cheat:
		return b.cheat(c.Code)
	case Pause:
		return b.pause()
	case Resume:
		return b.resume()
	case TogglePause:
		if b.state == Running {
			return b.pause()
		}
		return b.resume()
	}
	if b.state != Running {
		return false
	}
	switch c.Action {
	case MoveLeft:
		return b.tryTranslate(-1, 0)
	case MoveRight:
		return b.tryTranslate(1, 0)
	case MoveDown:
		return b.down()
	case RotateRight:
		return b.tryRotate(true)
	case RotateLeft:
		return b.tryRotate(false)
	case DropDown:
		return b.drop()
	}
	return false
}

func (b *Board) resume() bool {
	switch b.state {
	case Finished:
		return false
	case Running:
		return true
	}
	if b.piece.current == nil && !b.spawn() {
		return false
	}
	b.state = Running
	b.timer.Start()
	return true
}

func (b *Board) pause() bool {
	if b.state == Finished {
		return false
	}
	b.timer.Stop()
	b.state = Paused
	return true
}

// stop ends the game on this board without reporting a loss.
func (b *Board) stop() {
	b.timer.Stop()
	b.dropping = false
	b.state = Finished
}

func (b *Board) finish() {
	if b.state == Finished {
		return
	}
	b.stop()
	b.logger.Info("board finished", slog.Int("points", b.points), slog.Int("lines", b.lines))
	b.listener.Finished(b.id)
}

func (b *Board) period() time.Duration {
	step := stepDelay(b.cfg.BaseDelay, b.cfg.SpeedupRatio, b.cfg.LinesPerSpeedup, b.lines)
	if b.dropping {
		return dropDelay(step, b.cfg.DropSpeedup)
	}
	return step
}

func (b *Board) tick() {
	if b.state == Running {
		b.down()
	}
}

func (b *Board) drop() bool {
	if b.dropping {
		return false
	}
	b.dropping = true
	b.timer.Restart()
	return true
}

// down moves the piece one row, locking it in place when it cannot move.
func (b *Board) down() bool {
	if b.tryTranslate(0, 1) {
		if b.dropping {
			b.dropBonus++
		}
		return true
	}
	b.lock()
	return false
}

func (b *Board) tryTranslate(dx, dy int) bool {
	x, y := b.piece.x+dx, b.piece.y+dy
	if !b.bitmap.CanPlace(b.piece.mask(), x, y) {
		return false
	}
	before := b.piece.cells()
	b.piece.x, b.piece.y = x, y
	b.redraw(before)
	return true
}

// tryRotate turns the piece in place. There are no wall kicks.
func (b *Board) tryRotate(cw bool) bool {
	o := b.piece.orientation.Rotate(cw)
	if !b.bitmap.CanPlace(b.piece.current.Mask(o), b.piece.x, b.piece.y) {
		return false
	}
	before := b.piece.cells()
	b.piece.orientation = o
	b.redraw(before)
	return true
}

// spawn promotes the next piece and places it at the top centre. A blocked
// spawn ends the game.
func (b *Board) spawn() bool {
	b.piece.current = b.piece.next
	b.piece.placed = false
	b.piece.next = ShapeByID(b.rand())
	b.listener.NextPieceChanged(b.id, b.piece.next.Name)
	b.piece.orientation = North
	b.piece.x, b.piece.y = b.width/2-2, -1
	if !b.bitmap.CanPlace(b.piece.mask(), b.piece.x, b.piece.y) {
		b.logger.Debug("spawn blocked", slog.String("shape", b.piece.current.Name))
		b.finish()
		return false
	}
	b.pieces[b.piece.current.ID]++
	b.piece.placed = true
	b.piece.fresh = true
	b.redraw(nil)
	return true
}

func (b *Board) lock() {
	p := &b.piece
	for _, c := range p.cells() {
		if c[1] < 0 {
			b.logger.Debug("lock out", slog.String("shape", p.current.Name), slog.Int("y", p.y))
			b.finish()
			return
		}
	}
	b.bitmap.Merge(p.mask(), p.x, p.y)
	for _, c := range p.cells() {
		b.paint[c[1]][c[0]] = p.current.Name
	}

	removed := b.bitmap.ClearFullRows()
	if len(removed) > 0 {
		b.removePaintRows(removed)
	}
	n := len(removed)
	delta := p.current.Points(p.orientation) + 5*n*n + b.dropBonus
	b.dropBonus = 0
	b.points += delta
	b.lines += n
	b.logger.Debug("piece locked",
		slog.String("shape", p.current.Name),
		slog.String("orientation", p.orientation.String()),
		slog.Int("points", delta),
		slog.Int("lines", n))
	b.listener.ScoreChanged(b.id, delta, n)

	if b.dropping {
		b.dropping = false
		b.timer.Restart()
	}
	b.spawn()
}

// removePaintRows mirrors Bitmap.ClearFullRows on the paint layer and
// repaints every row that moved.
func (b *Board) removePaintRows(removed []int) {
	for _, y := range removed {
		copy(b.paint[1:y+1], b.paint[:y])
		b.paint[0] = make([]string, b.width)
	}
	last := removed[len(removed)-1]
	for y := 0; y <= last; y++ {
		for x := range b.width {
			b.emitCell(x, y, b.paint[y][x])
		}
	}
}

// redraw reports the cells the piece left and the ones it now covers.
func (b *Board) redraw(before [][2]int) {
	after := b.piece.cells()
	if b.piece.fresh {
		before = nil
		b.piece.fresh = false
	}
	for _, c := range before {
		if !containsCell(after, c) {
			b.emitCell(c[0], c[1], b.paintAt(c[0], c[1]))
		}
	}
	for _, c := range after {
		if !containsCell(before, c) {
			b.emitCell(c[0], c[1], b.piece.current.Name)
		}
	}
}

// erase clears the falling piece from the display.
func (b *Board) erase() {
	for _, c := range b.piece.cells() {
		b.emitCell(c[0], c[1], b.paintAt(c[0], c[1]))
	}
}

func (b *Board) paintAt(x, y int) string {
	if y < 0 || y >= b.height || x < 0 || x >= b.width {
		return ""
	}
	return b.paint[y][x]
}

func (b *Board) emitCell(x, y int, shape string) {
	if y < 0 || y >= b.height || x < 0 || x >= b.width {
		return
	}
	if shape == "" {
		shape = Empty
	}
	b.listener.CellChanged(b.id, x, y, shape)
}

func containsCell(cs [][2]int, c [2]int) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

// Load replaces the settled cells with a literal bitmap, as produced by
// Dump(Hex). Filled cells are painted one colour per row.
func (b *Board) Load(rows []uint32) error {
	if err := b.bitmap.Load(rows); err != nil {
		return err
	}
	for y := range b.height {
		name := shapes[y%shapeCount].Name
		for x := range b.width {
			if b.bitmap.Occupied(x, y) {
				b.paint[y][x] = name
			} else {
				b.paint[y][x] = ""
			}
			b.emitCell(x, y, b.paint[y][x])
		}
	}
	if b.piece.placed {
		b.piece.fresh = true
		b.redraw(nil)
	}
	return nil
}

func (b *Board) cheat(code int) bool {
	switch {
	case code >= 0 && code < shapeCount:
		b.piece.next = shapes[code]
		b.listener.NextPieceChanged(b.id, b.piece.next.Name)
	case code == CheatLoadFixture:
		if b.cfg.Fixture == nil {
			b.logger.Warn("no fixture configured")
			return false
		}
		if err := b.Load(b.cfg.Fixture); err != nil {
			b.logger.Error("unable to load fixture", slog.String("error", err.Error()))
			return false
		}
	case code == CheatDumpBinary:
		b.logger.Info("bitmap", slog.String("rows", b.bitmap.Dump(Binary)))
	case code == CheatDumpHex:
		b.logger.Info("bitmap", slog.String("rows", b.bitmap.Dump(Hex)))
	case code == CheatDumpBoard:
		data, err := MarshalSnapshot(b.Snapshot())
		if err != nil {
			b.logger.Error("unable to marshal snapshot", slog.String("error", err.Error()))
			return false
		}
		b.logger.Info("board", slog.String("snapshot", string(data)))
	default:
		b.logger.Warn("unrecognized cheat code", slog.Int("code", code))
		return false
	}
	return true
}
