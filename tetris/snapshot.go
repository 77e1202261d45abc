package tetris

import "time"

type PieceSnapshot struct {
	Shape       string
	Orientation Orientation
	X, Y        int
	// Cells are the board coordinates covered, hidden rows included.
	Cells [][2]int
}

// BoardSnapshot is a copy of a board that is safe to read from another goroutine.
type BoardSnapshot struct {
	ID       int
	Width    int
	Height   int
	State    State
	Dropping bool
	Points   int
	Lines    int
	Pieces   [shapeCount]int
	// Cells holds the settled cells, [y][x], "" when empty.
	Cells [][]string
	Piece *PieceSnapshot
	Next  string
	// NextMask is the North mask of the next piece, for previews.
	NextMask uint16
	Rows     []uint32
}

func (b *Board) Snapshot() BoardSnapshot {
	s := BoardSnapshot{
		ID:       b.id,
		Width:    b.width,
		Height:   b.height,
		State:    b.state,
		Dropping: b.dropping,
		Points:   b.points,
		Lines:    b.lines,
		Pieces:   b.pieces,
		Cells:    make([][]string, b.height),
		Rows:     b.bitmap.Rows(),
	}
	for y := range b.paint {
		s.Cells[y] = make([]string, b.width)
		copy(s.Cells[y], b.paint[y])
	}
	if b.piece.next != nil {
		s.Next = b.piece.next.Name
		s.NextMask = b.piece.next.Mask(North)
	}
	if b.piece.placed {
		s.Piece = &PieceSnapshot{
			Shape:       b.piece.current.Name,
			Orientation: b.piece.orientation,
			X:           b.piece.x,
			Y:           b.piece.y,
			Cells:       b.piece.cells(),
		}
	}
	return s
}

type SessionSnapshot struct {
	ID      string
	State   State
	Active  int
	Points  int
	Lines   int
	Elapsed time.Duration
	Boards  []BoardSnapshot
}
