package tetris

import "math/bits"

type ShapeID int

const (
	Bar ShapeID = iota
	Tee
	Square
	Zee
	ReverseZee
	El
	ReverseEl
)

const shapeCount = 7

type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

func (o Orientation) String() string {
	return [...]string{"North", "East", "South", "West"}[o]
}

// Rotate returns the neighbour orientation, clockwise when cw is true.
func (o Orientation) Rotate(cw bool) Orientation {
	if cw {
		return (o + 1) % 4
	}
	return (o + 3) % 4
}

// Shape is one of the seven pieces. Each mask is a 4x4 box encoded as four
// nibbles, the low nibble being the top row and bit k of a nibble column k.
// Shapes with fewer than four distinct rotations repeat their entries.
//
//	Tee, North (0x0270)
//	. . . .
//	. . . .
//	. X X X  <- 0x7
//	. . X .  <- 0x2
//
// (bit 0 is drawn on the left). Row 0 of every North mask is empty, which is
// why pieces spawn at y = -1.
type Shape struct {
	ID     ShapeID
	Name   string
	masks  [4]uint16
	points [4]int
}

func (s *Shape) Mask(o Orientation) uint16 { return s.masks[o] }
func (s *Shape) Points(o Orientation) int  { return s.points[o] }

var shapes = [shapeCount]*Shape{
	{ID: Bar, Name: "Bar", points: [4]int{12, 1, 12, 1}, masks: [4]uint16{0x00f0, 0x2222, 0x00f0, 0x2222}},
	{ID: Tee, Name: "Tee", points: [4]int{6, 5, 2, 1}, masks: [4]uint16{0x0270, 0x0232, 0x0072, 0x0262}},
	{ID: Square, Name: "Square", points: [4]int{4, 4, 4, 4}, masks: [4]uint16{0x0660, 0x0660, 0x0660, 0x0660}},
	{ID: Zee, Name: "Zee", points: [4]int{5, 3, 5, 3}, masks: [4]uint16{0x0360, 0x0462, 0x0360, 0x0462}},
	{ID: ReverseZee, Name: "ReverseZee", points: [4]int{5, 3, 5, 3}, masks: [4]uint16{0x0630, 0x0264, 0x0630, 0x0264}},
	{ID: El, Name: "El", points: [4]int{6, 6, 3, 3}, masks: [4]uint16{0x0470, 0x0322, 0x0071, 0x0226}},
	{ID: ReverseEl, Name: "ReverseEl", points: [4]int{3, 3, 6, 6}, masks: [4]uint16{0x0740, 0x2230, 0x0170, 0x0622}},
}

// ShapeByID returns nil for IDs outside the catalog.
func ShapeByID(id ShapeID) *Shape {
	if id < 0 || int(id) >= shapeCount {
		return nil
	}
	return shapes[id]
}

func Shapes() []*Shape {
	out := make([]*Shape, shapeCount)
	copy(out, shapes[:])
	return out
}

// cells lists the board coordinates covered by mask placed at (x, y).
func cells(mask uint16, x, y int) [][2]int {
	out := make([][2]int, 0, bits.OnesCount16(mask))
	for row := 0; mask != 0; row++ {
		nibble := mask & 0xf
		for col := range 4 {
			if nibble&(1<<col) != 0 {
				out = append(out, [2]int{x + col, y + row})
			}
		}
		mask >>= 4
	}
	return out
}

// piece is the falling piece of a board.
//
//	Spawn location, 10 wide board, Bar
//
//	.	0 1 2 3 4 5 6 7 8 9
//	-1	. . . . . . . . . .	<- box top, always empty at North
//	0	. . . O O O O . . .
//	1	. . . . . . . . . .
type piece struct {
	current, next *Shape
	orientation   Orientation
	x, y          int
	// placed is false when the current piece did not fit at spawn.
	placed bool
	// fresh is set between spawn and the first draw: no old cells to clear.
	fresh bool
}

func (p *piece) mask() uint16 { return p.current.Mask(p.orientation) }

func (p *piece) cells() [][2]int { return cells(p.mask(), p.x, p.y) }
