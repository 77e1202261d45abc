package tetris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// wall is the number of always-set bit columns on each side and of
	// always-set floor rows. A Bar rotating next to a wall never reaches
	// further than that.
	wall = 2
	// hidden rows sit above the visible area so a spawning piece at y = -1
	// and its rotations stay inside the slice.
	hidden = 2
)

var ErrBadFixture = errors.New("bad bitmap fixture")

// Bitmap is the settled-cells grid of a board, one uint32 per row.
//
//	row  0     11 00000000 11...   hidden
//	row  1     11 00000000 11...   hidden
//	row  2     11 00000000 11...   board row 0
//	...
//	row  h+1   11 00000000 11...   board row h-1
//	row  h+2   11 11111111 11...   floor
//	row  h+3   11 11111111 11...   floor
//
// Board column c is bit c+2 and board row y is slice index y+2.
type Bitmap struct {
	width, height int
	rows          []uint32
}

func newBitmap(width, height int) *Bitmap {
	b := &Bitmap{width: width, height: height, rows: make([]uint32, height+hidden+wall)}
	b.Reset()
	return b
}

// emptyRow has every bit set except the playable columns.
func (b *Bitmap) emptyRow() uint32 { return ^(((uint32(1) << b.width) - 1) << wall) }

// fullMask covers both walls and the playable columns.
func (b *Bitmap) fullMask() uint32 { return (uint32(1) << (b.width + 2*wall)) - 1 }

func (b *Bitmap) Reset() {
	empty := b.emptyRow()
	for i := range b.rows {
		if i >= len(b.rows)-wall {
			b.rows[i] = 0xffffffff
			continue
		}
		b.rows[i] = empty
	}
}

// CanPlace reports whether mask fits at (x, y). Anything that would address
// outside the slice counts as blocked.
func (b *Bitmap) CanPlace(mask uint16, x, y int) bool {
	shift := x + wall
	if shift < 0 || shift > 32-4 {
		return false
	}
	for r := y + hidden; mask != 0; r++ {
		if nibble := mask & 0xf; nibble != 0 {
			if r < 0 || r >= len(b.rows) {
				return false
			}
			if uint16((b.rows[r]>>shift)&0xf)&nibble != 0 {
				return false
			}
		}
		mask >>= 4
	}
	return true
}

// Merge sets the cells of mask at (x, y). It does not check for overlap.
func (b *Bitmap) Merge(mask uint16, x, y int) {
	shift := x + wall
	if shift < 0 || shift > 32-4 {
		return
	}
	for r := y + hidden; mask != 0; r++ {
		if r >= 0 && r < len(b.rows) {
			b.rows[r] |= uint32(mask&0xf) << shift
		}
		mask >>= 4
	}
}

// ClearFullRows removes every complete visible row, refilling from the top
// with empty rows. It returns the removed board rows, top to bottom.
func (b *Bitmap) ClearFullRows() []int {
	full := b.fullMask()
	var removed []int
	for i := hidden; i < hidden+b.height; i++ {
		if b.rows[i]&full == full {
			removed = append(removed, i-hidden)
		}
	}
	// top to bottom: inserting at 0 shifts only the rows above the one just
	// removed, so the remaining indices stay valid.
	for _, y := range removed {
		i := y + hidden
		copy(b.rows[1:i+1], b.rows[:i])
		b.rows[0] = b.emptyRow()
	}
	return removed
}

// Occupied reports the bit of board cell (x, y); walls and floor are occupied.
func (b *Bitmap) Occupied(x, y int) bool {
	r, c := y+hidden, x+wall
	if r < 0 || r >= len(b.rows) || c < 0 || c >= 32 {
		return true
	}
	return b.rows[r]&(1<<c) != 0
}

func (b *Bitmap) Rows() []uint32 {
	out := make([]uint32, len(b.rows))
	copy(out, b.rows)
	return out
}

// Load replaces the grid with rows, forcing walls and floor back on.
func (b *Bitmap) Load(rows []uint32) error {
	if len(rows) != len(b.rows) {
		return fmt.Errorf("%w: got %d rows, want %d", ErrBadFixture, len(rows), len(b.rows))
	}
	empty := b.emptyRow()
	for i, r := range rows {
		if i >= len(b.rows)-wall {
			b.rows[i] = 0xffffffff
			continue
		}
		b.rows[i] = r | empty
	}
	return nil
}

type DumpFormat int

const (
	Binary DumpFormat = iota
	Hex
)

// Dump prints one row per line, either as 32 binary digits or as a Go hex
// literal that can be pasted back as a fixture.
func (b *Bitmap) Dump(f DumpFormat) string {
	var sb strings.Builder
	for _, r := range b.rows {
		switch f {
		case Hex:
			fmt.Fprintf(&sb, "0x%08X,\n", r)
		default:
			fmt.Fprintf(&sb, "%032b\n", r)
		}
	}
	return sb.String()
}

// ParseRows reads the output of Dump in either format. Blank lines are skipped.
func ParseRows(text string) ([]uint32, error) {
	var rows []uint32
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if line == "" {
			continue
		}
		var (
			v   uint64
			err error
		)
		switch {
		case strings.HasPrefix(line, "0x"), strings.HasPrefix(line, "0X"):
			v, err = strconv.ParseUint(line[2:], 16, 32)
		default:
			v, err = strconv.ParseUint(line, 2, 32)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadFixture, n+1, err)
		}
		rows = append(rows, uint32(v))
	}
	return rows, nil
}
