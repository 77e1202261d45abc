package terminal

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"tetrii/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Clear the whole screen
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[string]string{
	"Bar":        Cyan,
	"ReverseEl":  Blue,
	"El":         Orange,
	"Square":     Yellow,
	"ReverseZee": Green,
	"Zee":        Red,
	"Tee":        Magenta,
}

type templateData struct {
	Session tetris.SessionSnapshot
	Preview bool
	// Summary is the results table, set once the session is finished.
	Summary string
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"frame": frame,
		"clock": clock,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Terminal Tetrii", "\033[1mTerminal Tetrii\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func newTemplateData(s tetris.SessionSnapshot, preview bool) *templateData {
	td := &templateData{Session: s, Preview: preview}
	if s.State == tetris.Finished {
		td.Summary = strings.ReplaceAll(s.Summary().String(), "\n", "\r\n")
	}
	return td
}

func cell(shape string) string {
	if shape == "" || shape == tetris.Empty {
		return "  "
	}
	c, ok := colorMap[shape]
	if !ok {
		return "[]"
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", c)
}

// frame lays the boards out side by side, one string per screen line.
func frame(td *templateData) []string {
	boards := td.Session.Boards
	if len(boards) == 0 {
		return nil
	}
	columns := make([][]string, len(boards))
	for i, b := range boards {
		columns[i] = boardLines(b, i == td.Session.Active, td.Preview)
	}
	lines := make([]string, len(columns[0]))
	for row := range lines {
		parts := make([]string, len(columns))
		for i := range columns {
			parts[i] = columns[i][row]
		}
		lines[row] = strings.Join(parts, "  ")
	}
	return lines
}

// boardLines renders one board: title, optional preview, then the well.
// Every line is 2*width+2 columns wide on screen.
func boardLines(b tetris.BoardSnapshot, active, preview bool) []string {
	width := 2*b.Width + 2
	marker := " "
	if active {
		marker = ">"
	}
	title := fmt.Sprintf("%s%d %d/%d", marker, b.ID+1, b.Points, b.Lines)
	if b.State == tetris.Finished {
		title += " x"
	}
	lines := []string{pad(title, width)}

	if preview {
		lines = append(lines, nextPiece(b)...)
	}

	border := "+" + strings.Repeat("--", b.Width) + "+"
	lines = append(lines, border)
	for _, row := range stack(b) {
		lines = append(lines, "|"+strings.Join(row, "")+"|")
	}
	return append(lines, border)
}

// stack renders the settled cells with the falling piece on top.
func stack(b tetris.BoardSnapshot) [][]string {
	rendered := make([][]string, b.Height)
	for y := range rendered {
		rendered[y] = make([]string, b.Width)
		for x := range rendered[y] {
			rendered[y][x] = cell(b.Cells[y][x])
		}
	}
	if b.Piece != nil {
		for _, c := range b.Piece.Cells {
			x, y := c[0], c[1]
			if y < 0 || y >= b.Height || x < 0 || x >= b.Width {
				continue
			}
			rendered[y][x] = cell(b.Piece.Shape)
		}
	}
	return rendered
}

// nextPiece draws rows 1 and 2 of the North mask, the only ones a fresh
// piece uses, centred in the board width.
func nextPiece(b tetris.BoardSnapshot) []string {
	width := 2*b.Width + 2
	left := (width - 8) / 2
	var rendered []string
	for row := 1; row <= 2; row++ {
		nibble := (b.NextMask >> (4 * row)) & 0xf
		cells := make([]string, 4)
		for col := range 4 {
			if nibble&(1<<col) != 0 {
				cells[col] = cell(b.Next)
			} else {
				cells[col] = "  "
			}
		}
		line := strings.Repeat(" ", left) + strings.Join(cells, "") + strings.Repeat(" ", width-left-8)
		rendered = append(rendered, line)
	}
	return rendered
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
