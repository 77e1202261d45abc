package tetris

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

type Stats struct {
	Points int
	Lines  int
	Pieces [shapeCount]int
}

func (s *Stats) add(o Stats) {
	s.Points += o.Points
	s.Lines += o.Lines
	for i, n := range o.Pieces {
		s.Pieces[i] += n
	}
}

// Summary holds the results of a session, one row per board.
type Summary struct {
	Boards []Stats
	Total  Stats
}

func (s *Session) Summary() Summary {
	var sum Summary
	for _, b := range s.boards {
		sum.append(Stats{Points: b.points, Lines: b.lines, Pieces: b.pieces})
	}
	return sum
}

// Summary rebuilds the results from a snapshot, for readers outside the loop.
func (s SessionSnapshot) Summary() Summary {
	var sum Summary
	for _, b := range s.Boards {
		sum.append(Stats{Points: b.Points, Lines: b.Lines, Pieces: b.Pieces})
	}
	return sum
}

func (s *Summary) append(st Stats) {
	s.Boards = append(s.Boards, st)
	s.Total.add(st)
}

// String renders the summary as an aligned table.
func (s Summary) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "\tpoints\tlines")
	for _, sh := range shapes {
		fmt.Fprintf(w, "\t%s", sh.Name)
	}
	fmt.Fprintln(w, "\t")
	row := func(label string, st Stats) {
		fmt.Fprintf(w, "%s\t%d\t%d", label, st.Points, st.Lines)
		for _, n := range st.Pieces {
			fmt.Fprintf(w, "\t%d", n)
		}
		fmt.Fprintln(w, "\t")
	}
	for i, st := range s.Boards {
		row(fmt.Sprintf("board %d", i+1), st)
	}
	row("total", s.Total)
	w.Flush()
	return sb.String()
}
