package tetris

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func snapshotMap(s BoardSnapshot) map[string]any {
	rows := make([]any, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = fmt.Sprintf("0x%08X", r)
	}
	pieces := make([]any, len(s.Pieces))
	for i, n := range s.Pieces {
		pieces[i] = n
	}
	m := map[string]any{
		"id":       s.ID,
		"width":    s.Width,
		"height":   s.Height,
		"state":    s.State.String(),
		"dropping": s.Dropping,
		"points":   s.Points,
		"lines":    s.Lines,
		"pieces":   pieces,
		"next":     s.Next,
		"rows":     rows,
	}
	if s.Piece != nil {
		m["piece"] = map[string]any{
			"shape":       s.Piece.Shape,
			"orientation": int(s.Piece.Orientation),
			"x":           s.Piece.X,
			"y":           s.Piece.Y,
		}
	}
	return m
}

// MarshalSnapshot encodes s as protojson. Rows are hex strings so the output
// can be pasted back as a fixture.
func MarshalSnapshot(s BoardSnapshot) ([]byte, error) {
	st, err := structpb.NewStruct(snapshotMap(s))
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot struct: %w", err)
	}
	return protojson.Marshal(st)
}

func MarshalSessionSnapshot(s SessionSnapshot) ([]byte, error) {
	boards := make([]any, len(s.Boards))
	for i, b := range s.Boards {
		boards[i] = snapshotMap(b)
	}
	st, err := structpb.NewStruct(map[string]any{
		"session": s.ID,
		"state":   s.State.String(),
		"active":  s.Active,
		"points":  s.Points,
		"lines":   s.Lines,
		"elapsed": s.Elapsed.String(),
		"boards":  boards,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build session snapshot struct: %w", err)
	}
	return protojson.Marshal(st)
}

// ParseSnapshot reads the output of MarshalSnapshot. Cells are not part of
// the encoding; load Rows into a board to rebuild them.
func ParseSnapshot(data []byte) (BoardSnapshot, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return BoardSnapshot{}, fmt.Errorf("%w: %v", ErrBadFixture, err)
	}
	f := st.GetFields()
	num := func(k string) int { return int(f[k].GetNumberValue()) }
	s := BoardSnapshot{
		ID:       num("id"),
		Width:    num("width"),
		Height:   num("height"),
		State:    parseState(f["state"].GetStringValue()),
		Dropping: f["dropping"].GetBoolValue(),
		Points:   num("points"),
		Lines:    num("lines"),
		Next:     f["next"].GetStringValue(),
	}
	for i, v := range f["pieces"].GetListValue().GetValues() {
		if i < shapeCount {
			s.Pieces[i] = int(v.GetNumberValue())
		}
	}
	for i, v := range f["rows"].GetListValue().GetValues() {
		r, err := strconv.ParseUint(strings.TrimPrefix(v.GetStringValue(), "0x"), 16, 32)
		if err != nil {
			return BoardSnapshot{}, fmt.Errorf("%w: row %d: %v", ErrBadFixture, i, err)
		}
		s.Rows = append(s.Rows, uint32(r))
	}
	if p := f["piece"].GetStructValue(); p != nil {
		pf := p.GetFields()
		s.Piece = &PieceSnapshot{
			Shape:       pf["shape"].GetStringValue(),
			Orientation: Orientation(int(pf["orientation"].GetNumberValue()) % 4),
			X:           int(pf["x"].GetNumberValue()),
			Y:           int(pf["y"].GetNumberValue()),
		}
	}
	return s, nil
}

func parseState(s string) State {
	for _, st := range []State{Initial, Paused, Running, Finished} {
		if st.String() == s {
			return st
		}
	}
	return Initial
}
