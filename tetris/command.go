package tetris

import "fmt"

type Action string

const (
	MoveLeft    Action = "left"        // Moves the piece one column left.
	MoveRight   Action = "right"       // Moves the piece one column right.
	MoveDown    Action = "down"        // Moves the piece one row down, locking it when blocked.
	RotateRight Action = "rotatecw"    // Rotates the piece clockwise.
	RotateLeft  Action = "rotateccw"   // Rotates the piece counter-clockwise.
	DropDown    Action = "drop"        // Drops the piece at the fast tick rate until it locks.
	Pause       Action = "pause"       // Stops the timers.
	Resume      Action = "resume"      // Starts or restarts the timers.
	TogglePause Action = "togglepause" // Pause or Resume depending on the current state.
	Cheat       Action = "cheat"       // Debug command, Code selects which.
	SelectBoard Action = "select"      // Session only: Code is the board index.
)

// Cheat codes.
const (
	CheatLoadFixture = 10
	CheatDumpBinary  = 11
	CheatDumpHex     = 12
	CheatDumpBoard   = 13
)

type Command struct {
	Action Action
	Code   int
}

func Cmd(a Action) Command { return Command{Action: a} }

// ForceNext makes the next piece id.
func ForceNext(id ShapeID) Command { return Command{Action: Cheat, Code: int(id)} }

func Select(board int) Command { return Command{Action: SelectBoard, Code: board} }

func (c Command) String() string {
	switch c.Action {
	case Cheat, SelectBoard:
		return fmt.Sprintf("%s(%d)", c.Action, c.Code)
	}
	return string(c.Action)
}

type State int

const (
	Initial State = iota
	Paused
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
