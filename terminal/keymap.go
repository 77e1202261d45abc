package terminal

import (
	"github.com/eiannone/keyboard"
	"github.com/kamstrup/intmap"

	"tetrii/tetris"
)

type keymap struct {
	keys  *intmap.Map[keyboard.Key, tetris.Command]
	runes *intmap.Map[rune, tetris.Command]
}

func cheat(code int) tetris.Command { return tetris.Command{Action: tetris.Cheat, Code: code} }

func newKeymap() *keymap {
	km := &keymap{
		keys:  intmap.New[keyboard.Key, tetris.Command](16),
		runes: intmap.New[rune, tetris.Command](32),
	}
	km.keys.Put(keyboard.KeyArrowDown, tetris.Cmd(tetris.MoveDown))
	km.keys.Put(keyboard.KeyArrowLeft, tetris.Cmd(tetris.MoveLeft))
	km.keys.Put(keyboard.KeyArrowRight, tetris.Cmd(tetris.MoveRight))
	km.keys.Put(keyboard.KeyArrowUp, tetris.Cmd(tetris.RotateRight))
	km.keys.Put(keyboard.KeySpace, tetris.Cmd(tetris.DropDown))
	km.keys.Put(keyboard.KeyCtrlB, cheat(tetris.CheatLoadFixture))
	km.keys.Put(keyboard.KeyCtrlD, cheat(tetris.CheatDumpBinary))
	km.keys.Put(keyboard.KeyCtrlX, cheat(tetris.CheatDumpHex))
	km.keys.Put(keyboard.KeyCtrlS, cheat(tetris.CheatDumpBoard))
	km.keys.Put(keyboard.KeyCtrlT, cheat(tetris.CheatSummary))
	km.keys.Put(keyboard.KeyCtrlE, cheat(tetris.CheatDumpSession))

	km.runes.Put('s', tetris.Cmd(tetris.MoveDown))
	km.runes.Put('a', tetris.Cmd(tetris.MoveLeft))
	km.runes.Put('d', tetris.Cmd(tetris.MoveRight))
	km.runes.Put('e', tetris.Cmd(tetris.RotateRight))
	km.runes.Put('q', tetris.Cmd(tetris.RotateLeft))
	km.runes.Put('r', tetris.Cmd(tetris.Resume))
	km.runes.Put('t', tetris.Cmd(tetris.TogglePause))
	km.runes.Put('p', tetris.Cmd(tetris.Pause))
	for i, r := range "12345" {
		km.runes.Put(r, tetris.Select(i))
	}
	// shifted digits force the next shape on the active board
	for i, r := range "!@#$%^&" {
		km.runes.Put(r, tetris.ForceNext(tetris.ShapeID(i)))
	}
	return km
}

func (km *keymap) command(e keyboard.KeyEvent) (tetris.Command, bool) {
	if e.Key != 0 {
		return km.keys.Get(e.Key)
	}
	return km.runes.Get(e.Rune)
}
