// Package config holds the settings shared by the engine and the terminal client.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	MinWidth  = 8
	MaxWidth  = 28 // 32 bit rows minus 2 wall bits on each side
	MinHeight = 10
	MaxHeight = 40
	MinBoards = 1
	MaxBoards = 5
)

var ErrOutOfRange = errors.New("value out of range")

type Config struct {
	Boards  int
	Width   int
	Height  int
	Preview bool

	// BaseDelay is the step period with no lines cleared. Every
	// LinesPerSpeedup lines it is multiplied by SpeedupRatio.
	BaseDelay       time.Duration
	SpeedupRatio    float64
	LinesPerSpeedup int
	// DropSpeedup divides the step period while a piece is being dropped.
	DropSpeedup int

	// Seed for the piece generator. 0 picks one from the clock.
	Seed uint64

	// Fixture is a literal bitmap (height+4 rows) loaded by cheat code 10.
	Fixture []uint32
}

func Default() Config {
	return Config{
		Boards:          2,
		Width:           10,
		Height:          20,
		Preview:         true,
		BaseDelay:       500 * time.Millisecond,
		SpeedupRatio:    0.9,
		LinesPerSpeedup: 10,
		DropSpeedup:     8,
	}
}

// Validate reports every setting outside its supported range.
func (c Config) Validate() error {
	var errs []error
	if c.Boards < MinBoards || c.Boards > MaxBoards {
		errs = append(errs, fmt.Errorf("%w: boards %d not in [%d, %d]", ErrOutOfRange, c.Boards, MinBoards, MaxBoards))
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, fmt.Errorf("%w: width %d not in [%d, %d]", ErrOutOfRange, c.Width, MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, fmt.Errorf("%w: height %d not in [%d, %d]", ErrOutOfRange, c.Height, MinHeight, MaxHeight))
	}
	if c.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("%w: base delay %v must be positive", ErrOutOfRange, c.BaseDelay))
	}
	if c.SpeedupRatio <= 0 || c.SpeedupRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: speedup ratio %v not in (0, 1]", ErrOutOfRange, c.SpeedupRatio))
	}
	if c.LinesPerSpeedup < 1 {
		errs = append(errs, fmt.Errorf("%w: lines per speedup %d must be at least 1", ErrOutOfRange, c.LinesPerSpeedup))
	}
	if c.DropSpeedup < 1 {
		errs = append(errs, fmt.Errorf("%w: drop speedup %d must be at least 1", ErrOutOfRange, c.DropSpeedup))
	}
	if c.Fixture != nil && len(c.Fixture) != c.Height+4 {
		errs = append(errs, fmt.Errorf("%w: fixture has %d rows, want %d", ErrOutOfRange, len(c.Fixture), c.Height+4))
	}
	return errors.Join(errs...)
}
