package tetris

import (
	"math"
	"time"
)

// Scheduler runs f once after d, on the goroutine that owns the engine.
// Scheduled callbacks cannot be withdrawn; Timer ignores stale ones.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// Timer is a repeating tick built from one-shot callbacks. Every Start, Stop
// and Restart bumps the generation, and a callback armed under an older
// generation does nothing when it fires.
type Timer struct {
	sched      Scheduler
	period     func() time.Duration
	onTick     func()
	generation uint64
	running    bool
}

func newTimer(s Scheduler, period func() time.Duration, onTick func()) *Timer {
	return &Timer{sched: s, period: period, onTick: onTick}
}

func (t *Timer) Running() bool { return t.running }

func (t *Timer) Start() {
	t.generation++
	t.running = true
	t.arm()
}

func (t *Timer) Stop() {
	t.generation++
	t.running = false
}

// Restart drops the pending tick and arms a new one with the current period.
func (t *Timer) Restart() {
	if !t.running {
		return
	}
	t.Start()
}

func (t *Timer) arm() {
	gen := t.generation
	t.sched.AfterFunc(t.period(), func() {
		if !t.running || gen != t.generation {
			return
		}
		t.onTick()
		// onTick may have stopped or restarted the timer.
		if t.running && gen == t.generation {
			t.arm()
		}
	})
}

// stepDelay is base * ratio^(lines / every).
func stepDelay(base time.Duration, ratio float64, every, lines int) time.Duration {
	if every < 1 {
		every = 1
	}
	d := time.Duration(float64(base) * math.Pow(ratio, float64(lines/every)))
	return max(d, time.Millisecond)
}

func dropDelay(step time.Duration, speedup int) time.Duration {
	if speedup < 1 {
		speedup = 1
	}
	return max(step/time.Duration(speedup), time.Millisecond)
}
