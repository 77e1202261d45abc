package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	newCounting := func() (*Timer, *ManualScheduler, *int) {
		sched := &ManualScheduler{}
		n := new(int)
		return newTimer(sched, func() time.Duration { return 10 * time.Millisecond }, func() { *n++ }), sched, n
	}

	t.Run("Ticks repeat", func(t *testing.T) {
		tm, sched, n := newCounting()
		tm.Start()
		sched.Advance(35 * time.Millisecond)
		assert.Equal(t, 3, *n)
		assert.Equal(t, 1, sched.Pending())
	})

	t.Run("Start twice keeps one stream", func(t *testing.T) {
		tm, sched, n := newCounting()
		tm.Start()
		tm.Start()
		sched.Advance(50 * time.Millisecond)
		assert.Equal(t, 5, *n)
	})

	t.Run("Stop drops pending tick", func(t *testing.T) {
		tm, sched, n := newCounting()
		tm.Start()
		tm.Stop()
		sched.Advance(time.Second)
		assert.Zero(t, *n)
		assert.False(t, tm.Running())
	})

	t.Run("Restart only when running", func(t *testing.T) {
		tm, sched, n := newCounting()
		tm.Restart()
		sched.Advance(time.Second)
		assert.Zero(t, *n)

		tm.Start()
		sched.Advance(5 * time.Millisecond)
		tm.Restart()
		sched.Advance(5 * time.Millisecond)
		assert.Zero(t, *n, "restart pushed the tick back")
		sched.Advance(5 * time.Millisecond)
		assert.Equal(t, 1, *n)
	})

	t.Run("Stop from the tick", func(t *testing.T) {
		sched := &ManualScheduler{}
		var tm *Timer
		n := 0
		tm = newTimer(sched, func() time.Duration { return time.Millisecond }, func() {
			n++
			if n == 2 {
				tm.Stop()
			}
		})
		tm.Start()
		sched.Advance(time.Second)
		assert.Equal(t, 2, n)
		assert.Zero(t, sched.Pending())
	})
}

func TestDelays(t *testing.T) {
	tests := []struct {
		lines int
		want  time.Duration
	}{
		{lines: 0, want: 500 * time.Millisecond},
		{lines: 9, want: 500 * time.Millisecond},
		{lines: 10, want: 450 * time.Millisecond},
		{lines: 25, want: 405 * time.Millisecond},
	}
	for _, tt := range tests {
		got := stepDelay(500*time.Millisecond, 0.9, 10, tt.lines)
		assert.InDelta(t, float64(tt.want), float64(got), float64(time.Microsecond), "lines %d", tt.lines)
	}
	assert.Equal(t, time.Millisecond, stepDelay(time.Millisecond, 0.5, 1, 100))
	assert.Equal(t, 62500*time.Microsecond, dropDelay(500*time.Millisecond, 8))
	assert.Equal(t, time.Millisecond, dropDelay(2*time.Millisecond, 8))
}
