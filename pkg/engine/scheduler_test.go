package engine

import (
	"io"
	"testing"
	"time"

	"glitchfx/internal/logger"
	"glitchfx/pkg/config"
)

func quietLogger() *logger.Logger {
	l := logger.NewLogger("error")
	l.SetOutput(io.Discard)
	return l
}

var epoch = time.Unix(0, 0)

func at(d time.Duration) time.Time {
	return epoch.Add(d)
}

func TestSchedulerZeroIntervalRunsEveryPass(t *testing.T) {
	s := NewScheduler(quietLogger())
	runs := 0
	s.Add(Task{Name: "render", Run: func(time.Time) { runs++ }}, epoch)

	for i := 0; i < 5; i++ {
		s.RunDue(at(time.Duration(i) * time.Millisecond))
	}
	if runs != 5 {
		t.Errorf("runs = %d, want 5", runs)
	}
	if s.Runs("render") != 5 {
		t.Errorf("Runs = %d, want 5", s.Runs("render"))
	}
}

func TestSchedulerInterval(t *testing.T) {
	s := NewScheduler(quietLogger())
	var times []time.Time
	s.Add(Task{Name: "trigger", Interval: 100 * time.Millisecond, Run: func(now time.Time) {
		times = append(times, now)
	}}, epoch)

	steps := []struct {
		at   time.Duration
		want int
	}{
		{0, 0},
		{99 * time.Millisecond, 0},
		{150 * time.Millisecond, 1},
		{199 * time.Millisecond, 1},
		{200 * time.Millisecond, 2}, // deadline advanced from 100ms, not from 150ms
		{250 * time.Millisecond, 2},
		{300 * time.Millisecond, 3},
	}
	for _, st := range steps {
		s.RunDue(at(st.at))
		if len(times) != st.want {
			t.Fatalf("at %v: runs = %d, want %d", st.at, len(times), st.want)
		}
	}
}

func TestSchedulerResyncsWhenBehind(t *testing.T) {
	s := NewScheduler(quietLogger())
	runs := 0
	s.Add(Task{Name: "trigger", Interval: 100 * time.Millisecond, Run: func(time.Time) { runs++ }}, epoch)

	// A one second stall runs the task once, not ten times
	s.RunDue(at(time.Second))
	s.RunDue(at(time.Second))
	if runs != 1 {
		t.Fatalf("runs after stall = %d, want 1", runs)
	}

	s.RunDue(at(1050 * time.Millisecond))
	if runs != 1 {
		t.Errorf("runs = %d before the resynced deadline", runs)
	}
	s.RunDue(at(1100 * time.Millisecond))
	if runs != 2 {
		t.Errorf("runs = %d at the resynced deadline, want 2", runs)
	}
}

func TestSchedulerOrderAndRemove(t *testing.T) {
	s := NewScheduler(quietLogger())
	var order []string
	s.Add(Task{Name: "a", Run: func(time.Time) { order = append(order, "a") }}, epoch)
	s.Add(Task{Name: "b", Run: func(time.Time) { order = append(order, "b") }}, epoch)

	if n := s.RunDue(epoch); n != 2 {
		t.Errorf("RunDue = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v", order)
	}

	if !s.Remove("a") {
		t.Fatal("Remove(a) = false")
	}
	if s.Remove("a") {
		t.Error("second Remove(a) = true")
	}
	order = nil
	s.RunDue(epoch)
	if len(order) != 1 || order[0] != "b" {
		t.Errorf("order after remove = %v", order)
	}
}

func TestFrameClock(t *testing.T) {
	c := NewFrameClock(config.TimeFrames, 60)
	want := []float64{0, 1.0 / 60, 2.0 / 60}
	for i, w := range want {
		if got := c.Tick(); got != w {
			t.Errorf("tick %d = %v, want %v", i, got, w)
		}
	}
	if got := c.Time(); got != 3.0/60 {
		t.Errorf("Time = %v, want %v", got, 3.0/60)
	}
}

func TestWallClock(t *testing.T) {
	now := epoch
	c := NewFrameClock(config.TimeWall, 60)
	c.now = func() time.Time { return now }

	if got := c.Tick(); got != 0 {
		t.Errorf("first tick = %v, want 0", got)
	}
	now = now.Add(1500 * time.Millisecond)
	if got := c.Tick(); got != 1.5 {
		t.Errorf("second tick = %v, want 1.5", got)
	}
}

func TestVirtualClock(t *testing.T) {
	c := NewVirtualClock(4.5, 0.5)
	want := []float64{4.5, 5.0, 5.5}
	for i, w := range want {
		if got := c.Tick(); got != w {
			t.Errorf("tick %d = %v, want %v", i, got, w)
		}
	}
}
