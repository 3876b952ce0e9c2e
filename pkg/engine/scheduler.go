package engine

import (
	"time"

	"glitchfx/internal/logger"
)

// Task is a periodic callback. An Interval of zero runs the task on every
// scheduler pass, which is how the render task follows the display cadence.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(now time.Time)
}

type scheduledTask struct {
	Task
	deadline time.Time
	runs     uint64
}

// Scheduler runs tasks cooperatively from a single goroutine. Deadlines
// advance by whole intervals to avoid drift; a task that falls more than
// two intervals behind is resynchronised to now instead of bursting.
type Scheduler struct {
	tasks []*scheduledTask
	log   *logger.Logger
}

// NewScheduler creates an empty scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Add registers a task whose first run is one interval after now
func (s *Scheduler) Add(task Task, now time.Time) {
	s.tasks = append(s.tasks, &scheduledTask{
		Task:     task,
		deadline: now.Add(task.Interval),
	})
	s.log.Debugf("task %s registered every %v", task.Name, task.Interval)
}

// Remove deregisters the named task
func (s *Scheduler) Remove(name string) bool {
	for i, t := range s.tasks {
		if t.Name == name {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.log.Debugf("task %s removed after %d runs", name, t.runs)
			return true
		}
	}
	return false
}

// RunDue runs every task whose deadline has passed, in registration order,
// and returns how many ran
func (s *Scheduler) RunDue(now time.Time) int {
	ran := 0
	for _, t := range s.tasks {
		if now.Before(t.deadline) {
			continue
		}

		t.Run(now)
		t.runs++
		ran++

		t.deadline = t.deadline.Add(t.Interval)
		if t.Interval == 0 || now.Sub(t.deadline) > 2*t.Interval {
			t.deadline = now.Add(t.Interval)
		}
	}
	return ran
}

// Runs returns how often the named task has run
func (s *Scheduler) Runs(name string) uint64 {
	for _, t := range s.tasks {
		if t.Name == name {
			return t.runs
		}
	}
	return 0
}
