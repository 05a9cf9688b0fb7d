// Package sched provides cancelable deferred tasks for auto-dismiss style
// behaviors. Owners must cancel pending tasks when they tear down, so a
// callback never fires against state that is no longer displayed.
package sched

import (
	"sync"
	"time"
)

// Task is a single deferred callback that can be canceled before it fires.
type Task struct {
	mu       sync.Mutex
	timer    *time.Timer
	done     bool
	canceled bool
}

// After schedules fn to run once after d. The returned Task cancels the
// callback if Cancel is called before the delay elapses.
func After(d time.Duration, fn func()) *Task {
	t := &Task{}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.canceled {
			t.mu.Unlock()
			return
		}
		t.done = true
		t.mu.Unlock()
		fn()
	})
	return t
}

// Cancel stops the task if it has not fired yet. It is safe to call more
// than once and after the task has fired.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.canceled {
		return
	}
	t.canceled = true
	t.timer.Stop()
}

// Fired reports whether the callback has run.
func (t *Task) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
