package schedule

import (
	"sync"
	"time"
)

// Executor runs a scheduled task. Engines pass an executor that serializes
// tasks with their event handlers.
type Executor func(task func())

// Debouncer runs tasks keyed by a logical operation name. Scheduling a key
// that already has a pending task cancels the pending one, so each burst of
// calls runs its task once, with the arguments of the last call.
type Debouncer struct {
	exec Executor

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool
}

type entry struct {
	timer *time.Timer
	task  func()
}

// NewDebouncer constructs a Debouncer. A nil executor runs tasks directly on
// the timer goroutine.
func NewDebouncer(exec Executor) *Debouncer {
	if exec == nil {
		exec = func(task func()) { task() }
	}
	return &Debouncer{exec: exec, pending: make(map[string]*entry)}
}

// Schedule arranges for task to run after delay, replacing any pending task
// for key. A non-positive delay runs the task immediately through the
// executor.
func (d *Debouncer) Schedule(key string, delay time.Duration, task func()) {
	if d == nil || task == nil {
		return
	}
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		delete(d.pending, key)
	}
	if delay <= 0 {
		d.mu.Unlock()
		d.exec(task)
		return
	}
	e := &entry{task: task}
	e.timer = time.AfterFunc(delay, func() { d.fire(key, e) })
	d.pending[key] = e
	d.mu.Unlock()
}

// Cancel drops the pending task for key, if any.
func (d *Debouncer) Cancel(key string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether a task is waiting for key.
func (d *Debouncer) Pending(key string) bool {
	if d == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending task now, in no particular order.
func (d *Debouncer) Flush() {
	if d == nil {
		return
	}
	d.mu.Lock()
	tasks := make([]func(), 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		tasks = append(tasks, e.task)
		delete(d.pending, key)
	}
	d.mu.Unlock()
	for _, task := range tasks {
		d.exec(task)
	}
}

// Stop cancels every pending task and refuses new ones.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
	d.stopped = true
}

func (d *Debouncer) fire(key string, e *entry) {
	d.mu.Lock()
	current, ok := d.pending[key]
	if !ok || current != e {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	d.exec(e.task)
}
