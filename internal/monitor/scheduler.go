package monitor

import (
	"sync"
	"time"
)

// Task is a scheduled repeating function.
type Task interface {
	// Cancel stops future runs. A run in progress is not interrupted.
	Cancel()
}

// Scheduler runs a function repeatedly.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// TickerScheduler runs each task on its own goroutine driven by a
// time.Ticker. Runs of one task never overlap; ticks that arrive while a
// run is in progress are dropped.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				select {
				case <-t.done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

type tickerTask struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// ManualScheduler runs tasks only when Tick is called.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

// NewManualScheduler creates a ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) Every(interval time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{interval: interval, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Tick runs every live task once, in registration order, and returns how
// many ran.
func (m *ManualScheduler) Tick() int {
	m.mu.Lock()
	tasks := make([]*manualTask, len(m.tasks))
	copy(tasks, m.tasks)
	m.mu.Unlock()

	ran := 0
	for _, t := range tasks {
		if t.run() {
			ran++
		}
	}
	return ran
}

// Live returns how many tasks have not been cancelled.
func (m *ManualScheduler) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.isCancelled() {
			n++
		}
	}
	return n
}

// Intervals returns the interval of every live task.
func (m *ManualScheduler) Intervals() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Duration
	for _, t := range m.tasks {
		if !t.isCancelled() {
			out = append(out, t.interval)
		}
	}
	return out
}

type manualTask struct {
	interval time.Duration
	fn       func()

	mu        sync.Mutex
	cancelled bool
}

func (t *manualTask) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

func (t *manualTask) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

func (t *manualTask) run() bool {
	if t.isCancelled() {
		return false
	}
	t.fn()
	return true
}
