// Package timer drives actual-time tracking for running tasks.
//
// The Tracker owns one ticking goroutine per running task but never touches the model: it posts
// Ticks to a sink, and the owner applies them on its own goroutine with Apply.
package timer

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"tasktree/internal/model"
)

const DefaultInterval = time.Second

// Tick reports that Seconds of work elapsed on Task.
type Tick struct {
	Task    *model.Task
	Seconds int64
}

// Tracker implements model.TimeTracker.
type Tracker struct {
	interval time.Duration
	out      func(Tick)
	log      *log.Logger

	mu      sync.Mutex
	running map[*model.Task]chan struct{}
}

// New returns a Tracker posting one Tick per interval per running task to out. out is called
// from tracker goroutines and must not block for long. A nil logger discards output.
func New(interval time.Duration, out func(Tick), logger *log.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tracker{
		interval: interval,
		out:      out,
		log:      logger,
		running:  map[*model.Task]chan struct{}{},
	}
}

func (tr *Tracker) seconds() int64 {
	s := int64(tr.interval / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

func (tr *Tracker) StartTracking(t *model.Task) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if _, ok := tr.running[t]; ok {
		return
	}
	stop := make(chan struct{})
	tr.running[t] = stop
	tr.log.Debug("timer started", "task", t.ID(), "interval", tr.interval)
	go tr.loop(t, stop)
}

func (tr *Tracker) StopTracking(t *model.Task) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	stop, ok := tr.running[t]
	if !ok {
		return
	}
	close(stop)
	delete(tr.running, t)
	tr.log.Debug("timer stopped", "task", t.ID())
}

// StopAll cancels every timer. Tasks are not notified; call it on shutdown after the model
// has been persisted.
func (tr *Tracker) StopAll() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for t, stop := range tr.running {
		close(stop)
		delete(tr.running, t)
	}
}

// Tracking reports whether t currently has a timer.
func (tr *Tracker) Tracking(t *model.Task) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	_, ok := tr.running[t]
	return ok
}

func (tr *Tracker) Count() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.running)
}

func (tr *Tracker) loop(t *model.Task, stop <-chan struct{}) {
	ticker := time.NewTicker(tr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if tr.out == nil {
				continue
			}
			select {
			case <-stop:
				return
			default:
			}
			tr.out(Tick{Task: t, Seconds: tr.seconds()})
		}
	}
}

// Apply adds the tick to the task's stored actual time through the model, so listeners see a
// change. Ticks for tasks that stopped or left the model in the meantime are dropped.
func Apply(m *model.Model, tick Tick) error {
	t := tick.Task
	if t == nil || !t.Running() || !m.Contains(t) {
		return nil
	}
	return m.UpdateActualTime(t, t.StoredActualTime()+tick.Seconds)
}
