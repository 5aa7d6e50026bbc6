// Package scheduler fires deadlines on a channel. The dashboard uses it to
// notice a session token expiring while the program is running.
package scheduler

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidDeadline = errors.New("scheduler: invalid deadline")
	ErrStopped         = errors.New("scheduler: engine stopped")
)

// Deadline kinds.
const (
	KindSessionExpiry = "session_expiry"
)

type Deadline struct {
	ID   string
	Kind string
	At   time.Time
}

type pending struct {
	deadline Deadline
	gen      uint64
	timer    *time.Timer
}

// Engine keeps one timer per deadline ID. Deadlines are delivered on C
// without blocking; a full channel counts as a drop.
type Engine struct {
	mu      sync.Mutex
	armed   map[string]*pending
	out     chan Deadline
	gen     uint64
	anon    uint64
	started bool
	stopped bool
	dropped atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		armed: make(map[string]*pending),
		out:   make(chan Deadline, bufferSize),
	}
}

func (e *Engine) C() <-chan Deadline {
	return e.out
}

// Start arms every deadline scheduled so far. Later deadlines are armed
// as they arrive.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	for key, p := range e.armed {
		e.armLocked(key, p)
	}
}

// Stop cancels every pending deadline and closes C.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	for key, p := range e.armed {
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(e.armed, key)
	}
	close(e.out)
}

// Schedule arms d. A deadline with the same ID replaces the pending one.
func (e *Engine) Schedule(d Deadline) error {
	if d.At.IsZero() {
		return ErrInvalidDeadline
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	key := d.ID
	if key == "" {
		e.anon++
		key = "\x00" + strconv.FormatUint(e.anon, 10)
	}
	e.cancelLocked(key)
	e.gen++
	p := &pending{deadline: d, gen: e.gen}
	e.armed[key] = p
	if e.started {
		e.armLocked(key, p)
	}
	return nil
}

// Cancel drops a pending deadline. Unknown IDs are ignored.
func (e *Engine) Cancel(id string) {
	if id == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked(id)
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.armed)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) cancelLocked(key string) {
	p, ok := e.armed[key]
	if !ok {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	delete(e.armed, key)
}

func (e *Engine) armLocked(key string, p *pending) {
	gen := p.gen
	p.timer = time.AfterFunc(max(time.Until(p.deadline.At), 0), func() { e.fire(key, gen) })
}

// fire delivers the deadline armed under key unless it was replaced or
// cancelled after its timer started.
func (e *Engine) fire(key string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.armed[key]
	if e.stopped || !ok || p.gen != gen {
		return
	}
	delete(e.armed, key)
	select {
	case e.out <- p.deadline:
	default:
		e.dropped.Add(1)
	}
}
