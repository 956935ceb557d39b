// Package throttle coalesces bursts of snapshots into at most two emissions
// per window: one leading and one trailing.
package throttle

import (
	"sync"
	"time"
)

// DefaultWindow is the minimum spacing between leading emissions.
const DefaultWindow = 500 * time.Millisecond

// Emitter publishes values on C with leading-edge emission and a single
// trailing emission carrying the latest value. The output holds one value;
// an unread value is replaced by a newer one.
type Emitter[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	last    time.Time
	latest  T
	timer   *time.Timer
	out     chan T
	emitted uint64
	stopped bool
}

// New creates an emitter. A non-positive window uses DefaultWindow.
func New[T any](window time.Duration) *Emitter[T] {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Emitter[T]{
		window: window,
		now:    time.Now,
		out:    make(chan T, 1),
	}
}

// C returns the emission channel. It is closed by Stop.
func (e *Emitter[T]) C() <-chan T {
	return e.out
}

// Notify offers v. It is emitted immediately when the window since the last
// emission has passed; otherwise one trailing emission is scheduled for the
// end of the window and later calls only replace the value it will carry.
func (e *Emitter[T]) Notify(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	e.latest = v

	if e.timer != nil {
		return
	}

	elapsed := e.now().Sub(e.last)
	if e.last.IsZero() || elapsed >= e.window {
		e.emit(v)
		return
	}
	e.timer = time.AfterFunc(e.window-elapsed, e.flush)
}

// Emitted returns the number of emissions so far.
func (e *Emitter[T]) Emitted() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emitted
}

// Stop cancels a pending trailing emission and closes C.
func (e *Emitter[T]) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return
	}
	e.stopped = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	close(e.out)
}

func (e *Emitter[T]) flush() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || e.timer == nil {
		return
	}
	e.timer = nil
	e.emit(e.latest)
}

// emit sends v, replacing an unread value. Caller holds mu.
func (e *Emitter[T]) emit(v T) {
	e.last = e.now()
	e.emitted++
	select {
	case e.out <- v:
		return
	default:
	}
	select {
	case <-e.out:
	default:
	}
	e.out <- v
}
