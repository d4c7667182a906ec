package loader

import (
	"context"
	"errors"
)

// ErrDispatcherStopped is returned when work is posted after the dispatcher exits.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher is the controlling context: a single goroutine that runs posted
// functions one at a time, in order. Loader transitions and observer
// callbacks all run here, so they never race with each other.
type Dispatcher struct {
	tasks chan func()
	done  chan struct{}
}

// NewDispatcher creates a Dispatcher with room for buffer pending tasks.
func NewDispatcher(buffer int) *Dispatcher {
	return &Dispatcher{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted tasks until ctx is cancelled. Tasks still queued when
// Run returns are dropped.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-d.tasks:
			fn()
		}
	}
}

// Post queues fn for execution. It reports false if the dispatcher has stopped.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.tasks <- fn:
		return true
	case <-d.done:
		return false
	}
}

// Call runs fn on the dispatcher and waits for it to finish. It must not be
// called from a task already running on the dispatcher.
func (d *Dispatcher) Call(fn func()) error {
	finished := make(chan struct{})
	if !d.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrDispatcherStopped
	}
	select {
	case <-finished:
		return nil
	case <-d.done:
		// fn may have completed just before Run returned.
		select {
		case <-finished:
			return nil
		default:
			return ErrDispatcherStopped
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}
