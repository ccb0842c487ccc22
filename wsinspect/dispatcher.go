package wsinspect

import "sync"

// Dispatcher routes manager notifications to registered callbacks.
type Dispatcher struct {
	mu            sync.RWMutex
	onStateChange func(StateEvent)
	onMessage     func(Message)
	onError       func(error)
}

func (d *Dispatcher) SetOnStateChange(fn func(StateEvent)) {
	d.mu.Lock()
	d.onStateChange = fn
	d.mu.Unlock()
}

func (d *Dispatcher) SetOnMessage(fn func(Message)) {
	d.mu.Lock()
	d.onMessage = fn
	d.mu.Unlock()
}

func (d *Dispatcher) SetOnError(fn func(error)) {
	d.mu.Lock()
	d.onError = fn
	d.mu.Unlock()
}

// Dispatch fires the callbacks a transition calls for.
func (d *Dispatcher) Dispatch(t Transition) {
	if t.Ignored {
		return
	}
	d.mu.RLock()
	onState, onMsg, onErr := d.onStateChange, d.onMessage, d.onError
	d.mu.RUnlock()

	if t.Err != nil && onErr != nil {
		onErr(t.Err)
	}
	if t.Appended != nil && onMsg != nil {
		onMsg(*t.Appended)
	}
	if t.Changed() && onState != nil {
		cause := t.Cause
		if cause == nil {
			cause = t.Err
		}
		onState(StateEvent{OldState: t.From, NewState: t.To, Session: t.Session, Error: cause})
	}
}

// dispatchQueue hands transitions to a Dispatcher on a single goroutine, in
// the order they were pushed. push never blocks, so it is safe to call with
// the manager lock held.
type dispatchQueue struct {
	mu      sync.Mutex
	pending []Transition

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newDispatchQueue(d *Dispatcher) *dispatchQueue {
	q := &dispatchQueue{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go q.run(d)
	return q
}

func (q *dispatchQueue) push(t Transition) {
	if t.Ignored {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *dispatchQueue) take() []Transition {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *dispatchQueue) run(d *Dispatcher) {
	defer close(q.done)
	for {
		for _, t := range q.take() {
			d.Dispatch(t)
		}
		select {
		case <-q.wake:
		case <-q.stop:
			for _, t := range q.take() {
				d.Dispatch(t)
			}
			return
		}
	}
}

// close delivers what is still pending and waits for the goroutine to exit.
func (q *dispatchQueue) close() {
	close(q.stop)
	<-q.done
}
