package wsinspect

import (
	"context"
	"fmt"
	"sync"
)

// Manager owns a single logical connection: its state machine, the
// transport session and the buffer of received messages.
//
// Transport events are forwarded by one pump per session into a channel
// consumed by a single loop goroutine, which preserves per-session order.
// Events from sessions the manager no longer owns are discarded.
//
// Callbacks run on a dedicated goroutine, one at a time, in the order the
// transitions were applied, whether they came from ToggleConnection or from
// the transport.
type Manager struct {
	transport  Transport
	logger     Logger
	dispatcher Dispatcher
	notify     *dispatchQueue

	ctx    context.Context
	cancel context.CancelFunc
	events chan SessionEvent
	wg     sync.WaitGroup

	mu       sync.Mutex
	machine  Machine
	endpoint string
	session  Session
	closed   bool
}

// Stats summarises the manager's buffer and session.
type Stats struct {
	State    ConnectionState
	Session  SessionID
	Buffered int
	Received uint64
	Dropped  uint64
}

// New constructs a manager using the transport named by cfg.Transport.
func New(cfg Config) (*Manager, error) {
	t, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return NewManager(cfg, t), nil
}

// NewManager constructs a manager that opens sessions through transport.
// Call Close to release it.
func NewManager(cfg Config, transport Transport) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		transport: transport,
		logger:    noopLogger{},
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan SessionEvent, 64),
		endpoint:  cfg.Endpoint,
	}
	m.notify = newDispatchQueue(&m.dispatcher)
	m.wg.Add(1)
	go m.loop()
	return m
}

// SetLogger overrides logger (optional).
func (m *Manager) SetLogger(l Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// OnStateChange registers callback for state transitions.
func (m *Manager) OnStateChange(fn func(StateEvent)) { m.dispatcher.SetOnStateChange(fn) }

// OnMessage registers callback for buffered messages.
func (m *Manager) OnMessage(fn func(Message)) { m.dispatcher.SetOnMessage(fn) }

// OnError registers callback for transport errors.
func (m *Manager) OnError(fn func(error)) { m.dispatcher.SetOnError(fn) }

// SetEndpoint replaces the endpoint. Edits are accepted only while
// disconnected; the return value reports whether v was taken.
func (m *Manager) SetEndpoint(v string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.machine.State != StateDisconnected {
		m.logger.Debug("endpoint locked", map[string]any{"state": m.machine.State.String()})
		return false
	}
	m.endpoint = v
	return true
}

// Endpoint returns the current endpoint string.
func (m *Manager) Endpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.State
}

// Messages returns a newest-first copy of the buffered messages.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Buffer.Snapshot()
}

// Stats returns counters for the buffer and the owned session.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		State:    m.machine.State,
		Session:  m.machine.Session,
		Buffered: m.machine.Buffer.Len(),
		Received: m.machine.Received,
		Dropped:  m.machine.Dropped,
	}
}

// ToggleConnection opens a session when disconnected and closes the owned
// one otherwise.
//
// Opening validates the endpoint first; a malformed endpoint yields an
// error matching ErrInvalidEndpoint and leaves the manager untouched. The
// call returns before the session is established. Closing takes effect
// immediately: the manager is disconnected and its buffer emptied by the
// time the call returns, while the transport tears down in the background.
func (m *Manager) ToggleConnection() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}

	if m.machine.State == StateDisconnected {
		endpoint := m.endpoint
		if !ValidateEndpoint(endpoint) {
			m.mu.Unlock()
			m.logger.Warn("invalid endpoint", map[string]any{"endpoint": endpoint})
			return NewError(ErrorInvalidEndpoint, fmt.Sprintf("invalid endpoint %q", endpoint))
		}
		id := NewSessionID()
		t := m.machine.Connect(id)
		sess := m.transport.Open(m.ctx, endpoint)
		m.session = sess
		m.wg.Add(1)
		go m.pump(id, sess)
		m.notify.push(t)
		logger := m.logger
		m.mu.Unlock()

		logger.Info("connecting", map[string]any{"endpoint": endpoint, "session": string(id)})
		return nil
	}

	sess := m.session
	t := m.machine.Disconnect()
	m.session = nil
	m.wg.Add(1)
	m.notify.push(t)
	logger := m.logger
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.closeSession(t.Session, sess)
	}()
	logger.Info("disconnected", map[string]any{"session": string(t.Session)})
	return nil
}

// ClearMessages empties the buffer regardless of state.
func (m *Manager) ClearMessages() {
	m.mu.Lock()
	m.machine.Clear()
	m.mu.Unlock()
}

// Close disconnects, if needed, and stops the manager. Pending callbacks
// are delivered before it returns. Further toggles return ErrClosed. Close
// must not be called from a registered callback.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sess := m.session
	t := m.machine.Disconnect()
	m.session = nil
	m.notify.push(t)
	m.mu.Unlock()

	m.closeSession(t.Session, sess)
	m.cancel()
	m.wg.Wait()
	m.notify.close()
	return nil
}

func (m *Manager) closeSession(id SessionID, sess Session) {
	if sess == nil {
		return
	}
	if err := sess.Close(); err != nil {
		m.log().Debug("session close", map[string]any{"session": string(id), "error": err.Error()})
	}
}

func (m *Manager) pump(id SessionID, sess Session) {
	defer m.wg.Done()
	for ev := range sess.Events() {
		select {
		case m.events <- SessionEvent{Session: id, Event: ev}:
		case <-m.ctx.Done():
		}
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	for {
		select {
		case se := <-m.events:
			m.handle(se)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) handle(se SessionEvent) {
	m.mu.Lock()
	t := m.machine.Apply(se)
	if t.Changed() && t.To == StateDisconnected {
		m.session = nil
	}
	m.notify.push(t)
	logger := m.logger
	m.mu.Unlock()

	fields := map[string]any{"session": string(se.Session), "event": se.Kind.String()}
	switch {
	case t.Ignored:
		logger.Debug("event ignored", fields)
	case t.Dropped != nil:
		fields["error"] = t.Dropped.Error()
		logger.Debug("message dropped", fields)
	case se.Kind == EventError:
		if t.Err != nil {
			fields["error"] = t.Err.Error()
		}
		logger.Warn("transport error", fields)
	case se.Kind == EventOpen:
		logger.Info("connected", fields)
	case se.Kind == EventClose:
		if t.Cause != nil {
			fields["cause"] = t.Cause.Error()
		}
		logger.Info("closed by remote", fields)
	}
}

func (m *Manager) log() Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}
