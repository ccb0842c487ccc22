package wsinspect

// Machine is the connection state machine. It performs no I/O; the Manager
// drives it from user operations and transport events.
type Machine struct {
	State    ConnectionState
	Session  SessionID // owned session, empty while disconnected
	Buffer   Buffer
	Received uint64 // decoded messages over the machine's lifetime
	Dropped  uint64 // undecodable payloads
}

// Transition describes the outcome of one Machine operation.
type Transition struct {
	From     ConnectionState
	To       ConnectionState
	Session  SessionID
	Appended *Message // set when a message was buffered
	Dropped  error    // decode failure, when a payload was dropped
	Err      error    // transport error carried by EventError
	Cause    error    // abnormal closure cause carried by EventClose
	Ignored  bool     // the operation or event had no effect
}

// Changed reports whether the connection state moved.
func (t Transition) Changed() bool { return t.From != t.To }

// Connect enters Connecting, owning session id. It is ignored unless the
// machine is disconnected.
func (m *Machine) Connect(id SessionID) Transition {
	t := Transition{From: m.State, To: m.State, Session: id}
	if m.State != StateDisconnected || id == "" {
		t.Ignored = true
		return t
	}
	m.State = StateConnecting
	m.Session = id
	t.To = m.State
	return t
}

// Disconnect releases the owned session and empties the buffer. It is the
// user-initiated path; remote closes go through Apply.
func (m *Machine) Disconnect() Transition {
	t := Transition{From: m.State, To: StateDisconnected, Session: m.Session}
	if m.State == StateDisconnected {
		t.Ignored = true
		return t
	}
	m.State = StateDisconnected
	m.Session = ""
	m.Buffer.Reset()
	return t
}

// Clear empties the buffer in any state.
func (m *Machine) Clear() { m.Buffer.Reset() }

// Apply processes a transport event. Events from any session other than
// the owned one are ignored.
func (m *Machine) Apply(ev SessionEvent) Transition {
	t := Transition{From: m.State, To: m.State, Session: ev.Session}
	if m.Session == "" || ev.Session != m.Session {
		t.Ignored = true
		return t
	}

	switch ev.Kind {
	case EventOpen:
		if m.State != StateConnecting {
			t.Ignored = true
			return t
		}
		m.State = StateConnected
	case EventMessage:
		raw, v, err := decodeMessage(ev.Data)
		if err != nil {
			m.Dropped++
			t.Dropped = err
			return t
		}
		m.Received++
		msg := Message{
			Seq:        m.Received,
			Session:    ev.Session,
			ReceivedAt: ev.At,
			Raw:        raw,
			Value:      v,
		}
		m.Buffer.Push(msg)
		t.Appended = &msg
	case EventError:
		t.Err = ev.Err
	case EventClose:
		t.Cause = ev.Err
		m.State = StateDisconnected
		m.Session = ""
	default:
		t.Ignored = true
	}
	t.To = m.State
	return t
}
