package wsinspect

// Buffer holds received messages. Reads are newest-first; storage is
// append-only so that arrival stays O(1).
type Buffer struct {
	items []Message
}

// Push records m as the newest message.
func (b *Buffer) Push(m Message) { b.items = append(b.items, m) }

// Len returns the number of buffered messages.
func (b *Buffer) Len() int { return len(b.items) }

// At returns the i-th message counting from the newest (index 0).
func (b *Buffer) At(i int) (Message, bool) {
	if i < 0 || i >= len(b.items) {
		return Message{}, false
	}
	return b.items[len(b.items)-1-i], true
}

// Snapshot returns a newest-first copy of the buffer.
func (b *Buffer) Snapshot() []Message {
	out := make([]Message, len(b.items))
	for i, m := range b.items {
		out[len(b.items)-1-i] = m
	}
	return out
}

// Reset empties the buffer.
func (b *Buffer) Reset() { b.items = nil }
