package wsinspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferOrder(t *testing.T) {
	var b Buffer
	for i := uint64(1); i <= 3; i++ {
		b.Push(Message{Seq: i})
	}

	require.Equal(t, 3, b.Len())
	m, ok := b.At(0)
	require.True(t, ok)
	assert.Equal(t, uint64(3), m.Seq)
	m, ok = b.At(2)
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.Seq)
	_, ok = b.At(3)
	assert.False(t, ok)
	_, ok = b.At(-1)
	assert.False(t, ok)

	snap := b.Snapshot()
	assert.Equal(t, []uint64{3, 2, 1}, []uint64{snap[0].Seq, snap[1].Seq, snap[2].Seq})
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	var b Buffer
	b.Push(Message{Seq: 1})

	snap := b.Snapshot()
	snap[0].Seq = 99
	m, _ := b.At(0)
	assert.Equal(t, uint64(1), m.Seq)
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	b.Push(Message{Seq: 1})
	b.Reset()

	assert.Zero(t, b.Len())
	assert.Empty(t, b.Snapshot())
}
