package framing_test

import (
	"testing"

	"github.com/lhrsolar/curvetracer/internal/framing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingFullCapacityUsable(t *testing.T) {
	r := framing.NewRing(5)

	for i := 0; i < 5; i++ {
		require.True(t, r.Enqueue(byte('a'+i)), "enqueue %d should succeed", i)
	}

	assert.True(t, r.Full())
	assert.False(t, r.Empty(), "a full ring is never empty")
	assert.Equal(t, 5, r.Used())
	assert.False(t, r.Enqueue('x'), "enqueue into a full ring must fail")
	assert.Equal(t, 5, r.Used(), "used never exceeds capacity")
}

func TestRingDequeueOrderAndZeroing(t *testing.T) {
	r := framing.NewRing(4)
	for _, b := range []byte{1, 2, 3} {
		require.True(t, r.Enqueue(b))
	}

	b, ok := r.Dequeue()
	require.True(t, ok)
	assert.Equal(t, byte(1), b)

	// The vacated slot must not resurface through Peek after wraparound.
	require.True(t, r.Enqueue(4))
	require.True(t, r.Enqueue(5))
	assert.Equal(t, []byte{2, 3, 4}, r.Peek(4))
}

func TestRingEmptyDequeue(t *testing.T) {
	r := framing.NewRing(3)

	_, ok := r.Dequeue()
	assert.False(t, ok)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Used())
}

func TestRingPeekReservesSentinelSlot(t *testing.T) {
	r := framing.NewRing(8)
	for i := byte(0); i < 6; i++ {
		require.True(t, r.Enqueue(i))
	}

	assert.Len(t, r.Peek(4), 3, "peek returns at most max-1 bytes")
	assert.Equal(t, []byte{0, 1, 2}, r.Peek(4))
	assert.Equal(t, 6, r.Used(), "peek must not consume")
	assert.Nil(t, r.Peek(1))
}

func TestRingPeekOnFullRing(t *testing.T) {
	r := framing.NewRing(3)
	for i := byte(0); i < 3; i++ {
		require.True(t, r.Enqueue(i))
	}

	assert.Equal(t, []byte{0, 1}, r.Peek(3))
}

func TestRingClear(t *testing.T) {
	r := framing.NewRing(3)
	r.Enqueue(9)
	r.Clear()

	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Used())
	_, ok := r.Dequeue()
	assert.False(t, ok)
}

func TestRingWraparoundStress(t *testing.T) {
	r := framing.NewRing(4)
	next := byte(0)
	expect := byte(0)

	for round := 0; round < 40; round++ {
		for r.Enqueue(next) {
			next++
		}
		assert.LessOrEqual(t, r.Used(), 4)

		b, ok := r.Dequeue()
		require.True(t, ok)
		assert.Equal(t, expect, b)
		expect++
	}
}
