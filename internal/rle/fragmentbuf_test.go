package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentBufferEmitsCompleteWhenItFits(t *testing.T) {
	b := newFragmentBuffer()
	require.NoError(t, b.stage([]byte("hello"), []byte{0x01}))

	kind, payload, err := b.emit(64, false)
	require.NoError(t, err)
	assert.Equal(t, Complete, kind)
	assert.Equal(t, []byte{0x01, 'h', 'e', 'l', 'l', 'o'}, payload)
	assert.Equal(t, 0, b.remainingAlpduLength())
}

func TestFragmentBufferSplitsStartContEnd(t *testing.T) {
	sdu := make([]byte, 20)
	for i := range sdu {
		sdu[i] = byte(i)
	}
	b := newFragmentBuffer()
	require.NoError(t, b.stage(sdu, []byte{0xAB}))

	// headerSize(2) + ptype(1) = 3 bytes of overhead on START; capacity
	// 8 leaves room for 5 payload bytes.
	kind, payload, err := b.emit(8, false)
	require.NoError(t, err)
	assert.Equal(t, Start, kind)
	assert.Len(t, payload, 5)
	assert.Equal(t, byte(0xAB), payload[0])

	var all []byte
	all = append(all, payload...)

	for {
		kind, payload, err = b.emit(8, false)
		require.NoError(t, err)
		all = append(all, payload...)
		if kind == End {
			break
		}
		assert.Equal(t, Cont, kind)
	}

	want := append([]byte{0xAB}, sdu...)
	assert.Equal(t, want, all)
	assert.Equal(t, 0, b.remainingAlpduLength())
}

func TestFragmentBufferReservesTrailerSpaceOnEnd(t *testing.T) {
	sdu := make([]byte, 10)
	b := newFragmentBuffer()
	require.NoError(t, b.stage(sdu, nil))

	// Force a START first so the buffer is in "started" state, then
	// offer a capacity with room for the header, the CRC trailer and
	// only two payload bytes, so an END could carry at most two bytes.
	_, _, err := b.emit(4, true)
	require.NoError(t, err)

	kind, payload, err := b.emit(headerSize+2+trailerCRCSize, true)
	require.NoError(t, err)
	if kind == End {
		assert.LessOrEqual(t, len(payload), 2)
	} else {
		assert.Equal(t, Cont, kind)
	}
}

func TestFragmentBufferRejectsOversizedALPDU(t *testing.T) {
	b := newFragmentBuffer()
	err := b.stage(make([]byte, maxALPDUSize), make([]byte, 1))
	require.Error(t, err)
	assert.Equal(t, SduTooLarge, err.(*Error).Kind)
}

func TestFragmentBufferEmitRejectsTinyCapacity(t *testing.T) {
	b := newFragmentBuffer()
	require.NoError(t, b.stage([]byte("x"), nil))
	_, _, err := b.emit(1, false)
	require.Error(t, err)
	assert.Equal(t, BurstTooSmall, err.(*Error).Kind)
}

func TestFragmentBufferInitClearsState(t *testing.T) {
	b := newFragmentBuffer()
	require.NoError(t, b.stage([]byte("x"), nil))
	b.init()
	assert.Equal(t, 0, b.alpduLen)
	assert.Equal(t, 0, b.remainingAlpduLength())
	assert.False(t, b.started)
}

func TestFragmentBufferFullALPDU(t *testing.T) {
	b := newFragmentBuffer()
	require.NoError(t, b.stage([]byte("world"), []byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x01, 0x02, 'w', 'o', 'r', 'l', 'd'}, b.fullALPDU())
}
