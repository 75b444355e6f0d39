package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFragmentNoDataPendingOnFreshContext(t *testing.T) {
	m := newTxContextManager()
	ctx := m.contexts[0]
	_, err := buildFragment(ctx, 64)
	require.Error(t, err)
	assert.Equal(t, NoDataPending, err.(*Error).Kind)
}

func TestBuildFragmentCompleteReleasesAndCounts(t *testing.T) {
	m := newTxContextManager()
	ctx, err := m.allocate()
	require.NoError(t, err)
	conf := Config{ImplicitProtoType: 0x0800, UsePTypeOmission: true}
	require.NoError(t, encapsulate(ctx, conf, []byte("hi"), 0x0800))

	frag, err := buildFragment(ctx, 64)
	require.NoError(t, err)
	assert.Equal(t, Complete, frag.Kind)

	hdr, err := DecodeHeader(frag.Bytes)
	require.NoError(t, err)
	assert.Equal(t, Complete, hdr.Kind)
	assert.Equal(t, uint16(2), hdr.Length)
	assert.Equal(t, []byte("hi"), frag.Bytes[headerSize:])

	assert.True(t, m.isFree(ctx.fragID))
	assert.Equal(t, uint64(1), ctx.linkStatus.CounterOK)
	assert.Equal(t, uint64(2), ctx.linkStatus.CounterBytesOK)
}

func TestBuildFragmentSplitsAndAppendsCRCTrailer(t *testing.T) {
	m := newTxContextManager()
	ctx, err := m.allocate()
	require.NoError(t, err)
	conf := Config{ImplicitProtoType: 0x0800, UsePTypeOmission: true, UseAlpduCRC: true}
	sdu := make([]byte, 30)
	for i := range sdu {
		sdu[i] = byte(i)
	}
	require.NoError(t, encapsulate(ctx, conf, sdu, 0x0800))

	var kinds []Kind
	var reassembled []byte
	for {
		frag, err := buildFragment(ctx, 10)
		require.NoError(t, err)
		kinds = append(kinds, frag.Kind)

		hdr, err := DecodeHeader(frag.Bytes)
		require.NoError(t, err)
		body := frag.Bytes[headerSize:]
		if hdr.Kind == End {
			body = body[:len(body)-trailerCRCSize]
		}
		reassembled = append(reassembled, body...)

		if hdr.Kind == End {
			break
		}
	}

	assert.Equal(t, Start, kinds[0])
	assert.Equal(t, End, kinds[len(kinds)-1])
	assert.Equal(t, sdu, reassembled)
	assert.True(t, m.isFree(ctx.fragID))
}

func TestBuildFragmentStartSetsIsFragmented(t *testing.T) {
	m := newTxContextManager()
	ctx, err := m.allocate()
	require.NoError(t, err)
	conf := Config{ImplicitProtoType: 0x0800, UsePTypeOmission: true}
	require.NoError(t, encapsulate(ctx, conf, make([]byte, 30), 0x0800))

	frag, err := buildFragment(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Start, frag.Kind)
	assert.True(t, ctx.isFragmented)
}

func TestBuildFragmentBurstTooSmallLeavesBufferIntact(t *testing.T) {
	m := newTxContextManager()
	ctx, err := m.allocate()
	require.NoError(t, err)
	conf := Config{ImplicitProtoType: 0x0800, UsePTypeOmission: true}
	require.NoError(t, encapsulate(ctx, conf, []byte("hi"), 0x0800))

	_, err = buildFragment(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, BurstTooSmall, err.(*Error).Kind)
	assert.False(t, m.isFree(ctx.fragID), "a BurstTooSmall failure must not release the context")
}
