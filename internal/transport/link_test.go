package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadPPDURoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ppdu := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	require.NoError(t, WritePPDU(&buf, ppdu))

	got, err := ReadPPDU(&buf)
	require.NoError(t, err)
	assert.Equal(t, ppdu, got)
}

func TestWritePPDURejectsOversizedEnvelope(t *testing.T) {
	var buf bytes.Buffer
	err := WritePPDU(&buf, make([]byte, MaxEnvelopeSize+1))
	assert.Error(t, err)
}

func TestReadPPDURejectsOversizedPrefix(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	_, err := ReadPPDU(&buf)
	assert.Error(t, err)
}

func TestLinkRoundTripOverPipe(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	client := NewLink(clientConn)
	server := NewLink(serverConn)

	want := []byte{0xAA, 0xBB, 0xCC}
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.WritePPDU(want)
	}()

	serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	got, err := server.ReadPPDU()
	require.NoError(t, err)
	require.NoError(t, <-errCh)
	assert.Equal(t, want, got)
}
