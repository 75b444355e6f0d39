// Package transport carries PPDU envelopes between a Transmitter and a
// Receiver over a byte stream. It is deliberately dumb: the RLE Length
// field inside a PPDU is a PPDU's own internal bookkeeping, not a
// framing mechanism a stream transport can rely on, so every PPDU is
// wrapped in its own 4-byte big-endian length prefix on the wire.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// MaxEnvelopeSize bounds a framed PPDU to guard ReadPPDU against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const MaxEnvelopeSize = 1 << 16

// Link wraps a net.Conn with PPDU-envelope framing.
type Link struct {
	conn net.Conn
}

// NewLink wraps an already-established connection.
func NewLink(conn net.Conn) *Link {
	return &Link{conn: conn}
}

// Close closes the underlying connection.
func (l *Link) Close() error {
	return l.conn.Close()
}

// WritePPDU frames ppdu with a 4-byte big-endian length prefix and
// writes the prefix, then the PPDU bytes, to the connection.
func (l *Link) WritePPDU(ppdu []byte) error {
	return WritePPDU(l.conn, ppdu)
}

// ReadPPDU reads one framed PPDU, blocking until a full envelope
// arrives or the connection errors.
func (l *Link) ReadPPDU() ([]byte, error) {
	return ReadPPDU(l.conn)
}

// WritePPDU frames ppdu with a 4-byte big-endian length prefix onto w.
func WritePPDU(w io.Writer, ppdu []byte) error {
	if len(ppdu) > MaxEnvelopeSize {
		return fmt.Errorf("transport: PPDU of %d bytes exceeds envelope limit %d", len(ppdu), MaxEnvelopeSize)
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(ppdu)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("transport: writing envelope length: %w", err)
	}
	if _, err := w.Write(ppdu); err != nil {
		return fmt.Errorf("transport: writing PPDU body: %w", err)
	}
	return nil
}

// ReadPPDU reads one length-prefixed PPDU from r.
func ReadPPDU(r io.Reader) ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > MaxEnvelopeSize {
		return nil, fmt.Errorf("transport: envelope length %d exceeds limit %d", n, MaxEnvelopeSize)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("transport: reading PPDU body: %w", err)
	}
	return body, nil
}
