package rle

import "fmt"

// reassemblyBuffer is the receive-side per-fragment-ID working buffer
// from spec.md §4.3: it accumulates a fragmented ALPDU byte-exact and
// validates its trailer once complete. COMPLETE PPDUs bypass this
// buffer entirely — the Reassembly Engine extracts their SDU directly,
// since there is nothing to accumulate.
type reassemblyBuffer struct {
	buf                 []byte
	expectedTotalLength int
	receivedLength      int
	ptypeLen            int
	protoType           ProtocolType
	crcMode             bool
}

func newReassemblyBuffer() *reassemblyBuffer {
	return &reassemblyBuffer{}
}

// init resets cursors.
func (r *reassemblyBuffer) init() {
	r.buf = nil
	r.expectedTotalLength = 0
	r.receivedLength = 0
	r.ptypeLen = 0
	r.protoType = 0
	r.crcMode = false
}

// begin starts accumulation for a new fragmented ALPDU, called once a
// START header has been parsed and its protocol-type header decoded.
func (r *reassemblyBuffer) begin(expectedTotal, ptypeLen int, pt ProtocolType, crcMode bool) {
	r.buf = make([]byte, 0, expectedTotal)
	r.expectedTotalLength = expectedTotal
	r.receivedLength = 0
	r.ptypeLen = ptypeLen
	r.protoType = pt
	r.crcMode = crcMode
}

// accept appends to the accumulator; it fails without mutating state
// if the append would overrun expected_total_length.
func (r *reassemblyBuffer) accept(payload []byte) error {
	if r.receivedLength+len(payload) > r.expectedTotalLength {
		return newError(MalformedHeader, "received more ALPDU bytes than expected_total_length allows")
	}
	r.buf = append(r.buf, payload...)
	r.receivedLength += len(payload)
	return nil
}

// complete reports whether received_length has reached
// expected_total_length.
func (r *reassemblyBuffer) complete() bool {
	return r.receivedLength == r.expectedTotalLength
}

// finalizeAndExtract validates trailer (a CRC-32 or a sequence number,
// per r.crcMode) and, on success, returns the decoded protocol type
// and the SDU slice, then resets the buffer to its init state.
// expectedSeq is only consulted in sequence-number mode.
func (r *reassemblyBuffer) finalizeAndExtract(trailer []byte, expectedSeq uint8) (ProtocolType, []byte, error) {
	if r.crcMode {
		crc, err := DecodeCRCTrailer(trailer)
		if err != nil {
			return 0, nil, err
		}
		if want := alpduCRC(r.buf); crc != want {
			return 0, nil, newError(TrailerMismatch, fmt.Sprintf("CRC-32 mismatch: got 0x%08x want 0x%08x", crc, want))
		}
	} else {
		seq, err := DecodeSeqTrailer(trailer)
		if err != nil {
			return 0, nil, err
		}
		if seq != expectedSeq {
			gap := int(seq) - int(expectedSeq)
			return 0, nil, newError(TrailerMismatch, fmt.Sprintf("sequence-number mismatch: got %d want %d (gap %d)", seq, expectedSeq, gap))
		}
	}
	pt := r.protoType
	sdu := r.buf[r.ptypeLen:]
	r.init()
	return pt, sdu, nil
}
