package rle

import "encoding/binary"

// Header is the decoded form of the common 16-bit PPDU word plus the
// kind-dependent fields packed into LT_T_FID, per spec.md §4.1/§6:
//
//	[S:1][E:1][Length:11][LT_T_FID:3]
//
// LT_T_FID is a tagged variant, never a shared bitfield: on
// COMPLETE/START it is (LabelType<<1)|PTypeSupp; on CONT/END it is the
// fragment ID.
type Header struct {
	Kind      Kind
	Length    uint16 // semantics vary by Kind, see spec.md §6
	LabelType byte   // valid on Complete/Start
	PTypeSupp byte   // valid on Complete/Start
	FragID    FragID // valid on Cont/End
}

// EncodeHeader packs h into the 2-byte common header word. The caller
// is responsible for having already validated h's fields (buildFragment
// and the header decoder are the only producers of Header values in
// this package).
func EncodeHeader(h Header) []byte {
	buf := make([]byte, headerSize)
	var s, e, ltTFID uint8
	switch h.Kind {
	case Complete:
		s, e = 1, 1
		ltTFID = (h.LabelType << 1) | h.PTypeSupp
	case Start:
		s, e = 1, 0
		ltTFID = (h.LabelType << 1) | h.PTypeSupp
	case Cont:
		s, e = 0, 0
		ltTFID = uint8(h.FragID) & 0x7
	case End:
		s, e = 0, 1
		ltTFID = uint8(h.FragID) & 0x7
	}
	writeCommonWord(buf, s, e, h.Length, ltTFID)
	return buf
}

// DecodeHeader unpacks the 2-byte common header word. It validates bit
// widths and the label-type field on COMPLETE/START; it does not
// cross-check Length against any surrounding buffer — callers holding
// the full PPDU (the Reassembly Engine) do that, since only they know
// which "residual buffer" Length is meant to be compared against for
// a given Kind.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, newError(MalformedHeader, "PPDU shorter than the 2-byte common header")
	}
	s, e, length, ltTFID := parseCommonWord(data)

	h := Header{Length: length}
	switch {
	case s == 1 && e == 1:
		h.Kind = Complete
	case s == 1 && e == 0:
		h.Kind = Start
	case s == 0 && e == 0:
		h.Kind = Cont
	case s == 0 && e == 1:
		h.Kind = End
	}

	switch h.Kind {
	case Complete, Start:
		h.LabelType = (ltTFID >> 1) & 0x3
		h.PTypeSupp = ltTFID & 0x1
		if h.LabelType == ltExtensionSupported {
			return Header{}, newError(MalformedHeader, "unknown label-type 0x3 on COMPLETE/START header")
		}
	case Cont, End:
		h.FragID = FragID(ltTFID & 0x7)
	}
	return h, nil
}

func writeCommonWord(buf []byte, s, e uint8, length uint16, ltTFID uint8) {
	word := (uint16(s&0x1) << 15) | (uint16(e&0x1) << 14) | ((length & 0x7FF) << 3) | uint16(ltTFID&0x7)
	binary.BigEndian.PutUint16(buf, word)
}

func parseCommonWord(buf []byte) (s, e uint8, length uint16, ltTFID uint8) {
	word := binary.BigEndian.Uint16(buf)
	s = uint8(word>>15) & 0x1
	e = uint8(word>>14) & 0x1
	length = (word >> 3) & 0x7FF
	ltTFID = uint8(word) & 0x7
	return
}

// sizeOfHeader returns the exact byte count a caller must reserve for
// a header of the given kind, including any protocol-type header
// bytes on COMPLETE/START (ptypeHdrLen is 0 for CONT/END).
func sizeOfHeader(kind Kind, ptypeHdrLen int) int {
	switch kind {
	case Complete, Start:
		return headerSize + ptypeHdrLen
	default:
		return headerSize
	}
}

// trailerSize returns the END-fragment trailer size for the given CRC
// mode: 4 bytes for CRC-32, 1 byte for a sequence number.
func trailerSize(useCRC bool) int {
	if useCRC {
		return trailerCRCSize
	}
	return trailerSeqSize
}

// decidePType computes the protocol-type header bytes (possibly none)
// plus the label-type/suppression-flag pair to pack into a
// COMPLETE/START header, per spec.md §3's omissible/compressible
// predicates and the label-type rule from spec.md §9's open question:
// RLE_LT_PROTO_SIGNAL for the signalling protocol type regardless of
// suppression, RLE_LT_IMPLICIT_PROTO_TYPE when omitted, the plain
// no-support code otherwise.
func decidePType(pt ProtocolType, conf Config) (hdrBytes []byte, labelType byte, suppFlag byte) {
	omit := omissible(pt, conf)
	if omit {
		suppFlag = ptypeSupp
	} else {
		suppFlag = ptypeNoSupp
	}

	switch {
	case pt == ProtoTypeSignal || pt == ProtoTypeUncompSignal:
		labelType = ltProtoSignal
	case omit:
		labelType = ltImplicitProtoType
	default:
		labelType = ltProtoTypeNoSupp
	}

	if omit {
		return nil, labelType, suppFlag
	}

	hi, lo := byte(pt>>8), byte(pt)
	if conf.UseCompressedPType {
		if code, ok := compressedCode(pt); ok {
			return []byte{code}, labelType, suppFlag
		}
		return []byte{compressedEscape, hi, lo}, labelType, suppFlag
	}
	return []byte{hi, lo}, labelType, suppFlag
}

// decodePType is the receive-side companion to decidePType: it turns
// the suppression flag, label type and trailing bytes back into a
// ProtocolType plus the number of bytes consumed from data.
func decodePType(data []byte, labelType, suppFlag byte, conf Config) (pt ProtocolType, consumed int, err error) {
	if suppFlag == ptypeSupp {
		if labelType == ltProtoSignal {
			return ProtoTypeSignal, 0, nil
		}
		return conf.ImplicitProtoType, 0, nil
	}

	if !conf.UseCompressedPType {
		if len(data) < ptypeUncompressed {
			return 0, 0, newError(MalformedHeader, "truncated uncompressed protocol-type header")
		}
		return ProtocolType(binary.BigEndian.Uint16(data[:2])), ptypeUncompressed, nil
	}

	if len(data) < ptypeCompressed1B {
		return 0, 0, newError(MalformedHeader, "truncated compressed protocol-type header")
	}
	code := data[0]
	if code == compressedEscape {
		if len(data) < ptypeCompressed3B {
			return 0, 0, newError(MalformedHeader, "truncated compressed-escape protocol-type header")
		}
		return ProtocolType(binary.BigEndian.Uint16(data[1:3])), ptypeCompressed3B, nil
	}
	decoded, ok := uncompressPType[code]
	if !ok {
		return 0, 0, newError(MalformedHeader, "unknown compressed protocol-type code")
	}
	return decoded, ptypeCompressed1B, nil
}

// EncodeSeqTrailer returns the 1-byte sequence-number trailer.
func EncodeSeqTrailer(seq uint8) []byte {
	return []byte{seq}
}

// EncodeCRCTrailer returns the 4-byte big-endian CRC-32 trailer.
func EncodeCRCTrailer(crc uint32) []byte {
	buf := make([]byte, trailerCRCSize)
	binary.BigEndian.PutUint32(buf, crc)
	return buf
}

// DecodeSeqTrailer reads the 1-byte sequence-number trailer.
func DecodeSeqTrailer(b []byte) (uint8, error) {
	if len(b) < trailerSeqSize {
		return 0, newError(MalformedHeader, "truncated sequence-number trailer")
	}
	return b[0], nil
}

// DecodeCRCTrailer reads the 4-byte big-endian CRC-32 trailer.
func DecodeCRCTrailer(b []byte) (uint32, error) {
	if len(b) < trailerCRCSize {
		return 0, newError(MalformedHeader, "truncated CRC trailer")
	}
	return binary.BigEndian.Uint32(b), nil
}
