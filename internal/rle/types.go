// Package rle implements the core of a Return Link Encapsulation (RLE)
// codec: encapsulation, fragmentation and reassembly of Service Data
// Units into bounded-capacity PPDU fragments, as used on the return
// link of a satellite access network.
package rle

import "fmt"

// ProtocolType is the 16-bit identifier carried (or omitted, or
// compressed) in the ALPDU header.
type ProtocolType uint16

// Protocol types with dedicated handling in the header codec.
const (
	// ProtoTypeSignal is the signalling protocol constant; when a PDU
	// carries this type its label is always RLE_LT_PROTO_SIGNAL.
	ProtoTypeSignal ProtocolType = 0x0082
	// protoTypeVLANNoSupp is the VLAN-without-ptype variant. Rejected
	// as an implicit protocol type at Config construction time.
	protoTypeVLANNoSupp ProtocolType = 0x0031
	// ProtoTypeUncompSignal is the uncompressed-signal constant: a
	// protocol type always considered omissible regardless of the
	// configured implicit default.
	ProtoTypeUncompSignal ProtocolType = 0xFFFF
)

// compressedPType maps a 16-bit protocol type to its one-octet
// compressed code, mirroring the small fixed table used on the wire.
var compressedPType = map[ProtocolType]byte{
	0x0800: 0x0D, // IPv4
	0x86DD: 0x11, // IPv6
	ProtoTypeSignal: 0x42,
}

var uncompressPType = func() map[byte]ProtocolType {
	m := make(map[byte]ProtocolType, len(compressedPType))
	for pt, code := range compressedPType {
		m[code] = pt
	}
	return m
}()

// compressedEscape signals that the two bytes following it carry the
// full 16-bit protocol type rather than a compressed code.
const compressedEscape byte = 0xFF

// compressedCode returns the one-octet compressed code for pt and
// whether pt has one.
func compressedCode(pt ProtocolType) (byte, bool) {
	code, ok := compressedPType[pt]
	return code, ok
}

// Kind distinguishes the four PPDU fragment shapes (S/E bit pairs).
type Kind uint8

const (
	// Complete carries an entire ALPDU in a single PPDU (S=1, E=1).
	Complete Kind = iota
	// Start opens a fragmented ALPDU (S=1, E=0).
	Start
	// Cont continues a fragmented ALPDU (S=0, E=0).
	Cont
	// End closes a fragmented ALPDU (S=0, E=1), carrying the trailer.
	End
)

func (k Kind) String() string {
	switch k {
	case Complete:
		return "COMPLETE"
	case Start:
		return "START"
	case Cont:
		return "CONT"
	case End:
		return "END"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Label type values for the LT_T_FID field on COMPLETE/START headers.
const (
	ltProtoSignal        byte = 0x2
	ltImplicitProtoType  byte = 0x1
	ltProtoTypeNoSupp    byte = 0x0
	ltExtensionSupported byte = 0x3
)

// Protocol-type-suppression flag values packed alongside the label type.
const (
	ptypeSupp   byte = 0x1
	ptypeNoSupp byte = 0x0
)

// FragID is the 3-bit fragment ID multiplexing concurrent ALPDU flows.
type FragID uint8

// Sizing constants from spec.md §6.
const (
	// MaxPDUSize bounds the SDU accepted by the Encapsulation Engine.
	MaxPDUSize = 4095
	// MaxFragNumber is the number of concurrent fragment IDs.
	MaxFragNumber = 8
	// MaxFragID is the largest legal fragment ID.
	MaxFragID FragID = MaxFragNumber - 1

	headerSize        = 2
	ptypeCompressed1B = 1
	ptypeCompressed3B = 1 + 2
	ptypeUncompressed = 2
	trailerSeqSize    = 1
	trailerCRCSize    = 4
)

// Config is the immutable per-instance configuration shared by
// Transmitter and Receiver.
type Config struct {
	ImplicitProtoType ProtocolType
	UseAlpduCRC       bool
	UseCompressedPType bool
	UsePTypeOmission   bool
}

// Validate rejects the one configuration the protocol does not
// support: the VLAN-without-ptype implicit default.
func (c Config) Validate() error {
	if c.ImplicitProtoType == protoTypeVLANNoSupp {
		return &Error{Kind: ConfigRejected, msg: "implicit protocol type 0x31 (VLAN without ptype) is not supported"}
	}
	return nil
}

// omissible reports whether pt can be left off the wire under c.
func omissible(pt ProtocolType, c Config) bool {
	if pt == ProtoTypeUncompSignal {
		return true
	}
	return c.UsePTypeOmission && pt == c.ImplicitProtoType
}
