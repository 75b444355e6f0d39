package rle

import "hash/crc32"

// crcTable is the IEEE 802.3 polynomial (0x04C11DB7, reflected),
// exactly what spec.md §6 specifies for the CRC-32 trailer: initial
// value 0xFFFFFFFF, reflected in/out, final XOR 0xFFFFFFFF. That is
// precisely hash/crc32's IEEE table and checksum function; no
// third-party CRC implementation in the retrieval pack offers
// anything the standard library doesn't already provide bit-exactly
// here, so this is the one place the core reaches for stdlib instead
// of a pack dependency.
var crcTable = crc32.MakeTable(crc32.IEEE)

// alpduCRC computes the ALPDU trailer CRC over data (the reconstructed
// ALPDU, header through payload, excluding the trailer itself).
func alpduCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}
