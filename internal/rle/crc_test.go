package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlpduCRCKnownVector(t *testing.T) {
	// CRC-32/ISO-HDLC ("123456789") == 0xCBF43926, the standard check
	// value for this exact polynomial/init/reflect/xorout combination.
	got := alpduCRC([]byte("123456789"))
	assert.Equal(t, uint32(0xCBF43926), got)
}

func TestAlpduCRCEmpty(t *testing.T) {
	assert.Equal(t, uint32(0), alpduCRC(nil))
}

func TestAlpduCRCDiffersOnSingleBitFlip(t *testing.T) {
	a := []byte{0x01, 0x02, 0x03, 0x04}
	b := []byte{0x01, 0x02, 0x03, 0x05}
	assert.NotEqual(t, alpduCRC(a), alpduCRC(b))
}
