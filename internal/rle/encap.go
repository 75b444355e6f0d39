package rle

// encapsulate is the Encapsulation Engine's single entry point from
// spec.md §4.4. ctx must already be allocated (busy) by the caller's
// contextManager; on any error ctx is released back to free as part
// of the drop protocol.
func encapsulate(ctx *Context, conf Config, sdu []byte, ptype ProtocolType) error {
	ctx.linkStatus.CounterIn++
	ctx.linkStatus.CounterBytesIn += uint64(len(sdu))

	if len(sdu) > MaxPDUSize {
		return dropBytes(ctx, SduTooLarge, len(sdu), "SDU exceeds RLE_MAX_PDU_SIZE")
	}

	hdrBytes, labelType, suppFlag := decidePType(ptype, conf)

	if err := ctx.fbuf.stage(sdu, hdrBytes); err != nil {
		return dropBytes(ctx, SduTooLarge, len(sdu), "protocol-type header plus SDU exceeds the maximum ALPDU size")
	}

	ctx.isFragmented = false
	ctx.useCRC = conf.UseAlpduCRC
	ctx.protoType = ptype
	ctx.labelType = labelType
	ctx.ptypeSuppFlag = suppFlag
	ctx.ptypeHeaderLen = len(hdrBytes)
	ctx.pduLength = uint32(len(sdu))
	ctx.remainingPduLength = ctx.pduLength
	ctx.alpduLength = uint32(len(hdrBytes) + len(sdu))
	ctx.remainingAlpduLength = ctx.alpduLength
	ctx.fragmentCounter = 0
	ctx.totalFragments = 0
	ctx.qosTag = 0

	return nil
}
