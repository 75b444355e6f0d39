package rle

// SDU is a fully reassembled payload handed back to the caller of
// Deencapsulate, paired with the protocol type it was submitted under.
type SDU struct {
	ProtoType ProtocolType
	Bytes     []byte
}

// deencapsulate is the Reassembly Engine's single entry point from
// spec.md §4.6. It returns (sdu, nil) once a COMPLETE or END PPDU
// finishes an ALPDU, (nil, nil) once a START or CONT PPDU has been
// accepted but the ALPDU is not yet whole, and a non-nil error for any
// rejected PPDU.
func deencapsulate(mgr *contextManager, conf Config, ppdu []byte) (*SDU, error) {
	if len(ppdu) > MaxPDUSize {
		return nil, newError(MalformedHeader, "PPDU exceeds RLE_MAX_PDU_SIZE")
	}

	hdr, err := DecodeHeader(ppdu)
	if err != nil {
		return nil, err
	}
	body := ppdu[headerSize:]

	switch hdr.Kind {
	case Complete:
		return deencapsulateComplete(mgr, conf, hdr, body)
	case Start:
		return deencapsulateStart(mgr, conf, hdr, body)
	case Cont:
		return deencapsulateCont(mgr, hdr, body)
	default:
		return deencapsulateEnd(mgr, hdr, body)
	}
}

func deencapsulateComplete(mgr *contextManager, conf Config, hdr Header, body []byte) (*SDU, error) {
	ctx, err := mgr.allocate()
	if err != nil {
		return nil, err
	}
	if len(body) != int(hdr.Length) {
		return nil, dropBytes(ctx, MalformedHeader, len(body), "COMPLETE Length does not match the PPDU body")
	}
	pt, consumed, err := decodePType(body, hdr.LabelType, hdr.PTypeSupp, conf)
	if err != nil {
		return nil, dropBytes(ctx, MalformedHeader, len(body), "could not decode protocol-type header: "+err.Error())
	}
	sdu := body[consumed:]

	ctx.linkStatus.CounterIn++
	ctx.linkStatus.CounterBytesIn += uint64(len(sdu))
	ctx.linkStatus.CounterOK++
	ctx.linkStatus.CounterBytesOK += uint64(len(sdu))
	ctx.fragmentCounter = 1
	ctx.totalFragments = 1
	ctx.release()
	return &SDU{ProtoType: pt, Bytes: sdu}, nil
}

func deencapsulateStart(mgr *contextManager, conf Config, hdr Header, body []byte) (*SDU, error) {
	ctx, err := mgr.allocate()
	if err != nil {
		return nil, err
	}
	pt, consumed, err := decodePType(body, hdr.LabelType, hdr.PTypeSupp, conf)
	if err != nil {
		return nil, dropBytes(ctx, MalformedHeader, len(body), "could not decode protocol-type header: "+err.Error())
	}
	expectedTotal := int(hdr.Length)
	if expectedTotal < consumed {
		return nil, dropBytes(ctx, MalformedHeader, len(body), "START Length shorter than its own protocol-type header")
	}

	ctx.linkStatus.CounterIn++
	ctx.alpduLength = uint32(expectedTotal)
	ctx.remainingAlpduLength = uint32(expectedTotal)
	ctx.pduLength = uint32(expectedTotal - consumed)
	ctx.remainingPduLength = ctx.pduLength
	ctx.protoType = pt
	ctx.labelType = hdr.LabelType
	ctx.ptypeSuppFlag = hdr.PTypeSupp
	ctx.ptypeHeaderLen = consumed
	ctx.useCRC = conf.UseAlpduCRC
	ctx.isFragmented = true
	ctx.fragmentCounter = 1

	ctx.rbuf.begin(expectedTotal, consumed, pt, conf.UseAlpduCRC)
	if err := ctx.rbuf.accept(body); err != nil {
		return nil, dropAndCount(ctx, MalformedHeader, "START payload overruns its own declared Length", true)
	}
	ctx.remainingAlpduLength = uint32(expectedTotal - len(body))
	ctx.remainingPduLength = ctx.remainingAlpduLength
	return nil, nil
}

func deencapsulateCont(mgr *contextManager, hdr Header, body []byte) (*SDU, error) {
	if mgr.isFree(hdr.FragID) {
		mgr.get(hdr.FragID).linkStatus.CounterDropped++
		return nil, newError(InvalidTransition, "CONT PPDU for an unallocated fragment ID")
	}
	ctx := mgr.get(hdr.FragID)
	if len(body) != int(hdr.Length) {
		return nil, dropAndCount(ctx, MalformedHeader, "CONT Length does not match the PPDU body", true)
	}
	if err := ctx.rbuf.accept(body); err != nil {
		return nil, dropAndCount(ctx, MalformedHeader, "CONT payload overruns expected_total_length", true)
	}
	ctx.remainingAlpduLength = uint32(ctx.rbuf.expectedTotalLength - ctx.rbuf.receivedLength)
	ctx.remainingPduLength = ctx.remainingAlpduLength
	ctx.fragmentCounter++
	return nil, nil
}

func deencapsulateEnd(mgr *contextManager, hdr Header, body []byte) (*SDU, error) {
	if mgr.isFree(hdr.FragID) {
		mgr.get(hdr.FragID).linkStatus.CounterDropped++
		return nil, newError(InvalidTransition, "END PPDU for an unallocated fragment ID")
	}
	ctx := mgr.get(hdr.FragID)

	trailerLen := trailerSize(ctx.useCRC)
	if len(body) < trailerLen {
		return nil, dropAndCount(ctx, MalformedHeader, "END PPDU shorter than its trailer", true)
	}
	payload := body[:len(body)-trailerLen]
	trailer := body[len(body)-trailerLen:]
	if len(payload) != int(hdr.Length) {
		return nil, dropAndCount(ctx, MalformedHeader, "END Length does not match the PPDU payload", true)
	}
	if err := ctx.rbuf.accept(payload); err != nil {
		return nil, dropAndCount(ctx, MalformedHeader, "END payload overruns expected_total_length", true)
	}
	if !ctx.rbuf.complete() {
		return nil, dropAndCount(ctx, MalformedHeader, "END arrived before expected_total_length was reached", true)
	}

	pt, sdu, err := ctx.rbuf.finalizeAndExtract(trailer, ctx.nextSeqNb)
	if err != nil {
		kind := TrailerMismatch
		if e, ok := err.(*Error); ok {
			kind = e.Kind
		}
		return nil, dropAndCount(ctx, kind, err.Error(), true)
	}

	ctx.nextSeqNb++
	ctx.fragmentCounter++
	ctx.totalFragments = ctx.fragmentCounter
	ctx.linkStatus.CounterOK++
	ctx.linkStatus.CounterBytesOK += uint64(len(sdu))
	ctx.release()
	return &SDU{ProtoType: pt, Bytes: sdu}, nil
}
