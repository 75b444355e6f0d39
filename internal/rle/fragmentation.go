package rle

// Fragment is one PPDU produced by the Fragmentation Engine: the kind
// decided by the fragment buffer and the complete wire bytes ready to
// hand to a Link.
type Fragment struct {
	Kind  Kind
	Bytes []byte
}

// buildFragment is the Fragmentation Engine's single entry point from
// spec.md §4.5. ctx must already hold a staged ALPDU (encapsulate has
// run). It asks the fragment buffer to decide the next PPDU's kind and
// payload for the given burst capacity, composes the wire header
// (and, on END, the trailer), and advances ctx's bookkeeping.
//
// NoDataPending is returned, not as a failure but as the Err(kind)
// spec.md §4.7 requires every engine entry point to be able to return,
// when ctx holds no outstanding submission at all.
func buildFragment(ctx *Context, capacity int) (Fragment, error) {
	if !ctx.busy {
		return Fragment{}, newError(NoDataPending, "no ALPDU staged for this context")
	}

	kind, payload, err := ctx.fbuf.emit(capacity, ctx.useCRC)
	if err != nil {
		return Fragment{}, err
	}

	var hdr []byte
	switch kind {
	case Complete:
		hdr = EncodeHeader(Header{Kind: Complete, Length: uint16(ctx.alpduLength), LabelType: ctx.labelType, PTypeSupp: ctx.ptypeSuppFlag})
	case Start:
		hdr = EncodeHeader(Header{Kind: Start, Length: uint16(ctx.alpduLength), LabelType: ctx.labelType, PTypeSupp: ctx.ptypeSuppFlag})
		ctx.isFragmented = true
	case Cont:
		hdr = EncodeHeader(Header{Kind: Cont, Length: uint16(len(payload)), FragID: ctx.fragID})
		ctx.isFragmented = true
	case End:
		hdr = EncodeHeader(Header{Kind: End, Length: uint16(len(payload)), FragID: ctx.fragID})
	}

	var trailer []byte
	if kind == End {
		if ctx.useCRC {
			trailer = EncodeCRCTrailer(alpduCRC(ctx.fbuf.fullALPDU()))
		} else {
			trailer = EncodeSeqTrailer(ctx.nextSeqNb)
		}
	}

	out := make([]byte, 0, len(hdr)+len(payload)+len(trailer))
	out = append(out, hdr...)
	out = append(out, payload...)
	out = append(out, trailer...)

	ctx.fragmentCounter++
	ctx.remainingAlpduLength = uint32(ctx.fbuf.remainingAlpduLength())
	emittedTotal := ctx.alpduLength - ctx.remainingAlpduLength
	var emittedSdu uint32
	if emittedTotal > uint32(ctx.ptypeHeaderLen) {
		emittedSdu = emittedTotal - uint32(ctx.ptypeHeaderLen)
	}
	ctx.remainingPduLength = ctx.pduLength - emittedSdu

	switch kind {
	case Complete:
		ctx.totalFragments = ctx.fragmentCounter
		ctx.linkStatus.CounterOK++
		ctx.linkStatus.CounterBytesOK += uint64(ctx.pduLength)
		ctx.release()
	case End:
		ctx.totalFragments = ctx.fragmentCounter
		ctx.nextSeqNb++
		ctx.linkStatus.CounterOK++
		ctx.linkStatus.CounterBytesOK += uint64(ctx.pduLength)
		ctx.release()
	}

	return Fragment{Kind: kind, Bytes: out}, nil
}
