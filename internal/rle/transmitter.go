package rle

// Transmitter is the transmit-side public facade from spec.md §6: one
// instance owns the 8 fragment contexts for a single RLE-encapsulated
// link in one direction.
type Transmitter struct {
	conf Config
	mgr  *contextManager
}

// NewTransmitter validates conf and allocates a Transmitter with all 8
// fragment contexts free.
func NewTransmitter(conf Config) (*Transmitter, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Transmitter{conf: conf, mgr: newTxContextManager()}, nil
}

// Submit runs the Encapsulation Engine against sdu under ptype,
// allocating a fresh fragment context and returning its ID. The
// caller drives that context to completion with repeated calls to
// BuildFragment before submitting anything else under the same ID.
func (t *Transmitter) Submit(sdu []byte, ptype ProtocolType) (FragID, error) {
	ctx, err := t.mgr.allocate()
	if err != nil {
		return 0, err
	}
	if err := encapsulate(ctx, t.conf, sdu, ptype); err != nil {
		return 0, err
	}
	return ctx.fragID, nil
}

// BuildFragment runs the Fragmentation Engine for the context
// previously returned by Submit, producing the next PPDU sized to fit
// within capacity bytes.
func (t *Transmitter) BuildFragment(id FragID, capacity int) (Fragment, error) {
	return buildFragment(t.mgr.get(id), capacity)
}

// ReleaseContext cancels any in-flight ALPDU held under id and returns
// the context to free, per spec.md §5's release_context operation. A
// caller may invoke this at any time, including mid-fragmentation; the
// discarded bytes are accounted as dropped. A no-op if id is already free.
func (t *Transmitter) ReleaseContext(id FragID) {
	t.mgr.get(id).cancel()
}

// Stats returns the cumulative counters for a single fragment context.
func (t *Transmitter) Stats(id FragID) LinkStatus {
	return t.mgr.get(id).Stats()
}

// ResetStats zeroes the counters for a single fragment context.
func (t *Transmitter) ResetStats(id FragID) {
	t.mgr.get(id).ResetStats()
}

// StatsSnapshot returns every context's counters indexed by fragment ID.
func (t *Transmitter) StatsSnapshot() [MaxFragNumber]LinkStatus {
	return t.mgr.snapshot()
}
