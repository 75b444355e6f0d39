package rle

// Receiver is the receive-side public facade from spec.md §6: one
// instance owns the 8 fragment contexts for a single RLE-encapsulated
// link in one direction.
type Receiver struct {
	conf Config
	mgr  *contextManager
}

// NewReceiver validates conf and allocates a Receiver with all 8
// fragment contexts free.
func NewReceiver(conf Config) (*Receiver, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Receiver{conf: conf, mgr: newRxContextManager()}, nil
}

// Deencapsulate runs the Reassembly Engine against one received PPDU.
// It returns a non-nil *SDU once a COMPLETE or END PPDU finishes an
// ALPDU, (nil, nil) once a START or CONT PPDU is accepted but more
// fragments are still expected, and a non-nil error for any rejected
// PPDU.
func (r *Receiver) Deencapsulate(ppdu []byte) (*SDU, error) {
	return deencapsulate(r.mgr, r.conf, ppdu)
}

// ReleaseContext cancels any in-flight ALPDU held under id and returns
// the context to free, per spec.md §5's release_context operation. A
// caller may invoke this at any time, including mid-reassembly; the
// undelivered bytes are accounted as dropped. A no-op if id is already free.
func (r *Receiver) ReleaseContext(id FragID) {
	r.mgr.get(id).cancel()
}

// Stats returns the cumulative counters for a single fragment context.
func (r *Receiver) Stats(id FragID) LinkStatus {
	return r.mgr.get(id).Stats()
}

// ResetStats zeroes the counters for a single fragment context.
func (r *Receiver) ResetStats(id FragID) {
	r.mgr.get(id).ResetStats()
}

// StatsSnapshot returns every context's counters indexed by fragment ID.
func (r *Receiver) StatsSnapshot() [MaxFragNumber]LinkStatus {
	return r.mgr.snapshot()
}
