package rle

// LinkStatus is the statistics surface from spec.md §3/§6: seven
// monotonic 64-bit counters, read-only to callers and resettable per
// context.
type LinkStatus struct {
	CounterIn           uint64
	CounterOK           uint64
	CounterDropped      uint64
	CounterLost         uint64
	CounterBytesIn      uint64
	CounterBytesOK      uint64
	CounterBytesDropped uint64
}

// reset zeroes every counter.
func (s *LinkStatus) reset() {
	*s = LinkStatus{}
}
