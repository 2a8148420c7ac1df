package sequence

import "sync/atomic"

// Sequencer hands out strictly increasing journal sequence numbers.
// The first number issued is start+1.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer that continues after start.
// On an empty journal start = 0; on reopen start = the journal's last seq.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Resume moves the sequencer forward to v if it is behind. Numbers are
// never reissued.
func (s *Sequencer) Resume(v uint64) {
	for {
		cur := s.next.Load()
		if cur >= v || s.next.CompareAndSwap(cur, v) {
			return
		}
	}
}
