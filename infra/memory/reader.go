package memory

/*
Reader

A thin adapter over ReaderEpoch. Its only responsibility is to clearly
mark when a raw-pointer read section begins and when it ends.
Reclamation is handled by AdvanceEpochAndReclaim.
*/

type Reader struct {
	epoch *ReaderEpoch
}

func NewReader() *Reader {
	r := &Reader{epoch: &ReaderEpoch{}}
	r.epoch.Exit()
	return r
}

// Begin marks the start of a read section.
func (r *Reader) Begin() {
	r.epoch.Enter()
}

// End marks the end of a read section.
func (r *Reader) End() {
	r.epoch.Exit()
}

// Epoch exposes the underlying epoch for reclaimers.
func (r *Reader) Epoch() *ReaderEpoch {
	return r.epoch
}
