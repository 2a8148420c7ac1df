package journal

import (
	"fmt"
	"time"

	"github.com/toolkits/pkg/logger"

	"sharedptr/shared"
)

// Recorder is a deleter that appends a release event for every value it
// destroys. It holds its own reference to the journal, so the journal
// stays open until the recorder is released.
type Recorder[T any] struct {
	jh    *shared.Handle[Journal]
	label string
	next  shared.Deleter[T]
}

// Recording wraps next (nil means shared.DefaultDeleter) so that every
// release it performs is appended to the journal held by jh under label.
// A failed append is logged; the release itself always happens.
// Call Release on the recorder once no handle uses it any more.
func Recording[T any](jh *shared.Handle[Journal], label string, next shared.Deleter[T]) *Recorder[T] {
	if next == nil {
		next = shared.DefaultDeleter[T]{}
	}
	return &Recorder[T]{jh: jh.Clone(), label: label, next: next}
}

func (r *Recorder[T]) Delete(p *T) {
	typ := fmt.Sprintf("%T", p)
	r.next.Delete(p)

	j, err := r.jh.Deref()
	if err != nil {
		logger.Warningf("[journal] release of %s (%s) after recorder release", typ, r.label)
		return
	}
	seq, err := j.Append(Event{Type: typ, Label: r.label, ReleasedAt: time.Now()})
	if err != nil {
		logger.Warningf("[journal] record release of %s (%s): %v", typ, r.label, err)
		return
	}
	logger.Debugf("[journal] release %s (%s) seq=%d", typ, r.label, seq)
}

// Release drops the recorder's journal reference. Later deletes still
// run the wrapped deleter but are not journaled.
func (r *Recorder[T]) Release() {
	r.jh.Release()
}
