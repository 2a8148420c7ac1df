package journal

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"

	"sharedptr/infra/sequence"
)

var ErrNotFound = errors.New("journal: record not found")

// Config defines where a journal lives.
type Config struct {
	Dir string
	// InMemory keeps the database in a pebble memory filesystem.
	InMemory bool
}

// Journal may be used from several goroutines. State transitions are
// serialized by mu since each one reads a record before rewriting it.
type Journal struct {
	db  *pebble.DB
	seq *sequence.Sequencer
	mu  sync.Mutex
}

func Open(cfg Config) (*Journal, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./journal"
	}
	opts := &pebble.Options{}
	if cfg.InMemory {
		opts.FS = vfs.NewMem()
	}

	db, err := pebble.Open(cfg.Dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", cfg.Dir)
	}
	j := &Journal{db: db, seq: sequence.New(0)}

	last, err := j.LastSeq()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j.seq.Resume(last)
	logger.Debugf("[journal] opened %s at seq=%d", cfg.Dir, j.seq.Current())
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// -------------------- API --------------------

// Append stores ev as a NEW record and returns its sequence number.
func (j *Journal) Append(ev Event) (uint64, error) {
	payload, err := EncodeEvent(ev)
	if err != nil {
		return 0, err
	}
	seq := j.seq.Next()
	rec := Record{Seq: seq, State: StateNew, Payload: payload}
	if err := j.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync); err != nil {
		return 0, errors.Wrapf(err, "append record %d", seq)
	}
	return seq, nil
}

// Get returns the current record for seq.
func (j *Journal) Get(seq uint64) (Record, error) {
	val, closer, err := j.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return Record{}, errors.Wrapf(err, "get record %d", seq)
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

func (j *Journal) MarkSent(seq uint64) error {
	return j.update(seq, func(r *Record) { r.State = StateSent })
}

func (j *Journal) MarkAcked(seq uint64) error {
	return j.update(seq, func(r *Record) { r.State = StateAcked })
}

// Requeue puts a record back to NEW, for deliveries interrupted between
// SENT and ACKED.
func (j *Journal) Requeue(seq uint64) error {
	return j.update(seq, func(r *Record) { r.State = StateNew })
}

// MarkFailed records a failed delivery attempt. The record goes back to
// NEW so the next pass retries it, until maxRetries is reached.
func (j *Journal) MarkFailed(seq uint64, maxRetries uint32) error {
	return j.update(seq, func(r *Record) {
		r.Retries++
		r.State = StateNew
		if r.Retries >= maxRetries {
			r.State = StateFailed
		}
	})
}

// Delete removes a record (cleanup after ACK).
func (j *Journal) Delete(seq uint64) error {
	return j.db.Delete(keyFor(seq), pebble.Sync)
}

func (j *Journal) update(seq uint64, fn func(*Record)) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec, err := j.Get(seq)
	if err != nil {
		return err
	}
	fn(&rec)
	rec.LastAttempt = time.Now().UnixNano()
	if err := j.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync); err != nil {
		return errors.Wrapf(err, "update record %d", seq)
	}
	return nil
}

// -------------------- Scan --------------------

// ScanByState iterates all records in the given state, oldest first.
// This is used by the broadcaster.
func (j *Journal) ScanByState(state State, fn func(Record) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// LastSeq returns the highest sequence stored, or 0 for an empty journal.
func (j *Journal) LastSeq() (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	return parseKey(iter.Key())
}

// -------------------- Helpers --------------------

const keyPrefix = "release/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf(keyPrefix+"%020d", seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	if err != nil {
		return 0, errors.Wrapf(err, "parse key %q", b)
	}
	return seq, nil
}
