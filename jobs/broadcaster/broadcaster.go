package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/toolkits/pkg/logger"

	"sharedptr/infra/journal"
)

// Publisher delivers one journal payload. infra/kafka.Producer and
// SaramaPublisher both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
}

// Broadcaster ships NEW journal records to a Publisher.
type Broadcaster struct {
	journal    *journal.Journal
	pub        Publisher
	interval   time.Duration
	maxRetries uint32
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(j *journal.Journal, pub Publisher, cfg Config) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	return &Broadcaster{
		journal:    j,
		pub:        pub,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run replays the journal every interval until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	logger.Infof("[broadcaster] started, interval=%s", b.interval)
	defer logger.Infof("[broadcaster] stopped")

	if n, err := b.RequeueSent(); err != nil {
		logger.Errorf("[broadcaster] requeue: %v", err)
	} else if n > 0 {
		logger.Infof("[broadcaster] requeued %d interrupted records", n)
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.ReplayOnce(ctx); err != nil {
				logger.Errorf("[broadcaster] replay: %v", err)
			}
		}
	}
}

// ------------------------------------------------
// REPLAY
// ------------------------------------------------

// ReplayOnce publishes every NEW record once and returns how many were
// acknowledged. Publish failures are recorded on the record and retried
// on a later pass; only journal errors are returned.
func (b *Broadcaster) ReplayOnce(ctx context.Context) (int, error) {
	acked := 0
	err := b.journal.ScanByState(journal.StateNew, func(rec journal.Record) error {
		if err := b.journal.MarkSent(rec.Seq); err != nil {
			return err
		}

		key := []byte(strconv.FormatUint(rec.Seq, 10))
		if err := b.pub.Publish(ctx, key, rec.Payload); err != nil {
			logger.Warningf("[broadcaster] publish seq=%d retries=%d: %v", rec.Seq, rec.Retries, err)
			return b.journal.MarkFailed(rec.Seq, b.maxRetries)
		}

		if err := b.journal.MarkAcked(rec.Seq); err != nil {
			return err
		}
		acked++
		return nil
	})
	return acked, err
}

// RequeueSent moves records stuck in SENT back to NEW.
func (b *Broadcaster) RequeueSent() (int, error) {
	n := 0
	err := b.journal.ScanByState(journal.StateSent, func(rec journal.Record) error {
		n++
		return b.journal.Requeue(rec.Seq)
	})
	return n, err
}
