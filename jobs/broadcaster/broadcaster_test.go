package broadcaster

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharedptr/infra/journal"
	"sharedptr/shared"
)

func openJournal(t *testing.T, events int) *journal.Journal {
	t.Helper()
	j, err := journal.Open(journal.Config{Dir: "journal", InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	for i := 0; i < events; i++ {
		_, err := j.Append(journal.Event{Type: "*int", Label: "test", ReleasedAt: time.Now()})
		require.NoError(t, err)
	}
	return j
}

func state(t *testing.T, j *journal.Journal, seq uint64) journal.State {
	t.Helper()
	rec, err := j.Get(seq)
	require.NoError(t, err)
	return rec.State
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	fail error
}

func (p *recordingPublisher) Publish(_ context.Context, key, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.keys = append(p.keys, string(key))
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func TestReplayOnce_Sarama(t *testing.T) {
	j := openJournal(t, 2)
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndSucceed()
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	b := New(j, NewSaramaPublisher(sp, "releases"), Config{MaxRetries: 3})
	acked, err := b.ReplayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, acked)
	assert.Equal(t, journal.StateAcked, state(t, j, 1))

	rec, err := j.Get(2)
	require.NoError(t, err)
	assert.Equal(t, journal.StateNew, rec.State)
	assert.Equal(t, uint32(1), rec.Retries)

	sp.ExpectSendMessageAndSucceed()
	acked, err = b.ReplayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, acked)
	assert.Equal(t, journal.StateAcked, state(t, j, 2))

	require.NoError(t, sp.Close())
}

func TestReplayOnce_GivesUpAfterMaxRetries(t *testing.T) {
	j := openJournal(t, 1)
	pub := &recordingPublisher{fail: errors.New("unreachable")}
	b := New(j, pub, Config{MaxRetries: 2})

	for i := 0; i < 3; i++ {
		acked, err := b.ReplayOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, acked)
	}
	assert.Equal(t, journal.StateFailed, state(t, j, 1))
}

func TestRequeueSent(t *testing.T) {
	j := openJournal(t, 2)
	require.NoError(t, j.MarkSent(1))

	pub := &recordingPublisher{}
	b := New(j, pub, Config{})
	n, err := b.RequeueSent()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	acked, err := b.ReplayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	assert.Equal(t, []string{"1", "2"}, pub.published())
}

func TestRun_PublishesUntilCancelled(t *testing.T) {
	j := openJournal(t, 3)
	pub := &recordingPublisher{}
	b := New(j, pub, Config{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(pub.published()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// countingProducer counts Close calls on top of a mock producer.
type countingProducer struct {
	sarama.SyncProducer
	closed int
}

func (p *countingProducer) Close() error {
	p.closed++
	return p.SyncProducer.Close()
}

func TestSaramaPublisher_SharedClose(t *testing.T) {
	sp := &countingProducer{SyncProducer: mocks.NewSyncProducer(t, nil)}
	h := shared.NewWithDeleter(NewSaramaPublisher(sp, "releases"), shared.Closer[SaramaPublisher](func(err error) {
		t.Errorf("unexpected close error: %v", err)
	}))
	c := h.Clone()

	h.Release()
	assert.Zero(t, sp.closed, "clone still owns the producer")
	c.Release()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 1, sp.closed)
}
