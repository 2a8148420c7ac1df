package broadcaster

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"

	"sharedptr/shared"
)

// SaramaPublisher publishes through a sarama sync producer.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

// DialSarama connects a sync producer and returns it owned by a handle;
// the producer is closed when the last owner releases it.
func DialSarama(brokers []string, topic string) (*shared.Handle[SaramaPublisher], error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create sarama producer")
	}
	return shared.NewWithDeleter(NewSaramaPublisher(producer, topic), shared.Closer[SaramaPublisher](func(err error) {
		logger.Warningf("[broadcaster] %v", err)
	})), nil
}

func (p *SaramaPublisher) Publish(_ context.Context, key, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	_, _, err := p.producer.SendMessage(msg)
	return errors.Wrapf(err, "send to %s", p.topic)
}

func (p *SaramaPublisher) Close() error {
	return p.producer.Close()
}
