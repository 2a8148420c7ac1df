package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/toolkits/pkg/logger"

	"sharedptr/shared"
)

// Producer publishes journal payloads with kafka-go.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// NewShared returns a producer owned by a handle. The writer is closed
// when the last owner releases it.
func NewShared(brokers []string, topic string) *shared.Handle[Producer] {
	return shared.NewWithDeleter(NewProducer(brokers, topic), shared.Closer[Producer](func(err error) {
		logger.Warningf("[kafka] %v", err)
	}))
}

func (p *Producer) Publish(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	return errors.Wrapf(err, "write to %s", p.writer.Topic)
}

func (p *Producer) Topic() string {
	return p.writer.Topic
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
