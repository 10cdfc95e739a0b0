package kafka

import (
	"context"
	"encoding/json"

	interfaces "github.com/globalbank/bookentry/internal/interfaces"
	"github.com/globalbank/bookentry/internal/models/stream"
	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the account event topic. The
// hash balancer plus the account-number message key keeps all events of
// one account on one partition, preserving their order for consumers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, key string, event stream.Envelope) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(key),
			Value: data,
		},
	)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
