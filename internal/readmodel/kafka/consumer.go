package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/globalbank/bookentry/internal/models/stream"
	"github.com/globalbank/bookentry/internal/readmodel"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads the account event topic and feeds the projector.
// Offsets are committed only after a successful apply, which, combined
// with the store's idempotent writes, gives effective at-least-once
// projection.
type Consumer struct {
	reader    *kafka.Reader
	projector *readmodel.Projector
	logger    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, projector *readmodel.Projector, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		projector: projector,
		logger:    logger,
	}
}

// Run consumes until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var env stream.Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Error("decoding event message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			// A malformed message can never succeed; skip past it.
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := c.projector.Apply(ctx, env); err != nil {
			c.logger.Error("applying event, will redeliver",
				zap.String("event_type", env.EventType),
				zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
