package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, commitInterval time.Duration, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
			CommitInterval:    commitInterval,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeEvents decodes each message into an event and hands it to handler. Undecodable
// messages are logged and skipped; a handler error stops consumption.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, domain.Event) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		ev, ok := decodeEvent(msg, c.logger)
		if !ok {
			continue
		}
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
}

func decodeEvent(msg kafka.Message, logger *zap.Logger) (domain.Event, bool) {
	var ev domain.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		logger.Warn("skipping undecodable event",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return ev, false
	}
	return ev, true
}
