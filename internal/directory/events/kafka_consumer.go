package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// fetchRetryDelay is the pause after a failed fetch.
var fetchRetryDelay = time.Second

// KafkaReader is the subset of *kafka.Reader used by the Consumer.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer listens for catalog refresh notifications. The message body is
// not inspected: every message means the companies table changed.
type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler func(context.Context, kafka.Message) error
	done    chan struct{}
}

// NewConsumer creates a consumer of the refresh topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), logger)
}

func newConsumer(reader KafkaReader, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		logger: logger.Named("kafka_consumer"),
		done:   make(chan struct{}),
	}
}

// Start consumes messages until ctx is cancelled or the reader is closed.
// Messages are committed only after the handler succeeds.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) {
					c.logger.Info("Kafka reader closed, stopping consumer")
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(fetchRetryDelay):
				}
				continue
			}

			if c.handler != nil {
				if err := c.handler(ctx, msg); err != nil {
					c.logger.Error("Failed to handle refresh",
						zap.Error(err),
						zap.Int64("offset", msg.Offset),
					)
					continue
				}
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("Failed to commit message",
					zap.Error(err),
					zap.Int64("offset", msg.Offset),
				)
			}
		}
	}()
}

// RegisterHandler sets the function invoked for each message. It must be
// called before Start.
func (c *Consumer) RegisterHandler(fn func(context.Context, kafka.Message) error) {
	c.handler = fn
}

// Done is closed once the consume loop has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
