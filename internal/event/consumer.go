package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler 事件处理函数
type Handler func(ctx context.Context, evt *DomainEvent) error

// messageReader kafka.Reader 的最小接口
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MaxWait        time.Duration
	CommitInterval time.Duration
}

// Consumer 消费领域事件并调用处理函数
type Consumer struct {
	reader messageReader
	topic  string
	logger *zap.Logger
}

// NewConsumer 创建 Kafka 消费者
func NewConsumer(cfg ConsumerConfig, logger *zap.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers list cannot be empty")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("group_id cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	logger = logger.Named("event_consumer")

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		StartOffset:    kafka.LastOffset,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...), zap.String("component", "kafka-consumer"))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...), zap.String("component", "kafka-consumer"))
		}),
	})

	return newConsumer(reader, cfg.Topic, logger), nil
}

func newConsumer(reader messageReader, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, topic: topic, logger: logger}
}

// Run 阻塞消费直到 ctx 取消
// 处理成功或无法解析的消息会提交偏移量，处理失败的消息不提交
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	c.logger.Info("starting event consumer", zap.String("topic", c.topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		evt, err := c.decode(msg)
		if err != nil {
			c.logger.Error("failed to deserialize message",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
			eventsConsumed.WithLabelValues("unknown", "invalid").Inc()
			c.commit(ctx, msg)
			continue
		}

		if err := handler(ctx, evt); err != nil {
			c.logger.Error("handler failed",
				zap.Error(err),
				zap.String("type", string(evt.Type)),
				zap.String("event_id", evt.ID),
			)
			eventsConsumed.WithLabelValues(string(evt.Type), "error").Inc()
			// 不重试：reader 已越过该消息，下一次成功提交会覆盖其 offset
			continue
		}

		eventsConsumed.WithLabelValues(string(evt.Type), "success").Inc()
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.Error("failed to commit message", zap.Error(&KafkaError{Op: "commit", Topic: c.topic, Err: err}))
	}
}

// decode 解析 Kafka 消息
func (c *Consumer) decode(msg kafka.Message) (*DomainEvent, error) {
	var evt DomainEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserializeFailed, err)
	}
	if evt.Type == "" {
		// 兼容只在消息头携带类型的生产者
		evt.Type = Type(ParseHeaders(msg.Headers).EventType)
	}
	evt.kafkaMsg = &msg
	return &evt, nil
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("close reader: %w", err)
	}
	c.logger.Info("event consumer closed")
	return nil
}
