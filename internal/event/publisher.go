package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, events ...*DomainEvent) error
	Close() error
}

// messageWriter kafka.Writer 的最小接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 基于 kafka-go 的发布者
type KafkaPublisher struct {
	writer     messageWriter
	topic      string
	maxRetries int
	logger     *zap.Logger
	closed     atomic.Bool
}

// NewKafkaPublisher 创建 Kafka 发布者
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	logger = logger.Named("event_publisher")

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // 按聚合 ID 哈希分区，同一聚合事件有序
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...), zap.String("component", "kafka"))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...), zap.String("component", "kafka"))
		}),
	}

	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:     writer,
		topic:      topic,
		maxRetries: 3,
		logger:     logger,
	}
}

// Publish 发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, events ...*DomainEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		value, err := json.Marshal(evt)
		if err != nil {
			p.logger.Error("failed to marshal event",
				zap.String("type", string(evt.Type)),
				zap.String("aggregate_id", evt.AggregateID),
				zap.Error(err),
			)
			continue
		}
		messages = append(messages, kafka.Message{
			Key:     []byte(evt.AggregateID),
			Value:   value,
			Headers: headersFor(evt).ToKafkaHeaders(),
		})
	}
	if len(messages) == 0 {
		return nil
	}

	err := p.writeWithRetry(ctx, messages)
	status := "success"
	if err != nil {
		status = "error"
	}
	for _, evt := range events {
		eventsPublished.WithLabelValues(string(evt.Type), status).Inc()
	}
	return err
}

// writeWithRetry 带重试的写入
func (p *KafkaPublisher) writeWithRetry(ctx context.Context, messages []kafka.Message) error {
	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt < p.maxRetries; attempt++ {
		err := p.writer.WriteMessages(ctx, messages...)
		if err == nil {
			p.logger.Debug("kafka write success",
				zap.Int("message_count", len(messages)),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		p.logger.Warn("kafka write failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", p.maxRetries),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoff):
		}

		// 指数退避，最大 2 秒
		backoff *= 2
		if backoff > 2*time.Second {
			backoff = 2 * time.Second
		}
	}

	return &KafkaError{Op: "produce", Topic: p.topic, Err: lastErr, Retries: p.maxRetries}
}

// Close 关闭发布者
func (p *KafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error("failed to close kafka writer", zap.Error(err))
		return fmt.Errorf("close kafka writer: %w", err)
	}
	p.logger.Info("kafka publisher closed")
	return nil
}

// NopPublisher 丢弃所有事件，Kafka 未启用时使用
type NopPublisher struct{}

// Publish 实现 Publisher
func (NopPublisher) Publish(ctx context.Context, events ...*DomainEvent) error { return nil }

// Close 实现 Publisher
func (NopPublisher) Close() error { return nil }

// Emit 构造并发布单个事件，失败只记录日志
// 事件是请求的旁路输出，不影响请求结果
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, eventType Type, aggregateID, tenantID string, payload interface{}) {
	if p == nil {
		return
	}
	evt, err := New(eventType, aggregateID, payload)
	if err != nil {
		logger.Warn("failed to build event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	evt.WithTenant(tenantID)
	if err := p.Publish(ctx, evt); err != nil {
		logger.Warn("failed to publish event",
			zap.String("type", string(eventType)),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err),
		)
	}
}
