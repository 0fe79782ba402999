package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// LocalPublisher 进程内同步分发事件，Kafka 未启用时由 serve 使用
// 处理函数出错只记录日志，不向发布方返回
type LocalPublisher struct {
	handlers []Handler
	logger   *zap.Logger
	closed   atomic.Bool
}

// NewLocalPublisher 创建进程内发布者
func NewLocalPublisher(logger *zap.Logger, handlers ...Handler) *LocalPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalPublisher{
		handlers: handlers,
		logger:   logger.Named("local_publisher"),
	}
}

// Publish 依次调用每个处理函数
func (p *LocalPublisher) Publish(ctx context.Context, events ...*DomainEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	for _, evt := range events {
		status := "success"
		for _, h := range p.handlers {
			if err := h(ctx, evt); err != nil {
				status = "error"
				p.logger.Warn("local handler failed",
					zap.String("type", string(evt.Type)),
					zap.String("event_id", evt.ID),
					zap.Error(err),
				)
			}
		}
		eventsPublished.WithLabelValues(string(evt.Type), "local").Inc()
		eventsConsumed.WithLabelValues(string(evt.Type), status).Inc()
	}
	return nil
}

// Close 关闭发布者
func (p *LocalPublisher) Close() error {
	p.closed.Store(true)
	return nil
}
