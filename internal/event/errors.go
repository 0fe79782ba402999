package event

import (
	"errors"
	"fmt"
)

var (
	// ErrPublisherClosed 发布者已关闭
	ErrPublisherClosed = errors.New("publisher is closed")
	// ErrDeserializeFailed 反序列化失败
	ErrDeserializeFailed = errors.New("deserialization failed")
)

// KafkaError 包装 Kafka 错误，提供更多上下文信息
type KafkaError struct {
	Op      string // 操作类型: produce, consume, commit
	Topic   string
	Err     error
	Retries int
}

// Error 实现 error 接口
func (e *KafkaError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("kafka %s on topic %s: %v (retries: %d)",
			e.Op, e.Topic, e.Err, e.Retries)
	}
	return fmt.Sprintf("kafka %s: %v (retries: %d)", e.Op, e.Err, e.Retries)
}

// Unwrap 返回原始错误，支持 errors.Is 和 errors.As
func (e *KafkaError) Unwrap() error {
	return e.Err
}
