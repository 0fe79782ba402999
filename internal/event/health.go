package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BrokerChecker 检查 Kafka broker 连通性，至少一个 broker 可用即视为健康
type BrokerChecker struct {
	brokers []string
	timeout time.Duration
	dial    func(ctx context.Context, addr string) error
	logger  *zap.Logger
}

// NewBrokerChecker 创建 broker 健康检查器
func NewBrokerChecker(brokers []string, timeout time.Duration, logger *zap.Logger) *BrokerChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &BrokerChecker{
		brokers: brokers,
		timeout: timeout,
		logger:  logger.Named("kafka_health"),
	}
	c.dial = c.dialBroker
	return c
}

// Name 实现健康检查接口
func (c *BrokerChecker) Name() string {
	return "kafka"
}

// Check 并发探测全部 broker
func (c *BrokerChecker) Check(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return errors.New("no brokers configured")
	}

	var wg sync.WaitGroup
	errs := make([]error, len(c.brokers))
	for i, addr := range c.brokers {
		wg.Add(1)
		go func(idx int, addr string) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			errs[idx] = c.dial(checkCtx, addr)
		}(i, addr)
	}
	wg.Wait()

	var failed []string
	for i, err := range errs {
		if err == nil {
			return nil
		}
		c.logger.Debug("broker health check failed", zap.String("broker", c.brokers[i]), zap.Error(err))
		failed = append(failed, fmt.Sprintf("%s: %v", c.brokers[i], err))
	}
	return fmt.Errorf("no healthy brokers available (%s)", strings.Join(failed, "; "))
}

func (c *BrokerChecker) dialBroker(ctx context.Context, addr string) error {
	dialer := &kafka.Dialer{Timeout: c.timeout, DualStack: true}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return fmt.Errorf("failed to get broker info: %w", err)
	}
	return nil
}
