package database

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	dbPoolConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "autopilot_db_pool_connections",
		Help: "Database pool connections by state (open, in_use, idle, max_open)",
	}, []string{"state"})

	dbPoolWaitCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_db_pool_wait_total",
		Help: "Total number of connections waited for",
	})

	dbPoolWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autopilot_db_pool_wait_seconds_total",
		Help: "Total time blocked waiting for a new connection",
	})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autopilot_db_query_duration_seconds",
		Help:    "Database query duration in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation"})

	dbQueryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_db_query_errors_total",
		Help: "Total number of database query errors",
	}, []string{"operation"})
)

// MetricsCollector 定期采集连接池指标
type MetricsCollector struct {
	db       *gorm.DB
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// 上次采集的累计值，用于计算增量
	lastWaitCount    int64
	lastWaitDuration time.Duration
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(db *gorm.DB, interval time.Duration) *MetricsCollector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &MetricsCollector{db: db, interval: interval, done: make(chan struct{})}
}

// Start 后台采集，直到 Stop
func (m *MetricsCollector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collect()
		for {
			select {
			case <-ticker.C:
				m.collect()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop 停止采集并等待后台协程退出
func (m *MetricsCollector) Stop() {
	m.once.Do(func() {
		if m.cancel == nil {
			return
		}
		m.cancel()
		<-m.done
	})
}

func (m *MetricsCollector) collect() {
	sqlDB, err := m.db.DB()
	if err != nil {
		return
	}
	m.observe(sqlDB.Stats())
}

func (m *MetricsCollector) observe(stats sql.DBStats) {
	dbPoolConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	dbPoolConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	dbPoolConnections.WithLabelValues("idle").Set(float64(stats.Idle))
	dbPoolConnections.WithLabelValues("max_open").Set(float64(stats.MaxOpenConnections))

	if stats.WaitCount > m.lastWaitCount {
		dbPoolWaitCount.Add(float64(stats.WaitCount - m.lastWaitCount))
		m.lastWaitCount = stats.WaitCount
	}
	if stats.WaitDuration > m.lastWaitDuration {
		dbPoolWaitSeconds.Add((stats.WaitDuration - m.lastWaitDuration).Seconds())
		m.lastWaitDuration = stats.WaitDuration
	}
}

// RecordQueryDuration 记录查询耗时
func RecordQueryDuration(operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordQueryError 记录查询错误
func RecordQueryError(operation string) {
	dbQueryErrors.WithLabelValues(operation).Inc()
}

// sqlOperation SQL 首个关键字作为操作标签
func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	switch op := strings.ToLower(fields[0]); op {
	case "select", "insert", "update", "delete":
		return op
	default:
		return "other"
	}
}
