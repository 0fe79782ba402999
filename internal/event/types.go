// Package event 提供领域事件的发布与消费
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Type 领域事件类型
type Type string

const (
	TypeLeadCaptured      Type = "lead.captured"
	TypePostGenerated     Type = "post.generated"
	TypeCampaignCreated   Type = "campaign.created"
	TypeCampaignUpdated   Type = "campaign.updated"
	TypeCampaignDeleted   Type = "campaign.deleted"
	TypeConnectionChanged Type = "connection.changed"
	TypeReportGenerated   Type = "report.generated"
)

// SchemaVersion 事件结构版本
const SchemaVersion = "v1"

// DomainEvent 领域事件
type DomainEvent struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	TenantID    string          `json:"tenant_id,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload,omitempty"`

	// 内部字段（不序列化），消费者提交偏移量时使用
	kafkaMsg *kafka.Message
}

// New 创建领域事件，payload 序列化为 JSON
func New(eventType Type, aggregateID string, payload interface{}) (*DomainEvent, error) {
	evt := &DomainEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
		}
		evt.Payload = raw
	}
	return evt, nil
}

// WithTenant 设置租户
func (e *DomainEvent) WithTenant(tenantID string) *DomainEvent {
	e.TenantID = tenantID
	return e
}

// DecodePayload 解析事件负载
func (e *DomainEvent) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// KafkaMessage 获取原始 Kafka 消息
func (e *DomainEvent) KafkaMessage() *kafka.Message {
	return e.kafkaMsg
}

// MessageHeaders Kafka 消息头
type MessageHeaders struct {
	EventType     string
	TenantID      string
	SchemaVersion string
	ContentType   string
	SourceService string
}

// ParseHeaders 从 kafka.Header 切片解析 MessageHeaders
func ParseHeaders(headers []kafka.Header) *MessageHeaders {
	h := &MessageHeaders{}
	for _, header := range headers {
		switch header.Key {
		case "event_type":
			h.EventType = string(header.Value)
		case "tenant_id":
			h.TenantID = string(header.Value)
		case "schema_version":
			h.SchemaVersion = string(header.Value)
		case "content_type":
			h.ContentType = string(header.Value)
		case "source_service":
			h.SourceService = string(header.Value)
		}
	}
	return h
}

// ToKafkaHeaders 将 MessageHeaders 转换为 kafka.Header 切片
func (h *MessageHeaders) ToKafkaHeaders() []kafka.Header {
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(h.EventType)},
		{Key: "schema_version", Value: []byte(h.SchemaVersion)},
		{Key: "content_type", Value: []byte(h.ContentType)},
	}
	if h.TenantID != "" {
		headers = append(headers, kafka.Header{Key: "tenant_id", Value: []byte(h.TenantID)})
	}
	if h.SourceService != "" {
		headers = append(headers, kafka.Header{Key: "source_service", Value: []byte(h.SourceService)})
	}
	return headers
}

// headersFor 返回事件的默认消息头
func headersFor(evt *DomainEvent) *MessageHeaders {
	return &MessageHeaders{
		EventType:     string(evt.Type),
		TenantID:      evt.TenantID,
		SchemaVersion: SchemaVersion,
		ContentType:   "application/json",
		SourceService: "autopilot",
	}
}
