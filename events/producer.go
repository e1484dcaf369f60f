package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits order lifecycle events. Publishing is best-effort:
// implementations log failures and never surface them to the request path.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

// Event is the envelope written to the order events topic.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers string, topic string, log *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized",
		zap.String("topic", topic),
		zap.String("brokers", brokers),
	)
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		p.log.Error("Failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(eventType),
		Value: data,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		p.log.Error("Failed to publish event", zap.String("type", eventType), zap.Error(err))
		return
	}
	p.log.Info("Event published", zap.String("type", eventType))
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
