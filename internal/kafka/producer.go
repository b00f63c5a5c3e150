package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"tessera/internal/logger"
	"tessera/internal/models"

	"github.com/segmentio/kafka-go"
)

// Topics routes each event family to its topic.
type Topics struct {
	SeatStatus     string
	Sales          string
	Reconciliation string
}

// Producer streams seating events to Kafka. One writer serves all topics;
// each message carries its own topic.
type Producer struct {
	Writer *kafka.Writer
	Topics Topics
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) publish(topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", topic, string(msgBytes))

	return p.Writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: msgBytes,
	})
}

// PublishSeatStatus streams a seat status transition.
func (p *Producer) PublishSeatStatus(event models.SeatStatusChangeEvent) error {
	return p.publish(p.Topics.SeatStatus, event.EventID, event)
}

// PublishSaleCompleted streams a committed sale.
func (p *Producer) PublishSaleCompleted(event models.SaleCompletedEvent) error {
	return p.publish(p.Topics.Sales, event.SaleID, event)
}

// PublishReconciliationNeeded streams an orphaned-charge record to the
// operator queue.
func (p *Producer) PublishReconciliationNeeded(event models.ReconciliationEvent) error {
	return p.publish(p.Topics.Reconciliation, event.HoldID, event)
}

func (p *Producer) Close() error {
	if p.Writer == nil {
		return nil
	}
	return p.Writer.Close()
}

// EnsureTopicsExist creates the topics if they don't already exist.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	return controllerConn.CreateTopics(configs...)
}
