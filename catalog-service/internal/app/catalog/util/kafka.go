package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer обертка над Kafka writer для отправки событий изменения каталога
// Все экземпляры сервиса читают топик и рассылают события своим live подписчикам
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает новый Kafka producer
// brokers - список брокеров Kafka в формате ["host:port"]
// topic - имя топика для событий (catalog_events по умолчанию)
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:  kafka.TCP(brokers...),
		Topic: topic,
		// Хеш по ключу сохраняет порядок событий одного ресурса
		Balancer: &kafka.Hash{},
		// Live обновления должны доходить быстро, батч не копим
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// Publish сериализует событие и отправляет его в Kafka
// Ключ сообщения = IRI ресурса
func (p *KafkaProducer) Publish(ctx context.Context, event entity.ChangeEvent) error {
	message, err := newEventMessage(event)
	if err != nil {
		return err
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	timer.Success()

	return nil
}

// Close закрывает Kafka writer и освобождает ресурсы
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func newEventMessage(event entity.ChangeEvent) (kafka.Message, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal change event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.Topic),
		Value: value,
		Time:  event.Timestamp,
	}, nil
}
