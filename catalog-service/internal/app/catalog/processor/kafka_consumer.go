package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// Broadcaster рассылает событие локальным подписчикам
type Broadcaster interface {
	Publish(ctx context.Context, event entity.ChangeEvent) error
}

// KafkaConsumer читает события изменения каталога из Kafka и передает их в hub
// Так live обновления доходят до подписчиков любого экземпляра сервиса
type KafkaConsumer struct {
	reader      *kafka.Reader
	broadcaster Broadcaster
	topic       string
	groupID     string
	stopChan    chan struct{}
	doneChan    chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(brokers []string, topic, groupID string, broadcaster Broadcaster) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		// Подписчикам нужны только новые события
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		MaxWait:        500 * time.Millisecond,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:      reader,
		broadcaster: broadcaster,
		topic:       topic,
		groupID:     groupID,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer
func (c *KafkaConsumer) Stop() {
	logger.Info().Msg("Stopping Kafka consumer...")
	close(c.stopChan)
	<-c.doneChan
	stats := c.GetStats()
	c.reader.Close()
	logger.Info().
		Int64("messages", stats.Messages).
		Int64("errors", stats.Errors).
		Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if readCtx.Err() == context.DeadlineExceeded {
					continue
				}

				logger.Warn().Err(err).Msg("Error fetching message")
				metrics.RecordKafkaError("catalog-service", c.topic, "fetch")
				time.Sleep(time.Second)
				continue
			}

			start := time.Now()
			if err := c.processMessage(ctx, message); err != nil {
				// Событие live обновления не повторяем: клиент перечитает данные при следующей загрузке
				logger.Error().Err(err).Int64("offset", message.Offset).Msg("Error processing message")
			}
			metrics.RecordKafkaMessageConsumed("catalog-service", c.topic, c.groupID, time.Since(start))

			if err := c.reader.CommitMessages(ctx, message); err != nil {
				logger.Warn().Err(err).Msg("Error committing message")
			}
		}
	}
}

// processMessage передает одно событие в hub
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.ChangeEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal change event: %w", err)
	}

	if event.Topic == "" || (event.Type != entity.EventUpdate && event.Type != entity.EventDelete) {
		return fmt.Errorf("invalid change event: type=%q topic=%q", event.Type, event.Topic)
	}

	logger.Debug().
		Str("type", event.Type).
		Str("topic", event.Topic).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received change event")

	if err := c.broadcaster.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to broadcast change event: %w", err)
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
