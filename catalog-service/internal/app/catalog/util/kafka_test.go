package util

import (
	"encoding/json"
	"testing"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaProducer(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092"}, "catalog_events")

	require.NotNil(t, producer)
	assert.Equal(t, "catalog_events", producer.writer.Topic)
	assert.Equal(t, "catalog_events", producer.topic)
	assert.NoError(t, producer.Close())
}

func TestNewEventMessage(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	event := entity.ChangeEvent{
		Type:      entity.EventDelete,
		Topic:     "/products/6f1c2a7e-0d55-4b8e-9d7a-1f4f3f1b2c3d",
		Data:      map[string]string{"@id": "/products/6f1c2a7e-0d55-4b8e-9d7a-1f4f3f1b2c3d"},
		Timestamp: ts,
	}

	message, err := newEventMessage(event)

	require.NoError(t, err)
	assert.Equal(t, []byte(event.Topic), message.Key)
	assert.Equal(t, ts, message.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(message.Value, &decoded))
	assert.Equal(t, "delete", decoded["type"])
	assert.Equal(t, event.Topic, decoded["topic"])
}

func TestNewEventMessage_SetsTimestamp(t *testing.T) {
	message, err := newEventMessage(entity.ChangeEvent{Type: entity.EventUpdate, Topic: "/categories/x"})

	require.NoError(t, err)
	assert.False(t, message.Time.IsZero())
}

func TestNewEventMessage_Unmarshalable(t *testing.T) {
	_, err := newEventMessage(entity.ChangeEvent{Type: entity.EventUpdate, Data: make(chan int)})

	assert.Error(t, err)
}
