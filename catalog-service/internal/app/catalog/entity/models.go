package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category представляет категорию товаров
// Список товаров не хранится в строке категории, он собирается отдельным запросом
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

// Product представляет товар в каталоге
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Price       float64   `gorm:"not null"`
	CategoryID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt   time.Time `gorm:"not null"` // Назначается при создании и больше не меняется
}

// Event types для live обновлений
const (
	EventUpdate = "update"
	EventDelete = "delete"
)

// ChangeEvent событие изменения ресурса
// Публикуется в Kafka и рассылается подписчикам live обновлений
type ChangeEvent struct {
	Type      string    `json:"type"`  // update, delete
	Topic     string    `json:"topic"` // IRI измененного ресурса, например /products/{id}
	Data      any       `json:"data"`  // JSON-LD представление или {"@id": iri} для удаления
	Timestamp time.Time `json:"timestamp"`
}
