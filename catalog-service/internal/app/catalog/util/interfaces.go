package util

import (
	"context"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
)

// CategoryCache интерфейс для работы с кешем списка категорий
// Используется для dependency injection и упрощения тестирования
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.CategoryResource, ttl time.Duration) error
	// GetCategories возвращает nil без ошибки при cache miss
	GetCategories(ctx context.Context) ([]entity.CategoryResource, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// EventPublisher интерфейс для отправки событий изменения ресурсов
// Реализуется Kafka producer и локальным hub
type EventPublisher interface {
	Publish(ctx context.Context, event entity.ChangeEvent) error
}
