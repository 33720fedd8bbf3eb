// Package notify очередь уведомлений пользователю.
// Очередь передается через context.Context, уведомления скрываются по таймауту.
package notify

import (
	"context"
	"sync"
	"time"
)

// Level уровень уведомления
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// DefaultDismiss время показа уведомления по умолчанию
const DefaultDismiss = 4 * time.Second

// Notification одно уведомление
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Queue очередь уведомлений
type Queue struct {
	mu      sync.Mutex
	items   []Notification
	dismiss time.Duration
	now     func() time.Time
}

// NewQueue создает очередь, dismiss <= 0 означает DefaultDismiss
func NewQueue(dismiss time.Duration) *Queue {
	if dismiss <= 0 {
		dismiss = DefaultDismiss
	}
	return &Queue{
		dismiss: dismiss,
		now:     time.Now,
	}
}

// Push добавляет уведомление
func (q *Queue) Push(level Level, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.items = append(q.items, Notification{
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(q.dismiss),
	})
}

func (q *Queue) Success(message string) { q.Push(LevelSuccess, message) }
func (q *Queue) Error(message string)   { q.Push(LevelError, message) }
func (q *Queue) Info(message string)    { q.Push(LevelInfo, message) }

// Active возвращает неистекшие уведомления, истекшие удаляются
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.items[:0]
	for _, n := range q.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	q.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Drain возвращает неистекшие уведомления и очищает очередь
func (q *Queue) Drain() []Notification {
	active := q.Active()

	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()

	return active
}

type ctxKey struct{}

// WithQueue кладет очередь в контекст
func WithQueue(ctx context.Context, q *Queue) context.Context {
	return context.WithValue(ctx, ctxKey{}, q)
}

// FromContext достает очередь из контекста
// Без очереди в контексте возвращается новая отдельная очередь, уведомления в нее никто не читает
func FromContext(ctx context.Context) *Queue {
	if q, ok := ctx.Value(ctxKey{}).(*Queue); ok && q != nil {
		return q
	}
	return NewQueue(0)
}
