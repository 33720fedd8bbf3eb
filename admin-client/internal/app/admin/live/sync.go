package live

import (
	"context"
	"fmt"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
)

// Sync держит страницу коллекции и применяет к ней события подписки
// Без адреса hub работает как passthrough: Events() возвращает nil, коллекция не меняется
type Sync[T Identified] struct {
	collection *dataaccess.Collection[T]
	events     <-chan Event
}

// NewSync подписывается на topics, если hubURL не пустой
func NewSync[T Identified](ctx context.Context, sub Subscriber, hubURL string, topics []string, c *dataaccess.Collection[T]) (*Sync[T], error) {
	s := &Sync[T]{collection: c}
	if hubURL == "" || sub == nil {
		return s, nil
	}

	events, err := sub.Subscribe(ctx, hubURL, topics)
	if err != nil {
		return nil, fmt.Errorf("subscribe to live updates: %w", err)
	}
	s.events = events
	return s, nil
}

// Live true, если подписка активна
func (s *Sync[T]) Live() bool {
	return s.events != nil
}

// Events канал событий для select в цикле представления, nil для passthrough
func (s *Sync[T]) Events() <-chan Event {
	return s.events
}

func (s *Sync[T]) Collection() *dataaccess.Collection[T] {
	return s.collection
}

// Apply применяет событие к коллекции
func (s *Sync[T]) Apply(ev Event) MergeResult {
	return Merge(s.collection, ev)
}

// Run применяет события до закрытия канала или завершения ctx
// onChange вызывается после каждого события, изменившего страницу
func (s *Sync[T]) Run(ctx context.Context, onChange func(*dataaccess.Collection[T], MergeResult)) {
	if s.events == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			if result := s.Apply(ev); result != MergeIgnored && onChange != nil {
				onChange(s.collection, result)
			}
		}
	}
}
