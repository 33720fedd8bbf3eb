package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"catalogadmin/pkg/logger"

	"github.com/gorilla/websocket"
)

// Subscriber подписка на ленту live обновлений
// Канал закрывается, когда ctx завершен или соединение разорвано
type Subscriber interface {
	Subscribe(ctx context.Context, hubURL string, topics []string) (<-chan Event, error)
}

// WSSubscriber подписка через websocket endpoint catalog-service
type WSSubscriber struct {
	dialer *websocket.Dialer
	buffer int
}

// NewWSSubscriber создает подписчика, buffer - размер очереди событий
func NewWSSubscriber(buffer int) *WSSubscriber {
	if buffer <= 0 {
		buffer = 16
	}
	return &WSSubscriber{
		dialer: websocket.DefaultDialer,
		buffer: buffer,
	}
}

func (s *WSSubscriber) Subscribe(ctx context.Context, hubURL string, topics []string) (<-chan Event, error) {
	target, err := websocketURL(hubURL, topics)
	if err != nil {
		return nil, err
	}

	conn, resp, err := s.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	events := make(chan Event, s.buffer)
	go func() {
		defer close(events)
		defer conn.Close()

		stop := context.AfterFunc(ctx, func() {
			conn.Close()
		})
		defer stop()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn().Err(err).Msg("Live update connection closed")
				}
				return
			}

			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				logger.Warn().Err(err).Msg("Skipping malformed live event")
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// websocketURL переводит http(s) адрес hub в ws(s) и добавляет topic параметры
func websocketURL(hubURL string, topics []string) (string, error) {
	u, err := url.Parse(hubURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub URL scheme %q", u.Scheme)
	}

	q := u.Query()
	for _, topic := range topics {
		q.Add("topic", topic)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
