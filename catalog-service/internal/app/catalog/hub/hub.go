package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var ErrHubClosed = errors.New("live update hub is closed")

// message событие, сериализованное один раз для всех подписчиков
type message struct {
	topic   string
	kind    string
	payload []byte
}

// Hub рассылает события изменения ресурсов подписчикам live обновлений
// Карта подписчиков принадлежит горутине Run
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	sendBuffer int
	count      atomic.Int64
}

// NewHub создает hub, sendBuffer - размер очереди отправки одного подписчика
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sendBuffer: sendBuffer,
	}
}

// Run обрабатывает регистрацию и рассылку до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			logger.Info().Msg("Live update hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.updateCount()
			logger.Debug().Strs("topics", client.topics).Msg("Live subscriber connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Debug().Msg("Live subscriber disconnected")
			}

		case msg := <-h.broadcast:
			metrics.LiveEventsPublished.WithLabelValues(msg.kind).Inc()
			for client := range h.clients {
				if !client.matches(msg.topic) {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// Медленный подписчик не должен блокировать остальных
					h.drop(client)
					metrics.LiveEventsDropped.Inc()
					logger.Warn().Str("topic", msg.topic).Msg("Dropped slow live subscriber")
				}
			}
		}
	}
}

// Done закрывается после остановки Run
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Subscribers текущее количество подключенных подписчиков
func (h *Hub) Subscribers() int {
	return int(h.count.Load())
}

// Publish рассылает событие подписчикам, чьи топики его покрывают
// Реализует util.EventPublisher для режима без Kafka
func (h *Hub) Publish(ctx context.Context, event entity.ChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	select {
	case h.broadcast <- message{topic: NormalizeTopic(event.Topic), kind: event.Type, payload: payload}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve обслуживает websocket соединение подписчика до его закрытия
func (h *Hub) Serve(conn *websocket.Conn, topics []string) {
	client := &Client{
		hub:    h,
		conn:   conn,
		topics: normalizeTopics(topics),
		send:   make(chan []byte, h.sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.LiveSubscribers.Set(float64(len(h.clients)))
}

// Client подписчик live обновлений
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	topics []string
	send   chan []byte
}

func (c *Client) matches(topic string) bool {
	for _, subscribed := range c.topics {
		if MatchTopic(subscribed, topic) {
			return true
		}
	}
	return false
}

// readPump читает только control frames, входящие сообщения игнорируются
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// MatchTopic сообщает, покрывает ли подписка topic
// Подписка на коллекцию (/products) покрывает IRI ее элементов (/products/{id})
func MatchTopic(subscribed, topic string) bool {
	subscribed = strings.TrimSuffix(subscribed, "/")
	if subscribed == "" {
		return false
	}
	return topic == subscribed || strings.HasPrefix(topic, subscribed+"/")
}

// NormalizeTopic приводит абсолютный IRI к пути, /products/{id} остается как есть
func NormalizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if u, err := url.Parse(topic); err == nil && u.IsAbs() {
		return u.Path
	}
	return topic
}

func normalizeTopics(topics []string) []string {
	result := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = NormalizeTopic(t); t != "" {
			result = append(result, t)
		}
	}
	return result
}
