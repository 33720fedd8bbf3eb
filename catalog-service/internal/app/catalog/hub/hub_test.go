package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMatchTopic(t *testing.T) {
	tests := []struct {
		name       string
		subscribed string
		topic      string
		want       bool
	}{
		{"exact item", "/products/1", "/products/1", true},
		{"collection covers item", "/products", "/products/1", true},
		{"collection with trailing slash", "/products/", "/products/1", true},
		{"other collection", "/products", "/categories/1", false},
		{"prefix is not a segment", "/product", "/products/1", false},
		{"item does not cover collection", "/products/1", "/products", false},
		{"empty subscription", "", "/products/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchTopic(tt.subscribed, tt.topic))
		})
	}
}

func TestNormalizeTopic(t *testing.T) {
	assert.Equal(t, "/products/1", NormalizeTopic("https://shop.example/products/1"))
	assert.Equal(t, "/products", NormalizeTopic(" /products "))
}

func TestHub_PublishWithoutRun(t *testing.T) {
	h := NewHub(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.Publish(ctx, entity.ChangeEvent{Type: entity.EventUpdate, Topic: "/products/1"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHub_PublishAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewHub(1)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()
	<-h.Done()

	err := h.Publish(context.Background(), entity.ChangeEvent{Type: entity.EventUpdate, Topic: "/products/1"})

	assert.ErrorIs(t, err, ErrHubClosed)
}

func newTestServer(h *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(conn, r.URL.Query()["topic"])
	}))
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_DeliversMatchingTopics(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewHub(8)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	server := newTestServer(h)
	conn := dial(t, server, "topic=/products")

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	// Событие категории не должно дойти до подписчика товаров
	require.NoError(t, h.Publish(ctx, entity.ChangeEvent{Type: entity.EventUpdate, Topic: "/categories/c1"}))
	require.NoError(t, h.Publish(ctx, entity.ChangeEvent{
		Type:  entity.EventDelete,
		Topic: "/products/p1",
		Data:  map[string]string{"@id": "/products/p1"},
	}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event entity.ChangeEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, entity.EventDelete, event.Type)
	assert.Equal(t, "/products/p1", event.Topic)

	cancel()
	<-h.Done()
	assert.Equal(t, 0, h.Subscribers())

	// После остановки hub соединение закрывается сервером
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	conn.Close()
	server.Close()
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewHub(8)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	server := newTestServer(h)
	conn := dial(t, server, "topic=/categories&topic=/products")
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Subscribers() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	<-h.Done()
	server.Close()
}
