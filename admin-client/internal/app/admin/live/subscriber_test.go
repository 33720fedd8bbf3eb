package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalogadmin/admin-client/internal/app/admin/dataaccess"
	"catalogadmin/admin-client/internal/app/admin/entity"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type dataaccessCollection = dataaccess.Collection[entity.Product]

// hubServer websocket сервер, который отдает события из канала
func hubServer(events <-chan string, gotTopics chan<- []string) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotTopics != nil {
			gotTopics <- r.URL.Query()["topic"]
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for payload := range events {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	return srv
}

func receive(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for live event")
		return Event{}, false
	}
}

func TestWSSubscriber_ReceivesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	events := make(chan string, 3)
	topics := make(chan []string, 1)
	srv := hubServer(events, topics)
	defer srv.Close()

	sub := NewWSSubscriber(4)
	ch, err := sub.Subscribe(context.Background(), srv.URL+"/.well-known/updates", []string{"/products", "/categories"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/products", "/categories"}, <-topics)

	events <- `{"type": "update", "topic": "/products/1", "data": {"@id": "/products/1", "name": "Laptop"}}`
	events <- `not json`
	events <- `{"type": "delete", "topic": "/products/2", "data": {"@id": "/products/2"}}`
	close(events)

	ev, ok := receive(t, ch)
	require.True(t, ok)
	assert.Equal(t, TypeUpdate, ev.Type)
	assert.Equal(t, "/products/1", ev.IRI())

	ev, ok = receive(t, ch)
	require.True(t, ok)
	assert.True(t, ev.IsDeletion())

	// Сервер закрыл соединение, канал закрывается
	_, ok = receive(t, ch)
	assert.False(t, ok)
}

func TestWSSubscriber_ContextCancelClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	events := make(chan string)
	srv := hubServer(events, nil)
	defer srv.Close()
	defer close(events)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := NewWSSubscriber(0).Subscribe(ctx, srv.URL, []string{"/products"})
	require.NoError(t, err)

	cancel()

	_, ok := receive(t, ch)
	assert.False(t, ok)
}

func TestWSSubscriber_DialError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewWSSubscriber(1).Subscribe(context.Background(), srv.URL, []string{"/products"})

	assert.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://api.example.com/.well-known/updates", []string{"/products"})
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/.well-known/updates?topic=%2Fproducts", u)

	u, err = websocketURL("http://localhost:8081/.well-known/updates", nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8081/.well-known/updates", u)

	_, err = websocketURL("ftp://example.com", nil)
	assert.Error(t, err)
}

// chanSubscriber Subscriber поверх готового канала
type chanSubscriber struct {
	ch     chan Event
	topics []string
}

func (s *chanSubscriber) Subscribe(_ context.Context, _ string, topics []string) (<-chan Event, error) {
	s.topics = topics
	return s.ch, nil
}

func TestSync_Passthrough(t *testing.T) {
	c := page()

	s, err := NewSync(context.Background(), NewWSSubscriber(1), "", []string{"/products"}, c)

	require.NoError(t, err)
	assert.False(t, s.Live())
	assert.Nil(t, s.Events())
	assert.Same(t, c, s.Collection())

	s.Run(context.Background(), func(*dataaccessCollection, MergeResult) { t.Fatal("unexpected change") })
	assert.Len(t, c.Member, 3)
}

func TestSync_RunAppliesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sub := &chanSubscriber{ch: make(chan Event, 3)}
	s, err := NewSync(context.Background(), sub, "http://localhost/.well-known/updates", []string{"/products"}, page())
	require.NoError(t, err)
	assert.True(t, s.Live())
	assert.Equal(t, []string{"/products"}, sub.topics)

	data, _ := json.Marshal(map[string]any{"@id": "/products/1", "name": "Laptop Air", "price": 899})
	sub.ch <- Event{Type: TypeUpdate, Topic: "/products/1", Data: data}
	sub.ch <- Event{Type: TypeUpdate, Topic: "/products/42", Data: json.RawMessage(`{"@id": "/products/42"}`)}
	sub.ch <- Event{Type: TypeDelete, Topic: "/products/3"}
	close(sub.ch)

	var results []MergeResult
	s.Run(context.Background(), func(_ *dataaccessCollection, r MergeResult) {
		results = append(results, r)
	})

	assert.Equal(t, []MergeResult{MergeReplaced, MergeRemoved}, results)
	assert.Equal(t, []string{"Laptop Air", "Headphones"}, names(s.Collection()))
	assert.Equal(t, 12, s.Collection().TotalItems)
}
