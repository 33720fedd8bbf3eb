// Package live подписка на live обновления catalog-service и слияние
// событий с загруженной страницей коллекции.
package live

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Типы событий
const (
	TypeUpdate = "update"
	TypeDelete = "delete"
)

// Event событие изменения ресурса
// Data содержит новое JSON-LD представление или только {"@id": iri} при удалении
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// IRI измененного ресурса: @id из данных, иначе topic
func (e Event) IRI() string {
	var ref struct {
		ID string `json:"@id"`
	}
	if len(e.Data) > 0 && json.Unmarshal(e.Data, &ref) == nil && ref.ID != "" {
		return ref.ID
	}
	return e.Topic
}

// IsDeletion true для события удаления
// Маркер удаления: тип delete или данные, состоящие только из @id
func (e Event) IsDeletion() bool {
	if e.Type == TypeDelete {
		return true
	}

	var fields map[string]json.RawMessage
	if len(e.Data) == 0 || json.Unmarshal(e.Data, &fields) != nil {
		return false
	}
	_, hasID := fields["@id"]
	return hasID && len(fields) == 1
}

// SameIRI сравнивает IRI без учета схемы и хоста
func SameIRI(a, b string) bool {
	return iriPath(a) == iriPath(b)
}

func iriPath(iri string) string {
	iri = strings.TrimSpace(iri)
	if u, err := url.Parse(iri); err == nil && u.IsAbs() {
		return strings.TrimSuffix(u.Path, "/")
	}
	return strings.TrimSuffix(iri, "/")
}
