package dataaccess

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorKind класс ошибки запроса к API
type ErrorKind int

const (
	KindTransport  ErrorKind = iota + 1 // Ответа нет: сеть, DNS, таймаут
	KindValidation                      // 4xx с ошибками по полям
	KindClient                          // Остальные 4xx: 404, 409, 400
	KindServer                          // 5xx
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// FetchError ошибка запроса к API
// Fields заполняется из violations ответа 422
type FetchError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable true для ошибок, после которых имеет смысл повторить действие вручную
func (e *FetchError) Retryable() bool {
	return e.Kind == KindTransport
}

// AsFetchError извлекает FetchError из цепочки ошибок
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func transportError(err error) *FetchError {
	return &FetchError{
		Kind:    KindTransport,
		Message: "Unable to reach the server. Check your connection and try again.",
		Err:     err,
	}
}

type violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// statusError строит FetchError из тела ответа с кодом не 2xx
func statusError(status int, body []byte) *FetchError {
	fe := &FetchError{Status: status}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		doc = nil
	}

	var violations []violation
	if raw, ok := doc["violations"]; ok {
		_ = json.Unmarshal(raw, &violations)
	}
	for _, v := range violations {
		if v.PropertyPath == "" {
			continue
		}
		if fe.Fields == nil {
			fe.Fields = make(map[string]string, len(violations))
		}
		if _, exists := fe.Fields[v.PropertyPath]; !exists {
			fe.Fields[v.PropertyPath] = v.Message
		}
	}

	fe.Message = firstString(doc, "hydra:description", "description", "detail", "hydra:title", "title")
	if fe.Message == "" {
		fe.Message = http.StatusText(status)
	}

	switch {
	case status >= 500:
		fe.Kind = KindServer
	case len(fe.Fields) > 0:
		fe.Kind = KindValidation
	default:
		fe.Kind = KindClient
	}

	return fe
}

func firstString(doc map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
