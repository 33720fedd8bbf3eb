// Package dataaccess клиент HTTP API каталога: разрешение IRI, разбор JSON-LD
// ответов и ошибок, кеш GET запросов.
package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalogadmin/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const contentTypeLD = "application/ld+json"

// Client клиент catalog-service
type Client struct {
	entrypoint   *url.URL
	httpClient   *http.Client
	cache        *responseCache
	group        singleflight.Group
	itemsPerPage int
}

// Option настройка клиента
type Option func(*Client)

// WithHTTPClient задает http.Client, например с другим таймаутом
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCacheTTL задает время жизни кеша ответов, 0 выключает кеш
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newResponseCache(ttl)
	}
}

// WithItemsPerPage задает размер страницы списков
func WithItemsPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.itemsPerPage = n
		}
	}
}

// NewClient создает клиент API
// entrypoint - абсолютный URL, относительно которого разрешаются пути и IRI
func NewClient(entrypoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(entrypoint)
	if err != nil {
		return nil, fmt.Errorf("invalid entrypoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("entrypoint must be an absolute URL: %q", entrypoint)
	}

	c := &Client{
		entrypoint:   u,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		cache:        newResponseCache(30 * time.Second),
		itemsPerPage: 10,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RequestOptions метод и тело запроса, по умолчанию GET без тела
type RequestOptions struct {
	Method string
	Body   any
}

// RawResponse ответ API до декодирования
type RawResponse struct {
	Status int
	HubURL string
	Body   []byte
}

// Response декодированный ответ API
// HubURL адрес live обновлений из заголовка Link, пусто если сервер его не объявил
type Response[T any] struct {
	Data   T
	HubURL string
	Status int
}

// Fetch выполняет запрос и декодирует тело в T
// Для 204 Data остается нулевым значением
func Fetch[T any](ctx context.Context, c *Client, pathOrIRI string, opts *RequestOptions) (*Response[T], error) {
	raw, err := c.Do(ctx, pathOrIRI, opts)
	if err != nil {
		return nil, err
	}

	resp := &Response[T]{HubURL: raw.HubURL, Status: raw.Status}
	if raw.Status == http.StatusNoContent || len(bytes.TrimSpace(raw.Body)) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(raw.Body, &resp.Data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

// Resolve разрешает путь или абсолютный IRI относительно entrypoint
func (c *Client) Resolve(pathOrIRI string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(pathOrIRI))
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", pathOrIRI, err)
	}
	return c.entrypoint.ResolveReference(ref), nil
}

// ItemsPerPage размер страницы списков
func (c *Client) ItemsPerPage() int {
	return c.itemsPerPage
}

// Do выполняет запрос
// GET читается из кеша, одинаковые параллельные GET схлопываются в один запрос
// Успешная запись инвалидирует кеш ресурса и записи с обратными ссылками на него
func (c *Client) Do(ctx context.Context, pathOrIRI string, opts *RequestOptions) (*RawResponse, error) {
	u, err := c.Resolve(pathOrIRI)
	if err != nil {
		return nil, err
	}

	method := http.MethodGet
	var payload []byte
	if opts != nil {
		if opts.Method != "" {
			method = strings.ToUpper(opts.Method)
		}
		if opts.Body != nil {
			payload, err = json.Marshal(opts.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode request body: %w", err)
			}
		}
	}

	if method != http.MethodGet {
		// Закешированное состояние до записи: по нему видно старые ссылки
		var before []byte
		if cached, ok := c.cache.get(u); ok {
			before = cached.Body
		}

		resp, err := c.send(ctx, method, u, payload)
		if err != nil {
			return nil, err
		}
		c.cache.invalidate(u)
		c.invalidateBackReferences(u, method, before, payload, resp.Body)
		return resp, nil
	}

	if cached, ok := c.cache.get(u); ok {
		logger.Debug().Str("url", u.String()).Msg("API cache hit")
		return cached, nil
	}

	ch := c.group.DoChan(cacheKey(u), func() (any, error) {
		epoch := c.cache.currentEpoch()
		// Запрос общий для всех ожидающих, отмена одного из них его не прерывает
		// Время запроса ограничено таймаутом httpClient
		resp, err := c.send(context.WithoutCancel(ctx), http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if !c.cache.set(u, resp, epoch) {
			logger.Debug().Str("url", u.String()).Msg("API response not cached")
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, transportError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RawResponse), nil
	}
}

// invalidateBackReferences сбрасывает записи, где сервер хранит обратные ссылки
// на измененный ресурс: товар меняет список products старой и новой категории
func (c *Client) invalidateBackReferences(u *url.URL, method string, before []byte, bodies ...[]byte) {
	target, ok := backReferences[collectionOf(u.Path)]
	if !ok {
		return
	}

	// Прежнее состояние неизвестно, старой могла быть любая категория
	if before == nil && method != http.MethodPost {
		c.cache.invalidateResource(u.Host, target)
		return
	}

	refs := referencesIn(before, target)
	for _, body := range bodies {
		refs = append(refs, referencesIn(body, target)...)
	}
	for _, ref := range refs {
		c.Invalidate(ref)
	}
}

// Invalidate сбрасывает кеш ресурса и его коллекции
func (c *Client) Invalidate(pathOrIRI string) {
	if u, err := c.Resolve(pathOrIRI); err == nil {
		c.cache.invalidate(u)
	}
}

func (c *Client) send(ctx context.Context, method string, u *url.URL, payload []byte) (*RawResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeLD)
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeLD)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("method", method).Str("url", u.String()).Msg("API request failed")
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	logger.Debug().
		Str("method", method).
		Str("url", u.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}

	return &RawResponse{
		Status: resp.StatusCode,
		HubURL: c.hubURL(resp.Header),
		Body:   data,
	}, nil
}

// hubURL ищет в заголовках Link ссылку rel="updates" (или rel="mercure")
// и разрешает ее относительно entrypoint
func (c *Client) hubURL(header http.Header) string {
	for _, value := range header.Values("Link") {
		for _, link := range strings.Split(value, ",") {
			target, ok := parseLink(link, "updates", "mercure")
			if !ok {
				continue
			}
			u, err := c.Resolve(target)
			if err != nil {
				continue
			}
			return u.String()
		}
	}
	return ""
}

// parseLink разбирает одну ссылку вида <target>; rel="a b"
func parseLink(link string, rels ...string) (string, bool) {
	link = strings.TrimSpace(link)
	start := strings.Index(link, "<")
	end := strings.Index(link, ">")
	if start != 0 || end < start {
		return "", false
	}
	target := link[start+1 : end]

	for _, param := range strings.Split(link[end+1:], ";") {
		name, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "rel") {
			continue
		}
		for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
			for _, want := range rels {
				if strings.EqualFold(rel, want) {
					return target, true
				}
			}
		}
	}
	return "", false
}
