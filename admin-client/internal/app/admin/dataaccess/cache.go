package dataaccess

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"catalogadmin/admin-client/internal/app/admin/entity"
)

// backReferences коллекции, чье представление содержит обратные ссылки на
// записи ключа: категория перечисляет свои товары
var backReferences = map[string]string{
	entity.ProductsPath: entity.CategoriesPath,
}

type cacheEntry struct {
	host    string
	path    string
	status  int
	hubURL  string
	body    []byte
	expires time.Time
}

// responseCache кеш GET ответов по разрешенному URL
// Запись коллекции или элемента инвалидирует только ключи того же типа ресурса
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	epoch   uint64 // растет при каждой инвалидации
	now     func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func cacheKey(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.RequestURI()
}

func (c *responseCache) get(u *url.URL) (*RawResponse, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[cacheKey(u)]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return &RawResponse{Status: e.status, HubURL: e.hubURL, Body: e.body}, true
}

func (c *responseCache) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// set сохраняет ответ, если с момента epoch кеш не инвалидировался
// Иначе ответ мог быть прочитан до записи и уже устарел
func (c *responseCache) set(u *url.URL, resp *RawResponse, epoch uint64) bool {
	if c.ttl <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.entries[cacheKey(u)] = cacheEntry{
		host:    u.Host,
		path:    u.Path,
		status:  resp.Status,
		hubURL:  resp.HubURL,
		body:    resp.Body,
		expires: c.now().Add(c.ttl),
	}
	return true
}

// invalidate удаляет запись u и все страницы коллекции того же ресурса
func (c *responseCache) invalidate(u *url.URL) {
	key := cacheKey(u)
	collection := collectionOf(u.Path)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	for k, e := range c.entries {
		if k == key || (e.host == u.Host && (e.path == u.Path || e.path == collection)) {
			delete(c.entries, k)
		}
	}
}

// invalidateResource удаляет все страницы коллекции и все ее элементы
func (c *responseCache) invalidateResource(host, collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	for k, e := range c.entries {
		if e.host == host && (e.path == collection || strings.HasPrefix(e.path, collection+"/")) {
			delete(c.entries, k)
		}
	}
}

func (c *responseCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// collectionOf возвращает путь коллекции: /products/{id} -> /products
func collectionOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return "/" + trimmed
}

// referencesIn возвращает IRI элементов collection из полей верхнего уровня тела
func referencesIn(body []byte, collection string) []string {
	if len(body) == 0 {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	var refs []string
	add := func(v any) {
		s, ok := v.(string)
		if !ok {
			return
		}
		if u, err := url.Parse(s); err == nil && strings.HasPrefix(u.Path, collection+"/") {
			refs = append(refs, s)
		}
	}
	for _, v := range doc {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				add(item)
			}
			continue
		}
		add(v)
	}
	return refs
}
