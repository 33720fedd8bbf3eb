package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config содержит настройки клиента админки
type Config struct {
	API    APIConfig
	Cache  CacheConfig
	Notify NotifyConfig
	Log    LogConfig
}

// APIConfig - параметры подключения к catalog-service
type APIConfig struct {
	Entrypoint     string        // Базовый URL API, относительно него разрешаются пути и IRI
	ItemsPerPage   int           // Размер страницы списков
	RequestTimeout time.Duration // Таймаут одного HTTP запроса
}

// CacheConfig - кеш ответов API
type CacheConfig struct {
	TTL time.Duration // Время жизни записи, 0 - кеш выключен
}

// NotifyConfig - очередь уведомлений
type NotifyConfig struct {
	Dismiss time.Duration // Через сколько уведомление скрывается
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	entrypoint := getEnv("ADMIN_ENTRYPOINT", "http://localhost:8081")
	if u, err := url.Parse(entrypoint); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ADMIN_ENTRYPOINT value: %q", entrypoint)
	}

	itemsPerPage, err := strconv.Atoi(getEnv("ADMIN_ITEMS_PER_PAGE", "10"))
	if err != nil || itemsPerPage <= 0 || itemsPerPage > 100 {
		return nil, fmt.Errorf("invalid ADMIN_ITEMS_PER_PAGE value: %q", os.Getenv("ADMIN_ITEMS_PER_PAGE"))
	}

	timeout, err := time.ParseDuration(getEnv("ADMIN_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_REQUEST_TIMEOUT value: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("ADMIN_CACHE_TTL", "30s"))
	if err != nil || cacheTTL < 0 {
		return nil, fmt.Errorf("invalid ADMIN_CACHE_TTL value: %q", os.Getenv("ADMIN_CACHE_TTL"))
	}

	dismiss, err := time.ParseDuration(getEnv("ADMIN_NOTIFY_DISMISS", "4s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_NOTIFY_DISMISS value: %w", err)
	}

	return &Config{
		API: APIConfig{
			Entrypoint:     entrypoint,
			ItemsPerPage:   itemsPerPage,
			RequestTimeout: timeout,
		},
		Cache: CacheConfig{
			TTL: cacheTTL,
		},
		Notify: NotifyConfig{
			Dismiss: dismiss,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "warn"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
