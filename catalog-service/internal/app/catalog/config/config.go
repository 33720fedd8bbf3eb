package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки приложения Catalog Service
// Включает конфигурацию HTTP сервера, БД, Redis, Kafka и live обновлений
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Live     LiveConfig
	Cache    CacheConfig
	Log      LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host           string   // Адрес хоста (по умолчанию 0.0.0.0)
	Port           string   // Порт сервера (по умолчанию 8081)
	AllowedOrigins []string // Origin админки для CORS и websocket, "*" - любой
}

// DatabaseConfig - настройки подключения к БД
// Driver = postgres для production, sqlite для локальной разработки
type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string // Хост PostgreSQL
	Port       string // Порт PostgreSQL
	User       string // Имя пользователя БД
	Password   string // Пароль БД
	DBName     string // Имя базы данных
	SSLMode    string // Режим SSL (disable/require/verify-full)
	SQLitePath string // Файл базы для Driver = sqlite
}

// RedisConfig - настройки подключения к Redis для кеширования списка категорий
// Без Redis категории пагинируются запросом к БД
type RedisConfig struct {
	Enabled  bool
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (опционально)
	DB       int    // Номер БД Redis (0-15)
}

// KafkaConfig - настройки Kafka для событий изменения каталога
// При Enabled=false события рассылаются локальным hub напрямую
type KafkaConfig struct {
	Enabled bool
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик событий update/delete
	GroupID string   // Consumer group, у каждого экземпляра сервиса своя
}

// LiveConfig - настройки live update hub
type LiveConfig struct {
	SendBuffer int // Размер очереди отправки одного подписчика
}

// CacheConfig - расписания фоновых задач
type CacheConfig struct {
	WarmSchedule    string // cron выражение прогрева кеша категорий
	DBStatsSchedule string // cron выражение сбора метрик пула соединений
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level        string
	LogstashAddr string // Адрес Logstash TCP input, пусто - только stdout
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	// Парсим Redis DB как число
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED value: %w", err)
	}

	kafkaEnabled, err := strconv.ParseBool(getEnv("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_ENABLED value: %w", err)
	}

	sendBuffer, err := strconv.Atoi(getEnv("LIVE_SEND_BUFFER", "32"))
	if err != nil || sendBuffer <= 0 {
		return nil, fmt.Errorf("invalid LIVE_SEND_BUFFER value: %q", os.Getenv("LIVE_SEND_BUFFER"))
	}

	driver := getEnv("DB_DRIVER", "postgres")
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	hostname, _ := os.Hostname()

	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8081"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Driver:     driver,
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "catalog_admin"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "catalog.db"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Enabled: kafkaEnabled,
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
			// Каждый экземпляр читает все события, поэтому группа уникальна
			GroupID: getEnv("KAFKA_GROUP_ID", "catalog-live-"+hostname),
		},
		Live: LiveConfig{
			SendBuffer: sendBuffer,
		},
		Cache: CacheConfig{
			WarmSchedule:    getEnv("CACHE_WARM_SCHEDULE", "@every 10m"),
			DBStatsSchedule: getEnv("DB_STATS_SCHEDULE", "@every 30s"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате URL для pgx
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// SQLiteDSN возвращает DSN sqlite с включенными внешними ключами
func (c *DatabaseConfig) SQLiteDSN() string {
	return "file:" + c.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// ShutdownTimeout время на завершение текущих запросов
const ShutdownTimeout = 30 * time.Second

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
// Используется для гибкой конфигурации через environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList разбирает список через запятую, пустые элементы отбрасываются
func splitList(value string) []string {
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
