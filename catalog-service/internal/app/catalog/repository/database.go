package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/config"
	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database соединение gorm и пул, который нужно закрыть при остановке
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
	pool  *pgxpool.Pool
}

// Stats статистика пула соединений для метрик
func (d *Database) Stats() sql.DBStats {
	return d.sqlDB.Stats()
}

// Close закрывает соединения с БД
func (d *Database) Close() error {
	err := d.sqlDB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Каждая операция репозитория - одна команда, транзакция-обертка не нужна
		SkipDefaultTransaction: true,
		// Ошибки драйвера переводятся в gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open подключается к БД по настройкам Driver
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg)
	default:
		return openPostgres(ctx, cfg)
	}
}

// openPostgres устанавливает соединение с PostgreSQL используя pgx connection pool
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	// Оптимальные настройки пула для production
	poolConfig.MaxConns = 25                       // Максимум соединений в пуле
	poolConfig.MinConns = 5                        // Минимум соединений (держим открытыми)
	poolConfig.MaxConnLifetime = 5 * time.Minute   // Время жизни соединения
	poolConfig.MaxConnIdleTime = 1 * time.Minute   // Время простоя перед закрытием
	poolConfig.HealthCheckPeriod = 1 * time.Minute // Периодичность health checks

	// Пробуем подключиться с повторными попытками
	// При запуске в Docker PostgreSQL может быть еще не готов
	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &Database{DB: db, sqlDB: sqlDB, pool: pool}, nil
}

// openSQLite открывает файловую базу для локальной разработки
func openSQLite(cfg config.DatabaseConfig) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(cfg.SQLiteDSN()), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// sqlite не поддерживает параллельную запись
	sqlDB.SetMaxOpenConns(1)

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

// Migrate создает или обновляет таблицы категорий и товаров
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Category{}, &entity.Product{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
