package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/config"
	"catalogadmin/catalog-service/internal/app/catalog/handler"
	"catalogadmin/catalog-service/internal/app/catalog/hub"
	"catalogadmin/catalog-service/internal/app/catalog/processor"
	"catalogadmin/catalog-service/internal/app/catalog/repository"
	"catalogadmin/catalog-service/internal/app/catalog/service"
	"catalogadmin/catalog-service/internal/app/catalog/util"
	"catalogadmin/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Init("catalog-service", "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("catalog-service", cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Log.LogstashAddr, "catalog-service", cfg.Log.Level); err != nil {
			logger.Warn().Err(err).Msg("Logstash unavailable, logging to stdout only")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ПОДКЛЮЧЕНИЕ К БД ===
	database, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	defer database.Close()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Successfully connected to database")

	if err := repository.Migrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует список категорий, без него сервис работает напрямую с БД
	var cache util.CategoryCache
	if cfg.Redis.Enabled {
		redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, categories cache disabled")
		} else {
			defer redisClient.Close()
			cache = redisClient
			logger.Info().Msg("Successfully connected to Redis")
		}
	}

	// === LIVE UPDATE HUB ===
	liveHub := hub.NewHub(cfg.Live.SendBuffer)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go liveHub.Run(hubCtx)

	// События идут в Kafka, а consumer каждого экземпляра отдает их своему hub
	var publisher util.EventPublisher = liveHub
	var consumer *processor.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		publisher = kafkaProducer

		consumer = processor.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, liveHub)
		consumer.Start(ctx)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Change events routed through Kafka")
	}

	// === ИНИЦИАЛИЗАЦИЯ СЛОЕВ ===
	categoryRepo := repository.NewCategoryRepository(database.DB)
	productRepo := repository.NewProductRepository(database.DB)

	catalogService := service.NewCatalogService(categoryRepo, productRepo, cache, publisher)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	liveHandler := handler.NewLiveHandler(liveHub, cfg.Server.AllowedOrigins)
	router := handler.SetupRoutes(catalogHandler, liveHandler, cfg.Server.AllowedOrigins)

	// === ФОНОВЫЕ ЗАДАЧИ ===
	var warmer processor.CacheWarmer
	if cache != nil {
		warmer = catalogService
	}
	scheduler := processor.NewCronScheduler(warmer, database)
	if err := scheduler.Start(ctx, cfg.Cache.WarmSchedule, cfg.Cache.DBStatsSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}

	// === НАСТРОЙКА HTTP СЕРВЕРА ===
	// WriteTimeout не задан: websocket подписки живут дольше обычного запроса
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	<-ctx.Done()
	logger.Info().Msg("Shutting down Catalog Service...")

	scheduler.Stop()
	if consumer != nil {
		consumer.Stop()
	}

	// Закрываем live подписки до Shutdown, иначе он ждет их завершения
	stopHub()
	<-liveHub.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}
