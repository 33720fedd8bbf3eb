package processor

import (
	"context"
	"database/sql"

	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// CacheWarmer прогревает кеш списка категорий
type CacheWarmer interface {
	WarmCategoryCache(ctx context.Context) error
}

// DBStatsSource источник статистики пула соединений
type DBStatsSource interface {
	Stats() sql.DBStats
}

type CronScheduler struct {
	cron    *cron.Cron
	warmer  CacheWarmer
	dbStats DBStatsSource
}

func NewCronScheduler(warmer CacheWarmer, dbStats DBStatsSource) *CronScheduler {
	cronLogger := cron.PrintfLogger(&cronLogAdapter{})
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger)))

	return &CronScheduler{
		cron:    c,
		warmer:  warmer,
		dbStats: dbStats,
	}
}

// Start регистрирует задачи и запускает планировщик
// Пустое расписание отключает соответствующую задачу
func (s *CronScheduler) Start(ctx context.Context, warmSchedule, statsSchedule string) error {
	if warmSchedule != "" && s.warmer != nil {
		logger.Info().Str("schedule", warmSchedule).Msg("Scheduling categories cache warm-up")

		if _, err := s.cron.AddFunc(warmSchedule, func() { s.warmCache(ctx) }); err != nil {
			return err
		}
	}

	if statsSchedule != "" && s.dbStats != nil {
		if _, err := s.cron.AddFunc(statsSchedule, s.recordDBStats); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Cron scheduler started")

	if s.warmer != nil && warmSchedule != "" {
		s.warmCache(ctx)
	}

	return nil
}

func (s *CronScheduler) warmCache(ctx context.Context) {
	if err := s.warmer.WarmCategoryCache(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to warm categories cache")
		return
	}
	logger.Debug().Msg("Categories cache warmed")
}

func (s *CronScheduler) recordDBStats() {
	stats := s.dbStats.Stats()
	metrics.RecordDBPool("catalog-service", stats.Idle, stats.InUse)
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogAdapter направляет логи cron в zerolog
type cronLogAdapter struct{}

func (cronLogAdapter) Printf(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}
