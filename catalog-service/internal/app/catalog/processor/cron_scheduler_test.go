package processor

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCacheWarmer мок для CacheWarmer
type MockCacheWarmer struct {
	mock.Mock
}

func (m *MockCacheWarmer) WarmCategoryCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type fakeStats struct {
	stats sql.DBStats
	calls int
}

func (f *fakeStats) Stats() sql.DBStats {
	f.calls++
	return f.stats
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	warmer := new(MockCacheWarmer)

	scheduler := NewCronScheduler(warmer, nil)

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, warmer, scheduler.warmer)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	warmer := new(MockCacheWarmer)
	stats := &fakeStats{}
	scheduler := NewCronScheduler(warmer, stats)

	// Прогрев при старте
	warmer.On("WarmCategoryCache", mock.Anything).Return(nil).Once()

	// Act
	err := scheduler.Start(context.Background(), "@every 10m", "@every 30s")

	// Assert
	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)
	warmer.AssertExpectations(t)

	scheduler.Stop()
}

func TestCronScheduler_Start_InitialWarmFailureIsNotFatal(t *testing.T) {
	warmer := new(MockCacheWarmer)
	scheduler := NewCronScheduler(warmer, nil)

	warmer.On("WarmCategoryCache", mock.Anything).Return(errors.New("redis down")).Once()

	err := scheduler.Start(context.Background(), "@every 10m", "")

	require.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 1)
	scheduler.Stop()
}

func TestCronScheduler_Start_InvalidSchedule(t *testing.T) {
	scheduler := NewCronScheduler(new(MockCacheWarmer), nil)

	err := scheduler.Start(context.Background(), "invalid cron", "")

	assert.Error(t, err)
}

func TestCronScheduler_Start_NothingScheduled(t *testing.T) {
	warmer := new(MockCacheWarmer)
	scheduler := NewCronScheduler(warmer, nil)

	err := scheduler.Start(context.Background(), "", "")

	require.NoError(t, err)
	assert.Empty(t, scheduler.GetEntries())
	warmer.AssertNotCalled(t, "WarmCategoryCache", mock.Anything)
	scheduler.Stop()
}

func TestCronScheduler_RecordDBStats(t *testing.T) {
	stats := &fakeStats{stats: sql.DBStats{Idle: 3, InUse: 2}}
	scheduler := NewCronScheduler(nil, stats)

	scheduler.recordDBStats()

	assert.Equal(t, 1, stats.calls)
}
