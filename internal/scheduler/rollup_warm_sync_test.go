package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	repositoryMocks "github.com/expodigital/analytics-manager-api/infrastructure/repository/mocks"
	"github.com/expodigital/analytics-manager-api/internal/config"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
	cachingMocks "github.com/expodigital/analytics-manager-api/internal/usecases/caching/mocks"
)

func newWarmTestStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisStoreWithClient(client), mr
}

func warmTestConfig() *config.Config {
	return &config.Config{
		RollupWarmSync: config.RollupWarmSync{
			CronSchedule:        "0 4 * * *",
			RequestDelaySeconds: 0,
			MaxConcurrentJobs:   1,
			Enabled:             false,
		},
	}
}

func TestTriggerManualSyncUsesApplicationContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	store, mr := newWarmTestStore(t)

	property := &domain.Property{
		ID:               1,
		SourceID:         "354210",
		Name:             "Expo Digital",
		Active:           true,
		SyncFrequency:    15,
		RateLimitPerHour: 12,
	}

	repo := repositoryMocks.NewMockPropertyRepository(ctrl)
	repo.EXPECT().ListActiveProperties().Return([]*domain.Property{property}, nil)

	// Cada busca devolve ctx.Err(): se o contexto chegar cancelado, a
	// reconstrução falha e a chave do rollup nunca é gravada
	fetcher := cachingMocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		FetchDailyMetrics(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.Property, _ domain.Period) ([]domain.DailyRow, error) {
			return []domain.DailyRow{}, ctx.Err()
		})
	fetcher.EXPECT().
		FetchDailyTopPages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.Property, _ domain.Period) ([]domain.DailyPageRow, error) {
			return []domain.DailyPageRow{}, ctx.Err()
		})
	fetcher.EXPECT().
		FetchDailyTrafficSources(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.Property, _ domain.Period) ([]domain.DailySourceRow, error) {
			return []domain.DailySourceRow{}, ctx.Err()
		})
	fetcher.EXPECT().
		FetchDailyDevices(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *domain.Property, _ domain.Period) ([]domain.DailyDeviceRow, error) {
			return []domain.DailyDeviceRow{}, ctx.Err()
		})

	rollupCache := caching.NewRollupCache(store, fetcher, nil, nil)
	service := NewRollupWarmSyncService(repo, rollupCache, warmTestConfig())

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	require.NoError(t, service.Start(appCtx))

	// Simula o ciclo de vida do handler HTTP: a requisição que dispara o
	// aquecimento é respondida (e cancelada) antes de o trabalho terminar
	_, requestCancel := context.WithCancel(context.Background())
	requestCancel()

	service.TriggerManualSync()

	rollupKey := caching.KeyForRollup(property.SourceID)
	require.Eventually(t, func() bool {
		return mr.Exists(rollupKey)
	}, 2*time.Second, 10*time.Millisecond, "o aquecimento manual deveria gravar o rollup mesmo após o fim da requisição")
}
