package dashboarding

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	repositoryMocks "github.com/expodigital/analytics-manager-api/infrastructure/repository/mocks"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
	cachingMocks "github.com/expodigital/analytics-manager-api/internal/usecases/caching/mocks"
)

// Quarta-feira às 20h UTC, fora do pico
var dashNow = time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)

type fixture struct {
	service Service
	repo    *repositoryMocks.MockPropertyRepository
	fetcher *cachingMocks.MockFetcher
	store   *cache.RedisStore
	mr      *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := cache.NewRedisStoreWithClient(client)
	repo := repositoryMocks.NewMockPropertyRepository(ctrl)
	fetcher := cachingMocks.NewMockFetcher(ctrl)

	clock := func() time.Time { return dashNow }
	smart := caching.NewSmartCache(store, caching.NewRateLimiter(store), nil, nil).WithClock(clock)
	rollup := caching.NewRollupCache(store, fetcher, nil, nil).WithClock(clock)

	return &fixture{
		service: NewService(repo, fetcher, smart, rollup, store),
		repo:    repo,
		fetcher: fetcher,
		store:   store,
		mr:      mr,
	}
}

func property(id int64, sourceID, name string) *domain.Property {
	return &domain.Property{
		ID:               id,
		SourceID:         sourceID,
		Name:             name,
		Active:           true,
		SyncFrequency:    15,
		RateLimitPerHour: 12,
	}
}

func metricsFor(pageviews int64, bounceRate float64) *domain.PropertyMetrics {
	rows := []domain.DailyRow{{
		Date:               "2024-05-14",
		Pageviews:          pageviews,
		Sessions:           pageviews / 2,
		Users:              pageviews / 4,
		BounceRate:         bounceRate,
		AvgSessionDuration: 120,
	}}
	return &domain.PropertyMetrics{Totals: domain.ComputeTotals(rows), Rows: rows}
}

// seedRollup grava um rollup fresco para que as seções de desagregação não
// disparem buscas na API durante os testes.
func seedRollup(t *testing.T, store *cache.RedisStore, p *domain.Property, homeViews int64) {
	t.Helper()

	rollup := &domain.DailyRollup{
		PropertyID:  p.ID,
		SourceID:    p.SourceID,
		GeneratedAt: dashNow.Add(-time.Hour),
		Pages: []domain.DailyPageRow{
			{Date: "2024-05-14", Path: "/home", Pageviews: homeViews},
		},
		Sources: []domain.DailySourceRow{
			{Date: "2024-05-14", Source: "google", Medium: "organic", Sessions: homeViews / 2, Users: homeViews / 4},
		},
		Devices: []domain.DailyDeviceRow{
			{Date: "2024-05-14", Category: "mobile", Users: homeViews / 4, Sessions: homeViews / 2},
		},
	}

	payload, err := json.Marshal(rollup)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), caching.KeyForRollup(p.SourceID), string(payload), 0))
}

func TestGetDashboardDataToleratesPartialFailure(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	a := property(1, "111", "Portal A")
	b := property(2, "222", "Portal B")
	c := property(3, "333", "Portal C")

	f.repo.EXPECT().ListActiveProperties().Return([]*domain.Property{a, b, c}, nil)

	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), a, gomock.Any()).Return(metricsFor(1000, 0.40), nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), b, gomock.Any()).Return(metricsFor(400, 0.60), nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), c, gomock.Any()).Return(nil, errors.New("503 service unavailable"))

	seedRollup(t, f.store, a, 1000)
	seedRollup(t, f.store, b, 400)
	seedRollup(t, f.store, c, 200)

	data, err := f.service.GetDashboardData(context.Background(), period)
	require.NoError(t, err)

	// A propriedade fora do ar reduz o agregado, nunca o derruba
	metrics := data.Metrics
	assert.Equal(t, 2, metrics.SuccessfulFetches)
	assert.Equal(t, 3, metrics.TotalProperties)
	require.Len(t, metrics.Errors, 1)
	assert.Equal(t, c.ID, metrics.Errors[0].PropertyID)
	assert.Equal(t, "Portal C", metrics.Errors[0].PropertyName)

	assert.Equal(t, int64(1400), metrics.Totals.Pageviews)
	// Taxas re-mediadas sobre quem respondeu: (0.40 + 0.60) / 2
	assert.InDelta(t, 0.50, metrics.Totals.BounceRate, 0.0001)
	assert.Len(t, metrics.Breakdown, 2)

	// As desagregações vêm do rollup e incluem as três propriedades
	require.NotEmpty(t, data.TopPages)
	assert.Equal(t, "/home", data.TopPages[0].Path)
	assert.Equal(t, "Portal A", data.TopPages[0].PropertyName)

	require.Len(t, data.TrafficSources, 1)
	assert.Equal(t, int64(800), data.TrafficSources[0].Sessions)
	assert.ElementsMatch(t, []string{"Portal A", "Portal B", "Portal C"}, data.TrafficSources[0].Properties)

	require.Len(t, data.Devices, 1)
	assert.Equal(t, "mobile", data.Devices[0].Category)
	assert.Equal(t, int64(400), data.Devices[0].Users)

	assert.Equal(t, 3, data.PropertiesCount)
}

func TestGetDashboardDataAllPropertiesFailed(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	a := property(1, "111", "Portal A")
	b := property(2, "222", "Portal B")

	f.repo.EXPECT().ListActiveProperties().Return([]*domain.Property{a, b}, nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("503 service unavailable")).Times(2)

	_, err := f.service.GetDashboardData(context.Background(), period)
	assert.ErrorIs(t, err, ErrAllPropertiesFailed)
}

func TestGetDashboardDataWithoutActiveProperties(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	f.repo.EXPECT().ListActiveProperties().Return(nil, nil)

	data, err := f.service.GetDashboardData(context.Background(), period)
	require.NoError(t, err)

	assert.Zero(t, data.PropertiesCount)
	assert.Empty(t, data.TopPages)
	assert.Empty(t, data.Metrics.Breakdown)
}

func TestAggregateMemoization(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)
	aggregateKey := caching.KeyForAggregate(nil, period)

	a := property(1, "111", "Portal A")
	f.repo.EXPECT().ListActiveProperties().Return([]*domain.Property{a}, nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), a, gomock.Any()).Return(metricsFor(1000, 0.40), nil)
	seedRollup(t, f.store, a, 1000)

	_, err := f.service.GetDashboardData(context.Background(), period)
	require.NoError(t, err)

	// Agregado sem falhas é memorizado pelo TTL fixo
	require.True(t, f.mr.Exists(aggregateKey))
	assert.Equal(t, caching.AggregateTTL, f.mr.TTL(aggregateKey))
}

func TestAggregateWithErrorsIsNotMemoized(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)
	aggregateKey := caching.KeyForAggregate(nil, period)

	a := property(1, "111", "Portal A")
	b := property(2, "222", "Portal B")

	f.repo.EXPECT().ListActiveProperties().Return([]*domain.Property{a, b}, nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), a, gomock.Any()).Return(metricsFor(1000, 0.40), nil)
	f.fetcher.EXPECT().FetchMetrics(gomock.Any(), b, gomock.Any()).Return(nil, errors.New("503 service unavailable"))
	seedRollup(t, f.store, a, 1000)
	seedRollup(t, f.store, b, 400)

	_, err := f.service.GetDashboardData(context.Background(), period)
	require.NoError(t, err)

	// Com falhas parciais nada é memorizado: a próxima requisição tenta de
	// novo a propriedade que falhou
	assert.False(t, f.mr.Exists(aggregateKey))
}

func TestGetPropertyMetricsUnknownProperty(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	f.repo.EXPECT().GetPropertyByID(int64(99)).Return(nil, nil)

	_, err := f.service.GetPropertyMetrics(context.Background(), 99, period)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestGetPropertyMetricsInactiveProperty(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	inactive := property(5, "555", "Portal Desativado")
	inactive.Active = false
	f.repo.EXPECT().GetPropertyByID(inactive.ID).Return(inactive, nil)

	_, err := f.service.GetPropertyMetrics(context.Background(), inactive.ID, period)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestGetPropertyTopPagesUsesRollup(t *testing.T) {
	f := newFixture(t)
	period := domain.LastNDays(dashNow, 7)

	a := property(1, "111", "Portal A")
	f.repo.EXPECT().GetPropertyByID(a.ID).Return(a, nil)
	seedRollup(t, f.store, a, 1000)

	pages, err := f.service.GetPropertyTopPages(context.Background(), a.ID, period)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, domain.TopPage{Path: "/home", Pageviews: 1000}, pages[0])
}
