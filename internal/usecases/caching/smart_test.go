package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching/mocks"
)

// Quarta-feira às 20h UTC: fora do pico, janela de frescor de 30 minutos
var smartNow = time.Date(2024, 5, 15, 20, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testProperty() *domain.Property {
	return &domain.Property{
		ID:               1,
		SourceID:         "354210",
		Name:             "Expo Digital",
		Active:           true,
		SyncFrequency:    15,
		RateLimitPerHour: 12,
	}
}

func sampleMetrics() *domain.PropertyMetrics {
	rows := []domain.DailyRow{
		{Date: "2024-05-14", Pageviews: 100, Sessions: 40, Users: 30, BounceRate: 0.40, AvgSessionDuration: 120},
		{Date: "2024-05-15", Pageviews: 200, Sessions: 60, Users: 50, BounceRate: 0.60, AvgSessionDuration: 180},
	}
	return &domain.PropertyMetrics{Totals: domain.ComputeTotals(rows), Rows: rows}
}

func putEntry(t *testing.T, store *cache.RedisStore, key string, data *domain.PropertyMetrics, cachedAt time.Time) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), key, string(payload), 0))
	require.NoError(t, store.Put(context.Background(), TimestampKey(key), cachedAt.Format(time.RFC3339), 0))
}

func failingFetch(t *testing.T) FetchFunc {
	return func(ctx context.Context) (*domain.PropertyMetrics, error) {
		t.Fatal("a busca síncrona não deveria ter sido executada")
		return nil, nil
	}
}

func TestSmartCacheFreshHit(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	putEntry(t, store, KeyForProperty(property.SourceID, period), sampleMetrics(), smartNow.Add(-5*time.Minute))

	result, err := smart.GetWithSmartCache(context.Background(), property, period, failingFetch(t))
	require.NoError(t, err)

	assert.True(t, result.IsFresh)
	assert.False(t, result.IsUpdating)
	assert.Equal(t, int64(300), result.Data.Totals.Pageviews)
	assert.Equal(t, int64(300), result.CacheAgeSeconds)
}

func TestSmartCacheStaleServesAndSchedulesRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)
	exactKey := KeyForProperty(property.SourceID, period)

	refresher := mocks.NewMockRefreshScheduler(ctrl)
	refresher.EXPECT().
		MaybeScheduleRefresh(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job domain.RefreshJob) (bool, error) {
			assert.Equal(t, domain.RefreshKindExact, job.Kind)
			assert.Equal(t, exactKey, job.CacheKey)
			assert.Equal(t, property.ID, job.PropertyID)
			return true, nil
		})

	smart := NewSmartCache(store, NewRateLimiter(store), refresher, nil).WithClock(fixedClock(smartNow))

	// Escrito há uma hora: além da janela de frescor de 30 minutos
	putEntry(t, store, exactKey, sampleMetrics(), smartNow.Add(-time.Hour))

	result, err := smart.GetWithSmartCache(context.Background(), property, period, failingFetch(t))
	require.NoError(t, err)

	// O dado velho é servido na hora, nunca bloqueia esperando o refresh
	assert.False(t, result.IsFresh)
	assert.True(t, result.IsUpdating)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, int64(300), result.Data.Totals.Pageviews)
}

func TestSmartCacheSubsetExtraction(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	// Janela canônica de 30 dias fresca em cache, uma linha por dia
	window := domain.LastNDays(smartNow, 30)
	rows := make([]domain.DailyRow, 0, 30)
	for d := window.StartDate; !d.After(window.EndDate); d = d.AddDate(0, 0, 1) {
		rows = append(rows, domain.DailyRow{
			Date:               d.Format(time.DateOnly),
			Pageviews:          10,
			Sessions:           5,
			Users:              4,
			BounceRate:         0.50,
			AvgSessionDuration: 100,
		})
	}
	windowData := &domain.PropertyMetrics{Totals: domain.ComputeTotals(rows), Rows: rows}
	putEntry(t, store, KeyForProperty(property.SourceID, window), windowData, smartNow.Add(-time.Minute))

	period := domain.LastNDays(smartNow, 7)

	result, err := smart.GetWithSmartCache(context.Background(), property, period, failingFetch(t))
	require.NoError(t, err)

	// Derivado da janela maior: 7 linhas filtradas e totais recalculados
	assert.True(t, result.FromSubset)
	assert.True(t, result.IsFresh)
	assert.Len(t, result.Data.Rows, 7)
	assert.Equal(t, int64(70), result.Data.Totals.Pageviews)
	assert.InDelta(t, 0.50, result.Data.Totals.BounceRate, 0.0001)
}

func TestSmartCacheColdStartFetchesAndStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	store, mr := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)
	exactKey := KeyForProperty(property.SourceID, period)

	recorder := mocks.NewMockRecorder(ctrl)
	recorder.EXPECT().RecordCacheMiss(gomock.Any(), property.ID)
	// A latência vem do mesmo relógio injetado nas duas pontas da medição:
	// sob relógio fixo ela é exatamente zero
	recorder.EXPECT().RecordAPICall(gomock.Any(), property.ID, int64(0), true)
	recorder.EXPECT().RecordQuotaTokens(gomock.Any(), property.ID, int64(1))

	smart := NewSmartCache(store, NewRateLimiter(store), nil, recorder).WithClock(fixedClock(smartNow))

	data := sampleMetrics()
	fetch := func(ctx context.Context) (*domain.PropertyMetrics, error) { return data, nil }

	result, err := smart.GetWithSmartCache(context.Background(), property, period, fetch)
	require.NoError(t, err)

	assert.True(t, result.IsFresh)
	assert.Equal(t, int64(300), result.Data.Totals.Pageviews)

	// O payload principal expira com o TTL dinâmico (15m fora do pico)
	assert.Equal(t, 15*time.Minute, mr.TTL(exactKey))
	assert.Equal(t, 15*time.Minute, mr.TTL(TimestampKey(exactKey)))

	// O last_success nunca expira
	require.True(t, mr.Exists(LastSuccessKey(exactKey)))
	assert.Equal(t, time.Duration(0), mr.TTL(LastSuccessKey(exactKey)))
}

func TestSmartCacheRateLimitedFallsBackToLastSuccess(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)
	exactKey := KeyForProperty(property.SourceID, period)

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	// Orçamento da janela já estourado (allowance = 3 para 15m/12h)
	limiter := NewRateLimiter(store)
	for i := 0; i < property.RateLimitAllowance(); i++ {
		_, err := limiter.Allow(context.Background(), property)
		require.NoError(t, err)
	}

	putEntry(t, store, LastSuccessKey(exactKey), sampleMetrics(), smartNow.Add(-2*time.Hour))

	result, err := smart.GetWithSmartCache(context.Background(), property, period, failingFetch(t))
	require.NoError(t, err)

	assert.False(t, result.IsFresh)
	assert.Contains(t, result.Message, "limite de requisições")
	assert.Equal(t, int64(300), result.Data.Totals.Pageviews)
}

func TestSmartCacheRateLimitedWithoutFallback(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	limiter := NewRateLimiter(store)
	for i := 0; i < property.RateLimitAllowance(); i++ {
		_, err := limiter.Allow(context.Background(), property)
		require.NoError(t, err)
	}

	_, err := smart.GetWithSmartCache(context.Background(), property, period, failingFetch(t))
	require.Error(t, err)

	rateErr, ok := AsRateLimitError(err)
	require.True(t, ok)
	assert.Equal(t, property.ID, rateErr.PropertyID)
	assert.Greater(t, rateErr.RetryAfter, time.Duration(0))
}

func TestSmartCacheFetchFailureFallsBackToLastSuccess(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)
	exactKey := KeyForProperty(property.SourceID, period)

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	putEntry(t, store, LastSuccessKey(exactKey), sampleMetrics(), smartNow.Add(-3*time.Hour))

	fetch := func(ctx context.Context) (*domain.PropertyMetrics, error) {
		return nil, errors.New("503 service unavailable")
	}

	result, err := smart.GetWithSmartCache(context.Background(), property, period, fetch)
	require.NoError(t, err)

	assert.False(t, result.IsFresh)
	assert.Contains(t, result.Message, "falha temporária")
	assert.Equal(t, int64(300), result.Data.Totals.Pageviews)
}

func TestSmartCacheFetchFailureWithoutFallback(t *testing.T) {
	store, _ := newTestStore(t)
	property := testProperty()
	period := domain.LastNDays(smartNow, 7)

	smart := NewSmartCache(store, NewRateLimiter(store), nil, nil).WithClock(fixedClock(smartNow))

	upstream := errors.New("503 service unavailable")
	fetch := func(ctx context.Context) (*domain.PropertyMetrics, error) {
		return nil, fmt.Errorf("ga4: %w", upstream)
	}

	_, err := smart.GetWithSmartCache(context.Background(), property, period, fetch)
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, property.SourceID, upstreamErr.SourceID)
	assert.ErrorIs(t, err, upstream)
}
