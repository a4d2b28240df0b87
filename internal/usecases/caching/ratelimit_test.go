package caching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

func newTestStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisStoreWithClient(client), mr
}

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	store, _ := newTestStore(t)
	limiter := NewRateLimiter(store)
	ctx := context.Background()

	// 12 por hora em janelas de 10 minutos: 2 tentativas por janela
	property := &domain.Property{ID: 7, SyncFrequency: 10, RateLimitPerHour: 12}

	first, err := limiter.Allow(ctx, property)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := limiter.Allow(ctx, property)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)
}

func TestRateLimiterDeniesWhenExhausted(t *testing.T) {
	store, _ := newTestStore(t)
	limiter := NewRateLimiter(store)
	ctx := context.Background()

	property := &domain.Property{ID: 7, SyncFrequency: 10, RateLimitPerHour: 12}

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, property)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	denied, err := limiter.Allow(ctx, property)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Greater(t, denied.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, denied.RetryAfter, 10*time.Minute)
}

func TestRateLimiterWindowReopens(t *testing.T) {
	store, mr := newTestStore(t)
	limiter := NewRateLimiter(store)
	ctx := context.Background()

	property := &domain.Property{ID: 7, SyncFrequency: 10, RateLimitPerHour: 12}

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, property)
		require.NoError(t, err)
	}

	// A janela expira e o orçamento volta ao valor inicial
	mr.FastForward(11 * time.Minute)

	decision, err := limiter.Allow(ctx, property)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}
