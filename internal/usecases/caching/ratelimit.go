package caching

import (
	"context"
	"time"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// RateLimiter controla o orçamento de chamadas à API externa por
// propriedade: janela fixa de sync_frequency minutos com
// ceil(rate_limit_per_hour / (60 / sync_frequency)) tentativas. O contador
// vive no store compartilhado, então o limite vale para todas as instâncias.
type RateLimiter struct {
	store cache.Store
}

func NewRateLimiter(store cache.Store) *RateLimiter {
	return &RateLimiter{store: store}
}

// Allow registra uma tentativa e informa se ela cabe no orçamento da janela
// corrente. Quando negada, retorna também o tempo até a janela reabrir.
func (l *RateLimiter) Allow(ctx context.Context, property *domain.Property) (*RateLimitDecision, error) {
	key := KeyForRateLimit(property.ID)
	window := property.RateLimitWindow()

	count, err := l.store.Increment(ctx, key, window)
	if err != nil {
		return nil, err
	}

	allowance := property.RateLimitAllowance()
	if count <= int64(allowance) {
		return &RateLimitDecision{Allowed: true, Remaining: allowance - int(count)}, nil
	}

	retryAfter, err := l.store.TTL(ctx, key)
	if err != nil {
		return nil, err
	}
	if retryAfter <= 0 {
		retryAfter = window
	}

	return &RateLimitDecision{Allowed: false, RetryAfter: retryAfter}, nil
}

// RateLimitDecision é o veredito de uma tentativa contra o limitador.
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}
