package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/pkg/utils"
)

const (
	// Retenção dos contadores. Os horários sobrevivem um dia inteiro para
	// permitir comparações hora a hora; os diários, uma semana.
	hourlyRetention = 25 * time.Hour
	dailyRetention  = 8 * 24 * time.Hour

	// Orçamento diário de tokens da API externa por propriedade.
	DailyQuotaBudget = 25000
)

// StoreRecorder implementa o contrato de instrumentação do cache sobre o
// store compartilhado: contadores por hora e por dia, por propriedade.
// Registro nunca falha para o chamador — erros viram warning no log.
type StoreRecorder struct {
	store cache.Store
	now   func() time.Time
}

func NewStoreRecorder(store cache.Store) *StoreRecorder {
	return &StoreRecorder{
		store: store,
		now:   time.Now,
	}
}

// WithClock troca a fonte de tempo. Somente para testes.
func (r *StoreRecorder) WithClock(now func() time.Time) *StoreRecorder {
	r.now = now
	return r
}

func (r *StoreRecorder) RecordCacheHit(ctx context.Context, propertyID int64) {
	r.bump(ctx, propertyID, "cache_hits", 1)
}

func (r *StoreRecorder) RecordCacheMiss(ctx context.Context, propertyID int64) {
	r.bump(ctx, propertyID, "cache_misses", 1)
}

func (r *StoreRecorder) RecordAPICall(ctx context.Context, propertyID int64, latencyMillis int64, success bool) {
	r.bump(ctx, propertyID, "api_calls", 1)
	r.bump(ctx, propertyID, "api_latency_ms", latencyMillis)
	if !success {
		r.bump(ctx, propertyID, "api_errors", 1)
	}
}

func (r *StoreRecorder) RecordQuotaTokens(ctx context.Context, propertyID int64, tokens int64) {
	day := r.now().Format(time.DateOnly)
	key := fmt.Sprintf("analytics:metrics:daily:%d:%s:quota_tokens", propertyID, day)

	if _, err := r.store.IncrementBy(ctx, key, tokens, dailyRetention); err != nil {
		logrus.WithError(err).WithField("property_id", propertyID).
			Warn("metrics: falha ao registrar tokens de cota")
	}
}

// Snapshot é o retrato operacional de uma propriedade na hora corrente.
type Snapshot struct {
	PropertyID      int64   `json:"property_id"`
	Hour            string  `json:"hour"`
	APICalls        int64   `json:"api_calls"`
	APIErrors       int64   `json:"api_errors"`
	SuccessRate     float64 `json:"success_rate"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	CacheHits       int64   `json:"cache_hits"`
	CacheMisses     int64   `json:"cache_misses"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	QuotaTokensUsed int64   `json:"quota_tokens_used"`
	QuotaRemaining  int64   `json:"quota_remaining"`
}

// Snapshot lê os contadores da hora corrente e o consumo de cota do dia.
func (r *StoreRecorder) Snapshot(ctx context.Context, propertyID int64) (*Snapshot, error) {
	now := r.now()
	hour := now.Format("2006-01-02-15")
	day := now.Format(time.DateOnly)

	snapshot := &Snapshot{
		PropertyID: propertyID,
		Hour:       hour,
	}

	var err error
	if snapshot.APICalls, err = r.read(ctx, hourlyKey(propertyID, hour, "api_calls")); err != nil {
		return nil, err
	}
	if snapshot.APIErrors, err = r.read(ctx, hourlyKey(propertyID, hour, "api_errors")); err != nil {
		return nil, err
	}
	if snapshot.CacheHits, err = r.read(ctx, hourlyKey(propertyID, hour, "cache_hits")); err != nil {
		return nil, err
	}
	if snapshot.CacheMisses, err = r.read(ctx, hourlyKey(propertyID, hour, "cache_misses")); err != nil {
		return nil, err
	}

	latencySum, err := r.read(ctx, hourlyKey(propertyID, hour, "api_latency_ms"))
	if err != nil {
		return nil, err
	}

	quotaKey := fmt.Sprintf("analytics:metrics:daily:%d:%s:quota_tokens", propertyID, day)
	if snapshot.QuotaTokensUsed, err = r.read(ctx, quotaKey); err != nil {
		return nil, err
	}

	if snapshot.APICalls > 0 {
		snapshot.SuccessRate = utils.RoundWithTwoDecimalPlace(float64(snapshot.APICalls-snapshot.APIErrors) / float64(snapshot.APICalls))
		snapshot.AvgLatencyMs = utils.RoundWithTwoDecimalPlace(float64(latencySum) / float64(snapshot.APICalls))
	}

	if lookups := snapshot.CacheHits + snapshot.CacheMisses; lookups > 0 {
		snapshot.CacheHitRate = utils.RoundWithTwoDecimalPlace(float64(snapshot.CacheHits) / float64(lookups))
	}

	snapshot.QuotaRemaining = DailyQuotaBudget - snapshot.QuotaTokensUsed
	if snapshot.QuotaRemaining < 0 {
		snapshot.QuotaRemaining = 0
	}

	return snapshot, nil
}

func (r *StoreRecorder) bump(ctx context.Context, propertyID int64, counter string, delta int64) {
	if delta == 0 {
		return
	}

	hour := r.now().Format("2006-01-02-15")
	if _, err := r.store.IncrementBy(ctx, hourlyKey(propertyID, hour, counter), delta, hourlyRetention); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"property_id": propertyID,
			"counter":     counter,
		}).Warn("metrics: falha ao incrementar contador")
	}
}

func (r *StoreRecorder) read(ctx context.Context, key string) (int64, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("contador corrompido em %s: %w", key, err)
	}

	return value, nil
}

func hourlyKey(propertyID int64, hour, counter string) string {
	return fmt.Sprintf("analytics:metrics:hourly:%d:%s:%s", propertyID, hour, counter)
}
