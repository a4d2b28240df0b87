package caching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// FetchFunc é a busca síncrona executada quando nenhum cache serve.
type FetchFunc func(ctx context.Context) (*domain.PropertyMetrics, error)

// SmartCache embrulha o store com a escada de decisão por propriedade:
// cache exato fresco → extração de subconjunto → limite de requisições →
// busca síncrona com TTL dinâmico. Dados velhos são servidos na hora com um
// refresh agendado em background; o last_success nunca expira e é o
// fallback de última instância.
type SmartCache struct {
	store     cache.Store
	limiter   *RateLimiter
	refresher RefreshScheduler
	recorder  Recorder

	// injetável nos testes
	now func() time.Time
}

func NewSmartCache(store cache.Store, limiter *RateLimiter, refresher RefreshScheduler, recorder Recorder) *SmartCache {
	return &SmartCache{
		store:     store,
		limiter:   limiter,
		refresher: refresher,
		recorder:  recorder,
		now:       time.Now,
	}
}

// WithClock troca a fonte de tempo. Somente para testes.
func (c *SmartCache) WithClock(now func() time.Time) *SmartCache {
	c.now = now
	return c
}

// GetWithSmartCache resolve as métricas de uma propriedade para um período,
// preferindo sempre responder com algum payload a propagar erro transitório.
func (c *SmartCache) GetWithSmartCache(
	ctx context.Context,
	property *domain.Property,
	period domain.Period,
	fetch FetchFunc,
) (*domain.CachedMetrics, error) {
	exactKey := KeyForProperty(property.SourceID, period)
	now := c.now()

	// 1. Cache exato
	if data, cachedAt, ok := c.readEntry(ctx, exactKey); ok {
		age := now.Sub(cachedAt)

		if age < FreshnessWindow(now) {
			c.recordHit(ctx, property.ID)
			return freshEnvelope(data, cachedAt, age), nil
		}

		// Velho porém presente: serve imediatamente e agenda no máximo um
		// refresh em background.
		scheduled := c.scheduleExactRefresh(ctx, property, period, exactKey)
		c.recordHit(ctx, property.ID)

		return &domain.CachedMetrics{
			Data:            data,
			CachedAt:        cachedAt,
			CacheAgeSeconds: int64(age.Seconds()),
			IsFresh:         false,
			IsUpdating:      scheduled,
			Message:         "dados em atualização; exibindo a última versão disponível",
		}, nil
	}

	c.recordMiss(ctx, property.ID)

	// 2. Extração de subconjunto de uma janela canônica maior já em cache
	if result := c.fromSubset(ctx, property, period, now); result != nil {
		return result, nil
	}

	// 3. Orçamento de requisições da propriedade
	decision, err := c.limiter.Allow(ctx, property)
	if err != nil {
		logrus.WithError(err).WithField("property_id", property.ID).
			Warn("cache: falha ao consultar o rate limiter, seguindo para a busca")
		decision = &RateLimitDecision{Allowed: true}
	}

	if !decision.Allowed {
		if fallback := c.lastSuccessFallback(ctx, exactKey, now); fallback != nil {
			fallback.Message = "limite de requisições atingido; exibindo os últimos dados conhecidos"
			return fallback, nil
		}

		return nil, &RateLimitError{PropertyID: property.ID, RetryAfter: decision.RetryAfter}
	}

	// 4. Busca síncrona (cold start)
	started := c.now()
	data, err := fetch(ctx)
	c.recordAPICall(ctx, property.ID, c.now().Sub(started).Milliseconds(), err == nil)

	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"property_id": property.ID,
			"source_id":   property.SourceID,
			"period":      period.String(),
		}).Warn("cache: busca síncrona falhou, tentando o último sucesso")

		if fallback := c.lastSuccessFallback(ctx, exactKey, now); fallback != nil {
			fallback.Message = "falha temporária na API de analytics; exibindo os últimos dados conhecidos"
			return fallback, nil
		}

		return nil, &UpstreamError{SourceID: property.SourceID, Err: err}
	}

	if err := c.StoreResult(ctx, property, period, data); err != nil {
		// A gravação falhar não invalida o dado que acabou de chegar
		logrus.WithError(err).WithField("key", exactKey).Warn("cache: falha ao gravar o resultado")
	}

	return freshEnvelope(data, c.now(), 0), nil
}

// StoreResult grava o payload no cache exato com TTL dinâmico, registra o
// instante da escrita e replica no last_success, que não expira.
func (c *SmartCache) StoreResult(
	ctx context.Context,
	property *domain.Property,
	period domain.Period,
	data *domain.PropertyMetrics,
) error {
	exactKey := KeyForProperty(property.SourceID, period)
	now := c.now()

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	ttl := DynamicTTL(property, now)

	if err := c.store.Put(ctx, exactKey, string(payload), ttl); err != nil {
		return err
	}
	if err := c.store.Put(ctx, TimestampKey(exactKey), now.Format(time.RFC3339), ttl); err != nil {
		return err
	}

	// Fallback de última instância: mesma carga, sem expiração
	if err := c.store.Put(ctx, LastSuccessKey(exactKey), string(payload), 0); err != nil {
		return err
	}
	if err := c.store.Put(ctx, TimestampKey(LastSuccessKey(exactKey)), now.Format(time.RFC3339), 0); err != nil {
		return err
	}

	return nil
}

// fromSubset procura uma janela canônica maior (30/60/90 dias) fresca que
// contenha o período e deriva o resultado filtrando as linhas em memória,
// sem nova chamada à API. Totais são recalculados a partir das linhas
// filtradas: soma para aditivos, média para taxas.
func (c *SmartCache) fromSubset(
	ctx context.Context,
	property *domain.Property,
	period domain.Period,
	now time.Time,
) *domain.CachedMetrics {
	for _, days := range subsetWindowDays {
		window := domain.LastNDays(now, days)
		if !window.Contains(period) {
			continue
		}

		windowKey := KeyForProperty(property.SourceID, window)
		data, cachedAt, ok := c.readEntry(ctx, windowKey)
		if !ok {
			continue
		}

		age := now.Sub(cachedAt)
		if age >= FreshnessWindow(now) {
			continue
		}

		filtered := make([]domain.DailyRow, 0, period.Days())
		for _, row := range data.Rows {
			if period.ContainsDate(row.Date) {
				filtered = append(filtered, row)
			}
		}

		logrus.WithFields(logrus.Fields{
			"property_id": property.ID,
			"window_days": days,
			"period":      period.String(),
			"rows":        len(filtered),
		}).Debug("cache: período derivado de janela maior em cache")

		c.recordHit(ctx, property.ID)

		return &domain.CachedMetrics{
			Data: &domain.PropertyMetrics{
				Totals: domain.ComputeTotals(filtered),
				Rows:   filtered,
			},
			CachedAt:        cachedAt,
			CacheAgeSeconds: int64(age.Seconds()),
			IsFresh:         true,
			FromSubset:      true,
		}
	}

	return nil
}

// lastSuccessFallback lê o último payload bem-sucedido, se existir.
func (c *SmartCache) lastSuccessFallback(ctx context.Context, exactKey string, now time.Time) *domain.CachedMetrics {
	raw, ok, err := c.store.Get(ctx, LastSuccessKey(exactKey))
	if err != nil || !ok {
		return nil
	}

	var data domain.PropertyMetrics
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logrus.WithError(err).WithField("key", exactKey).Warn("cache: last_success corrompido, descartando")
		return nil
	}

	cachedAt := c.readTimestamp(ctx, LastSuccessKey(exactKey))

	return &domain.CachedMetrics{
		Data:            &data,
		CachedAt:        cachedAt,
		CacheAgeSeconds: int64(now.Sub(cachedAt).Seconds()),
		IsFresh:         false,
	}
}

// readEntry lê payload e instante de escrita de uma chave base.
func (c *SmartCache) readEntry(ctx context.Context, key string) (*domain.PropertyMetrics, time.Time, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache: erro de leitura no store")
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}

	var data domain.PropertyMetrics
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache: payload corrompido, descartando")
		return nil, time.Time{}, false
	}

	return &data, c.readTimestamp(ctx, key), true
}

func (c *SmartCache) readTimestamp(ctx context.Context, key string) time.Time {
	raw, ok, err := c.store.Get(ctx, TimestampKey(key))
	if err != nil || !ok {
		return time.Time{}
	}

	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return ts
}

func (c *SmartCache) scheduleExactRefresh(
	ctx context.Context,
	property *domain.Property,
	period domain.Period,
	exactKey string,
) bool {
	if c.refresher == nil {
		return false
	}

	scheduled, err := c.refresher.MaybeScheduleRefresh(ctx, domain.RefreshJob{
		Kind:       domain.RefreshKindExact,
		CacheKey:   exactKey,
		PropertyID: property.ID,
		SourceID:   property.SourceID,
		StartDate:  period.StartDate.Format(time.DateOnly),
		EndDate:    period.EndDate.Format(time.DateOnly),
	})
	if err != nil {
		logrus.WithError(err).WithField("key", exactKey).Warn("cache: falha ao agendar refresh em background")
		return false
	}

	return scheduled
}

func (c *SmartCache) recordHit(ctx context.Context, propertyID int64) {
	if c.recorder != nil {
		c.recorder.RecordCacheHit(ctx, propertyID)
	}
}

func (c *SmartCache) recordMiss(ctx context.Context, propertyID int64) {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(ctx, propertyID)
	}
}

func (c *SmartCache) recordAPICall(ctx context.Context, propertyID int64, latencyMillis int64, success bool) {
	if c.recorder != nil {
		c.recorder.RecordAPICall(ctx, propertyID, latencyMillis, success)
		c.recorder.RecordQuotaTokens(ctx, propertyID, 1)
	}
}

func freshEnvelope(data *domain.PropertyMetrics, cachedAt time.Time, age time.Duration) *domain.CachedMetrics {
	return &domain.CachedMetrics{
		Data:            data,
		CachedAt:        cachedAt,
		CacheAgeSeconds: int64(age.Seconds()),
		IsFresh:         true,
	}
}
