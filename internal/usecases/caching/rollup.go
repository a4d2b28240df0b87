package caching

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

const (
	// RollupDays é o tamanho da janela rolante mantida por propriedade.
	RollupDays = 365

	// RollupTTL define por quanto tempo um rollup é considerado fresco.
	RollupTTL = 24 * time.Hour

	// RollupFetchTimeout limita a busca síncrona dos 365 dias completos.
	RollupFetchTimeout = 300 * time.Second
)

// RollupCache mantém um único objeto de 365 dias por propriedade e atende
// qualquer período contido na janela fatiando-o em memória, sem nova chamada
// à API. O objeto é substituído por inteiro a cada refresh: leitores veem o
// rollup antigo ou o novo, nunca uma mistura.
type RollupCache struct {
	store     cache.Store
	fetcher   Fetcher
	refresher RefreshScheduler
	recorder  Recorder

	now          func() time.Time
	fetchTimeout time.Duration
}

func NewRollupCache(store cache.Store, fetcher Fetcher, refresher RefreshScheduler, recorder Recorder) *RollupCache {
	return &RollupCache{
		store:        store,
		fetcher:      fetcher,
		refresher:    refresher,
		recorder:     recorder,
		now:          time.Now,
		fetchTimeout: RollupFetchTimeout,
	}
}

// WithClock troca a fonte de tempo. Somente para testes.
func (c *RollupCache) WithClock(now func() time.Time) *RollupCache {
	c.now = now
	return c
}

// WithFetchTimeout ajusta o limite da construção síncrona da janela completa.
func (c *RollupCache) WithFetchTimeout(timeout time.Duration) *RollupCache {
	if timeout > 0 {
		c.fetchTimeout = timeout
	}
	return c
}

// GetDataForPeriod fatia as linhas diárias do rollup para o período pedido e
// recalcula os totais a partir das linhas filtradas.
func (c *RollupCache) GetDataForPeriod(ctx context.Context, property *domain.Property, period domain.Period) (*domain.CachedMetrics, error) {
	rollup, meta, err := c.getRollup(ctx, property, period)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.DailyRow, 0, period.Days())
	for _, row := range rollup.Rows {
		if period.ContainsDate(row.Date) {
			filtered = append(filtered, row)
		}
	}

	meta.Data = &domain.PropertyMetrics{
		Totals: domain.ComputeTotals(filtered),
		Rows:   filtered,
	}

	return meta, nil
}

// GetTopPagesForPeriod filtra as linhas diárias de páginas e reagrupa por
// caminho, somando pageviews, em ordem decrescente até o limite.
func (c *RollupCache) GetTopPagesForPeriod(ctx context.Context, property *domain.Property, period domain.Period, limit int) ([]domain.TopPage, error) {
	rollup, _, err := c.getRollup(ctx, property, period)
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]int64)
	for _, row := range rollup.Pages {
		if period.ContainsDate(row.Date) {
			byPath[row.Path] += row.Pageviews
		}
	}

	pages := make([]domain.TopPage, 0, len(byPath))
	for path, views := range byPath {
		pages = append(pages, domain.TopPage{Path: path, Pageviews: views})
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Pageviews != pages[j].Pageviews {
			return pages[i].Pageviews > pages[j].Pageviews
		}
		return pages[i].Path < pages[j].Path
	})

	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}

	return pages, nil
}

// GetTrafficSourcesForPeriod filtra e reagrupa as origens de tráfego por
// (source, medium), somando sessões e usuários.
func (c *RollupCache) GetTrafficSourcesForPeriod(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.TrafficSource, error) {
	rollup, _, err := c.getRollup(ctx, property, period)
	if err != nil {
		return nil, err
	}

	type sourceKey struct{ source, medium string }
	grouped := make(map[sourceKey]*domain.TrafficSource)

	for _, row := range rollup.Sources {
		if !period.ContainsDate(row.Date) {
			continue
		}

		k := sourceKey{row.Source, row.Medium}
		entry, ok := grouped[k]
		if !ok {
			entry = &domain.TrafficSource{Source: row.Source, Medium: row.Medium}
			grouped[k] = entry
		}
		entry.Sessions += row.Sessions
		entry.Users += row.Users
	}

	sources := make([]domain.TrafficSource, 0, len(grouped))
	for _, entry := range grouped {
		sources = append(sources, *entry)
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Sessions != sources[j].Sessions {
			return sources[i].Sessions > sources[j].Sessions
		}
		return sources[i].Source+sources[i].Medium < sources[j].Source+sources[j].Medium
	})

	return sources, nil
}

// GetDevicesForPeriod filtra e reagrupa por categoria de dispositivo.
func (c *RollupCache) GetDevicesForPeriod(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DeviceStat, error) {
	rollup, _, err := c.getRollup(ctx, property, period)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*domain.DeviceStat)
	for _, row := range rollup.Devices {
		if !period.ContainsDate(row.Date) {
			continue
		}

		entry, ok := grouped[row.Category]
		if !ok {
			entry = &domain.DeviceStat{Category: row.Category}
			grouped[row.Category] = entry
		}
		entry.Users += row.Users
		entry.Sessions += row.Sessions
	}

	devices := make([]domain.DeviceStat, 0, len(grouped))
	for _, entry := range grouped {
		devices = append(devices, *entry)
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Users != devices[j].Users {
			return devices[i].Users > devices[j].Users
		}
		return devices[i].Category < devices[j].Category
	})

	return devices, nil
}

// RefreshRollup rebusca os 365 dias completos e substitui o objeto em cache
// atomicamente. Usado pelo executor de jobs em background e pelo warmer.
func (c *RollupCache) RefreshRollup(ctx context.Context, property *domain.Property) error {
	rollup, err := c.buildRollup(ctx, property)
	if err != nil {
		return err
	}

	return c.storeRollup(ctx, rollup)
}

// getRollup carrega o rollup da propriedade, construindo-o sincronamente no
// primeiro acesso. Um rollup velho é servido na hora; o refresh acontece em
// background sob lease.
func (c *RollupCache) getRollup(ctx context.Context, property *domain.Property, period domain.Period) (*domain.DailyRollup, *domain.CachedMetrics, error) {
	now := c.now()

	window := domain.LastNDays(now, RollupDays)
	if !window.Contains(period) {
		return nil, nil, ErrPeriodOutsideRollup
	}

	key := KeyForRollup(property.SourceID)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rollup: erro de leitura no store")
	}

	if ok {
		var rollup domain.DailyRollup
		if err := json.Unmarshal([]byte(raw), &rollup); err == nil {
			age := now.Sub(rollup.GeneratedAt)
			fresh := age < RollupTTL

			updating := false
			if !fresh {
				updating = c.scheduleRollupRefresh(ctx, property, key)
			}

			if c.recorder != nil {
				c.recorder.RecordCacheHit(ctx, property.ID)
			}

			return &rollup, &domain.CachedMetrics{
				CachedAt:        rollup.GeneratedAt,
				CacheAgeSeconds: int64(age.Seconds()),
				IsFresh:         fresh,
				IsUpdating:      updating,
			}, nil
		}

		logrus.WithField("key", key).Warn("rollup: payload corrompido, reconstruindo")
	}

	if c.recorder != nil {
		c.recorder.RecordCacheMiss(ctx, property.ID)
	}

	// Caminho frio: primeira requisição da propriedade
	rollup, err := c.buildRollup(ctx, property)
	if err != nil {
		return nil, nil, err
	}

	if err := c.storeRollup(ctx, rollup); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rollup: falha ao gravar o objeto recém-construído")
	}

	return rollup, &domain.CachedMetrics{
		CachedAt: rollup.GeneratedAt,
		IsFresh:  true,
	}, nil
}

// buildRollup busca os quatro conjuntos diários (métricas, páginas, origens,
// dispositivos) para a janela completa. Qualquer falha derruba a construção
// inteira: um rollup parcial nunca é gravado.
func (c *RollupCache) buildRollup(ctx context.Context, property *domain.Property) (*domain.DailyRollup, error) {
	now := c.now()
	window := domain.LastNDays(now, RollupDays)

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	started := time.Now()

	rows, err := c.fetcher.FetchDailyMetrics(fetchCtx, property, window)
	if err != nil {
		c.recordAPICall(ctx, property.ID, started, false)
		return nil, &UpstreamError{SourceID: property.SourceID, Err: err}
	}

	pages, err := c.fetcher.FetchDailyTopPages(fetchCtx, property, window)
	if err != nil {
		c.recordAPICall(ctx, property.ID, started, false)
		return nil, &UpstreamError{SourceID: property.SourceID, Err: err}
	}

	sources, err := c.fetcher.FetchDailyTrafficSources(fetchCtx, property, window)
	if err != nil {
		c.recordAPICall(ctx, property.ID, started, false)
		return nil, &UpstreamError{SourceID: property.SourceID, Err: err}
	}

	devices, err := c.fetcher.FetchDailyDevices(fetchCtx, property, window)
	if err != nil {
		c.recordAPICall(ctx, property.ID, started, false)
		return nil, &UpstreamError{SourceID: property.SourceID, Err: err}
	}

	c.recordAPICall(ctx, property.ID, started, true)

	logrus.WithFields(logrus.Fields{
		"property_id": property.ID,
		"source_id":   property.SourceID,
		"rows":        len(rows),
		"duration":    time.Since(started).String(),
	}).Info("rollup: janela de 365 dias reconstruída")

	return &domain.DailyRollup{
		PropertyID:  property.ID,
		SourceID:    property.SourceID,
		GeneratedAt: now,
		Rows:        rows,
		Pages:       pages,
		Sources:     sources,
		Devices:     devices,
	}, nil
}

// storeRollup grava o objeto inteiro sem expiração: o frescor é decidido
// por GeneratedAt e a substituição é um único SET atômico.
func (c *RollupCache) storeRollup(ctx context.Context, rollup *domain.DailyRollup) error {
	payload, err := json.Marshal(rollup)
	if err != nil {
		return err
	}

	return c.store.Put(ctx, KeyForRollup(rollup.SourceID), string(payload), 0)
}

func (c *RollupCache) scheduleRollupRefresh(ctx context.Context, property *domain.Property, key string) bool {
	if c.refresher == nil {
		return false
	}

	scheduled, err := c.refresher.MaybeScheduleRefresh(ctx, domain.RefreshJob{
		Kind:       domain.RefreshKindRollup,
		CacheKey:   key,
		PropertyID: property.ID,
		SourceID:   property.SourceID,
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("rollup: falha ao agendar refresh em background")
		return false
	}

	return scheduled
}

func (c *RollupCache) recordAPICall(ctx context.Context, propertyID int64, started time.Time, success bool) {
	if c.recorder != nil {
		c.recorder.RecordAPICall(ctx, propertyID, time.Since(started).Milliseconds(), success)
		c.recorder.RecordQuotaTokens(ctx, propertyID, 4) // quatro relatórios por reconstrução
	}
}
