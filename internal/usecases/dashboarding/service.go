package dashboarding

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/infrastructure/repository"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
)

// ErrAllPropertiesFailed indica que nenhuma propriedade contribuiu para o
// agregado. Falhas parciais não geram erro: aparecem no campo Errors.
var ErrAllPropertiesFailed = errors.New("todas as propriedades falharam na agregação")

// ErrPropertyNotFound indica que a propriedade pedida não existe ou está
// inativa.
var ErrPropertyNotFound = errors.New("propriedade não encontrada")

const topPagesLimit = 10

type Service interface {
	GetPropertyMetrics(ctx context.Context, propertyID int64, period domain.Period) (*domain.CachedMetrics, error)
	GetPropertyTopPages(ctx context.Context, propertyID int64, period domain.Period) ([]domain.TopPage, error)
	GetPropertyTrafficSources(ctx context.Context, propertyID int64, period domain.Period) ([]domain.TrafficSource, error)
	GetPropertyDevices(ctx context.Context, propertyID int64, period domain.Period) ([]domain.DeviceStat, error)
	GetDashboardData(ctx context.Context, period domain.Period) (*domain.DashboardData, error)
}

// service compõe o cache inteligente (métricas por período) com o rollup
// (desagregações) e tolera falhas parciais na visão agregada: uma
// propriedade fora do ar reduz o agregado, nunca o derruba.
type service struct {
	repo    repository.PropertyRepository
	fetcher caching.Fetcher
	smart   *caching.SmartCache
	rollup  *caching.RollupCache
	store   cache.Store
}

func NewService(
	repo repository.PropertyRepository,
	fetcher caching.Fetcher,
	smart *caching.SmartCache,
	rollup *caching.RollupCache,
	store cache.Store,
) Service {
	return &service{
		repo:    repo,
		fetcher: fetcher,
		smart:   smart,
		rollup:  rollup,
		store:   store,
	}
}

func (s *service) GetPropertyMetrics(ctx context.Context, propertyID int64, period domain.Period) (*domain.CachedMetrics, error) {
	property, err := s.activeProperty(propertyID)
	if err != nil {
		return nil, err
	}

	return s.smart.GetWithSmartCache(ctx, property, period, func(ctx context.Context) (*domain.PropertyMetrics, error) {
		return s.fetcher.FetchMetrics(ctx, property, period)
	})
}

func (s *service) GetPropertyTopPages(ctx context.Context, propertyID int64, period domain.Period) ([]domain.TopPage, error) {
	property, err := s.activeProperty(propertyID)
	if err != nil {
		return nil, err
	}

	return s.rollup.GetTopPagesForPeriod(ctx, property, period, topPagesLimit)
}

func (s *service) GetPropertyTrafficSources(ctx context.Context, propertyID int64, period domain.Period) ([]domain.TrafficSource, error) {
	property, err := s.activeProperty(propertyID)
	if err != nil {
		return nil, err
	}

	return s.rollup.GetTrafficSourcesForPeriod(ctx, property, period)
}

func (s *service) GetPropertyDevices(ctx context.Context, propertyID int64, period domain.Period) ([]domain.DeviceStat, error) {
	property, err := s.activeProperty(propertyID)
	if err != nil {
		return nil, err
	}

	return s.rollup.GetDevicesForPeriod(ctx, property, period)
}

// GetDashboardData monta a visão agregada de todas as propriedades ativas.
// Cada seção (métricas, páginas, origens, dispositivos) tolera falhas
// parciais de forma independente.
func (s *service) GetDashboardData(ctx context.Context, period domain.Period) (*domain.DashboardData, error) {
	properties, err := s.repo.ListActiveProperties()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar propriedades ativas")
	}

	if len(properties) == 0 {
		return &domain.DashboardData{
			Metrics: &domain.AggregateResult{
				Breakdown: []domain.PropertyBreakdown{},
				Errors:    []domain.PropertyError{},
			},
			TopPages:       []domain.TopPage{},
			TrafficSources: []domain.TrafficSource{},
			Devices:        []domain.DeviceStat{},
			Period:         period,
		}, nil
	}

	metrics, err := s.aggregateMetrics(ctx, properties, period)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardData{
		Metrics:         metrics,
		TopPages:        s.aggregateTopPages(ctx, properties, period),
		TrafficSources:  s.aggregateTrafficSources(ctx, properties, period),
		Devices:         s.aggregateDevices(ctx, properties, period),
		Period:          period,
		PropertiesCount: len(properties),
	}, nil
}

// aggregateMetrics soma as métricas aditivas e re-media as taxas sobre as
// propriedades que responderam. O resultado é memorizado sob a chave de
// agregado pela janela de frescor corrente.
func (s *service) aggregateMetrics(ctx context.Context, properties []*domain.Property, period domain.Period) (*domain.AggregateResult, error) {
	aggregateKey := caching.KeyForAggregate(nil, period)

	if cached := s.readAggregate(ctx, aggregateKey); cached != nil {
		return cached, nil
	}

	result := &domain.AggregateResult{
		Breakdown:       make([]domain.PropertyBreakdown, 0, len(properties)),
		TotalProperties: len(properties),
		Errors:          []domain.PropertyError{},
	}

	var bounceSum, durationSum float64

	for _, property := range properties {
		cached, err := s.smart.GetWithSmartCache(ctx, property, period, s.fetchFor(property, period))
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"property_id": property.ID,
				"period":      period.String(),
			}).Warn("dashboard: propriedade excluída do agregado")

			result.Errors = append(result.Errors, domain.PropertyError{
				PropertyID:   property.ID,
				PropertyName: property.Name,
				Message:      err.Error(),
			})
			continue
		}

		totals := cached.Data.Totals

		result.Totals.Pageviews += totals.Pageviews
		result.Totals.Sessions += totals.Sessions
		result.Totals.Users += totals.Users
		bounceSum += totals.BounceRate
		durationSum += totals.AvgSessionDuration

		result.Breakdown = append(result.Breakdown, domain.PropertyBreakdown{
			PropertyID:   property.ID,
			PropertyName: property.Name,
			Totals:       totals,
		})

		result.SuccessfulFetches++
	}

	if result.SuccessfulFetches == 0 {
		return nil, ErrAllPropertiesFailed
	}

	// Taxas são re-mediadas sobre quem respondeu, nunca somadas
	result.Totals.BounceRate = bounceSum / float64(result.SuccessfulFetches)
	result.Totals.AvgSessionDuration = durationSum / float64(result.SuccessfulFetches)

	s.writeAggregate(ctx, aggregateKey, result)

	return result, nil
}

func (s *service) aggregateTopPages(ctx context.Context, properties []*domain.Property, period domain.Period) []domain.TopPage {
	merged := make([]domain.TopPage, 0)

	for _, property := range properties {
		pages, err := s.rollup.GetTopPagesForPeriod(ctx, property, period, topPagesLimit)
		if err != nil {
			logrus.WithError(err).WithField("property_id", property.ID).
				Warn("dashboard: páginas da propriedade indisponíveis")
			continue
		}

		for _, page := range pages {
			page.PropertyName = property.Name
			merged = append(merged, page)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Pageviews != merged[j].Pageviews {
			return merged[i].Pageviews > merged[j].Pageviews
		}
		return merged[i].Path < merged[j].Path
	})

	if len(merged) > topPagesLimit {
		merged = merged[:topPagesLimit]
	}

	return merged
}

func (s *service) aggregateTrafficSources(ctx context.Context, properties []*domain.Property, period domain.Period) []domain.TrafficSource {
	type sourceKey struct{ source, medium string }
	grouped := make(map[sourceKey]*domain.TrafficSource)

	for _, property := range properties {
		sources, err := s.rollup.GetTrafficSourcesForPeriod(ctx, property, period)
		if err != nil {
			logrus.WithError(err).WithField("property_id", property.ID).
				Warn("dashboard: origens da propriedade indisponíveis")
			continue
		}

		for _, source := range sources {
			k := sourceKey{source.Source, source.Medium}
			entry, ok := grouped[k]
			if !ok {
				entry = &domain.TrafficSource{Source: source.Source, Medium: source.Medium}
				grouped[k] = entry
			}
			entry.Sessions += source.Sessions
			entry.Users += source.Users
			entry.Properties = append(entry.Properties, property.Name)
		}
	}

	merged := make([]domain.TrafficSource, 0, len(grouped))
	for _, entry := range grouped {
		merged = append(merged, *entry)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Sessions != merged[j].Sessions {
			return merged[i].Sessions > merged[j].Sessions
		}
		return merged[i].Source+merged[i].Medium < merged[j].Source+merged[j].Medium
	})

	return merged
}

func (s *service) aggregateDevices(ctx context.Context, properties []*domain.Property, period domain.Period) []domain.DeviceStat {
	grouped := make(map[string]*domain.DeviceStat)

	for _, property := range properties {
		devices, err := s.rollup.GetDevicesForPeriod(ctx, property, period)
		if err != nil {
			logrus.WithError(err).WithField("property_id", property.ID).
				Warn("dashboard: dispositivos da propriedade indisponíveis")
			continue
		}

		for _, device := range devices {
			entry, ok := grouped[device.Category]
			if !ok {
				entry = &domain.DeviceStat{Category: device.Category}
				grouped[device.Category] = entry
			}
			entry.Users += device.Users
			entry.Sessions += device.Sessions
		}
	}

	merged := make([]domain.DeviceStat, 0, len(grouped))
	for _, entry := range grouped {
		merged = append(merged, *entry)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Users != merged[j].Users {
			return merged[i].Users > merged[j].Users
		}
		return merged[i].Category < merged[j].Category
	})

	return merged
}

func (s *service) fetchFor(property *domain.Property, period domain.Period) caching.FetchFunc {
	return func(ctx context.Context) (*domain.PropertyMetrics, error) {
		return s.fetcher.FetchMetrics(ctx, property, period)
	}
}

func (s *service) activeProperty(propertyID int64) (*domain.Property, error) {
	property, err := s.repo.GetPropertyByID(propertyID)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao buscar a propriedade")
	}
	if property == nil || !property.Active {
		return nil, ErrPropertyNotFound
	}

	return property, nil
}

func (s *service) readAggregate(ctx context.Context, key string) *domain.AggregateResult {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}

	var result domain.AggregateResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("dashboard: agregado corrompido, descartando")
		return nil
	}

	return &result
}

func (s *service) writeAggregate(ctx context.Context, key string, result *domain.AggregateResult) {
	// Agregados com falhas parciais não são memorizados: a próxima
	// requisição tenta de novo as propriedades que falharam.
	if len(result.Errors) > 0 {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := s.store.Put(ctx, key, string(payload), caching.AggregateTTL); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("dashboard: falha ao memorizar o agregado")
	}
}
