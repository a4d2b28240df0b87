package caching

import (
	"context"

	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// Fetcher é o contrato com a API externa de analytics. Toda chamada pode
// falhar ou estourar o timeout; nenhum chamador assume sucesso. As variantes
// "Daily" carregam a dimensão de data e alimentam o rollup de 365 dias.
type Fetcher interface {
	FetchMetrics(ctx context.Context, property *domain.Property, period domain.Period) (*domain.PropertyMetrics, error)
	FetchTopPages(ctx context.Context, property *domain.Property, period domain.Period, limit int) ([]domain.TopPage, error)
	FetchTrafficSources(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.TrafficSource, error)
	FetchDevices(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DeviceStat, error)

	FetchDailyMetrics(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyRow, error)
	FetchDailyTopPages(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyPageRow, error)
	FetchDailyTrafficSources(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailySourceRow, error)
	FetchDailyDevices(ctx context.Context, property *domain.Property, period domain.Period) ([]domain.DailyDeviceRow, error)
}

// RefreshScheduler decide se um refresh em background deve ser disparado
// para uma chave prestes a ser servida velha. Retorna true quando um job
// foi de fato agendado; lease já em posse de outro worker é um no-op.
type RefreshScheduler interface {
	MaybeScheduleRefresh(ctx context.Context, job domain.RefreshJob) (bool, error)
}

// Recorder recebe eventos operacionais do cache. Instrumentação passiva:
// nunca participa das decisões de controle.
type Recorder interface {
	RecordCacheHit(ctx context.Context, propertyID int64)
	RecordCacheMiss(ctx context.Context, propertyID int64)
	RecordAPICall(ctx context.Context, propertyID int64, latencyMillis int64, success bool)
	RecordQuotaTokens(ctx context.Context, propertyID int64, tokens int64)
}
