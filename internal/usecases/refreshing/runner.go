package refreshing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/infrastructure/repository"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
)

// Cronogramas de retentativa por tipo de job. Rollups envolvem quatro
// relatórios de 365 dias, então os intervalos são mais espaçados.
var (
	exactBackoff  = []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second}
	rollupBackoff = []time.Duration{60 * time.Second, 120 * time.Second, 300 * time.Second}
)

// Runner executa jobs de refresh dentro dos workers da fila. O lease da
// chave é liberado sempre, mesmo quando todas as tentativas falham — um
// refresh futuro nunca fica bloqueado por uma falha passada.
type Runner struct {
	store   cache.Store
	repo    repository.PropertyRepository
	fetcher caching.Fetcher
	smart   *caching.SmartCache
	rollup  *caching.RollupCache

	// injetável nos testes para não dormir de verdade
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(
	store cache.Store,
	repo repository.PropertyRepository,
	fetcher caching.Fetcher,
	smart *caching.SmartCache,
	rollup *caching.RollupCache,
) *Runner {
	return &Runner{
		store:   store,
		repo:    repo,
		fetcher: fetcher,
		smart:   smart,
		rollup:  rollup,
		sleep:   sleepCtx,
	}
}

// Run processa um job com retentativas e backoff. Erros após a última
// tentativa são apenas registrados: o dado velho continua em cache e o
// last_success segue disponível, então não há o que propagar.
func (r *Runner) Run(ctx context.Context, job domain.RefreshJob) error {
	defer func() {
		if err := r.store.Forget(ctx, caching.RefreshingKey(job.CacheKey)); err != nil {
			logrus.WithError(err).WithField("key", job.CacheKey).Warn("falha ao liberar lease de refresh")
		}
	}()

	backoff := exactBackoff
	if job.Kind == domain.RefreshKindRollup {
		backoff = rollupBackoff
	}

	var lastErr error
	for attempt := 0; attempt <= len(backoff); attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, backoff[attempt-1]); err != nil {
				return err
			}
		}

		lastErr = r.execute(ctx, job)
		if lastErr == nil {
			if attempt > 0 {
				logrus.WithFields(logrus.Fields{
					"key":     job.CacheKey,
					"kind":    job.Kind,
					"attempt": attempt + 1,
				}).Info("refresh concluído após retentativa")
			}
			return nil
		}

		logrus.WithError(lastErr).WithFields(logrus.Fields{
			"key":     job.CacheKey,
			"kind":    job.Kind,
			"attempt": attempt + 1,
		}).Warn("tentativa de refresh falhou")
	}

	logrus.WithError(lastErr).WithFields(logrus.Fields{
		"key":  job.CacheKey,
		"kind": job.Kind,
	}).Error("refresh esgotou as retentativas; dado velho permanece em cache")

	return nil
}

func (r *Runner) execute(ctx context.Context, job domain.RefreshJob) error {
	// As configurações da propriedade podem ter mudado desde o agendamento
	property, err := r.repo.GetPropertyByID(job.PropertyID)
	if err != nil {
		return errors.Wrap(err, "erro ao recarregar a propriedade do job")
	}
	if property == nil {
		return errors.Errorf("propriedade %d do job não existe mais", job.PropertyID)
	}
	if !property.Active {
		logrus.WithField("property_id", property.ID).Info("propriedade inativa, refresh descartado")
		return nil
	}

	switch job.Kind {
	case domain.RefreshKindRollup:
		return r.rollup.RefreshRollup(ctx, property)

	case domain.RefreshKindExact:
		period, err := job.Period()
		if err != nil {
			return err
		}

		data, err := r.fetcher.FetchMetrics(ctx, property, period)
		if err != nil {
			return err
		}

		return r.smart.StoreResult(ctx, property, period, data)

	default:
		return errors.Errorf("tipo de job desconhecido: %s", job.Kind)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
