package refreshing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/jobs"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
)

// TTLs dos leases de refresh. O lease expira sozinho se o worker morrer no
// meio do job, então nenhuma chave fica travada para sempre.
const (
	LeaseTTLExact  = 5 * time.Minute
	LeaseTTLRollup = 30 * time.Minute
)

// Orchestrator garante no máximo um refresh em voo por chave de cache. O
// lease é um SETNX no store compartilhado: vale entre instâncias, não só
// entre goroutines.
type Orchestrator struct {
	store cache.Store
	queue jobs.Queue
}

func NewOrchestrator(store cache.Store, queue jobs.Queue) *Orchestrator {
	return &Orchestrator{
		store: store,
		queue: queue,
	}
}

// MaybeScheduleRefresh tenta adquirir o lease da chave e, em caso de
// sucesso, enfileira o job. Retorna true somente quando o job foi de fato
// enfileirado nesta chamada.
func (o *Orchestrator) MaybeScheduleRefresh(ctx context.Context, job domain.RefreshJob) (bool, error) {
	leaseKey := caching.RefreshingKey(job.CacheKey)

	acquired, err := o.store.SetIfAbsent(ctx, leaseKey, "1", leaseTTL(job.Kind))
	if err != nil {
		return false, err
	}
	if !acquired {
		logrus.WithField("key", job.CacheKey).Debug("refresh já em andamento, ignorando")
		return false, nil
	}

	if err := o.queue.ScheduleUnique(ctx, job.CacheKey, job); err != nil {
		// Sem job na fila o lease não seria liberado por ninguém
		if forgetErr := o.store.Forget(ctx, leaseKey); forgetErr != nil {
			logrus.WithError(forgetErr).WithField("key", job.CacheKey).
				Warn("falha ao devolver lease após erro de enfileiramento")
		}
		return false, err
	}

	logrus.WithFields(logrus.Fields{
		"key":  job.CacheKey,
		"kind": job.Kind,
	}).Info("refresh em background agendado")

	return true, nil
}

func leaseTTL(kind string) time.Duration {
	if kind == domain.RefreshKindRollup {
		return LeaseTTLRollup
	}
	return LeaseTTLExact
}
