package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

// Executor processa um job de refresh. Injetado na construção para que o
// pacote de fila não conheça os serviços de cache.
type Executor func(ctx context.Context, job domain.RefreshJob) error

// Queue enfileira jobs de refresh com deduplicação por identificador.
type Queue interface {
	ScheduleUnique(ctx context.Context, jobID string, job domain.RefreshJob) error
}

// ErrQueueFull indica que o buffer de jobs está cheio. O chamador trata
// como "refresh não agendado": o dado velho continua sendo servido e uma
// próxima requisição tentará de novo.
var ErrQueueFull = errors.New("fila de refresh cheia")

const (
	defaultBufferSize = 256

	// O marcador de unicidade vive um pouco mais que o job típico para
	// absorver rajadas de requisições sobre a mesma chave.
	uniqueMarkerTTL = 2 * time.Minute
)

// RefreshQueue é a fila em memória com workers fixos. A deduplicação usa um
// marcador SETNX no store compartilhado, então instâncias distintas não
// enfileiram o mesmo job ao mesmo tempo.
type RefreshQueue struct {
	store   cache.Store
	execute Executor

	jobs    chan queuedJob
	wg      sync.WaitGroup
	once    sync.Once
	closed  chan struct{}
	workers int
}

type queuedJob struct {
	id  string
	job domain.RefreshJob
}

func NewRefreshQueue(store cache.Store, workers int, execute Executor) *RefreshQueue {
	if workers <= 0 {
		workers = 2
	}

	return &RefreshQueue{
		store:   store,
		execute: execute,
		jobs:    make(chan queuedJob, defaultBufferSize),
		closed:  make(chan struct{}),
		workers: workers,
	}
}

// Start sobe os workers. Deve ser chamado uma única vez, antes de qualquer
// ScheduleUnique.
func (q *RefreshQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	logrus.WithField("workers", q.workers).Info("fila de refresh iniciada")
}

// Stop fecha a fila e espera os workers drenarem os jobs pendentes. O canal
// de jobs nunca é fechado: um ScheduleUnique concorrente com o encerramento
// recebe erro em vez de provocar envio em canal fechado.
func (q *RefreshQueue) Stop() {
	q.once.Do(func() {
		close(q.closed)
	})
	q.wg.Wait()
}

// ScheduleUnique enfileira o job se nenhum outro com o mesmo identificador
// estiver pendente. Enfileirar um duplicado é um no-op silencioso.
func (q *RefreshQueue) ScheduleUnique(ctx context.Context, jobID string, job domain.RefreshJob) error {
	acquired, err := q.store.SetIfAbsent(ctx, markerKey(jobID), "1", uniqueMarkerTTL)
	if err != nil {
		return err
	}
	if !acquired {
		logrus.WithField("job_id", jobID).Debug("job já enfileirado, ignorando duplicado")
		return nil
	}

	select {
	case <-q.closed:
		q.releaseMarker(ctx, jobID)
		return errors.New("fila de refresh encerrada")
	default:
	}

	select {
	case q.jobs <- queuedJob{id: jobID, job: job}:
		logrus.WithFields(logrus.Fields{
			"job_id": jobID,
			"kind":   job.Kind,
		}).Debug("job de refresh enfileirado")
		return nil
	default:
		q.releaseMarker(ctx, jobID)
		return ErrQueueFull
	}
}

func (q *RefreshQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()

	for {
		select {
		case item := <-q.jobs:
			q.process(ctx, id, item)
		case <-q.closed:
			// Drena o que já estava no buffer antes de sair
			for {
				select {
				case item := <-q.jobs:
					q.process(ctx, id, item)
				default:
					return
				}
			}
		}
	}
}

func (q *RefreshQueue) process(ctx context.Context, workerID int, item queuedJob) {
	defer q.releaseMarker(ctx, item.id)
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"worker": workerID,
				"job_id": item.id,
				"panic":  r,
			}).Error("panic ao processar job de refresh")
		}
	}()

	if err := q.execute(ctx, item.job); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"worker": workerID,
			"job_id": item.id,
			"kind":   item.job.Kind,
		}).Warn("job de refresh terminou com erro")
	}
}

func (q *RefreshQueue) releaseMarker(ctx context.Context, jobID string) {
	if err := q.store.Forget(ctx, markerKey(jobID)); err != nil {
		logrus.WithError(err).WithField("job_id", jobID).Warn("falha ao liberar marcador de unicidade")
	}
}

func markerKey(jobID string) string {
	return "jobs:pending:" + jobID
}
