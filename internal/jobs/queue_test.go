package jobs

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
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

func testJob(key string) domain.RefreshJob {
	return domain.RefreshJob{
		Kind:       domain.RefreshKindExact,
		CacheKey:   key,
		PropertyID: 1,
		SourceID:   "354210",
		StartDate:  "2024-05-09",
		EndDate:    "2024-05-15",
	}
}

func TestRefreshQueueExecutesJobs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var executed []string
	done := make(chan struct{})

	queue := NewRefreshQueue(store, 2, func(_ context.Context, job domain.RefreshJob) error {
		mu.Lock()
		executed = append(executed, job.CacheKey)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	queue.Start(ctx)
	defer queue.Stop()

	require.NoError(t, queue.ScheduleUnique(ctx, "job-a", testJob("chave-a")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("o job não foi executado dentro do prazo")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"chave-a"}, executed)
}

func TestRefreshQueueDeduplicatesPendingJobs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var executions atomic.Int64
	release := make(chan struct{})

	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		executions.Add(1)
		<-release
		return nil
	})

	queue.Start(ctx)

	// O mesmo identificador agendado três vezes enquanto o primeiro roda
	require.NoError(t, queue.ScheduleUnique(ctx, "job-a", testJob("chave-a")))
	require.NoError(t, queue.ScheduleUnique(ctx, "job-a", testJob("chave-a")))
	require.NoError(t, queue.ScheduleUnique(ctx, "job-a", testJob("chave-a")))

	close(release)
	queue.Stop()

	assert.Equal(t, int64(1), executions.Load())
}

func TestRefreshQueueMarkerReleasedAfterExecution(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	done := make(chan struct{})
	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		close(done)
		return nil
	})

	queue.Start(ctx)

	require.NoError(t, queue.ScheduleUnique(ctx, "job-a", testJob("chave-a")))

	<-done
	queue.Stop()

	// Com o marcador liberado, o mesmo identificador pode ser reagendado
	assert.False(t, mr.Exists(markerKey("job-a")))
}

func TestRefreshQueueFullReturnsError(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// Fila nunca iniciada: o buffer enche e transborda
	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		return nil
	})

	for i := 0; i < defaultBufferSize; i++ {
		jobID := "job-" + strconv.Itoa(i)
		require.NoError(t, queue.ScheduleUnique(ctx, jobID, testJob(jobID)))
	}

	err := queue.ScheduleUnique(ctx, "job-transbordo", testJob("chave-transbordo"))
	assert.ErrorIs(t, err, ErrQueueFull)

	// O marcador do job rejeitado é devolvido: nada fica preso
	assert.False(t, mr.Exists(markerKey("job-transbordo")))
}

func TestRefreshQueueSurvivesPanicInExecutor(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	first := true
	done := make(chan struct{})

	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		if first {
			first = false
			panic("executor quebrado")
		}
		close(done)
		return nil
	})

	queue.Start(ctx)
	defer queue.Stop()

	require.NoError(t, queue.ScheduleUnique(ctx, "job-panico", testJob("chave-a")))
	require.NoError(t, queue.ScheduleUnique(ctx, "job-seguinte", testJob("chave-b")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("o worker não sobreviveu ao panic do executor")
	}

	assert.False(t, mr.Exists(markerKey("job-panico")))
}

func TestRefreshQueueScheduleAfterStopReturnsError(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		return nil
	})

	queue.Start(ctx)
	queue.Stop()

	err := queue.ScheduleUnique(ctx, "job-tardio", testJob("chave-tardia"))
	require.Error(t, err)

	// O marcador do job rejeitado é devolvido: nada fica preso
	assert.False(t, mr.Exists(markerKey("job-tardio")))
}

func TestRefreshQueueStopDrainsBufferedJobs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var executions atomic.Int64
	queue := NewRefreshQueue(store, 1, func(_ context.Context, _ domain.RefreshJob) error {
		executions.Add(1)
		return nil
	})

	// Enfileira antes de subir o worker: tudo fica no buffer
	for i := 0; i < 5; i++ {
		jobID := "job-" + strconv.Itoa(i)
		require.NoError(t, queue.ScheduleUnique(ctx, jobID, testJob(jobID)))
	}

	queue.Start(ctx)
	queue.Stop()

	assert.Equal(t, int64(5), executions.Load())
}

func TestRefreshQueueStopConcurrentWithSchedule(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	queue := NewRefreshQueue(store, 2, func(_ context.Context, _ domain.RefreshJob) error {
		return nil
	})

	queue.Start(ctx)

	// Agendamentos concorrentes com o encerramento: depois do Stop o
	// agendamento falha com erro, nunca com envio em canal fechado
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				jobID := "job-" + strconv.Itoa(g) + "-" + strconv.Itoa(i)
				_ = queue.ScheduleUnique(ctx, jobID, testJob(jobID))
			}
		}(g)
	}

	queue.Stop()
	wg.Wait()
}
