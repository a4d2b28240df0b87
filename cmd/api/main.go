package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/cache"
	"github.com/expodigital/analytics-manager-api/infrastructure/database/postgres"
	"github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4"
	"github.com/expodigital/analytics-manager-api/infrastructure/integrator/ga4/ga4client"
	"github.com/expodigital/analytics-manager-api/infrastructure/repository"
	"github.com/expodigital/analytics-manager-api/internal/api"
	"github.com/expodigital/analytics-manager-api/internal/config"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/jobs"
	"github.com/expodigital/analytics-manager-api/internal/metrics"
	"github.com/expodigital/analytics-manager-api/internal/scheduler"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
	"github.com/expodigital/analytics-manager-api/internal/usecases/dashboarding"
	"github.com/expodigital/analytics-manager-api/internal/usecases/refreshing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	store := redisStore(ctx, cfg.Redis.URL)
	defer store.Close()

	propertyRepo := repository.NewPropertyRepository(pgConn)

	ga4Client := ga4client.NewClient(cfg)
	ga4Integrator := ga4.New(cfg, ga4Client)

	recorder := metrics.NewStoreRecorder(store)
	limiter := caching.NewRateLimiter(store)

	// A fila e o orquestrador de refresh são ligados em duas fases: o
	// executor precisa dos caches, e os caches precisam do orquestrador.
	var runner *refreshing.Runner
	queue := jobs.NewRefreshQueue(store, cfg.RefreshQueue.Workers, func(ctx context.Context, job domain.RefreshJob) error {
		return runner.Run(ctx, job)
	})

	orchestrator := refreshing.NewOrchestrator(store, queue)

	smartCache := caching.NewSmartCache(store, limiter, orchestrator, recorder)
	rollupCache := caching.NewRollupCache(store, ga4Integrator, orchestrator, recorder).
		WithFetchTimeout(time.Duration(cfg.GA4.RollupTimeoutSeconds) * time.Second)

	runner = refreshing.NewRunner(store, propertyRepo, ga4Integrator, smartCache, rollupCache)

	queue.Start(ctx)
	defer queue.Stop()

	dashboardService := dashboarding.NewService(propertyRepo, ga4Integrator, smartCache, rollupCache, store)

	// Inicializa o aquecedor de rollups
	rollupWarmSyncService := scheduler.NewRollupWarmSyncService(propertyRepo, rollupCache, cfg)
	if err := rollupWarmSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de aquecimento de rollups")
	} else {
		logrus.Info("Agendador de aquecimento de rollups iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		dashboardService,
		recorder,
		rollupWarmSyncService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// redisStore cria a conexão com o Redis compartilhado
func redisStore(ctx context.Context, redisURL string) *cache.RedisStore {
	store, err := cache.NewRedisStore(ctx, redisURL)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
	}

	logrus.Info("Conexão com Redis estabelecida com sucesso")
	return store
}
