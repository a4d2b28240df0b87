package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/expodigital/analytics-manager-api/infrastructure/repository"
	"github.com/expodigital/analytics-manager-api/internal/config"
	"github.com/expodigital/analytics-manager-api/internal/domain"
	"github.com/expodigital/analytics-manager-api/internal/usecases/caching"
)

// RollupWarmSyncConfig representa a configuração do aquecedor de rollups
type RollupWarmSyncConfig struct {
	CronSchedule        string
	RequestDelaySeconds int
	MaxConcurrentJobs   int
	SyncEnabled         bool
}

// RollupWarmSyncService reconstrói periodicamente o rollup de 365 dias de
// cada propriedade ativa, fora do horário de pico, para que as requisições
// de breakdown nunca paguem o custo da construção síncrona.
type RollupWarmSyncService struct {
	scheduler           *gocron.Scheduler
	config              RollupWarmSyncConfig
	propertyRepo        repository.PropertyRepository
	rollupCache         *caching.RollupCache
	baseCtx             context.Context
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewRollupWarmSyncService cria uma nova instância do aquecedor de rollups
func NewRollupWarmSyncService(
	propertyRepo repository.PropertyRepository,
	rollupCache *caching.RollupCache,
	appConfig *config.Config,
) *RollupWarmSyncService {
	warmConfig := RollupWarmSyncConfig{
		CronSchedule:        appConfig.RollupWarmSync.CronSchedule,
		RequestDelaySeconds: appConfig.RollupWarmSync.RequestDelaySeconds,
		MaxConcurrentJobs:   appConfig.RollupWarmSync.MaxConcurrentJobs,
		SyncEnabled:         appConfig.RollupWarmSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":         warmConfig.CronSchedule,
		"request_delay_seconds": warmConfig.RequestDelaySeconds,
		"max_concurrent_jobs":   warmConfig.MaxConcurrentJobs,
		"sync_enabled":          warmConfig.SyncEnabled,
	}).Info("Configuração do aquecedor de rollups carregada")

	return &RollupWarmSyncService{
		scheduler:    scheduler,
		config:       warmConfig,
		propertyRepo: propertyRepo,
		rollupCache:  rollupCache,
		baseCtx:      context.Background(),
		syncRunning:  false,
	}
}

// Start inicia o agendador
func (s *RollupWarmSyncService) Start(ctx context.Context) error {
	// Contexto da aplicação: os aquecimentos disparados manualmente também
	// vivem atrelados a ele, nunca ao contexto de uma requisição HTTP
	s.baseCtx = ctx

	if !s.config.SyncEnabled {
		logrus.Info("Aquecimento de rollups desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de aquecimento de rollups")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.warmAllRollups(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar aquecimento de rollups: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de aquecimento de rollups")
		s.scheduler.Stop()
	}()

	return nil
}

// warmAllRollups reconstrói os rollups de todas as propriedades ativas
func (s *RollupWarmSyncService) warmAllRollups(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Aquecimento de rollups já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando aquecimento de rollups para todas as propriedades ativas")

	properties, err := s.propertyRepo.ListActiveProperties()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar propriedades para aquecimento de rollups")
		return
	}

	if len(properties) == 0 {
		logrus.Info("Nenhuma propriedade ativa encontrada para aquecimento de rollups")
		return
	}

	s.warmRollupsForProperties(ctx, properties)

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":   duration.String(),
		"properties": len(properties),
	}).Info("Aquecimento de rollups concluído")

	s.lastSyncCompletedAt = time.Now()
}

// warmRollupsForProperties processa as propriedades com concorrência limitada
func (s *RollupWarmSyncService) warmRollupsForProperties(ctx context.Context, properties []*domain.Property) {
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, property := range properties {
		if property.SourceID == "" {
			logrus.WithField("property_id", property.ID).Warn("Propriedade sem source_id. Pulando.")
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{} // Adquirir semáforo

		go func(p *domain.Property) {
			defer func() {
				<-semaphore // Liberar semáforo
				wg.Done()
			}()

			s.warmPropertyRollup(ctx, p)

			// Aguardar antes da próxima requisição para evitar sobrecarga na API
			time.Sleep(time.Duration(s.config.RequestDelaySeconds) * time.Second)
		}(property)
	}

	wg.Wait()
}

// warmPropertyRollup reconstrói o rollup de uma propriedade
func (s *RollupWarmSyncService) warmPropertyRollup(ctx context.Context, property *domain.Property) {
	logrus.WithFields(logrus.Fields{
		"property_id":   property.ID,
		"source_id":     property.SourceID,
		"property_name": property.Name,
	}).Info("Reconstruindo rollup da propriedade")

	if err := s.rollupCache.RefreshRollup(ctx, property); err != nil {
		logrus.WithFields(logrus.Fields{
			"property_id": property.ID,
			"source_id":   property.SourceID,
			"error":       err.Error(),
		}).Error("Erro ao reconstruir rollup da propriedade")
		return
	}

	logrus.WithFields(logrus.Fields{
		"property_id": property.ID,
		"source_id":   property.SourceID,
	}).Info("Rollup reconstruído com sucesso")
}

// TriggerManualSync inicia manualmente um aquecimento de rollups. O
// aquecimento roda sob o contexto da aplicação: a requisição que o disparou
// já terá sido respondida (e seu contexto cancelado) muito antes do fim.
func (s *RollupWarmSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Aquecimento de rollups já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando aquecimento manual de rollups")
	go s.warmAllRollups(s.baseCtx)
}

// GetStatus retorna o status atual do agendador
func (s *RollupWarmSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"sync_request_delay_s":   s.config.RequestDelaySeconds,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
