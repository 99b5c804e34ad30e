package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/etl"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/aggregating"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/forecasting"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/utils"
)

// Stage identifica uma etapa do pipeline de atualização
type Stage string

const (
	StageScrape     Stage = "scrape"
	StageETL        Stage = "etl"
	StagePreprocess Stage = "preprocess"
	StageForecast   Stage = "forecast"
	StageAll        Stage = "all"
)

// ParseStage valida o nome de uma etapa vindo da API
func ParseStage(name string) (Stage, error) {
	switch Stage(name) {
	case StageScrape, StageETL, StagePreprocess, StageForecast, StageAll:
		return Stage(name), nil
	}
	return "", fmt.Errorf("etapa desconhecida: %s", name)
}

// PipelineSyncConfig representa a configuração do agendador do pipeline
type PipelineSyncConfig struct {
	CronSchedule string
	Timezone     string
	SyncEnabled  bool
}

// PipelineSyncService agenda e executa o pipeline completo de atualização:
// descoberta e download dos boletins, ETL, artefatos JSON e previsões
type PipelineSyncService struct {
	scheduler   *gocron.Scheduler
	config      PipelineSyncConfig
	appConfig   *config.Config
	simaService sima.Integrator
	cotacaoRepo repository.CotacaoRepository
	aggregator  aggregating.Aggregator
	forecaster  forecasting.Forecaster
	metrics     *observability.Metrics

	syncRunning         bool
	syncMutex           sync.Mutex
	lastRunID           string
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastRunErrors       []string
}

// NewPipelineSyncService cria uma nova instância do serviço de sincronização do pipeline
func NewPipelineSyncService(
	simaService sima.Integrator,
	cotacaoRepo repository.CotacaoRepository,
	aggregator aggregating.Aggregator,
	forecaster forecasting.Forecaster,
	metrics *observability.Metrics,
	appConfig *config.Config,
) *PipelineSyncService {
	syncConfig := PipelineSyncConfig{
		CronSchedule: appConfig.PipelineSync.CronSchedule,
		Timezone:     appConfig.PipelineSync.Timezone,
		SyncEnabled:  appConfig.PipelineSync.Enabled,
	}

	location, err := time.LoadLocation(syncConfig.Timezone)
	if err != nil {
		logrus.WithError(err).WithField("timezone", syncConfig.Timezone).Warn("Fuso horário inválido, usando o fuso local")
		location = time.Local
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"timezone":      syncConfig.Timezone,
		"sync_enabled":  syncConfig.SyncEnabled,
	}).Info("Configuração do agendador do pipeline carregada")

	return &PipelineSyncService{
		scheduler:   gocron.NewScheduler(location),
		config:      syncConfig,
		appConfig:   appConfig,
		simaService: simaService,
		cotacaoRepo: cotacaoRepo,
		aggregator:  aggregator,
		forecaster:  forecaster,
		metrics:     metrics,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *PipelineSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização agendada do pipeline desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do pipeline")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runFullPipeline(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar o pipeline: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do pipeline")
		s.scheduler.Stop()
	}()

	return nil
}

// runFullPipeline executa as etapas em ordem fixa. A falha de uma etapa é
// registrada e as seguintes ainda rodam, para que um boletim fora do padrão
// não trave a atualização dos artefatos.
func (s *PipelineSyncService) runFullPipeline(ctx context.Context) {
	runID, err := utils.GenerateID()
	if err != nil {
		runID = "unknown"
	}

	startTime := time.Now()

	// Os campos de status são lidos por GetStatus em outra goroutine,
	// toda escrita acontece sob o mutex
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Pipeline já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastRunID = runID
	s.lastSyncStartedAt = startTime
	s.lastRunErrors = nil
	s.syncMutex.Unlock()

	if s.metrics != nil {
		s.metrics.PipelineRunning.Set(1)
	}

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()

		if s.metrics != nil {
			s.metrics.PipelineRunning.Set(0)
		}
	}()

	logrus.WithField("run_id", runID).Info("Iniciando execução completa do pipeline")

	var stageErrors []string
	for _, stage := range []Stage{StageScrape, StageETL, StagePreprocess, StageForecast} {
		if err := s.RunStage(ctx, stage); err != nil {
			stageErrors = append(stageErrors, fmt.Sprintf("%s: %v", stage, err))
			logrus.WithError(err).WithFields(logrus.Fields{
				"run_id": runID,
				"etapa":  stage,
			}).Error("Etapa do pipeline falhou, seguindo para a próxima")
		}
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = time.Now()
	s.lastRunErrors = stageErrors
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"run_id":   runID,
		"duration": time.Since(startTime).String(),
		"falhas":   len(stageErrors),
	}).Info("Execução do pipeline concluída")
}

// RunStage executa uma única etapa do pipeline, medindo duração e falhas
func (s *PipelineSyncService) RunStage(ctx context.Context, stage Stage) error {
	if stage == StageAll {
		s.runFullPipeline(ctx)
		return nil
	}

	startTime := time.Now()
	logrus.WithField("etapa", stage).Info("Iniciando etapa do pipeline")

	var err error
	switch stage {
	case StageScrape:
		err = s.runScrape(ctx)
	case StageETL:
		err = s.runETL(ctx)
	case StagePreprocess:
		_, err = s.aggregator.GenerateArtifacts(ctx)
	case StageForecast:
		_, err = s.forecaster.GenerateForecasts(ctx)
	default:
		err = fmt.Errorf("etapa desconhecida: %s", stage)
	}

	duration := time.Since(startTime)
	if s.metrics != nil {
		s.metrics.StageDuration.WithLabelValues(string(stage)).Observe(duration.Seconds())
		if err != nil {
			s.metrics.StageFailures.WithLabelValues(string(stage)).Inc()
		}
	}

	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"etapa":    stage,
		"duration": duration.String(),
	}).Info("Etapa do pipeline concluída")

	return nil
}

func (s *PipelineSyncService) runScrape(ctx context.Context) error {
	result, err := s.simaService.Scan(ctx, false)
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.PagesScanned.Add(float64(result.PagesChecked))
		s.metrics.FilesDownloaded.Add(float64(result.FilesDownloaded))
	}

	return nil
}

func (s *PipelineSyncService) runETL(ctx context.Context) error {
	records, parseErrors := etl.ProcessAllFiles(s.appConfig.Data.ExtractedDir)
	consolidated := etl.Consolidate(records)

	if s.metrics != nil {
		s.metrics.ParseErrors.Add(float64(parseErrors))
	}

	if len(consolidated) == 0 {
		return fmt.Errorf("nenhum registro extraído das planilhas")
	}

	if s.metrics != nil {
		s.metrics.RecordsExtracted.Add(float64(len(consolidated)))
	}

	inserted, err := s.cotacaoRepo.UpsertCotacoes(ctx, consolidated)
	if err != nil {
		return fmt.Errorf("erro ao gravar cotações: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"registros": len(consolidated),
		"novos":     inserted,
	}).Info("Cotações consolidadas gravadas no banco")

	csvPath := filepath.Join(s.appConfig.Data.ProcessedDir, "consolidated.csv")
	if err := etl.ExportCSV(consolidated, csvPath); err != nil {
		return err
	}

	// A cópia Parquet é analítica: falha não derruba a etapa
	parquetPath := filepath.Join(s.appConfig.Data.ProcessedDir, "consolidated.parquet")
	if err := etl.ExportParquet(consolidated, parquetPath); err != nil {
		logrus.WithError(err).Warn("Erro ao gravar cópia Parquet do dataset")
	}

	return nil
}

// TriggerManualSync inicia manualmente uma execução completa do pipeline
func (s *PipelineSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Pipeline já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando execução manual do pipeline")
	go s.runFullPipeline(context.Background())
}

// GetStatus retorna o status atual do agendador
func (s *PipelineSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_timezone":          s.config.Timezone,
		"sync_running":           s.syncRunning,
		"last_run_id":            s.lastRunID,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_run_errors":        s.lastRunErrors,
	}
}
