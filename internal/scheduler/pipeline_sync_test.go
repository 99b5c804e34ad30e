package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	simadomain "github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository/mocks"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
)

type fakeIntegrator struct {
	result *simadomain.ScanResult
	err    error
	calls  int
}

func (f *fakeIntegrator) Scan(ctx context.Context, backfill bool) (*simadomain.ScanResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeAggregator struct {
	written int
	err     error
	calls   int
}

func (f *fakeAggregator) GenerateArtifacts(ctx context.Context) (int, error) {
	f.calls++
	return f.written, f.err
}

type fakeForecaster struct {
	generated int
	err       error
	calls     int
}

func (f *fakeForecaster) GenerateForecasts(ctx context.Context) (int, error) {
	f.calls++
	return f.generated, f.err
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Data: config.Data{
			ExtractedDir: t.TempDir(),
			ProcessedDir: t.TempDir(),
			JSONDir:      t.TempDir(),
		},
		PipelineSync: config.PipelineSync{
			CronSchedule: "0 8 * * *",
			Timezone:     "America/Sao_Paulo",
			Enabled:      false,
		},
	}
}

func TestParseStage(t *testing.T) {
	for _, name := range []string{"scrape", "etl", "preprocess", "forecast", "all"} {
		stage, err := ParseStage(name)
		require.NoError(t, err)
		assert.Equal(t, Stage(name), stage)
	}

	_, err := ParseStage("inexistente")
	assert.Error(t, err)
}

func TestRunStageScrape(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	integrator := &fakeIntegrator{result: &simadomain.ScanResult{PagesChecked: 12, FilesDownloaded: 3}}

	service := NewPipelineSyncService(
		integrator,
		mocks.NewMockCotacaoRepository(ctrl),
		&fakeAggregator{},
		&fakeForecaster{},
		nil,
		newTestConfig(t),
	)

	err := service.RunStage(context.Background(), StageScrape)
	require.NoError(t, err)
	assert.Equal(t, 1, integrator.calls)
}

func TestRunStageEtlSemArquivos(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewPipelineSyncService(
		&fakeIntegrator{},
		mocks.NewMockCotacaoRepository(ctrl),
		&fakeAggregator{},
		&fakeForecaster{},
		nil,
		newTestConfig(t),
	)

	// Diretório de extração vazio, nenhuma planilha para processar
	err := service.RunStage(context.Background(), StageETL)
	assert.Error(t, err)
}

func TestRunFullPipelineContinuaAposFalha(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	integrator := &fakeIntegrator{err: errors.New("portal fora do ar")}
	aggregator := &fakeAggregator{written: 7}
	forecaster := &fakeForecaster{generated: 3}

	service := NewPipelineSyncService(
		integrator,
		mocks.NewMockCotacaoRepository(ctrl),
		aggregator,
		forecaster,
		nil,
		newTestConfig(t),
	)

	err := service.RunStage(context.Background(), StageAll)
	require.NoError(t, err)

	// Scrape e ETL falham, mas artefatos e previsões ainda rodam
	assert.Equal(t, 1, integrator.calls)
	assert.Equal(t, 1, aggregator.calls)
	assert.Equal(t, 1, forecaster.calls)

	status := service.GetStatus()
	assert.Equal(t, false, status["sync_running"])
	assert.NotEmpty(t, status["last_run_id"])
	assert.Len(t, status["last_run_errors"], 2)
}

func TestGetStatusConcorrenteComPipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewPipelineSyncService(
		&fakeIntegrator{result: &simadomain.ScanResult{PagesChecked: 1}},
		mocks.NewMockCotacaoRepository(ctrl),
		&fakeAggregator{},
		&fakeForecaster{},
		nil,
		newTestConfig(t),
	)

	// Leituras de status durante execuções completas, detectável com -race
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			status := service.GetStatus()
			_, ok := status["last_run_errors"].([]string)
			_ = ok
		}
	}()

	for i := 0; i < 20; i++ {
		require.NoError(t, service.RunStage(context.Background(), StageAll))
	}
	<-done

	status := service.GetStatus()
	assert.NotEmpty(t, status["last_run_id"])
	assert.Equal(t, false, status["sync_running"])
}

func TestGetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := newTestConfig(t)
	service := NewPipelineSyncService(
		&fakeIntegrator{},
		mocks.NewMockCotacaoRepository(ctrl),
		&fakeAggregator{},
		&fakeForecaster{},
		nil,
		cfg,
	)

	status := service.GetStatus()
	assert.Equal(t, false, status["sync_enabled"])
	assert.Equal(t, "0 8 * * *", status["sync_cron"])
	assert.Equal(t, "America/Sao_Paulo", status["sync_timezone"])
	assert.Equal(t, false, status["sync_running"])
}

func TestStartDesabilitado(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewPipelineSyncService(
		&fakeIntegrator{},
		mocks.NewMockCotacaoRepository(ctrl),
		&fakeAggregator{},
		&fakeForecaster{},
		nil,
		newTestConfig(t),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, service.Start(ctx))
}
