package main

import (
	"context"
	"flag"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/database/sqlite"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima/simaclient"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/scheduler"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/aggregating"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/forecasting"
)

// Executa o pipeline uma única vez, sem subir o servidor HTTP. Útil para a
// carga inicial do histórico e para reprocessamentos manuais.
func main() {
	stageName := flag.String("stage", "all", "Etapa a executar: scrape, etl, preprocess, forecast ou all")
	backfill := flag.Bool("backfill", false, "Varredura estendida de páginas antigas antes das demais etapas")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	stage, err := scheduler.ParseStage(*stageName)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao SQLite")
	}
	defer conn.Close()

	cotacaoRepo := repository.NewCotacaoRepository(conn)

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	simaIntegrator := sima.New(cfg, simaclient.NewClient(), clock)
	aggregator := aggregating.NewService(cfg, cotacaoRepo, clock, metrics)
	forecaster := forecasting.NewService(cfg, cotacaoRepo, clock, metrics)

	pipeline := scheduler.NewPipelineSyncService(
		simaIntegrator,
		cotacaoRepo,
		aggregator,
		forecaster,
		metrics,
		cfg,
	)

	if *backfill {
		logrus.Info("Iniciando varredura estendida (backfill)")
		result, err := simaIntegrator.Scan(ctx, true)
		if err != nil {
			logrus.WithError(err).Fatal("Erro na varredura estendida")
		}
		logrus.WithFields(logrus.Fields{
			"paginas":  result.PagesChecked,
			"arquivos": result.FilesDownloaded,
		}).Info("Varredura estendida concluída")

		// As demais etapas rodam sobre o que o backfill baixou
		for _, st := range []scheduler.Stage{scheduler.StageETL, scheduler.StagePreprocess, scheduler.StageForecast} {
			if err := pipeline.RunStage(ctx, st); err != nil {
				logrus.WithError(err).WithField("etapa", st).Error("Etapa falhou")
			}
		}
		return
	}

	if err := pipeline.RunStage(ctx, stage); err != nil {
		logrus.WithError(err).Fatal("Erro na execução do pipeline")
	}
}
