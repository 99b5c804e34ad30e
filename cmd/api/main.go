package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/database/sqlite"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/integrator/sima/simaclient"
	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/api"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/scheduler"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/aggregating"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/authenticating"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/forecasting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := dbconn(ctx, cfg.Database)
	defer conn.Close()

	cotacaoRepo := repository.NewCotacaoRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	authenticator := authenticating.NewService(userRepo, cfg)

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	simaClient := simaclient.NewClient()
	simaIntegrator := sima.New(cfg, simaClient, clock)

	aggregator := aggregating.NewService(cfg, cotacaoRepo, clock, metrics)
	forecaster := forecasting.NewService(cfg, cotacaoRepo, clock, metrics)

	pipelineSyncService := scheduler.NewPipelineSyncService(
		simaIntegrator,
		cotacaoRepo,
		aggregator,
		forecaster,
		metrics,
		cfg,
	)

	if err := pipelineSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do pipeline")
	} else {
		logrus.Info("Agendador do pipeline iniciado com sucesso")
	}

	server, err := api.New(cfg, authenticator, pipelineSyncService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// dbconn cria a conexão com o banco de dados e aplica as migrações
func dbconn(ctx context.Context, dbConfig config.Database) *sqlite.Connection {
	conn, err := sqlite.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao SQLite")
	}

	if err := conn.Ping(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com SQLite")
	}

	logrus.Info("Conexão com SQLite estabelecida com sucesso")
	return conn
}
