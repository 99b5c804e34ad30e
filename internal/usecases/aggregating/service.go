package aggregating

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Nomes dos artefatos JSON servidos ao dashboard
const (
	ArtifactAggregated     = "aggregated.json"
	ArtifactDetailed       = "detailed.json"
	ArtifactTimeSeries     = "timeseries.json"
	ArtifactFilters        = "filters.json"
	ArtifactDailySeries    = "daily_series.json"
	ArtifactVolatility     = "volatility.json"
	ArtifactRegionalSpread = "regional_spread.json"
)

// Aggregator gera os artefatos JSON pré-agregados a partir do banco
type Aggregator interface {
	GenerateArtifacts(ctx context.Context) (int, error)
}

type Service struct {
	cfg         *config.Config
	cotacaoRepo repository.CotacaoRepository
	clock       clockwork.Clock
	metrics     *observability.Metrics
}

func NewService(
	cfg *config.Config,
	cotacaoRepo repository.CotacaoRepository,
	clock clockwork.Clock,
	metrics *observability.Metrics,
) Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		cfg:         cfg,
		cotacaoRepo: cotacaoRepo,
		clock:       clock,
		metrics:     metrics,
	}
}

// GenerateArtifacts reconstrói todos os artefatos JSON no diretório configurado
// e retorna quantos arquivos foram gravados
func (s *Service) GenerateArtifacts(ctx context.Context) (int, error) {
	records, err := s.cotacaoRepo.ListCotacoes(ctx, domain.CotacaoFilter{})
	if err != nil {
		return 0, fmt.Errorf("erro ao carregar cotações do banco: %w", err)
	}

	rows := prepareRows(records)
	if len(rows) == 0 {
		return 0, fmt.Errorf("nenhum registro válido para gerar artefatos")
	}

	logrus.WithField("registros", len(rows)).Info("aggregating: gerando artefatos JSON")

	if err := os.MkdirAll(s.cfg.Data.JSONDir, 0o755); err != nil {
		return 0, fmt.Errorf("erro ao criar diretório de artefatos: %w", err)
	}

	generatedAt := s.clock.Now().Format(time.RFC3339)

	artifacts := []struct {
		name    string
		content any
	}{
		{ArtifactAggregated, buildAggregated(rows, generatedAt)},
		{ArtifactDetailed, buildDetailed(rows)},
		{ArtifactTimeSeries, buildTimeSeries(rows)},
		{ArtifactFilters, buildFilterMaps(rows)},
		{ArtifactDailySeries, buildDailySeries(rows, generatedAt)},
		{ArtifactVolatility, buildVolatility(rows, generatedAt)},
		{ArtifactRegionalSpread, buildRegionalSpread(rows, generatedAt)},
	}

	written := 0
	for _, artifact := range artifacts {
		if err := s.saveJSON(artifact.name, artifact.content); err != nil {
			return written, err
		}
		written++

		if s.metrics != nil {
			s.metrics.ArtifactsWritten.Inc()
		}
	}

	logrus.WithField("artefatos", written).Info("aggregating: artefatos gerados")
	return written, nil
}

func (s *Service) saveJSON(name string, content any) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("erro ao serializar %s: %w", name, err)
	}

	path := filepath.Join(s.cfg.Data.JSONDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"arquivo": name,
		"kb":      fmt.Sprintf("%.1f", float64(len(data))/1024),
	}).Info("aggregating: artefato gravado")

	return nil
}
