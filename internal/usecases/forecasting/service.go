package forecasting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/infrastructure/repository"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/etl"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/observability"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ForecastsDirName é o subdiretório de data/json com um arquivo por produto
const ForecastsDirName = "forecasts"

// IndexFileName lista os produtos com previsão gerada
const IndexFileName = "forecast_products.json"

// Forecaster pré-computa previsões de preço para todos os produtos elegíveis
type Forecaster interface {
	GenerateForecasts(ctx context.Context) (int, error)
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
) Forecaster {
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

// forecastIndex é o conteúdo de forecast_products.json
type forecastIndex struct {
	GeradoEm string                      `json:"gerado_em"`
	Total    int                         `json:"total"`
	Produtos []domain.ForecastIndexEntry `json:"produtos"`
}

// GenerateForecasts gera um arquivo de previsão por produto elegível e o
// índice de produtos, retornando quantos produtos ganharam previsão
func (s *Service) GenerateForecasts(ctx context.Context) (int, error) {
	produtos, err := s.cotacaoRepo.DistinctProdutos(ctx)
	if err != nil {
		return 0, fmt.Errorf("erro ao listar produtos: %w", err)
	}

	forecastsDir := filepath.Join(s.cfg.Data.JSONDir, ForecastsDirName)
	if err := os.MkdirAll(forecastsDir, 0o755); err != nil {
		return 0, fmt.Errorf("erro ao criar diretório de previsões: %w", err)
	}

	logrus.WithField("produtos", len(produtos)).Info("forecasting: gerando previsões")

	generatedAt := s.clock.Now().Format(time.RFC3339)
	index := forecastIndex{GeradoEm: generatedAt, Produtos: []domain.ForecastIndexEntry{}}

	for i, produto := range produtos {
		if err := ctx.Err(); err != nil {
			return index.Total, err
		}

		serie, err := s.cotacaoRepo.MonthlySeries(ctx, produto)
		if err != nil {
			logrus.WithError(err).WithField("produto", produto).Warn("forecasting: erro ao carregar série mensal")
			continue
		}

		if len(serie) < s.cfg.Forecast.MinMonths {
			logrus.WithFields(logrus.Fields{
				"produto": produto,
				"meses":   len(serie),
			}).Debug("forecasting: histórico insuficiente, pulando")
			continue
		}

		logrus.Infof("forecasting: [%d/%d] %s (%d meses)", i+1, len(produtos), produto, len(serie))

		forecast := s.buildProductForecast(produto, serie, generatedAt)
		if len(forecast.Modelos) == 0 {
			logrus.WithField("produto", produto).Warn("forecasting: nenhum modelo convergiu")
			continue
		}

		if err := s.saveForecast(forecastsDir, forecast); err != nil {
			return index.Total, err
		}

		modelos := make([]string, 0, len(forecast.Modelos))
		for key := range forecast.Modelos {
			modelos = append(modelos, key)
		}
		sort.Strings(modelos)

		index.Produtos = append(index.Produtos, domain.ForecastIndexEntry{
			Produto:   produto,
			Slug:      forecast.Slug,
			Categoria: forecast.Categoria,
			Meses:     len(serie),
			Modelos:   modelos,
		})
		index.Total++

		if s.metrics != nil {
			s.metrics.ArtifactsWritten.Inc()
		}
	}

	if err := s.saveIndex(index); err != nil {
		return index.Total, err
	}

	logrus.WithField("produtos", index.Total).Info("forecasting: previsões geradas")
	return index.Total, nil
}

// buildProductForecast roda cada modelo sobre a série mensal do produto.
// Falha de um modelo não impede os demais.
func (s *Service) buildProductForecast(produto string, serie []domain.SerieMensal, generatedAt string) *domain.ProductForecast {
	historico := serie
	if len(historico) > s.cfg.Forecast.HistoryMonths {
		historico = historico[len(historico)-s.cfg.Forecast.HistoryMonths:]
	}

	rounded := make([]domain.SerieMensal, len(historico))
	for i, ponto := range historico {
		ponto.PrecoMedio = round2(ponto.PrecoMedio)
		rounded[i] = ponto
	}

	forecast := &domain.ProductForecast{
		Produto:     produto,
		Slug:        utils.Slugify(produto),
		Unidade:     etl.CanonicalUnit(produto),
		Categoria:   etl.DetectCategory(produto),
		GeradoEm:    generatedAt,
		Historico:   rounded,
		Modelos:     make(map[string]domain.ModelForecast),
		MesesUsados: len(serie),
	}

	horizon := s.cfg.Forecast.HorizonMonths

	models := []struct {
		key string
		fit func([]domain.SerieMensal, int) (*domain.ModelForecast, error)
	}{
		{"linear", fitLinear},
		{"arima", fitARIMA},
		{"sarima", fitSARIMA},
	}

	for _, model := range models {
		result, err := model.fit(serie, horizon)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"produto": produto,
				"modelo":  model.key,
			}).Debug("forecasting: modelo descartado")
			continue
		}
		forecast.Modelos[model.key] = *result
	}

	return forecast
}

func (s *Service) saveForecast(dir string, forecast *domain.ProductForecast) error {
	data, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("erro ao serializar previsão de %s: %w", forecast.Produto, err)
	}

	path := filepath.Join(dir, forecast.Slug+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}

	return nil
}

func (s *Service) saveIndex(index forecastIndex) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("erro ao serializar índice de previsões: %w", err)
	}

	path := filepath.Join(s.cfg.Data.JSONDir, IndexFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}

	return nil
}
