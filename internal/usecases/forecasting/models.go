package forecasting

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/goarima/sarima"
	"github.com/sartorproj/goarima/timeseries"
	"gonum.org/v1/gonum/stat"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

// Meses mínimos de histórico que cada modelo exige
const (
	minMonthsARIMA  = 12
	minMonthsSARIMA = 24
	maxHoldout      = 6
)

// zScore95 delimita o intervalo de 95% de confiança sobre o erro residual
const zScore95 = 1.96

// fitLinear ajusta uma regressão linear simples sobre o índice do mês
func fitLinear(serie []domain.SerieMensal, horizon int) (*domain.ModelForecast, error) {
	values := serieValues(serie)
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("série muito curta para regressão linear")
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	alpha, beta := stat.LinearRegression(xs, values, nil, false)

	fitted := make([]float64, n)
	for i, x := range xs {
		fitted[i] = alpha + beta*x
	}

	metrics := calcMetrics(values, fitted)
	halfWidth := zScore95 * metrics.RMSE

	periods, err := futurePeriods(serie[n-1].Periodo, horizon)
	if err != nil {
		return nil, err
	}

	previsoes := make([]domain.ForecastPoint, 0, horizon)
	for i, periodo := range periods {
		predicted := alpha + beta*float64(n+i)
		previsoes = append(previsoes, forecastPoint(periodo, predicted, halfWidth))
	}

	return &domain.ModelForecast{
		Modelo:    "Regressão Linear",
		Previsoes: previsoes,
		Metricas:  metrics,
	}, nil
}

// fitARIMA seleciona a ordem (p,d,q) por AIC com p,q em [0,3) e ajusta o
// modelo final sobre a série completa. A ordem de diferenciação vem da
// tendência da série.
func fitARIMA(serie []domain.SerieMensal, horizon int) (*domain.ModelForecast, error) {
	values := serieValues(serie)
	n := len(values)
	if n < minMonthsARIMA {
		return nil, fmt.Errorf("série com %d meses, mínimo %d para ARIMA", n, minMonthsARIMA)
	}

	d := differencingOrder(values)

	bestAIC := math.Inf(1)
	bestP, bestQ := 1, 1
	for p := 0; p < 3; p++ {
		for q := 0; q < 3; q++ {
			model := sarima.New(p, d, q, 0, 0, 0, 12)
			if err := model.Fit(timeseries.New(values)); err != nil {
				continue
			}
			if model.AIC < bestAIC {
				bestAIC = model.AIC
				bestP, bestQ = p, q
			}
		}
	}

	return fitAndForecast(serie, horizon, "ARIMA", func() *sarima.Model {
		return sarima.New(bestP, d, bestQ, 0, 0, 0, 12)
	})
}

// fitSARIMA ajusta o modelo sazonal SARIMA(0,1,1)(0,1,1)[12], o clássico
// "airline model" para séries mensais com sazonalidade anual
func fitSARIMA(serie []domain.SerieMensal, horizon int) (*domain.ModelForecast, error) {
	if len(serie) < minMonthsSARIMA {
		return nil, fmt.Errorf("série com %d meses, mínimo %d para SARIMA", len(serie), minMonthsSARIMA)
	}

	return fitAndForecast(serie, horizon, "SARIMA", func() *sarima.Model {
		return sarima.New(0, 1, 1, 0, 1, 1, 12)
	})
}

// fitAndForecast mede o erro do modelo numa janela de validação no fim da
// série, reajusta sobre a série completa e projeta o horizonte pedido
func fitAndForecast(
	serie []domain.SerieMensal,
	horizon int,
	nome string,
	newModel func() *sarima.Model,
) (*domain.ModelForecast, error) {
	values := serieValues(serie)
	n := len(values)

	holdout := n / 4
	if holdout > maxHoldout {
		holdout = maxHoldout
	}
	if holdout < 1 {
		holdout = 1
	}

	validation := newModel()
	if err := validation.Fit(timeseries.New(values[:n-holdout])); err != nil {
		return nil, fmt.Errorf("erro ao ajustar %s na janela de validação: %w", nome, err)
	}

	holdoutPred, err := validation.Predict(holdout)
	if err != nil {
		return nil, fmt.Errorf("erro ao validar %s: %w", nome, err)
	}

	metrics := calcMetrics(values[n-holdout:], holdoutPred)
	halfWidth := zScore95 * metrics.RMSE

	final := newModel()
	if err := final.Fit(timeseries.New(values)); err != nil {
		return nil, fmt.Errorf("erro ao ajustar %s: %w", nome, err)
	}

	predicted, err := final.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("erro ao projetar %s: %w", nome, err)
	}

	periods, err := futurePeriods(serie[n-1].Periodo, horizon)
	if err != nil {
		return nil, err
	}

	previsoes := make([]domain.ForecastPoint, 0, horizon)
	for i, periodo := range periods {
		previsoes = append(previsoes, forecastPoint(periodo, predicted[i], halfWidth))
	}

	return &domain.ModelForecast{
		Modelo:    nome,
		Previsoes: previsoes,
		Metricas:  metrics,
	}, nil
}

// differencingOrder decide entre d=0 e d=1: se diferenciar a série reduz a
// variância, a série tem tendência e precisa de uma diferenciação
func differencingOrder(values []float64) int {
	if len(values) < 3 {
		return 0
	}

	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}

	if stat.Variance(diffs, nil) < stat.Variance(values, nil) {
		return 1
	}
	return 0
}

// calcMetrics compara valores observados e previstos: MAE, RMSE, MAPE e R²
func calcMetrics(actual, predicted []float64) domain.ModelMetrics {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return domain.ModelMetrics{}
	}

	var absSum, sqSum, mapeSum float64
	mapeCount := 0
	for i := range actual {
		diff := actual[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff

		if actual[i] != 0 {
			mapeSum += math.Abs(diff / actual[i])
			mapeCount++
		}
	}

	metrics := domain.ModelMetrics{
		MAE:  round2(absSum / float64(n)),
		RMSE: round2(math.Sqrt(sqSum / float64(n))),
	}

	if mapeCount > 0 {
		metrics.MAPE = round2(mapeSum / float64(mapeCount) * 100)
	}

	mean := stat.Mean(actual, nil)
	var ssTot float64
	for _, v := range actual {
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot > 0 {
		metrics.R2 = math.Round((1-sqSum/ssTot)*10000) / 10000
	}

	return metrics
}

// futurePeriods gera os períodos mensais seguintes ao último da série
func futurePeriods(last string, horizon int) ([]string, error) {
	t, err := time.Parse("2006-01", last)
	if err != nil {
		return nil, fmt.Errorf("período inválido %q: %w", last, err)
	}

	periods := make([]string, 0, horizon)
	for i := 1; i <= horizon; i++ {
		periods = append(periods, t.AddDate(0, i, 0).Format("2006-01"))
	}
	return periods, nil
}

func forecastPoint(periodo string, predicted, halfWidth float64) domain.ForecastPoint {
	return domain.ForecastPoint{
		Periodo:        periodo,
		Previsto:       round2(predicted),
		LimiteInferior: round2(predicted - halfWidth),
		LimiteSuperior: round2(predicted + halfWidth),
	}
}

func serieValues(serie []domain.SerieMensal) []float64 {
	values := make([]float64, len(serie))
	for i, ponto := range serie {
		values[i] = ponto.PrecoMedio
	}
	return values
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
