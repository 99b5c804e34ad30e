package forecasting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
)

func serieFixture(start string, values ...float64) []domain.SerieMensal {
	periods, _ := futurePeriods(start, len(values))
	serie := make([]domain.SerieMensal, len(values))
	for i, v := range values {
		serie[i] = domain.SerieMensal{Periodo: periods[i], PrecoMedio: v, Registros: 10}
	}
	return serie
}

func TestFitLinearSerieComTendenciaPerfeita(t *testing.T) {
	// Preço sobe exatamente 2 por mês: o modelo deve acertar em cheio
	serie := serieFixture("2023-12", 100, 102, 104, 106, 108, 110)

	result, err := fitLinear(serie, 3)
	require.NoError(t, err)

	assert.Equal(t, "Regressão Linear", result.Modelo)
	require.Len(t, result.Previsoes, 3)

	assert.Equal(t, "2024-07", result.Previsoes[0].Periodo)
	assert.InDelta(t, 112.0, result.Previsoes[0].Previsto, 0.01)
	assert.InDelta(t, 116.0, result.Previsoes[2].Previsto, 0.01)

	// Ajuste perfeito: erro zero e intervalo colapsado na previsão
	assert.Zero(t, result.Metricas.MAE)
	assert.Zero(t, result.Metricas.RMSE)
	assert.Equal(t, 1.0, result.Metricas.R2)
	assert.Equal(t, result.Previsoes[0].Previsto, result.Previsoes[0].LimiteInferior)
	assert.Equal(t, result.Previsoes[0].Previsto, result.Previsoes[0].LimiteSuperior)
}

func TestFitLinearSerieMuitoCurta(t *testing.T) {
	_, err := fitLinear(serieFixture("2024-01", 100), 3)
	assert.Error(t, err)
}

func TestFitARIMAExigeHistoricoMinimo(t *testing.T) {
	_, err := fitARIMA(serieFixture("2024-01", 100, 101, 102, 103, 104, 105), 3)
	assert.Error(t, err)
}

func TestFitSARIMAExigeHistoricoMinimo(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	_, err := fitSARIMA(serieFixture("2023-12", values...), 3)
	assert.Error(t, err)
}

func TestCalcMetrics(t *testing.T) {
	tests := []struct {
		name      string
		actual    []float64
		predicted []float64
		expected  domain.ModelMetrics
	}{
		{
			name:      "Previsão perfeita",
			actual:    []float64{100, 110, 120},
			predicted: []float64{100, 110, 120},
			expected:  domain.ModelMetrics{MAE: 0, RMSE: 0, MAPE: 0, R2: 1},
		},
		{
			name:      "Erro constante de 10",
			actual:    []float64{100, 200},
			predicted: []float64{110, 210},
			expected:  domain.ModelMetrics{MAE: 10, RMSE: 10, MAPE: 7.5, R2: 0.96},
		},
		{
			name:      "Tamanhos diferentes devolvem zero",
			actual:    []float64{100},
			predicted: []float64{100, 110},
			expected:  domain.ModelMetrics{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calcMetrics(tt.actual, tt.predicted))
		})
	}
}

func TestFuturePeriods(t *testing.T) {
	periods, err := futurePeriods("2024-11", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-02"}, periods)
}

func TestFuturePeriodsPeriodoInvalido(t *testing.T) {
	_, err := futurePeriods("novembro", 3)
	assert.Error(t, err)
}

func TestDifferencingOrder(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected int
	}{
		{
			name:     "Série com tendência forte precisa diferenciar",
			values:   []float64{100, 110, 120, 130, 140, 150, 160, 170},
			expected: 1,
		},
		{
			name:     "Série estacionária não precisa",
			values:   []float64{100, 90, 105, 95, 102, 98, 104, 96},
			expected: 0,
		},
		{
			name:     "Série curta demais",
			values:   []float64{100, 110},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, differencingOrder(tt.values))
		})
	}
}
