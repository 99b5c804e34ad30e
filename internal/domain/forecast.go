package domain

// ForecastPoint é a projeção de um mês com o intervalo de 95% de confiança
type ForecastPoint struct {
	Periodo        string  `json:"periodo"` // Formato yyyy-mm
	Previsto       float64 `json:"previsto"`
	LimiteInferior float64 `json:"limite_inferior"`
	LimiteSuperior float64 `json:"limite_superior"`
}

// ModelMetrics são métricas in-sample do ajuste de um modelo
type ModelMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// ModelForecast é a saída completa de um modelo para um produto
type ModelForecast struct {
	Modelo    string          `json:"modelo"`
	Previsoes []ForecastPoint `json:"previsoes"`
	Metricas  ModelMetrics    `json:"metricas"`
}

// ProductForecast é o artefato gravado em data/json/forecasts/<slug>.json
type ProductForecast struct {
	Produto     string                   `json:"produto"`
	Slug        string                   `json:"slug"`
	Unidade     string                   `json:"unidade,omitempty"`
	Categoria   string                   `json:"categoria,omitempty"`
	GeradoEm    string                   `json:"gerado_em"`
	Historico   []SerieMensal            `json:"historico"`
	Modelos     map[string]ModelForecast `json:"modelos"`
	MesesUsados int                      `json:"meses_usados"`
}

// ForecastIndexEntry é uma entrada de forecast_products.json
type ForecastIndexEntry struct {
	Produto   string   `json:"produto"`
	Slug      string   `json:"slug"`
	Categoria string   `json:"categoria,omitempty"`
	Meses     int      `json:"meses"`
	Modelos   []string `json:"modelos"`
}
