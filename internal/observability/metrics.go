package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os contadores, histogramas e gauges do pipeline de cotações
type Metrics struct {
	PagesScanned     prometheus.Counter
	FilesDownloaded  prometheus.Counter
	RecordsExtracted prometheus.Counter
	ParseErrors      prometheus.Counter
	ArtifactsWritten prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Métricas por etapa do pipeline
	StageDuration *prometheus.HistogramVec // label: etapa={scrape,etl,preprocess,forecast}
	StageFailures *prometheus.CounterVec   // label: etapa
}

// NewMetrics cria e registra as métricas no registro padrão do Prometheus
func NewMetrics() *Metrics {
	m := &Metrics{
		PagesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "pages_scanned_total",
			Help:      "Total de páginas de cotação verificadas no portal do SIMA.",
		}),
		FilesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "files_downloaded_total",
			Help:      "Total de planilhas baixadas.",
		}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "records_extracted_total",
			Help:      "Total de registros de cotação extraídos das planilhas.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "parse_errors_total",
			Help:      "Total de planilhas ou abas que falharam na leitura.",
		}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "artifacts_written_total",
			Help:      "Total de artefatos JSON gerados para o dashboard.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sima_cotacoes",
			Name:      "pipeline_running",
			Help:      "1 enquanto o pipeline completo está em execução.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sima_cotacoes",
			Name:      "stage_duration_seconds",
			Help:      "Duração de cada etapa do pipeline em segundos.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"etapa"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sima_cotacoes",
			Name:      "stage_failures_total",
			Help:      "Falhas por etapa do pipeline.",
		}, []string{"etapa"}),
	}

	prometheus.MustRegister(
		m.PagesScanned,
		m.FilesDownloaded,
		m.RecordsExtracted,
		m.ParseErrors,
		m.ArtifactsWritten,
		m.PipelineRunning,
		m.StageDuration,
		m.StageFailures,
	)

	return m
}

// NewMetricsForTesting cria as métricas sem registrá-las, evitando o pânico
// de registro duplicado quando vários testes as constroem
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PagesScanned:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "pages_scanned_total"}),
		FilesDownloaded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "files_downloaded_total"}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "records_extracted_total"}),
		ParseErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "parse_errors_total"}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "artifacts_written_total"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sima_cotacoes", Name: "pipeline_running"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "sima_cotacoes", Name: "stage_duration_seconds"}, []string{"etapa"}),
		StageFailures:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sima_cotacoes", Name: "stage_failures_total"}, []string{"etapa"}),
	}
}
