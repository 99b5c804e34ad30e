package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/api/handler/router"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Data: config.Data{
			JSONDir:      t.TempDir(),
			ProcessedDir: t.TempDir(),
		},
	}
}

func newTestRouter(cfg *config.Config) router.Router {
	return router.New(
		router.WithRoutes(Healthcheck()...),
		router.WithRoutes(Dashboard(cfg)...),
		router.WithRoutes(Forecasts(cfg)...),
	)
}

func TestHealthcheck(t *testing.T) {
	rt := newTestRouter(newTestConfig(t))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sima-cotacoes-api", body["service"])
}

func TestGetDataFile(t *testing.T) {
	cfg := newTestConfig(t)
	rt := newTestRouter(cfg)

	content := []byte(`{"metadata":{"total_registros":10}}`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.JSONDir, "aggregated.json"), content, 0o644))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Artefato existente",
			path:       "/api/data/aggregated.json",
			wantStatus: http.StatusOK,
			wantBody:   string(content),
		},
		{
			name:       "Artefato permitido mas ainda não gerado",
			path:       "/api/data/volatility.json",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Arquivo fora da lista",
			path:       "/api/data/segredo.txt",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestGetArtifactRetornaObjetoVazioQuandoAusente(t *testing.T) {
	rt := newTestRouter(newTestConfig(t))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/aggregated", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestGetArtifactServeConteudoExistente(t *testing.T) {
	cfg := newTestConfig(t)
	rt := newTestRouter(cfg)

	content := []byte(`{"by_period":{"2024-1":{"preco_medio":10}}}`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.JSONDir, "timeseries.json"), content, 0o644))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/timeseries", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(content), rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestGetStatus(t *testing.T) {
	cfg := newTestConfig(t)
	rt := newTestRouter(cfg)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.JSONDir, "filters.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.ProcessedDir, "consolidated.csv"), []byte("data,produto\n"), 0o644))

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string              `json:"status"`
		Files  map[string]fileInfo `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.Files["filters.json"].Exists)
	assert.True(t, body.Files["consolidated.csv"].Exists)
	assert.False(t, body.Files["aggregated.json"].Exists)
	assert.NotEmpty(t, body.Files["filters.json"].Modified)
}

func TestGetForecast(t *testing.T) {
	cfg := newTestConfig(t)
	rt := newTestRouter(cfg)

	forecastsDir := filepath.Join(cfg.Data.JSONDir, "forecasts")
	require.NoError(t, os.MkdirAll(forecastsDir, 0o755))

	forecast := []byte(`{"produto":"Soja industrial tipo 1","slug":"soja-industrial-tipo-1"}`)
	require.NoError(t, os.WriteFile(filepath.Join(forecastsDir, "soja-industrial-tipo-1.json"), forecast, 0o644))

	index := []byte(`{"gerado_em":"2026-08-30T08:00:00Z","total":1,"produtos":[]}`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Data.JSONDir, "forecast_products.json"), index, 0o644))

	t.Run("Previsão existente", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/soja-industrial-tipo-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(forecast), rec.Body.String())
	})

	t.Run("Índice de produtos", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/products", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(index), rec.Body.String())
	})

	t.Run("Produto sem previsão", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/milho-verde", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Slug fora da forma canônica é rejeitado", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/Soja%20Industrial", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
