package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/forecasting"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/apiErrors"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/utils"
)

// GetForecast atende /api/forecast/products (índice) e /api/forecast/:slug
// (previsão de um produto). O httprouter não aceita rota estática e parâmetro
// no mesmo segmento, então o índice passa pelo mesmo handler.
func GetForecast(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

		if slug == "products" {
			serveForecastIndex(w, cfg)
			return
		}

		// Só aceita slugs na forma canônica, o que elimina path traversal
		if slug == "" || slug != utils.Slugify(slug) {
			apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Produto inválido", nil)
			return
		}

		path := filepath.Join(cfg.Data.JSONDir, forecasting.ForecastsDirName, slug+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Previsão não disponível para este produto", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			logrus.WithError(err).WithField("slug", slug).Error("Erro ao enviar previsão")
		}
	}
}

// serveForecastIndex devolve o índice de produtos com previsão gerada
func serveForecastIndex(w http.ResponseWriter, cfg *config.Config) {
	path := filepath.Join(cfg.Data.JSONDir, forecasting.IndexFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrArtifactNotFound, "Previsões ainda não geradas", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		logrus.WithError(err).Error("Erro ao enviar índice de previsões")
	}
}
