package handler

import (
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/julienschmidt/httprouter"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/aggregating"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/forecasting"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/apiErrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// allowedDataFiles são os artefatos servidos por /api/data/:filename
var allowedDataFiles = []string{
	aggregating.ArtifactAggregated,
	aggregating.ArtifactDetailed,
	aggregating.ArtifactTimeSeries,
	aggregating.ArtifactFilters,
	aggregating.ArtifactDailySeries,
	aggregating.ArtifactVolatility,
	aggregating.ArtifactRegionalSpread,
	forecasting.IndexFileName,
}

type fileInfo struct {
	Exists   bool    `json:"exists"`
	SizeKB   float64 `json:"size_kb,omitempty"`
	Modified string  `json:"modified,omitempty"`
}

func statFile(path string) fileInfo {
	stat, err := os.Stat(path)
	if err != nil {
		return fileInfo{Exists: false}
	}

	return fileInfo{
		Exists:   true,
		SizeKB:   math.Round(float64(stat.Size())/1024*10) / 10,
		Modified: stat.ModTime().Format(time.RFC3339),
	}
}

// GetStatus informa a existência, tamanho e data de modificação dos artefatos
func GetStatus(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		files := make(map[string]fileInfo, len(allowedDataFiles)+1)

		for _, filename := range allowedDataFiles {
			files[filename] = statFile(filepath.Join(cfg.Data.JSONDir, filename))
		}
		files["consolidated.csv"] = statFile(filepath.Join(cfg.Data.ProcessedDir, "consolidated.csv"))

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"files":     files,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			logrus.WithError(err).Error("Erro ao enviar status dos artefatos")
		}
	}
}

// GetDataFile serve um artefato JSON pelo nome, restrito à lista conhecida
func GetDataFile(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := httprouter.ParamsFromContext(r.Context()).ByName("filename")

		allowed := false
		for _, f := range allowedDataFiles {
			if filename == f {
				allowed = true
				break
			}
		}
		if !allowed {
			apiErrors.WriteError(w, apiErrors.ErrArtifactNotFound, "Arquivo desconhecido", nil)
			return
		}

		path := filepath.Join(cfg.Data.JSONDir, filename)
		if _, err := os.Stat(path); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrArtifactNotFound, "Dados ainda não gerados", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, path)
	}
}

// GetArtifact carrega e devolve um artefato, ou um objeto vazio se ainda não existir
func GetArtifact(cfg *config.Config, filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		data, err := os.ReadFile(filepath.Join(cfg.Data.JSONDir, filename))
		if err != nil {
			if !os.IsNotExist(err) {
				logrus.WithError(err).WithField("arquivo", filename).Error("Erro ao ler artefato")
			}
			_, _ = w.Write([]byte("{}"))
			return
		}

		if _, err := w.Write(data); err != nil {
			logrus.WithError(err).WithField("arquivo", filename).Error("Erro ao enviar artefato")
		}
	}
}
