package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/domain"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/scheduler"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/apiErrors"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/middleware"
)

// RefreshData dispara manualmente uma execução completa do pipeline
func RefreshData(service *scheduler.PipelineSyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RefreshData")

		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de pipeline não disponível", nil)
			return
		}

		service.TriggerManualSync()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"message":   "Pipeline iniciado",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// RunCronJob executa manualmente uma etapa específica do pipeline
func RunCronJob(service *scheduler.PipelineSyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Apenas administradores podem executar cron jobs
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		stage, err := scheduler.ParseStage(cronType)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: scrape, etl, preprocess, forecast, all", nil)
			return
		}

		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de pipeline não disponível", nil)
			return
		}

		if stage == scheduler.StageAll {
			service.TriggerManualSync()
		} else {
			// Etapas podem levar minutos, a execução segue em background
			go func() {
				if err := service.RunStage(context.Background(), stage); err != nil {
					logrus.WithError(err).WithField("etapa", stage).Error("Erro na execução manual da etapa")
				}
			}()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

// GetCronStatus retorna o status do agendador do pipeline
func GetCronStatus(service *scheduler.PipelineSyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"pipeline": service.GetStatus(),
		})
	}
}
