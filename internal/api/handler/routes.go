package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/api/handler/router"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/scheduler"
	"github.com/agrodata-pr/sima-cotacoes-api/internal/usecases/authenticating"
	"github.com/agrodata-pr/sima-cotacoes-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

// Dashboard retorna as rotas públicas de leitura dos artefatos JSON
func Dashboard(cfg *config.Config) []router.Route {
	return []router.Route{
		{
			Path:    "/api/status",
			Method:  http.MethodGet,
			Handler: GetStatus(cfg),
		},
		{
			Path:    "/api/data/:filename",
			Method:  http.MethodGet,
			Handler: GetDataFile(cfg),
		},
		{
			Path:    "/api/aggregated",
			Method:  http.MethodGet,
			Handler: GetArtifact(cfg, "aggregated.json"),
		},
		{
			Path:    "/api/timeseries",
			Method:  http.MethodGet,
			Handler: GetArtifact(cfg, "timeseries.json"),
		},
		{
			Path:    "/api/filters",
			Method:  http.MethodGet,
			Handler: GetArtifact(cfg, "filters.json"),
		},
	}
}

// Forecasts retorna as rotas públicas de leitura das previsões pré-computadas
func Forecasts(cfg *config.Config) []router.Route {
	return []router.Route{
		{
			Path:    "/api/forecast/:slug",
			Method:  http.MethodGet,
			Handler: GetForecast(cfg),
		},
	}
}

// Pipeline retorna as rotas protegidas de execução e status do pipeline
func Pipeline(service *scheduler.PipelineSyncService) []router.Route {
	return []router.Route{
		{
			Path:        "/api/refresh",
			Method:      http.MethodPost,
			Handler:     RefreshData(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Metrics() []router.Route {
	return []router.Route{
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}
