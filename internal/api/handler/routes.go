package handler

import (
	"net/http"

	"github.com/expodigital/analytics-manager-api/internal/api/handler/router"
	"github.com/expodigital/analytics-manager-api/internal/metrics"
	"github.com/expodigital/analytics-manager-api/internal/usecases/dashboarding"
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

func Analytics(service dashboarding.Service, recorder *metrics.StoreRecorder) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/analytics/properties/:id",
			Method:  http.MethodGet,
			Handler: GetPropertyMetrics(service),
		},
		{
			Path:    "/v1/analytics/properties/:id/pages",
			Method:  http.MethodGet,
			Handler: GetPropertyTopPages(service),
		},
		{
			Path:    "/v1/analytics/properties/:id/sources",
			Method:  http.MethodGet,
			Handler: GetPropertyTrafficSources(service),
		},
		{
			Path:    "/v1/analytics/properties/:id/devices",
			Method:  http.MethodGet,
			Handler: GetPropertyDevices(service),
		},
		{
			Path:    "/v1/analytics/properties/:id/status",
			Method:  http.MethodGet,
			Handler: GetPropertyStatus(recorder),
		},
	}
}

func Dashboard(service dashboarding.Service) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/analytics/dashboard",
			Method:  http.MethodGet,
			Handler: GetDashboard(service),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}
