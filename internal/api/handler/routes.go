package handler

import (
	"net/http"

	"github.com/vfg2006/ad-report-importer/internal/api/handler/router"
	"github.com/vfg2006/ad-report-importer/internal/usecases/history"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
)

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Imports(importService importing.ImportService, historyService history.HistoryService, maxUploadMB int64) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/imports",
			Method:  http.MethodPost,
			Handler: CreateImport(importService, maxUploadMB),
		},
		{
			Path:    "/v1/imports",
			Method:  http.MethodGet,
			Handler: ListImports(historyService),
		},
		{
			Path:    "/v1/imports/:id",
			Method:  http.MethodGet,
			Handler: GetImport(historyService),
		},
		{
			Path:    "/v1/imports/:id/undo",
			Method:  http.MethodPost,
			Handler: UndoImport(historyService),
		},
	}
}

func Clients(clients ClientLister) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/clients",
			Method:  http.MethodGet,
			Handler: ListClients(clients),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/run/:type",
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
