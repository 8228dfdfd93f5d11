package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

const (
	CronJobTypeInbox          = "inbox"
	CronJobTypeStagingCleanup = "staging-cleanup"
	CronJobTypeAll            = "all"
)

// CronJob é uma rotina agendada que também pode ser disparada pela API
type CronJob interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

// CronJobServices indexa as rotinas pelo tipo usado na URL
type CronJobServices map[string]CronJob

// RunCronJob executa manualmente uma rotina específica, ou todas com o tipo "all"
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		// a rotina continua mesmo depois que a resposta for enviada
		ctx := context.WithoutCancel(r.Context())

		if cronType == CronJobTypeAll {
			started := make(map[string]bool, len(services))
			for name, job := range services {
				started[name] = job.TriggerManualSync(ctx)
			}
			writeJSON(w, http.StatusAccepted, map[string]any{
				"message": "Cron jobs disparadas",
				"type":    cronType,
				"started": started,
			})
			return
		}

		job, ok := services[cronType]
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				"Tipo de cron job inválido. Valores aceitos: "+strings.Join(cronTypes(services), ", "), nil)
			return
		}

		if !job.TriggerManualSync(ctx) {
			apiErrors.WriteError(w, apiErrors.ErrSchedulerBusy, "Cron job já está em execução", nil)
			return
		}

		log.ForContext(r.Context()).Infof("Cron job %s disparada manualmente", cronType)
		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		})
	}
}

func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]any, len(services))
		for name, job := range services {
			status[name] = job.GetStatus()
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func cronTypes(services CronJobServices) []string {
	types := make([]string, 0, len(services)+1)
	for name := range services {
		types = append(types, name)
	}
	sort.Strings(types)
	return append(types, CronJobTypeAll)
}
