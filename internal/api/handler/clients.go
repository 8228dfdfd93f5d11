package handler

import (
	"context"
	"net/http"

	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

type ClientLister interface {
	List(ctx context.Context) ([]*domain.Client, error)
}

func ListClients(clients ClientLister) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		list, err := clients.List(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao listar clientes")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar clientes no banco de dados", nil)
			return
		}

		writeJSON(w, http.StatusOK, list)
	})
}
