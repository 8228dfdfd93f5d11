package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/internal/usecases/history"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"github.com/vfg2006/ad-report-importer/pkg/log"
	"github.com/vfg2006/ad-report-importer/pkg/utils"
)

const (
	uploadSource    = "upload"
	multipartMemory = 8 << 20
)

// CreateImport recebe a planilha em multipart/form-data no campo "file".
// Campos opcionais: client_name, source e create_client (padrão false).
func CreateImport(service importing.ImportService, maxUploadMB int64) http.Handler {
	maxBytes := maxUploadMB << 20

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge,
					"Arquivo maior que "+strconv.FormatInt(maxUploadMB, 10)+" MB", nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Campo 'file' é obrigatório", nil)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			logger.WithError(err).Error("Erro ao ler arquivo enviado")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao ler arquivo enviado", nil)
			return
		}

		createClient := false
		if raw := r.FormValue("create_client"); raw != "" {
			createClient, err = strconv.ParseBool(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "create_client deve ser true ou false", nil)
				return
			}
		}

		var confirmer importing.Confirmer = importing.DeclineConfirmer{}
		if createClient {
			confirmer = importing.AutoConfirmer{}
		}

		source := strings.TrimSpace(r.FormValue("source"))
		if source == "" {
			source = uploadSource
		}

		result, err := service.Import(r.Context(), &domain.ImportRequest{
			FileName:   header.Filename,
			Content:    content,
			Source:     source,
			ClientName: r.FormValue("client_name"),
		}, confirmer)
		if err != nil {
			var importErr *importing.ImportError
			if errors.As(err, &importErr) {
				apiErrors.WriteError(w, importErr.Code, importErr.Error(), result)
				return
			}
			logger.WithError(err).Error("Erro inesperado na importação")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao importar arquivo", result)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	})
}

func ListImports(service history.HistoryService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filters := domain.ImportBatchFilters{}

		if clientID := query.Get("client_id"); clientID != "" {
			filters.ClientID = &clientID
		}
		if status := query.Get("status"); status != "" {
			for _, s := range strings.Split(status, ",") {
				filters.Status = append(filters.Status, domain.ImportStatus(strings.TrimSpace(s)))
			}
		}

		var err error
		if filters.Since, err = utils.ParseDate(query.Get("since")); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "since deve estar no formato AAAA-MM-DD", nil)
			return
		}
		if filters.Limit, err = parseUint(query.Get("limit")); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit inválido", nil)
			return
		}
		if filters.Offset, err = parseUint(query.Get("offset")); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "offset inválido", nil)
			return
		}

		batches, err := service.List(r.Context(), filters)
		if err != nil {
			writeHistoryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, batches)
	})
}

func GetImport(service history.HistoryService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batchID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		details, err := service.Get(r.Context(), batchID)
		if err != nil {
			writeHistoryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, details)
	})
}

func UndoImport(service history.HistoryService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batchID := httprouter.ParamsFromContext(r.Context()).ByName("id")

		result, err := service.Undo(r.Context(), batchID)
		if err != nil {
			writeHistoryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

func writeHistoryError(w http.ResponseWriter, err error) {
	var historyErr *history.HistoryError
	if errors.As(err, &historyErr) {
		apiErrors.WriteError(w, historyErr.Code, historyErr.Error(), nil)
		return
	}
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consultar histórico", nil)
}

func parseUint(raw string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
