package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de importação (1000-1999)
	ErrFileAlreadyImported    = "IMP_001" // Arquivo já importado
	ErrUnsupportedFile        = "IMP_002" // Formato de arquivo não suportado
	ErrMissingHeader          = "IMP_003" // Linha de cabeçalho não encontrada
	ErrNoDataRows             = "IMP_004" // Arquivo sem linhas de dados
	ErrMissingClientName      = "IMP_005" // Nome da conta ausente no arquivo
	ErrClientNotFound         = "IMP_006" // Cliente não encontrado
	ErrClientCreationDeclined = "IMP_007" // Criação do cliente recusada
	ErrMergeFailed            = "IMP_008" // Falha ao aplicar as métricas
	ErrImportCancelled        = "IMP_009" // Importação cancelada

	// Erros do histórico (3000-3999)
	ErrBatchNotFound      = "HIS_001" // Lote não encontrado
	ErrBatchNotRevertible = "HIS_002" // Lote não pode ser desfeito
	ErrBatchReverted      = "HIS_003" // Lote já desfeito
	ErrUndoConflict       = "HIS_004" // Lote posterior alterou as mesmas métricas

	// Erros de validação (2000-2999)
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrPayloadTooLarge     = "VAL_004" // Arquivo acima do limite
	ErrNotFound            = "VAL_005" // Rota inexistente
	ErrMethodNotAllowed    = "VAL_006" // Método não aceito na rota

	// Erros do servidor (5000-5999)
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrSchedulerBusy     = "SRV_003" // Tarefa agendada já em execução
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrFileAlreadyImported:    http.StatusConflict,
	ErrUnsupportedFile:        http.StatusUnsupportedMediaType,
	ErrMissingHeader:          http.StatusUnprocessableEntity,
	ErrNoDataRows:             http.StatusUnprocessableEntity,
	ErrMissingClientName:      http.StatusUnprocessableEntity,
	ErrClientNotFound:         http.StatusNotFound,
	ErrClientCreationDeclined: http.StatusUnprocessableEntity,
	ErrMergeFailed:            http.StatusInternalServerError,
	ErrImportCancelled:        http.StatusRequestTimeout,
	ErrBatchNotFound:          http.StatusNotFound,
	ErrBatchNotRevertible:     http.StatusUnprocessableEntity,
	ErrBatchReverted:          http.StatusConflict,
	ErrUndoConflict:           http.StatusConflict,
	ErrInvalidRequest:         http.StatusBadRequest,
	ErrMissingRequiredData:    http.StatusBadRequest,
	ErrInvalidFormat:          http.StatusBadRequest,
	ErrPayloadTooLarge:        http.StatusRequestEntityTooLarge,
	ErrNotFound:               http.StatusNotFound,
	ErrMethodNotAllowed:       http.StatusMethodNotAllowed,
	ErrInternalServer:         http.StatusInternalServerError,
	ErrDatabaseOperation:      http.StatusInternalServerError,
	ErrSchedulerBusy:          http.StatusConflict,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

// StatusFor retorna o status HTTP do código
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}
