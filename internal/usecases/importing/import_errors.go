package importing

import (
	"errors"
	"fmt"

	"github.com/vfg2006/ad-report-importer/internal/domain"
)

// Erros específicos do fluxo de importação
var (
	// Rejeição antes do processamento
	ErrFileAlreadyImported = errors.New("file already imported")

	// Erros estruturais
	ErrUnsupportedFile   = errors.New("unsupported file")
	ErrMissingHeader     = errors.New("header row not found")
	ErrNoDataRows        = errors.New("file has no data rows")
	ErrMissingClientName = errors.New("account name not found in file")

	// Erros de resolução do cliente
	ErrClientNotFound         = errors.New("client not found")
	ErrClientCreationDeclined = errors.New("client not found, import aborted")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("database operation error")
	ErrStagingFailed     = errors.New("error staging rows")
	ErrMergeFailed       = errors.New("error merging rows, nothing was changed")

	ErrImportCancelled = errors.New("import cancelled")
	ErrGenerateID      = errors.New("error generating id")
)

// ImportError é um erro com o contexto da etapa em que a importação parou
type ImportError struct {
	Err     error              // Erro base
	Code    string             // Código de erro para API
	State   domain.ImportState // Última etapa concluída
	Details string             // Detalhes adicionais
}

// Error implementa a interface error
func (e *ImportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *ImportError) Unwrap() error {
	return e.Err
}

func NewImportError(err error, code string, state domain.ImportState, details string) *ImportError {
	return &ImportError{
		Err:     err,
		Code:    code,
		State:   state,
		Details: details,
	}
}
