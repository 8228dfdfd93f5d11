package history

import (
	"errors"
	"fmt"
)

// Erros do histórico de importações
var (
	ErrBatchIDRequired = errors.New("batch ID is required")
	ErrInvalidBatchID  = errors.New("invalid batch ID")

	ErrBatchNotFound      = errors.New("import batch not found")
	ErrBatchNotRevertible = errors.New("only completed imports can be reverted")
	ErrBatchReverted      = errors.New("import batch already reverted")
	ErrUndoConflict       = errors.New("a later import changed the same metrics")

	ErrDatabaseOperation = errors.New("database operation error")
)

// HistoryError carrega o código da API e o lote envolvido
type HistoryError struct {
	Err     error
	Code    string
	BatchID string
	Details string
}

func (e *HistoryError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

func NewHistoryError(err error, code, batchID, details string) *HistoryError {
	return &HistoryError{
		Err:     err,
		Code:    code,
		BatchID: batchID,
		Details: details,
	}
}
