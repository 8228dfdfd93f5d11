package repository

import "errors"

// Erros retornados pelos repositórios para que os casos de uso decidam o que fazer
var (
	ErrDuplicateClient    = errors.New("client with same normalized name already exists")
	ErrFileHashTaken      = errors.New("file hash already recorded")
	ErrBatchNotFound      = errors.New("import batch not found")
	ErrBatchNotRevertible = errors.New("import batch cannot be reverted")
	ErrBatchReverted      = errors.New("import batch already reverted")
	ErrUndoConflict       = errors.New("a later import touched the same facts")
)
