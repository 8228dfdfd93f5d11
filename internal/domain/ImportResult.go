package domain

import "time"

// ImportResult é o relatório devolvido ao final de cada tentativa de importação
type ImportResult struct {
	BatchID     string       `json:"batch_id,omitempty"`
	Status      ImportStatus `json:"status"`
	State       ImportState  `json:"state"`
	StoppedAt   ImportState  `json:"stopped_at,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	ClientID    string       `json:"client_id,omitempty"`
	FileHash    string       `json:"file_hash"`
	PeriodStart *time.Time   `json:"period_start"`
	PeriodEnd   *time.Time   `json:"period_end"`
	Samples     RowSamples   `json:"samples"`
	ImportCounts
}

// ImportRequest descreve um arquivo a ser importado
type ImportRequest struct {
	FileName   string
	Content    []byte
	Source     string
	ClientName string
}

type UndoResult struct {
	BatchID         string `json:"batch_id"`
	RevertedBatchID string `json:"reverted_batch_id"`
	Deleted         int    `json:"deleted"`
	Restored        int    `json:"restored"`
}

// MergeResult é o retorno da etapa de merge
type MergeResult struct {
	Inserted int
	Updated  int
}
