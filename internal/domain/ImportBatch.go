package domain

import "time"

type ImportStatus string

const (
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusAborted   ImportStatus = "aborted"
	ImportStatusRejected  ImportStatus = "rejected"
	ImportStatusReverted  ImportStatus = "reverted"
)

// ImportState representa as etapas do fluxo de importação
type ImportState string

const (
	StateStart          ImportState = "start"
	StateFileChecked    ImportState = "file_checked"
	StateParsed         ImportState = "parsed"
	StateClientResolved ImportState = "client_resolved"
	StateRowsStaged     ImportState = "rows_staged"
	StateMerged         ImportState = "merged"
	StateLedgered       ImportState = "ledgered"
	StateDone           ImportState = "done"
	StateAborted        ImportState = "aborted"
)

type ImportCounts struct {
	Parsed            int `json:"parsed"`
	Valid             int `json:"valid"`
	Skipped           int `json:"skipped"`
	MissingDate       int `json:"missing_date"`
	MissingAdName     int `json:"missing_ad_name"`
	TotalsRowsSkipped int `json:"totals_rows_skipped"`
	SyntheticIDCount  int `json:"synthetic_id_count"`
	Inserted          int `json:"inserted"`
	Updated           int `json:"updated"`
}

// RowSamples guarda uma linha de exemplo por categoria de rejeição
type RowSamples struct {
	MissingDate   []string `json:"missing_date,omitempty"`
	MissingAdName []string `json:"missing_ad_name,omitempty"`
	TotalsRow     []string `json:"totals_row,omitempty"`
}

func (s RowSamples) IsEmpty() bool {
	return s.MissingDate == nil && s.MissingAdName == nil && s.TotalsRow == nil
}

type ImportBatch struct {
	ID             string       `json:"id"`
	Source         string       `json:"source"`
	FileName       string       `json:"file_name"`
	FileHash       string       `json:"file_hash"`
	ClientID       *string      `json:"client_id"`
	Status         ImportStatus `json:"status"`
	State          ImportState  `json:"state"`
	Reason         *string      `json:"reason"`
	PeriodStart    *time.Time   `json:"period_start"`
	PeriodEnd      *time.Time   `json:"period_end"`
	RevertsBatchID *string      `json:"reverts_batch_id"`
	Samples        RowSamples   `json:"samples"`
	CreatedAt      time.Time    `json:"created_at"`
	ImportCounts
}

type BatchFactAction string

const (
	BatchFactInserted BatchFactAction = "inserted"
	BatchFactUpdated  BatchFactAction = "updated"
)

// BatchFact registra um fato tocado por um lote, com as métricas anteriores quando atualizado
type BatchFact struct {
	BatchID  string          `json:"batch_id"`
	Key      MetricKey       `json:"key"`
	Action   BatchFactAction `json:"action"`
	Previous *Measures       `json:"previous,omitempty"`
}

type ImportBatchFilters struct {
	ClientID *string
	Status   []ImportStatus
	Since    *time.Time
	Limit    uint64
	Offset   uint64
}

// ImportBatchDetails é a entrada do histórico acompanhada dos fatos tocados pelo lote
type ImportBatchDetails struct {
	*ImportBatch
	Facts []*BatchFact `json:"facts"`
}
