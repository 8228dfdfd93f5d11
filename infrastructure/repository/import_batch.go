package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/ad-report-importer/infrastructure/database/postgres"
	"github.com/vfg2006/ad-report-importer/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	importBatchesTable    = "import_batches"
	importedFilesTable    = "imported_files"
	importBatchFactsTable = "import_batch_facts"
	importedFilesPkey     = "imported_files_pkey"
	importBatchRevertsKey = "import_batches_reverts_key"
)

const importBatchColumns = "id, source, file_name, file_hash, client_id, status, state, reason, " +
	"period_start, period_end, parsed, valid, skipped, missing_date, missing_ad_name, " +
	"totals_rows_skipped, synthetic_id_count, inserted, updated, reverts_batch_id, samples, created_at"

type ImportBatchRepository interface {
	HasFileHash(ctx context.Context, fileHash string) (bool, error)
	Save(ctx context.Context, batch *domain.ImportBatch) error
	GetByID(ctx context.Context, batchID string) (*domain.ImportBatch, error)
	List(ctx context.Context, filters domain.ImportBatchFilters) ([]*domain.ImportBatch, error)
	ListFacts(ctx context.Context, batchID string) ([]*domain.BatchFact, error)
}

type importBatchRepository struct {
	conn postgres.Conn
}

func NewImportBatchRepository(conn postgres.Conn) ImportBatchRepository {
	return &importBatchRepository{
		conn: conn,
	}
}

func (r *importBatchRepository) HasFileHash(ctx context.Context, fileHash string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(importedFilesTable).
		Where(squirrel.Eq{"file_hash": fileHash}).
		Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("erro ao verificar hash do arquivo: %w", err)
	}

	return exists, nil
}

// Save grava uma entrada do histórico fora do merge (importações abortadas)
func (r *importBatchRepository) Save(ctx context.Context, batch *domain.ImportBatch) error {
	return insertBatch(ctx, r.conn, batch)
}

func (r *importBatchRepository) GetByID(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	query, args, err := squirrel.
		Select(importBatchColumns).
		From(importBatchesTable).
		Where(squirrel.Eq{"id": batchID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	batch, err := scanBatch(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear lote: %w", err)
	}

	return batch, nil
}

func (r *importBatchRepository) List(ctx context.Context, filters domain.ImportBatchFilters) ([]*domain.ImportBatch, error) {
	queryBuilder := squirrel.
		Select(importBatchColumns).
		From(importBatchesTable).
		OrderBy("seq DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filters.ClientID != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"client_id": *filters.ClientID})
	}
	if len(filters.Status) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"status": filters.Status})
	}
	if filters.Since != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"created_at": *filters.Since})
	}
	if filters.Limit > 0 {
		queryBuilder = queryBuilder.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		queryBuilder = queryBuilder.Offset(filters.Offset)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	batches := make([]*domain.ImportBatch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lote: %w", err)
		}
		batches = append(batches, batch)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return batches, nil
}

func (r *importBatchRepository) ListFacts(ctx context.Context, batchID string) ([]*domain.BatchFact, error) {
	query, args, err := squirrel.
		Select("batch_id, client_id, date, ad_id, action, previous").
		From(importBatchFactsTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		OrderBy("date ASC", "ad_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	facts := make([]*domain.BatchFact, 0)
	for rows.Next() {
		var (
			fact     domain.BatchFact
			previous []byte
		)
		if err := rows.Scan(&fact.BatchID, &fact.Key.ClientID, &fact.Key.Date, &fact.Key.AdID, &fact.Action, &previous); err != nil {
			return nil, fmt.Errorf("erro ao escanear fato do lote: %w", err)
		}

		if len(previous) > 0 {
			fact.Previous = &domain.Measures{}
			if err := json.Unmarshal(previous, fact.Previous); err != nil {
				return nil, fmt.Errorf("erro ao deserializar métricas anteriores: %w", err)
			}
		}

		facts = append(facts, &fact)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return facts, nil
}

func insertBatch(ctx context.Context, q postgres.Queryer, b *domain.ImportBatch) error {
	samples, err := json.Marshal(b.Samples)
	if err != nil {
		return fmt.Errorf("erro ao serializar amostras: %w", err)
	}

	query, args, err := squirrel.
		Insert(importBatchesTable).
		Columns(
			"id", "source", "file_name", "file_hash", "client_id", "status", "state", "reason",
			"period_start", "period_end", "parsed", "valid", "skipped", "missing_date", "missing_ad_name",
			"totals_rows_skipped", "synthetic_id_count", "inserted", "updated", "reverts_batch_id", "samples",
		).
		Values(
			b.ID, b.Source, b.FileName, b.FileHash, b.ClientID, b.Status, b.State, b.Reason,
			b.PeriodStart, b.PeriodEnd, b.Parsed, b.Valid, b.Skipped, b.MissingDate, b.MissingAdName,
			b.TotalsRowsSkipped, b.SyntheticIDCount, b.Inserted, b.Updated, b.RevertsBatchID, string(samples),
		).
		Suffix("RETURNING created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if err := q.QueryRowContext(ctx, query, args...).Scan(&b.CreatedAt); err != nil {
		if postgres.IsUniqueViolation(err, importBatchRevertsKey) {
			return ErrBatchReverted
		}
		return fmt.Errorf("erro ao gravar lote de importação: %w", err)
	}

	return nil
}

// claimFileHash registra o hash dentro da transação do merge; uma importação
// concorrente do mesmo arquivo falha aqui e tem a transação desfeita
func claimFileHash(ctx context.Context, q postgres.Queryer, fileHash, batchID string) error {
	query, args, err := squirrel.
		Insert(importedFilesTable).
		Columns("file_hash", "batch_id").
		Values(fileHash, batchID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err, importedFilesPkey) {
			return ErrFileHashTaken
		}
		return fmt.Errorf("erro ao registrar hash do arquivo: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*domain.ImportBatch, error) {
	var (
		b       domain.ImportBatch
		samples []byte
	)

	if err := row.Scan(
		&b.ID,
		&b.Source,
		&b.FileName,
		&b.FileHash,
		&b.ClientID,
		&b.Status,
		&b.State,
		&b.Reason,
		&b.PeriodStart,
		&b.PeriodEnd,
		&b.Parsed,
		&b.Valid,
		&b.Skipped,
		&b.MissingDate,
		&b.MissingAdName,
		&b.TotalsRowsSkipped,
		&b.SyntheticIDCount,
		&b.Inserted,
		&b.Updated,
		&b.RevertsBatchID,
		&samples,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(samples) > 0 {
		if err := json.Unmarshal(samples, &b.Samples); err != nil {
			return nil, fmt.Errorf("erro ao deserializar amostras: %w", err)
		}
	}

	return &b, nil
}
