package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/ad-report-importer/infrastructure/database/postgres"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
)

const (
	stagedMetricsTable = "staged_metrics"
	stageChunkSize     = 500
)

var stagedMetricColumns = []string{
	"session_id", "client_id", "date", "ad_id", "ad_name", "ad_normalized_name", "campaign_name", "adset_name",
	"impressions", "reach", "clicks", "ctr", "spend", "purchases", "purchase_value", "roas", "results",
	"cost_per_result", "video_p25", "video_p50", "video_p75", "video_p95", "video_p100",
}

const upsertAdsSQL = `
INSERT INTO ads (client_id, id, name, normalized_name, campaign_name, adset_name)
SELECT DISTINCT ON (client_id, ad_id) client_id, ad_id, ad_name, ad_normalized_name, campaign_name, adset_name
FROM staged_metrics
WHERE session_id = $1
ORDER BY client_id, ad_id, date DESC
ON CONFLICT (client_id, id) DO UPDATE SET
	name = EXCLUDED.name,
	normalized_name = EXCLUDED.normalized_name,
	campaign_name = CASE WHEN EXCLUDED.campaign_name <> '' THEN EXCLUDED.campaign_name ELSE ads.campaign_name END,
	adset_name = CASE WHEN EXCLUDED.adset_name <> '' THEN EXCLUDED.adset_name ELSE ads.adset_name END,
	updated_at = NOW()`

// mergeFactsSQL faz o upsert dos fatos e registra, no mesmo comando, a ação e as
// métricas anteriores de cada chave. Todos os CTEs enxergam o mesmo snapshot,
// então "previous" lê os valores de antes do upsert.
const mergeFactsSQL = `
WITH staged AS (
	SELECT * FROM staged_metrics WHERE session_id = $1
),
previous AS (
	SELECT m.client_id, m.date, m.ad_id, m.impressions, m.reach, m.clicks, m.ctr, m.spend, m.purchases,
		m.purchase_value, m.roas, m.results, m.cost_per_result,
		m.video_p25, m.video_p50, m.video_p75, m.video_p95, m.video_p100
	FROM ad_metrics m
	JOIN staged s ON s.client_id = m.client_id AND s.date = m.date AND s.ad_id = m.ad_id
	FOR UPDATE OF m
),
upserted AS (
	INSERT INTO ad_metrics (
		client_id, date, ad_id, impressions, reach, clicks, ctr, spend, purchases, purchase_value, roas,
		results, cost_per_result, video_p25, video_p50, video_p75, video_p95, video_p100, updated_at
	)
	SELECT client_id, date, ad_id, impressions, reach, clicks, ctr, spend, purchases, purchase_value, roas,
		results, cost_per_result, video_p25, video_p50, video_p75, video_p95, video_p100, NOW()
	FROM staged
	ON CONFLICT (client_id, date, ad_id) DO UPDATE SET
		impressions = EXCLUDED.impressions,
		reach = EXCLUDED.reach,
		clicks = EXCLUDED.clicks,
		ctr = EXCLUDED.ctr,
		spend = EXCLUDED.spend,
		purchases = EXCLUDED.purchases,
		purchase_value = EXCLUDED.purchase_value,
		roas = EXCLUDED.roas,
		results = EXCLUDED.results,
		cost_per_result = EXCLUDED.cost_per_result,
		video_p25 = EXCLUDED.video_p25,
		video_p50 = EXCLUDED.video_p50,
		video_p75 = EXCLUDED.video_p75,
		video_p95 = EXCLUDED.video_p95,
		video_p100 = EXCLUDED.video_p100,
		updated_at = NOW()
	RETURNING client_id, date, ad_id, (xmax = 0) AS inserted
)
INSERT INTO import_batch_facts (batch_id, client_id, date, ad_id, action, previous)
SELECT $2, u.client_id, u.date, u.ad_id,
	CASE WHEN u.inserted THEN 'inserted' ELSE 'updated' END,
	CASE WHEN u.inserted THEN NULL ELSE to_jsonb(p) - 'client_id' - 'date' - 'ad_id' END
FROM upserted u
LEFT JOIN previous p ON p.client_id = u.client_id AND p.date = u.date AND p.ad_id = u.ad_id
RETURNING action`

// lockClientSQL serializa merges e reversões do mesmo cliente até o fim da transação.
const lockClientSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

const undoConflictSQL = `
SELECT EXISTS (
	SELECT 1
	FROM import_batch_facts mine
	JOIN import_batch_facts later ON later.client_id = mine.client_id AND later.date = mine.date AND later.ad_id = mine.ad_id
	JOIN import_batches lb ON lb.id = later.batch_id
	WHERE mine.batch_id = $1
		AND lb.seq > $2
		AND lb.status = 'completed'
		AND NOT EXISTS (SELECT 1 FROM import_batches r WHERE r.reverts_batch_id = lb.id)
)`

const restoreUpdatedSQL = `
UPDATE ad_metrics m SET
	impressions = p.impressions,
	reach = p.reach,
	clicks = p.clicks,
	ctr = p.ctr,
	spend = p.spend,
	purchases = p.purchases,
	purchase_value = p.purchase_value,
	roas = p.roas,
	results = p.results,
	cost_per_result = p.cost_per_result,
	video_p25 = p.video_p25,
	video_p50 = p.video_p50,
	video_p75 = p.video_p75,
	video_p95 = p.video_p95,
	video_p100 = p.video_p100,
	updated_at = NOW()
FROM import_batch_facts f
CROSS JOIN LATERAL jsonb_populate_record(NULL::ad_metrics, f.previous) p
WHERE f.batch_id = $1
	AND f.action = 'updated'
	AND f.previous IS NOT NULL
	AND m.client_id = f.client_id AND m.date = f.date AND m.ad_id = f.ad_id`

const deleteInsertedSQL = `
DELETE FROM ad_metrics m
USING import_batch_facts f
WHERE f.batch_id = $1
	AND f.action = 'inserted'
	AND m.client_id = f.client_id AND m.date = f.date AND m.ad_id = f.ad_id`

type MetricRepository interface {
	Stage(ctx context.Context, rows []*domain.StagedMetric) error
	Merge(ctx context.Context, sessionID string, batch *domain.ImportBatch) (*domain.MergeResult, error)
	DiscardStaged(ctx context.Context, sessionID string) error
	DeleteStaleStaged(ctx context.Context, olderThan time.Time) (int64, error)
	Undo(ctx context.Context, batchID string, revert *domain.ImportBatch) (*domain.UndoResult, error)
}

type metricRepository struct {
	conn postgres.Conn
}

func NewMetricRepository(conn postgres.Conn) MetricRepository {
	return &metricRepository{
		conn: conn,
	}
}

// Stage grava as linhas consolidadas da sessão na área de staging, em blocos
func (r *metricRepository) Stage(ctx context.Context, rows []*domain.StagedMetric) error {
	if len(rows) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(rows); start += stageChunkSize {
			end := min(start+stageChunkSize, len(rows))

			query := squirrel.
				Insert(stagedMetricsTable).
				Columns(stagedMetricColumns...).
				PlaceholderFormat(squirrel.Dollar)

			for _, s := range rows[start:end] {
				query = query.Values(
					s.SessionID, s.ClientID, s.Date.Format(time.DateOnly), s.AdID, s.AdName, textnorm.Fold(s.AdName),
					s.CampaignName, s.AdSetName, s.Impressions, s.Reach, s.Clicks, s.CTR, s.Spend, s.Purchases,
					s.PurchaseValue, s.ROAS, s.Results, s.CostPerResult,
					s.VideoP25, s.VideoP50, s.VideoP75, s.VideoP95, s.VideoP100,
				)
			}

			stageSQL, stageArgs, err := query.ToSql()
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			if _, err := tx.ExecContext(ctx, stageSQL, stageArgs...); err != nil {
				return fmt.Errorf("erro ao gravar linhas no staging: %w", err)
			}
		}
		return nil
	})
}

// Merge aplica o staging da sessão em uma única transação: registra o hash do arquivo,
// atualiza anúncios e fatos, grava o histórico com os contadores e limpa o staging.
func (r *metricRepository) Merge(ctx context.Context, sessionID string, batch *domain.ImportBatch) (*domain.MergeResult, error) {
	result := &domain.MergeResult{}

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if batch.ClientID != nil {
			if err := lockClient(ctx, tx, *batch.ClientID); err != nil {
				return err
			}
		}

		if err := claimFileHash(ctx, tx, batch.FileHash, batch.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, upsertAdsSQL, sessionID); err != nil {
			return fmt.Errorf("erro ao atualizar anúncios: %w", err)
		}

		rows, err := tx.QueryContext(ctx, mergeFactsSQL, sessionID, batch.ID)
		if err != nil {
			return fmt.Errorf("erro ao aplicar métricas: %w", err)
		}

		for rows.Next() {
			var action domain.BatchFactAction
			if err := rows.Scan(&action); err != nil {
				rows.Close()
				return fmt.Errorf("erro ao escanear resultado do merge: %w", err)
			}
			if action == domain.BatchFactInserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("erro durante a iteração de linhas: %w", err)
		}

		batch.Inserted = result.Inserted
		batch.Updated = result.Updated
		if err := insertBatch(ctx, tx, batch); err != nil {
			return err
		}

		return discardStaged(ctx, tx, sessionID)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *metricRepository) DiscardStaged(ctx context.Context, sessionID string) error {
	return discardStaged(ctx, r.conn, sessionID)
}

// DeleteStaleStaged remove linhas de sessões que não chegaram ao merge
func (r *metricRepository) DeleteStaleStaged(ctx context.Context, olderThan time.Time) (int64, error) {
	query, args, err := squirrel.
		Delete(stagedMetricsTable).
		Where(squirrel.Lt{"created_at": olderThan}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao limpar staging: %w", err)
	}

	return res.RowsAffected()
}

// Undo desfaz um lote concluído: apaga os fatos que ele inseriu, restaura os que
// ele atualizou, libera o hash do arquivo e grava a entrada de reversão no histórico.
func (r *metricRepository) Undo(ctx context.Context, batchID string, revert *domain.ImportBatch) (*domain.UndoResult, error) {
	result := &domain.UndoResult{RevertedBatchID: batchID}

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		lockSQL, lockArgs, err := squirrel.
			Select("seq, status, client_id").
			From(importBatchesTable).
			Where(squirrel.Eq{"id": batchID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		var (
			seq      int64
			status   domain.ImportStatus
			clientID sql.NullString
		)
		if err := tx.QueryRowContext(ctx, lockSQL, lockArgs...).Scan(&seq, &status, &clientID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("erro ao buscar lote: %w", err)
		}
		if status != domain.ImportStatusCompleted {
			return ErrBatchNotRevertible
		}
		if clientID.Valid {
			if err := lockClient(ctx, tx, clientID.String); err != nil {
				return err
			}
		}

		var reverted bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM import_batches WHERE reverts_batch_id = $1)`, batchID,
		).Scan(&reverted); err != nil {
			return fmt.Errorf("erro ao verificar reversão do lote: %w", err)
		}
		if reverted {
			return ErrBatchReverted
		}

		var conflict bool
		if err := tx.QueryRowContext(ctx, undoConflictSQL, batchID, seq).Scan(&conflict); err != nil {
			return fmt.Errorf("erro ao verificar lotes posteriores: %w", err)
		}
		if conflict {
			return ErrUndoConflict
		}

		restored, err := execAffected(ctx, tx, restoreUpdatedSQL, batchID)
		if err != nil {
			return fmt.Errorf("erro ao restaurar métricas anteriores: %w", err)
		}
		deleted, err := execAffected(ctx, tx, deleteInsertedSQL, batchID)
		if err != nil {
			return fmt.Errorf("erro ao remover métricas inseridas: %w", err)
		}

		releaseSQL, releaseArgs, err := squirrel.
			Delete(importedFilesTable).
			Where(squirrel.Eq{"batch_id": batchID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, releaseSQL, releaseArgs...); err != nil {
			return fmt.Errorf("erro ao liberar hash do arquivo: %w", err)
		}

		revert.RevertsBatchID = &batchID
		if err := insertBatch(ctx, tx, revert); err != nil {
			return err
		}

		result.BatchID = revert.ID
		result.Restored = int(restored)
		result.Deleted = int(deleted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func lockClient(ctx context.Context, q postgres.Queryer, clientID string) error {
	if _, err := q.ExecContext(ctx, lockClientSQL, clientID); err != nil {
		return fmt.Errorf("erro ao bloquear cliente %s: %w", clientID, err)
	}
	return nil
}

func discardStaged(ctx context.Context, q postgres.Queryer, sessionID string) error {
	query, args, err := squirrel.
		Delete(stagedMetricsTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao limpar staging da sessão: %w", err)
	}
	return nil
}

func execAffected(ctx context.Context, q postgres.Queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
