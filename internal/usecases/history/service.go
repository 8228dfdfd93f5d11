package history

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type HistoryService interface {
	List(ctx context.Context, filters domain.ImportBatchFilters) ([]*domain.ImportBatch, error)
	Get(ctx context.Context, batchID string) (*domain.ImportBatchDetails, error)
	Undo(ctx context.Context, batchID string) (*domain.UndoResult, error)
}

type Service struct {
	batchRepo  repository.ImportBatchRepository
	metricRepo repository.MetricRepository
	newID      func() string
}

func NewService(batchRepo repository.ImportBatchRepository, metricRepo repository.MetricRepository) HistoryService {
	return &Service{
		batchRepo:  batchRepo,
		metricRepo: metricRepo,
		newID:      uuid.NewString,
	}
}

// List devolve as entradas do histórico, das mais recentes para as mais antigas
func (s *Service) List(ctx context.Context, filters domain.ImportBatchFilters) ([]*domain.ImportBatch, error) {
	if filters.Limit == 0 {
		filters.Limit = defaultListLimit
	}
	filters.Limit = min(filters.Limit, maxListLimit)

	batches, err := s.batchRepo.List(ctx, filters)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("Erro ao listar histórico de importações")
		return nil, NewHistoryError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}
	return batches, nil
}

func (s *Service) Get(ctx context.Context, batchID string) (*domain.ImportBatchDetails, error) {
	batch, err := s.find(ctx, batchID)
	if err != nil {
		return nil, err
	}

	facts, err := s.batchRepo.ListFacts(ctx, batchID)
	if err != nil {
		log.ForContext(ctx).WithError(err).Errorf("Erro ao buscar fatos do lote %s", batchID)
		return nil, NewHistoryError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, batchID, err.Error())
	}

	return &domain.ImportBatchDetails{ImportBatch: batch, Facts: facts}, nil
}

// Undo reverte um lote concluído. A verificação definitiva de status e conflitos
// acontece dentro da transação do repositório.
func (s *Service) Undo(ctx context.Context, batchID string) (*domain.UndoResult, error) {
	original, err := s.find(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.ImportStatusCompleted {
		return nil, NewHistoryError(ErrBatchNotRevertible, apiErrors.ErrBatchNotRevertible, batchID,
			"status atual: "+string(original.Status))
	}

	revert := &domain.ImportBatch{
		ID:          s.newID(),
		Source:      original.Source,
		FileName:    original.FileName,
		FileHash:    original.FileHash,
		ClientID:    original.ClientID,
		Status:      domain.ImportStatusReverted,
		State:       domain.StateDone,
		PeriodStart: original.PeriodStart,
		PeriodEnd:   original.PeriodEnd,
	}

	// a reversão não deve ficar pela metade se o cliente desconectar
	result, err := s.metricRepo.Undo(context.WithoutCancel(ctx), batchID, revert)
	if err != nil {
		return nil, s.undoError(ctx, batchID, err)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"batch_id": batchID,
		"deleted":  result.Deleted,
		"restored": result.Restored,
	}).Infof("Lote %s revertido: %d métricas removidas, %d restauradas", batchID, result.Deleted, result.Restored)

	return result, nil
}

func (s *Service) find(ctx context.Context, batchID string) (*domain.ImportBatch, error) {
	if batchID == "" {
		return nil, NewHistoryError(ErrBatchIDRequired, apiErrors.ErrMissingRequiredData, "", "")
	}
	if _, err := uuid.Parse(batchID); err != nil {
		return nil, NewHistoryError(ErrInvalidBatchID, apiErrors.ErrInvalidFormat, batchID, err.Error())
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		log.ForContext(ctx).WithError(err).Errorf("Erro ao buscar lote %s", batchID)
		return nil, NewHistoryError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, batchID, err.Error())
	}
	if batch == nil {
		return nil, NewHistoryError(ErrBatchNotFound, apiErrors.ErrBatchNotFound, batchID, "")
	}
	return batch, nil
}

func (s *Service) undoError(ctx context.Context, batchID string, err error) error {
	switch {
	case errors.Is(err, repository.ErrBatchNotFound):
		return NewHistoryError(ErrBatchNotFound, apiErrors.ErrBatchNotFound, batchID, "")
	case errors.Is(err, repository.ErrBatchNotRevertible):
		return NewHistoryError(ErrBatchNotRevertible, apiErrors.ErrBatchNotRevertible, batchID, "")
	case errors.Is(err, repository.ErrBatchReverted):
		return NewHistoryError(ErrBatchReverted, apiErrors.ErrBatchReverted, batchID, "")
	case errors.Is(err, repository.ErrUndoConflict):
		return NewHistoryError(ErrUndoConflict, apiErrors.ErrUndoConflict, batchID,
			"desfaça primeiro as importações mais recentes do mesmo cliente")
	default:
		log.ForContext(ctx).WithError(err).Errorf("Erro ao reverter lote %s", batchID)
		return NewHistoryError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, batchID, err.Error())
	}
}
