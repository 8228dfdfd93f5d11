package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"go.uber.org/mock/gomock"
)

const (
	batchID  = "3f1c2a7e-9b1d-4d53-8f0e-2a6c1b7d9e10"
	revertID = "b7a0d5c4-1e2f-4a3b-9c8d-7e6f5a4b3c2d"
)

type historyMocks struct {
	batchRepo  *mocks.MockImportBatchRepository
	metricRepo *mocks.MockMetricRepository
}

func newTestService(t *testing.T) (*Service, historyMocks) {
	ctrl := gomock.NewController(t)
	m := historyMocks{
		batchRepo:  mocks.NewMockImportBatchRepository(ctrl),
		metricRepo: mocks.NewMockMetricRepository(ctrl),
	}
	svc := NewService(m.batchRepo, m.metricRepo).(*Service)
	svc.newID = func() string { return revertID }
	return svc, m
}

func completedBatch() *domain.ImportBatch {
	clientID := "Ab3dE9"
	return &domain.ImportBatch{
		ID:       batchID,
		Source:   "upload",
		FileName: "export.csv",
		FileHash: "abc",
		ClientID: &clientID,
		Status:   domain.ImportStatusCompleted,
		State:    domain.StateDone,
	}
}

func assertHistoryCode(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	var historyErr *HistoryError
	require.ErrorAs(t, err, &historyErr)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, code, historyErr.Code)
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name     string
		filters  domain.ImportBatchFilters
		setup    func(m historyMocks)
		validate func(t *testing.T, batches []*domain.ImportBatch, err error)
	}{
		{
			name:    "Aplica limite padrão",
			filters: domain.ImportBatchFilters{},
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().
					List(gomock.Any(), domain.ImportBatchFilters{Limit: defaultListLimit}).
					Return([]*domain.ImportBatch{completedBatch()}, nil)
			},
			validate: func(t *testing.T, batches []*domain.ImportBatch, err error) {
				require.NoError(t, err)
				assert.Len(t, batches, 1)
			},
		},
		{
			name:    "Limita páginas grandes",
			filters: domain.ImportBatchFilters{Limit: 10_000, Offset: 20},
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().
					List(gomock.Any(), domain.ImportBatchFilters{Limit: maxListLimit, Offset: 20}).
					Return([]*domain.ImportBatch{}, nil)
			},
			validate: func(t *testing.T, batches []*domain.ImportBatch, err error) {
				require.NoError(t, err)
				assert.Empty(t, batches)
			},
		},
		{
			name: "Erro do banco",
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("conexão perdida"))
			},
			validate: func(t *testing.T, batches []*domain.ImportBatch, err error) {
				assertHistoryCode(t, err, ErrDatabaseOperation, apiErrors.ErrDatabaseOperation)
				assert.Nil(t, batches)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setup(m)
			batches, err := svc.List(context.Background(), tt.filters)
			tt.validate(t, batches, err)
		})
	}
}

func TestService_Get(t *testing.T) {
	tests := []struct {
		name     string
		batchID  string
		setup    func(m historyMocks)
		validate func(t *testing.T, details *domain.ImportBatchDetails, err error)
	}{
		{
			name:    "Lote com fatos",
			batchID: batchID,
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(completedBatch(), nil)
				m.batchRepo.EXPECT().ListFacts(gomock.Any(), batchID).Return([]*domain.BatchFact{
					{BatchID: batchID, Action: domain.BatchFactInserted},
					{BatchID: batchID, Action: domain.BatchFactUpdated, Previous: &domain.Measures{Spend: 3}},
				}, nil)
			},
			validate: func(t *testing.T, details *domain.ImportBatchDetails, err error) {
				require.NoError(t, err)
				assert.Equal(t, batchID, details.ID)
				assert.Len(t, details.Facts, 2)
			},
		},
		{
			name:    "ID vazio",
			batchID: "",
			setup:   func(m historyMocks) {},
			validate: func(t *testing.T, details *domain.ImportBatchDetails, err error) {
				assertHistoryCode(t, err, ErrBatchIDRequired, apiErrors.ErrMissingRequiredData)
			},
		},
		{
			name:    "ID fora do formato",
			batchID: "lote-1",
			setup:   func(m historyMocks) {},
			validate: func(t *testing.T, details *domain.ImportBatchDetails, err error) {
				assertHistoryCode(t, err, ErrInvalidBatchID, apiErrors.ErrInvalidFormat)
			},
		},
		{
			name:    "Lote inexistente",
			batchID: batchID,
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(nil, nil)
			},
			validate: func(t *testing.T, details *domain.ImportBatchDetails, err error) {
				assertHistoryCode(t, err, ErrBatchNotFound, apiErrors.ErrBatchNotFound)
				assert.Nil(t, details)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setup(m)
			details, err := svc.Get(context.Background(), tt.batchID)
			tt.validate(t, details, err)
		})
	}
}

func TestService_Undo(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m historyMocks)
		validate func(t *testing.T, result *domain.UndoResult, err error)
	}{
		{
			name: "Reverte lote concluído",
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(completedBatch(), nil)
				m.metricRepo.EXPECT().
					Undo(gomock.Any(), batchID, gomock.Any()).
					DoAndReturn(func(_ context.Context, id string, revert *domain.ImportBatch) (*domain.UndoResult, error) {
						assert.Equal(t, revertID, revert.ID)
						assert.Equal(t, domain.ImportStatusReverted, revert.Status)
						assert.Equal(t, "abc", revert.FileHash)
						require.NotNil(t, revert.ClientID)
						assert.Equal(t, "Ab3dE9", *revert.ClientID)
						return &domain.UndoResult{BatchID: revert.ID, RevertedBatchID: id, Deleted: 4, Restored: 2}, nil
					})
			},
			validate: func(t *testing.T, result *domain.UndoResult, err error) {
				require.NoError(t, err)
				assert.Equal(t, revertID, result.BatchID)
				assert.Equal(t, batchID, result.RevertedBatchID)
				assert.Equal(t, 4, result.Deleted)
				assert.Equal(t, 2, result.Restored)
			},
		},
		{
			name: "Lote abortado não pode ser revertido",
			setup: func(m historyMocks) {
				b := completedBatch()
				b.Status = domain.ImportStatusAborted
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(b, nil)
			},
			validate: func(t *testing.T, result *domain.UndoResult, err error) {
				assertHistoryCode(t, err, ErrBatchNotRevertible, apiErrors.ErrBatchNotRevertible)
			},
		},
		{
			name: "Lote já revertido",
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(completedBatch(), nil)
				m.metricRepo.EXPECT().Undo(gomock.Any(), batchID, gomock.Any()).Return(nil, repository.ErrBatchReverted)
			},
			validate: func(t *testing.T, result *domain.UndoResult, err error) {
				assertHistoryCode(t, err, ErrBatchReverted, apiErrors.ErrBatchReverted)
			},
		},
		{
			name: "Importação posterior tocou os mesmos fatos",
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(completedBatch(), nil)
				m.metricRepo.EXPECT().Undo(gomock.Any(), batchID, gomock.Any()).Return(nil, repository.ErrUndoConflict)
			},
			validate: func(t *testing.T, result *domain.UndoResult, err error) {
				assertHistoryCode(t, err, ErrUndoConflict, apiErrors.ErrUndoConflict)
				assert.Nil(t, result)
			},
		},
		{
			name: "Falha na transação",
			setup: func(m historyMocks) {
				m.batchRepo.EXPECT().GetByID(gomock.Any(), batchID).Return(completedBatch(), nil)
				m.metricRepo.EXPECT().Undo(gomock.Any(), batchID, gomock.Any()).Return(nil, errors.New("deadlock"))
			},
			validate: func(t *testing.T, result *domain.UndoResult, err error) {
				assertHistoryCode(t, err, ErrDatabaseOperation, apiErrors.ErrDatabaseOperation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setup(m)
			result, err := svc.Undo(context.Background(), batchID)
			tt.validate(t, result, err)
		})
	}
}
