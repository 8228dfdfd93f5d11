package importing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository/mocks"
	"github.com/vfg2006/ad-report-importer/infrastructure/spreadsheet"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"go.uber.org/mock/gomock"
)

const exportCSV = "Raw Data Report\n" +
	"Nombre de la cuenta;Nombre del anuncio;Identificador del anuncio;Día;Impresiones;Importe gastado (EUR);Valor de conversión de compras\n" +
	"Óptica Centro;Anúncio 1;111;09/11/2023;1.000;10,00;30,00\n" +
	"Óptica Centro;Anúncio 2;;09/11/2023;500;5,00;0\n" +
	"Óptica Centro;Anúncio 1;111;10/11/2023;800;8,00;16,00\n" +
	";;;;2.300;23,00;46,00\n"

type serviceMocks struct {
	clientRepo *mocks.MockClientRepository
	metricRepo *mocks.MockMetricRepository
	batchRepo  *mocks.MockImportBatchRepository
}

func newTestService(t *testing.T) (*Service, *serviceMocks) {
	ctrl := gomock.NewController(t)

	m := &serviceMocks{
		clientRepo: mocks.NewMockClientRepository(ctrl),
		metricRepo: mocks.NewMockMetricRepository(ctrl),
		batchRepo:  mocks.NewMockImportBatchRepository(ctrl),
	}

	cfg := &config.Config{
		Import: config.Import{
			SheetNames:    []string{"Raw Data Report"},
			TitlePhrases:  []string{"Raw Data Report"},
			DefaultSource: "upload",
		},
	}

	svc := NewService(cfg, m.clientRepo, m.metricRepo, m.batchRepo).(*Service)
	svc.newID = func() string { return "batch-1" }
	return svc, m
}

func TestService_Import(t *testing.T) {
	eur := "EUR"
	existing := &domain.Client{ID: "cli001", Name: "Óptica Centro", NormalizedName: "optica centro", Currency: &eur}
	hash := FileHash([]byte(exportCSV))

	tests := []struct {
		name       string
		fileName   string
		content    string
		clientName string
		cancelled  bool
		confirmer  Confirmer
		setup      func(m *serviceMocks)
		wantCode   string
		validate   func(t *testing.T, result *domain.ImportResult)
	}{
		{
			name:    "Importação concluída",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "optica centro").Return(existing, nil)

				var stagedSession string
				m.metricRepo.EXPECT().
					Stage(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rows []*domain.StagedMetric) error {
						require.Len(t, rows, 3)
						stagedSession = rows[0].SessionID
						for _, r := range rows {
							assert.Equal(t, "cli001", r.ClientID)
							assert.Equal(t, stagedSession, r.SessionID)
						}
						assert.Equal(t, int64(111), rows[1].AdID)
						return nil
					})

				m.metricRepo.EXPECT().
					Merge(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, sessionID string, b *domain.ImportBatch) (*domain.MergeResult, error) {
						assert.Equal(t, stagedSession, sessionID)
						assert.Equal(t, "batch-1", b.ID)
						assert.Equal(t, domain.ImportStatusCompleted, b.Status)
						assert.Equal(t, domain.StateDone, b.State)
						assert.Equal(t, hash, b.FileHash)
						assert.Equal(t, "upload", b.Source)
						assert.Equal(t, "cli001", *b.ClientID)
						assert.Equal(t, 3, b.Valid)
						return &domain.MergeResult{Inserted: 2, Updated: 1}, nil
					})
			},
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusCompleted, result.Status)
				assert.Equal(t, domain.StateDone, result.State)
				assert.Empty(t, result.StoppedAt)
				assert.Equal(t, "batch-1", result.BatchID)
				assert.Equal(t, "cli001", result.ClientID)
				assert.Equal(t, 4, result.Parsed)
				assert.Equal(t, 3, result.Valid)
				assert.Equal(t, 1, result.Skipped)
				assert.Equal(t, 1, result.TotalsRowsSkipped)
				assert.Equal(t, 1, result.SyntheticIDCount)
				assert.Equal(t, 2, result.Inserted)
				assert.Equal(t, 1, result.Updated)
				assert.Equal(t, time.Date(2023, time.November, 9, 0, 0, 0, 0, time.UTC), *result.PeriodStart)
				assert.Equal(t, time.Date(2023, time.November, 10, 0, 0, 0, 0, time.UTC), *result.PeriodEnd)
				assert.NotNil(t, result.Samples.TotalsRow)
			},
		},
		{
			name:       "Nome do cliente informado substitui o do arquivo",
			content:    exportCSV,
			clientName: "Outra Loja",
			confirmer:  AutoConfirmer{},
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "outra loja").Return(nil, nil)
				m.clientRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *domain.Client) error {
						assert.Equal(t, "Outra Loja", c.Name)
						assert.Equal(t, "EUR", *c.Currency)
						return nil
					})
				m.metricRepo.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(nil)
				m.metricRepo.EXPECT().Merge(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.MergeResult{Inserted: 3}, nil)
			},
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusCompleted, result.Status)
				assert.NotEmpty(t, result.ClientID)
				assert.Equal(t, 3, result.Inserted)
			},
		},
		{
			name:    "Arquivo repetido é rejeitado sem registro no histórico",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(true, nil)
			},
			wantCode: apiErrors.ErrFileAlreadyImported,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusRejected, result.Status)
				assert.Equal(t, domain.StateAborted, result.State)
				assert.Equal(t, domain.StateStart, result.StoppedAt)
				assert.Empty(t, result.BatchID)
				assert.Zero(t, result.Parsed)
			},
		},
		{
			name:    "Arquivo sem cabeçalho reconhecível",
			content: "foo;bar\n1;2\n",
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), gomock.Any()).Return(false, nil)
				m.batchRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *domain.ImportBatch) error {
						assert.Equal(t, domain.ImportStatusAborted, b.Status)
						assert.Equal(t, domain.StateFileChecked, b.State)
						require.NotNil(t, b.Reason)
						assert.Contains(t, *b.Reason, ErrMissingHeader.Error())
						return nil
					})
			},
			wantCode: apiErrors.ErrMissingHeader,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusAborted, result.Status)
				assert.Equal(t, domain.StateFileChecked, result.StoppedAt)
				assert.Equal(t, "batch-1", result.BatchID)
			},
		},
		{
			name:    "Arquivo só com linha de totais",
			content: "Nombre del anuncio;Día;Impresiones\n;;2.300\n",
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), gomock.Any()).Return(false, nil)
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrNoDataRows,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, 1, result.Parsed)
				assert.Equal(t, 1, result.TotalsRowsSkipped)
				assert.Equal(t, 1, result.Skipped)
				assert.Zero(t, result.Valid)
			},
		},
		{
			name:    "Todas as linhas inválidas abortam sem resolver o cliente",
			content: "Nombre del anuncio;Día;Impresiones\nAnuncio A;;100\n;01/11/2023;50\n",
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), gomock.Any()).Return(false, nil)
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrNoDataRows,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusAborted, result.Status)
				assert.Equal(t, 2, result.Parsed)
				assert.Equal(t, 1, result.MissingDate)
				assert.Equal(t, 1, result.MissingAdName)
				assert.Zero(t, result.Valid)
				assert.Empty(t, result.ClientID)
			},
		},
		{
			name:     "Formato não suportado",
			fileName: "relatorio.pdf",
			content:  "%PDF-1.4",
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), gomock.Any()).Return(false, nil)
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrUnsupportedFile,
		},
		{
			name:    "Criação do cliente recusada",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "optica centro").Return(nil, nil)
				m.batchRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *domain.ImportBatch) error {
						assert.Equal(t, domain.StateParsed, b.State)
						assert.Nil(t, b.ClientID)
						assert.Equal(t, 3, b.Valid)
						return nil
					})
			},
			wantCode: apiErrors.ErrClientCreationDeclined,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.StateParsed, result.StoppedAt)
				assert.Equal(t, 3, result.Valid)
				assert.Contains(t, result.Reason, "client not found, import aborted")
			},
		},
		{
			name:    "Falha no merge descarta o staging",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "optica centro").Return(existing, nil)
				m.metricRepo.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(nil)
				m.metricRepo.EXPECT().Merge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock detected"))
				m.metricRepo.EXPECT().DiscardStaged(gomock.Any(), gomock.Any()).Return(nil)
				m.batchRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b *domain.ImportBatch) error {
						assert.Equal(t, domain.ImportStatusAborted, b.Status)
						assert.Equal(t, domain.StateRowsStaged, b.State)
						assert.Equal(t, "cli001", *b.ClientID)
						return nil
					})
			},
			wantCode: apiErrors.ErrMergeFailed,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.StateRowsStaged, result.StoppedAt)
				assert.Zero(t, result.Inserted)
				assert.Zero(t, result.Updated)
			},
		},
		{
			name:    "Mesmo arquivo concluído por outra sessão durante o merge",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "optica centro").Return(existing, nil)
				m.metricRepo.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(nil)
				m.metricRepo.EXPECT().Merge(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, repository.ErrFileHashTaken)
				m.metricRepo.EXPECT().DiscardStaged(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrFileAlreadyImported,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusRejected, result.Status)
				assert.Empty(t, result.BatchID)
			},
		},
		{
			name:    "Falha no staging",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, nil)
				m.clientRepo.EXPECT().FindByNormalizedName(gomock.Any(), "optica centro").Return(existing, nil)
				m.metricRepo.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
				m.metricRepo.EXPECT().DiscardStaged(gomock.Any(), gomock.Any()).Return(nil)
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrMergeFailed,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.StateClientResolved, result.StoppedAt)
			},
		},
		{
			name:      "Contexto cancelado antes de começar",
			content:   exportCSV,
			cancelled: true,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
			},
			wantCode: apiErrors.ErrImportCancelled,
			validate: func(t *testing.T, result *domain.ImportResult) {
				assert.Equal(t, domain.ImportStatusAborted, result.Status)
				assert.Equal(t, domain.StateStart, result.StoppedAt)
				assert.Empty(t, result.BatchID)
			},
		},
		{
			name:    "Falha ao consultar hashes",
			content: exportCSV,
			setup: func(m *serviceMocks) {
				m.batchRepo.EXPECT().HasFileHash(gomock.Any(), hash).Return(false, errors.New("timeout"))
				m.batchRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: apiErrors.ErrDatabaseOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService(t)
			tt.setup(m)

			ctx := context.Background()
			if tt.cancelled {
				cancelled, cancel := context.WithCancel(ctx)
				cancel()
				ctx = cancelled
			}

			fileName := tt.fileName
			if fileName == "" {
				fileName = "export.csv"
			}

			result, err := svc.Import(ctx, &domain.ImportRequest{
				FileName:   fileName,
				Content:    []byte(tt.content),
				ClientName: tt.clientName,
			}, tt.confirmer)

			require.NotNil(t, result)
			if tt.wantCode == "" {
				require.NoError(t, err)
			} else {
				var importErr *ImportError
				require.ErrorAs(t, err, &importErr)
				assert.Equal(t, tt.wantCode, importErr.Code)
				assert.NotEqual(t, domain.ImportStatusCompleted, result.Status)
			}
			assert.Equal(t, result.Parsed, result.Valid+result.Skipped)

			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestFileHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", FileHash(nil))
	assert.Len(t, FileHash([]byte(exportCSV)), 64)
	assert.NotEqual(t, FileHash([]byte("a")), FileHash([]byte("a\n")))
}

func TestLocateHeader(t *testing.T) {
	svc, _ := newTestService(t)

	rows := [][]string{
		{""},
		{"Raw Data Report"},
		{"Período: 01/11/2023 - 30/11/2023"},
		{"Nombre del anuncio", "Día"},
		{"Anúncio", "09/11/2023"},
	}
	sheetRows := make([][]spreadsheet.Cell, len(rows))
	for i, r := range rows {
		sheetRows[i] = textRow(r...)
	}

	at, header, err := svc.locateHeader(sheetRows)
	require.NoError(t, err)
	assert.Equal(t, 3, at)
	assert.True(t, header.Has(FieldAdName))

	_, _, err = svc.locateHeader(sheetRows[:3])
	assert.ErrorIs(t, err, ErrMissingHeader)
}
