package importing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/infrastructure/spreadsheet"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/apiErrors"
	"github.com/vfg2006/ad-report-importer/pkg/log"
	"github.com/vfg2006/ad-report-importer/pkg/textnorm"
)

// linhas examinadas no topo da planilha à procura do cabeçalho
const maxHeaderScan = 20

type ImportService interface {
	Import(ctx context.Context, req *domain.ImportRequest, confirmer Confirmer) (*domain.ImportResult, error)
	HasBeenImported(ctx context.Context, fileHash string) (bool, error)
}

type Service struct {
	decoder       spreadsheet.Decoder
	resolver      *ClientResolver
	metricRepo    repository.MetricRepository
	batchRepo     repository.ImportBatchRepository
	titlePhrases  []string
	defaultSource string
	newID         func() string
}

func NewService(
	cfg *config.Config,
	clientRepo repository.ClientRepository,
	metricRepo repository.MetricRepository,
	batchRepo repository.ImportBatchRepository,
) ImportService {
	phrases := make([]string, 0, len(cfg.Import.TitlePhrases))
	for _, p := range cfg.Import.TitlePhrases {
		if folded := textnorm.Fold(p); folded != "" {
			phrases = append(phrases, folded)
		}
	}

	return &Service{
		decoder:       spreadsheet.NewDecoder(cfg.Import.SheetNames),
		resolver:      NewClientResolver(clientRepo),
		metricRepo:    metricRepo,
		batchRepo:     batchRepo,
		titlePhrases:  phrases,
		defaultSource: cfg.Import.DefaultSource,
		newID:         uuid.NewString,
	}
}

// FileHash é o SHA-256 em hexadecimal dos bytes do arquivo
func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Service) HasBeenImported(ctx context.Context, fileHash string) (bool, error) {
	return s.batchRepo.HasFileHash(ctx, fileHash)
}

// importRun guarda o estado de uma importação em andamento
type importRun struct {
	batchID   string
	sessionID string
	source    string
	fileName  string
	fileHash  string
	state     domain.ImportState
	clientID  *string
	tally     *rowTally
}

func (r *importRun) advance(state domain.ImportState) {
	r.state = state
}

func (r *importRun) batch(status domain.ImportStatus, reason string) *domain.ImportBatch {
	b := &domain.ImportBatch{
		ID:           r.batchID,
		Source:       r.source,
		FileName:     r.fileName,
		FileHash:     r.fileHash,
		ClientID:     r.clientID,
		Status:       status,
		State:        r.state,
		PeriodStart:  r.tally.periodStart,
		PeriodEnd:    r.tally.periodEnd,
		Samples:      r.tally.samples,
		ImportCounts: r.tally.counts,
	}
	if reason != "" {
		b.Reason = &reason
	}
	return b
}

func (r *importRun) report(status domain.ImportStatus, reason string) *domain.ImportResult {
	res := &domain.ImportResult{
		Status:       status,
		State:        r.state,
		Reason:       reason,
		FileHash:     r.fileHash,
		PeriodStart:  r.tally.periodStart,
		PeriodEnd:    r.tally.periodEnd,
		Samples:      r.tally.samples,
		ImportCounts: r.tally.counts,
	}
	if r.clientID != nil {
		res.ClientID = *r.clientID
	}
	if status != domain.ImportStatusCompleted {
		res.StoppedAt = r.state
		res.State = domain.StateAborted
	}
	return res
}

// Import executa o fluxo completo de uma importação:
// arquivo verificado, linhas lidas, cliente resolvido, staging e merge.
// O resultado nunca é nil; em caso de falha o erro é sempre um *ImportError.
func (s *Service) Import(ctx context.Context, req *domain.ImportRequest, confirmer Confirmer) (*domain.ImportResult, error) {
	ctx, sessionID := log.WithCorrelationID(ctx)

	source := req.Source
	if source == "" {
		source = s.defaultSource
	}

	run := &importRun{
		batchID:   s.newID(),
		sessionID: sessionID,
		source:    source,
		fileName:  req.FileName,
		fileHash:  FileHash(req.Content),
		state:     domain.StateStart,
		tally:     &rowTally{},
	}

	if confirmer == nil {
		confirmer = DeclineConfirmer{}
	}

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"batch_id":  run.batchID,
		"file_name": req.FileName,
		"source":    source,
	})
	logger.Infof("Iniciando importação do arquivo %s", req.FileName)

	if err := ctx.Err(); err != nil {
		return s.abort(ctx, run, ErrImportCancelled, err.Error())
	}

	imported, err := s.batchRepo.HasFileHash(ctx, run.fileHash)
	if err != nil {
		return s.abort(ctx, run, fmt.Errorf("%w: %v", ErrDatabaseOperation, err), "Falha ao verificar arquivos já importados")
	}
	if imported {
		return s.reject(ctx, run, "O arquivo já foi importado anteriormente")
	}
	run.advance(domain.StateFileChecked)

	parsed, err := s.parse(req)
	if parsed != nil {
		run.tally = parsed.tally
	}
	if err != nil {
		return s.abort(ctx, run, err, "Falha ao ler o arquivo")
	}
	run.advance(domain.StateParsed)

	logger.Debugf("Arquivo lido: %d linhas, %d válidas, %d ignoradas",
		run.tally.counts.Parsed, run.tally.counts.Valid, run.tally.counts.Skipped)

	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		clientName = parsed.accountName
	}
	if clientName == "" {
		return s.abort(ctx, run, ErrMissingClientName, "Informe o nome do cliente ou inclua a coluna da conta no arquivo")
	}

	client, err := s.resolver.Resolve(ctx, clientName, parsed.currency, confirmer)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return s.abort(ctx, run, ErrImportCancelled, err.Error())
		}
		return s.abort(ctx, run, err, fmt.Sprintf("Cliente %q", clientName))
	}
	run.clientID = &client.ID
	run.advance(domain.StateClientResolved)

	if err := ctx.Err(); err != nil {
		return s.abort(ctx, run, ErrImportCancelled, err.Error())
	}

	// a partir do staging a importação segue até o commit ou o rollback
	mergeCtx := context.WithoutCancel(ctx)

	staged := FoldRows(run.sessionID, client.ID, run.tally.valid)
	if err := s.metricRepo.Stage(mergeCtx, staged); err != nil {
		s.discardStaged(mergeCtx, run)
		return s.abort(mergeCtx, run, fmt.Errorf("%w: %v", ErrStagingFailed, err), "Falha ao gravar linhas no staging")
	}
	run.advance(domain.StateRowsStaged)

	batch := run.batch(domain.ImportStatusCompleted, "")
	batch.State = domain.StateDone

	merged, err := s.metricRepo.Merge(mergeCtx, run.sessionID, batch)
	if err != nil {
		s.discardStaged(mergeCtx, run)
		if errors.Is(err, repository.ErrFileHashTaken) {
			return s.reject(mergeCtx, run, "O mesmo arquivo foi importado por outra sessão")
		}
		return s.abort(mergeCtx, run, fmt.Errorf("%w: %v", ErrMergeFailed, err), "Nenhuma métrica foi alterada")
	}

	run.tally.counts.Inserted = merged.Inserted
	run.tally.counts.Updated = merged.Updated
	run.advance(domain.StateMerged)
	run.advance(domain.StateLedgered)
	run.advance(domain.StateDone)

	result := run.report(domain.ImportStatusCompleted, "")
	result.BatchID = batch.ID

	logger.WithFields(log.Fields{
		"client_id": client.ID,
		"inserted":  merged.Inserted,
		"updated":   merged.Updated,
	}).Infof("Importação concluída: %d métricas inseridas, %d atualizadas", merged.Inserted, merged.Updated)

	return result, nil
}

type parsedFile struct {
	tally       *rowTally
	accountName string
	currency    string
}

func (s *Service) parse(req *domain.ImportRequest) (*parsedFile, error) {
	sheet, err := s.decoder.Decode(req.FileName, req.Content)
	if err != nil {
		if errors.Is(err, spreadsheet.ErrEmptyFile) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}

	headerAt, header, err := s.locateHeader(sheet.Rows)
	if err != nil {
		return nil, err
	}

	mapper := NewRowMapper(header)
	parsed := &parsedFile{
		tally:    &rowTally{},
		currency: header.Currency,
	}

	for i := headerAt + 1; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		if spreadsheet.IsBlankRow(row) {
			continue
		}

		class, adRow := mapper.Map(i+1, row)
		parsed.tally.add(class, row, adRow)
		if class != RowValid {
			continue
		}

		if parsed.accountName == "" {
			parsed.accountName = adRow.AccountName
		}
		if parsed.currency == "" {
			parsed.currency = currencyCode(mapper.Text(row, FieldCurrency))
		}
	}

	if parsed.tally.counts.Valid == 0 {
		return parsed, ErrNoDataRows
	}

	return parsed, nil
}

// locateHeader ignora linhas em branco e o título do relatório e devolve a primeira
// linha que tenha a coluna de data ou de nome do anúncio
func (s *Service) locateHeader(rows [][]spreadsheet.Cell) (int, *HeaderMap, error) {
	limit := min(len(rows), maxHeaderScan)
	for i := 0; i < limit; i++ {
		row := rows[i]
		if spreadsheet.IsBlankRow(row) || s.isTitleRow(row) {
			continue
		}

		header, err := NormalizeHeader(spreadsheet.Values(row))
		if err != nil {
			continue
		}
		if header.Has(FieldDate) || header.Has(FieldAdName) {
			return i, header, nil
		}
	}

	return 0, nil, ErrMissingHeader
}

func (s *Service) isTitleRow(row []spreadsheet.Cell) bool {
	for _, c := range row {
		if c.IsBlank() {
			continue
		}
		folded := textnorm.Fold(c.Value)
		for _, phrase := range s.titlePhrases {
			if strings.Contains(folded, phrase) {
				return true
			}
		}
		return false
	}
	return false
}

func currencyCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return ""
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return code
}

func (s *Service) discardStaged(ctx context.Context, run *importRun) {
	if err := s.metricRepo.DiscardStaged(ctx, run.sessionID); err != nil {
		log.ForContext(ctx).WithError(err).Errorf("Erro ao limpar staging da sessão %s", run.sessionID)
	}
}

// abort registra a importação abortada no histórico (melhor esforço) e devolve o erro tipado
func (s *Service) abort(ctx context.Context, run *importRun, err error, details string) (*domain.ImportResult, error) {
	importErr := NewImportError(err, errorCode(err), run.state, details)
	result := run.report(domain.ImportStatusAborted, importErr.Error())

	logger := log.ForContext(ctx).WithError(err)

	batch := run.batch(domain.ImportStatusAborted, importErr.Error())
	if saveErr := s.batchRepo.Save(context.WithoutCancel(ctx), batch); saveErr != nil {
		logger.WithField("batch_id", batch.ID).Errorf("Erro ao registrar importação abortada no histórico: %v", saveErr)
	} else {
		result.BatchID = batch.ID
	}

	logger.Warnf("Importação abortada na etapa %s: %s", run.state, details)
	return result, importErr
}

// reject encerra a importação de um arquivo repetido sem efeitos colaterais
func (s *Service) reject(ctx context.Context, run *importRun, details string) (*domain.ImportResult, error) {
	importErr := NewImportError(ErrFileAlreadyImported, apiErrors.ErrFileAlreadyImported, run.state, details)
	result := run.report(domain.ImportStatusRejected, importErr.Error())

	log.ForContext(ctx).WithField("file_hash", run.fileHash).Infof("Arquivo %s rejeitado: %s", run.fileName, details)
	return result, importErr
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrFileAlreadyImported):
		return apiErrors.ErrFileAlreadyImported
	case errors.Is(err, ErrUnsupportedFile):
		return apiErrors.ErrUnsupportedFile
	case errors.Is(err, ErrMissingHeader):
		return apiErrors.ErrMissingHeader
	case errors.Is(err, ErrNoDataRows):
		return apiErrors.ErrNoDataRows
	case errors.Is(err, ErrMissingClientName):
		return apiErrors.ErrMissingClientName
	case errors.Is(err, ErrClientNotFound):
		return apiErrors.ErrClientNotFound
	case errors.Is(err, ErrClientCreationDeclined):
		return apiErrors.ErrClientCreationDeclined
	case errors.Is(err, ErrImportCancelled):
		return apiErrors.ErrImportCancelled
	case errors.Is(err, ErrMergeFailed), errors.Is(err, ErrStagingFailed):
		return apiErrors.ErrMergeFailed
	case errors.Is(err, ErrDatabaseOperation):
		return apiErrors.ErrDatabaseOperation
	default:
		return apiErrors.ErrInternalServer
	}
}
