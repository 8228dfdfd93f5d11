package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
)

const inboxSource = "inbox"

var inboxExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// FileImporter é a parte do serviço de importação usada pela rotina da caixa de entrada
type FileImporter interface {
	Import(ctx context.Context, req *domain.ImportRequest, confirmer importing.Confirmer) (*domain.ImportResult, error)
}

type InboxSyncConfig struct {
	CronSchedule string
	SyncEnabled  bool
	InboxDir     string
	ProcessedDir string
	FailedDir    string
}

// InboxSummary resume uma varredura da caixa de entrada
type InboxSummary struct {
	Files     int `json:"files"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
}

// InboxSyncService importa sem interação os arquivos deixados na caixa de entrada.
// Arquivos importados ou repetidos vão para ProcessedDir, os abortados para FailedDir.
type InboxSyncService struct {
	scheduler   *gocron.Scheduler
	importer    FileImporter
	config      InboxSyncConfig
	state       runState
	lastSummary InboxSummary
	now         func() time.Time
}

func NewInboxSyncService(importer FileImporter, cfg *config.Config) *InboxSyncService {
	syncConfig := InboxSyncConfig{
		CronSchedule: cfg.InboxSync.CronSchedule,
		SyncEnabled:  cfg.InboxSync.Enabled,
		InboxDir:     cfg.Import.InboxDir,
		ProcessedDir: cfg.Import.ProcessedDir,
		FailedDir:    cfg.Import.FailedDir,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": syncConfig.CronSchedule,
		"inbox_dir":     syncConfig.InboxDir,
	}).Info("Configuração do agendador da caixa de entrada carregada")

	return &InboxSyncService{
		scheduler: gocron.NewScheduler(time.Local),
		importer:  importer,
		config:    syncConfig,
		now:       time.Now,
	}
}

func (s *InboxSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Cron da caixa de entrada desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron da caixa de entrada")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.SyncInbox(ctx); err != nil {
			logrus.WithError(err).Error("Erro na varredura da caixa de entrada")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura da caixa de entrada: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron da caixa de entrada")
		s.scheduler.Stop()
	}()

	return nil
}

// SyncInbox importa, em ordem alfabética, cada arquivo suportado da caixa de entrada
func (s *InboxSyncService) SyncInbox(ctx context.Context) (*InboxSummary, error) {
	if !s.state.tryStart() {
		logrus.Warn("Varredura da caixa de entrada já está em execução")
		return nil, ErrSyncRunning
	}

	summary, err := s.syncInbox(ctx)
	s.state.finish(err)
	return summary, err
}

func (s *InboxSyncService) syncInbox(ctx context.Context) (*InboxSummary, error) {
	files, err := s.pendingFiles()
	if err != nil {
		return nil, err
	}

	summary := &InboxSummary{Files: len(files)}
	if len(files) == 0 {
		logrus.Debug("Nenhum arquivo na caixa de entrada")
		return summary, nil
	}

	logrus.WithField("files", len(files)).Info("Iniciando varredura da caixa de entrada")

	for _, name := range files {
		if ctx.Err() != nil {
			logrus.Info("Varredura da caixa de entrada interrompida")
			break
		}

		status := s.importFile(ctx, name)
		switch status {
		case domain.ImportStatusCompleted:
			summary.Completed++
		case domain.ImportStatusRejected:
			summary.Rejected++
		default:
			summary.Failed++
		}
	}

	s.state.mu.Lock()
	s.lastSummary = *summary
	s.state.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"completed": summary.Completed,
		"rejected":  summary.Rejected,
		"failed":    summary.Failed,
	}).Info("Varredura da caixa de entrada concluída")

	return summary, nil
}

func (s *InboxSyncService) pendingFiles() ([]string, error) {
	entries, err := os.ReadDir(s.config.InboxDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao ler caixa de entrada: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !inboxExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (s *InboxSyncService) importFile(ctx context.Context, name string) domain.ImportStatus {
	path := filepath.Join(s.config.InboxDir, name)
	logger := logrus.WithField("file_name", name)

	content, err := os.ReadFile(path)
	if err != nil {
		logger.WithError(err).Error("Erro ao ler arquivo da caixa de entrada")
		s.move(path, s.config.FailedDir)
		return domain.ImportStatusAborted
	}

	result, err := s.importer.Import(ctx, &domain.ImportRequest{
		FileName: name,
		Content:  content,
		Source:   inboxSource,
	}, importing.AutoConfirmer{})

	status := domain.ImportStatusAborted
	if result != nil {
		status = result.Status
	}

	// cancelamento antes do staging deixa o arquivo para a próxima varredura
	if errors.Is(err, importing.ErrImportCancelled) {
		logger.Info("Importação cancelada, arquivo mantido na caixa de entrada")
		return status
	}

	switch status {
	case domain.ImportStatusCompleted, domain.ImportStatusRejected:
		s.move(path, s.config.ProcessedDir)
	default:
		logger.WithError(err).Warn("Importação da caixa de entrada falhou")
		s.move(path, s.config.FailedDir)
	}
	return status
}

// move leva o arquivo para dir, prefixando a data quando já existir um com o mesmo nome
func (s *InboxSyncService) move(path, dir string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).Errorf("Erro ao criar diretório %s", dir)
		return
	}

	target := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(dir, s.now().Format("20060102T150405")+"-"+filepath.Base(path))
	}

	if err := os.Rename(path, target); err != nil {
		logrus.WithError(err).Errorf("Erro ao mover %s para %s", path, target)
	}
}

// TriggerManualSync dispara uma varredura em segundo plano; false se já houver uma em andamento
func (s *InboxSyncService) TriggerManualSync(ctx context.Context) bool {
	if s.state.isRunning() {
		logrus.Info("Varredura da caixa de entrada já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando varredura manual da caixa de entrada")
	go func() {
		if _, err := s.SyncInbox(ctx); err != nil && !errors.Is(err, ErrSyncRunning) {
			logrus.WithError(err).Error("Erro na varredura manual da caixa de entrada")
		}
	}()
	return true
}

func (s *InboxSyncService) GetStatus() map[string]any {
	s.state.mu.Lock()
	summary := s.lastSummary
	s.state.mu.Unlock()

	status := s.state.fill(map[string]any{
		"sync_enabled": s.config.SyncEnabled,
		"sync_cron":    s.config.CronSchedule,
		"inbox_dir":    s.config.InboxDir,
	})
	status["last_summary"] = summary
	return status
}
