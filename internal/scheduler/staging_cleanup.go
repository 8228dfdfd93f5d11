package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-report-importer/internal/config"
)

// StagingPurger remove linhas de staging abandonadas
type StagingPurger interface {
	DeleteStaleStaged(ctx context.Context, olderThan time.Time) (int64, error)
}

type StagingCleanupConfig struct {
	CronSchedule string
	SyncEnabled  bool
	MaxAge       time.Duration
}

// StagingCleanupService apaga o staging deixado por sessões que não chegaram ao merge
type StagingCleanupService struct {
	scheduler   *gocron.Scheduler
	purger      StagingPurger
	config      StagingCleanupConfig
	state       runState
	lastDeleted int64
	now         func() time.Time
}

func NewStagingCleanupService(purger StagingPurger, cfg *config.Config) *StagingCleanupService {
	cleanupConfig := StagingCleanupConfig{
		CronSchedule: cfg.StagingCleanup.CronSchedule,
		SyncEnabled:  cfg.StagingCleanup.Enabled,
		MaxAge:       cfg.StagingCleanup.MaxAge,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": cleanupConfig.CronSchedule,
		"max_age":       cleanupConfig.MaxAge.String(),
	}).Info("Configuração da limpeza de staging carregada")

	return &StagingCleanupService{
		scheduler: gocron.NewScheduler(time.Local),
		purger:    purger,
		config:    cleanupConfig,
		now:       time.Now,
	}
}

func (s *StagingCleanupService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Cron de limpeza de staging desabilitada por configuração")
		return nil
	}

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.CleanupStaging(ctx); err != nil {
			logrus.WithError(err).Error("Erro na limpeza de staging")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de staging: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de limpeza de staging")
		s.scheduler.Stop()
	}()

	return nil
}

// CleanupStaging apaga as linhas de staging mais antigas que MaxAge
func (s *StagingCleanupService) CleanupStaging(ctx context.Context) (int64, error) {
	if !s.state.tryStart() {
		return 0, ErrSyncRunning
	}

	cutoff := s.now().Add(-s.config.MaxAge)
	deleted, err := s.purger.DeleteStaleStaged(ctx, cutoff)
	if err != nil {
		err = fmt.Errorf("erro ao apagar staging antigo: %w", err)
	}
	s.state.finish(err)
	if err != nil {
		return 0, err
	}

	s.state.mu.Lock()
	s.lastDeleted = deleted
	s.state.mu.Unlock()

	if deleted > 0 {
		logrus.WithField("deleted", deleted).Warnf("Removidas %d linhas de staging anteriores a %s", deleted, cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}

func (s *StagingCleanupService) TriggerManualSync(ctx context.Context) bool {
	if s.state.isRunning() {
		logrus.Info("Limpeza de staging já em andamento, ignorando solicitação manual")
		return false
	}

	go func() {
		if _, err := s.CleanupStaging(ctx); err != nil && !errors.Is(err, ErrSyncRunning) {
			logrus.WithError(err).Error("Erro na limpeza manual de staging")
		}
	}()
	return true
}

func (s *StagingCleanupService) GetStatus() map[string]any {
	s.state.mu.Lock()
	deleted := s.lastDeleted
	s.state.mu.Unlock()

	status := s.state.fill(map[string]any{
		"sync_enabled": s.config.SyncEnabled,
		"sync_cron":    s.config.CronSchedule,
		"max_age":      s.config.MaxAge.String(),
	})
	status["last_deleted"] = deleted
	return status
}
