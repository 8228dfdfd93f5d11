package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ad-report-importer/infrastructure/database/postgres"
	"github.com/vfg2006/ad-report-importer/infrastructure/migration"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/internal/api"
	"github.com/vfg2006/ad-report-importer/internal/api/handler"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/internal/scheduler"
	"github.com/vfg2006/ad-report-importer/internal/usecases/history"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(log.Options{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	if err := migration.Up(pgConn.DB); err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migrações")
	}

	clientRepo := repository.NewClientRepository(pgConn)
	metricRepo := repository.NewMetricRepository(pgConn)
	batchRepo := repository.NewImportBatchRepository(pgConn)

	importService := importing.NewService(cfg, clientRepo, metricRepo, batchRepo)
	historyService := history.NewService(batchRepo, metricRepo)

	inboxSyncService := scheduler.NewInboxSyncService(importService, cfg)
	stagingCleanupService := scheduler.NewStagingCleanupService(metricRepo, cfg)

	if err := inboxSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da caixa de entrada")
	} else {
		logrus.Info("Agendador da caixa de entrada iniciado com sucesso")
	}

	if err := stagingCleanupService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar a limpeza de staging")
	} else {
		logrus.Info("Limpeza de staging iniciada com sucesso")
	}

	server, err := api.New(cfg, api.Services{
		DB:       pgConn,
		Importer: importService,
		History:  historyService,
		Clients:  clientRepo,
		CronJobs: handler.CronJobServices{
			handler.CronJobTypeInbox:          inboxSyncService,
			handler.CronJobTypeStagingCleanup: stagingCleanupService,
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
