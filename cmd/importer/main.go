package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ad-report-importer/infrastructure/database/postgres"
	"github.com/vfg2006/ad-report-importer/infrastructure/repository"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/internal/usecases/history"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Importa exportações de métricas de anúncios para o banco",
	Long: `Importa planilhas (CSV, XLSX ou XLS) exportadas do gerenciador de anúncios.

Cada arquivo é importado uma única vez; linhas repetidas em arquivos diferentes
atualizam as métricas já gravadas. O histórico guarda cada tentativa e permite
desfazer uma importação concluída.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			os.Setenv("LOG_LEVEL", "debug")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mostra logs de depuração")

	rootCmd.AddCommand(importCmd, historyCmd, undoCmd, migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// app reúne conexão e serviços usados pelos comandos
type app struct {
	cfg      *config.Config
	conn     *postgres.Connection
	importer importing.ImportService
	history  history.HistoryService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar configuração: %w", err)
	}

	log.Setup(log.Options{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
	}

	clientRepo := repository.NewClientRepository(conn)
	metricRepo := repository.NewMetricRepository(conn)
	batchRepo := repository.NewImportBatchRepository(conn)

	return &app{
		cfg:      cfg,
		conn:     conn,
		importer: importing.NewService(cfg, clientRepo, metricRepo, batchRepo),
		history:  history.NewService(batchRepo, metricRepo),
	}, nil
}

func (a *app) Close() {
	a.conn.Close()
}
