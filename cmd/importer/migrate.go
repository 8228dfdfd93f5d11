package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/vfg2006/ad-report-importer/infrastructure/migration"
	"github.com/vfg2006/ad-report-importer/internal/config"
	"github.com/vfg2006/ad-report-importer/pkg/log"
)

var migrations = map[string]func(*sql.DB) error{
	"up":     migration.Up,
	"down":   migration.Down,
	"status": migration.Status,
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Aplica ou desfaz as migrações do banco",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("erro ao carregar configuração: %w", err)
		}
		log.Setup(log.Options{Env: cfg.App.Env, Level: cfg.App.LogLevel, File: cfg.App.LogFile})

		db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
		}
		defer db.Close()

		return migrations[args[0]](db)
	},
}
