package migration

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var migrations embed.FS

const migrationsDir = "sql"

// Up aplica as migrações pendentes
func Up(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("erro ao obter versão do banco: %w", err)
	}

	logrus.WithField("version", version).Info("Migrações aplicadas com sucesso")
	return nil
}

// Down desfaz a última migração aplicada
func Down(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}

	if err := goose.Down(db, migrationsDir); err != nil {
		return fmt.Errorf("erro ao desfazer migração: %w", err)
	}
	return nil
}

// Status registra no log a situação de cada migração
func Status(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.Status(db, migrationsDir)
}

func setup() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logrus.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("erro ao configurar dialeto das migrações: %w", err)
	}
	return nil
}
