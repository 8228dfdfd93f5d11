package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/internal/usecases/importing"
	"github.com/vfg2006/ad-report-importer/pkg/utils"
)

const cliSource = "cli"

var (
	importFile   string
	importClient string
	importSource string
	importYes    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Importa uma planilha de métricas",
	Long: `Lê a planilha, resolve o cliente pelo nome da conta (ou por --client) e grava as
métricas. Se o cliente não existir, pergunta antes de criá-lo; use --yes para
criar sem perguntar.`,
	Example: `
  importer import --file ./export.csv
  importer import --file ./relatorio.xlsx --client "Loja Centro" --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("erro ao ler %s: %w", importFile, err)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var confirmer importing.Confirmer = importing.PromptConfirmer{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
		}
		if importYes {
			confirmer = importing.AutoConfirmer{}
		}

		result, err := a.importer.Import(cmd.Context(), &domain.ImportRequest{
			FileName:   filepath.Base(importFile),
			Content:    content,
			Source:     importSource,
			ClientName: importClient,
		}, confirmer)

		fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(result))
		return err
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Caminho da planilha (CSV, XLSX ou XLS)")
	importCmd.Flags().StringVarP(&importClient, "client", "c", "", "Nome do cliente, substitui a coluna da conta")
	importCmd.Flags().StringVar(&importSource, "source", cliSource, "Origem registrada no histórico")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Cria o cliente sem perguntar")
	_ = importCmd.MarkFlagRequired("file")
}
