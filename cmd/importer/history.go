package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ad-report-importer/internal/domain"
	"github.com/vfg2006/ad-report-importer/pkg/utils"
)

var (
	historyClient string
	historyStatus []string
	historySince  string
	historyLimit  uint64
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history [ID]",
	Short: "Lista o histórico de importações ou detalha um lote",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			details, err := a.history.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(details))
			return nil
		}

		filters := domain.ImportBatchFilters{Limit: historyLimit}
		if historyClient != "" {
			filters.ClientID = &historyClient
		}
		since, err := utils.ParseDate(historySince)
		if err != nil {
			return fmt.Errorf("--since deve estar no formato AAAA-MM-DD: %w", err)
		}
		filters.Since = since
		for _, s := range historyStatus {
			filters.Status = append(filters.Status, domain.ImportStatus(s))
		}

		batches, err := a.history.List(cmd.Context(), filters)
		if err != nil {
			return err
		}

		if historyJSON {
			fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(batches))
			return nil
		}
		return writeHistoryTable(cmd.OutOrStdout(), batches)
	},
}

func writeHistoryTable(out io.Writer, batches []*domain.ImportBatch) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATA\tSTATUS\tETAPA\tARQUIVO\tCLIENTE\tINSERIDAS\tATUALIZADAS\tMOTIVO")

	for _, b := range batches {
		clientID := "-"
		if b.ClientID != nil {
			clientID = *b.ClientID
		}
		reason := ""
		if b.Reason != nil {
			reason = truncate(*b.Reason, 60)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			b.ID, b.CreatedAt.Local().Format(time.DateTime), b.Status, b.State,
			b.FileName, clientID, b.Inserted, b.Updated, reason)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n-1])) + "…"
}

func init() {
	historyCmd.Flags().StringVar(&historyClient, "client", "", "Filtra pelo ID do cliente")
	historyCmd.Flags().StringSliceVar(&historyStatus, "status", nil, "Filtra por status (completed, aborted, reverted)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Somente importações a partir da data (AAAA-MM-DD)")
	historyCmd.Flags().Uint64Var(&historyLimit, "limit", 20, "Quantidade de entradas")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Saída em JSON")
}
