package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo ID",
	Short: "Desfaz uma importação concluída",
	Long: `Remove as métricas inseridas pelo lote, restaura os valores que ele sobrescreveu
e libera o arquivo para uma nova importação. Só é possível desfazer o lote mais
recente que tocou cada métrica.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.history.Undo(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Lote %s revertido pelo lote %s: %d métricas removidas, %d restauradas\n",
			result.RevertedBatchID, result.BatchID, result.Deleted, result.Restored)
		return nil
	},
}
