package main

import (
	"github.com/spf13/cobra"

	"financeiro/internal/termui"
)

func newSummaryCmd(flags *rootFlags) *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.close()

			return termui.Render(cmd.OutOrStdout(), a.svc.Dashboard(ctx), a.svc.Transactions(ctx), termui.Options{
				ShowTable: showTable,
			})
		},
	}
	cmd.Flags().BoolVar(&showTable, "table", false, "also print every ledger row")
	return cmd
}
