package main

import (
	"github.com/spf13/cobra"

	"wabalerts/internal/domain/notification"
)

func reportsCmd() *cobra.Command {
	var query notification.ReportQuery

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List gateway delivery reports",
		Long: `List delivery reports kept by the gateway. Dates are YYYY-MM-DD and
default to today.

Examples:
  wabactl reports
  wabactl reports --from 2026-10-01 --to 2026-10-15 --mobile 919999999999 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := query.Filter()
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(e engine) error {
				reports, err := e.ListDeliveryReports(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printReports(cmd.OutOrStdout(), reports)
			})
		},
	}

	cmd.Flags().StringVar(&query.FromDate, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&query.ToDate, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&query.Mobile, "mobile", "", "Only reports for this number")

	return cmd
}
