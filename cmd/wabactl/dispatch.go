package main

import (
	"github.com/spf13/cobra"

	"wabalerts/internal/domain/notification"
)

func dispatchCmd() *cobra.Command {
	var req notification.EventRequest
	var kind string

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Dispatch one shop event by hand",
		Long: `Build a shop event from flags and dispatch it as the server would.

Examples:
  # Re-send the completed-order message for order 1042
  wabactl dispatch --kind order_status_changed --order 1042 --status completed

  # Re-send the review approval message
  wabactl dispatch --kind review_approved --user 7 --product 55`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Kind = notification.EventKind(kind)
			ev, err := req.ToEvent()
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(e engine) error {
				result, err := e.Dispatch(cmd.Context(), ev)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), "Message", result)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Event kind, e.g. order_status_changed, user_registered, review_approved")
	cmd.Flags().Int64Var(&req.OrderID, "order", 0, "Order id")
	cmd.Flags().StringVar(&req.Status, "status", "", "New order status")
	cmd.Flags().Int64Var(&req.UserID, "user", 0, "User id")
	cmd.Flags().Int64Var(&req.ProductID, "product", 0, "Product id")
	cmd.Flags().Int64Var(&req.GroupID, "group", 0, "Group id")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
