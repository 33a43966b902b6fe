package main

import (
	"fmt"
	"strconv"

	"wabalerts/internal/domain/notification"

	"github.com/spf13/cobra"
)

func broadcastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast <group-id>",
		Short: "Send the coupon announcement to a subscriber group",
		Long: `Send the configured coupon announcement to every member of a group in a
single gateway request.

Examples:
  wabactl broadcast 3`,
		Args: cobra.ExactArgs(1),
		RunE: runBroadcast,
	}
}

func runBroadcast(cmd *cobra.Command, args []string) error {
	groupID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || groupID <= 0 {
		return fmt.Errorf("invalid group id %q", args[0])
	}

	return withEngine(cmd.Context(), func(e engine) error {
		result, err := e.DispatchGroup(cmd.Context(), notification.GroupBroadcast{GroupID: groupID})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), "Group messages", result)
	})
}
