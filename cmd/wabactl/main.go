// wabactl is the operator CLI for the WhatsApp alert dispatcher.
//
// Usage:
//
//	wabactl broadcast 3
//	wabactl reports --from 2026-10-01 --to 2026-10-15 -o json
//	wabactl dispatch --kind order_status_changed --order 1042 --status completed
//	wabactl settings validate
//	wabactl settings push
package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"wabalerts/internal/app"
	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/logger"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
)

// engine is the part of notification.Engine the commands drive.
type engine interface {
	Dispatch(ctx context.Context, ev notification.Event) (*notification.DispatchResult, error)
	DispatchGroup(ctx context.Context, ev notification.GroupBroadcast) (*notification.DispatchResult, error)
	ListDeliveryReports(ctx context.Context, filter notification.ReportFilter) ([]notification.DeliveryReport, error)
}

// openEngine wires the engine from configuration. Tests replace it.
var openEngine = func(ctx context.Context) (engine, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, "console")
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a.Engine, a.Close, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wabactl",
		Short: "Operate the WhatsApp alert dispatcher",
		Long: `wabactl sends group broadcasts, re-sends shop notifications and reads
delivery reports using the same configuration as the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")

	rootCmd.AddCommand(broadcastCmd())
	rootCmd.AddCommand(reportsCmd())
	rootCmd.AddCommand(dispatchCmd())
	rootCmd.AddCommand(settingsCmd())

	return rootCmd
}

// withEngine opens the engine for the duration of fn.
func withEngine(ctx context.Context, fn func(engine) error) error {
	e, closeFn, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(e)
}
