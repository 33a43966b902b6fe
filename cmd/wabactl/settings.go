package main

import (
	"fmt"

	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/infra/settings"

	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and publish notification settings",
	}
	cmd.AddCommand(settingsValidateCmd())
	cmd.AddCommand(settingsPushCmd())
	return cmd
}

func settingsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every enabled notification rule of config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			doc := settings.FromConfig(cfg)
			if err := notification.ValidateRules(doc.Notifications); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d notification rules OK.\n", len(doc.Notifications))
			return err
		},
	}
}

func settingsPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Publish the settings of config.yaml to the Redis settings key",
		Long: `Publish global settings and notification rules from config.yaml to Redis,
where a server running with settings.backend=redis reads them on every dispatch.
Invalid rules are rejected before anything is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			doc := settings.FromConfig(cfg)
			if err := notification.ValidateRules(doc.Notifications); err != nil {
				return err
			}

			client := settings.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
			store := settings.NewRedisStore(client, cfg.Settings.RedisKey)
			defer store.Close()

			if err := store.Put(cmd.Context(), doc); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Settings published to %s.\n", cfg.Settings.RedisKey)
			return err
		},
	}
}
