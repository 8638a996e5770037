package main

import (
	"github.com/spf13/cobra"

	"tonehub/internal/app"
)

func newRootCommand() *cobra.Command {
	return newRootCommandWithOptions(app.Options{})
}

// newRootCommandWithOptions builds the command tree with fixed runtime
// collaborators, such as a silent audio context.
func newRootCommandWithOptions(opts app.Options) *cobra.Command {
	var flags rootFlags

	ctx := newCommandContext(&flags)
	ctx.appOptions = opts

	rootCmd := &cobra.Command{
		Use:           "tonehub",
		Short:         "Browse, preview and download guitar tone assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	persistent.BoolVar(&flags.json, "json", false, "Emit JSON instead of tables")
	persistent.BoolVar(&flags.ephemeral, "ephemeral", false, "Keep entitlement state in memory for this run only")
	persistent.StringVar(&flags.logLevel, "log-level", "warn", "Log level for CLI diagnostics (debug, info, warn, error)")

	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newPacksCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newUnlockCommand(ctx))
	rootCmd.AddCommand(newConfirmPaymentCommand(ctx))
	rootCmd.AddCommand(newDownloadCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
