package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tonehub/internal/daemonrun"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var opts daemonrun.Options
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Long: `Run the local HTTP API used by the browser front end.

The server holds a lock in paths.state_dir so only one instance serves a
given state directory. Logs go to stderr and to a per-run file in
paths.log_dir; log_dir/tonehub.log points at the current run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if cmd.Flags().Changed("log-level") {
				opts.LogLevel = ctx.flags.logLevel
			}
			opts.Ephemeral = ctx.flags.ephemeral
			opts.Ready = func(addr string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tonehub API listening on http://%s\n", addr)
			}
			return daemonrun.Run(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind")
	cmd.Flags().BoolVar(&opts.Mute, "mute", false, "Serve previews without opening the audio device")
	cmd.Flags().BoolVar(&opts.Diagnostic, "diagnostic", false, "Also write a debug JSON log under log_dir/debug")
	cmd.Flags().BoolVar(&opts.Development, "dev", false, "Include source locations in log records")
	return cmd
}
