package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
)

type statusReport struct {
	ConfigPath     string                `json:"configPath,omitempty"`
	CatalogSource  string                `json:"catalogSource"`
	CatalogItems   int                   `json:"catalogItems"`
	CatalogError   string                `json:"catalogError,omitempty"`
	Entitlement    api.EntitlementStatus `json:"entitlement"`
	Preview        api.PreviewStatus     `json:"preview"`
	RemoteStrategy string                `json:"remoteStrategy"`
	DownloadDir    string                `json:"downloadDir"`
	APIBind        string                `json:"apiBind"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog, entitlement and preview status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd.Context(), func(rt *app.App) error {
				cfg := rt.Config()
				report := statusReport{
					ConfigPath:     ctx.configPath(),
					CatalogSource:  cfg.Catalog.Source,
					Entitlement:    api.FromEntitlement(rt.Gate().State()),
					RemoteStrategy: string(rt.Downloads().RemoteAction()),
					DownloadDir:    cfg.Paths.DownloadDir,
					APIBind:        cfg.Server.Bind,
				}
				if lib, err := rt.Library(cmd.Context()); err != nil {
					report.CatalogError = err.Error()
				} else {
					report.CatalogItems = lib.Inventory().Len()
				}
				engine := rt.Preview()
				session, ok := engine.Current()
				report.Preview = api.FromSession(session, ok, engine.Supported())

				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				out := cmd.OutOrStdout()
				for _, line := range statusLines(report, shouldColorize(out)) {
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
}

func statusLines(r statusReport, colorize bool) []string {
	lines := []string{heading("tonehub", r.ConfigPath, colorize)}
	rows := []statusRow{
		catalogRow(r),
		entitlementRow(r.Entitlement),
		previewRow(r.Preview),
		{"Remote storage", healthNote, remoteStrategyLabel(r.RemoteStrategy)},
		{"Download dir", healthNote, r.DownloadDir},
		{"API bind", healthNote, r.APIBind},
	}
	return append(lines, renderStatusRows(rows, colorize)...)
}

func remoteStrategyLabel(action string) string {
	switch action {
	case "clipboard":
		return "Copy rclone command to clipboard"
	case "search":
		return "Open storage search"
	default:
		return strings.TrimSpace(action)
	}
}
