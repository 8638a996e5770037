package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
	"tonehub/internal/download"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <id>",
		Short: "Download an item, or hand off a remote-storage item",
		Long: `Download a catalog item.

Items with an http(s) location are saved into paths.download_dir. Items held
in remote storage are handed off per download.remote_strategy: an rclone
command is copied to the clipboard, or a storage search page is opened.
Downloads require an unlocked entitlement; see "tonehub unlock".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd.Context(), func(rt *app.App, lib *api.Library) error {
				item, err := lib.Lookup(args[0])
				if err != nil {
					return err
				}
				res, err := rt.Downloads().Dispatch(cmd.Context(), item, rt.Gate().State())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromDownload(res))
				}
				out := cmd.OutOrStdout()
				switch res.Action {
				case download.ActionPromptEntitlement:
					fmt.Fprintln(out, res.Message)
					fmt.Fprintln(out, `Run "tonehub unlock <key>" or complete checkout, then retry.`)
				case download.ActionDirect:
					fmt.Fprintf(out, "Saved %s (%s)\n", res.Path, humanize.IBytes(uint64(res.Bytes)))
					fmt.Fprintf(out, "  sha256: %s\n", res.SHA256)
				case download.ActionClipboard:
					fmt.Fprintln(out, res.Message)
					fmt.Fprintf(out, "  %s\n", res.Command)
				default:
					fmt.Fprintln(out, res.Message)
					if res.URL != "" {
						fmt.Fprintf(out, "  %s\n", res.URL)
					}
				}
				return nil
			})
		},
	}
}
