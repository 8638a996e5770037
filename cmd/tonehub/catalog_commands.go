package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tonehub/internal/api"
	"tonehub/internal/app"
	"tonehub/internal/filter"
	"tonehub/internal/preview"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var typeFlag, brandFlag string

	cmd := &cobra.Command{
		Use:     "search [query...]",
		Aliases: []string{"list", "ls"},
		Short:   "List catalog items matching a query, type and brand",
		Long: `List catalog items.

The query matches names, locations and tags case-insensitively. --type and
--brand accept an exact value or "all". Results are capped by
filter.max_results; the total always counts every match.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := filter.Params{
				Query: strings.Join(args, " "),
				Type:  filter.ParseMatch(typeFlag),
				Brand: filter.ParseMatch(brandFlag),
			}
			return ctx.withLibrary(cmd.Context(), func(_ *app.App, lib *api.Library) error {
				res := lib.Search(params)
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				out := cmd.OutOrStdout()
				if res.Total == 0 {
					fmt.Fprintln(out, "No items match.")
					return nil
				}
				fmt.Fprintln(out, renderTable(itemColumns(), itemRows(res.Items), resultFooter(res)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Filter by asset type (IR, NAM, ...)")
	cmd.Flags().StringVarP(&brandFlag, "brand", "b", "", "Filter by exact brand")
	return cmd
}

func itemColumns() []column {
	return []column{
		{Header: "ID", Align: alignRight},
		{Header: "Name", MaxWidth: 40},
		{Header: "Brand", MaxWidth: 20},
		{Header: "Type"},
		{Header: "Source"},
	}
}

func itemRows(items []api.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.ID, item.Name, item.Brand, item.Type, item.LocationKind})
	}
	return rows
}

func resultFooter(res api.ItemListResponse) string {
	if res.Truncated {
		return fmt.Sprintf("Showing %d of %d matches; refine the query to see the rest.", len(res.Items), res.Total)
	}
	return fmt.Sprintf("%d matches", res.Total)
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd.Context(), func(rt *app.App, lib *api.Library) error {
				item, err := lib.Lookup(args[0])
				if err != nil {
					return err
				}
				dto := api.FromItem(item)
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.ItemResponse{Item: dto})
				}
				previewable := preview.Previewable(item, rt.PreviewableTypes()) == nil
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (#%s)\n", dto.Name, dto.ID)
				fmt.Fprintf(out, "  Brand:       %s\n", dto.Brand)
				fmt.Fprintf(out, "  Type:        %s\n", dto.Type)
				fmt.Fprintf(out, "  Location:    %s (%s)\n", dto.Location, dto.LocationKind)
				if len(dto.Tags) > 0 {
					fmt.Fprintf(out, "  Tags:        %s\n", strings.Join(dto.Tags, ", "))
				}
				fmt.Fprintf(out, "  Previewable: %s\n", yesNo(previewable))
				return nil
			})
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog by type and brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd.Context(), func(_ *app.App, lib *api.Library) error {
				stats := lib.Stats()
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d items\n", stats.Total)
				countCols := func(key string) []column {
					return []column{{Header: key}, {Header: "Items", Align: alignRight}}
				}
				fmt.Fprintln(out, renderTable(countCols("Type"), countRows(stats.Types, top), ""))
				fmt.Fprintln(out, renderTable(countCols("Brand"), countRows(stats.Brands, top), omittedFooter(len(stats.Brands), top)))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 15, "Rows per table (0 for all)")
	return cmd
}

func countRows(counts []api.Count, top int) [][]string {
	if top > 0 && len(counts) > top {
		counts = counts[:top]
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return rows
}

func omittedFooter(total, top int) string {
	if top <= 0 || total <= top {
		return ""
	}
	return fmt.Sprintf("%d more not shown", total-top)
}

func newPacksCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List curated packs and their items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(cmd.Context(), func(_ *app.App, lib *api.Library) error {
				packs := lib.Packs(limit)
				if ctx.jsonOutput() {
					return writeJSON(cmd, packs)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for i, pack := range packs.Packs {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintln(out, heading(pack.Name, fmt.Sprintf("%d items", len(pack.Items)), colorize))
					if pack.Description != "" {
						fmt.Fprintln(out, pack.Description)
					}
					if len(pack.Items) == 0 {
						fmt.Fprintln(out, "No matching items.")
						continue
					}
					fmt.Fprintln(out, renderTable(itemColumns(), itemRows(pack.Items), ""))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Items shown per pack")
	return cmd
}
