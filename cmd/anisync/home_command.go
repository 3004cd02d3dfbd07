package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHomeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show the current home aggregate view",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			view, message, err := client.Home(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			if message != "" {
				fmt.Fprintln(out, message)
			}
			if len(view) == 0 {
				fmt.Fprintln(out, "No titles in the aggregate view yet.")
				return nil
			}

			rows := make([][]string, 0, len(view))
			for _, anime := range view {
				rating := ""
				if anime.Rating > 0 {
					rating = fmt.Sprintf("%.2f", anime.Rating)
				}
				rows = append(rows, []string{
					anime.Title,
					anime.Slug,
					titleCase(string(anime.Status)),
					rating,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Slug", "Status", "Rating"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
