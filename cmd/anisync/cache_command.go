package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache utilities",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached listing, catalog, and aggregate entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			message, err := client.CacheClear(cmd.Context())
			if err != nil {
				return err
			}
			if message == "" {
				message = "cache cleared"
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	})

	return cacheCmd
}
