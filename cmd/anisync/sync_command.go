package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Trigger a full sync in the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			message, err := client.Sync(cmd.Context())
			if err != nil {
				return err
			}
			if message == "" {
				message = "full sync started"
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}
