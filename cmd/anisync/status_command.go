package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"anisync/internal/worker"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and sync pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			snap, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, snap)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("State", stateKind(snap.State), string(snap.State), colorize))
			syncText := "idle"
			if snap.Syncing {
				syncText = "running"
			}
			fmt.Fprintln(out, renderStatusLine("Sync pass", statusInfo, syncText, colorize))
			fmt.Fprintln(out, renderStatusLine("Queue", statusInfo, fmt.Sprintf("%d pending", snap.QueueLength), colorize))
			fmt.Fprintln(out, renderStatusLine("Processed", statusOK, fmt.Sprintf("%d", snap.Processed), colorize))
			failedKind := statusOK
			if snap.Failed > 0 {
				failedKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", snap.Failed), colorize))
			if !snap.LastRun.IsZero() {
				fmt.Fprintln(out, renderStatusLine("Last run", statusInfo, snap.LastRun.Format("2006-01-02 15:04:05"), colorize))
			}
			if strings.TrimSpace(snap.LastError) != "" {
				fmt.Fprintln(out, renderStatusLine("Last error", statusError, snap.LastError, colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func stateKind(state worker.State) statusKind {
	switch state {
	case worker.StateTicking:
		return statusOK
	case worker.StateStopped:
		return statusError
	default:
		return statusInfo
	}
}
