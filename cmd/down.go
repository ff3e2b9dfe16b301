package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/app"
	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
)

var downTimeout int

var downCmd = &cobra.Command{
	Use:   "down <thread-id>",
	Short: "Tear down a thread's workspace and its sidecars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDown(cmd.Context(), args[0])
	},
}

func init() {
	downCmd.Flags().IntVar(&downTimeout, "timeout", 10, "seconds to wait for graceful stop")
	rootCmd.AddCommand(downCmd)
}

func runDown(ctx context.Context, threadID string) error {
	ws, err := findWorkspace(ctx, threadID)
	if err != nil {
		return err
	}
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	// Sidecars first: they hold the workspace's network namespace.
	if prov := app.Default.Provisioner; prov != nil {
		prov.Sidecars().CleanupFor(ctx, config.ThreadLabels(threadID), ws.ID)
	}

	if err := rt.Stop(ctx, ws.ID, downTimeout); err != nil && !runtime.IsBenignCleanup(err) {
		return errors.ContainerFailed("stop workspace", err)
	}
	if err := rt.Remove(ctx, ws.ID, true); err != nil && !runtime.IsBenignCleanup(err) {
		return errors.ContainerFailed("remove workspace", err)
	}

	logSuccess("Workspace %s removed", threadID)
	return nil
}
