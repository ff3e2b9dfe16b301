package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List workspace containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPs(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(psCmd)
}

func runPs(ctx context.Context) error {
	workspaces, err := listWorkspaces(ctx)
	if err != nil {
		return err
	}
	if len(workspaces) == 0 {
		logInfo("No workspaces found")
		return nil
	}

	rt, err := getRuntime()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "THREAD\tCONTAINER\tPLATFORM\tSTATE\tDIND")
	for _, ws := range workspaces {
		threadID := ws.Labels[config.LabelThreadID]

		state := "stopped"
		if running, err := rt.IsRunning(ctx, ws.ID); err == nil && running {
			state = "running"
		}

		plat := ws.Labels[config.LabelPlatform]
		if plat == "" {
			plat = "-"
		}

		dindState := "-"
		sidecars, err := rt.ListByLabels(ctx, map[string]string{
			config.LabelThreadID:  threadID,
			config.LabelRole:      config.RoleDinD,
			config.LabelParentCID: ws.ID,
		})
		if err == nil && len(sidecars) > 0 {
			dindState = "yes"
		}

		id := ws.ID
		if len(id) > 12 {
			id = id[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", threadID, id, plat, state, dindState)
	}
	return w.Flush()
}
