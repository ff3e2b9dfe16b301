package cmd

import (
	"context"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
	"github.com/nestbox-eng/nestbox-ctl/internal/tui"
)

var (
	pickGrouped bool
	pickSimple  bool
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively pick a workspace",
	Long: `Interactively pick a workspace from a list.

Selecting a workspace opens a shell in it; pressing "d" tears it down.
With --grouped, workspaces are grouped by platform.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd.Context())
	},
}

func init() {
	pickCmd.Flags().BoolVar(&pickGrouped, "grouped", false, "group workspaces by platform")
	pickCmd.Flags().BoolVar(&pickSimple, "simple", false, "print a plain listing instead of the interactive picker")
	rootCmd.AddCommand(pickCmd)
}

func runPick(ctx context.Context) error {
	items, err := collectPickerWorkspaces(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logInfo("No workspaces found")
		return nil
	}

	if pickSimple {
		logInfo("%s", tui.SimplePicker(items))
		return nil
	}

	var result tui.PickerResult
	if pickGrouped {
		model := tui.NewGroupedPicker(items)
		result, err = tui.RunModel(model)
	} else {
		result, err = tui.RunPicker(items)
	}
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "picker failed", err)
	}

	switch result.Action {
	case tui.ActionExec:
		return runExecShell(ctx, result.Workspace.ThreadID)
	case tui.ActionDown:
		return runDown(ctx, result.Workspace.ThreadID)
	default:
		return nil
	}
}

// runExecShell opens an interactive login shell in the thread's workspace.
func runExecShell(ctx context.Context, threadID string) error {
	ws, err := findWorkspace(ctx, threadID)
	if err != nil {
		return err
	}
	rt, err := getRuntime()
	if err != nil {
		return err
	}
	res, err := rt.Exec(ctx, ws.ID, []string{"/bin/sh", "-l"}, runtime.ExecOptions{Stdin: os.Stdin})
	if err != nil {
		return errors.ContainerFailed("shell", err)
	}
	if res.ExitCode != 0 {
		return errors.New(res.ExitCode, "shell exited with a non-zero code")
	}
	return nil
}

// collectPickerWorkspaces builds the picker's view of every workspace,
// including running state and sidecar presence.
func collectPickerWorkspaces(ctx context.Context) ([]*tui.Workspace, error) {
	containers, err := listWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := getRuntime()
	if err != nil {
		return nil, err
	}

	items := make([]*tui.Workspace, 0, len(containers))
	for _, c := range containers {
		threadID := c.Labels[config.LabelThreadID]
		running, _ := rt.IsRunning(ctx, c.ID)
		sidecars, _ := rt.ListByLabels(ctx, map[string]string{
			config.LabelThreadID:  threadID,
			config.LabelRole:      config.RoleDinD,
			config.LabelParentCID: c.ID,
		})
		items = append(items, &tui.Workspace{
			ThreadID:    threadID,
			ContainerID: c.ID,
			Platform:    c.Labels[config.LabelPlatform],
			Running:     running,
			HasSidecar:  len(sidecars) > 0,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ThreadID < items[j].ThreadID })
	return items, nil
}
