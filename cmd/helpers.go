package cmd

import (
	"context"

	"github.com/nestbox-eng/nestbox-ctl/internal/app"
	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
)

// getRuntime returns the application runtime client, or an error when no
// container daemon was reachable at startup.
func getRuntime() (runtime.Client, error) {
	if app.Default.Runtime == nil {
		return nil, errors.ContainerFailed("connect", nil)
	}
	return app.Default.Runtime, nil
}

// workspaceLabels is the discovery label set for a thread's workspace.
func workspaceLabels(threadID string) map[string]string {
	return map[string]string{
		config.LabelThreadID: threadID,
		config.LabelRole:     config.RoleWorkspace,
	}
}

// findWorkspace looks up the workspace container for a thread.
func findWorkspace(ctx context.Context, threadID string) (*runtime.Container, error) {
	if err := config.ValidateThreadID(threadID); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	rt, err := getRuntime()
	if err != nil {
		return nil, err
	}
	ws, err := rt.FindByLabels(ctx, workspaceLabels(threadID))
	if err != nil {
		return nil, errors.ContainerFailed("lookup workspace", err)
	}
	if ws == nil {
		return nil, errors.ValidationError("no workspace found for thread " + threadID)
	}
	return ws, nil
}

// listWorkspaces returns all workspace containers.
func listWorkspaces(ctx context.Context) ([]*runtime.Container, error) {
	rt, err := getRuntime()
	if err != nil {
		return nil, err
	}
	return rt.ListByLabels(ctx, map[string]string{
		config.LabelRole: config.RoleWorkspace,
	})
}
