package cmd

import (
	"context"
	"fmt"
	"os"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
)

var (
	execUser    string
	execWorkdir string
)

var execCmd = &cobra.Command{
	Use:   "exec <thread-id> -- <command> [args...]",
	Short: "Run a command in a thread's workspace",
	Long: `Run a command in a thread's workspace container.

The command is quoted and run through a login shell, so workspace profile
setup (PATH, nix environment) applies. The command's exit code becomes the
exit code of nestbox-ctl.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExec(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	execCmd.Flags().StringVar(&execUser, "user", "", "user to run the command as")
	execCmd.Flags().StringVar(&execWorkdir, "workdir", "", "working directory inside the workspace")
	rootCmd.AddCommand(execCmd)
}

func runExec(ctx context.Context, threadID string, command []string) error {
	ws, err := findWorkspace(ctx, threadID)
	if err != nil {
		return err
	}
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	if running, err := rt.IsRunning(ctx, ws.ID); err != nil || !running {
		return errors.ContainerFailed("exec", fmt.Errorf("workspace for thread %s is not running", threadID))
	}

	shellCmd := []string{"/bin/sh", "-lc", shellquote.Join(command...)}
	res, err := rt.Exec(ctx, ws.ID, shellCmd, runtime.ExecOptions{
		User:       execUser,
		WorkingDir: execWorkdir,
		Stdin:      os.Stdin,
	})
	if err != nil {
		return errors.ContainerFailed("exec", err)
	}

	if res.Stdout != "" {
		fmt.Fprint(os.Stdout, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	if res.ExitCode != 0 {
		return errors.New(res.ExitCode, fmt.Sprintf("command exited with code %d", res.ExitCode))
	}
	return nil
}
