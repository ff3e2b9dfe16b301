package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/app"
	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/tui"
)

var (
	provideImage       string
	providePlatform    string
	provideEnv         []string
	provideEnvVault    []string
	provideDinD        bool
	provideInitScript  string
	provideSpecFile    string
	provideInteractive bool
)

var provideCmd = &cobra.Command{
	Use:   "provide <thread-id>",
	Short: "Provision a workspace container for a thread",
	Long: `Provision a workspace container for a thread.

An existing workspace is reused when it satisfies the requested platform;
otherwise it is torn down (sidecars first) and recreated. Environment
variables are resolved before any container call, including vault-sourced
secrets, and the cached trust key is injected into the workspace's
substituter configuration when a key source is configured.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := ""
		if len(args) > 0 {
			threadID = args[0]
		}
		return runProvide(cmd.Context(), threadID)
	},
}

func init() {
	provideCmd.Flags().StringVar(&provideImage, "image", "", "workspace image (default from host config)")
	provideCmd.Flags().StringVar(&providePlatform, "platform", "", "required platform, e.g. linux/amd64")
	provideCmd.Flags().StringArrayVar(&provideEnv, "env", nil, "static env entry KEY=VALUE (repeatable)")
	provideCmd.Flags().StringArrayVar(&provideEnvVault, "env-vault", nil, "vault env entry KEY=mount/path/key (repeatable)")
	provideCmd.Flags().BoolVar(&provideDinD, "dind", false, "attach a docker-in-docker sidecar")
	provideCmd.Flags().StringVar(&provideInitScript, "init-script", "", "shell script to run after the workspace starts")
	provideCmd.Flags().StringVar(&provideSpecFile, "spec", "", "path to a workspace spec JSON file")
	provideCmd.Flags().BoolVar(&provideInteractive, "interactive", false, "build the request interactively")
	rootCmd.AddCommand(provideCmd)
}

func runProvide(ctx context.Context, threadID string) error {
	spec, err := buildWorkspaceSpec()
	if err != nil {
		return err
	}

	if provideInteractive {
		defaultImage := app.Default.Host.DefaultImage
		opts, err := tui.RunWizard(defaultImage)
		if err != nil {
			return errors.Wrap(errors.ExitGeneralError, "interactive setup failed", err)
		}
		if opts == nil {
			logInfo("Cancelled")
			return nil
		}
		threadID = opts.ThreadID
		spec.Image = opts.Image
		spec.Platform = opts.Platform
		spec.EnableDinD = opts.EnableDinD
		spec.InitialScript = opts.InitialScript
	}

	if threadID == "" {
		return errors.ValidationError("thread id is required (or use --interactive)")
	}

	prov := app.Default.Provisioner
	if prov == nil {
		return errors.ContainerFailed("connect", fmt.Errorf("no container runtime available"))
	}
	if err := prov.SetConfig(spec); err != nil {
		return err
	}

	logInfo("Provisioning workspace for thread %s...", threadID)
	ws, err := prov.Provide(ctx, threadID)
	if err != nil {
		return err
	}
	logSuccess("Workspace %s ready (%s)", threadID, ws.ID[:min(12, len(ws.ID))])
	return nil
}

// buildWorkspaceSpec assembles the spec from --spec and the individual
// flags. Flags override fields loaded from the spec file.
func buildWorkspaceSpec() (*config.WorkspaceSpec, error) {
	spec := &config.WorkspaceSpec{}
	if provideSpecFile != "" {
		data, err := os.ReadFile(provideSpecFile)
		if err != nil {
			return nil, errors.ConfigError("read spec file", err)
		}
		spec, err = config.ParseWorkspaceSpec(data)
		if err != nil {
			return nil, errors.ConfigError("parse spec file", err)
		}
	}

	if provideImage != "" {
		spec.Image = provideImage
	}
	if providePlatform != "" {
		spec.Platform = providePlatform
	}
	if provideDinD {
		spec.EnableDinD = true
	}
	if provideInitScript != "" {
		spec.InitialScript = provideInitScript
	}

	if len(provideEnv) > 0 || len(provideEnvVault) > 0 {
		items := make([]config.EnvItem, 0, len(provideEnv)+len(provideEnvVault))
		for _, kv := range provideEnv {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return nil, errors.ValidationError(fmt.Sprintf("invalid --env entry %q: want KEY=VALUE", kv))
			}
			items = append(items, config.EnvItem{Key: key, Value: value, Source: config.SourceStatic})
		}
		for _, kv := range provideEnvVault {
			key, ref, ok := strings.Cut(kv, "=")
			if !ok || key == "" || ref == "" {
				return nil, errors.ValidationError(fmt.Sprintf("invalid --env-vault entry %q: want KEY=mount/path/key", kv))
			}
			items = append(items, config.EnvItem{Key: key, Value: ref, Source: config.SourceVault})
		}
		spec.Env = config.EnvItems(items...)
	}

	return spec, nil
}
