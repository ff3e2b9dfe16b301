package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "nestbox-ctl",
	Short: "Nestbox workspace provisioning CLI",
	Long: `nestbox-ctl turns thread identifiers into running workspace containers.

Each workspace is a sandbox container with:
  - Resolved environment (static values and vault secrets)
  - Optional Docker-in-Docker sidecar on localhost
  - Substituter trust key injected from the shared key cache
  - Transparent reuse or recreation on platform changes`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
