package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestbox-eng/nestbox-ctl/internal/app"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/keycache"
)

var keyRefresh bool

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the current trust key",
	Long: `Print the current trust key from the configured key source.

The key is served from the in-process cache when fresh; --refresh forces a
fetch regardless of the cache's TTL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKey()
	},
}

func init() {
	keyCmd.Flags().BoolVar(&keyRefresh, "refresh", false, "bypass the cache and fetch a fresh key")
	rootCmd.AddCommand(keyCmd)
}

func runKey() error {
	ks := app.Default.Host.KeySource
	if !ks.Enabled || ks.URL == "" {
		return errors.ConfigError("no key source configured", nil)
	}

	if keyRefresh {
		app.Default.Keys.Reset()
	}

	key, err := app.Default.Keys.Key(keycache.Source{
		URL: ks.URL,
		TTL: app.Default.Host.KeyTTL(),
	})
	if err != nil {
		return errors.Wrap(errors.ExitGeneralError, "fetch trust key", err)
	}

	fmt.Println(key)
	return nil
}
