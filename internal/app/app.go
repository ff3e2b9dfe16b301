// Package app provides the application context for nestbox-ctl.
// It allows dependency injection for testing.
package app

import (
	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/keycache"
	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
	"github.com/nestbox-eng/nestbox-ctl/internal/provision"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
	"github.com/nestbox-eng/nestbox-ctl/internal/vault"
)

// App holds the application dependencies
type App struct {
	// Paths holds the configured paths
	Paths *config.Paths

	// Host is the loaded host configuration
	Host *config.HostConfig

	// Runtime is the container runtime client
	Runtime runtime.Client

	// Vault is the secret store client; nil when vault is not configured
	Vault vault.Client

	// Keys is the trust-key cache
	Keys *keycache.Cache

	// Provisioner turns thread ids into workspace containers
	Provisioner *provision.Provisioner
}

// Option is a function that configures the App
type Option func(*App)

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithRuntime sets a custom runtime client
func WithRuntime(rt runtime.Client) Option {
	return func(a *App) {
		a.Runtime = rt
	}
}

// WithHostConfig sets a custom host config
func WithHostConfig(cfg *config.HostConfig) Option {
	return func(a *App) {
		a.Host = cfg
	}
}

// WithVault sets a custom vault client
func WithVault(vc vault.Client) Option {
	return func(a *App) {
		a.Vault = vc
	}
}

// WithKeyCache sets a custom trust-key cache
func WithKeyCache(keys *keycache.Cache) Option {
	return func(a *App) {
		a.Keys = keys
	}
}

// New creates a new App with the given options.
// If a runtime is not provided via WithRuntime, the Docker client is used.
// The provisioner is always rebuilt from the final dependency set.
func New(opts ...Option) *App {
	app := &App{
		Paths: config.DefaultPaths(),
		Keys:  keycache.Shared,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.Host == nil {
		cfg, err := config.LoadHostConfig(app.Paths.ConfigDir)
		if err != nil {
			logging.Debug("failed to load host config, using defaults", "error", err)
			cfg = &config.HostConfig{DefaultImage: "nixos/nix", StateDir: config.DefaultStateDir}
		}
		app.Host = cfg
	}

	if app.Runtime == nil {
		rt, err := runtime.NewDockerClient()
		if err != nil {
			logging.Debug("failed to initialize docker client", "error", err)
		} else {
			app.Runtime = rt
		}
	}

	if app.Runtime != nil {
		app.Provisioner = provision.New(app.Runtime, app.Vault, app.Keys, app.Host, app.Paths)
	}

	return app
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
