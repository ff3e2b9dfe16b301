// Package app provides the application context for nestbox-ctl.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Paths       *config.Paths          // File system paths
//	    Host        *config.HostConfig     // Host configuration
//	    Runtime     runtime.Client         // Container runtime client
//	    Vault       vault.Client           // Secret store client
//	    Keys        *keycache.Cache        // Trust-key cache
//	    Provisioner *provision.Provisioner // Workspace engine
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	app := app.New()
//
//	// Testing with custom dependencies
//	app := app.New(
//	    app.WithPaths(testPaths),
//	    app.WithRuntime(mockRuntime),
//	    app.WithHostConfig(testConfig),
//	)
//
// # Available Options
//
//	WithPaths(paths)        // Custom path configuration
//	WithRuntime(client)     // Custom container runtime client
//	WithHostConfig(config)  // Custom host configuration
//	WithVault(client)       // Custom secret store client
//	WithKeyCache(cache)     // Custom trust-key cache
package app
