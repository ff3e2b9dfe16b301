// Package testutil provides test utilities for engine and CLI tests
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nestbox-eng/nestbox-ctl/internal/app"
	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/keycache"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
	"github.com/nestbox-eng/nestbox-ctl/internal/vault"
)

// TestEnv holds the test environment
type TestEnv struct {
	T       *testing.T
	TmpDir  string
	Paths   *config.Paths
	Host    *config.HostConfig
	Runtime *runtime.MockClient
	Vault   *vault.MockClient
	Keys    *keycache.Cache
	App     *app.App
	cleanup func()
}

// NewTestEnv creates a new test environment with mock runtime and vault
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	paths := &config.Paths{
		ConfigDir: filepath.Join(tmpDir, "config"),
		StateDir:  filepath.Join(tmpDir, "state"),
		LogsDir:   filepath.Join(tmpDir, "state", "logs"),
	}

	for _, dir := range []string{paths.ConfigDir, paths.StateDir, paths.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	host := &config.HostConfig{
		DefaultImage:    "nixos/nix",
		DefaultPlatform: "linux/amd64",
		StateDir:        paths.StateDir,
	}

	mockRuntime := runtime.NewMockClient()
	mockVault := vault.NewMockClient()
	keys := keycache.New()

	testApp := app.New(
		app.WithPaths(paths),
		app.WithRuntime(mockRuntime),
		app.WithVault(mockVault),
		app.WithKeyCache(keys),
		app.WithHostConfig(host),
	)

	originalDefault := app.Default
	app.SetDefault(testApp)

	return &TestEnv{
		T:       t,
		TmpDir:  tmpDir,
		Paths:   paths,
		Host:    host,
		Runtime: mockRuntime,
		Vault:   mockVault,
		Keys:    keys,
		App:     testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// AddWorkspace registers a running workspace container for a thread
func (e *TestEnv) AddWorkspace(threadID, platform string) *runtime.MockContainer {
	e.T.Helper()

	labels := map[string]string{
		config.LabelThreadID: threadID,
		config.LabelRole:     config.RoleWorkspace,
	}
	if platform != "" {
		labels[config.LabelPlatform] = platform
	}
	return e.Runtime.AddContainer("ws-"+threadID, labels, true)
}

// AddSidecar registers a running DinD sidecar for a workspace
func (e *TestEnv) AddSidecar(threadID, parentID string) *runtime.MockContainer {
	e.T.Helper()

	return e.Runtime.AddContainer("dind-"+threadID, map[string]string{
		config.LabelThreadID:  threadID,
		config.LabelRole:      config.RoleDinD,
		config.LabelParentCID: parentID,
	}, true)
}

// WriteHostConfig writes a config.toml into the test config dir
func (e *TestEnv) WriteHostConfig(content string) {
	e.T.Helper()

	path := filepath.Join(e.Paths.ConfigDir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write host config: %v", err)
	}
}

// WriteSpecFile writes a workspace spec JSON file and returns its path
func (e *TestEnv) WriteSpecFile(name string, content []byte) string {
	e.T.Helper()

	path := filepath.Join(e.TmpDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		e.T.Fatalf("Failed to write spec file: %v", err)
	}
	return path
}
