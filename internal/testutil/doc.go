// Package testutil provides test fixtures and utilities.
//
// This package contains embedded JSON fixtures and helper functions for
// building complete test environments in engine and CLI tests.
//
// # Test Environment
//
// NewTestEnv wires temp directories, a mock runtime, a mock vault, and a
// fresh key cache into an App, and installs it as the default:
//
//	func TestSomething(t *testing.T) {
//	    env := testutil.NewTestEnv(t)
//	    defer env.Cleanup()
//
//	    env.AddWorkspace("t1", "linux/amd64")
//	    ...
//	}
//
// # Fixtures
//
// JSON fixtures are embedded using go:embed:
//
//	fixtures/valid_workspace_spec.json
//	fixtures/invalid_workspace_spec.json
//	fixtures/legacy_env_spec.json
//
// Helper functions load and parse fixtures into typed objects:
//
//	spec, err := testutil.ValidWorkspaceSpec()
//	data, err := testutil.InvalidWorkspaceSpec()
//	spec, err := testutil.LegacyEnvSpec()
//
// For custom parsing or testing edge cases:
//
//	data, err := testutil.LoadFixture("valid_workspace_spec.json")
package testutil
