package testutil

import (
	"embed"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// LoadFixture loads a JSON fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadWorkspaceSpecFixture loads and parses a workspace spec fixture.
func LoadWorkspaceSpecFixture(name string) (*config.WorkspaceSpec, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	return config.ParseWorkspaceSpec(data)
}

// ValidWorkspaceSpec returns the valid workspace spec fixture.
func ValidWorkspaceSpec() (*config.WorkspaceSpec, error) {
	return LoadWorkspaceSpecFixture("valid_workspace_spec.json")
}

// InvalidWorkspaceSpec returns the raw bytes of a spec with an unknown
// field; parsing it must fail.
func InvalidWorkspaceSpec() ([]byte, error) {
	return LoadFixture("invalid_workspace_spec.json")
}

// LegacyEnvSpec returns the flat-map env shape fixture.
func LegacyEnvSpec() (*config.WorkspaceSpec, error) {
	return LoadWorkspaceSpecFixture("legacy_env_spec.json")
}
