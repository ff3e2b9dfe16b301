package testutil

import (
	"testing"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
)

func TestLoadValidWorkspaceSpec(t *testing.T) {
	spec, err := ValidWorkspaceSpec()
	if err != nil {
		t.Fatalf("ValidWorkspaceSpec() error: %v", err)
	}

	if spec.Image != "ghcr.io/nestbox/workspace:latest" {
		t.Errorf("Image = %q", spec.Image)
	}
	if spec.Platform != "linux/amd64" {
		t.Errorf("Platform = %q", spec.Platform)
	}
	if !spec.EnableDinD {
		t.Error("EnableDinD should be true")
	}
	if spec.Env.Kind != config.EnvKindItems {
		t.Errorf("Env.Kind = %d, want items", spec.Env.Kind)
	}
	if len(spec.Env.Items) != 2 {
		t.Fatalf("len(Env.Items) = %d, want 2", len(spec.Env.Items))
	}
	if spec.Env.Items[1].Source != config.SourceVault {
		t.Errorf("second item source = %q, want vault", spec.Env.Items[1].Source)
	}
}

func TestLoadInvalidWorkspaceSpec(t *testing.T) {
	data, err := InvalidWorkspaceSpec()
	if err != nil {
		t.Fatalf("InvalidWorkspaceSpec() error: %v", err)
	}

	if _, err := config.ParseWorkspaceSpec(data); err == nil {
		t.Error("spec with unknown field should fail to parse")
	}
}

func TestLoadLegacyEnvSpec(t *testing.T) {
	spec, err := LegacyEnvSpec()
	if err != nil {
		t.Fatalf("LegacyEnvSpec() error: %v", err)
	}

	if spec.Env.Kind != config.EnvKindStatic {
		t.Errorf("Env.Kind = %d, want static", spec.Env.Kind)
	}
	if spec.Env.Static["EDITOR"] != "vim" {
		t.Errorf(`Static["EDITOR"] = %q`, spec.Env.Static["EDITOR"])
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	if _, err := LoadFixture("does_not_exist.json"); err == nil {
		t.Error("missing fixture should return an error")
	}
}
