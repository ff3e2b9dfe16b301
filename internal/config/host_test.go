package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeHostConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoadHostConfig_Defaults(t *testing.T) {
	cfg, err := LoadHostConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadHostConfig() failed: %v", err)
	}

	if cfg.DefaultImage != "nixos/nix" {
		t.Errorf("DefaultImage = %q, want %q", cfg.DefaultImage, "nixos/nix")
	}
	if cfg.KeyTTL() != 15*time.Minute {
		t.Errorf("KeyTTL() = %v, want 15m", cfg.KeyTTL())
	}
	if cfg.KeySource.Enabled {
		t.Error("key source should be disabled by default")
	}
}

func TestLoadHostConfig_Full(t *testing.T) {
	dir := t.TempDir()
	writeHostConfig(t, dir, `
default_image = "ghcr.io/nestbox/workspace:latest"
default_platform = "linux/amd64"

[registry]
mirror_url = "https://mirror.internal:5000"

[keysource]
url = "https://cache.internal/pubkey"
enabled = true
ttl = "5m"
substituter = "https://cache.internal"

[vault]
enabled = true
addr = "https://vault.internal:8200"
`)

	cfg, err := LoadHostConfig(dir)
	if err != nil {
		t.Fatalf("LoadHostConfig() failed: %v", err)
	}

	if cfg.DefaultPlatform != "linux/amd64" {
		t.Errorf("DefaultPlatform = %q", cfg.DefaultPlatform)
	}
	if cfg.Registry.MirrorURL != "https://mirror.internal:5000" {
		t.Errorf("MirrorURL = %q", cfg.Registry.MirrorURL)
	}
	if !cfg.KeySource.Enabled {
		t.Error("key source should be enabled")
	}
	if cfg.KeyTTL() != 5*time.Minute {
		t.Errorf("KeyTTL() = %v, want 5m", cfg.KeyTTL())
	}
	if cfg.KeySource.Substituter != "https://cache.internal" {
		t.Errorf("Substituter = %q", cfg.KeySource.Substituter)
	}
	if !cfg.Vault.Enabled {
		t.Error("vault should be enabled")
	}
}

func TestLoadHostConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeHostConfig(t, dir, `mystery_knob = true`)

	if _, err := LoadHostConfig(dir); err == nil {
		t.Error("LoadHostConfig() should reject unknown keys")
	}
}

func TestLoadHostConfig_KeysourceURLRequired(t *testing.T) {
	dir := t.TempDir()
	writeHostConfig(t, dir, `
[keysource]
enabled = true
`)

	if _, err := LoadHostConfig(dir); err == nil {
		t.Error("LoadHostConfig() should require keysource.url when enabled")
	}
}

func TestInitScriptLogPath(t *testing.T) {
	paths := &Paths{LogsDir: t.TempDir()}

	path, err := paths.InitScriptLogPath("thread-1")
	if err != nil {
		t.Fatalf("InitScriptLogPath() failed: %v", err)
	}
	if filepath.Base(path) != "thread-1.init.log" {
		t.Errorf("unexpected log path %q", path)
	}

	if _, err := paths.InitScriptLogPath("../escape"); err == nil {
		t.Error("InitScriptLogPath() should reject traversal attempts")
	}
}
