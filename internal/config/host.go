package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// HostConfig is the host-level configuration loaded from config.toml.
// It carries the defaults applied when a workspace spec leaves a field
// unset, plus the key-source, registry-mirror, and vault settings.
type HostConfig struct {
	DefaultImage    string `toml:"default_image"`
	DefaultPlatform string `toml:"default_platform"`
	StateDir        string `toml:"state_dir"`

	Registry  RegistryConfig  `toml:"registry"`
	KeySource KeySourceConfig `toml:"keysource"`
	Vault     VaultConfig     `toml:"vault"`
}

// RegistryConfig configures the registry mirror passed to DinD sidecars.
type RegistryConfig struct {
	MirrorURL string `toml:"mirror_url"`
}

// KeySourceConfig configures the rotating trust-key endpoint whose value is
// injected into the workspace's substituter configuration.
type KeySourceConfig struct {
	URL         string       `toml:"url"`
	Enabled     bool         `toml:"enabled"`
	TTL         tomlDuration `toml:"ttl"`
	Substituter string       `toml:"substituter"`
}

// VaultConfig configures the secret store used for vault-sourced env items.
type VaultConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// tomlDuration decodes "15m"-style strings from TOML.
type tomlDuration struct {
	time.Duration
}

func (d *tomlDuration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

const defaultKeyTTL = 15 * time.Minute

// LoadHostConfig reads config.toml from configDir. A missing file yields
// the defaults; unknown keys are rejected.
func LoadHostConfig(configDir string) (*HostConfig, error) {
	cfg := &HostConfig{
		DefaultImage: "nixos/nix",
		StateDir:     DefaultStateDir,
	}
	cfg.KeySource.TTL = tomlDuration{defaultKeyTTL}

	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read host config: %w", err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse host config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown host config key %q", undecoded[0].String())
	}

	if cfg.KeySource.Enabled && cfg.KeySource.URL == "" {
		return nil, fmt.Errorf("keysource.enabled requires keysource.url")
	}
	if cfg.KeySource.TTL.Duration <= 0 {
		cfg.KeySource.TTL = tomlDuration{defaultKeyTTL}
	}

	return cfg, nil
}

// KeyTTL returns the configured trust-key TTL.
func (c *HostConfig) KeyTTL() time.Duration {
	return c.KeySource.TTL.Duration
}
