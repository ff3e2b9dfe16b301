package environ

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/vault"
)

func TestResolve_StaticAndVaultItems(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetSecret("m/p/k", "VAL")

	env := config.EnvItems(
		config.EnvItem{Key: "A", Value: "x"},
		config.EnvItem{Key: "B", Value: "m/p/k", Source: config.SourceVault},
	)

	got, err := Resolve(context.Background(), env, vc)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	if got["A"] != "x" {
		t.Errorf(`got["A"] = %q, want "x"`, got["A"])
	}
	if got["B"] != "VAL" {
		t.Errorf(`got["B"] = %q, want "VAL"`, got["B"])
	}
	if len(got) != 2 {
		t.Errorf("len(got) = %d, want 2", len(got))
	}
}

func TestResolve_DuplicateKeyRejectedBeforeIO(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetSecret("m/p/k", "VAL")

	env := config.EnvItems(
		config.EnvItem{Key: "A", Value: "x"},
		config.EnvItem{Key: "A", Value: "m/p/k", Source: config.SourceVault},
	)

	_, err := Resolve(context.Background(), env, vc)
	if err == nil {
		t.Fatal("Resolve() should reject duplicate keys")
	}
	if vc.CallCount() != 0 {
		t.Errorf("duplicate check must run before any vault call, got %d calls", vc.CallCount())
	}
}

func TestResolve_VaultDisabledWithRefs(t *testing.T) {
	vc := vault.NewMockClient()
	vc.Disabled = true

	env := config.EnvItems(
		config.EnvItem{Key: "B", Value: "m/p/k", Source: config.SourceVault},
	)

	_, err := Resolve(context.Background(), env, vc)
	if err == nil {
		t.Fatal("Resolve() should fail when vault is disabled")
	}
	if vc.CallCount() != 0 {
		t.Errorf("no network call should be attempted, got %d", vc.CallCount())
	}
}

func TestResolve_NilVaultWithRefs(t *testing.T) {
	env := config.EnvItems(
		config.EnvItem{Key: "B", Value: "m/p/k", Source: config.SourceVault},
	)

	if _, err := Resolve(context.Background(), env, nil); err == nil {
		t.Error("Resolve() should fail when vault client is absent")
	}
}

func TestResolve_MissingSecretAbortsAll(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetSecret("m/p/one", "1")
	// m/p/two intentionally absent

	env := config.EnvItems(
		config.EnvItem{Key: "ONE", Value: "m/p/one", Source: config.SourceVault},
		config.EnvItem{Key: "TWO", Value: "m/p/two", Source: config.SourceVault},
	)

	_, err := Resolve(context.Background(), env, vc)
	if err == nil {
		t.Fatal("Resolve() should fail on a missing secret")
	}
	if !strings.Contains(err.Error(), "TWO") || !strings.Contains(err.Error(), "m/p/two") {
		t.Errorf("error should name the failing key and reference, got: %v", err)
	}
}

func TestResolve_FailedLookupNamesKey(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetError("m/p/k", fmt.Errorf("connection refused"))

	env := config.EnvItems(
		config.EnvItem{Key: "B", Value: "m/p/k", Source: config.SourceVault},
	)

	_, err := Resolve(context.Background(), env, vc)
	if err == nil {
		t.Fatal("Resolve() should propagate lookup failures")
	}
	if !strings.Contains(err.Error(), "B") {
		t.Errorf("error should name the failing key, got: %v", err)
	}
}

func TestResolve_BadRefFailsBeforeIO(t *testing.T) {
	vc := vault.NewMockClient()

	env := config.EnvItems(
		config.EnvItem{Key: "B", Value: "not-a-ref", Source: config.SourceVault},
	)

	_, err := Resolve(context.Background(), env, vc)
	if err == nil {
		t.Fatal("Resolve() should reject malformed references")
	}
	if vc.CallCount() != 0 {
		t.Errorf("ref parsing must happen before any vault call, got %d calls", vc.CallCount())
	}
}

func TestResolve_LegacyFlatMap(t *testing.T) {
	env := config.EnvStatic(map[string]string{"FOO": "bar"})

	got, err := Resolve(context.Background(), env, nil)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got["FOO"] != "bar" {
		t.Errorf(`got["FOO"] = %q`, got["FOO"])
	}
}

func TestResolve_LegacyRefMap(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetSecret("secret/ci/token", "tok")

	env := config.EnvRefs(map[string]config.RefEntry{
		"TOKEN": {Ref: "secret/ci/token"},
	})

	got, err := Resolve(context.Background(), env, vc)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got["TOKEN"] != "tok" {
		t.Errorf(`got["TOKEN"] = %q, want "tok"`, got["TOKEN"])
	}
}

func TestResolve_OptionalMissingSecretSkipped(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetSecret("secret/ci/token", "tok")
	// secret/ci/extra intentionally absent

	env := config.EnvRefs(map[string]config.RefEntry{
		"TOKEN": {Ref: "secret/ci/token"},
		"EXTRA": {Ref: "secret/ci/extra", Optional: true},
	})

	got, err := Resolve(context.Background(), env, vc)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got["TOKEN"] != "tok" {
		t.Errorf(`got["TOKEN"] = %q`, got["TOKEN"])
	}
	if _, exists := got["EXTRA"]; exists {
		t.Error("optional missing secret should be omitted, not present")
	}
}

func TestResolve_OptionalDoesNotSwallowRealErrors(t *testing.T) {
	vc := vault.NewMockClient()
	vc.SetError("secret/ci/extra", fmt.Errorf("vault sealed"))

	env := config.EnvRefs(map[string]config.RefEntry{
		"EXTRA": {Ref: "secret/ci/extra", Optional: true},
	})

	if _, err := Resolve(context.Background(), env, vc); err == nil {
		t.Error("optional only downgrades missing secrets, not lookup failures")
	}
}

func TestResolve_ConcurrentLookups(t *testing.T) {
	vc := vault.NewMockClient()
	items := make([]config.EnvItem, 0, 20)
	for i := 0; i < 20; i++ {
		ref := fmt.Sprintf("m/p/k%d", i)
		vc.SetSecret(ref, fmt.Sprintf("v%d", i))
		items = append(items, config.EnvItem{
			Key:    fmt.Sprintf("K%d", i),
			Value:  ref,
			Source: config.SourceVault,
		})
	}

	got, err := Resolve(context.Background(), config.EnvItems(items...), vc)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("len(got) = %d, want 20", len(got))
	}
	if vc.CallCount() != 20 {
		t.Errorf("expected one lookup per item, got %d", vc.CallCount())
	}
}

func TestPreflight(t *testing.T) {
	enabled := vault.NewMockClient()
	disabled := vault.NewMockClient()
	disabled.Disabled = true

	tests := []struct {
		name    string
		env     config.EnvSpec
		vc      vault.Client
		wantErr string
	}{
		{
			name: "clean items",
			env: config.EnvItems(
				config.EnvItem{Key: "A", Value: "x"},
				config.EnvItem{Key: "B", Value: "m/p/k", Source: config.SourceVault},
			),
			vc: enabled,
		},
		{
			name: "duplicate key",
			env: config.EnvItems(
				config.EnvItem{Key: "A", Value: "x"},
				config.EnvItem{Key: "A", Value: "y"},
			),
			vc:      enabled,
			wantErr: "duplicate env key",
		},
		{
			name: "bad ref",
			env: config.EnvItems(
				config.EnvItem{Key: "A", Value: "notaref", Source: config.SourceVault},
			),
			vc:      enabled,
			wantErr: `env key "A"`,
		},
		{
			name: "vault disabled",
			env: config.EnvItems(
				config.EnvItem{Key: "A", Value: "m/p/k", Source: config.SourceVault},
			),
			vc:      disabled,
			wantErr: "vault is not available",
		},
		{
			name: "vault nil with static only",
			env:  config.EnvStatic(map[string]string{"A": "x"}),
		},
		{
			name: "refs without vault",
			env: config.EnvRefs(map[string]config.RefEntry{
				"A": {Ref: "m/p/k"},
			}),
			wantErr: "vault is not available",
		},
		{
			name: "empty spec",
			env:  config.EnvSpec{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Preflight(tt.env, tt.vc)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Preflight() failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Preflight() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
