// Package environ merges static and vault-sourced environment entries into
// the final environment map for a workspace container.
//
// Resolution is all-or-nothing: duplicate keys are rejected before any
// network call, vault lookups run concurrently, and a single failed or
// missing secret aborts the whole resolution. A partial environment is
// never returned.
package environ

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
	"github.com/nestbox-eng/nestbox-ctl/internal/vault"
)

// lookup is a single vault-sourced entry scheduled for resolution.
type lookup struct {
	key      string
	ref      vault.Ref
	optional bool
}

// Preflight checks everything about an EnvSpec that can fail without I/O:
// duplicate keys, malformed references, and vault-sourced entries with no
// usable vault client. Callers run it before touching the container
// runtime so a bad spec never costs a network call.
func Preflight(env config.EnvSpec, vc vault.Client) error {
	vaultItems := 0

	switch env.Kind {
	case config.EnvKindNone, config.EnvKindStatic:
		return nil

	case config.EnvKindItems:
		seen := make(map[string]bool, len(env.Items))
		for _, item := range env.Items {
			if seen[item.Key] {
				return errors.SecretError(fmt.Sprintf("duplicate env key %q", item.Key), nil)
			}
			seen[item.Key] = true
			if item.Source == config.SourceVault {
				if _, err := vault.ParseRef(item.Value); err != nil {
					return errors.SecretError(fmt.Sprintf("env key %q", item.Key), err)
				}
				vaultItems++
			}
		}

	case config.EnvKindRefs:
		for k, entry := range env.Refs {
			if _, err := vault.ParseRef(entry.Ref); err != nil {
				return errors.SecretError(fmt.Sprintf("env key %q", k), err)
			}
			vaultItems++
		}

	default:
		return errors.ConfigError(fmt.Sprintf("unknown env kind %d", env.Kind), nil)
	}

	if vaultItems > 0 && (vc == nil || !vc.Enabled()) {
		return errors.SecretError("vault-sourced env items configured but vault is not available", nil)
	}
	return nil
}

// Resolve produces the final environment map for an EnvSpec.
func Resolve(ctx context.Context, env config.EnvSpec, vc vault.Client) (map[string]string, error) {
	result := make(map[string]string)
	var lookups []lookup

	switch env.Kind {
	case config.EnvKindNone:
		return result, nil

	case config.EnvKindItems:
		seen := make(map[string]bool, len(env.Items))
		for _, item := range env.Items {
			if seen[item.Key] {
				return nil, errors.SecretError(fmt.Sprintf("duplicate env key %q", item.Key), nil)
			}
			seen[item.Key] = true

			if item.Source == config.SourceVault {
				ref, err := vault.ParseRef(item.Value)
				if err != nil {
					return nil, errors.SecretError(fmt.Sprintf("env key %q", item.Key), err)
				}
				lookups = append(lookups, lookup{key: item.Key, ref: ref})
				continue
			}
			result[item.Key] = item.Value
		}

	case config.EnvKindStatic:
		for k, v := range env.Static {
			result[k] = v
		}

	case config.EnvKindRefs:
		for k, entry := range env.Refs {
			ref, err := vault.ParseRef(entry.Ref)
			if err != nil {
				return nil, errors.SecretError(fmt.Sprintf("env key %q", k), err)
			}
			lookups = append(lookups, lookup{key: k, ref: ref, optional: entry.Optional})
		}

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unknown env kind %d", env.Kind), nil)
	}

	if len(lookups) == 0 {
		return result, nil
	}

	if vc == nil || !vc.Enabled() {
		return nil, errors.SecretError("vault-sourced env items configured but vault is not available", nil)
	}

	// One request per entry, no concurrency cap; merge only after every
	// lookup succeeds.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lookups {
		g.Go(func() error {
			value, err := vc.GetSecret(gctx, l.ref)
			if err != nil {
				if l.optional && errors.Is(err, vault.ErrSecretNotFound) {
					logging.Debug("optional secret missing, skipping",
						"key", l.key, "ref", l.ref.String())
					return nil
				}
				return errors.SecretError(
					fmt.Sprintf("failed to resolve env key %q from %q", l.key, l.ref.String()), err)
			}

			mu.Lock()
			result[l.key] = value
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
