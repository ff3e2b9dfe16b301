// Package vault defines the secret-store client contract used to resolve
// vault-sourced environment items, and the reference string format that
// addresses a secret.
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrSecretNotFound is returned by GetSecret when the referenced secret
// does not exist or has no value.
var ErrSecretNotFound = errors.New("secret not found")

// Ref addresses a secret inside the store.
type Ref struct {
	Mount string
	Path  string
	Key   string
}

// String renders the reference back to its compact form.
func (r Ref) String() string {
	return r.Mount + "/" + r.Path + "/" + r.Key
}

// ParseRef parses a "mount/path/key" reference string. The first segment
// is the mount, the last is the key, and everything between is the path,
// which may itself contain slashes.
func ParseRef(s string) (Ref, error) {
	parts := strings.Split(s, "/")
	if len(parts) < 3 {
		return Ref{}, fmt.Errorf("invalid secret reference %q: want mount/path/key", s)
	}
	for _, p := range parts {
		if p == "" {
			return Ref{}, fmt.Errorf("invalid secret reference %q: empty segment", s)
		}
	}

	return Ref{
		Mount: parts[0],
		Path:  strings.Join(parts[1:len(parts)-1], "/"),
		Key:   parts[len(parts)-1],
	}, nil
}

// Client is the secret-store contract this engine relies on.
type Client interface {
	// Enabled reports whether the store is configured and usable.
	Enabled() bool

	// GetSecret fetches a single secret value. A missing secret returns
	// ErrSecretNotFound.
	GetSecret(ctx context.Context, ref Ref) (string, error)
}
