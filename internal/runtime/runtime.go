// Package runtime defines the container runtime client contract for
// nestbox-ctl. Containers are addressed purely by label: labels are the
// sole discovery key, there is no separate index.
package runtime

import (
	"context"
	"io"
)

// Container is an opaque handle to a container owned by the runtime.
// The engine never mutates it directly, only through the client.
type Container struct {
	ID     string
	Labels map[string]string
}

// StartSpec describes a container to create and start.
type StartSpec struct {
	Name     string // optional; discovery never uses it
	Image    string
	Platform string            // "os/arch[/variant]", empty for runtime default
	Env      map[string]string
	Labels   map[string]string
	Cmd      []string

	// Sidecar knobs.
	Privileged  bool
	AutoRemove  bool
	NetworkMode string   // e.g. "container:<id>" to share a network namespace
	Volumes     []string // "name:path" bind specs
}

// ExecOptions holds options for executing a command in a container.
type ExecOptions struct {
	User       string
	WorkingDir string
	Env        []string
	Stdin      io.Reader
}

// ExecResult holds the result of executing a command in a container.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Client is the runtime contract the provisioning engine relies on.
// All methods are safe for concurrent use.
type Client interface {
	// FindByLabels returns the first container matching every given label,
	// or nil when none matches.
	FindByLabels(ctx context.Context, labels map[string]string) (*Container, error)

	// ListByLabels returns all containers matching every given label.
	ListByLabels(ctx context.Context, labels map[string]string) ([]*Container, error)

	// Start creates and starts a container, returning its handle.
	Start(ctx context.Context, spec StartSpec) (*Container, error)

	// Stop stops a running container. Stopping an already-stopped
	// container returns ErrAlreadyStopped.
	Stop(ctx context.Context, id string, timeoutSec int) error

	// Remove deletes a container. A missing container returns ErrNotFound.
	Remove(ctx context.Context, id string, force bool) error

	// Exec runs a command inside a container and waits for it.
	Exec(ctx context.Context, id string, command []string, opts ExecOptions) (*ExecResult, error)

	// ContainerLabels returns the labels of a container by id.
	ContainerLabels(ctx context.Context, id string) (map[string]string, error)

	// IsRunning reports whether a container is currently running.
	IsRunning(ctx context.Context, id string) (bool, error)
}
