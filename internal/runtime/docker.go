package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
	"github.com/nestbox-eng/nestbox-ctl/internal/platform"
)

// DockerClient implements Client against a local Docker Engine endpoint.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient connects to the engine configured by the environment
// (DOCKER_HOST etc.), negotiating the API version.
func NewDockerClient() (*DockerClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerClient{cli: cli}, nil
}

func labelFilter(labels map[string]string) filters.Args {
	args := filters.NewArgs()
	// Deterministic order keeps request logs stable.
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args.Add("label", k+"="+labels[k])
	}
	return args
}

// FindByLabels returns the first container matching every label, or nil.
func (d *DockerClient) FindByLabels(ctx context.Context, labels map[string]string) (*Container, error) {
	containers, err := d.ListByLabels(ctx, labels)
	if err != nil {
		return nil, err
	}
	if len(containers) == 0 {
		return nil, nil
	}
	return containers[0], nil
}

// ListByLabels returns all containers matching every label, running or not.
func (d *DockerClient) ListByLabels(ctx context.Context, labels map[string]string) ([]*Container, error) {
	summaries, err := d.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: labelFilter(labels),
	})
	if err != nil {
		return nil, fmt.Errorf("container list failed: %w", err)
	}

	result := make([]*Container, 0, len(summaries))
	for _, s := range summaries {
		result = append(result, &Container{ID: s.ID, Labels: s.Labels})
	}
	return result, nil
}

// Start creates and starts a container per spec.
func (d *DockerClient) Start(ctx context.Context, spec StartSpec) (*Container, error) {
	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	// An empty Cmd keeps the image's own entrypoint/CMD; sidecar images
	// like docker:dind rely on that to start their daemon.
	cfg := &container.Config{
		Image:  spec.Image,
		Env:    env,
		Labels: spec.Labels,
		Cmd:    spec.Cmd,
	}
	hostCfg := &container.HostConfig{
		Privileged: spec.Privileged,
		AutoRemove: spec.AutoRemove,
		Binds:      spec.Volumes,
	}
	if spec.NetworkMode != "" {
		hostCfg.NetworkMode = container.NetworkMode(spec.NetworkMode)
	}

	var platformSpec *ocispec.Platform
	if spec.Platform != "" {
		triple := platform.Parse(spec.Platform)
		platformSpec = &ocispec.Platform{
			OS:           triple.OS,
			Architecture: triple.Arch,
			Variant:      triple.Variant,
		}
	}

	logging.Debug("creating container", "image", spec.Image, "name", spec.Name)
	resp, err := d.cli.ContainerCreate(ctx, cfg, hostCfg, &network.NetworkingConfig{}, platformSpec, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("container create failed: %w", err)
	}

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("container start failed: %w", err)
	}

	return &Container{ID: resp.ID, Labels: spec.Labels}, nil
}

// Stop stops a container, mapping engine responses onto the typed kinds.
func (d *DockerClient) Stop(ctx context.Context, id string, timeoutSec int) error {
	err := d.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeoutSec})
	switch {
	case err == nil:
		return nil
	case errdefs.IsNotFound(err):
		return fmt.Errorf("stop %s: %w", id, ErrNotFound)
	case errdefs.IsNotModified(err):
		return fmt.Errorf("stop %s: %w", id, ErrAlreadyStopped)
	default:
		return fmt.Errorf("container stop failed: %w", err)
	}
}

// Remove deletes a container.
func (d *DockerClient) Remove(ctx context.Context, id string, force bool) error {
	err := d.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: force})
	switch {
	case err == nil:
		return nil
	case errdefs.IsNotFound(err):
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	default:
		return fmt.Errorf("container remove failed: %w", err)
	}
}

// Exec runs a command inside a container and waits for its exit code.
func (d *DockerClient) Exec(ctx context.Context, id string, command []string, opts ExecOptions) (*ExecResult, error) {
	execResp, err := d.cli.ContainerExecCreate(ctx, id, container.ExecOptions{
		Cmd:          command,
		User:         opts.User,
		WorkingDir:   opts.WorkingDir,
		Env:          opts.Env,
		AttachStdout: true,
		AttachStderr: true,
		AttachStdin:  opts.Stdin != nil,
	})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("exec in %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("exec create failed: %w", err)
	}

	attach, err := d.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("exec attach failed: %w", err)
	}
	defer attach.Close()

	if opts.Stdin != nil {
		go func() {
			_, _ = io.Copy(attach.Conn, opts.Stdin)
			_ = attach.CloseWrite()
		}()
	}

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return nil, fmt.Errorf("exec output read failed: %w", err)
	}

	exitCode, err := d.waitExecDone(ctx, execResp.ID)
	if err != nil {
		return nil, err
	}

	return &ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// waitExecDone polls the exec until it finishes and returns its exit code.
func (d *DockerClient) waitExecDone(ctx context.Context, execID string) (int, error) {
	for {
		inspect, err := d.cli.ContainerExecInspect(ctx, execID)
		if err != nil {
			return 0, fmt.Errorf("exec inspect failed: %w", err)
		}
		if !inspect.Running {
			return inspect.ExitCode, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// ContainerLabels returns the labels of a container.
func (d *DockerClient) ContainerLabels(ctx context.Context, id string) (map[string]string, error) {
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("inspect %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("container inspect failed: %w", err)
	}
	if inspect.Config == nil {
		return map[string]string{}, nil
	}
	return inspect.Config.Labels, nil
}

// IsRunning reports whether the container is running.
func (d *DockerClient) IsRunning(ctx context.Context, id string) (bool, error) {
	inspect, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, fmt.Errorf("inspect %s: %w", id, ErrNotFound)
		}
		return false, fmt.Errorf("container inspect failed: %w", err)
	}
	return inspect.State != nil && inspect.State.Running, nil
}

var _ Client = (*DockerClient)(nil)
