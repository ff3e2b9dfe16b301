// Package dind manages Docker-in-Docker sidecar containers attached to
// workspaces. A sidecar shares its workspace's network namespace so the
// workspace reaches the inner daemon at localhost:2375.
package dind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
)

// Image is the sidecar image. The tag is pinned so workspace behavior does
// not drift with upstream releases.
const Image = "docker:27-dind"

var (
	// ErrSidecarExited means the sidecar container stopped before the
	// inner daemon became ready.
	ErrSidecarExited = errors.New("dind sidecar exited before becoming ready")

	// ErrReadyTimeout means the inner daemon did not answer within the
	// readiness deadline.
	ErrReadyTimeout = errors.New("dind sidecar did not become ready in time")
)

// Manager creates, readies, and tears down DinD sidecars.
type Manager struct {
	rt runtime.Client

	// PollInterval and ReadyTimeout bound the readiness wait. Tests
	// shorten them.
	PollInterval time.Duration
	ReadyTimeout time.Duration
}

// NewManager returns a Manager with production poll settings.
func NewManager(rt runtime.Client) *Manager {
	return &Manager{
		rt:           rt,
		PollInterval: time.Second,
		ReadyTimeout: 60 * time.Second,
	}
}

func sidecarLabels(baseLabels map[string]string, parentID string) map[string]string {
	labels := make(map[string]string, len(baseLabels)+2)
	for k, v := range baseLabels {
		labels[k] = v
	}
	labels[config.LabelRole] = config.RoleDinD
	labels[config.LabelParentCID] = parentID
	return labels
}

// Ensure makes sure a ready sidecar exists for ws. An existing sidecar is
// reused; otherwise one is created and Ensure blocks until the inner daemon
// answers `docker info` or the deadline passes.
func (m *Manager) Ensure(ctx context.Context, ws *runtime.Container, baseLabels map[string]string, mirrorURL string) error {
	labels := sidecarLabels(baseLabels, ws.ID)

	existing, err := m.rt.FindByLabels(ctx, labels)
	if err != nil {
		return fmt.Errorf("find dind sidecar: %w", err)
	}
	if existing != nil {
		logging.Debug("reusing dind sidecar", "sidecar", existing.ID, "workspace", ws.ID)
		return m.waitReady(ctx, existing.ID)
	}

	cmd := []string{}
	if mirrorURL != "" {
		cmd = append(cmd, "--registry-mirror", mirrorURL)
	}

	spec := runtime.StartSpec{
		Image:  Image,
		Labels: labels,
		Env: map[string]string{
			// The daemon refuses plain TCP unless TLS is explicitly off.
			"DOCKER_TLS_CERTDIR": "",
		},
		Cmd:         cmd,
		Privileged:  true,
		AutoRemove:  true,
		NetworkMode: "container:" + ws.ID,
		Volumes: []string{
			"nestbox-dind-" + uuid.NewString() + ":/var/lib/docker",
		},
	}

	sidecar, err := m.rt.Start(ctx, spec)
	if err != nil {
		return fmt.Errorf("start dind sidecar: %w", err)
	}
	logging.Info("started dind sidecar", "sidecar", sidecar.ID, "workspace", ws.ID)

	return m.waitReady(ctx, sidecar.ID)
}

// waitReady polls `docker info` inside the sidecar until it exits zero.
func (m *Manager) waitReady(ctx context.Context, sidecarID string) error {
	deadline := time.Now().Add(m.ReadyTimeout)
	for {
		running, err := m.rt.IsRunning(ctx, sidecarID)
		if err != nil {
			return fmt.Errorf("inspect dind sidecar: %w", err)
		}
		if !running {
			return ErrSidecarExited
		}

		res, err := m.rt.Exec(ctx, sidecarID, []string{"docker", "info"}, runtime.ExecOptions{})
		if err == nil && res.ExitCode == 0 {
			logging.Debug("dind sidecar ready", "sidecar", sidecarID)
			return nil
		}
		if err != nil {
			logging.Debug("dind readiness probe failed", "sidecar", sidecarID, "error", err)
		}

		if time.Now().After(deadline) {
			return ErrReadyTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.PollInterval):
		}
	}
}

// CleanupFor stops and removes every sidecar attached to parentID.
// Best-effort: individual failures are logged at debug and swallowed so a
// workspace recreate never wedges on a half-dead sidecar.
func (m *Manager) CleanupFor(ctx context.Context, baseLabels map[string]string, parentID string) {
	labels := sidecarLabels(baseLabels, parentID)

	sidecars, err := m.rt.ListByLabels(ctx, labels)
	if err != nil {
		logging.Debug("dind cleanup: list failed", "parent", parentID, "error", err)
		return
	}

	var g errgroup.Group
	for _, sc := range sidecars {
		id := sc.ID
		g.Go(func() error {
			if err := m.rt.Stop(ctx, id, 10); err != nil && !runtime.IsBenignCleanup(err) {
				logging.Debug("dind cleanup: stop failed", "sidecar", id, "error", err)
			}
			if err := m.rt.Remove(ctx, id, true); err != nil && !runtime.IsBenignCleanup(err) {
				logging.Debug("dind cleanup: remove failed", "sidecar", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
