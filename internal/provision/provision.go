// Package provision turns thread ids into running workspace containers.
// It decides reuse versus recreate from the container's platform label,
// resolves the environment (including vault secrets and the cached trust
// key), attaches the DinD sidecar, and runs the initial script.
package provision

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
	"github.com/nestbox-eng/nestbox-ctl/internal/dind"
	"github.com/nestbox-eng/nestbox-ctl/internal/environ"
	"github.com/nestbox-eng/nestbox-ctl/internal/errors"
	"github.com/nestbox-eng/nestbox-ctl/internal/keycache"
	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
	"github.com/nestbox-eng/nestbox-ctl/internal/platform"
	"github.com/nestbox-eng/nestbox-ctl/internal/runtime"
	"github.com/nestbox-eng/nestbox-ctl/internal/vault"
)

// DockerHostEnv is injected into workspaces with a DinD sidecar; the
// sidecar shares the workspace's network namespace, so the inner daemon
// answers on localhost.
const DockerHostEnv = "tcp://localhost:2375"

// Provisioner orchestrates workspace container lifecycle for threads.
type Provisioner struct {
	rt    runtime.Client
	vc    vault.Client
	keys  *keycache.Cache
	dind  *dind.Manager
	host  *config.HostConfig
	paths *config.Paths

	specMu sync.Mutex
	spec   *config.WorkspaceSpec

	// threadMu serializes Provide calls per thread id. Different threads
	// interleave freely.
	threadMu sync.Mutex
	threads  map[string]*sync.Mutex
}

// New builds a Provisioner. keys may be keycache.Shared.
func New(rt runtime.Client, vc vault.Client, keys *keycache.Cache, host *config.HostConfig, paths *config.Paths) *Provisioner {
	return &Provisioner{
		rt:      rt,
		vc:      vc,
		keys:    keys,
		dind:    dind.NewManager(rt),
		host:    host,
		paths:   paths,
		threads: make(map[string]*sync.Mutex),
	}
}

// Sidecars exposes the sidecar manager, mainly so tests and the down
// command can reach its cleanup path.
func (p *Provisioner) Sidecars() *dind.Manager {
	return p.dind
}

// SetConfig validates and stores the workspace spec. The stored spec is
// treated as immutable; later SetConfig calls replace it wholesale.
func (p *Provisioner) SetConfig(spec *config.WorkspaceSpec) error {
	if spec != nil {
		if err := spec.Validate(); err != nil {
			return errors.ConfigError("invalid workspace spec", err)
		}
	}
	p.specMu.Lock()
	p.spec = spec
	p.specMu.Unlock()
	return nil
}

func (p *Provisioner) currentSpec() config.WorkspaceSpec {
	p.specMu.Lock()
	defer p.specMu.Unlock()
	if p.spec == nil {
		return config.WorkspaceSpec{}
	}
	return *p.spec
}

func (p *Provisioner) lockThread(threadID string) *sync.Mutex {
	p.threadMu.Lock()
	mu, ok := p.threads[threadID]
	if !ok {
		mu = &sync.Mutex{}
		p.threads[threadID] = mu
	}
	p.threadMu.Unlock()
	return mu
}

// Provide returns a running workspace container for threadID, creating or
// recreating it as needed. Calls for the same thread id are serialized.
func (p *Provisioner) Provide(ctx context.Context, threadID string) (*runtime.Container, error) {
	if err := config.ValidateThreadID(threadID); err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	mu := p.lockThread(threadID)
	mu.Lock()
	defer mu.Unlock()

	spec := p.currentSpec()
	if err := environ.Preflight(spec.Env, p.vc); err != nil {
		return nil, err
	}
	image := spec.Image
	if image == "" {
		image = p.host.DefaultImage
	}
	requestedPlatform := spec.Platform
	if requestedPlatform == "" {
		requestedPlatform = p.host.DefaultPlatform
	}

	baseLabels := config.ThreadLabels(threadID)
	wsLabels := map[string]string{
		config.LabelThreadID: threadID,
		config.LabelRole:     config.RoleWorkspace,
	}

	existing, err := p.rt.FindByLabels(ctx, wsLabels)
	if err != nil {
		return nil, errors.ContainerFailed("lookup workspace", err)
	}

	if existing != nil {
		if p.reusable(ctx, existing, requestedPlatform) {
			logging.Debug("reusing workspace", "thread", threadID, "container", existing.ID)
			if spec.EnableDinD {
				if err := p.dind.Ensure(ctx, existing, baseLabels, p.host.Registry.MirrorURL); err != nil {
					return nil, errors.SidecarFailed("dind sidecar not ready", err)
				}
			}
			return existing, nil
		}

		logging.Info("recreating workspace", "thread", threadID, "container", existing.ID,
			"requested_platform", requestedPlatform)
		if err := p.teardown(ctx, existing, baseLabels, spec.EnableDinD); err != nil {
			return nil, err
		}
	}

	return p.create(ctx, threadID, spec, image, requestedPlatform, baseLabels, wsLabels)
}

// reusable reports whether existing is running and satisfies the requested
// platform. Any uncertainty (missing label, inspect failure) counts as not
// reusable.
func (p *Provisioner) reusable(ctx context.Context, existing *runtime.Container, requestedPlatform string) bool {
	running, err := p.rt.IsRunning(ctx, existing.ID)
	if err != nil {
		logging.Warn("workspace state check failed, recreating", "container", existing.ID, "error", err)
		return false
	}
	if !running {
		logging.Info("workspace is stopped, recreating", "container", existing.ID)
		return false
	}
	if requestedPlatform == "" {
		return true
	}
	labels, err := p.rt.ContainerLabels(ctx, existing.ID)
	if err != nil {
		logging.Warn("workspace inspect failed, recreating", "container", existing.ID, "error", err)
		return false
	}
	existingPlatform, ok := labels[config.LabelPlatform]
	if !ok {
		logging.Debug("workspace has no platform label, recreating", "container", existing.ID)
		return false
	}
	if !platform.CompatibleStrings(requestedPlatform, existingPlatform) {
		logging.Info("workspace platform mismatch",
			"requested", requestedPlatform, "existing", existingPlatform)
		return false
	}
	return true
}

// teardown removes an old workspace before recreation. Sidecars go first
// so nothing holds the workspace's network namespace.
func (p *Provisioner) teardown(ctx context.Context, ws *runtime.Container, baseLabels map[string]string, dindEnabled bool) error {
	if dindEnabled {
		p.dind.CleanupFor(ctx, baseLabels, ws.ID)
	}
	if err := p.rt.Stop(ctx, ws.ID, 10); err != nil && !runtime.IsBenignCleanup(err) {
		return errors.ContainerFailed("stop workspace", err)
	}
	if err := p.rt.Remove(ctx, ws.ID, true); err != nil && !runtime.IsBenignCleanup(err) {
		return errors.ContainerFailed("remove workspace", err)
	}
	return nil
}

func (p *Provisioner) create(ctx context.Context, threadID string, spec config.WorkspaceSpec, image, requestedPlatform string, baseLabels, wsLabels map[string]string) (*runtime.Container, error) {
	env, err := environ.Resolve(ctx, spec.Env, p.vc)
	if err != nil {
		return nil, err
	}
	if spec.EnableDinD {
		env["DOCKER_HOST"] = DockerHostEnv
	}
	p.injectTrustKey(env)

	labels := make(map[string]string, len(wsLabels)+1)
	for k, v := range wsLabels {
		labels[k] = v
	}
	if requestedPlatform != "" {
		labels[config.LabelPlatform] = requestedPlatform
	}

	ws, err := p.rt.Start(ctx, runtime.StartSpec{
		Image:    image,
		Platform: requestedPlatform,
		Env:      env,
		Labels:   labels,
		// Workspace images have no long-running entrypoint of their own;
		// keep the container alive until teardown.
		Cmd: []string{"sleep", "infinity"},
	})
	if err != nil {
		return nil, errors.ContainerFailed("start workspace", err)
	}
	logging.Info("started workspace", "thread", threadID, "container", ws.ID, "image", image)

	if spec.EnableDinD {
		if err := p.dind.Ensure(ctx, ws, baseLabels, p.host.Registry.MirrorURL); err != nil {
			return nil, errors.SidecarFailed("dind sidecar not ready", err)
		}
	}

	if spec.InitialScript != "" {
		if err := p.runInitScript(ctx, threadID, ws.ID, spec.InitialScript); err != nil {
			// The container stays up so the script can be debugged in place.
			return nil, err
		}
	}

	return ws, nil
}

// injectTrustKey merges the substituter trust key into env as NIX_CONFIG
// lines. A missing key skips injection rather than failing the provision.
func (p *Provisioner) injectTrustKey(env map[string]string) {
	if !p.host.KeySource.Enabled {
		return
	}
	key, err := p.keys.Key(keycache.Source{URL: p.host.KeySource.URL, TTL: p.host.KeyTTL()})
	if err != nil {
		logging.Warn("trust key unavailable, skipping substituter config", "error", err)
		return
	}
	lines := []string{}
	if sub := p.host.KeySource.Substituter; sub != "" {
		lines = append(lines, "extra-substituters = "+sub)
	}
	lines = append(lines, "extra-trusted-public-keys = "+key)
	if prev := env["NIX_CONFIG"]; prev != "" {
		lines = append([]string{prev}, lines...)
	}
	env["NIX_CONFIG"] = strings.Join(lines, "\n")
}

// runInitScript executes the configured script via a login shell and
// mirrors its combined output to the thread's init log.
func (p *Provisioner) runInitScript(ctx context.Context, threadID, containerID, script string) error {
	res, err := p.rt.Exec(ctx, containerID, []string{"/bin/sh", "-lc", script}, runtime.ExecOptions{})
	if err != nil {
		return errors.ContainerFailed("run initial script", err)
	}

	if p.paths != nil {
		if logErr := p.writeInitLog(threadID, res); logErr != nil {
			logging.Warn("failed to write init script log", "thread", threadID, "error", logErr)
		}
	}

	if res.ExitCode != 0 {
		return errors.ScriptFailed(res.ExitCode, res.Stderr)
	}
	logging.Debug("initial script completed", "thread", threadID, "container", containerID)
	return nil
}

func (p *Provisioner) writeInitLog(threadID string, res *runtime.ExecResult) error {
	if err := p.paths.EnsureLogsDir(); err != nil {
		return err
	}
	path, err := p.paths.InitScriptLogPath(threadID)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(res.Stdout)
	if res.Stderr != "" {
		if res.Stdout != "" && !strings.HasSuffix(res.Stdout, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(res.Stderr)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
