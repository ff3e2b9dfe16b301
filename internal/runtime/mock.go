package runtime

import (
	"context"
	"fmt"
	"sync"
)

// MockContainer is the mock's view of a container.
type MockContainer struct {
	ID      string
	Labels  map[string]string
	Running bool
	Spec    StartSpec // the spec it was started with, when started via Start
}

// MockClient is an in-memory implementation of Client for testing.
type MockClient struct {
	mu sync.Mutex

	// Containers tracks mock containers by id.
	Containers map[string]*MockContainer

	// ExecResults maps container ids to canned exec results.
	ExecResults map[string]*ExecResult

	// ExecFunc, when set, handles Exec calls instead of ExecResults.
	ExecFunc func(id string, command []string) (*ExecResult, error)

	// Errors injects errors per method name.
	Errors map[string]error

	// CallLog records all method calls for verification.
	CallLog []MockCall

	nextID int
}

// MockCall represents a recorded method call.
type MockCall struct {
	Method string
	Args   []any
}

// NewMockClient creates an empty mock runtime client.
func NewMockClient() *MockClient {
	return &MockClient{
		Containers:  make(map[string]*MockContainer),
		ExecResults: make(map[string]*ExecResult),
		Errors:      make(map[string]error),
	}
}

func (m *MockClient) record(method string, args ...any) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError injects an error for a method.
func (m *MockClient) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// SetExecResult sets the canned exec result for a container id.
func (m *MockClient) SetExecResult(id string, result *ExecResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecResults[id] = result
}

// AddContainer registers an existing container.
func (m *MockClient) AddContainer(id string, labels map[string]string, running bool) *MockContainer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &MockContainer{ID: id, Labels: labels, Running: running}
	m.Containers[id] = c
	return c
}

// GetCallsFor returns all recorded calls for a method.
func (m *MockClient) GetCallsFor(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears all state.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers = make(map[string]*MockContainer)
	m.ExecResults = make(map[string]*ExecResult)
	m.Errors = make(map[string]error)
	m.CallLog = nil
	m.nextID = 0
}

func labelsMatch(want, have map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

func (m *MockClient) FindByLabels(ctx context.Context, labels map[string]string) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("FindByLabels", labels)

	if err, ok := m.Errors["FindByLabels"]; ok {
		return nil, err
	}

	for _, c := range m.Containers {
		if labelsMatch(labels, c.Labels) {
			return &Container{ID: c.ID, Labels: c.Labels}, nil
		}
	}
	return nil, nil
}

func (m *MockClient) ListByLabels(ctx context.Context, labels map[string]string) ([]*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListByLabels", labels)

	if err, ok := m.Errors["ListByLabels"]; ok {
		return nil, err
	}

	var result []*Container
	for _, c := range m.Containers {
		if labelsMatch(labels, c.Labels) {
			result = append(result, &Container{ID: c.ID, Labels: c.Labels})
		}
	}
	return result, nil
}

func (m *MockClient) Start(ctx context.Context, spec StartSpec) (*Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Start", spec)

	if err, ok := m.Errors["Start"]; ok {
		return nil, err
	}

	m.nextID++
	id := fmt.Sprintf("mock-%d", m.nextID)
	if spec.Name != "" {
		id = spec.Name
	}

	m.Containers[id] = &MockContainer{
		ID:      id,
		Labels:  spec.Labels,
		Running: true,
		Spec:    spec,
	}
	return &Container{ID: id, Labels: spec.Labels}, nil
}

func (m *MockClient) Stop(ctx context.Context, id string, timeoutSec int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Stop", id, timeoutSec)

	if err, ok := m.Errors["Stop"]; ok {
		return err
	}

	c, ok := m.Containers[id]
	if !ok {
		return fmt.Errorf("stop %s: %w", id, ErrNotFound)
	}
	if !c.Running {
		return fmt.Errorf("stop %s: %w", id, ErrAlreadyStopped)
	}
	c.Running = false
	return nil
}

func (m *MockClient) Remove(ctx context.Context, id string, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Remove", id, force)

	if err, ok := m.Errors["Remove"]; ok {
		return err
	}

	if _, ok := m.Containers[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	delete(m.Containers, id)
	return nil
}

func (m *MockClient) Exec(ctx context.Context, id string, command []string, opts ExecOptions) (*ExecResult, error) {
	m.mu.Lock()
	execFunc := m.ExecFunc
	m.record("Exec", id, command, opts)

	if err, ok := m.Errors["Exec"]; ok {
		m.mu.Unlock()
		return nil, err
	}

	if _, ok := m.Containers[id]; !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("exec in %s: %w", id, ErrNotFound)
	}

	if result, ok := m.ExecResults[id]; ok && execFunc == nil {
		m.mu.Unlock()
		return result, nil
	}
	m.mu.Unlock()

	if execFunc != nil {
		return execFunc(id, command)
	}
	return &ExecResult{ExitCode: 0}, nil
}

func (m *MockClient) ContainerLabels(ctx context.Context, id string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ContainerLabels", id)

	if err, ok := m.Errors["ContainerLabels"]; ok {
		return nil, err
	}

	c, ok := m.Containers[id]
	if !ok {
		return nil, fmt.Errorf("inspect %s: %w", id, ErrNotFound)
	}
	return c.Labels, nil
}

func (m *MockClient) IsRunning(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("IsRunning", id)

	if err, ok := m.Errors["IsRunning"]; ok {
		return false, err
	}

	c, ok := m.Containers[id]
	if !ok {
		return false, nil
	}
	return c.Running, nil
}

var _ Client = (*MockClient)(nil)
