package vault

import (
	"context"
	"sync"
)

// MockClient is an in-memory Client for testing.
type MockClient struct {
	mu sync.Mutex

	// Disabled makes Enabled return false.
	Disabled bool

	// Secrets maps "mount/path/key" reference strings to values.
	Secrets map[string]string

	// Errors maps reference strings to injected errors.
	Errors map[string]error

	// Calls records every GetSecret reference, in order.
	Calls []string
}

// NewMockClient creates a mock with an empty secret map.
func NewMockClient() *MockClient {
	return &MockClient{
		Secrets: make(map[string]string),
		Errors:  make(map[string]error),
	}
}

// SetSecret stores a secret under its reference string.
func (m *MockClient) SetSecret(ref, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Secrets[ref] = value
}

// SetError injects an error for a reference string.
func (m *MockClient) SetError(ref string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[ref] = err
}

// CallCount returns the number of GetSecret calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockClient) Enabled() bool {
	return !m.Disabled
}

func (m *MockClient) GetSecret(ctx context.Context, ref Ref) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ref.String()
	m.Calls = append(m.Calls, key)

	if err, ok := m.Errors[key]; ok {
		return "", err
	}
	if value, ok := m.Secrets[key]; ok {
		return value, nil
	}
	return "", ErrSecretNotFound
}

var _ Client = (*MockClient)(nil)
