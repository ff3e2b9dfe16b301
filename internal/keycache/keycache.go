// Package keycache maintains a process-wide cache of the rotating trust
// key fetched from the binary-cache key endpoint. Entries are keyed by
// source URL and shared by every provisioner in the process.
//
// Concurrent callers for the same URL are coalesced into a single HTTP
// fetch; a cached value is served without I/O until its TTL expires. A
// failed or invalid fetch never corrupts the cache: callers fall back to
// the previous value, or receive ErrNoKey when none exists.
package keycache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nestbox-eng/nestbox-ctl/internal/logging"
)

// ErrNoKey is returned when no key could be fetched and no previous value
// is cached. Callers should skip key injection rather than fail.
var ErrNoKey = errors.New("no trust key available")

// Source identifies a key endpoint and how long its value stays fresh.
type Source struct {
	URL string
	TTL time.Duration
}

// HTTPDoer is the transport seam; *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type entry struct {
	value     string
	fetchedAt time.Time
	expiresAt time.Time
}

// Cache holds trust-key entries keyed by source URL.
type Cache struct {
	// Client is the HTTP transport used for key fetches.
	Client HTTPDoer

	// Now is the clock; tests override it to control TTL expiry.
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// Shared is the process-wide cache used by all provisioners.
var Shared = New()

// New creates an empty cache with the default transport and clock.
func New() *Cache {
	return &Cache{
		Client:  &http.Client{Timeout: 10 * time.Second},
		Now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Key returns the current trust key for src, fetching it if the cached
// value is absent or expired. Concurrent callers for the same URL share a
// single fetch.
func (c *Cache) Key(src Source) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[src.URL]; ok && c.Now().Before(e.expiresAt) {
		value := e.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(src.URL, func() (any, error) {
		return c.refresh(src)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refresh fetches the key and updates the cache. It re-checks freshness
// first: a caller that lost the race to a just-finished fetch should not
// trigger another one.
func (c *Cache) refresh(src Source) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[src.URL]; ok && c.Now().Before(e.expiresAt) {
		value := e.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := c.fetch(src.URL)
	if err != nil {
		logging.Warn("pubkey fetch failed", "url", src.URL, "error", err)
		return c.stale(src.URL)
	}

	// A valid key is "name:key-material".
	if !strings.Contains(value, ":") {
		logging.Warn("pubkey fetch failed", "url", src.URL,
			"error", "payload is not a name:key pair")
		return c.stale(src.URL)
	}

	now := c.Now()
	c.mu.Lock()
	prev := c.entries[src.URL]
	c.entries[src.URL] = &entry{
		value:     value,
		fetchedAt: now,
		expiresAt: now.Add(src.TTL),
	}
	c.mu.Unlock()

	if prev != nil && prev.value != value {
		logging.Info("trust key rotated", "url", src.URL,
			"key", keyName(value))
	}

	return value, nil
}

// stale returns the previous cached value if one exists, even when
// expired, so a transient endpoint failure does not drop the key.
func (c *Cache) stale(url string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[url]; ok {
		return e.value, nil
	}
	return "", ErrNoKey
}

func (c *Cache) fetch(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(body)), nil
}

// keyName extracts the name half of a "name:key-material" pair. Only the
// name is ever logged.
func keyName(value string) string {
	name, _, _ := strings.Cut(value, ":")
	return name
}

// Reset clears all cached entries and in-flight state. Test hook.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.group = singleflight.Group{}
}
