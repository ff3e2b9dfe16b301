package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// threadIDRegex validates thread identifiers. Thread ids become container
// label values and log file names, so the charset mirrors the common
// container-name limit: lowercase letter or digit first, then lowercase
// letters, digits, underscores, or hyphens, at most 63 characters.
var threadIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// ValidateThreadID checks if a thread identifier is valid.
func ValidateThreadID(id string) error {
	if id == "" {
		return fmt.Errorf("thread id cannot be empty")
	}

	if !threadIDRegex.MatchString(id) {
		return fmt.Errorf("invalid thread id %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, underscores, or hyphens, and be at most 63 characters", id)
	}

	return nil
}

const (
	DefaultConfigDir = "/etc/nestbox"
	DefaultStateDir  = "/var/lib/nestbox"
)

// Paths holds the directories nestbox-ctl reads and writes.
type Paths struct {
	ConfigDir string
	StateDir  string
	LogsDir   string
}

// DefaultPaths returns the standard path layout.
func DefaultPaths() *Paths {
	return &Paths{
		ConfigDir: DefaultConfigDir,
		StateDir:  DefaultStateDir,
		LogsDir:   filepath.Join(DefaultStateDir, "logs"),
	}
}

// InitScriptLogPath returns the path for a thread's captured initial-script
// output, refusing thread ids that would escape the logs directory.
func (p *Paths) InitScriptLogPath(threadID string) (string, error) {
	if err := ValidateThreadID(threadID); err != nil {
		return "", err
	}
	path, err := securejoin.SecureJoin(p.LogsDir, threadID+".init.log")
	if err != nil {
		return "", fmt.Errorf("invalid log path for thread %q: %w", threadID, err)
	}
	return path, nil
}

// EnsureLogsDir creates the logs directory if it does not exist.
func (p *Paths) EnsureLogsDir() error {
	return os.MkdirAll(p.LogsDir, 0755)
}
