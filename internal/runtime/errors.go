package runtime

import "errors"

// Typed error kinds for runtime operations. Cleanup paths swallow an
// explicit allow-list of these rather than probing status codes.
var (
	// ErrNotFound means the container does not exist.
	ErrNotFound = errors.New("container not found")

	// ErrAlreadyStopped means a stop was requested for a container that is
	// not running.
	ErrAlreadyStopped = errors.New("container already stopped")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyStopped reports whether err is, or wraps, ErrAlreadyStopped.
func IsAlreadyStopped(err error) bool {
	return errors.Is(err, ErrAlreadyStopped)
}

// IsBenignCleanup reports whether err is one of the error kinds that
// best-effort cleanup is allowed to swallow.
func IsBenignCleanup(err error) bool {
	return IsNotFound(err) || IsAlreadyStopped(err)
}
