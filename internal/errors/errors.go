package errors

import (
	"errors"
	"fmt"
)

// Exit codes for nestbox-ctl
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitConfigError     = 2
	ExitSecretError     = 3
	ExitContainerFailed = 4
	ExitSidecarFailed   = 5
	ExitScriptFailed    = 6
)

// NestboxError is the base error type for nestbox-ctl
type NestboxError struct {
	Code    int
	Message string
	Cause   error
}

func (e *NestboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *NestboxError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *NestboxError) ExitCode() int {
	return e.Code
}

// New creates a new NestboxError
func New(code int, message string) *NestboxError {
	return &NestboxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a NestboxError
func Wrap(code int, message string, cause error) *NestboxError {
	return &NestboxError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// ConfigError returns an error for invalid configuration
func ConfigError(message string, cause error) *NestboxError {
	return Wrap(ExitConfigError, message, cause)
}

// SecretError returns an error for secret-resolution failures
func SecretError(message string, cause error) *NestboxError {
	return Wrap(ExitSecretError, message, cause)
}

// ContainerFailed returns an error for container runtime operations
func ContainerFailed(op string, cause error) *NestboxError {
	return Wrap(ExitContainerFailed, fmt.Sprintf("container %s failed", op), cause)
}

// SidecarFailed returns an error for sidecar lifecycle failures
func SidecarFailed(message string, cause error) *NestboxError {
	return Wrap(ExitSidecarFailed, message, cause)
}

// ScriptFailed returns an error for a non-zero initial script exit.
// The exit code and captured stderr are embedded in the message.
func ScriptFailed(exitCode int, stderr string) *NestboxError {
	return New(ExitScriptFailed, fmt.Sprintf("initial script exited with code %d: %s", exitCode, stderr))
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *NestboxError {
	return New(ExitConfigError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var nbErr *NestboxError
	if errors.As(err, &nbErr) {
		return nbErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
