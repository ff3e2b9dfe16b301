// Package logging provides logging utilities for nestbox-ctl.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("provisioning workspace", "thread", threadID)
//	logging.Warn("pubkey fetch failed", "url", url, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Provisioning workspace %s...", threadID)
//	logging.UserSuccess("Workspace %s ready", threadID)
//	logging.UserWarning("Sidecar for %s is not healthy", threadID)
//	logging.UserError("Provisioning failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
