// Package tui provides terminal user interface components for nestbox-ctl.
//
// This package uses the Bubble Tea framework to create interactive terminal
// interfaces, primarily for the workspace picker and the provide wizard.
//
// # Workspace Picker
//
// The picker displays workspaces grouped by platform and allows selection:
//
//	result, err := tui.RunPicker(workspaces)
//	switch result.Action {
//	case tui.ActionExec:
//	    // Open a shell in result.Workspace
//	case tui.ActionDown:
//	    // Tear down the selected workspace
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// # Picker Features
//
//   - Lists workspaces, optionally grouped by platform (headers auto-skipped)
//   - Keyboard navigation (j/k or arrows) and filtering
//   - Quick actions: Enter (shell), d (down), q (quit)
//   - Color-coded status indicators
//
// # Provide Wizard
//
// RunWizard collects provide options interactively (thread id, image,
// platform, DinD, initial script) and returns them for the provide command.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
