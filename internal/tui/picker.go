// Package tui provides terminal user interface components for nestbox-ctl
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionExec
	ActionDown
	ActionQuit
)

// Workspace is the picker's view of a provisioned workspace container.
type Workspace struct {
	ThreadID    string
	ContainerID string
	Platform    string
	Running     bool
	HasSidecar  bool
}

// PickerResult holds the result of the picker
type PickerResult struct {
	Action    Action
	Workspace *Workspace
}

// workspaceItem implements list.Item for workspace display
type workspaceItem struct {
	ws *Workspace
}

func (i workspaceItem) Title() string {
	return i.ws.ThreadID
}

func (i workspaceItem) Description() string {
	statusIcon := "●"
	if i.ws.Running {
		statusIcon = "✓"
	}

	platform := i.ws.Platform
	if platform == "" {
		platform = "any"
	}

	parts := []string{
		statusIcon,
		platform,
		truncateID(i.ws.ContainerID, 12),
	}
	if i.ws.HasSidecar {
		parts = append(parts, "dind")
	}
	return strings.Join(parts, " | ")
}

func (i workspaceItem) FilterValue() string {
	return i.ws.ThreadID
}

func truncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the workspace picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	grouped  bool
	width    int
	height   int
}

// NewPicker creates a new workspace picker
func NewPicker(workspaces []*Workspace) Model {
	items := make([]list.Item, len(workspaces))
	for i, ws := range workspaces {
		items[i] = workspaceItem{ws: ws}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "Nestbox - Select Workspace"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{
		list: l,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				m.result = PickerResult{
					Action:    ActionExec,
					Workspace: item.ws,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "d":
			if item, ok := m.list.SelectedItem().(workspaceItem); ok {
				m.result = PickerResult{
					Action:    ActionDown,
					Workspace: item.ws,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.grouped {
		if key, ok := msg.(tea.KeyMsg); ok && isHeaderSelected(&m.list) {
			skipHeaders(&m.list, navigationDirection(key))
		}
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Shell  [d] Down  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive workspace picker
func RunPicker(workspaces []*Workspace) (PickerResult, error) {
	if len(workspaces) == 0 {
		return PickerResult{Action: ActionQuit}, nil
	}

	return RunModel(NewPicker(workspaces))
}

// RunModel runs a picker model (flat or grouped) to completion.
func RunModel(m Model) (PickerResult, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive picker that just lists workspaces
func SimplePicker(workspaces []*Workspace) string {
	var sb strings.Builder

	sb.WriteString("Nestbox - Workspaces\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(workspaces) == 0 {
		sb.WriteString("No workspaces found.\n")
		sb.WriteString("Create one with: nestbox-ctl provide <thread-id>\n")
		return sb.String()
	}

	for i, ws := range workspaces {
		statusIcon := "●"
		if ws.Running {
			statusIcon = "✓"
		}

		platform := ws.Platform
		if platform == "" {
			platform = "any"
		}

		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n",
			i+1, statusIcon, ws.ThreadID, platform))
		sb.WriteString(fmt.Sprintf("   Container: %s\n\n", truncateID(ws.ContainerID, 12)))
	}

	return sb.String()
}
