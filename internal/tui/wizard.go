package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nestbox-eng/nestbox-ctl/internal/config"
)

// ProvideOptions holds the values collected by the provide wizard.
type ProvideOptions struct {
	ThreadID      string
	Image         string
	Platform      string
	EnableDinD    bool
	InitialScript string
}

// wizardStep identifies the current step.
type wizardStep int

const (
	stepThread wizardStep = iota
	stepImage
	stepAdvanced
	stepConfirm
)

// advancedField identifies a field in the advanced step.
type advancedField int

const (
	advPlatform advancedField = iota
	advDinD
	advScript
	advFieldCount
)

// wizardModel drives the multi-step provide wizard.
type wizardModel struct {
	step         wizardStep
	defaultImage string

	// Step 1: thread id
	threadInput textinput.Model

	// Step 2: image
	imageInput textinput.Model

	// Step 3: advanced
	advCursor     advancedField
	enableDinD    bool
	platformInput textinput.Model
	scriptInput   textinput.Model

	// Collected values
	selectedThread string
	selectedImage  string

	width  int
	height int
}

// wizardStyles
var (
	wizardTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginBottom(1)

	wizardStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wizardActiveStepStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	wizardLabelStyle = lipgloss.NewStyle().
				Bold(true).
				MarginBottom(1)

	wizardValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	wizardDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func newWizardModel(defaultImage string) wizardModel {
	ti := textinput.New()
	ti.Placeholder = "thread-id"
	ti.Focus()
	ti.CharLimit = 63
	ti.Width = 40

	ii := textinput.New()
	ii.Placeholder = defaultImage
	ii.CharLimit = 256
	ii.Width = 60

	pi := textinput.New()
	pi.Placeholder = "linux/amd64"
	pi.CharLimit = 64
	pi.Width = 40

	si := textinput.New()
	si.Placeholder = "nix develop --command true"
	si.CharLimit = 1024
	si.Width = 60

	return wizardModel{
		step:          stepThread,
		defaultImage:  defaultImage,
		threadInput:   ti,
		imageInput:    ii,
		platformInput: pi,
		scriptInput:   si,
	}
}

func (w *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes a message and returns (done, provideOptions, cmd).
// done=true with non-nil opts means wizard completed successfully.
// done=true with nil opts means wizard was cancelled.
func (w *wizardModel) Update(msg tea.Msg) (bool, *ProvideOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return true, nil, nil
		case tea.KeyEsc:
			return w.handleBack()
		}
	}

	switch w.step {
	case stepThread:
		return w.updateThread(msg)
	case stepImage:
		return w.updateImage(msg)
	case stepAdvanced:
		return w.updateAdvanced(msg)
	case stepConfirm:
		return w.updateConfirm(msg)
	}

	return false, nil, nil
}

func (w *wizardModel) handleBack() (bool, *ProvideOptions, tea.Cmd) {
	switch w.step {
	case stepThread:
		// Esc at first step cancels wizard
		return true, nil, nil
	case stepImage:
		w.step = stepThread
		w.imageInput.Blur()
		w.threadInput.Focus()
		return false, nil, textinput.Blink
	case stepAdvanced:
		w.step = stepImage
		w.blurAllAdvTextInputs()
		w.imageInput.Focus()
		return false, nil, textinput.Blink
	case stepConfirm:
		w.step = stepImage
		w.imageInput.Focus()
		return false, nil, textinput.Blink
	}
	return false, nil, nil
}

func (w *wizardModel) updateThread(msg tea.Msg) (bool, *ProvideOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		thread := strings.TrimSpace(w.threadInput.Value())
		if thread == "" {
			return false, nil, nil
		}
		if err := config.ValidateThreadID(thread); err != nil {
			return false, nil, nil
		}
		w.selectedThread = thread
		w.step = stepImage
		w.threadInput.Blur()
		w.imageInput.Focus()
		return false, nil, textinput.Blink
	}

	var cmd tea.Cmd
	w.threadInput, cmd = w.threadInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateImage(msg tea.Msg) (bool, *ProvideOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			image := strings.TrimSpace(w.imageInput.Value())
			if image == "" {
				image = w.defaultImage
			}
			w.selectedImage = image
			w.step = stepConfirm
			w.imageInput.Blur()
			return false, nil, nil
		case tea.KeyCtrlA:
			image := strings.TrimSpace(w.imageInput.Value())
			if image == "" {
				image = w.defaultImage
			}
			w.selectedImage = image
			w.step = stepAdvanced
			w.imageInput.Blur()
			return false, nil, w.focusCurrentTextField()
		}
	}

	var cmd tea.Cmd
	w.imageInput, cmd = w.imageInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) isTextInputField() bool {
	return w.advCursor == advPlatform || w.advCursor == advScript
}

func (w *wizardModel) activeTextInput() *textinput.Model {
	switch w.advCursor {
	case advPlatform:
		return &w.platformInput
	case advScript:
		return &w.scriptInput
	}
	return nil
}

func (w *wizardModel) blurAllAdvTextInputs() {
	w.platformInput.Blur()
	w.scriptInput.Blur()
}

func (w *wizardModel) focusCurrentTextField() tea.Cmd {
	w.blurAllAdvTextInputs()
	if ti := w.activeTextInput(); ti != nil {
		ti.Focus()
		return textinput.Blink
	}
	return nil
}

func (w *wizardModel) updateAdvanced(msg tea.Msg) (bool, *ProvideOptions, tea.Cmd) {
	// If we're on a text input field, forward keystrokes to it
	if w.isTextInputField() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.Type {
			case tea.KeyEnter:
				w.blurAllAdvTextInputs()
				w.step = stepConfirm
				return false, nil, nil
			case tea.KeyUp:
				w.blurAllAdvTextInputs()
				w.advCursor = (w.advCursor - 1 + advFieldCount) % advFieldCount
				return false, nil, w.focusCurrentTextField()
			case tea.KeyDown:
				w.blurAllAdvTextInputs()
				w.advCursor = (w.advCursor + 1) % advFieldCount
				return false, nil, w.focusCurrentTextField()
			case tea.KeyTab:
				w.blurAllAdvTextInputs()
				w.advCursor = (w.advCursor + 1) % advFieldCount
				return false, nil, w.focusCurrentTextField()
			}
		}
		// Forward to text input
		if ti := w.activeTextInput(); ti != nil {
			var cmd tea.Cmd
			*ti, cmd = ti.Update(msg)
			return false, nil, cmd
		}
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			w.step = stepConfirm
			return false, nil, nil
		case "j", "down":
			w.advCursor = (w.advCursor + 1) % advFieldCount
			return false, nil, w.focusCurrentTextField()
		case "k", "up":
			w.advCursor = (w.advCursor - 1 + advFieldCount) % advFieldCount
			return false, nil, w.focusCurrentTextField()
		case "tab":
			w.advCursor = (w.advCursor + 1) % advFieldCount
			return false, nil, w.focusCurrentTextField()
		case " ":
			if w.advCursor == advDinD {
				w.enableDinD = !w.enableDinD
			}
			return false, nil, nil
		}
	}
	return false, nil, nil
}

func (w *wizardModel) updateConfirm(msg tea.Msg) (bool, *ProvideOptions, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "y":
			return true, &ProvideOptions{
				ThreadID:      w.selectedThread,
				Image:         w.selectedImage,
				Platform:      strings.TrimSpace(w.platformInput.Value()),
				EnableDinD:    w.enableDinD,
				InitialScript: strings.TrimSpace(w.scriptInput.Value()),
			}, nil
		case "n":
			// Restart wizard
			w.step = stepThread
			w.threadInput.SetValue("")
			w.threadInput.Focus()
			w.imageInput.SetValue("")
			w.selectedThread = ""
			w.selectedImage = ""
			w.enableDinD = false
			w.platformInput.SetValue("")
			w.scriptInput.SetValue("")
			return false, nil, textinput.Blink
		}
	}
	return false, nil, nil
}

func (w *wizardModel) View() string {
	var b strings.Builder

	b.WriteString(wizardTitleStyle.Render("Provide Workspace"))
	b.WriteString("\n")
	b.WriteString(w.progressBar())
	b.WriteString("\n\n")

	switch w.step {
	case stepThread:
		b.WriteString(wizardLabelStyle.Render("Thread id:"))
		b.WriteString("\n")
		b.WriteString(w.threadInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Lowercase letters, digits, hyphens, underscores."))
	case stepImage:
		b.WriteString(wizardLabelStyle.Render("Image:"))
		b.WriteString("\n")
		b.WriteString(w.imageInput.View())
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Enter to confirm, Ctrl+A for advanced options."))
	case stepAdvanced:
		b.WriteString(wizardLabelStyle.Render("Advanced options:"))
		b.WriteString("\n\n")
		b.WriteString(w.renderTextInput(advPlatform, "Platform", "os/arch[/variant] constraint for the workspace", &w.platformInput))
		b.WriteString("\n")
		b.WriteString(w.renderToggle(advDinD, "Docker-in-Docker", "Attach a DinD sidecar sharing the workspace network"))
		b.WriteString("\n")
		b.WriteString(w.renderTextInput(advScript, "Initial script", "Runs once inside the new workspace via /bin/sh -lc", &w.scriptInput))
		b.WriteString("\n\n")
		b.WriteString(wizardDimStyle.Render("Space/type to edit, Enter to continue, Esc to go back."))
	case stepConfirm:
		b.WriteString(wizardLabelStyle.Render("Confirm:"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  Thread:   %s\n", wizardValueStyle.Render(w.selectedThread)))
		b.WriteString(fmt.Sprintf("  Image:    %s\n", wizardValueStyle.Render(w.selectedImage)))
		if v := strings.TrimSpace(w.platformInput.Value()); v != "" {
			b.WriteString(fmt.Sprintf("  Platform: %s\n", wizardValueStyle.Render(v)))
		}
		if w.enableDinD {
			b.WriteString(fmt.Sprintf("  DinD:     %s\n", wizardValueStyle.Render("yes")))
		}
		if v := strings.TrimSpace(w.scriptInput.Value()); v != "" {
			b.WriteString(fmt.Sprintf("  Script:   %s\n", wizardValueStyle.Render(v)))
		}
		b.WriteString("\n")
		b.WriteString(wizardDimStyle.Render("Enter to provide, n to restart, Esc to go back."))
	}

	return b.String()
}

func (w *wizardModel) progressBar() string {
	steps := []struct {
		num  int
		name string
	}{
		{1, "Thread"},
		{2, "Image"},
		{3, "Confirm"},
	}

	var parts []string
	for _, s := range steps {
		label := fmt.Sprintf("%d. %s", s.num, s.name)
		currentStep := int(w.step) + 1
		// Map stepAdvanced to stepImage for progress display
		if w.step == stepAdvanced {
			currentStep = int(stepImage) + 1
		}
		if w.step == stepConfirm {
			currentStep = 3
		}
		if s.num == currentStep {
			parts = append(parts, wizardActiveStepStyle.Render(label))
		} else {
			parts = append(parts, wizardStepStyle.Render(label))
		}
	}

	return strings.Join(parts, wizardDimStyle.Render(" > "))
}

func (w *wizardModel) renderToggle(field advancedField, name, desc string) string {
	cursor := " "
	if w.advCursor == field {
		cursor = ">"
	}

	checked := " "
	if field == advDinD && w.enableDinD {
		checked = "x"
	}

	line := fmt.Sprintf("  %s [%s] %s", cursor, checked, name)
	if w.advCursor == field {
		return selectedStyle.Render(line) + "\n" + wizardDimStyle.Render("      "+desc)
	}
	return line + "\n" + wizardDimStyle.Render("      "+desc)
}

func (w *wizardModel) renderTextInput(field advancedField, name, desc string, ti *textinput.Model) string {
	cursor := " "
	if w.advCursor == field {
		cursor = ">"
	}

	val := strings.TrimSpace(ti.Value())
	if w.advCursor == field {
		// Show active text input
		line := fmt.Sprintf("  %s %s: %s", cursor, name, ti.View())
		return selectedStyle.Render(line) + "\n" + wizardDimStyle.Render("      "+desc)
	}
	if val == "" {
		line := fmt.Sprintf("  %s %s: (not set)", cursor, name)
		return line + "\n" + wizardDimStyle.Render("      "+desc)
	}
	line := fmt.Sprintf("  %s %s: %s", cursor, name, val)
	return line + "\n" + wizardDimStyle.Render("      "+desc)
}

// wizardRunner adapts wizardModel to the tea.Model interface.
type wizardRunner struct {
	model wizardModel
	opts  *ProvideOptions
	done  bool
}

func (r wizardRunner) Init() tea.Cmd {
	return r.model.Init()
}

func (r wizardRunner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		r.model.width = size.Width
		r.model.height = size.Height
		return r, nil
	}

	done, opts, cmd := r.model.Update(msg)
	if done {
		r.done = true
		r.opts = opts
		return r, tea.Quit
	}
	return r, cmd
}

func (r wizardRunner) View() string {
	if r.done {
		return ""
	}
	return r.model.View()
}

// RunWizard runs the interactive provide wizard. A nil result with a nil
// error means the user cancelled.
func RunWizard(defaultImage string) (*ProvideOptions, error) {
	r := wizardRunner{model: newWizardModel(defaultImage)}
	p := tea.NewProgram(r, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(wizardRunner).opts, nil
}
