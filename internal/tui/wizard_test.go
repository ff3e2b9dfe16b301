package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestWizardStepTransitions(t *testing.T) {
	t.Run("thread to image", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		if w.step != stepThread {
			t.Fatalf("initial step = %v, want stepThread", w.step)
		}

		w.threadInput.SetValue("review-pr-42")

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if done {
			t.Error("should not be done after thread step")
		}
		if opts != nil {
			t.Error("opts should be nil")
		}
		if w.step != stepImage {
			t.Errorf("step = %v, want stepImage", w.step)
		}
		if w.selectedThread != "review-pr-42" {
			t.Errorf("selectedThread = %q", w.selectedThread)
		}
	})

	t.Run("empty thread rejected", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.threadInput.SetValue("")

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if done {
			t.Error("should not be done")
		}
		if w.step != stepThread {
			t.Error("should stay on stepThread with empty input")
		}
	})

	t.Run("invalid thread rejected", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.threadInput.SetValue("Bad Thread!")

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if done {
			t.Error("should not be done")
		}
		if w.step != stepThread {
			t.Error("should stay on stepThread with invalid id")
		}
	})

	t.Run("image to confirm", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepImage
		w.selectedThread = "t1"
		w.imageInput.SetValue("ghcr.io/nestbox/workspace:latest")

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if done {
			t.Error("should not be done")
		}
		if opts != nil {
			t.Error("opts should be nil")
		}
		if w.step != stepConfirm {
			t.Errorf("step = %v, want stepConfirm", w.step)
		}
	})

	t.Run("empty image falls back to default", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepImage
		w.selectedThread = "t1"

		w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if w.selectedImage != "nixos/nix" {
			t.Errorf("selectedImage = %q, want default", w.selectedImage)
		}
	})

	t.Run("image to advanced with ctrl+a", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepImage
		w.selectedThread = "t1"

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
		if done {
			t.Error("should not be done")
		}
		if w.step != stepAdvanced {
			t.Errorf("step = %v, want stepAdvanced", w.step)
		}
	})
}

func TestWizardConfirm(t *testing.T) {
	t.Run("enter completes with options", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepConfirm
		w.selectedThread = "t1"
		w.selectedImage = "nixos/nix"
		w.platformInput.SetValue("linux/arm64")
		w.scriptInput.SetValue("echo hi")
		w.enableDinD = true

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if !done {
			t.Fatal("should be done")
		}
		if opts == nil {
			t.Fatal("opts should not be nil")
		}
		if opts.ThreadID != "t1" {
			t.Errorf("ThreadID = %q", opts.ThreadID)
		}
		if opts.Image != "nixos/nix" {
			t.Errorf("Image = %q", opts.Image)
		}
		if opts.Platform != "linux/arm64" {
			t.Errorf("Platform = %q", opts.Platform)
		}
		if !opts.EnableDinD {
			t.Error("EnableDinD should be true")
		}
		if opts.InitialScript != "echo hi" {
			t.Errorf("InitialScript = %q", opts.InitialScript)
		}
	})

	t.Run("n restarts wizard", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepConfirm
		w.selectedThread = "t1"
		w.selectedImage = "custom"
		w.enableDinD = true

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
		if done {
			t.Error("should not be done after restart")
		}
		if opts != nil {
			t.Error("opts should be nil")
		}
		if w.step != stepThread {
			t.Errorf("step = %v, want stepThread", w.step)
		}
		if w.selectedThread != "" || w.selectedImage != "" || w.enableDinD {
			t.Error("restart should clear collected values")
		}
	})
}

func TestWizardCancel(t *testing.T) {
	t.Run("ctrl+c cancels from any step", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepConfirm

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if !done {
			t.Error("ctrl+c should cancel")
		}
		if opts != nil {
			t.Error("cancelled wizard should return nil options")
		}
	})

	t.Run("esc at first step cancels", func(t *testing.T) {
		w := newWizardModel("nixos/nix")

		done, opts, _ := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if !done {
			t.Error("esc at first step should cancel")
		}
		if opts != nil {
			t.Error("cancelled wizard should return nil options")
		}
	})

	t.Run("esc at image step goes back", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepImage

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if done {
			t.Error("esc at image step should not cancel")
		}
		if w.step != stepThread {
			t.Errorf("step = %v, want stepThread", w.step)
		}
	})
}

func TestWizardAdvanced(t *testing.T) {
	t.Run("space toggles dind", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepAdvanced
		w.advCursor = advDinD

		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
		if !w.enableDinD {
			t.Error("space should enable dind")
		}

		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
		if w.enableDinD {
			t.Error("space should toggle dind off again")
		}
	})

	t.Run("navigation wraps", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepAdvanced
		w.advCursor = advPlatform

		w.Update(tea.KeyMsg{Type: tea.KeyUp})
		if w.advCursor != advScript {
			t.Errorf("advCursor = %v, want advScript after wrap", w.advCursor)
		}
	})

	t.Run("enter on toggle advances to confirm", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepAdvanced
		w.advCursor = advDinD

		done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if done {
			t.Error("should not be done")
		}
		if w.step != stepConfirm {
			t.Errorf("step = %v, want stepConfirm", w.step)
		}
	})

	t.Run("typing fills platform input", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepAdvanced
		w.advCursor = advPlatform
		w.focusCurrentTextField()

		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
		if w.platformInput.Value() != "l" {
			t.Errorf("platformInput = %q, want %q", w.platformInput.Value(), "l")
		}
	})
}

func TestWizardView(t *testing.T) {
	t.Run("thread step", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		view := w.View()

		if !strings.Contains(view, "Provide Workspace") {
			t.Error("view should contain title")
		}
		if !strings.Contains(view, "Thread id:") {
			t.Error("view should contain thread prompt")
		}
	})

	t.Run("confirm step shows collected values", func(t *testing.T) {
		w := newWizardModel("nixos/nix")
		w.step = stepConfirm
		w.selectedThread = "t1"
		w.selectedImage = "custom-image"
		w.enableDinD = true

		view := w.View()
		if !strings.Contains(view, "t1") {
			t.Error("view should contain thread id")
		}
		if !strings.Contains(view, "custom-image") {
			t.Error("view should contain image")
		}
		if !strings.Contains(view, "DinD") {
			t.Error("view should mention dind")
		}
	})
}
