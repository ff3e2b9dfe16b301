package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name string
		ws   *Workspace
		want string
	}{
		{
			name: "uses platform when set",
			ws:   &Workspace{ThreadID: "t1", Platform: "linux/amd64"},
			want: "linux/amd64",
		},
		{
			name: "unconstrained groups under any",
			ws:   &Workspace{ThreadID: "t2"},
			want: "any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := groupKey(tt.ws)
			if got != tt.want {
				t.Errorf("groupKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildGroupedItems(t *testing.T) {
	t.Run("empty workspaces", func(t *testing.T) {
		items := buildGroupedItems(nil)
		if items != nil {
			t.Errorf("expected nil, got %d items", len(items))
		}
	})

	t.Run("single group", func(t *testing.T) {
		workspaces := []*Workspace{
			{ThreadID: "beta", Platform: "linux/amd64"},
			{ThreadID: "alpha", Platform: "linux/amd64"},
		}

		items := buildGroupedItems(workspaces)
		if len(items) != 3 {
			t.Fatalf("expected 1 header + 2 workspaces, got %d items", len(items))
		}
		header, ok := items[0].(headerItem)
		if !ok {
			t.Fatal("first item should be a header")
		}
		if header.label != "linux/amd64" {
			t.Errorf("header label = %q", header.label)
		}
		// Workspaces sort by thread id within a group
		first := items[1].(workspaceItem)
		if first.ws.ThreadID != "alpha" {
			t.Errorf("first workspace = %q, want alpha", first.ws.ThreadID)
		}
	})

	t.Run("multiple groups sorted", func(t *testing.T) {
		workspaces := []*Workspace{
			{ThreadID: "t1", Platform: "linux/arm64"},
			{ThreadID: "t2", Platform: "linux/amd64"},
			{ThreadID: "t3"},
		}

		items := buildGroupedItems(workspaces)
		if headerCount(items) != 3 {
			t.Fatalf("expected 3 headers, got %d", headerCount(items))
		}

		var labels []string
		for _, item := range items {
			if h, ok := item.(headerItem); ok {
				labels = append(labels, h.label)
			}
		}
		want := []string{"any", "linux/amd64", "linux/arm64"}
		for i := range want {
			if labels[i] != want[i] {
				t.Errorf("header[%d] = %q, want %q", i, labels[i], want[i])
			}
		}
	})
}

func TestHeaderItemMethods(t *testing.T) {
	h := headerItem{label: "linux/amd64"}

	if h.Title() != "linux/amd64" {
		t.Errorf("Title() = %q", h.Title())
	}
	if h.Description() != "" {
		t.Errorf("Description() = %q, want empty", h.Description())
	}
	if h.FilterValue() != "" {
		t.Errorf("FilterValue() = %q, want empty so headers never match filters", h.FilterValue())
	}
}

func TestNewGroupedPickerSkipsLeadingHeader(t *testing.T) {
	workspaces := []*Workspace{
		{ThreadID: "t1", Platform: "linux/amd64"},
	}

	m := NewGroupedPicker(workspaces)
	if isHeaderSelected(&m.list) {
		t.Error("grouped picker should not start on a header row")
	}
	if item, ok := m.list.SelectedItem().(workspaceItem); !ok || item.ws.ThreadID != "t1" {
		t.Error("grouped picker should start on the first workspace")
	}
}

func TestSkipHeaders(t *testing.T) {
	items := []list.Item{
		headerItem{label: "group-a"},
		workspaceItem{ws: &Workspace{ThreadID: "t1"}},
		headerItem{label: "group-b"},
		workspaceItem{ws: &Workspace{ThreadID: "t2"}},
	}

	t.Run("down from header selects next workspace", func(t *testing.T) {
		l := list.New(items, newGroupedDelegate(), 80, 20)
		l.Select(2)
		skipHeaders(&l, 1)
		if l.Index() != 3 {
			t.Errorf("Index = %d, want 3", l.Index())
		}
	})

	t.Run("up from header falls back when blocked", func(t *testing.T) {
		l := list.New(items, newGroupedDelegate(), 80, 20)
		l.Select(0)
		skipHeaders(&l, -1)
		if l.Index() != 1 {
			t.Errorf("Index = %d, want 1", l.Index())
		}
	})

	t.Run("non-header selection is untouched", func(t *testing.T) {
		l := list.New(items, newGroupedDelegate(), 80, 20)
		l.Select(1)
		skipHeaders(&l, 1)
		if l.Index() != 1 {
			t.Errorf("Index = %d, want 1", l.Index())
		}
	})
}

func TestNavigationDirection(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, -1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, -1},
		{tea.KeyMsg{Type: tea.KeyDown}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if got := navigationDirection(tt.msg); got != tt.want {
				t.Errorf("navigationDirection(%q) = %d, want %d", tt.msg.String(), got, tt.want)
			}
		})
	}
}
