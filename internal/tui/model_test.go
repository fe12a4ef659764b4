package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/primitives"
)

func testSkeleton() *message.Skeleton {
	return &message.Skeleton{
		Module:    "example",
		Namespace: "urn:example",
		Entries: []message.Entry{
			{Name: "cfg", Path: "/cfg", Fragments: []message.Fragment{
				{Literal: "<cfg><name>"},
				{Slot: &message.Slot{Path: "/cfg/name", Generator: primitives.NewStatic("name", "a")}},
				{Literal: "</name></cfg>"},
			}},
			{Name: "state", Path: "/state", Fragments: []message.Fragment{{Literal: "<state/>"}}},
		},
	}
}

func fakeRender(calls *int) RenderFunc {
	return func(e *message.Entry, count int) ([]string, error) {
		*calls++
		out := make([]string, count)
		for i := range out {
			out[i] = fmt.Sprintf("%s#%d", e.Name, i)
		}
		return out, nil
	}
}

func key(r string) tea.KeyMsg {
	switch r {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestModelNavigation(t *testing.T) {
	calls := 0
	m := NewModel(testSkeleton(), fakeRender(&calls), 3)

	if got, _ := m.current(); got != "cfg#0" {
		t.Fatalf("initial = %q", got)
	}
	m.Update(key("right"))
	m.Update(key("right"))
	if got, _ := m.current(); got != "cfg#2" {
		t.Errorf("after two steps = %q", got)
	}
	m.Update(key("right"))
	if m.instance != 2 || m.status != "No further instances" {
		t.Errorf("instance = %d, status = %q", m.instance, m.status)
	}
	m.Update(key("left"))
	if m.instance != 1 {
		t.Errorf("instance after left = %d", m.instance)
	}
	m.Update(key("0"))
	if m.instance != 0 {
		t.Errorf("instance after 0 = %d", m.instance)
	}

	m.Update(key("right"))
	m.Update(key("down"))
	if m.cursor != 1 || m.instance != 0 {
		t.Errorf("cursor = %d, instance = %d", m.cursor, m.instance)
	}
	if got, _ := m.current(); got != "state#0" {
		t.Errorf("second entry = %q", got)
	}
	m.Update(key("down"))
	if m.cursor != 1 {
		t.Errorf("cursor moved past the end: %d", m.cursor)
	}
	m.Update(key("up"))
	m.Update(key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
	m.current()
	if calls != 2 {
		t.Errorf("render calls = %d, want 2 (cached)", calls)
	}
}

func TestModelTemplateToggle(t *testing.T) {
	calls := 0
	m := NewModel(testSkeleton(), fakeRender(&calls), 2)
	m.Update(key("t"))
	got, ok := m.current()
	if !ok || got != "<cfg><name>{{/cfg/name}}</name></cfg>" {
		t.Errorf("template = %q", got)
	}
	if !strings.Contains(m.View(), `/cfg/name: static "a"`) {
		t.Errorf("view does not describe the slot:\n%s", m.View())
	}
}

func TestModelCopy(t *testing.T) {
	calls := 0
	m := NewModel(testSkeleton(), fakeRender(&calls), 2)
	var copied string
	m.write = func(s string) error { copied = s; return nil }

	m.Update(key("right"))
	_, cmd := m.Update(key("c"))
	if cmd == nil {
		t.Fatal("copy returned no command")
	}
	m.Update(cmd())
	if copied != "cfg#1" {
		t.Errorf("copied %q", copied)
	}
	if !strings.HasPrefix(m.status, "Copied") {
		t.Errorf("status = %q", m.status)
	}

	m.write = func(string) error { return errors.New("no clipboard") }
	_, cmd = m.Update(key("c"))
	m.Update(cmd())
	if m.err == nil || !strings.Contains(m.View(), "no clipboard") {
		t.Errorf("copy failure not shown, err = %v", m.err)
	}
}

func TestModelRenderError(t *testing.T) {
	m := NewModel(testSkeleton(), func(*message.Entry, int) ([]string, error) {
		return nil, errors.New("boom")
	}, 2)
	if _, ok := m.current(); ok {
		t.Error("current should fail")
	}
	if !strings.Contains(m.View(), "render /cfg: boom") {
		t.Errorf("view missing error:\n%s", m.View())
	}
}

func TestModelEmptyAndQuit(t *testing.T) {
	m := NewModel(&message.Skeleton{Module: "empty"}, nil, 1)
	if !strings.Contains(m.View(), "No entries") {
		t.Errorf("view = %q", m.View())
	}
	m.Update(key("c"))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelWindowSize(t *testing.T) {
	calls := 0
	m := NewModel(testSkeleton(), fakeRender(&calls), 1)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if m.width != 80 || m.height != 20 {
		t.Errorf("size = %dx%d", m.width, m.height)
	}
	if !strings.Contains(m.View(), "Entries (2)") {
		t.Error("view missing entry list")
	}
}
