// Package tui is the interactive skeleton browser: pick an entry, then
// step through its rendered instances and copy one to the clipboard.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tturner/yangfuzz/internal/message"
	"github.com/tturner/yangfuzz/internal/report"
)

const (
	DefaultWidth  = 110
	DefaultHeight = 32
	listWidth     = 36
)

// RenderFunc renders count instances of an entry, the first from initial
// values.
type RenderFunc func(e *message.Entry, count int) ([]string, error)

// Model is the browser state.
type Model struct {
	skeleton *message.Skeleton
	render   RenderFunc
	window   int
	styles   Styles
	width    int
	height   int

	cursor       int
	instance     int
	showTemplate bool
	cache        map[int][]string

	status string
	err    error
	write  func(string) error
}

// NewModel browses sk. window bounds the instances rendered per entry.
func NewModel(sk *message.Skeleton, render RenderFunc, window int) *Model {
	if window < 1 {
		window = 1
	}
	return &Model{
		skeleton: sk,
		render:   render,
		window:   window,
		styles:   DefaultStyles,
		width:    DefaultWidth,
		height:   DefaultHeight,
		cache:    make(map[int][]string),
		write:    systemClipboard,
	}
}

// Run starts the browser on the terminal.
func Run(sk *message.Skeleton, render RenderFunc, window int) error {
	program := tea.NewProgram(NewModel(sk, render, window), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy: %w", msg.err)
			m.status = ""
		} else {
			m.err = nil
			m.status = fmt.Sprintf("Copied %s", humanize.Bytes(uint64(msg.size)))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.instance = 0
		}
	case "down", "j":
		if m.cursor < len(m.skeleton.Entries)-1 {
			m.cursor++
			m.instance = 0
		}

	case "right", "l", "n":
		insts := m.instances()
		if m.instance < len(insts)-1 {
			m.instance++
		} else if len(insts) > 0 {
			m.status = "No further instances"
		}
	case "left", "h", "p":
		if m.instance > 0 {
			m.instance--
		}
	case "0", "home":
		m.instance = 0

	case "t":
		m.showTemplate = !m.showTemplate

	case "c":
		text, ok := m.current()
		if !ok {
			return m, nil
		}
		return m, copyCmd(m.write, text)
	}
	return m, nil
}

// instances renders the selected entry once and caches it.
func (m *Model) instances() []string {
	if len(m.skeleton.Entries) == 0 {
		return nil
	}
	if insts, ok := m.cache[m.cursor]; ok {
		return insts
	}
	e := &m.skeleton.Entries[m.cursor]
	insts, err := m.render(e, m.window)
	if err != nil {
		m.err = fmt.Errorf("render %s: %w", e.Path, err)
		return nil
	}
	m.err = nil
	m.cache[m.cursor] = insts
	return insts
}

// current returns the text shown in the detail panel.
func (m *Model) current() (string, bool) {
	if len(m.skeleton.Entries) == 0 {
		return "", false
	}
	if m.showTemplate {
		return m.skeleton.Entries[m.cursor].Template(), true
	}
	insts := m.instances()
	if m.instance >= len(insts) {
		return "", false
	}
	return insts[m.instance], true
}

// View implements tea.Model.
func (m *Model) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("yangfuzz browse: "+m.skeleton.Module) + "  " +
		s.Dim.Render(m.skeleton.Namespace) + "\n")

	if len(m.skeleton.Entries) == 0 {
		b.WriteString(s.Warning.Render("No entries; check the filter and read-only nodes") + "\n")
		b.WriteString(s.KeyHint.Render("q quit"))
		return b.String()
	}

	bodyHeight := m.height - 4
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	detailWidth := m.width - listWidth - 4
	if detailWidth < 20 {
		detailWidth = 20
	}
	list := s.Panel.Width(listWidth).Height(bodyHeight).Render(m.renderList(bodyHeight))
	detail := s.Panel.Width(detailWidth).Height(bodyHeight).Render(m.renderDetail(detailWidth))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail) + "\n")

	switch {
	case m.err != nil:
		b.WriteString(s.Error.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(s.Success.Render(m.status))
	}
	b.WriteString("\n" + m.renderFooter())
	return b.String()
}

func (m *Model) renderList(height int) string {
	s := m.styles
	var lines []string
	lines = append(lines, s.PanelTitle.Render(fmt.Sprintf("Entries (%d)", len(m.skeleton.Entries))))

	// Keep the cursor visible.
	rows := height - 1
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.skeleton.Entries) && i < start+rows; i++ {
		e := &m.skeleton.Entries[i]
		line := fmt.Sprintf("%s (%d)", e.Name, len(e.Slots()))
		if i == m.cursor {
			lines = append(lines, s.Selected.Render("> "+line))
		} else {
			lines = append(lines, s.Base.Render("  "+line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDetail(width int) string {
	s := m.styles
	e := &m.skeleton.Entries[m.cursor]
	var lines []string
	lines = append(lines, s.Path.Render(e.Path))

	if m.showTemplate {
		lines = append(lines, s.PanelTitle.Render("Template"))
		for _, sl := range e.Slots() {
			lines = append(lines, s.Slot.Render(fmt.Sprintf("  %s: %s", sl.Path, report.Describe(sl.Generator))))
		}
	} else {
		insts := m.instances()
		label := "Initial instance"
		if m.instance > 0 {
			label = fmt.Sprintf("Instance %d of %d", m.instance, len(insts)-1)
		}
		lines = append(lines, s.PanelTitle.Render(label))
	}
	if text, ok := m.current(); ok {
		lines = append(lines, s.Base.Width(width-2).Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	s := m.styles
	keys := []struct{ key, hint string }{
		{"↑/↓", "entry"},
		{"←/→", "instance"},
		{"0", "initial"},
		{"t", "template"},
		{"c", "copy"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = s.KeyBinding.Render(k.key) + " " + s.KeyHint.Render(k.hint)
	}
	return s.Footer.Render(strings.Join(parts, "  "))
}
