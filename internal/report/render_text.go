package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Styles used by the text renderer. Plain renders without ANSI sequences.
type Styles struct {
	Title lipgloss.Style
	Entry lipgloss.Style
	Path  lipgloss.Style
	Dim   lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
		Entry: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ece6a")),
		Path:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}
}

// PlainStyles returns styles that leave text unchanged.
func PlainStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle(),
		Entry: lipgloss.NewStyle(),
		Path:  lipgloss.NewStyle(),
		Dim:   lipgloss.NewStyle(),
	}
}

// WriteText writes a human readable skeleton summary.
func WriteText(w io.Writer, r *SkeletonReport, st Styles) {
	fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Skeleton for %s", r.Module)))
	fmt.Fprintf(w, "  Namespace: %s\n", r.Namespace)
	if r.YangVersion != "" {
		fmt.Fprintf(w, "  YANG version: %s\n", r.YangVersion)
	}
	if len(r.Features) > 0 {
		fmt.Fprintf(w, "  Features: %s\n", strings.Join(r.Features, ", "))
	} else {
		fmt.Fprintln(w, "  Features: none")
	}
	if r.Filter != "" {
		fmt.Fprintf(w, "  Filter: %s\n", r.Filter)
	}
	if r.Seed != nil {
		fmt.Fprintf(w, "  Seed: %d\n", *r.Seed)
	}

	size := 0
	for _, e := range r.Entries {
		size += len(e.Initial)
	}
	fmt.Fprintf(w, "  Entries: %d, slots: %d, initial size: %s\n",
		len(r.Entries), r.SlotCount(), humanize.Bytes(uint64(size)))
	if len(r.Entries) == 0 {
		fmt.Fprintln(w, st.Dim.Render("  (no entries; check the filter and read-only nodes)"))
		return
	}

	for _, e := range r.Entries {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", st.Entry.Render(e.Name), st.Dim.Render(e.Path))
		fmt.Fprintf(w, "  %s\n", e.Template)
		for _, s := range e.Slots {
			fmt.Fprintf(w, "  - %s: %s (initial %q)\n", st.Path.Render(s.Path), s.Generator, s.Initial)
		}
	}
}
