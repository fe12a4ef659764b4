package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// clipboardMsg reports the result of a copy.
type clipboardMsg struct {
	size int
	err  error
}

func copyCmd(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{size: len(text), err: write(text)}
	}
}

// systemClipboard writes through the platform clipboard (pbcopy, xclip or
// xsel, or the Windows API).
func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
