package tui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the picker is closed without a choice.
var ErrCanceled = errors.New("snippet selection canceled")

// Run starts the picker and returns the chosen snippet with its values.
func Run(src SnippetSource, query, lang string) (*Choice, error) {
	model := NewModel(src, query, lang)

	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := finalModel.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	if m.Choice == nil {
		return nil, ErrCanceled
	}

	return m.Choice, nil
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
