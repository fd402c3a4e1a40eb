// Package components holds reusable TUI widgets.
package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CursorGlyph marks the caret inside the focused field.
const CursorGlyph = "│"

// TextField is a labelled single-line input for one snippet variable.
// A focused field is always editable.
type TextField struct {
	Label    string
	Optional bool
	input    textinput.Model
	focused  bool
}

// NewTextField creates a new TextField
func NewTextField(label, value string, optional bool) TextField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.SetValue(value)
	ti.CharLimit = 256
	ti.Width = 40

	return TextField{
		Label:    label,
		Optional: optional,
		input:    ti,
	}
}

// Focus starts editing the field with the caret at the end of the value.
func (t *TextField) Focus() {
	t.focused = true
	t.input.Focus()
	t.input.CursorEnd()
}

// Blur removes focus from the field
func (t *TextField) Blur() {
	t.focused = false
	t.input.Blur()
}

// IsFocused returns whether the field is focused
func (t *TextField) IsFocused() bool {
	return t.focused
}

// Value returns the current field value
func (t *TextField) Value() string {
	return t.input.Value()
}

// Filled reports whether the field has a value.
func (t *TextField) Filled() bool {
	return t.input.Value() != ""
}

// Missing reports whether the field is required and empty.
func (t *TextField) Missing() bool {
	return !t.Optional && !t.Filled()
}

// Update handles bubble tea messages
func (t *TextField) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

// DisplayValue returns the value with CursorGlyph at the caret when focused.
func (t *TextField) DisplayValue() string {
	v := []rune(t.input.Value())
	if !t.focused {
		return string(v)
	}
	pos := min(max(t.input.Position(), 0), len(v))
	return string(v[:pos]) + CursorGlyph + string(v[pos:])
}

// SetCursor sets the cursor position
func (t *TextField) SetCursor(pos int) {
	t.input.SetCursor(pos)
}
