package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTextField_NewTextField(t *testing.T) {
	tf := NewTextField("name", "test value", true)

	if tf.Label != "name" {
		t.Errorf("Label = %s, want name", tf.Label)
	}
	if !tf.Optional {
		t.Error("Optional = false, want true")
	}
	if tf.Value() != "test value" {
		t.Errorf("Value() = %s, want test value", tf.Value())
	}
	if tf.focused {
		t.Error("New field should not be focused")
	}
}

func TestTextField_FocusBlur(t *testing.T) {
	tf := NewTextField("name", "", false)

	tf.Focus()
	if !tf.IsFocused() {
		t.Error("IsFocused() = false after Focus(), want true")
	}

	tf.Blur()
	if tf.IsFocused() {
		t.Error("IsFocused() = true after Blur(), want false")
	}
}

func TestTextField_Missing(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		optional bool
		want     bool
	}{
		{"required_empty", "", false, true},
		{"required_filled", "x", false, false},
		{"optional_empty", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := NewTextField("v", tt.value, tt.optional)
			if got := tf.Missing(); got != tt.want {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextField_UpdateWhenFocused(t *testing.T) {
	tf := NewTextField("name", "ab", false)

	// Unfocused fields ignore input
	tf.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if tf.Value() != "ab" {
		t.Errorf("Value() = %q after unfocused update, want ab", tf.Value())
	}

	tf.Focus()
	tf.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if tf.Value() != "abc" {
		t.Errorf("Value() = %q, want abc", tf.Value())
	}

	tf.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if tf.Value() != "ab" {
		t.Errorf("Value() = %q after backspace, want ab", tf.Value())
	}
}

func TestTextField_DisplayValue(t *testing.T) {
	tf := NewTextField("name", "héllo", false)

	if got := tf.DisplayValue(); got != "héllo" {
		t.Errorf("DisplayValue() unfocused = %q", got)
	}

	tf.Focus()
	if got := tf.DisplayValue(); got != "héllo"+CursorGlyph {
		t.Errorf("DisplayValue() focused = %q", got)
	}

	tf.SetCursor(2)
	if got := tf.DisplayValue(); got != "hé"+CursorGlyph+"llo" {
		t.Errorf("DisplayValue() at 2 = %q", got)
	}
}
