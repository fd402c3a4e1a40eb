package tui

import "github.com/charmbracelet/bubbles/key"

// SharedKeyMap defines keybindings available on all screens.
type SharedKeyMap struct {
	ForceQuit key.Binding
}

// SharedKeys are available on all screens.
var SharedKeys = SharedKeyMap{
	ForceQuit: key.NewBinding(
		key.WithKeys(KeyCtrlC),
		key.WithHelp("ctrl+c", "force quit"),
	),
}

// SearchKeyMap defines keybindings for the snippet search screen. Letters
// always go to the query, so movement uses arrows and ctrl chords.
type SearchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// SearchKeys are the keybindings for the search screen.
var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys(KeyUp, "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys(KeyDown, "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys(KeyEnter),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys(KeyEsc),
		key.WithHelp("esc", "quit"),
	),
}

// FormKeyMap defines keybindings for the variable form.
type FormKeyMap struct {
	TabNext key.Binding
	TabPrev key.Binding
	Submit  key.Binding
	Back    key.Binding
}

// FormKeys are the keybindings for the variable form.
var FormKeys = FormKeyMap{
	TabNext: key.NewBinding(
		key.WithKeys(KeyTab, KeyDown),
		key.WithHelp("tab", "next"),
	),
	TabPrev: key.NewBinding(
		key.WithKeys(KeyShiftTab, KeyUp),
		key.WithHelp("shift+tab", "prev"),
	),
	Submit: key.NewBinding(
		key.WithKeys(KeyEnter, KeyCtrlS),
		key.WithHelp("enter", "insert"),
	),
	Back: key.NewBinding(
		key.WithKeys(KeyEsc),
		key.WithHelp("esc", "back"),
	),
}
