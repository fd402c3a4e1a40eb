package tui

// Key binding constants for TUI navigation and interaction
const (
	KeyEnter    = "enter"
	KeyEsc      = "esc"
	KeyCtrlC    = "ctrl+c"
	KeyCtrlS    = "ctrl+s"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
)

// UI element constants
const (
	AppTitle        = "tidysnips"
	CursorIndicator = "> "
	NoCursor        = "  "
	OptionalSuffix  = " (optional)"
	NoResultsText   = "No snippets match."
	MissingText     = "Fill in the required variables first."
)

// Scrolling behavior constants
const (
	// MaxVisibleResults caps how many search results are drawn at once
	MaxVisibleResults = 8

	// ScrollOffsetMargin is the minimum number of rows to keep between cursor and viewport edges
	ScrollOffsetMargin = 1
)
