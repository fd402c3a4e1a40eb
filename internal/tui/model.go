// Package tui provides the terminal user interface: a snippet picker with
// incremental search and a form that collects variable values.
package tui

import (
	"fmt"
	"strings"

	"github.com/AntoineGS/tidysnips/internal/manager"
	"github.com/AntoineGS/tidysnips/internal/snippet"
	tmpl "github.com/AntoineGS/tidysnips/internal/template"
	"github.com/AntoineGS/tidysnips/internal/tui/components"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents the current screen
type Screen int

// Screen values
const (
	ScreenSearch Screen = iota
	ScreenForm
)

// SnippetSource is what the picker needs from the manager.
type SnippetSource interface {
	Search(query, lang string) []snippet.Snippet
	Prepare(name string) (*manager.Prepared, error)
}

// Choice is the snippet picked by the user and the values entered for it.
type Choice struct {
	Values map[int]string
	Name   string
}

// Model is the bubbletea model of the picker.
type Model struct {
	source   SnippetSource
	Choice   *Choice
	prepared *manager.Prepared
	err      error
	lang     string
	results  []snippet.Snippet
	fields   []components.TextField
	search   textinput.Model
	Screen   Screen
	cursor   int
	offset   int
	focus    int
	width    int
	height   int
	missing  bool
}

// NewModel creates a picker seeded with query and restricted to lang.
func NewModel(source SnippetSource, query, lang string) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.SetValue(query)
	ti.Focus()
	ti.CursorEnd()

	m := Model{
		source: source,
		lang:   lang,
		search: ti,
		Screen: ScreenSearch,
	}
	m.refreshResults()

	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, SharedKeys.ForceQuit) {
			m.Choice = nil
			return m, tea.Quit
		}
		if m.Screen == ScreenForm {
			return m.updateForm(msg)
		}
		return m.updateSearch(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, SearchKeys.Cancel):
		return m, tea.Quit

	case key.Matches(msg, SearchKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scrollToCursor()
		return m, nil

	case key.Matches(msg, SearchKeys.Down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		m.scrollToCursor()
		return m, nil

	case key.Matches(msg, SearchKeys.Select):
		if len(m.results) == 0 {
			return m, nil
		}
		return m.openForm(m.results[m.cursor].Name)
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refreshResults()
	}
	return m, cmd
}

// refreshResults reruns the search and resets the selection.
func (m *Model) refreshResults() {
	m.results = m.source.Search(m.search.Value(), m.lang)
	m.cursor = 0
	m.offset = 0
	m.err = nil
}

func (m *Model) scrollToCursor() {
	if m.cursor < m.offset+ScrollOffsetMargin {
		m.offset = max(m.cursor-ScrollOffsetMargin, 0)
	}
	if m.cursor >= m.offset+MaxVisibleResults-ScrollOffsetMargin {
		m.offset = m.cursor - MaxVisibleResults + ScrollOffsetMargin + 1
	}
	m.offset = max(min(m.offset, len(m.results)-MaxVisibleResults), 0)
}

func (m Model) openForm(name string) (tea.Model, tea.Cmd) {
	p, err := m.source.Prepare(name)
	if err != nil {
		m.err = err
		return m, nil
	}

	if len(p.Fields) == 0 {
		m.Choice = &Choice{Name: name, Values: map[int]string{}}
		return m, tea.Quit
	}

	m.prepared = p
	m.fields = make([]components.TextField, len(p.Fields))
	for i, f := range p.Fields {
		m.fields[i] = components.NewTextField(f.Name, p.Values[f.Index], f.Optional)
	}
	m.missing = false
	m.Screen = ScreenForm
	m.setFocus(tmpl.NextFocusIndex(-1, tmpl.Forward, p.Fields, m.filled()))

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, FormKeys.Back):
		m.Screen = ScreenSearch
		m.prepared = nil
		m.fields = nil
		return m, nil

	case key.Matches(msg, FormKeys.TabNext):
		m.setFocus(tmpl.NextFocusIndex(m.focus, tmpl.Forward, m.prepared.Fields, m.filled()))
		return m, nil

	case key.Matches(msg, FormKeys.TabPrev):
		m.setFocus(tmpl.NextFocusIndex(m.focus, tmpl.Backward, m.prepared.Fields, m.filled()))
		return m, nil

	case key.Matches(msg, FormKeys.Submit):
		values := m.values()
		if tmpl.HasUnresolved(values, m.prepared.Fields) {
			m.missing = true
			if !m.fields[m.focus].Missing() {
				m.setFocus(tmpl.NextFocusIndex(m.focus, tmpl.Forward, m.prepared.Fields, m.filled()))
			}
			return m, nil
		}
		m.Choice = &Choice{Name: m.prepared.Snippet.Name, Values: values}
		return m, tea.Quit
	}

	cmd := m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	if i < 0 || i >= len(m.fields) {
		return
	}
	m.fields[m.focus].Blur()
	m.focus = i
	m.fields[i].Focus()
}

func (m Model) filled() []bool {
	out := make([]bool, len(m.fields))
	for i := range m.fields {
		out[i] = m.fields[i].Filled()
	}
	return out
}

// values collects the field values by variable index.
func (m Model) values() map[int]string {
	out := make(map[int]string, len(m.fields))
	for i, f := range m.prepared.Fields {
		if v := m.fields[i].Value(); v != "" {
			out[f.Index] = v
		}
	}
	return out
}

// View implements tea.Model
func (m Model) View() string {
	if m.Screen == ScreenForm {
		return m.viewForm()
	}
	return m.viewSearch()
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppTitle) + "\n")
	b.WriteString("Search: " + m.search.Value() + components.CursorGlyph + "\n")
	if m.lang != "" {
		b.WriteString(MutedTextStyle.Render("Language: "+m.lang) + "\n")
	}
	b.WriteString("\n")

	if len(m.results) == 0 {
		b.WriteString(NoCursor + MutedTextStyle.Render(NoResultsText) + "\n")
	}

	end := min(m.offset+MaxVisibleResults, len(m.results))
	visible := m.results[m.offset:end]

	nameWidth := 0
	for _, sn := range visible {
		nameWidth = max(nameWidth, len([]rune(sn.Name)))
	}

	for i, sn := range visible {
		prefix := NoCursor
		name := padRight(sn.Name, nameWidth)
		if m.offset+i == m.cursor {
			prefix = CursorIndicator
			name = SelectedListItemStyle.Render(name)
		}
		b.WriteString(prefix + name + "  " + sourceBadge(sn) + "\n")
	}

	if len(m.results) > MaxVisibleResults {
		b.WriteString(MutedTextStyle.Render(fmt.Sprintf("%s%d/%d", NoCursor, m.cursor+1, len(m.results))) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + ErrorStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelp("↑/↓", "move", "enter", "select", "esc", "quit"))

	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(AppTitle+" › "+m.prepared.Snippet.Name) + "\n\n")

	for i := range m.fields {
		f := &m.fields[i]
		prefix := NoCursor
		if f.IsFocused() {
			prefix = CursorIndicator
		}

		label := f.Label
		if f.Optional {
			label += OptionalSuffix
		}
		switch {
		case m.missing && f.Missing():
			label = MissingLabelStyle.Render(label)
		default:
			label = LabelStyle.Render(label)
		}

		b.WriteString(prefix + label + ": " + f.DisplayValue() + "\n")
	}

	b.WriteString("\nPreview\n")
	preview := tmpl.Preview(m.prepared.Snippet.Template, m.values())
	preview = strings.ReplaceAll(preview, tmpl.SelectedMark, "<selection>")
	for _, line := range strings.Split(preview, "\n") {
		b.WriteString(NoCursor + PreviewStyle.Render(line) + "\n")
	}

	if m.missing {
		b.WriteString("\n" + ErrorStyle.Render(MissingText) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderHelp("tab", "next", "shift+tab", "prev", "enter", "insert", "esc", "back"))

	return b.String()
}

func sourceBadge(sn snippet.Snippet) string {
	badge := "[" + sn.Source.String() + "]"
	switch sn.Source {
	case snippet.SourceUser:
		badge = SourceUserStyle.Render(badge)
	case snippet.SourceGist:
		badge = SourceGistStyle.Render(badge)
	default:
		badge = SourceDirectoryStyle.Render(badge)
	}
	if lang, ok := sn.Lang(); ok {
		badge += " " + MutedTextStyle.Render("("+lang+")")
	}
	return badge
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
