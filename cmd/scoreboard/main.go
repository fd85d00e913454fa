// Command scoreboard is a terminal darts score keeper: players count down
// from 301 and the first to reach exactly zero wins.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/livefir/livebind"
	"github.com/livefir/livebind/internal/reactive"
	"github.com/livefir/livebind/internal/surface/termsurface"
)

// tickInterval is how often widget edits are pushed into the model.
const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type keyMap struct {
	Switch key.Binding
	Submit key.Binding
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Switch: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous player")),
	Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next player")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

var (
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// field pairs a text input with the entry it edits and the button that
// submits it.
type field struct {
	input  textinput.Model
	entry  *livebind.Component
	button *livebind.Component
}

type model struct {
	tree    *livebind.Tree
	surface *termsurface.Surface
	fields  []field
	focus   int
	err     error
}

func newModel(logger *log.Logger) (*model, error) {
	s := termsurface.New()
	tree, err := livebind.New(s, board(), initialData(),
		livebind.WithActions(actions()),
		livebind.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	m := &model{tree: tree, surface: s}
	for _, pair := range [][2]string{{"name", "add"}, {"throw", "score"}} {
		entry := tree.Find(pair[0])[0]
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 24
		m.fields = append(m.fields, field{input: ti, entry: entry, button: tree.Find(pair[1])[0]})
	}
	m.setFocus(0)
	return m, nil
}

func (m *model) setFocus(i int) {
	m.focus = i
	for j := range m.fields {
		if j == i {
			m.fields[j].input.Focus()
		} else {
			m.fields[j].input.Blur()
		}
	}
	m.surface.Focus, _ = m.fields[i].entry.Widget().(*termsurface.Widget)
}

// sync copies the text inputs into their entries.
func (m *model) sync() error {
	for _, f := range m.fields {
		lv, ok := f.entry.Widget().(livebind.LocalValuer)
		if !ok {
			continue
		}
		if err := lv.SetLocal(f.input.Value()); err != nil {
			return err
		}
	}
	return nil
}

// submit pushes pending edits into the model and runs the focused
// field's command, then reloads the inputs from their entries.
func (m *model) submit() error {
	if err := m.sync(); err != nil {
		return err
	}
	if err := m.tree.UpdateData(); err != nil {
		return err
	}
	if err := m.fields[m.focus].button.Click(); err != nil {
		return err
	}
	for i := range m.fields {
		v, err := m.fields[i].entry.Widget().(livebind.LocalValuer).GetLocal()
		if err != nil {
			return err
		}
		m.fields[i].input.SetValue(fmt.Sprint(v))
	}
	return nil
}

func (m *model) moveSelection(delta int) error {
	v, err := m.tree.Data().Get("players")
	if err != nil {
		return err
	}
	n := v.(*reactive.List).Len()
	if n == 0 {
		return nil
	}
	cur, err := m.tree.Data().Get("selected")
	if err != nil {
		return err
	}
	next := (cur.(int) + delta + n) % n
	return m.tree.Data().Set("selected", next)
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if err := m.sync(); err != nil {
			m.err = err
		} else if err := m.tree.Tick(); err != nil {
			m.err = err
		}
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Switch):
			m.setFocus((m.focus + 1) % len(m.fields))
			return m, nil
		case key.Matches(msg, keys.Submit):
			m.err = m.submit()
			return m, nil
		case key.Matches(msg, keys.Up):
			m.err = m.moveSelection(-1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.err = m.moveSelection(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(m.surface.View())
	b.WriteString("\n\n")
	b.WriteString(m.fields[m.focus].entry.Name())
	b.WriteString(": ")
	b.WriteString(m.fields[m.focus].input.View())
	b.WriteString("\n")

	var help []string
	for _, k := range []key.Binding{keys.Switch, keys.Submit, keys.Up, keys.Down, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}
	return b.String()
}

func main() {
	// Warnings would corrupt the alternate screen.
	m, err := newModel(log.New(io.Discard, "", 0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer m.tree.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
