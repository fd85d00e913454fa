// Package termsurface mounts a component tree onto styled terminal
// blocks rendered with lipgloss.
package termsurface

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/livefir/livebind"
)

var keys = map[livebind.Kind][]string{
	livebind.KindFrame:  {"bg", "border"},
	livebind.KindGroup:  {"text", "fg", "border"},
	livebind.KindLabel:  {"text", "fg", "bg", "bold"},
	livebind.KindButton: {"text", "state", "fg"},
	livebind.KindEntry:  {"state", "width", "placeholder"},
}

// Surface keeps the mounted root widget.
type Surface struct {
	root  *Widget
	// Focus is the entry receiving keystrokes, if any.
	Focus *Widget
}

// New creates an empty surface.
func New() *Surface { return &Surface{} }

// Mount implements livebind.Surface.
func (s *Surface) Mount(parent livebind.Widget, c *livebind.Component) (livebind.Widget, error) {
	k, ok := keys[c.Kind()]
	if !ok {
		return nil, fmt.Errorf("termsurface: unsupported kind %q", c.Kind())
	}
	w := &Widget{surface: s, component: c, keys: k, attrs: make(map[string]interface{})}

	switch p := parent.(type) {
	case nil:
		if s.root != nil {
			return nil, fmt.Errorf("termsurface: a root is already mounted")
		}
		s.root = w
	case *Widget:
		w.parent = p
		p.children = append(p.children, w)
	default:
		return nil, fmt.Errorf("termsurface: parent %T was not mounted by this surface", parent)
	}
	return w, nil
}

// View renders the whole tree.
func (s *Surface) View() string {
	if s.root == nil {
		return ""
	}
	return s.root.View()
}

// Widget is one block of the terminal rendering.
type Widget struct {
	surface   *Surface
	component *livebind.Component
	keys      []string
	attrs     map[string]interface{}
	parent    *Widget
	children  []*Widget
	cell      livebind.Cell
	local     string
}

var (
	_ livebind.Widget      = (*Widget)(nil)
	_ livebind.LocalValuer = (*Widget)(nil)
	_ livebind.Placer      = (*Widget)(nil)
	_ livebind.Arranger    = (*Widget)(nil)
)

// Component returns the component the widget renders.
func (w *Widget) Component() *livebind.Component { return w.component }

func (w *Widget) Keys() []string { return w.keys }

func (w *Widget) Configure(attrs map[string]interface{}) error {
	for k, v := range attrs {
		w.attrs[k] = v
	}
	return nil
}

func (w *Widget) Destroy() error {
	if w.surface.Focus == w {
		w.surface.Focus = nil
	}
	if w.parent == nil {
		w.surface.root = nil
		return nil
	}
	siblings := w.parent.children
	for i, c := range siblings {
		if c == w {
			w.parent.children = append(siblings[:i:i], siblings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("termsurface: %s already detached", w.component.Name())
}

func (w *Widget) GetLocal() (interface{}, error) { return w.local, nil }

func (w *Widget) SetLocal(value interface{}) error {
	if value == nil {
		w.local = ""
		return nil
	}
	w.local = fmt.Sprint(value)
	return nil
}

func (w *Widget) Place(cell livebind.Cell) error {
	w.cell = cell
	return nil
}

func (w *Widget) Arrange(children []livebind.Widget) error {
	ordered := make([]*Widget, 0, len(children))
	for _, c := range children {
		child, ok := c.(*Widget)
		if !ok || child.parent != w {
			return fmt.Errorf("termsurface: %T is not a child of %s", c, w.component.Name())
		}
		ordered = append(ordered, child)
	}
	w.children = ordered
	return nil
}

// Type appends r to the local value of an entry.
func (w *Widget) Type(r ...rune) { w.local += string(r) }

// Backspace removes the last rune of the local value.
func (w *Widget) Backspace() {
	if r := []rune(w.local); len(r) > 0 {
		w.local = string(r[:len(r)-1])
	}
}

func (w *Widget) str(key string) string {
	v, ok := w.attrs[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (w *Widget) style() lipgloss.Style {
	st := lipgloss.NewStyle().PaddingLeft(w.cell.PadX).PaddingRight(w.cell.PadX).
		PaddingTop(w.cell.PadY).PaddingBottom(w.cell.PadY)
	if fg := w.str("fg"); fg != "" {
		st = st.Foreground(lipgloss.Color(fg))
	}
	if bg := w.str("bg"); bg != "" {
		st = st.Background(lipgloss.Color(bg))
	}
	if w.str("border") != "" {
		st = st.Border(lipgloss.NormalBorder())
	}
	return st
}

// View renders the widget and its children.
func (w *Widget) View() string {
	st := w.style()
	switch w.component.Kind() {
	case livebind.KindLabel:
		if w.str("bold") != "" && w.str("bold") != "false" {
			st = st.Bold(true)
		}
		return st.Render(w.str("text"))
	case livebind.KindButton:
		if w.str("state") == "disabled" {
			st = st.Faint(true)
		}
		return st.Render("[ " + w.str("text") + " ]")
	case livebind.KindEntry:
		text := w.local
		if text == "" {
			text = w.str("placeholder")
			st = st.Faint(true)
		}
		if n, ok := w.attrs["width"].(int); ok && n > 0 {
			st = st.Width(n)
		}
		prompt := "> "
		if w.surface.Focus == w {
			prompt = "» "
		}
		return prompt + st.Underline(true).Render(text)
	case livebind.KindGroup:
		st = st.Border(lipgloss.RoundedBorder())
		body := w.viewChildren()
		if title := w.str("text"); title != "" {
			body = lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render(title), body)
		}
		return st.Render(body)
	}
	return st.Render(w.viewChildren())
}

// viewChildren lays the children out on their grid cells: one line of
// blocks per row.
func (w *Widget) viewChildren() string {
	if len(w.children) == 0 {
		return ""
	}
	rows := make(map[int][]*Widget)
	for _, c := range w.children {
		rows[c.cell.Row] = append(rows[c.cell.Row], c)
	}
	order := make([]int, 0, len(rows))
	for r := range rows {
		order = append(order, r)
	}
	sort.Ints(order)

	lines := make([]string, 0, len(order))
	for _, r := range order {
		cells := rows[r]
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].cell.Column < cells[j].cell.Column })
		blocks := make([]string, len(cells))
		for i, c := range cells {
			blocks[i] = c.View()
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
