// Package htmlsurface mounts a component tree onto an HTML node tree.
//
// Every component becomes one element carrying a stable id. Attributes
// rendered by the tree are mapped onto element attributes, inline styles
// and text content; the grid placement computed by the layouts is kept in
// data-* attributes.
package htmlsurface

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/livefir/livebind"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns a configured HTML minifier (singleton)
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", mhtml.Minify)
	})
	return minifier
}

type element struct {
	atom atom.Atom
	keys []string
}

var elements = map[livebind.Kind]element{
	livebind.KindFrame:  {atom.Div, []string{"bg", "class"}},
	livebind.KindGroup:  {atom.Fieldset, []string{"text", "bg", "class"}},
	livebind.KindLabel:  {atom.Span, []string{"text", "fg", "bg", "class"}},
	livebind.KindButton: {atom.Button, []string{"text", "state", "class"}},
	livebind.KindEntry:  {atom.Input, []string{"state", "width", "class", "placeholder"}},
}

// Option configures a Surface.
type Option func(*Surface)

// WithIDs replaces the uuid generator used for element ids.
func WithIDs(next func() string) Option {
	return func(s *Surface) {
		s.newID = next
	}
}

// Surface holds the document the widgets are mounted into.
type Surface struct {
	doc   *html.Node
	newID func() string
	byID  map[string]*Widget
}

// New creates an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		doc:   &html.Node{Type: html.DocumentNode},
		newID: func() string { return "w-" + uuid.NewString() },
		byID:  make(map[string]*Widget),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount implements livebind.Surface.
func (s *Surface) Mount(parent livebind.Widget, c *livebind.Component) (livebind.Widget, error) {
	el, ok := elements[c.Kind()]
	if !ok {
		return nil, fmt.Errorf("htmlsurface: unsupported kind %q", c.Kind())
	}

	w := &Widget{
		surface: s,
		kind:    c.Kind(),
		id:      s.newID(),
		keys:    el.keys,
		node:    &html.Node{Type: html.ElementNode, DataAtom: el.atom, Data: el.atom.String()},
	}
	w.setAttr("id", w.id)
	w.setAttr("data-name", c.Name())
	if c.Kind() == livebind.KindEntry {
		w.setAttr("type", "text")
	}

	switch p := parent.(type) {
	case nil:
		s.doc.AppendChild(w.node)
	case *Widget:
		p.node.AppendChild(w.node)
	default:
		return nil, fmt.Errorf("htmlsurface: parent %T was not mounted by this surface", parent)
	}
	s.byID[w.id] = w
	return w, nil
}

// Lookup returns the widget with the given element id.
func (s *Surface) Lookup(id string) (*Widget, bool) {
	w, ok := s.byID[id]
	return w, ok
}

// Render writes the document. With minify the output goes through the
// HTML minifier.
func (s *Surface) Render(out io.Writer, minify bool) error {
	if !minify {
		return html.Render(out, s.doc)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, s.doc); err != nil {
		return err
	}
	return getMinifier().Minify("text/html", out, &buf)
}

// String renders the document without minification.
func (s *Surface) String() string {
	var b strings.Builder
	if err := s.Render(&b, false); err != nil {
		return err.Error()
	}
	return b.String()
}

// Widget is one mounted element.
type Widget struct {
	surface *Surface
	kind    livebind.Kind
	id      string
	keys    []string
	node    *html.Node
	fg, bg  string
}

var (
	_ livebind.Widget      = (*Widget)(nil)
	_ livebind.LocalValuer = (*Widget)(nil)
	_ livebind.Placer      = (*Widget)(nil)
	_ livebind.Weighter    = (*Widget)(nil)
	_ livebind.Arranger    = (*Widget)(nil)
)

// ID returns the element id.
func (w *Widget) ID() string { return w.id }

// Node returns the element.
func (w *Widget) Node() *html.Node { return w.node }

func (w *Widget) Keys() []string { return w.keys }

func (w *Widget) Configure(attrs map[string]interface{}) error {
	for k, v := range attrs {
		switch k {
		case "text":
			w.setText(fmt.Sprint(v))
		case "fg":
			w.fg = fmt.Sprint(v)
			w.setStyle()
		case "bg":
			w.bg = fmt.Sprint(v)
			w.setStyle()
		case "state":
			if fmt.Sprint(v) == "disabled" {
				w.setAttr("disabled", "")
			} else {
				w.delAttr("disabled")
			}
		case "width":
			w.setAttr("size", fmt.Sprint(v))
		case "class", "placeholder":
			w.setAttr(k, fmt.Sprint(v))
		default:
			return fmt.Errorf("htmlsurface: %s does not accept %q", w.kind, k)
		}
	}
	return nil
}

func (w *Widget) Destroy() error {
	delete(w.surface.byID, w.id)
	if w.node.Parent == nil {
		return fmt.Errorf("htmlsurface: %s already detached", w.id)
	}
	w.node.Parent.RemoveChild(w.node)
	return nil
}

// GetLocal returns the value attribute of an entry.
func (w *Widget) GetLocal() (interface{}, error) {
	if w.kind != livebind.KindEntry {
		return nil, fmt.Errorf("htmlsurface: %s holds no value", w.kind)
	}
	v, _ := w.attr("value")
	return v, nil
}

// SetLocal sets the value attribute of an entry.
func (w *Widget) SetLocal(value interface{}) error {
	if w.kind != livebind.KindEntry {
		return fmt.Errorf("htmlsurface: %s holds no value", w.kind)
	}
	if value == nil {
		w.delAttr("value")
		return nil
	}
	w.setAttr("value", fmt.Sprint(value))
	return nil
}

func (w *Widget) Place(cell livebind.Cell) error {
	w.setAttr("data-row", strconv.Itoa(cell.Row))
	w.setAttr("data-column", strconv.Itoa(cell.Column))
	w.setAttr("data-sticky", cell.Sticky)
	if cell.PadX != 0 || cell.PadY != 0 {
		w.setAttr("data-pad", fmt.Sprintf("%d %d", cell.PadY, cell.PadX))
	}
	return nil
}

func (w *Widget) SetWeights(rows, columns []int) error {
	w.setAttr("data-rows", joinInts(rows))
	w.setAttr("data-columns", joinInts(columns))
	return nil
}

// Arrange moves the child elements into layout order. A group's legend
// stays first.
func (w *Widget) Arrange(children []livebind.Widget) error {
	for _, c := range children {
		child, ok := c.(*Widget)
		if !ok {
			return fmt.Errorf("htmlsurface: child %T was not mounted by this surface", c)
		}
		if child.node.Parent != w.node {
			return fmt.Errorf("htmlsurface: %s is not a child of %s", child.id, w.id)
		}
		w.node.RemoveChild(child.node)
		w.node.AppendChild(child.node)
	}
	return nil
}

func (w *Widget) setText(text string) {
	target := w.node
	if w.kind == livebind.KindGroup {
		target = w.legend()
	}
	for n := target.FirstChild; n != nil; {
		next := n.NextSibling
		if n.Type == html.TextNode {
			target.RemoveChild(n)
		}
		n = next
	}
	node := &html.Node{Type: html.TextNode, Data: text}
	if target.FirstChild != nil {
		target.InsertBefore(node, target.FirstChild)
	} else {
		target.AppendChild(node)
	}
}

func (w *Widget) legend() *html.Node {
	if first := w.node.FirstChild; first != nil && first.DataAtom == atom.Legend {
		return first
	}
	legend := &html.Node{Type: html.ElementNode, DataAtom: atom.Legend, Data: "legend"}
	if w.node.FirstChild != nil {
		w.node.InsertBefore(legend, w.node.FirstChild)
	} else {
		w.node.AppendChild(legend)
	}
	return legend
}

func (w *Widget) setStyle() {
	var parts []string
	if w.fg != "" {
		parts = append(parts, "color:"+w.fg)
	}
	if w.bg != "" {
		parts = append(parts, "background-color:"+w.bg)
	}
	if len(parts) == 0 {
		w.delAttr("style")
		return
	}
	w.setAttr("style", strings.Join(parts, ";"))
}

func (w *Widget) attr(key string) (string, bool) {
	for _, a := range w.node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (w *Widget) setAttr(key, val string) {
	for i, a := range w.node.Attr {
		if a.Key == key {
			w.node.Attr[i].Val = val
			return
		}
	}
	w.node.Attr = append(w.node.Attr, html.Attribute{Key: key, Val: val})
}

func (w *Widget) delAttr(key string) {
	for i, a := range w.node.Attr {
		if a.Key == key {
			w.node.Attr = append(w.node.Attr[:i], w.node.Attr[i+1:]...)
			return
		}
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
