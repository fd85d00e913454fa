package livebind

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

var fakeKeys = map[Kind][]string{
	KindFrame:  {"bg", "relief"},
	KindGroup:  {"bg", "text"},
	KindLabel:  {"text", "fg", "bg"},
	KindButton: {"text", "state"},
	KindEntry:  {"state", "width"},
}

// fakeSurface records every widget it mounts.
type fakeSurface struct {
	widgets []*fakeWidget
}

type fakeWidget struct {
	component  *Component
	parent     *fakeWidget
	attrs      map[string]interface{}
	calls      []map[string]interface{}
	cell       Cell
	rows       []int
	columns    []int
	arranged   []Widget
	destroyed  bool
	destroyErr error
}

func (w *fakeWidget) Keys() []string { return fakeKeys[w.component.Kind()] }

func (w *fakeWidget) Configure(attrs map[string]interface{}) error {
	w.calls = append(w.calls, attrs)
	for k, v := range attrs {
		w.attrs[k] = v
	}
	return nil
}

func (w *fakeWidget) Destroy() error {
	w.destroyed = true
	return w.destroyErr
}

func (w *fakeWidget) Place(cell Cell) error {
	w.cell = cell
	return nil
}

func (w *fakeWidget) SetWeights(rows, columns []int) error {
	w.rows, w.columns = rows, columns
	return nil
}

func (w *fakeWidget) Arrange(children []Widget) error {
	w.arranged = children
	return nil
}

// fakeEntry holds a local value like a text entry.
type fakeEntry struct {
	*fakeWidget
	local interface{}
}

func (e *fakeEntry) GetLocal() (interface{}, error) { return e.local, nil }

func (e *fakeEntry) SetLocal(v interface{}) error {
	e.local = v
	return nil
}

func (s *fakeSurface) Mount(parent Widget, c *Component) (Widget, error) {
	w := &fakeWidget{component: c, attrs: make(map[string]interface{})}
	switch p := parent.(type) {
	case *fakeWidget:
		w.parent = p
	case *fakeEntry:
		w.parent = p.fakeWidget
	}
	s.widgets = append(s.widgets, w)
	if c.Kind() == KindEntry {
		return &fakeEntry{fakeWidget: w}, nil
	}
	return w, nil
}

func widgetOf(c *Component) *fakeWidget {
	switch w := c.Widget().(type) {
	case *fakeWidget:
		return w
	case *fakeEntry:
		return w.fakeWidget
	}
	return nil
}

func entryOf(t *testing.T, c *Component) *fakeEntry {
	t.Helper()
	e, ok := c.Widget().(*fakeEntry)
	require.True(t, ok, "%s is not an entry", c.Name())
	return e
}

// newTestTree builds a tree on a fake surface and returns it with the
// captured log output.
func newTestTree(t *testing.T, root *Factory, data map[string]interface{}, opts ...Option) (*Tree, *fakeSurface, *bytes.Buffer) {
	t.Helper()
	s := &fakeSurface{}
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(log.New(&buf, "", 0))}, opts...)
	tree, err := New(s, root, data, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tree.Close() })
	return tree, s, &buf
}

func texts(cs []*Component) []interface{} {
	out := make([]interface{}, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Attrs()["text"])
	}
	return out
}
