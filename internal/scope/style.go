package scope

import (
	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/expr"
	"github.com/livefir/livebind/internal/path"
	"github.com/livefir/livebind/internal/reactive"
)

// Style holds the attribute declarations of a component. Missing keys are
// read from the parent but never written there. String values containing
// {{ path }} markers are compiled into expr.Text. Parent events for keys
// the style does not shadow are republished, as Data does.
type Style struct {
	local  *reactive.Map
	parent *Style
	relay  *event.Subscription
}

// NewStyle builds a style scope from declared attributes.
func NewStyle(parent *Style, local map[string]any) (*Style, error) {
	s := &Style{local: reactive.NewMap(), parent: parent}
	for _, k := range sortedKeys(local) {
		if err := s.Set(k, local[k]); err != nil {
			return nil, err
		}
	}
	if parent != nil {
		s.relay = parent.Events().SubscribeAll(s.relayParent)
	}
	return s, nil
}

func (s *Style) relayParent(ev event.Event) error {
	if s.local.Has(firstKey(ev.Name)) {
		return nil
	}
	return s.local.Events().Publish(ev)
}

func (s *Style) Events() *event.Emitter { return s.local.Events() }

// Parent returns the enclosing style, or nil.
func (s *Style) Parent() *Style { return s.parent }

// Get reads key locally, then from the ancestors.
func (s *Style) Get(key string) (any, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.local.Has(key) {
			return cur.local.Get(key)
		}
	}
	return nil, &errs.KeyError{Key: key}
}

// Set stores value locally, compiling template strings.
func (s *Style) Set(key string, value any) error {
	if str, ok := value.(string); ok {
		compiled, err := expr.ParseText(str)
		if err != nil {
			return err
		}
		value = compiled
	}
	return s.local.Set(key, value)
}

// View returns the merged declarations, parent first. Values may still be
// evaluable.
func (s *Style) View() any {
	out := map[string]any{}
	if s.parent != nil {
		for k, v := range s.parent.View().(map[string]any) {
			out[k] = v
		}
	}
	for k, v := range s.local.View().(map[string]any) {
		out[k] = v
	}
	return out
}

// Paths returns the data paths the declarations depend on.
func (s *Style) Paths() []path.Path {
	view := s.View().(map[string]any)
	var out []path.Path
	for _, k := range sortedKeys(view) {
		if e, ok := view[k].(expr.Expression); ok {
			out = append(out, e.Paths()...)
		}
	}
	return out
}

// Close detaches the style from its parent and releases its relays.
func (s *Style) Close() {
	s.relay.Unsubscribe()
	s.local.Close()
}
