// Package reactive implements the observable containers the component tree
// is bound to.
//
// A Map or List emits an event for every structural mutation and relays
// the events of the reactive values it holds with the holding key or index
// prepended, so a change deep inside the store surfaces on every ancestor:
//
//	m.Get("party")          // *Map
//	party.Set("name", "x")  // m publishes ".party.name"
//
// Plain map[string]any and []any values are wrapped on assignment. View
// returns the inert snapshot handed to expressions and style rendering.
package reactive

import (
	"reflect"

	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/path"
)

// Viewer produces an inert snapshot of a reactive value.
type Viewer interface {
	View() any
}

// Container is a reactive map or list.
type Container interface {
	event.Subject
	Viewer
	UpdateWith(value any) error
}

// Binder is a live two-way reference to one slot of a container.
// Assigning into a container slot that holds a Binder writes through it.
type Binder interface {
	event.Subject
	Viewer
	path.Resolver
	Get() (any, error)
	Set(value any) error
}

var (
	_ Container    = (*Map)(nil)
	_ Container    = (*List)(nil)
	_ Binder       = (*Accessor)(nil)
	_ path.Keyed   = (*Map)(nil)
	_ path.Indexed = (*List)(nil)
)

// View returns the snapshot of v, or v itself when it is not reactive.
func View(v any) any {
	if vw, ok := v.(Viewer); ok {
		return vw.View()
	}
	return v
}

// IsContainer reports whether v is a live reactive container.
func IsContainer(v any) bool {
	_, ok := v.(Container)
	return ok
}

// Wrap converts plain maps with string keys and slices, recursively, into
// reactive containers. Other values are returned unchanged. A live
// container nested inside a plain value is an AliasError.
func Wrap(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Container:
		return nil, aliasError("wrap", x)
	case map[string]any:
		return WrapMap(x)
	case []any:
		return WrapList(x)
	case []byte:
		return x, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v, nil
		}
		plain := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			plain[iter.Key().String()] = iter.Value().Interface()
		}
		return WrapMap(plain)
	case reflect.Slice, reflect.Array:
		plain := make([]any, rv.Len())
		for i := range plain {
			plain[i] = rv.Index(i).Interface()
		}
		return WrapList(plain)
	}
	return v, nil
}

// WrapMap builds a Map holding the wrapped values of src.
func WrapMap(src map[string]any) (*Map, error) {
	m := NewMap()
	for k, v := range src {
		w, err := Wrap(v)
		if err != nil {
			return nil, err
		}
		m.data[k] = w
	}
	m.rewire()
	return m, nil
}

// WrapList builds a List holding the wrapped values of src.
func WrapList(src []any) (*List, error) {
	l := NewList()
	for _, v := range src {
		w, err := Wrap(v)
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, w)
	}
	l.rewire()
	return l, nil
}

// MustMap is WrapMap for literals known to hold only plain values.
func MustMap(src map[string]any) *Map {
	m, err := WrapMap(src)
	if err != nil {
		panic(err)
	}
	return m
}

// MustList is WrapList for literals known to hold only plain values.
func MustList(src ...any) *List {
	l, err := WrapList(src)
	if err != nil {
		panic(err)
	}
	return l
}

// sameKind reports whether a plain value can be merged into c.
func sameKind(c Container, v any) bool {
	if v == nil || IsContainer(v) {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	kind := reflect.ValueOf(v).Kind()
	switch c.(type) {
	case *Map:
		return kind == reflect.Map
	case *List:
		return kind == reflect.Slice || kind == reflect.Array
	}
	return false
}

// same reports whether a and b are the same element: the same container,
// or equal snapshots.
func same(a, b any) bool {
	ca, okA := a.(event.Subject)
	cb, okB := b.(event.Subject)
	if okA && okB && ca.Events() == cb.Events() {
		return true
	}
	return reflect.DeepEqual(View(a), View(b))
}
