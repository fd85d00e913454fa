package reactive

import (
	"sort"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/event"
)

func aliasError(op string, v any) error {
	return &errs.AliasError{Op: op, Value: v}
}

// Map is an observable string-keyed container.
//
// Events: ".key" after an assignment, ".key:del" after Delete and
// ".key:pop" after Pop. Events of reactive values held under a key are
// republished as ".key<inner name>".
type Map struct {
	events event.Emitter
	data   map[string]any
	relays event.Observer
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{data: make(map[string]any)}
}

func (m *Map) Events() *event.Emitter { return &m.events }

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.data) }

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.data[key]
	return ok
}

// Keys returns the keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key, which may be a reactive
// container or a Binder.
func (m *Map) Get(key string) (any, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, &errs.KeyError{Key: key}
	}
	return v, nil
}

// Set assigns value to key.
//
// When the slot holds a Binder the value is written through it. When it
// holds a container and value is a plain value of the same shape, the
// container is updated in place so its subscribers stay attached.
// Otherwise the slot is replaced.
func (m *Map) Set(key string, value any) error {
	if IsContainer(value) {
		return aliasError("set "+key, value)
	}
	if old, ok := m.data[key]; ok {
		switch o := old.(type) {
		case Binder:
			if _, isBinder := value.(Binder); !isBinder {
				return o.Set(value)
			}
		case Container:
			if sameKind(o, value) {
				return o.UpdateWith(value)
			}
		}
	}
	return m.Replace(key, value)
}

// Replace stores value under key without merging into or writing through
// the previous value. Unlike Set it accepts a live container, which then
// becomes shared with its current owner.
func (m *Map) Replace(key string, value any) error {
	if !IsContainer(value) {
		w, err := Wrap(value)
		if err != nil {
			return err
		}
		value = w
	}
	m.data[key] = value
	m.rewire()
	return m.events.Publish(event.Event{Name: "." + key, Key: key, Value: value})
}

// Delete removes key.
func (m *Map) Delete(key string) error {
	if _, ok := m.data[key]; !ok {
		return &errs.KeyError{Key: key}
	}
	delete(m.data, key)
	m.rewire()
	return m.events.Publish(event.Event{Name: "." + key + ":del", Key: key})
}

// Pop removes key and returns its value.
func (m *Map) Pop(key string) (any, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, &errs.KeyError{Key: key}
	}
	delete(m.data, key)
	m.rewire()
	return v, m.events.Publish(event.Event{Name: "." + key + ":pop", Key: key, Value: v})
}

// UpdateWith assigns every entry of a plain map. Keys absent from value
// are kept.
func (m *Map) UpdateWith(value any) error {
	if IsContainer(value) {
		return aliasError("update", value)
	}
	if plain, ok := value.(map[string]any); ok {
		for _, k := range sortedKeys(plain) {
			if err := m.Set(k, plain[k]); err != nil {
				return err
			}
		}
		return nil
	}
	w, err := Wrap(value)
	if err != nil {
		return err
	}
	other, ok := w.(*Map)
	if !ok {
		return &errs.PathTypeError{Path: "update", Want: "dict", Data: value}
	}
	return m.UpdateWith(other.View())
}

// View returns a plain map with every reactive value replaced by its
// snapshot.
func (m *Map) View() any {
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = View(v)
	}
	return out
}

// Close releases the relays the map holds on its values.
func (m *Map) Close() { m.relays.Close() }

func (m *Map) rewire() {
	m.relays.Close()
	for k, v := range m.data {
		if s, ok := v.(event.Subject); ok {
			m.relays.Transmit(s, m, "."+k)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
