// Package scope implements the per-component data and style maps with
// parent fallback.
package scope

import (
	"sort"
	"strings"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/path"
	"github.com/livefir/livebind/internal/reactive"
)

var (
	_ path.Keyed    = (*Data)(nil)
	_ event.Subject = (*Data)(nil)
)

// Data is a reactive map whose missing keys are read from, and written
// through to, its parent.
//
// A key absent everywhere is created locally on Set; a key the parent
// already owns is written there. Events of the parent for keys Data does
// not shadow are republished, so a subscriber only ever listens to the
// nearest scope.
type Data struct {
	local  *reactive.Map
	parent *Data
	relay  *event.Subscription
}

// NewData builds a scope holding the entries of local. Plain maps and
// slices are wrapped; reactive containers and binders are bound as they
// are, so a scope can hold a live element of another store.
func NewData(parent *Data, local map[string]any) (*Data, error) {
	m := reactive.NewMap()
	for _, k := range sortedKeys(local) {
		if err := m.Replace(k, local[k]); err != nil {
			return nil, err
		}
	}
	d := &Data{local: m, parent: parent}
	if parent != nil {
		d.relay = parent.Events().SubscribeAll(d.relayParent)
	}
	return d, nil
}

func (d *Data) relayParent(ev event.Event) error {
	if d.local.Has(firstKey(ev.Name)) {
		return nil
	}
	return d.local.Events().Publish(ev)
}

// firstKey returns "a" for ".a", ".a.b" and ".a:del".
func firstKey(name string) string {
	name = strings.TrimPrefix(name, ".")
	if i := strings.IndexAny(name, ".:"); i >= 0 {
		return name[:i]
	}
	return name
}

func (d *Data) Events() *event.Emitter { return d.local.Events() }

// Parent returns the enclosing scope, or nil for the root.
func (d *Data) Parent() *Data { return d.parent }

// Local returns the map of keys this scope owns.
func (d *Data) Local() *reactive.Map { return d.local }

// Has reports whether key resolves in this scope or an ancestor.
func (d *Data) Has(key string) bool {
	for s := d; s != nil; s = s.parent {
		if s.local.Has(key) {
			return true
		}
	}
	return false
}

// Get reads key locally, then from the ancestors.
func (d *Data) Get(key string) (any, error) {
	for s := d; s != nil; s = s.parent {
		if s.local.Has(key) {
			return s.local.Get(key)
		}
	}
	return nil, &errs.KeyError{Key: key}
}

// Set writes key where it lives: locally when the key is local or
// unknown to every ancestor, else in the parent.
func (d *Data) Set(key string, value any) error {
	if !d.local.Has(key) && d.parent != nil && d.parent.Has(key) {
		return d.parent.Set(key, value)
	}
	return d.local.Set(key, value)
}

// Replace rebinds a local key without writing through its current value.
func (d *Data) Replace(key string, value any) error {
	return d.local.Replace(key, value)
}

// View merges the ancestors' snapshots with the local one; local keys
// win.
func (d *Data) View() any {
	out := map[string]any{}
	if d.parent != nil {
		for k, v := range d.parent.View().(map[string]any) {
			out[k] = v
		}
	}
	for k, v := range d.local.View().(map[string]any) {
		out[k] = v
	}
	return out
}

// Close detaches the scope from its parent and releases its relays.
func (d *Data) Close() {
	d.relay.Unsubscribe()
	d.local.Close()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
