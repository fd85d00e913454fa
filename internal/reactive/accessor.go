package reactive

import (
	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/path"
)

// Accessor is a Binder over one key or index of a container. When the
// container is reactive, the accessor republishes the events addressing
// its slot with the slot prefix removed: a change of the slot itself
// arrives as the empty name "", a change inside it as ".inner".
type Accessor struct {
	events event.Emitter
	parent any
	step   path.Step
	relay  event.Observer
	chain  *Accessor
}

// NewAccessor binds step of parent. parent may be a plain map or slice,
// a reactive container, a scope, or another Binder.
func NewAccessor(parent any, step path.Step) *Accessor {
	a := &Accessor{parent: parent, step: step}
	a.subscribe()
	return a
}

// BinderFor chains one accessor per step of p, starting from data.
func BinderFor(p path.Path, data any) (*Accessor, error) {
	if p.IsZero() {
		return nil, &errs.PathParseError{Input: "", Reason: "empty path"}
	}
	var last *Accessor
	var cur any = data
	for _, step := range p.Steps() {
		a := NewAccessor(cur, step)
		a.chain = last
		last = a
		cur = a
	}
	return last, nil
}

func (a *Accessor) Events() *event.Emitter { return &a.events }

// Step returns the slot the accessor currently points at.
func (a *Accessor) Step() path.Step { return a.step }

// Parent returns the container the accessor reads from.
func (a *Accessor) Parent() any { return a.parent }

func (a *Accessor) slot() path.Path { return path.New(a.step) }

// Get reads the slot.
func (a *Accessor) Get() (any, error) { return a.slot().Get(a.parent) }

// Resolve is Get; it lets paths walk through the accessor.
func (a *Accessor) Resolve() (any, error) { return a.Get() }

// Set writes the slot. A reactive parent announces the change itself;
// for a plain parent the accessor publishes it.
func (a *Accessor) Set(value any) error {
	if err := a.slot().Set(a.parent, value); err != nil {
		return err
	}
	if _, ok := a.parent.(event.Subject); ok {
		return nil
	}
	return a.events.Publish(a.changed(value))
}

// View returns the snapshot of the slot, or nil when the slot cannot be
// read.
func (a *Accessor) View() any {
	v, err := a.Get()
	if err != nil {
		return nil
	}
	return View(v)
}

// Repoint moves the accessor to another slot of the same parent and
// announces the change.
func (a *Accessor) Repoint(step path.Step) error {
	a.relay.Close()
	a.step = step
	a.subscribe()
	v, _ := a.Get()
	return a.events.Publish(a.changed(v))
}

// Close stops relaying, along the whole chain built by BinderFor.
func (a *Accessor) Close() {
	for cur := a; cur != nil; cur = cur.chain {
		cur.relay.Close()
	}
}

func (a *Accessor) changed(value any) event.Event {
	ev := event.Event{Name: "", Value: value}
	if a.step.IsIndex() {
		ev.Index = a.step.Index()
	} else {
		ev.Key = a.step.Key()
	}
	return ev
}

func (a *Accessor) subscribe() {
	if s, ok := a.parent.(event.Subject); ok {
		a.relay.TransmitStripped(s, a, "."+a.step.String())
	}
}
