package reactive

import (
	"strconv"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/event"
)

// List is an observable ordered container.
//
// Events carry the position after the mutation: ":append", ":insert",
// ":remove" and ":pop" for structural changes and ".i" for an assignment.
// Events of reactive elements are republished as ".i<inner name>".
type List struct {
	events event.Emitter
	items  []any
	relays event.Observer
}

// NewList returns an empty List.
func NewList() *List { return &List{} }

func (l *List) Events() *event.Emitter { return &l.events }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at index.
func (l *List) At(index int) (any, error) {
	if index < 0 || index >= len(l.items) {
		return nil, &errs.StructuralRangeError{Op: "get", Index: index, Length: len(l.items)}
	}
	return l.items[index], nil
}

// Values returns a copy of the elements.
func (l *List) Values() []any { return append([]any(nil), l.items...) }

// SetAt assigns value at index, with the same write-through and merge
// rules as Map.Set.
func (l *List) SetAt(index int, value any) error {
	if IsContainer(value) {
		return aliasError("set "+strconv.Itoa(index), value)
	}
	old, err := l.At(index)
	if err != nil {
		return err
	}
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
	return l.Replace(index, value)
}

// Replace stores value at index without merging or writing through.
func (l *List) Replace(index int, value any) error {
	if index < 0 || index >= len(l.items) {
		return &errs.StructuralRangeError{Op: "set", Index: index, Length: len(l.items)}
	}
	value, err := l.wrap(value)
	if err != nil {
		return err
	}
	l.items[index] = value
	l.rewire()
	return l.events.Publish(event.Event{Name: "." + strconv.Itoa(index), Index: index, Value: value})
}

// Append adds value at the end.
func (l *List) Append(value any) error {
	value, err := l.wrap(value)
	if err != nil {
		return err
	}
	l.items = append(l.items, value)
	l.rewire()
	index := len(l.items) - 1
	return l.events.Publish(event.Event{Name: ":append", Index: index, Value: value})
}

// Insert places value before index. A negative index counts from the end
// and out-of-range positions are clamped, as with a slice insert.
func (l *List) Insert(index int, value any) error {
	value, err := l.wrap(value)
	if err != nil {
		return err
	}
	if index < 0 {
		index += len(l.items)
		if index < 0 {
			index = 0
		}
	}
	if index > len(l.items) {
		index = len(l.items)
	}
	l.items = append(l.items, nil)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = value
	l.rewire()
	return l.events.Publish(event.Event{Name: ":insert", Index: index, Value: value})
}

// Index returns the position of the first element equal to value, or -1.
func (l *List) Index(value any) int {
	for i, v := range l.items {
		if same(v, value) {
			return i
		}
	}
	return -1
}

// Remove deletes the first element equal to value.
func (l *List) Remove(value any) error {
	index := l.Index(value)
	if index < 0 {
		return &errs.StructuralRangeError{Op: "remove", Index: -1, Length: len(l.items), Value: value}
	}
	removed := l.items[index]
	l.items = append(l.items[:index:index], l.items[index+1:]...)
	l.rewire()
	return l.events.Publish(event.Event{Name: ":remove", Index: index, Value: removed})
}

// Pop removes and returns the element at index; -1 is the last element.
func (l *List) Pop(index int) (any, error) {
	if index < 0 {
		index += len(l.items)
	}
	if index < 0 || index >= len(l.items) {
		return nil, &errs.StructuralRangeError{Op: "pop", Index: index, Length: len(l.items)}
	}
	removed := l.items[index]
	l.items = append(l.items[:index:index], l.items[index+1:]...)
	l.rewire()
	return removed, l.events.Publish(event.Event{Name: ":pop", Index: index, Value: removed})
}

// UpdateWith empties the list, popping from the end, then appends every
// element of a plain slice.
func (l *List) UpdateWith(value any) error {
	if IsContainer(value) {
		return aliasError("update", value)
	}
	plain, ok := value.([]any)
	if !ok {
		w, err := Wrap(value)
		if err != nil {
			return err
		}
		other, isList := w.(*List)
		if !isList {
			return &errs.PathTypeError{Path: "update", Want: "list", Data: value}
		}
		plain = other.View().([]any)
	}
	for len(l.items) > 0 {
		if _, err := l.Pop(-1); err != nil {
			return err
		}
	}
	for _, v := range plain {
		if err := l.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// View returns a plain slice of element snapshots.
func (l *List) View() any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = View(v)
	}
	return out
}

// Close releases the relays the list holds on its elements.
func (l *List) Close() { l.relays.Close() }

func (l *List) wrap(value any) (any, error) {
	if IsContainer(value) {
		return nil, aliasError("list", value)
	}
	return Wrap(value)
}

func (l *List) rewire() {
	l.relays.Close()
	for i, v := range l.items {
		if s, ok := v.(event.Subject); ok {
			l.relays.Transmit(s, l, "."+strconv.Itoa(i))
		}
	}
}
