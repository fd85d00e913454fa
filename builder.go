package livebind

import (
	"fmt"
	"strings"

	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/expr"
	"github.com/livefir/livebind/internal/path"
	"github.com/livefir/livebind/internal/reactive"
)

// builder materializes the children one child plan declares under a
// parent component.
type builder interface {
	// init performs the initial build and subscribes to the data the
	// children depend on.
	init() error
	// build synchronizes the children with the data and reports whether
	// the set of children changed.
	build() (bool, error)
	handles() []Handle
	// close destroys every child and unsubscribes.
	close()
}

func newBuilder(parent *Component, p *plan) builder {
	if p.iterated() {
		return &listBuilder{parent: parent, plan: p}
	}
	return &unitBuilder{parent: parent, plan: p}
}

// condition evaluates the If of p against the parent's data. An If of
// unsupported type is reported once and counts as false.
type condition struct {
	parent *Component
	plan   *plan
	warned bool
}

func (c *condition) holds() (bool, error) {
	p := c.plan
	if p.badCondition != nil {
		if !c.warned {
			c.warned = true
			c.parent.tree.warnf("%s: if has unsupported type %s, component not built", p.name(), typeName(p.badCondition))
		}
		return false, nil
	}
	if p.condition == nil {
		return true, nil
	}
	v, err := p.condition.Evaluate(c.parent.data.View())
	if err != nil {
		return false, fmt.Errorf("%s: if %s: %w", p.name(), p.condition, err)
	}
	return expr.Truthy(v), nil
}

// watch calls fn for every event of the parent's data that can change
// the condition.
func (c *condition) watch(o *event.Observer, fn func() error) {
	paths := c.plan.conditionPaths()
	if len(paths) == 0 {
		return
	}
	o.On(c.parent.data, event.Wildcard, func(ev event.Event) error {
		if !affectsAny(ev.Name, paths) {
			return nil
		}
		return fn()
	})
}

// affectsAny reports whether the event called name can change the value
// of one of paths: the event addresses the path, something below it, or
// one of its ancestors.
func affectsAny(name string, paths []path.Path) bool {
	for _, p := range paths {
		if affects(name, p) {
			return true
		}
	}
	return false
}

func affects(name string, p path.Path) bool {
	target := p.EventName()
	if _, ok := event.StripPrefix(name, target); ok {
		return true
	}
	base := name
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		base = name[:i]
	}
	_, ok := event.StripPrefix(target, base)
	return ok
}

// unitBuilder holds at most one child, present while the condition holds.
type unitBuilder struct {
	parent   *Component
	plan     *plan
	cond     condition
	child    Handle
	observer event.Observer
}

func (b *unitBuilder) init() error {
	b.cond = condition{parent: b.parent, plan: b.plan}
	b.cond.watch(&b.observer, b.rebuild)
	_, err := b.build()
	return err
}

func (b *unitBuilder) build() (bool, error) {
	should, err := b.cond.holds()
	if err != nil {
		return false, err
	}
	present := !b.child.IsZero()

	switch {
	case should && !present:
		c, err := newComponent(b.parent.tree, b.parent, b.plan, nil, nil)
		if err != nil {
			return false, err
		}
		b.child = c.handle
		return true, nil
	case !should && present:
		b.destroyChild()
		return true, nil
	}
	return false, nil
}

func (b *unitBuilder) rebuild() error {
	changed, err := b.build()
	if err != nil || !changed {
		return err
	}
	b.parent.tree.config.Metrics.IncrementRebuild()
	return b.parent.refresh()
}

func (b *unitBuilder) handles() []Handle {
	if b.child.IsZero() {
		return nil
	}
	return []Handle{b.child}
}

func (b *unitBuilder) destroyChild() {
	if c, ok := b.parent.tree.Get(b.child); ok {
		if err := c.Destroy(); err != nil {
			b.parent.tree.warnf("%s: %v", b.plan.name(), err)
		}
	}
	b.child = Handle{}
}

func (b *unitBuilder) close() {
	b.observer.Close()
	b.destroyChild()
}

// listBuilder holds one child per element of a reactive list. Children
// are created and destroyed at the tail only; after an insertion or a
// removal the children from the edit position on are re-pointed at their
// new index.
type listBuilder struct {
	parent   *Component
	plan     *plan
	cond     condition
	list     *reactive.List
	children []Handle
	observer event.Observer
}

func (b *listBuilder) init() error {
	p := b.plan
	list, err := b.resolve()
	if err != nil {
		return err
	}
	b.attach(list)

	b.observer.On(b.parent.data, event.Wildcard, func(ev event.Event) error {
		if !affects(ev.Name, p.iterable) {
			return nil
		}
		return b.follow()
	})
	b.cond = condition{parent: b.parent, plan: p}
	b.cond.watch(&b.observer, b.rebuild)

	_, err = b.build()
	return err
}

// resolve reads the iterable from the parent's data.
func (b *listBuilder) resolve() (*reactive.List, error) {
	p := b.plan
	v, err := p.iterable.Get(b.parent.data)
	if err != nil {
		return nil, &BindingConfigurationError{
			Component: p.name(),
			Fields:    []FieldError{{Field: "in", Message: fmt.Sprintf("%s does not resolve", p.iterable)}},
			Err:       err,
		}
	}
	if r, ok := v.(path.Resolver); ok {
		if v, err = r.Resolve(); err != nil {
			return nil, &BindingConfigurationError{Component: p.name(), Err: err}
		}
	}
	list, ok := v.(*reactive.List)
	if !ok {
		return nil, &BindingConfigurationError{
			Component: p.name(),
			Fields:    []FieldError{{Field: "in", Message: fmt.Sprintf("%s must be a reactive list, got %s", p.iterable, typeName(v))}},
		}
	}
	return list, nil
}

// attach moves the structural handlers to list.
func (b *listBuilder) attach(list *reactive.List) {
	if b.list != nil {
		b.observer.ForgetSubject(b.list)
	}
	b.list = list
	b.observer.On(list, ":append", b.onAppend)
	b.observer.On(list, ":insert", b.onInsert)
	b.observer.On(list, ":remove", b.onShrink)
	b.observer.On(list, ":pop", b.onShrink)
}

// retarget re-resolves the iterable. When it now names another list
// every child is dropped, since each one is bound to an element of the
// old list. It reports whether the list changed.
func (b *listBuilder) retarget() (bool, error) {
	list, err := b.resolve()
	if err != nil {
		return false, err
	}
	if list == b.list {
		return false, nil
	}
	b.attach(list)
	for len(b.children) > 0 {
		b.destroyLast()
	}
	return true, nil
}

// follow handles a parent data event that may have replaced the list.
func (b *listBuilder) follow() error {
	moved, err := b.retarget()
	if err != nil || !moved {
		return err
	}
	if _, err := b.build(); err != nil {
		return err
	}
	return b.done()
}

// build creates or destroys tail children until there is one per
// element of the current list, or none while the condition fails.
func (b *listBuilder) build() (bool, error) {
	moved, err := b.retarget()
	if err != nil {
		return false, err
	}
	should, err := b.cond.holds()
	if err != nil {
		return false, err
	}
	target := 0
	if should {
		target = b.list.Len()
	}

	changed := moved
	for len(b.children) < target {
		if err := b.appendChild(len(b.children)); err != nil {
			return changed, err
		}
		changed = true
	}
	for len(b.children) > target {
		b.destroyLast()
		changed = true
	}
	return changed, nil
}

func (b *listBuilder) rebuild() error {
	changed, err := b.build()
	if err != nil || !changed {
		return err
	}
	return b.done()
}

func (b *listBuilder) done() error {
	b.parent.tree.config.Metrics.IncrementRebuild()
	return b.parent.refresh()
}

func (b *listBuilder) onAppend(ev event.Event) error {
	if should, err := b.cond.holds(); err != nil || !should {
		return err
	}
	if err := b.appendChild(len(b.children)); err != nil {
		return err
	}
	return b.done()
}

func (b *listBuilder) onInsert(ev event.Event) error {
	if should, err := b.cond.holds(); err != nil || !should {
		return err
	}
	if err := b.appendChild(len(b.children)); err != nil {
		return err
	}
	if err := b.reindexFrom(ev.Index); err != nil {
		return err
	}
	return b.done()
}

func (b *listBuilder) onShrink(ev event.Event) error {
	if len(b.children) == 0 {
		return nil
	}
	b.destroyLast()
	if err := b.reindexFrom(ev.Index); err != nil {
		return err
	}
	return b.done()
}

// bind returns what a child sees under the loop key: the element itself
// when it is reactive, an accessor to its slot otherwise.
func (b *listBuilder) bind(index int, elem interface{}) interface{} {
	if _, ok := elem.(event.Subject); ok {
		return elem
	}
	return reactive.NewAccessor(b.list, path.Index(index))
}

func (b *listBuilder) appendChild(index int) error {
	elem, err := b.list.At(index)
	if err != nil {
		return err
	}
	bound := b.bind(index, elem)
	c, err := newComponent(b.parent.tree, b.parent, b.plan, map[string]interface{}{
		"index":    index,
		b.plan.key: bound,
	}, nil)
	if err != nil {
		if a, ok := bound.(*reactive.Accessor); ok {
			a.Close()
		}
		return err
	}
	b.children = append(b.children, c.handle)
	return nil
}

func (b *listBuilder) destroyLast() {
	n := len(b.children)
	if c, ok := b.parent.tree.Get(b.children[n-1]); ok {
		bound, _ := c.data.Local().Get(b.plan.key)
		if err := c.Destroy(); err != nil {
			b.parent.tree.warnf("%s: %v", b.plan.name(), err)
		}
		if a, ok := bound.(*reactive.Accessor); ok {
			a.Close()
		}
	}
	b.children = b.children[:n-1]
}

// reindexFrom updates the index of the children from index on and
// points them at the element now at their position.
func (b *listBuilder) reindexFrom(index int) error {
	if index < 0 {
		index = 0
	}
	var n int64
	for i := index; i < len(b.children); i++ {
		c, ok := b.parent.tree.Get(b.children[i])
		if !ok {
			continue
		}
		if err := c.data.Set("index", i); err != nil {
			return err
		}

		bound, err := c.data.Local().Get(b.plan.key)
		if err != nil {
			return err
		}
		if a, ok := bound.(*reactive.Accessor); ok {
			if err := a.Repoint(path.Index(i)); err != nil {
				return err
			}
		} else {
			elem, err := b.list.At(i)
			if err != nil {
				return err
			}
			if !sameSubject(bound, elem) {
				if err := c.data.Replace(b.plan.key, b.bind(i, elem)); err != nil {
					return err
				}
			}
		}

		if err := c.refreshLocalTree(); err != nil {
			return err
		}
		n++
	}
	b.parent.tree.config.Metrics.IncrementReindex(n)
	return nil
}

func sameSubject(a, b interface{}) bool {
	sa, ok := a.(event.Subject)
	if !ok {
		return false
	}
	sb, ok := b.(event.Subject)
	return ok && sa.Events() == sb.Events()
}

func (b *listBuilder) handles() []Handle {
	return append([]Handle(nil), b.children...)
}

func (b *listBuilder) close() {
	b.observer.Close()
	for len(b.children) > 0 {
		b.destroyLast()
	}
}
