package livebind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livefir/livebind/internal/event"
	"github.com/livefir/livebind/internal/expr"
	"github.com/livefir/livebind/internal/path"
	"github.com/livefir/livebind/internal/reactive"
	"github.com/livefir/livebind/internal/scope"
)

// Component is one node of a Tree: a widget together with the data and
// style scopes it is rendered from, an optional two-way binder and the
// builders materializing its children.
type Component struct {
	tree   *Tree
	handle Handle
	parent Handle
	plan   *plan

	data      *scope.Data
	ownsData  bool
	style     *scope.Style
	ownsStyle bool
	binder    *reactive.Accessor

	builders []builder
	children []Handle
	widget   Widget
	observer event.Observer

	attrs      map[string]interface{}
	stylePaths []path.Path
	renders    int
	destroyed  bool
}

// newComponent builds a component and its initial subtree. Construction
// order: style, data, binder, widget, children, style render, layout,
// event subscriptions. On failure everything built so far is torn down.
func newComponent(t *Tree, parent *Component, p *plan, data, style map[string]interface{}) (c *Component, err error) {
	c = &Component{tree: t, plan: p}
	if parent != nil {
		c.parent = parent.handle
	}
	c.handle = t.alloc(c)

	defer func() {
		if err != nil {
			_ = c.Destroy()
			c = nil
		}
	}()

	if err = c.initStyle(parent, style); err != nil {
		return
	}
	if err = c.initData(parent, data); err != nil {
		return
	}
	if err = c.initBinder(parent); err != nil {
		return
	}
	if err = c.mount(parent); err != nil {
		return
	}
	for _, cp := range p.children {
		b := newBuilder(c, cp)
		c.builders = append(c.builders, b)
		if err = b.init(); err != nil {
			return
		}
	}
	if err = c.renderStyle(); err != nil {
		return
	}
	if err = c.refresh(); err != nil {
		return
	}
	err = c.setupEvents()
	return
}

func merged(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func (c *Component) initStyle(parent *Component, local map[string]interface{}) error {
	f := c.plan.factory
	values := merged(local, f.Style)
	if f.StyleFunc != nil {
		values = merged(values, f.StyleFunc(c))
	}

	var parentStyle *scope.Style
	if parent != nil {
		parentStyle = parent.style
	}
	if len(values) == 0 && parentStyle != nil {
		c.style = parentStyle
		return nil
	}

	s, err := scope.NewStyle(parentStyle, values)
	if err != nil {
		return fmt.Errorf("%s: style: %w", f.Name, err)
	}
	c.style = s
	c.ownsStyle = true
	return nil
}

func (c *Component) initData(parent *Component, local map[string]interface{}) error {
	f := c.plan.factory
	values := merged(local, f.Data)
	if f.DataFunc != nil {
		values = merged(values, f.DataFunc(c))
	}

	var parentData *scope.Data
	if parent != nil {
		parentData = parent.data
	}
	if len(values) == 0 && parentData != nil {
		c.data = parentData
		return nil
	}

	d, err := scope.NewData(parentData, values)
	if err != nil {
		return fmt.Errorf("%s: data: %w", f.Name, err)
	}
	c.data = d
	c.ownsData = true
	return nil
}

func (c *Component) initBinder(parent *Component) error {
	p := c.plan
	if p.binder.IsZero() {
		return nil
	}
	if parent == nil {
		c.tree.warnf("%s: a root component cannot bind %q, binder ignored", p.name(), p.binder)
		return nil
	}

	b, err := reactive.BinderFor(p.binder, parent.data)
	if err != nil {
		return &BindingConfigurationError{Component: p.name(), Err: err}
	}
	c.binder = b
	if _, err := b.Get(); err != nil {
		return &BindingConfigurationError{
			Component: p.name(),
			Fields:    []FieldError{{Field: "bind", Message: fmt.Sprintf("%s does not resolve", p.binder)}},
			Err:       err,
		}
	}
	return nil
}

func (c *Component) mount(parent *Component) error {
	var pw Widget
	if parent != nil {
		pw = parent.widget
	}
	w, err := c.tree.surface.Mount(pw, c)
	if err != nil {
		return fmt.Errorf("%s: mount: %w", c.Name(), err)
	}
	c.widget = w
	return nil
}

func (c *Component) setupEvents() error {
	if c.binder != nil {
		c.observer.On(c.binder, event.Wildcard, func(event.Event) error {
			return c.refreshLocal()
		})
		if err := c.refreshLocal(); err != nil {
			return err
		}
	}

	c.stylePaths = c.style.Paths()
	c.observer.On(c.style, event.Wildcard, func(event.Event) error {
		c.stylePaths = c.style.Paths()
		return c.renderStyle()
	})
	c.observer.On(c.data, event.Wildcard, func(ev event.Event) error {
		if !affectsAny(ev.Name, c.stylePaths) {
			return nil
		}
		return c.renderStyle()
	})
	return nil
}

// Name returns the factory name.
func (c *Component) Name() string { return c.plan.factory.Name }

// Kind returns the widget kind.
func (c *Component) Kind() Kind { return c.plan.factory.Kind }

// Factory returns the declaration the component was built from.
func (c *Component) Factory() *Factory { return c.plan.factory }

// Handle returns the arena handle of the component.
func (c *Component) Handle() Handle { return c.handle }

// Tree returns the owning tree.
func (c *Component) Tree() *Tree { return c.tree }

// Data returns the data scope. Components without local data share their
// parent's scope.
func (c *Component) Data() *scope.Data { return c.data }

// Style returns the style scope.
func (c *Component) Style() *scope.Style { return c.style }

// Binder returns the two-way binder, or nil.
func (c *Component) Binder() reactive.Binder {
	if c.binder == nil {
		return nil
	}
	return c.binder
}

// Widget returns the mounted widget.
func (c *Component) Widget() Widget { return c.widget }

// Attrs returns a copy of the last rendered attributes.
func (c *Component) Attrs() map[string]interface{} { return merged(c.attrs) }

// StyleRenders returns how many times the style has been computed.
func (c *Component) StyleRenders() int { return c.renders }

// Destroyed reports whether Destroy has run.
func (c *Component) Destroyed() bool { return c.destroyed }

// Parent returns the parent component, or nil for the root.
func (c *Component) Parent() *Component {
	p, _ := c.tree.Get(c.parent)
	return p
}

// Children returns the materialized children in layout order.
func (c *Component) Children() []*Component {
	out := make([]*Component, 0, len(c.children))
	for _, h := range c.children {
		if child, ok := c.tree.Get(h); ok {
			out = append(out, child)
		}
	}
	return out
}

// Update asks every builder to resynchronize its children, re-renders
// the style, lays the children out again and recurses.
func (c *Component) Update() error {
	for _, b := range c.builders {
		if _, err := b.build(); err != nil {
			return err
		}
	}
	if err := c.renderStyle(); err != nil {
		return err
	}
	if err := c.refresh(); err != nil {
		return err
	}
	for _, child := range c.Children() {
		if child.destroyed {
			continue
		}
		if err := child.Update(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateData pushes the widget's local value into the model when it
// differs, then recurses.
func (c *Component) UpdateData() error {
	if c.binder != nil {
		if lv, ok := c.widget.(LocalValuer); ok {
			local, err := lv.GetLocal()
			if err != nil {
				return fmt.Errorf("%s: get local: %w", c.Name(), err)
			}
			model := c.binder.View()
			local = coerceLocal(local, model)
			if !expr.Equal(local, model) {
				c.tree.config.Metrics.IncrementModelWrite()
				if err := c.binder.Set(local); err != nil {
					return err
				}
			}
		}
	}
	for _, child := range c.Children() {
		if child.destroyed {
			continue
		}
		if err := child.UpdateData(); err != nil {
			return err
		}
	}
	return nil
}

// Input sets the widget's local value, as a user edit would, and writes
// it through the binder.
func (c *Component) Input(value interface{}) error {
	if lv, ok := c.widget.(LocalValuer); ok {
		if err := lv.SetLocal(value); err != nil {
			return err
		}
	}
	if c.binder == nil {
		return nil
	}
	c.tree.config.Metrics.IncrementModelWrite()
	return c.binder.Set(coerceLocal(value, c.binder.View()))
}

// Dispatch runs the action called name with the component's data view
// overlaid by payload.
func (c *Component) Dispatch(name string, payload map[string]interface{}) error {
	fn, ok := lookupAction(c, name)
	if !ok {
		return fmt.Errorf("%s: unknown action %q", c.Name(), name)
	}
	view, _ := c.data.View().(map[string]interface{})
	ctx := &ActionContext{
		Action:    name,
		Component: c,
		Data:      newActionData(merged(view, payload)),
		validate:  c.tree.config.Validator,
	}
	c.tree.config.Metrics.IncrementCustomCounter("action:" + name)
	return fn(ctx)
}

// Click dispatches the component's declared command.
func (c *Component) Click() error {
	cmd := c.plan.factory.Command
	if cmd == "" {
		return fmt.Errorf("%s: no command declared", c.Name())
	}
	return c.Dispatch(cmd, nil)
}

// Destroy tears the component and its subtree down: children first, then
// every subscription, the owned scopes and the widget. The arena slot is
// released last.
func (c *Component) Destroy() error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true

	for i := len(c.builders) - 1; i >= 0; i-- {
		c.builders[i].close()
	}
	c.builders = nil
	c.children = nil

	c.observer.Close()
	if c.binder != nil {
		c.binder.Close()
	}
	if c.ownsData && c.data != nil {
		c.data.Close()
	}
	if c.ownsStyle && c.style != nil {
		c.style.Close()
	}

	var err error
	if c.widget != nil {
		if err = c.widget.Destroy(); err != nil {
			c.tree.warnf("%s: destroy widget: %v", c.Name(), err)
		}
	}
	c.tree.release(c.handle)
	return err
}

// renderStyle computes the attributes and pushes the changed ones to the
// widget.
func (c *Component) renderStyle() error {
	attrs, err := c.computeStyle()
	if err != nil {
		c.tree.config.Metrics.IncrementStyleFailure()
		return err
	}
	c.renders++
	c.tree.config.Metrics.IncrementStyleRender()

	changed := make(map[string]interface{})
	for k, v := range attrs {
		if old, ok := c.attrs[k]; !ok || !expr.Equal(old, v) {
			changed[k] = v
		}
	}
	c.attrs = attrs
	if len(changed) == 0 {
		return nil
	}
	return c.widget.Configure(changed)
}

func (c *Component) computeStyle() (map[string]interface{}, error) {
	allowed := make(map[string]bool)
	for _, k := range c.widget.Keys() {
		allowed[k] = true
	}

	dataView := c.data.View()
	styleView, _ := c.style.View().(map[string]interface{})

	attrs := make(map[string]interface{})
	for k, v := range styleView {
		if !allowed[k] {
			continue
		}
		value, err := expr.Evaluate(v, dataView)
		if err != nil {
			return nil, fmt.Errorf("%s: style %q: %w", c.Name(), k, err)
		}
		attrs[k] = reactive.View(value)
	}

	for k, v := range attrs {
		switch v.(type) {
		case expr.Evaluable, event.Subject:
			return nil, &StyleIntegrityError{Key: k, Value: v}
		}
	}
	return attrs, nil
}

// refresh collects the builders' children and lays them out.
func (c *Component) refresh() error {
	c.children = c.children[:0]
	for _, b := range c.builders {
		c.children = append(c.children, b.handles()...)
	}

	kids := c.Children()
	fill := make([]bool, len(kids))
	widgets := make([]Widget, len(kids))
	for i, k := range kids {
		fill[i] = k.plan.factory.Fill
		widgets[i] = k.widget
	}
	a := c.plan.layout.Arrange(fill, c.plan.grid)

	if w, ok := c.widget.(Weighter); ok {
		if err := w.SetWeights(a.Rows, a.Columns); err != nil {
			return err
		}
	}
	if w, ok := c.widget.(Arranger); ok {
		if err := w.Arrange(widgets); err != nil {
			return err
		}
	}
	for i, k := range kids {
		if p, ok := k.widget.(Placer); ok {
			if err := p.Place(a.Cells[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// refreshLocal pushes the bound model value into the widget.
// coerceLocal converts the text an entry hands back to the type of the
// bound model value when it parses as one. Anything else is kept as is.
func coerceLocal(local, model interface{}) interface{} {
	text, ok := local.(string)
	if !ok {
		return local
	}
	text = strings.TrimSpace(text)
	switch model.(type) {
	case int:
		if n, err := strconv.Atoi(text); err == nil {
			return n
		}
	case int64:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case bool:
		if b, err := strconv.ParseBool(text); err == nil {
			return b
		}
	}
	return local
}

func (c *Component) refreshLocal() error {
	if c.binder == nil {
		return nil
	}
	lv, ok := c.widget.(LocalValuer)
	if !ok {
		return nil
	}
	c.tree.config.Metrics.IncrementLocalWrite()
	return lv.SetLocal(c.binder.View())
}

func (c *Component) refreshLocalTree() error {
	if err := c.refreshLocal(); err != nil {
		return err
	}
	for _, child := range c.Children() {
		if err := child.refreshLocalTree(); err != nil {
			return err
		}
	}
	return nil
}
