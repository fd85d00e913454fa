// Package livebind builds trees of components whose children, attributes
// and two-way bound values are derived from a reactive data store.
//
// A tree is declared as nested *Factory values (or loaded from YAML) and
// bound to a Surface that renders widgets. Mutating the store through
// Tree.Data() re-renders exactly the affected components:
//
//	tree, err := livebind.New(surface, app, data)
//	tree.Data().Set("status", "ready") // conditional children appear
//
// Everything is synchronous and single-threaded; hosts may call Tick
// periodically to push pending widget edits into the model.
package livebind

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/livefir/livebind/internal/metrics"
	"github.com/livefir/livebind/internal/scope"
)

// Config holds the tree-wide collaborators.
type Config struct {
	Logger    *log.Logger
	Metrics   *metrics.Collector
	Actions   Actions
	Validator *validator.Validate
}

// Option is a functional option for configuring a Tree
type Option func(*Config)

// WithLogger sets the logger used for warnings
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector fed by the tree
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

// WithActions registers actions reachable from every component
func WithActions(actions Actions) Option {
	return func(c *Config) {
		c.Actions = actions
	}
}

// WithValidator sets the validator used for declarations and action payloads.
// Its "path" and "ident" rules are registered by the tree.
func WithValidator(v *validator.Validate) Option {
	return func(c *Config) {
		c.Validator = v
	}
}

// Handle identifies a component slot in its tree. A handle outlives the
// component: once the slot is reused the old handle no longer resolves.
type Handle struct {
	index int
	gen   uint32
}

// IsZero reports whether h refers to no component.
func (h Handle) IsZero() bool { return h.gen == 0 }

type slot struct {
	gen       uint32
	component *Component
}

// Tree owns every component of one hierarchy. Components are stored in an
// arena and refer to each other by Handle.
type Tree struct {
	config  Config
	surface Surface
	slots   []slot
	free    []int
	live    int
	root    Handle
}

// New compiles root and builds its component tree on surface, with data
// as the root scope.
func New(surface Surface, root *Factory, data map[string]interface{}, opts ...Option) (*Tree, error) {
	config := Config{
		Logger:  log.Default(),
		Metrics: metrics.NewCollector(),
	}

	for _, opt := range opts {
		opt(&config)
	}

	if config.Validator == nil {
		config.Validator = newValidator()
	} else {
		registerRules(config.Validator)
	}

	if surface == nil {
		return nil, fmt.Errorf("livebind.New: nil surface")
	}

	p, err := compile(root, config.Validator)
	if err != nil {
		return nil, err
	}

	t := &Tree{config: config, surface: surface}
	c, err := newComponent(t, nil, p, data, nil)
	if err != nil {
		return nil, err
	}
	t.root = c.handle
	return t, nil
}

// Root returns the root component, or nil after Close.
func (t *Tree) Root() *Component {
	c, _ := t.Get(t.root)
	return c
}

// Data returns the root data scope.
func (t *Tree) Data() *scope.Data {
	if r := t.Root(); r != nil {
		return r.data
	}
	return nil
}

// Metrics returns the collector the tree reports to.
func (t *Tree) Metrics() *metrics.Collector { return t.config.Metrics }

// Get resolves a handle.
func (t *Tree) Get(h Handle) (*Component, bool) {
	if h.IsZero() || h.index >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.index]
	if s.gen != h.gen || s.component == nil {
		return nil, false
	}
	return s.component, true
}

// Len returns the number of live components.
func (t *Tree) Len() int { return t.live }

// Find returns the live components named name, in tree order.
func (t *Tree) Find(name string) []*Component {
	var out []*Component
	var walk func(c *Component)
	walk = func(c *Component) {
		if c.Name() == name {
			out = append(out, c)
		}
		for _, child := range c.Children() {
			walk(child)
		}
	}
	if r := t.Root(); r != nil {
		walk(r)
	}
	return out
}

// Update recomputes structure and style from the root down.
func (t *Tree) Update() error {
	if r := t.Root(); r != nil {
		return r.Update()
	}
	return nil
}

// UpdateData pushes widget-local values into the model from the root down.
func (t *Tree) UpdateData() error {
	if r := t.Root(); r != nil {
		return r.UpdateData()
	}
	return nil
}

// Tick runs Update then UpdateData. Hosts call it at their own cadence.
func (t *Tree) Tick() error {
	if err := t.Update(); err != nil {
		return err
	}
	return t.UpdateData()
}

// Close destroys every component.
func (t *Tree) Close() error {
	if r := t.Root(); r != nil {
		return r.Destroy()
	}
	return nil
}

func (t *Tree) alloc(c *Component) Handle {
	var index int
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = len(t.slots)
		t.slots = append(t.slots, slot{})
	}
	s := &t.slots[index]
	s.gen++
	s.component = c
	t.live++
	t.config.Metrics.IncrementComponentCreated()
	return Handle{index: index, gen: s.gen}
}

func (t *Tree) release(h Handle) {
	if _, ok := t.Get(h); !ok {
		return
	}
	t.slots[h.index].component = nil
	t.free = append(t.free, h.index)
	t.live--
	t.config.Metrics.IncrementComponentDestroyed()
}

func (t *Tree) warnf(format string, args ...interface{}) {
	t.config.Logger.Printf("Warning: "+format, args...)
}
