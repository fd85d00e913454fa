package livebind

// Widget is the concrete rendering of one component.
type Widget interface {
	// Keys lists the attribute names the widget accepts. Style entries
	// outside this set are not computed.
	Keys() []string
	// Configure applies changed attributes.
	Configure(attrs map[string]interface{}) error
	// Destroy detaches the widget from its parent.
	Destroy() error
}

// LocalValuer is implemented by widgets holding a user-editable value,
// such as text entries. Components with a binder synchronize it with the
// model.
type LocalValuer interface {
	GetLocal() (interface{}, error)
	SetLocal(value interface{}) error
}

// Cell is the grid position assigned to a child by its parent's layout.
type Cell struct {
	Row    int
	Column int
	Sticky string
	PadX   int
	PadY   int
}

// Placer is implemented by widgets that can be positioned in a grid.
type Placer interface {
	Place(cell Cell) error
}

// Weighter is implemented by container widgets that distribute extra
// space between grid rows and columns.
type Weighter interface {
	SetWeights(rows, columns []int) error
}

// Arranger is implemented by container widgets that keep their children
// in the order the layout produced.
type Arranger interface {
	Arrange(children []Widget) error
}

// Surface instantiates widgets. parent is nil for the root component.
type Surface interface {
	Mount(parent Widget, c *Component) (Widget, error)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(parent Widget, c *Component) (Widget, error)

func (f SurfaceFunc) Mount(parent Widget, c *Component) (Widget, error) { return f(parent, c) }
