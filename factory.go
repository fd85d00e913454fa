package livebind

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/expr"
	"github.com/livefir/livebind/internal/path"
)

// Kind names the widget a component renders to.
type Kind string

const (
	KindFrame  Kind = "frame"
	KindGroup  Kind = "group"
	KindLabel  Kind = "label"
	KindButton Kind = "button"
	KindEntry  Kind = "entry"
)

// IsLeaf reports whether components of this kind cannot hold children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindLabel, KindButton, KindEntry:
		return true
	}
	return false
}

// Grid configures how a container places its children.
type Grid struct {
	Sticky string `yaml:"sticky" json:"sticky" validate:"omitempty,max=4"`
	PadX   int    `yaml:"padx" json:"padx" validate:"gte=0"`
	PadY   int    `yaml:"pady" json:"pady" validate:"gte=0"`
}

// Factory declares a component type: its widget, its local scopes, how
// many instances its parent materializes and the children it declares in
// turn.
//
// A factory with In is iterated: one instance per element of the reactive
// list at that path, each receiving {"index": i, For: element} as local
// data. A factory with If is conditional: present while the expression
// holds. If accepts nil, a bool, an expression string or an
// expr.Expression.
type Factory struct {
	Name   string `yaml:"name" validate:"required"`
	Kind   Kind   `yaml:"kind" validate:"required,oneof=frame group label button entry"`
	Layout Layout `yaml:"layout" validate:"omitempty,oneof=vertical horizontal centered-vertical centered-horizontal"`
	Fill   bool   `yaml:"fill"`
	Grid   *Grid  `yaml:"grid"`

	Style     map[string]interface{}                    `yaml:"style"`
	StyleFunc func(c *Component) map[string]interface{} `yaml:"-" validate:"-"`
	Data      map[string]interface{}                    `yaml:"data"`
	DataFunc  func(c *Component) map[string]interface{} `yaml:"-" validate:"-"`

	If   interface{} `yaml:"if"`
	For  string      `yaml:"for" validate:"required_with=In,omitempty,ident"`
	In   string      `yaml:"in" validate:"omitempty,path"`
	Bind string      `yaml:"bind" validate:"omitempty,path"`

	Command string            `yaml:"command"`
	Actions map[string]Action `yaml:"-" validate:"-"`

	Children []*Factory `yaml:"children" validate:"-"`
}

// plan is the compiled form of a Factory.
type plan struct {
	factory   *Factory
	condition expr.Expression
	// badCondition holds an If value of unsupported type; the component
	// is then never built.
	badCondition interface{}
	iterable     path.Path
	key          string
	binder       path.Path
	layout       Layout
	grid         Grid
	children     []*plan
}

func (p *plan) name() string { return p.factory.Name }

func (p *plan) iterated() bool { return !p.iterable.IsZero() }

// conditionPaths returns the data paths the condition depends on.
func (p *plan) conditionPaths() []path.Path {
	if p.condition == nil {
		return nil
	}
	return p.condition.Paths()
}

func newValidator() *validator.Validate {
	v := validator.New()
	registerRules(v)
	return v
}

// registerRules adds the declaration rules "path" and "ident".
func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("path", func(fl validator.FieldLevel) bool {
		_, err := path.Parse(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		p, err := path.Parse(fl.Field().String())
		return err == nil && p.Len() == 1 && !p.Last().IsIndex()
	})
}

// Validate checks f and its descendants without building anything.
func Validate(f *Factory) error {
	_, err := compile(f, newValidator())
	return err
}

// compile validates f and its descendants.
func compile(f *Factory, validate *validator.Validate) (*plan, error) {
	if f == nil {
		return nil, &BindingConfigurationError{Component: "<nil>", Err: fmt.Errorf("nil factory")}
	}
	if err := validate.Struct(f); err != nil {
		return nil, ValidationToBindingError(f.Name, err)
	}

	p := &plan{factory: f, key: f.For, layout: f.Layout}
	if p.layout == "" {
		p.layout = LayoutVertical
	}
	if f.Grid != nil {
		p.grid = *f.Grid
	}
	if p.grid.Sticky == "" {
		p.grid.Sticky = "nsew"
	}

	if f.Kind.IsLeaf() {
		if len(f.Children) > 0 {
			return nil, errs.Binding(f.Name, "children", "a %s cannot hold children", f.Kind)
		}
		if f.Layout != "" {
			return nil, errs.Binding(f.Name, "layout", "a %s has no layout", f.Kind)
		}
	}

	switch cond := f.If.(type) {
	case nil:
	case bool:
		p.condition = expr.Const(cond)
	case string:
		e, err := expr.Parse(cond)
		if err != nil {
			return nil, &BindingConfigurationError{Component: f.Name, Fields: []FieldError{{Field: "if", Message: err.Error()}}, Err: err}
		}
		p.condition = e
	case expr.Expression:
		p.condition = cond
	default:
		p.badCondition = f.If
	}

	var err error
	if f.In != "" {
		if p.iterable, err = path.Parse(f.In); err != nil {
			return nil, &BindingConfigurationError{Component: f.Name, Err: err}
		}
	}
	if f.Bind != "" {
		if p.binder, err = path.Parse(f.Bind); err != nil {
			return nil, &BindingConfigurationError{Component: f.Name, Err: err}
		}
	}

	for _, child := range f.Children {
		cp, err := compile(child, validate)
		if err != nil {
			return nil, err
		}
		p.children = append(p.children, cp)
	}
	return p, nil
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
