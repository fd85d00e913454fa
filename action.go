package livebind

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/livefir/livebind/internal/path"
)

// Action handles a command dispatched by a component, typically a button
// click.
type Action func(ctx *ActionContext) error

// ActionData is the snapshot an action reads: the component's data view
// overlaid by the dispatch payload. Entry widgets hand back strings, so
// the numeric getters also parse them.
type ActionData struct {
	values  map[string]interface{}
	encoded []byte
}

func newActionData(values map[string]interface{}) *ActionData {
	if values == nil {
		values = map[string]interface{}{}
	}
	return &ActionData{values: values}
}

// Bind decodes the snapshot into v through its JSON tags.
func (a *ActionData) Bind(v interface{}) error {
	if a.encoded == nil {
		b, err := json.Marshal(a.values)
		if err != nil {
			return fmt.Errorf("encode action data: %w", err)
		}
		a.encoded = b
	}
	return json.Unmarshal(a.encoded, v)
}

// BindAndValidate binds v and checks its validate tags. Failures come
// back as a MultiError with one entry per field.
func (a *ActionData) BindAndValidate(v interface{}, validate *validator.Validate) error {
	if err := a.Bind(v); err != nil {
		return err
	}
	if err := validate.Struct(v); err != nil {
		return ValidationToMultiError(err)
	}
	return nil
}

func (a *ActionData) Raw() map[string]interface{} { return a.values }

func (a *ActionData) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

func (a *ActionData) Get(key string) interface{} { return a.values[key] }

// GetString returns key as a string, formatting scalars; missing keys
// and containers yield "".
func (a *ActionData) GetString(key string) string {
	switch v := a.values[key].(type) {
	case nil, map[string]interface{}, []interface{}:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// GetInt returns key as an int. Strings are trimmed and parsed; anything
// unparsable is 0.
func (a *ActionData) GetInt(key string) int {
	switch v := a.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// ActionContext is passed to an Action. Data is a snapshot of the
// dispatching component's data scope merged with the dispatch payload;
// Get and Set address the live scope.
type ActionContext struct {
	Action    string
	Component *Component
	Data      *ActionData
	validate  *validator.Validate
}

// Bind is a convenience method that delegates to Data.Bind
func (c *ActionContext) Bind(v interface{}) error {
	return c.Data.Bind(v)
}

// BindAndValidate binds the payload and validates it with the tree's
// validator.
func (c *ActionContext) BindAndValidate(v interface{}) error {
	return c.Data.BindAndValidate(v, c.validate)
}

// Get reads a dotted path from the component's data scope.
func (c *ActionContext) Get(p string) (interface{}, error) {
	parsed, err := path.Parse(p)
	if err != nil {
		return nil, err
	}
	return parsed.Get(c.Component.Data())
}

// Set writes a dotted path into the component's data scope.
func (c *ActionContext) Set(p string, value interface{}) error {
	parsed, err := path.Parse(p)
	if err != nil {
		return err
	}
	return parsed.Set(c.Component.Data(), value)
}

// Actions is a map of named actions
type Actions map[string]Action

// lookupAction resolves name on c, then on each ancestor's factory, then
// in the tree-wide actions.
func lookupAction(c *Component, name string) (Action, bool) {
	for cur := c; cur != nil; cur = cur.Parent() {
		if fn, ok := cur.plan.factory.Actions[name]; ok {
			return fn, true
		}
	}
	fn, ok := c.tree.config.Actions[name]
	return fn, ok
}
