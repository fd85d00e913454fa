// Package path implements composable, reversible accessors into nested
// containers.
//
// A Path is an ordered list of steps, each addressing a map key or a list
// index. It walks plain Go values (map[string]any, []any) as well as any
// container implementing Keyed or Indexed, so the same path reads a live
// reactive store and its inert view.
package path

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/livefir/livebind/internal/errs"
)

// Keyed is a container addressed by string keys.
type Keyed interface {
	Get(key string) (any, error)
	Set(key string, value any) error
}

// Indexed is a container addressed by position.
type Indexed interface {
	At(index int) (any, error)
	SetAt(index int, value any) error
	Len() int
}

// Resolver is a value standing for another value, such as a bound
// accessor. Steps resolve it before addressing into it.
type Resolver interface {
	Resolve() (any, error)
}

// Step addresses one level of a container.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a step addressing a map key.
func Key(key string) Step { return Step{key: key} }

// Index returns a step addressing a list position.
func Index(index int) Step { return Step{index: index, isIndex: true} }

// IsIndex reports whether the step addresses a list position.
func (s Step) IsIndex() bool { return s.isIndex }

// Key returns the map key of a key step.
func (s Step) Key() string { return s.key }

// Index returns the position of an index step.
func (s Step) Index() int { return s.index }

func (s Step) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

func (s Step) want() string {
	if s.isIndex {
		return "list"
	}
	return "dict"
}

func resolve(data any) (any, error) {
	for {
		r, ok := data.(Resolver)
		if !ok {
			return data, nil
		}
		v, err := r.Resolve()
		if err != nil {
			return nil, err
		}
		data = v
	}
}

// errMismatch is returned by a single step; Path decorates it with the
// partial path.
type errMismatch struct{ data any }

func (errMismatch) Error() string { return "type mismatch" }

// Get reads the addressed slot of data.
func (s Step) Get(data any) (any, error) {
	data, err := resolve(data)
	if err != nil {
		return nil, err
	}
	if s.isIndex {
		switch d := data.(type) {
		case []any:
			if s.index < 0 || s.index >= len(d) {
				return nil, &errs.StructuralRangeError{Op: "get", Index: s.index, Length: len(d)}
			}
			return d[s.index], nil
		case Indexed:
			return d.At(s.index)
		}
		return nil, errMismatch{data}
	}
	switch d := data.(type) {
	case map[string]any:
		v, ok := d[s.key]
		if !ok {
			return nil, &errs.KeyError{Key: s.key}
		}
		return v, nil
	case Keyed:
		return d.Get(s.key)
	}
	return nil, errMismatch{data}
}

// Set writes value into the addressed slot of data.
func (s Step) Set(data, value any) error {
	data, err := resolve(data)
	if err != nil {
		return err
	}
	if s.isIndex {
		switch d := data.(type) {
		case []any:
			if s.index < 0 || s.index >= len(d) {
				return &errs.StructuralRangeError{Op: "set", Index: s.index, Length: len(d)}
			}
			d[s.index] = value
			return nil
		case Indexed:
			return d.SetAt(s.index, value)
		}
		return errMismatch{data}
	}
	switch d := data.(type) {
	case map[string]any:
		d[s.key] = value
		return nil
	case Keyed:
		return d.Set(s.key, value)
	}
	return errMismatch{data}
}

// Path is a sequence of steps. The zero Path addresses nothing and is
// rejected by Get and Set.
type Path struct {
	steps []Step
}

// New builds a path from steps.
func New(steps ...Step) Path {
	return Path{steps: append([]Step(nil), steps...)}
}

// Steps returns a copy of the steps.
func (p Path) Steps() []Step { return append([]Step(nil), p.steps...) }

// Len returns the number of steps.
func (p Path) Len() int { return len(p.steps) }

// IsZero reports whether the path has no steps.
func (p Path) IsZero() bool { return len(p.steps) == 0 }

// Last returns the final step.
func (p Path) Last() Step { return p.steps[len(p.steps)-1] }

func (p Path) String() string { return p.partial(len(p.steps) - 1) }

func (p Path) partial(i int) string {
	parts := make([]string, 0, i+1)
	for _, s := range p.steps[:i+1] {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ".")
}

// Join concatenates the steps of p and other.
func (p Path) Join(other Path) Path {
	steps := make([]Step, 0, len(p.steps)+len(other.steps))
	steps = append(steps, p.steps...)
	steps = append(steps, other.steps...)
	return Path{steps: steps}
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(other Path) bool {
	if len(p.steps) != len(other.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// Prefixes returns every leading sub-path of p, shortest first, ending
// with p itself.
func (p Path) Prefixes() []Path {
	out := make([]Path, 0, len(p.steps))
	for i := 1; i <= len(p.steps); i++ {
		out = append(out, Path{steps: p.steps[:i:i]})
	}
	return out
}

// EventName is the name of the change event a store emits for p.
func (p Path) EventName() string { return "." + p.String() }

func (p Path) decorate(i int, err error) error {
	switch e := err.(type) {
	case errMismatch:
		return &errs.PathTypeError{Path: p.partial(i), Want: p.steps[i].want(), Data: e.data}
	case *errs.KeyError:
		if e.Path == "" {
			return &errs.KeyError{Path: p.partial(i), Key: e.Key}
		}
	}
	return err
}

// Get walks the steps left to right.
func (p Path) Get(data any) (any, error) {
	if len(p.steps) == 0 {
		return nil, &errs.PathParseError{Input: "", Reason: "empty path"}
	}
	for i, step := range p.steps {
		v, err := step.Get(data)
		if err != nil {
			return nil, p.decorate(i, err)
		}
		data = v
	}
	return data, nil
}

// Set walks all but the last step, then writes value with the last one.
func (p Path) Set(data, value any) error {
	if len(p.steps) == 0 {
		return &errs.PathParseError{Input: "", Reason: "empty path"}
	}
	last := len(p.steps) - 1
	for i, step := range p.steps[:last] {
		v, err := step.Get(data)
		if err != nil {
			return p.decorate(i, err)
		}
		data = v
	}
	if err := p.steps[last].Set(data, value); err != nil {
		return p.decorate(last, err)
	}
	return nil
}

// Evaluate is Get; it lets a Path stand as an expression.
func (p Path) Evaluate(data any) (any, error) { return p.Get(data) }

// Paths returns p itself: a bare path depends only on its own value.
func (p Path) Paths() []Path { return []Path{p} }

// Parse reads the dotted shorthand: numeric segments are list indexes,
// identifiers are map keys.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, &errs.PathParseError{Input: s, Reason: "empty path"}
	}
	segments := strings.Split(s, ".")
	steps := make([]Step, 0, len(segments))
	for _, seg := range segments {
		step, err := parseStep(seg)
		if err != nil {
			return Path{}, &errs.PathParseError{Input: s, Reason: err.Error()}
		}
		steps = append(steps, step)
	}
	return Path{steps: steps}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

type segmentError string

func (e segmentError) Error() string { return string(e) }

func parseStep(seg string) (Step, error) {
	if isNumeric(seg) {
		i, err := strconv.Atoi(seg)
		if err != nil {
			return Step{}, segmentError("index " + strconv.Quote(seg) + " out of range")
		}
		return Index(i), nil
	}
	if isIdentifier(seg) {
		return Key(seg), nil
	}
	return Step{}, segmentError("invalid key " + strconv.Quote(seg) + ", should be numeric or identifier")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
