// Package expr implements the boolean expression language used by
// conditional children, and the text interpolation used by style values.
//
// The grammar is split-based, lowest priority first, with no parentheses:
//
//	not <expr>
//	<expr> or <expr>
//	<expr> and <expr>
//	<expr> == <expr>
//	<expr> != <expr>
//	<expr> in <expr>
//	'literal' | "literal"
//	path
//
// Each binary form splits at the first occurrence of its operator, so
// "a and b == c" is a and (b == c).
package expr

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/livefir/livebind/internal/errs"
	"github.com/livefir/livebind/internal/path"
)

// Evaluable is anything that computes a value from a data view.
type Evaluable interface {
	Evaluate(data any) (any, error)
	String() string
}

// Expression is an Evaluable that can list the paths it depends on.
type Expression interface {
	Evaluable
	Paths() []path.Path
}

var _ Expression = path.Path{}

// Not negates the truth value of its operand.
type Not struct{ Right Expression }

func (n Not) Evaluate(data any) (any, error) {
	v, err := n.Right.Evaluate(data)
	if err != nil {
		return nil, err
	}
	return !Truthy(v), nil
}

func (n Not) Paths() []path.Path { return n.Right.Paths() }
func (n Not) String() string     { return "not " + n.Right.String() }

// Binary is a two-operand node; Op selects the operator.
type Binary struct {
	Op          string
	Left, Right Expression
}

func (b Binary) Evaluate(data any) (any, error) {
	left, err := b.Left.Evaluate(data)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case "and":
		if !Truthy(left) {
			return false, nil
		}
	case "or":
		if Truthy(left) {
			return true, nil
		}
	}
	right, err := b.Right.Evaluate(data)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case "and", "or":
		return Truthy(right), nil
	case "==":
		return Equal(left, right), nil
	case "!=":
		return !Equal(left, right), nil
	case "in":
		return contains(right, left)
	}
	return nil, fmt.Errorf("unknown operator %q", b.Op)
}

func (b Binary) Paths() []path.Path {
	return append(b.Left.Paths(), b.Right.Paths()...)
}

func (b Binary) String() string {
	return b.Left.String() + " " + b.Op + " " + b.Right.String()
}

// Literal is a quoted string constant.
type Literal struct {
	Value string
	Quote byte
}

func (l Literal) Evaluate(any) (any, error) { return l.Value, nil }
func (l Literal) Paths() []path.Path        { return nil }
func (l Literal) String() string {
	q := string(l.Quote)
	if q == "\x00" || q == "" {
		q = "'"
	}
	return q + l.Value + q
}

// Const is a fixed truth value, used for conditions declared as booleans.
type Const bool

func (c Const) Evaluate(any) (any, error) { return bool(c), nil }
func (c Const) Paths() []path.Path        { return nil }
func (c Const) String() string            { return fmt.Sprint(bool(c)) }

// binaryOps is the split order, lowest priority first.
var binaryOps = []struct{ token, op string }{
	{" or ", "or"},
	{" and ", "and"},
	{"==", "=="},
	{"!=", "!="},
	{" in ", "in"},
}

// Parse compiles an expression string.
func Parse(input string) (Expression, error) {
	e, err := parse(input)
	if err != nil {
		if perr, ok := err.(*errs.PathParseError); ok && perr.Input != input {
			return nil, &errs.PathParseError{Input: input, Reason: perr.Error()}
		}
		return nil, err
	}
	return e, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(input string) Expression {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

func parse(input string) (Expression, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, &errs.PathParseError{Input: input, Reason: "empty expression"}
	}

	if strings.HasPrefix(text, "not ") {
		right, err := parse(text[len("not "):])
		if err != nil {
			return nil, err
		}
		return Not{Right: right}, nil
	}

	for _, b := range binaryOps {
		i := strings.Index(text, b.token)
		if i < 0 {
			continue
		}
		left, err := parse(text[:i])
		if err != nil {
			return nil, err
		}
		right, err := parse(text[i+len(b.token):])
		if err != nil {
			return nil, err
		}
		return Binary{Op: b.op, Left: left, Right: right}, nil
	}

	if n := len(text); n >= 2 && (text[0] == '\'' || text[0] == '"') && text[n-1] == text[0] {
		return Literal{Value: text[1 : n-1], Quote: text[0]}, nil
	}

	return path.Parse(text)
}

// Evaluate evaluates value when it is Evaluable and returns it unchanged
// otherwise.
func Evaluate(value, data any) (any, error) {
	if e, ok := value.(Evaluable); ok {
		return e.Evaluate(data)
	}
	return value, nil
}

// Truthy is the truth value of a data view: nil, false, zero numbers and
// empty strings or collections are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Equal compares two data views. Numbers compare by value regardless of
// their Go type, so 3 == 3.0 holds for data decoded from YAML or JSON.
func Equal(a, b any) bool {
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func contains(container, item any) (any, error) {
	switch c := container.(type) {
	case string:
		s, ok := item.(string)
		if !ok {
			return nil, &errs.PathTypeError{Path: "in", Want: "string", Data: item}
		}
		return strings.Contains(c, s), nil
	case []any:
		for _, v := range c {
			if Equal(v, item) {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		s, ok := item.(string)
		if !ok {
			return false, nil
		}
		_, found := c[s]
		return found, nil
	}
	return nil, &errs.PathTypeError{Path: "in", Want: "list, dict or string", Data: container}
}
