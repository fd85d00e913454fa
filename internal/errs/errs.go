// Package errs defines the error types raised by the binding engine.
//
// Every type is a plain struct implementing error so callers can match it
// with errors.As. The root package re-exports them as aliases.
package errs

import (
	"fmt"
	"strings"
)

// PathTypeError reports a container type mismatch while walking a path.
// Path is the partial path up to and including the failing step.
type PathTypeError struct {
	Path string
	Want string
	Data any
}

func (e *PathTypeError) Error() string {
	return fmt.Sprintf("the data at %s has the wrong type (want %s)\ndata = %#v", e.Path, e.Want, e.Data)
}

// PathParseError reports malformed path or expression shorthand.
type PathParseError struct {
	Input  string
	Reason string
}

func (e *PathParseError) Error() string {
	return fmt.Sprintf("invalid expression %q: %s", e.Input, e.Reason)
}

// KeyError reports a key missing from a map or scope.
type KeyError struct {
	Path string
	Key  string
}

func (e *KeyError) Error() string {
	if e.Path == "" || e.Path == e.Key {
		return fmt.Sprintf("missing key %q", e.Key)
	}
	return fmt.Sprintf("missing key %q at %s", e.Key, e.Path)
}

// StructuralRangeError reports an out-of-range index or a value that is
// not present in a list.
type StructuralRangeError struct {
	Op     string
	Index  int
	Length int
	Value  any
}

func (e *StructuralRangeError) Error() string {
	if e.Op == "remove" {
		return fmt.Sprintf("remove: value %#v not in list", e.Value)
	}
	return fmt.Sprintf("%s: index %d out of range [0:%d]", e.Op, e.Index, e.Length)
}

// FieldError is one invalid field of a declaration.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BindingConfigurationError reports a declared binder, condition or
// iteration source that is invalid or inconsistent.
type BindingConfigurationError struct {
	Component string
	Fields    []FieldError
	Err       error
}

func (e *BindingConfigurationError) Error() string {
	var msgs []string
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	if e.Err != nil {
		msgs = append(msgs, e.Err.Error())
	}
	return fmt.Sprintf("%s: invalid configuration: %s", e.Component, strings.Join(msgs, "; "))
}

func (e *BindingConfigurationError) Unwrap() error { return e.Err }

// Binding builds a BindingConfigurationError for a single field.
func Binding(component, field, format string, args ...any) *BindingConfigurationError {
	return &BindingConfigurationError{
		Component: component,
		Fields:    []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}},
	}
}

// StyleIntegrityError reports an unevaluated value left in a computed
// attribute map.
type StyleIntegrityError struct {
	Key   string
	Value any
}

func (e *StyleIntegrityError) Error() string {
	return fmt.Sprintf("style error: %s=%#v should not be evaluable or reactive", e.Key, e.Value)
}

// AliasError reports an attempt to store or merge a live reactive
// container into another one. Two stores never share a subtree.
type AliasError struct {
	Op    string
	Value any
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("%s: cannot alias reactive container %T, pass a plain value", e.Op, e.Value)
}
