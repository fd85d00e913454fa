package livebind

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/livefir/livebind/internal/errs"
)

// Error types raised by the engine. Match them with errors.As.
type (
	PathTypeError             = errs.PathTypeError
	PathParseError            = errs.PathParseError
	KeyError                  = errs.KeyError
	StructuralRangeError      = errs.StructuralRangeError
	BindingConfigurationError = errs.BindingConfigurationError
	StyleIntegrityError       = errs.StyleIntegrityError
	AliasError                = errs.AliasError
	FieldError                = errs.FieldError
)

// MultiError is a collection of field errors (implements error interface)
type MultiError []FieldError

func (m MultiError) Error() string {
	if len(m) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidationToMultiError converts go-playground/validator errors to MultiError
func ValidationToMultiError(err error) MultiError {
	var fieldErrors MultiError

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fieldErrors
	}

	for _, e := range validationErrs {
		fieldName := strings.ToLower(e.Field())

		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", e.Field())
		case "required_with":
			message = fmt.Sprintf("%s is required when %s is set", e.Field(), strings.ToLower(e.Param()))
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		case "path":
			message = fmt.Sprintf("%s must be a dotted path of identifiers and indexes", e.Field())
		case "ident":
			message = fmt.Sprintf("%s must be an identifier", e.Field())
		default:
			message = fmt.Sprintf("%s is invalid", e.Field())
		}

		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldName,
			Message: message,
		})
	}

	return fieldErrors
}

// ValidationToBindingError wraps validator errors of a declaration into a
// BindingConfigurationError. Other errors are wrapped as its cause.
func ValidationToBindingError(component string, err error) error {
	if err == nil {
		return nil
	}
	fields := ValidationToMultiError(err)
	if len(fields) == 0 {
		return &BindingConfigurationError{Component: component, Err: err}
	}
	return &BindingConfigurationError{Component: component, Fields: fields}
}
