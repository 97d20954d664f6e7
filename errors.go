package shroud

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrInvalidTag indicates a mask annotation has an invalid format or target.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnsupportedKind indicates a mask rule targets a value kind with no redacted form.
	ErrUnsupportedKind = errors.New("unsupported value kind")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrMask indicates masking of a field failed at encode time.
	ErrMask = errors.New("mask failed")
)

// ConfigError represents a descriptor configuration error.
// It wraps a sentinel error with the type and field that declared it.
type ConfigError struct {
	Err    error  // Underlying sentinel error (ErrInvalidTag, ErrUnsupportedKind)
	Type   string // Type name that declared the rule
	Field  string // Field name that triggered the error
	Detail string // Offending tag value or kind
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Detail)
	}
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("%s (field %s.%s)", msg, e.Type, e.Field)
	case e.Field != "":
		return fmt.Sprintf("%s (field %s)", msg, e.Field)
	case e.Type != "":
		return fmt.Sprintf("%s (type %s)", msg, e.Type)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransformError represents an error while encoding a single field.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrMask)
	Field     string // Field name that failed
	Operation string // Operation that failed (mask, encode)
	Cause     error  // Original error from the underlying operation
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s field %s: %v", e.Operation, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s field %s", e.Operation, e.Field)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
// Snippet carries a fragment of the offending payload when one could be extracted.
type CodecError struct {
	Err     error  // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause   error  // Original error from the codec
	Snippet string // Best-effort payload fragment, may be empty
}

func (e *CodecError) Error() string {
	msg := e.Err.Error()
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Snippet != "" {
		msg = fmt.Sprintf("%s (near %q)", msg, e.Snippet)
	}
	return msg
}

func (e *CodecError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// newConfigError creates a ConfigError for invalid declarations.
func newConfigError(sentinel error, typeName, field, detail string) error {
	return &ConfigError{
		Err:    sentinel,
		Type:   typeName,
		Field:  field,
		Detail: detail,
	}
}

// newTransformError creates a TransformError for field encode failures.
func newTransformError(sentinel error, operation, field string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Field:     field,
		Operation: operation,
		Cause:     cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) *CodecError {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
