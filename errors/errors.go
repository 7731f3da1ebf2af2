package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PlatformError is an error carrying a code, a human readable message,
// optional key/value context and the underlying cause.
type PlatformError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PlatformError with the same code.
func (e *PlatformError) Is(target error) bool {
	var t *PlatformError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// New creates a PlatformError with no cause.
func New(code ErrorCode, message string) *PlatformError {
	return &PlatformError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. Wrap returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWithContext wraps err with a code, message and context values.
// WrapWithContext returns nil when err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &PlatformError{
		Code:    code,
		Message: message,
		Context: ctx,
		Cause:   err,
	}
}

// WithContext returns a copy of e with key set to value.
func (e *PlatformError) WithContext(key string, value interface{}) *PlatformError {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value

	return &PlatformError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
		Cause:   e.Cause,
	}
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe *PlatformError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// IsFatal reports whether err should stop a run before any transfer starts.
func IsFatal(err error) bool {
	return fatalCodes[GetCode(err)]
}
