package coinscrape

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// EPATTERN means a locator pattern had no match in the raw page.
	EPATTERN = "pattern_not_found"
	// EELEMENT means the pattern matched text but no element satisfies
	// the selector derived from it.
	EELEMENT = "element_not_found"
	// ETRAVERSAL means a relation path walked past a root, the last
	// child or the last sibling.
	ETRAVERSAL = "traversal_out_of_bounds"
	// EFETCH is a network or navigation failure for a single page.
	EFETCH = "fetch_failure"
	// ETIMEOUT is a fetch or task that ran past its deadline.
	ETIMEOUT = "timeout"
	// ECONFIG is malformed configuration or content that does not have
	// the shape the configuration promised (e.g. unparsable numbers).
	ECONFIG = "configuration_invalid"
	// ERENDERER means the rendering process cannot be reached. It is
	// fatal for the whole run.
	ERENDERER = "renderer_unavailable"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that keeps err as its cause.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// IsFatal reports whether err must abort the whole run rather than a
// single task.
func IsFatal(err error) bool {
	return ErrorCode(err) == ERENDERER
}
