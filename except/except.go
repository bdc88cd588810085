// Package except implements the exception taxonomy and structured
// exception records posted to a beam's output stream on failure.
package except

import (
	"errors"
	"fmt"
)

// Code identifies the class of a failure, mirroring the RTE_* codes of
// the original reader.
type Code int32

const (
	Generic Code = iota
	Timeout
	ResourceDoesNotExist
	EmptySubset
	ParseError
	InvalidParameter
	DataInvariant
	PostFailure
)

func (c Code) String() string {
	switch c {
	case Timeout:
		return "TIMEOUT"
	case ResourceDoesNotExist:
		return "RESOURCE_DOES_NOT_EXIST"
	case EmptySubset:
		return "EMPTY_SUBSET"
	case ParseError:
		return "PARSE_ERROR"
	case InvalidParameter:
		return "INVALID_PARAMETER"
	case DataInvariant:
		return "DATA_INVARIANT"
	case PostFailure:
		return "POST_FAILURE"
	default:
		return "ERROR"
	}
}

// Level is the severity at which an Error should be logged and reported.
type Level int32

const (
	Debug Level = iota
	Info
	Warning
	Critical
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Error is the structured failure record surfaced both via Go's error
// interface and, for fatal/recoverable failures, as a wire.Exception
// posted to the output stream (see wire.Exception.Text, truncated to
// 256 bytes there).
type Error struct {
	Code  Code
	Level Level
	Text  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Level, e.Code, e.Text)
}

func New(code Code, level Level, format string, args ...any) *Error {
	return &Error{Code: code, Level: level, Text: fmt.Sprintf(format, args...)}
}

func Timeoutf(format string, args ...any) *Error {
	return New(Timeout, Critical, format, args...)
}

func ResourceNotFound(format string, args ...any) *Error {
	return New(ResourceDoesNotExist, Critical, format, args...)
}

// EmptySubsetf builds the debug-level, non-fatal "no photons inside the
// spatial filter" notice. Callers must not post this to the output
// stream (per spec, EMPTY_SUBSET is debug-level and non-surfaced) — it
// is returned purely for logging.
func EmptySubsetf(format string, args ...any) *Error {
	return New(EmptySubset, Debug, format, args...)
}

func ParseErrorf(format string, args ...any) *Error {
	return New(ParseError, Critical, format, args...)
}

func InvalidParameterf(format string, args ...any) *Error {
	return New(InvalidParameter, Critical, format, args...)
}

func DataInvariantf(format string, args ...any) *Error {
	return New(DataInvariant, Critical, format, args...)
}

func PostFailuref(format string, args ...any) *Error {
	return New(PostFailure, Warning, format, args...)
}

// As reports whether err wraps (or is) an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
