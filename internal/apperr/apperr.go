package apperr

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure. Handlers map codes to HTTP status;
// everything that is not an *Error is treated as unexpected.
type Code int

const (
	CodeValidation Code = iota
	CodeUnsupportedMediaType
	CodePayloadTooLarge
	CodeNotFound
	CodeGone
	CodeForbidden
	CodeFileMissing
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func UnsupportedMediaType(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedMediaType, Message: fmt.Sprintf(format, args...)}
}

func PayloadTooLarge(format string, args ...any) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Gone(format string, args ...any) *Error {
	return &Error{Code: CodeGone, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

func FileMissing(format string, args ...any) *Error {
	return &Error{Code: CodeFileMissing, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of err if it is (or wraps) a domain error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
