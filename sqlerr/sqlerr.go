// Package sqlerr defines the typed failures reported by the compiler, the
// executor and the schema synchronizer.
package sqlerr

import (
	"errors"
	"fmt"
)

// Code classifies an Error.
type Code int

const (
	CodeUnknown Code = iota
	CodeColumnNotFound
	CodeTableHasNoPrimaryKey
	CodeTooManyTablesSpecified
	CodeIncorrectSetFieldsSpecified
	CodeNotFound
	CodeBackend
	CodeUnknownTable
	CodeUnsafeMigration
	CodeBackupNameExhausted
)

var codeNames = map[Code]string{
	CodeUnknown:                     "unknown",
	CodeColumnNotFound:              "column not found",
	CodeTableHasNoPrimaryKey:        "table has no primary key",
	CodeTooManyTablesSpecified:      "too many tables specified",
	CodeIncorrectSetFieldsSpecified: "incorrect set fields specified",
	CodeNotFound:                    "not found",
	CodeBackend:                     "backend error",
	CodeUnknownTable:                "unknown table",
	CodeUnsafeMigration:             "unsafe migration",
	CodeBackupNameExhausted:         "backup name exhausted",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a failure carrying a Code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrColumnNotFound              = &Error{Code: CodeColumnNotFound}
	ErrTableHasNoPrimaryKey        = &Error{Code: CodeTableHasNoPrimaryKey}
	ErrTooManyTablesSpecified      = &Error{Code: CodeTooManyTablesSpecified}
	ErrIncorrectSetFieldsSpecified = &Error{Code: CodeIncorrectSetFieldsSpecified}
	ErrNotFound                    = &Error{Code: CodeNotFound}
	ErrBackend                     = &Error{Code: CodeBackend}
	ErrUnknownTable                = &Error{Code: CodeUnknownTable}
	ErrUnsafeMigration             = &Error{Code: CodeUnsafeMigration}
	ErrBackupNameExhausted         = &Error{Code: CodeBackupNameExhausted}
)

// New returns an *Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code of the first *Error in err's chain, CodeBackend for
// a *BackendError, and CodeUnknown otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var be *BackendError
	if errors.As(err, &be) {
		return CodeBackend
	}
	return CodeUnknown
}
