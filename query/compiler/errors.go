package compiler

import (
	"errors"

	"github.com/satishbabariya/sqlorm/sqlerr"
)

var (
	ErrUnsupportedQuery  = errors.New("unsupported query type")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrCompilationFailed = errors.New("query compilation failed")
)

func columnNotFound(format string, args ...any) error {
	return sqlerr.New(sqlerr.CodeColumnNotFound, format, args...)
}
