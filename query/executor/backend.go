package executor

import "context"

// Result reports the effect of an executed statement.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Statement is a prepared statement. Values are bound by 1-based index;
// Step advances to the next row and reports false when the result is done.
type Statement interface {
	Bind(index int, value any) error
	Step(ctx context.Context) (bool, error)
	Columns() ([]string, error)
	Scan(dest ...any) error
	Exec(ctx context.Context) (Result, error)
	Finalize() error
}

// Backend prepares statements and runs raw SQL such as DDL.
type Backend interface {
	Prepare(ctx context.Context, query string) (Statement, error)
	Exec(ctx context.Context, query string) error
}

// TxBackend is a Backend bound to an open transaction.
type TxBackend interface {
	Backend
	Commit() error
	Rollback() error
}

// Beginner is a Backend that can open transactions.
type Beginner interface {
	Begin(ctx context.Context) (TxBackend, error)
}
