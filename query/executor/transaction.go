package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/satishbabariya/sqlorm/internal/debug"
)

// ErrTransactionsUnsupported is returned when the backend cannot begin a
// transaction.
var ErrTransactionsUnsupported = errors.New("backend does not support transactions")

// Transaction runs fn with an executor bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (e *Executor) Transaction(ctx context.Context, fn func(tx *Executor) error) (err error) {
	b, ok := e.backend.(Beginner)
	if !ok {
		return ErrTransactionsUnsupported
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Executor{backend: tx, compiler: e.compiler}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			debug.Error("rollback failed", "error", rbErr)
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
