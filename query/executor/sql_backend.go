package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"

	"github.com/satishbabariya/sqlorm/sqlerr"
)

// SQLBackend implements Backend over database/sql. Prepared statements are
// cached per SQL text and shared with transactions opened from it.
type SQLBackend struct {
	db    *sql.DB
	tx    *sql.Tx
	cache *stmtCache
}

type stmtCache struct {
	mu    sync.RWMutex
	stmts map[string]*sql.Stmt
}

// NewSQLBackend wraps db.
func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{
		db:    db,
		cache: &stmtCache{stmts: make(map[string]*sql.Stmt)},
	}
}

// DB returns the underlying handle.
func (b *SQLBackend) DB() *sql.DB {
	return b.db
}

func (b *SQLBackend) cachedStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	b.cache.mu.RLock()
	stmt, ok := b.cache.stmts[query]
	b.cache.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	stmt, err := b.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	b.cache.mu.Lock()
	defer b.cache.mu.Unlock()
	if existing, ok := b.cache.stmts[query]; ok {
		stmt.Close()
		return existing, nil
	}
	b.cache.stmts[query] = stmt
	return stmt, nil
}

// Prepare implements Backend. Inside a transaction, statements are prepared
// on the transaction's connection.
func (b *SQLBackend) Prepare(ctx context.Context, query string) (Statement, error) {
	if b.tx == nil {
		stmt, err := b.cachedStmt(ctx, query)
		if err != nil {
			return nil, backendError("prepare", query, err)
		}
		return &sqlStatement{stmt: stmt, query: query}, nil
	}

	b.cache.mu.RLock()
	cached, ok := b.cache.stmts[query]
	b.cache.mu.RUnlock()
	if ok {
		return &sqlStatement{stmt: b.tx.StmtContext(ctx, cached), owned: true, query: query}, nil
	}
	stmt, err := b.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, backendError("prepare", query, err)
	}
	return &sqlStatement{stmt: stmt, owned: true, query: query}, nil
}

// Exec implements Backend.
func (b *SQLBackend) Exec(ctx context.Context, query string) error {
	var err error
	if b.tx != nil {
		_, err = b.tx.ExecContext(ctx, query)
	} else {
		_, err = b.db.ExecContext(ctx, query)
	}
	return backendError("exec", query, err)
}

// Begin implements Beginner.
func (b *SQLBackend) Begin(ctx context.Context) (TxBackend, error) {
	if b.tx != nil {
		return nil, errors.New("transaction already open")
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, backendError("begin", "", err)
	}
	return &sqlTx{SQLBackend: &SQLBackend{db: b.db, tx: tx, cache: b.cache}}, nil
}

// Close releases cached statements.
func (b *SQLBackend) Close() error {
	b.cache.mu.Lock()
	defer b.cache.mu.Unlock()
	var errs []error
	for _, stmt := range b.cache.stmts {
		errs = append(errs, stmt.Close())
	}
	b.cache.stmts = make(map[string]*sql.Stmt)
	return errors.Join(errs...)
}

type sqlTx struct {
	*SQLBackend
}

func (t *sqlTx) Commit() error {
	return backendError("commit", "", t.tx.Commit())
}

func (t *sqlTx) Rollback() error {
	return backendError("rollback", "", t.tx.Rollback())
}

type sqlStatement struct {
	stmt  *sql.Stmt
	owned bool
	query string
	args  []any
	rows  *sql.Rows
}

func (s *sqlStatement) Bind(index int, value any) error {
	if index < 1 {
		return &sqlerr.BackendError{Op: "bind", SQL: s.query, Message: fmt.Sprintf("parameter index %d out of range", index)}
	}
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = value
	return nil
}

func (s *sqlStatement) Step(ctx context.Context) (bool, error) {
	if s.rows == nil {
		rows, err := s.stmt.QueryContext(ctx, s.args...)
		if err != nil {
			return false, backendError("step", s.query, err)
		}
		s.rows = rows
	}
	if s.rows.Next() {
		return true, nil
	}
	return false, backendError("step", s.query, s.rows.Err())
}

func (s *sqlStatement) Columns() ([]string, error) {
	if s.rows == nil {
		return nil, &sqlerr.BackendError{Op: "columns", SQL: s.query, Message: "statement has not been stepped"}
	}
	return s.rows.Columns()
}

func (s *sqlStatement) Scan(dest ...any) error {
	if s.rows == nil {
		return &sqlerr.BackendError{Op: "scan", SQL: s.query, Message: "statement has not been stepped"}
	}
	return backendError("scan", s.query, s.rows.Scan(dest...))
}

func (s *sqlStatement) Exec(ctx context.Context) (Result, error) {
	res, err := s.stmt.ExecContext(ctx, s.args...)
	if err != nil {
		return Result{}, backendError("exec", s.query, err)
	}
	var out Result
	out.RowsAffected, _ = res.RowsAffected()
	out.LastInsertID, _ = res.LastInsertId()
	return out, nil
}

func (s *sqlStatement) Finalize() error {
	var errs []error
	if s.rows != nil {
		errs = append(errs, s.rows.Close())
	}
	if s.owned {
		errs = append(errs, s.stmt.Close())
	}
	return errors.Join(errs...)
}

// backendError wraps err with the engine's result code when the driver
// exposes one.
func backendError(op, query string, err error) error {
	if err == nil {
		return nil
	}
	var be *sqlerr.BackendError
	if errors.As(err, &be) {
		return be
	}
	be = &sqlerr.BackendError{Op: op, SQL: query, Message: err.Error(), Err: err}

	var liteErr sqlite3.Error
	var moderncErr *sqlite.Error
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &liteErr):
		be.Code = int(liteErr.Code)
	case errors.As(err, &moderncErr):
		be.Code = moderncErr.Code()
	case errors.As(err, &myErr):
		be.Code = int(myErr.Number)
	}
	return be
}
