// Package executor runs compiled statements against a Backend and maps rows
// onto declared tables.
package executor

import (
	"context"
	"fmt"

	"github.com/satishbabariya/sqlorm/internal/debug"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/schema"
)

// Executor compiles expression trees and runs them.
type Executor struct {
	backend  Backend
	compiler *compiler.Compiler
}

// New returns an executor over backend resolving tables through reg.
func New(backend Backend, reg *schema.Registry) *Executor {
	return &Executor{backend: backend, compiler: compiler.New(reg)}
}

// Backend returns the backend statements run on.
func (e *Executor) Backend() Backend {
	return e.backend
}

// Compiler returns the compiler used for expression trees.
func (e *Executor) Compiler() *compiler.Compiler {
	return e.compiler
}

// Registry returns the declared tables.
func (e *Executor) Registry() *schema.Registry {
	return e.compiler.Registry()
}

// compile renders node with identifier quotes escaped, so declared names
// containing quote characters stay valid.
func (e *Executor) compile(node ast.Node) (*compiler.Query, error) {
	return e.compiler.CompileWith(node, compiler.Options{EscapeLiterals: true})
}

// prepare prepares q and binds its arguments in order.
func (e *Executor) prepare(ctx context.Context, q *compiler.Query) (Statement, error) {
	debug.Debug("prepare", "sql", q.SQL, "args", len(q.Args))
	stmt, err := e.backend.Prepare(ctx, q.SQL)
	if err != nil {
		return nil, err
	}
	for i, arg := range q.Args {
		if err := stmt.Bind(i+1, arg); err != nil {
			stmt.Finalize()
			return nil, err
		}
	}
	return stmt, nil
}

// Run executes q and reports its effect.
func (e *Executor) Run(ctx context.Context, q *compiler.Query) (Result, error) {
	stmt, err := e.prepare(ctx, q)
	if err != nil {
		return Result{}, err
	}
	defer stmt.Finalize()
	return stmt.Exec(ctx)
}

// each calls fn once per row of q.
func (e *Executor) each(ctx context.Context, q *compiler.Query, fn func(Statement) error) error {
	stmt, err := e.prepare(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Finalize()
	for {
		ok, err := stmt.Step(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(stmt); err != nil {
			return err
		}
	}
}

// Execute compiles node and runs it as a statement without result rows.
func (e *Executor) Execute(ctx context.Context, node ast.Node) (Result, error) {
	q, err := e.compile(node)
	if err != nil {
		return Result{}, err
	}
	return e.Run(ctx, q)
}

// UpdateAll runs an update-all statement and returns the affected row count.
func (e *Executor) UpdateAll(ctx context.Context, upd *ast.UpdateAll) (int64, error) {
	res, err := e.Execute(ctx, upd)
	return res.RowsAffected, err
}

// DeleteAll runs a delete-all statement and returns the affected row count.
func (e *Executor) DeleteAll(ctx context.Context, del *ast.DeleteAll) (int64, error) {
	res, err := e.Execute(ctx, del)
	return res.RowsAffected, err
}

// Select runs sel and returns every row as raw values.
func (e *Executor) Select(ctx context.Context, sel *ast.Select) ([][]any, error) {
	q, err := e.compile(sel)
	if err != nil {
		return nil, err
	}
	var out [][]any
	err = e.each(ctx, q, func(stmt Statement) error {
		cols, err := stmt.Columns()
		if err != nil {
			return err
		}
		row := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := stmt.Scan(ptrs...); err != nil {
			return err
		}
		out = append(out, row)
		return nil
	})
	return out, err
}

// SelectValue runs sel, which must project a single column, and scans the
// first row into dest. It reports false when there is no row.
func (e *Executor) SelectValue(ctx context.Context, sel *ast.Select, dest any) (bool, error) {
	q, err := e.compile(sel)
	if err != nil {
		return false, err
	}
	found := false
	err = e.each(ctx, q, func(stmt Statement) error {
		if found {
			return nil
		}
		found = true
		return stmt.Scan(dest)
	})
	return found, err
}

// Count returns COUNT(*) over table filtered by clauses.
func (e *Executor) Count(ctx context.Context, table schema.TableID, clauses ...ast.Clause) (int64, error) {
	sel := &ast.Select{Projection: &ast.CountAll{Table: table}, Clauses: clauses, TopLevel: true}
	var n int64
	if _, err := e.SelectValue(ctx, sel, &n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
