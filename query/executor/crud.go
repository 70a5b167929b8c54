package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/satishbabariya/sqlorm/migrate/sqlgen"
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/query/compiler"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/sqlerr"
)

// tableOf returns the table mapping T.
func tableOf[T any](e *Executor) (*schema.Table, error) {
	typ := reflect.TypeFor[T]()
	t, ok := e.Registry().TableFor(typ)
	if !ok {
		return nil, sqlerr.New(sqlerr.CodeUnknownTable, "no table maps %s", typ)
	}
	return t, nil
}

func keyOf(t *schema.Table) ([]*schema.Column, error) {
	pk := t.PrimaryKeyColumns()
	if len(pk) == 0 {
		return nil, sqlerr.New(sqlerr.CodeTableHasNoPrimaryKey, "%s", t.Name)
	}
	return pk, nil
}

// keyCondition is pk1 = ? AND pk2 = ? over ids.
func keyCondition(t *schema.Table, ids []any) (ast.Node, error) {
	pk, err := keyOf(t)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(pk) {
		return nil, fmt.Errorf("%s: expected %d key values, got %d", t.Name, len(pk), len(ids))
	}
	var cond ast.Node
	for i, col := range pk {
		eq := &ast.Binary{Op: ast.OpEq, Left: &ast.Column{Table: t.ID, Field: col.Name}, Right: &ast.Literal{Value: ids[i]}}
		if cond == nil {
			cond = eq
		} else {
			cond = &ast.Binary{Op: ast.OpAnd, Left: cond, Right: eq}
		}
	}
	return cond, nil
}

func allColumns(t *schema.Table) *ast.Columns {
	cols := &ast.Columns{}
	for _, c := range t.Columns {
		cols.Items = append(cols.Items, &ast.Column{Table: t.ID, Field: c.Name})
	}
	return cols
}

// scanInto reads the current row of stmt into obj, column by column.
func scanInto(stmt Statement, t *schema.Table, obj any) error {
	dests := make([]any, len(t.Columns))
	commits := make([]func(), len(t.Columns))
	for i, c := range t.Columns {
		ptr, commit, err := c.ScanDest(obj)
		if err != nil {
			return err
		}
		dests[i], commits[i] = ptr, commit
	}
	if err := stmt.Scan(dests...); err != nil {
		return err
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}

func insertQuery(verb string, t *schema.Table, cols []*schema.Column, obj any) (*compiler.Query, error) {
	var b strings.Builder
	b.WriteString(verb)
	b.WriteString(" INTO ")
	b.WriteString(sqlgen.QuoteTable(t.Name))
	if len(cols) == 0 {
		b.WriteString(" DEFAULT VALUES")
		return &compiler.Query{SQL: b.String()}, nil
	}
	args := make([]any, 0, len(cols))
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		v, err := c.Value(obj)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		names = append(names, sqlgen.QuoteColumn(c.Name))
	}
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	b.WriteString(")")
	return &compiler.Query{SQL: b.String(), Args: args}, nil
}

// Insert stores obj and returns its rowid. A column aliasing the rowid is
// left for the engine to assign.
func Insert[T any](ctx context.Context, e *Executor, obj *T) (int64, error) {
	t, err := tableOf[T](e)
	if err != nil {
		return 0, err
	}
	alias, hasAlias := t.RowIDAlias()
	cols := make([]*schema.Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if hasAlias && c == alias {
			continue
		}
		cols = append(cols, c)
	}
	q, err := insertQuery("INSERT", t, cols, obj)
	if err != nil {
		return 0, err
	}
	res, err := e.Run(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", t.Name, err)
	}
	return res.LastInsertID, nil
}

// Replace stores obj with every column, replacing a row with the same key.
func Replace[T any](ctx context.Context, e *Executor, obj *T) error {
	t, err := tableOf[T](e)
	if err != nil {
		return err
	}
	q, err := insertQuery("REPLACE", t, t.Columns, obj)
	if err != nil {
		return err
	}
	if _, err := e.Run(ctx, q); err != nil {
		return fmt.Errorf("replace into %s: %w", t.Name, err)
	}
	return nil
}

// Get loads the row whose primary key equals ids.
func Get[T any](ctx context.Context, e *Executor, ids ...any) (*T, error) {
	t, err := tableOf[T](e)
	if err != nil {
		return nil, err
	}
	cond, err := keyCondition(t, ids)
	if err != nil {
		return nil, err
	}
	rows, err := getAll[T](ctx, e, t, []ast.Clause{&ast.Where{Cond: cond}})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sqlerr.New(sqlerr.CodeNotFound, "%s %v", t.Name, ids)
	}
	return &rows[0], nil
}

// GetAll loads every row of T's table that matches clauses.
func GetAll[T any](ctx context.Context, e *Executor, clauses ...ast.Clause) ([]T, error) {
	t, err := tableOf[T](e)
	if err != nil {
		return nil, err
	}
	return getAll[T](ctx, e, t, clauses)
}

func getAll[T any](ctx context.Context, e *Executor, t *schema.Table, clauses []ast.Clause) ([]T, error) {
	sel := &ast.Select{Projection: allColumns(t), Clauses: clauses, TopLevel: true}
	q, err := e.compile(sel)
	if err != nil {
		return nil, err
	}
	var out []T
	err = e.each(ctx, q, func(stmt Statement) error {
		var obj T
		if err := scanInto(stmt, t, &obj); err != nil {
			return err
		}
		out = append(out, obj)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", t.Name, err)
	}
	return out, nil
}

// Update writes every non-key column of obj to the row with obj's key.
func Update[T any](ctx context.Context, e *Executor, obj *T) error {
	t, err := tableOf[T](e)
	if err != nil {
		return err
	}
	pk, err := keyOf(t)
	if err != nil {
		return err
	}
	ids := make([]any, len(pk))
	for i, c := range pk {
		if ids[i], err = c.Value(obj); err != nil {
			return err
		}
	}
	cond, err := keyCondition(t, ids)
	if err != nil {
		return err
	}
	upd := &ast.UpdateAll{Clauses: []ast.Clause{&ast.Where{Cond: cond}}}
	for _, c := range t.Columns {
		if t.IsPrimaryKey(c.Name) {
			continue
		}
		v, err := c.Value(obj)
		if err != nil {
			return err
		}
		upd.Set = append(upd.Set, ast.Assignment{
			Column: &ast.Column{Table: t.ID, Field: c.Name},
			Value:  &ast.Literal{Value: v},
		})
	}
	if len(upd.Set) == 0 {
		return nil
	}
	if _, err := e.Execute(ctx, upd); err != nil {
		return fmt.Errorf("update %s: %w", t.Name, err)
	}
	return nil
}

// Remove deletes the row whose primary key equals ids.
func Remove[T any](ctx context.Context, e *Executor, ids ...any) error {
	t, err := tableOf[T](e)
	if err != nil {
		return err
	}
	cond, err := keyCondition(t, ids)
	if err != nil {
		return err
	}
	del := &ast.DeleteAll{Table: t.ID, Clauses: []ast.Clause{&ast.Where{Cond: cond}}}
	if _, err := e.Execute(ctx, del); err != nil {
		return fmt.Errorf("remove from %s: %w", t.Name, err)
	}
	return nil
}

// RemoveAll deletes every row of T's table that matches clauses.
func RemoveAll[T any](ctx context.Context, e *Executor, clauses ...ast.Clause) (int64, error) {
	t, err := tableOf[T](e)
	if err != nil {
		return 0, err
	}
	return e.DeleteAll(ctx, &ast.DeleteAll{Table: t.ID, Clauses: clauses})
}

// Count returns the number of rows of T's table that match clauses.
func Count[T any](ctx context.Context, e *Executor, clauses ...ast.Clause) (int64, error) {
	t, err := tableOf[T](e)
	if err != nil {
		return 0, err
	}
	return e.Count(ctx, t.ID, clauses...)
}
