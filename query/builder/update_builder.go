package builder

import (
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
)

// UpdateBuilder builds an update-all statement
type UpdateBuilder struct {
	upd *ast.UpdateAll
}

// Update starts UPDATE ... SET. The target table comes from the columns
// passed to Set.
func Update() *UpdateBuilder {
	return &UpdateBuilder{upd: &ast.UpdateAll{}}
}

// Set adds column = value
func (u *UpdateBuilder) Set(col ast.Node, value any) *UpdateBuilder {
	u.upd.Set = append(u.upd.Set, ast.Assignment{Column: col, Value: node(value)})
	return u
}

// Where adds WHERE (cond)
func (u *UpdateBuilder) Where(cond ast.Node) *UpdateBuilder {
	u.upd.Clauses = append(u.upd.Clauses, &ast.Where{Cond: cond})
	return u
}

// Build returns the statement.
func (u *UpdateBuilder) Build() *ast.UpdateAll {
	return u.upd
}

// DeleteBuilder builds a delete-all statement
type DeleteBuilder struct {
	del *ast.DeleteAll
}

// Delete starts DELETE FROM table.
func Delete(table schema.TableID) *DeleteBuilder {
	return &DeleteBuilder{del: &ast.DeleteAll{Table: table}}
}

// Where adds WHERE (cond)
func (d *DeleteBuilder) Where(cond ast.Node) *DeleteBuilder {
	d.del.Clauses = append(d.del.Clauses, &ast.Where{Cond: cond})
	return d
}

// Build returns the statement.
func (d *DeleteBuilder) Build() *ast.DeleteAll {
	return d.del
}
