// Package compiler renders expression trees into SQL text plus the ordered
// list of values to bind to its placeholders.
package compiler

import (
	"github.com/satishbabariya/sqlorm/query/ast"
	"github.com/satishbabariya/sqlorm/schema"
)

// Query is compiled SQL with its arguments. Args[i] binds to placeholder i+1.
type Query struct {
	SQL  string
	Args []any
}

// Options are the rendering context flags.
type Options struct {
	// SuppressTableQualifier renders columns without the 'table'. prefix.
	SuppressTableQualifier bool
	// EscapeLiterals doubles quote characters inside inlined identifiers.
	EscapeLiterals bool
}

// Compiler resolves table ids through a registry. It holds no per-call
// state and may be shared between goroutines.
type Compiler struct {
	reg *schema.Registry
}

// New returns a compiler over reg.
func New(reg *schema.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// Registry returns the registry the compiler resolves tables from.
func (c *Compiler) Registry() *schema.Registry {
	return c.reg
}

// Compile renders node with default options. Identifiers are inlined as
// declared, so names containing quote characters need
// CompileWith(node, Options{EscapeLiterals: true}).
func (c *Compiler) Compile(node ast.Node) (*Query, error) {
	return c.CompileWith(node, Options{})
}

// CompileWith renders node under opts.
func (c *Compiler) CompileWith(node ast.Node, opts Options) (*Query, error) {
	r := &renderer{
		c:       c,
		noTable: opts.SuppressTableQualifier,
		escape:  opts.EscapeLiterals,
	}
	if err := r.render(node); err != nil {
		return nil, err
	}
	return &Query{SQL: r.buf.String(), Args: r.args}, nil
}
