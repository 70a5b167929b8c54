package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// schemaLexer tokenizes schema files.
var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Block attribute prefix must come before the field attribute prefix.
	{Name: "BlockAttr", Pattern: `@@`},
	{Name: "FieldAttr", Pattern: `@`},

	{Name: "Punct", Pattern: `[{}()\[\],?]`},

	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},

	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})
