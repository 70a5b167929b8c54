package dsl

import (
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// rawFile is the parse tree of a schema file.
type rawFile struct {
	Pos   lexer.Position
	Items []*rawItem `@@*`
}

type rawItem struct {
	Table *rawTable `  @@`
	Index *rawIndex `| @@`
}

// rawTable is
//
//	table users {
//	  id   INTEGER @primary
//	  name TEXT?
//	  @@without_rowid
//	}
type rawTable struct {
	Pos     lexer.Position
	Name    string          `"table" @Ident "{"`
	Columns []*rawColumn    `@@*`
	Attrs   []*rawBlockAttr `@@* "}"`
}

type rawColumn struct {
	Pos      lexer.Position
	Name     string           `@Ident`
	Type     string           `@Ident`
	TypeArgs []string         `( "(" @Number ( "," @Number )* ")" )?`
	Nullable bool             `@"?"?`
	Attrs    []*rawColumnAttr `@@*`
}

type rawColumnAttr struct {
	Pos  lexer.Position
	Name string      `"@" @Ident`
	Args []*rawValue `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

type rawValue struct {
	String *string `  @String`
	Number *string `| @Number`
	Ident  *string `| @Ident`
}

// rawBlockAttr is @@id(a, b), @@without_rowid or
// @@foreign(user_id) references users(id) on delete "CASCADE".
type rawBlockAttr struct {
	Pos      lexer.Position
	Name     string       `"@@" @Ident`
	Args     []string     `( "(" @Ident ( "," @Ident )* ")" )?`
	RefTable string       `( "references" @Ident`
	RefCols  []string     `  "(" @Ident ( "," @Ident )* ")"`
	Actions  []*rawAction `  @@* )?`
}

type rawAction struct {
	Event  string `"on" @( "delete" | "update" )`
	Action string `@String`
}

// rawIndex is [unique] index name on table(col, ...).
type rawIndex struct {
	Pos     lexer.Position
	Unique  bool     `@"unique"?`
	Name    string   `"index" @Ident`
	Table   string   `"on" @Ident`
	Columns []string `"(" @Ident ( "," @Ident )* ")"`
}

var parser = participle.MustBuild[rawFile](
	participle.Lexer(schemaLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

func parseRaw(filename string, r io.Reader) (*rawFile, error) {
	return parser.Parse(filename, r)
}
