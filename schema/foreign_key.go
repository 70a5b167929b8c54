package schema

// Referential actions for ON UPDATE / ON DELETE.
const (
	ActionNoAction   = "NO ACTION"
	ActionRestrict   = "RESTRICT"
	ActionSetNull    = "SET NULL"
	ActionSetDefault = "SET DEFAULT"
	ActionCascade    = "CASCADE"
)

// ForeignKey is a table-level FOREIGN KEY constraint. The referenced table is
// named by id and resolved through the Registry when DDL is generated.
type ForeignKey struct {
	Columns    []string
	RefTable   TableID
	RefColumns []string
	OnUpdate   string
	OnDelete   string
}

func (fk *ForeignKey) apply(t *Table) { t.ForeignKeys = append(t.ForeignKeys, fk) }

// ForeignKeyDef is returned by Foreign to finish a foreign key declaration.
type ForeignKeyDef struct{ cols []string }

// Foreign starts a FOREIGN KEY over cols.
func Foreign(cols ...string) ForeignKeyDef {
	return ForeignKeyDef{cols: cols}
}

// References completes the foreign key.
func (d ForeignKeyDef) References(table TableID, cols ...string) *ForeignKey {
	return &ForeignKey{Columns: d.cols, RefTable: table, RefColumns: cols}
}

func (fk *ForeignKey) OnDeleteDo(action string) *ForeignKey {
	fk.OnDelete = action
	return fk
}

func (fk *ForeignKey) OnUpdateDo(action string) *ForeignKey {
	fk.OnUpdate = action
	return fk
}
