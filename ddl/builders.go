package ddl

// NewCreateTable returns an empty CreateTableNode for name, ready to have
// columns and constraints appended.
func NewCreateTable(name string) *CreateTableNode {
	return &CreateTableNode{Name: name}
}

// AddColumn appends a column definition and returns the node for
// chaining.
func (n *CreateTableNode) AddColumn(col ColumnDef) *CreateTableNode {
	n.Columns = append(n.Columns, col)
	return n
}

// AddConstraint appends a table-level constraint and returns the node for
// chaining.
func (n *CreateTableNode) AddConstraint(c TableConstraint) *CreateTableNode {
	n.Constraints = append(n.Constraints, c)
	return n
}

// NewPrimaryKeyConstraint builds a named table-level PRIMARY KEY
// constraint over one or more columns.
func NewPrimaryKeyConstraint(name string, columns ...string) TableConstraint {
	return TableConstraint{Kind: PrimaryKeyConstraint, Name: name, Columns: columns}
}

// NewUniqueConstraint builds a named UNIQUE constraint over one or more
// columns.
func NewUniqueConstraint(name string, columns ...string) TableConstraint {
	return TableConstraint{Kind: UniqueConstraintKind, Name: name, Columns: columns}
}

// NewForeignKeyConstraint builds a named FOREIGN KEY constraint.
func NewForeignKeyConstraint(name, localColumn, refTable, refColumn string) TableConstraint {
	return TableConstraint{
		Kind:      ForeignKeyConstraint,
		Name:      name,
		Columns:   []string{localColumn},
		RefTable:  refTable,
		RefColumn: refColumn,
	}
}

// NewAlterTable returns an empty AlterTableNode for table, ready to have
// operations appended.
func NewAlterTable(table string) *AlterTableNode {
	return &AlterTableNode{Table: table}
}

// Add appends an operation and returns the node for chaining.
func (n *AlterTableNode) Add(op AlterTableOp) *AlterTableNode {
	n.Ops = append(n.Ops, op)
	return n
}
