// Package ddl defines a small dialect-agnostic AST for the DDL statements
// the Planner emits, plus a PostgreSQL Visitor implementation that
// renders that AST to SQL text.
package ddl

// Node is any AST node that can render itself through a Visitor.
type Node interface {
	Accept(v Visitor) error
}

// Visitor is implemented by each supported rendering backend. The core
// only ships a PostgreSQL implementation (see Renderer in render.go).
type Visitor interface {
	VisitCreateTable(*CreateTableNode) error
	VisitDropTable(*DropTableNode) error
	VisitAlterTable(*AlterTableNode) error
	VisitCreateType(*CreateTypeNode) error
	VisitAlterType(*AlterTypeNode) error
	VisitDropType(*DropTypeNode) error
	VisitCreateIndex(*CreateIndexNode) error
	VisitDropIndex(*DropIndexNode) error
}

// StatementList is a Node wrapping an ordered sequence of statements; its
// Accept visits each member node in order and stops at the first error.
type StatementList struct {
	Statements []Node
}

func (l *StatementList) Accept(v Visitor) error {
	for _, stmt := range l.Statements {
		if err := stmt.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// ColumnDef is a column definition embedded in a CreateTableNode.
type ColumnDef struct {
	Name          string
	Type          string // SQL type string, e.g. "character varying(255)" or a quoted enum type name
	NotNull       bool
	Default       string // rendered default expression, empty for none
	PrimaryKey    bool   // single-column inline primary key
	Identity      bool
}

// TableConstraintKind is the kind of a TableConstraint, a table-level
// constraint attached to a CreateTableNode or added/dropped via an
// AlterTableNode.
type TableConstraintKind string

const (
	PrimaryKeyConstraint TableConstraintKind = "primary_key"
	UniqueConstraintKind TableConstraintKind = "unique"
	ForeignKeyConstraint TableConstraintKind = "foreign_key"
)

type TableConstraint struct {
	Kind    TableConstraintKind
	Name    string
	Columns []string

	// Reference fields, only meaningful when Kind == ForeignKeyConstraint.
	RefTable  string
	RefColumn string
}

// CreateTableNode renders CREATE TABLE.
type CreateTableNode struct {
	Name        string
	Columns     []ColumnDef
	Constraints []TableConstraint
}

func (n *CreateTableNode) Accept(v Visitor) error { return v.VisitCreateTable(n) }

// DropTableNode renders DROP TABLE.
type DropTableNode struct {
	Name     string
	IfExists bool
	Cascade  bool
}

func (n *DropTableNode) Accept(v Visitor) error { return v.VisitDropTable(n) }

// AlterTableOpKind enumerates the ALTER TABLE sub-operations this core
// needs to emit.
type AlterTableOpKind string

const (
	OpAddColumn          AlterTableOpKind = "add_column"
	OpDropColumn         AlterTableOpKind = "drop_column"
	OpAlterColumnType    AlterTableOpKind = "alter_column_type"
	OpSetNotNull         AlterTableOpKind = "set_not_null"
	OpDropNotNull        AlterTableOpKind = "drop_not_null"
	OpSetDefault         AlterTableOpKind = "set_default"
	OpDropDefault        AlterTableOpKind = "drop_default"
	OpAddConstraint      AlterTableOpKind = "add_constraint"
	OpDropConstraint     AlterTableOpKind = "drop_constraint"
)

// AlterTableOp is a single operation within an AlterTableNode. Exactly
// the fields relevant to Kind are populated.
type AlterTableOp struct {
	Kind AlterTableOpKind

	Column     ColumnDef           // OpAddColumn
	ColumnName string              // every kind except OpAddColumn/OpAddConstraint/OpDropConstraint
	NewType    string              // OpAlterColumnType
	Default    string              // OpSetDefault
	Constraint TableConstraint     // OpAddConstraint
	ConstraintName string          // OpDropConstraint
}

// AlterTableNode renders one or more ALTER TABLE sub-clauses against a
// single table, combined into one statement.
type AlterTableNode struct {
	Table string
	Ops   []AlterTableOp
}

func (n *AlterTableNode) Accept(v Visitor) error { return v.VisitAlterTable(n) }

// CreateTypeNode renders CREATE TYPE ... AS ENUM.
type CreateTypeNode struct {
	Name   string
	Labels []string
}

func (n *CreateTypeNode) Accept(v Visitor) error { return v.VisitCreateType(n) }

// AlterTypeNode renders ALTER TYPE ... ADD VALUE, one statement per
// label (PostgreSQL does not support adding multiple values in a single
// ALTER TYPE statement before 12, and this core targets compatibility
// with the broadest set of supported servers).
type AlterTypeNode struct {
	Name         string
	AppendLabels []string
}

func (n *AlterTypeNode) Accept(v Visitor) error { return v.VisitAlterType(n) }

// DropTypeNode renders DROP TYPE.
type DropTypeNode struct {
	Name     string
	IfExists bool
}

func (n *DropTypeNode) Accept(v Visitor) error { return v.VisitDropType(n) }

// CreateIndexNode renders CREATE INDEX (never UNIQUE — unique constraints
// are rendered as table constraints, see TableConstraint).
type CreateIndexNode struct {
	Name    string
	Table   string
	Columns []string
}

func (n *CreateIndexNode) Accept(v Visitor) error { return v.VisitCreateIndex(n) }

// DropIndexNode renders DROP INDEX.
type DropIndexNode struct {
	Name     string
	IfExists bool
}

func (n *DropIndexNode) Accept(v Visitor) error { return v.VisitDropIndex(n) }
