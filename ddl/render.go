package ddl

import (
	"fmt"
	"strings"
)

var _ Visitor = (*Renderer)(nil)

// Renderer is the PostgreSQL Visitor implementation. Unlike a
// single-buffer renderer, it accumulates one rendered SQL string per
// logical statement in Statements, so the Executor can run them
// individually and attribute a failure to the exact statement that
// produced it.
//
// Quoting matches PostgreSQL's double-quoted identifier syntax
// throughout; this core never emits an unquoted identifier.
type Renderer struct {
	Statements []string
}

// NewRenderer returns a fresh Renderer with no accumulated statements.
func NewRenderer() *Renderer { return &Renderer{} }

// Render visits node and returns every SQL statement it produced, in
// order.
func (r *Renderer) Render(node Node) ([]string, error) {
	r.Statements = nil
	if err := node.Accept(r); err != nil {
		return nil, err
	}
	return r.Statements, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return strings.Join(out, ", ")
}

func (r *Renderer) emit(stmt string) { r.Statements = append(r.Statements, stmt) }

func (r *Renderer) VisitCreateTable(n *CreateTableNode) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdent(n.Name))

	var parts []string
	for _, col := range n.Columns {
		parts = append(parts, "  "+renderColumnDef(col))
	}
	for _, c := range n.Constraints {
		parts = append(parts, "  "+renderTableConstraint(n.Name, c))
	}
	b.WriteString(strings.Join(parts, ",\n"))
	b.WriteString("\n)")

	r.emit(b.String())
	return nil
}

func renderColumnDef(col ColumnDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", quoteIdent(col.Name), col.Type)
	if col.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if col.NotNull && !col.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		fmt.Fprintf(&b, " DEFAULT %s", col.Default)
	}
	return b.String()
}

func renderTableConstraint(table string, c TableConstraint) string {
	var b strings.Builder
	switch c.Kind {
	case PrimaryKeyConstraint:
		fmt.Fprintf(&b, "CONSTRAINT %s PRIMARY KEY (%s)", quoteIdent(c.Name), quoteIdents(c.Columns))
	case UniqueConstraintKind:
		fmt.Fprintf(&b, "CONSTRAINT %s UNIQUE (%s)", quoteIdent(c.Name), quoteIdents(c.Columns))
	case ForeignKeyConstraint:
		fmt.Fprintf(&b, "CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteIdent(c.Name), quoteIdents(c.Columns), quoteIdent(c.RefTable), quoteIdent(c.RefColumn))
	}
	return b.String()
}

func (r *Renderer) VisitDropTable(n *DropTableNode) error {
	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quoteIdent(n.Name))
	if n.Cascade {
		b.WriteString(" CASCADE")
	}
	r.emit(b.String())
	return nil
}

func (r *Renderer) VisitAlterTable(n *AlterTableNode) error {
	var clauses []string
	for _, op := range n.Ops {
		clauses = append(clauses, renderAlterOp(op))
	}
	stmt := fmt.Sprintf("ALTER TABLE %s %s", quoteIdent(n.Table), strings.Join(clauses, ", "))
	r.emit(stmt)
	return nil
}

func renderAlterOp(op AlterTableOp) string {
	switch op.Kind {
	case OpAddColumn:
		return "ADD COLUMN " + renderColumnDef(op.Column)
	case OpDropColumn:
		return "DROP COLUMN " + quoteIdent(op.ColumnName)
	case OpAlterColumnType:
		return fmt.Sprintf("ALTER COLUMN %s TYPE %s", quoteIdent(op.ColumnName), op.NewType)
	case OpSetNotNull:
		return fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", quoteIdent(op.ColumnName))
	case OpDropNotNull:
		return fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", quoteIdent(op.ColumnName))
	case OpSetDefault:
		return fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", quoteIdent(op.ColumnName), op.Default)
	case OpDropDefault:
		return fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", quoteIdent(op.ColumnName))
	case OpAddConstraint:
		return "ADD " + renderTableConstraintInline(op.Constraint)
	case OpDropConstraint:
		return fmt.Sprintf("DROP CONSTRAINT %s", quoteIdent(op.ConstraintName))
	}
	return ""
}

func renderTableConstraintInline(c TableConstraint) string {
	switch c.Kind {
	case PrimaryKeyConstraint:
		return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", quoteIdent(c.Name), quoteIdents(c.Columns))
	case UniqueConstraintKind:
		return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", quoteIdent(c.Name), quoteIdents(c.Columns))
	case ForeignKeyConstraint:
		return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteIdent(c.Name), quoteIdents(c.Columns), quoteIdent(c.RefTable), quoteIdent(c.RefColumn))
	}
	return ""
}

func (r *Renderer) VisitCreateType(n *CreateTypeNode) error {
	labels := make([]string, len(n.Labels))
	for i, l := range n.Labels {
		labels[i] = "'" + strings.ReplaceAll(l, "'", "''") + "'"
	}
	r.emit(fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", quoteIdent(n.Name), strings.Join(labels, ", ")))
	return nil
}

func (r *Renderer) VisitAlterType(n *AlterTypeNode) error {
	for _, label := range n.AppendLabels {
		quoted := "'" + strings.ReplaceAll(label, "'", "''") + "'"
		r.emit(fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", quoteIdent(n.Name), quoted))
	}
	return nil
}

func (r *Renderer) VisitDropType(n *DropTypeNode) error {
	var b strings.Builder
	b.WriteString("DROP TYPE ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quoteIdent(n.Name))
	r.emit(b.String())
	return nil
}

func (r *Renderer) VisitCreateIndex(n *CreateIndexNode) error {
	r.emit(fmt.Sprintf("CREATE INDEX %s ON %s (%s)", quoteIdent(n.Name), quoteIdent(n.Table), quoteIdents(n.Columns)))
	return nil
}

func (r *Renderer) VisitDropIndex(n *DropIndexNode) error {
	var b strings.Builder
	b.WriteString("DROP INDEX ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(quoteIdent(n.Name))
	r.emit(b.String())
	return nil
}
