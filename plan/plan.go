// Package plan linearizes a diff.SchemaDiff into an ordered ddl.Node
// sequence that respects enum, foreign-key, and primary-key dependency
// ordering (see the ordering rules in the Planner's contract).
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dbsyncengine/schemasync/ddl"
	"github.com/dbsyncengine/schemasync/diff"
	"github.com/dbsyncengine/schemasync/schema"
)

// Plan linearizes d into an executable statement list. desired is the
// target schema the diff was computed against; the Planner consults it
// to find the full current definition of unchanged foreign keys that
// must be dropped and restored around a referenced-column retype or a
// primary-key change.
func Plan(d *diff.SchemaDiff, desired *schema.Schema) (*ddl.StatementList, error) {
	p := &planner{desired: desired, out: &ddl.StatementList{}}
	return p.build(d)
}

type planner struct {
	desired *schema.Schema
	out     *ddl.StatementList

	// pendingFKs accumulates every foreign key that should be added only
	// after all tables and columns involved are known to exist: new
	// tables' own FKs, and any AddForeignKey/AlterForeignKey(new) edit.
	pendingFKs []ownedFK
}

type ownedFK struct {
	OwnerTable string
	FK         schema.ForeignKey
}

func (p *planner) emit(n ddl.Node) {
	p.out.Statements = append(p.out.Statements, n)
}

func (p *planner) build(d *diff.SchemaDiff) (*ddl.StatementList, error) {
	for _, edit := range sortedEnumCreates(d.EnumEdits) {
		p.emit(&ddl.CreateTypeNode{Name: edit.Name, Labels: edit.CreateLabels})
	}
	for _, edit := range sortedEnumAppends(d.EnumEdits) {
		p.emit(&ddl.AlterTypeNode{Name: edit.Name, AppendLabels: edit.AppendLabels})
	}

	for _, t := range sortedTables(d.CreateTables) {
		p.createTableDeferringFKs(t)
	}

	for _, td := range sortedTableDiffs(d.TableDiffs) {
		p.applyTableDiff(td)
	}

	for _, fk := range p.pendingFKs {
		p.emit(addForeignKeyNode(fk.OwnerTable, fk.FK))
	}

	for _, name := range sortedStrings(d.DropTables) {
		p.emit(&ddl.DropTableNode{Name: name, IfExists: true, Cascade: true})
	}

	for _, edit := range sortedEnumDrops(d.EnumEdits) {
		p.emit(&ddl.DropTypeNode{Name: edit.Name, IfExists: true})
	}

	return p.out, nil
}

func (p *planner) createTableDeferringFKs(t *schema.Table) {
	node := ddl.NewCreateTable(t.Name)
	for _, col := range t.Columns {
		node.AddColumn(columnDef(col))
	}
	if len(t.PrimaryKey.Columns) > 0 {
		node.AddConstraint(ddl.NewPrimaryKeyConstraint(primaryKeyName(t.Name), t.PrimaryKey.Columns...))
	}
	for _, u := range t.UniqueConstraints {
		node.AddConstraint(ddl.NewUniqueConstraint(uniqueConstraintName(t.Name, u.Columns), u.Columns...))
	}
	p.emit(node)

	for _, idx := range t.Indexes {
		p.emit(&ddl.CreateIndexNode{Name: indexName(t.Name, idx.Columns), Table: t.Name, Columns: idx.Columns})
	}

	for _, fk := range t.ForeignKeys {
		p.pendingFKs = append(p.pendingFKs, ownedFK{OwnerTable: t.Name, FK: fk})
	}
}

func (p *planner) applyTableDiff(td *diff.TableDiff) {
	// a. drop changed/removed foreign keys
	for _, fe := range sortedFKEdits(td.ForeignKeyEdits) {
		if fe.Kind == diff.AddForeignKey {
			continue
		}
		p.emit(dropConstraintNode(td.Name, foreignKeyName(td.Name, fe.LocalColumn)))
	}

	// b. drop removed indexes
	for _, ie := range sortedIndexEdits(td.IndexEdits) {
		if ie.Kind != diff.DropIndex {
			continue
		}
		p.emit(&ddl.DropIndexNode{Name: indexName(td.Name, ie.Index.Columns), IfExists: true})
	}

	// c. drop removed unique constraints
	for _, ue := range sortedUniqueEdits(td.UniqueEdits) {
		if ue.Kind != diff.DropUnique {
			continue
		}
		p.emit(dropConstraintNode(td.Name, uniqueConstraintName(td.Name, ue.Constraint.Columns)))
	}

	// d. primary key change: drop dependent external FKs, then the old PK
	var restorePKDependents []ownedFK
	if td.PrimaryKeyEdit != nil {
		restorePKDependents = p.dropExternalFKsReferencing(td.Name, td.PrimaryKeyEdit.OldColumns)
		p.emit(dropConstraintNode(td.Name, primaryKeyName(td.Name)))
	}

	// e. drop removed columns, after dropping any external FK referencing them
	for _, ce := range sortedColumnEdits(td.ColumnEdits) {
		if ce.Kind != diff.DropColumn {
			continue
		}
		p.dropExternalFKsReferencing(td.Name, []string{ce.Column.Name})
		p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{Kind: ddl.OpDropColumn, ColumnName: ce.Column.Name}))
	}

	// f. alter existing columns
	for _, ce := range sortedColumnEdits(td.ColumnEdits) {
		switch ce.Kind {
		case diff.AlterColumnType:
			restored := p.dropExternalFKsReferencing(td.Name, []string{ce.Column.Name})
			p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{
				Kind: ddl.OpAlterColumnType, ColumnName: ce.Column.Name, NewType: columnDef(ce.Column).Type,
			}))
			p.restoreFKs(restored)
		case diff.AlterColumnNull:
			kind := ddl.OpSetNotNull
			if ce.Column.Nullable {
				kind = ddl.OpDropNotNull
			}
			p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{Kind: kind, ColumnName: ce.Column.Name}))
		case diff.AlterColumnDefault:
			if ce.Column.Default == "" {
				p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{Kind: ddl.OpDropDefault, ColumnName: ce.Column.Name}))
			} else {
				p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{Kind: ddl.OpSetDefault, ColumnName: ce.Column.Name, Default: ce.Column.Default}))
			}
		}
	}

	// g. add new columns
	for _, ce := range sortedColumnEdits(td.ColumnEdits) {
		if ce.Kind != diff.AddColumn {
			continue
		}
		p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{Kind: ddl.OpAddColumn, Column: columnDef(ce.Column)}))
	}

	// h. add new unique constraints
	for _, ue := range sortedUniqueEdits(td.UniqueEdits) {
		if ue.Kind != diff.AddUnique {
			continue
		}
		p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{
			Kind:       ddl.OpAddConstraint,
			Constraint: ddl.NewUniqueConstraint(uniqueConstraintName(td.Name, ue.Constraint.Columns), ue.Constraint.Columns...),
		}))
	}

	// i. add new indexes
	for _, ie := range sortedIndexEdits(td.IndexEdits) {
		if ie.Kind != diff.AddIndex {
			continue
		}
		p.emit(&ddl.CreateIndexNode{Name: indexName(td.Name, ie.Index.Columns), Table: td.Name, Columns: ie.Index.Columns})
	}

	// j. primary key restore + restore FKs that depended on the old PK
	if td.PrimaryKeyEdit != nil {
		p.emit(ddl.NewAlterTable(td.Name).Add(ddl.AlterTableOp{
			Kind:       ddl.OpAddConstraint,
			Constraint: ddl.NewPrimaryKeyConstraint(primaryKeyName(td.Name), td.PrimaryKeyEdit.NewColumns...),
		}))
		p.restoreFKs(restorePKDependents)
	}

	// k. add/restore this table's own changed foreign keys, deferred to
	// the global pass so every table exists first.
	for _, fe := range sortedFKEdits(td.ForeignKeyEdits) {
		if fe.Kind == diff.DropForeignKey {
			continue
		}
		p.pendingFKs = append(p.pendingFKs, ownedFK{OwnerTable: td.Name, FK: fe.New})
	}
}

// dropExternalFKsReferencing finds every foreign key, owned by any table
// other than table itself, that targets one of columns on table, emits
// the DROP CONSTRAINT for each, and returns them so the caller can
// restore them once the dependency has been satisfied.
func (p *planner) dropExternalFKsReferencing(table string, columns []string) []ownedFK {
	targets := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		targets[c] = struct{}{}
	}

	var found []ownedFK
	for _, ownerName := range p.desired.TableNames() {
		owner := p.desired.Tables[ownerName]
		for _, fk := range owner.ForeignKeys {
			if fk.ForeignTable != table {
				continue
			}
			if _, ok := targets[fk.ForeignColumn]; !ok {
				continue
			}
			found = append(found, ownedFK{OwnerTable: ownerName, FK: fk})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].OwnerTable != found[j].OwnerTable {
			return found[i].OwnerTable < found[j].OwnerTable
		}
		return found[i].FK.LocalColumn < found[j].FK.LocalColumn
	})

	for _, f := range found {
		p.emit(dropConstraintNode(f.OwnerTable, foreignKeyName(f.OwnerTable, f.FK.LocalColumn)))
	}
	return found
}

func (p *planner) restoreFKs(fks []ownedFK) {
	for _, f := range fks {
		p.emit(addForeignKeyNode(f.OwnerTable, f.FK))
	}
}

func addForeignKeyNode(owner string, fk schema.ForeignKey) *ddl.AlterTableNode {
	return ddl.NewAlterTable(owner).Add(ddl.AlterTableOp{
		Kind: ddl.OpAddConstraint,
		Constraint: ddl.NewForeignKeyConstraint(
			foreignKeyName(owner, fk.LocalColumn), fk.LocalColumn, fk.ForeignTable, fk.ForeignColumn,
		),
	})
}

func dropConstraintNode(table, constraintName string) *ddl.AlterTableNode {
	return ddl.NewAlterTable(table).Add(ddl.AlterTableOp{Kind: ddl.OpDropConstraint, ConstraintName: constraintName})
}

func columnDef(c schema.Column) ddl.ColumnDef {
	typ := c.CanonicalType()
	if c.Tag == schema.EnumTag {
		// The canonical enum form is a comparison key, not SQL; an enum
		// column is declared with the enum type's quoted name.
		typ = `"` + strings.ReplaceAll(c.EnumName, `"`, `""`) + `"`
	}
	return ddl.ColumnDef{
		Name:     c.Name,
		Type:     typ,
		NotNull:  !c.Nullable,
		Default:  c.Default,
		Identity: c.Identity,
	}
}

func primaryKeyName(table string) string { return fmt.Sprintf("pk_%s", table) }

func foreignKeyName(table, localColumn string) string {
	return fmt.Sprintf("fk_%s_%s", table, localColumn)
}

func uniqueConstraintName(table string, columns []string) string {
	return fmt.Sprintf("uq_%s_%s", table, strings.Join(columns, "_"))
}

func indexName(table string, columns []string) string {
	return fmt.Sprintf("idx_%s_%s", table, strings.Join(columns, "_"))
}
