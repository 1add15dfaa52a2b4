// Package diff computes a SchemaDiff between a LiveSchema and a
// DesiredSchema, and the types describing that diff.
package diff

import "github.com/dbsyncengine/schemasync/schema"

// ColumnEditKind names one of the per-column edit kinds a TableDiff carries.
type ColumnEditKind string

const (
	AddColumn          ColumnEditKind = "add_column"
	DropColumn         ColumnEditKind = "drop_column"
	AlterColumnType    ColumnEditKind = "alter_column_type"
	AlterColumnNull    ColumnEditKind = "alter_column_nullable"
	AlterColumnDefault ColumnEditKind = "alter_column_default"
)

// ColumnEdit describes a single column-level change within a TableDiff.
type ColumnEdit struct {
	Kind ColumnEditKind

	// Column is always populated for AddColumn (the full new column) and
	// for the other kinds carries at least the column's Name plus the
	// new value of whichever attribute changed.
	Column schema.Column
}

// UniqueEditKind distinguishes adding from dropping a unique constraint.
type UniqueEditKind string

const (
	AddUnique  UniqueEditKind = "add_unique"
	DropUnique UniqueEditKind = "drop_unique"
)

// UniqueEdit describes one unique-constraint change, keyed by the ordered
// column tuple.
type UniqueEdit struct {
	Kind       UniqueEditKind
	Constraint schema.UniqueConstraint
}

// IndexEditKind distinguishes adding from dropping a plain index.
type IndexEditKind string

const (
	AddIndex  IndexEditKind = "add_index"
	DropIndex IndexEditKind = "drop_index"
)

// IndexEdit describes one index change, keyed by the ordered column
// tuple.
type IndexEdit struct {
	Kind  IndexEditKind
	Index schema.Index
}

// ForeignKeyEditKind distinguishes the three foreign-key edit shapes.
type ForeignKeyEditKind string

const (
	AddForeignKey   ForeignKeyEditKind = "add_foreign_key"
	DropForeignKey  ForeignKeyEditKind = "drop_foreign_key"
	AlterForeignKey ForeignKeyEditKind = "alter_foreign_key"
)

// ForeignKeyEdit describes one foreign-key change, keyed by local column
// name (there is at most one foreign key per local column).
type ForeignKeyEdit struct {
	Kind ForeignKeyEditKind

	// LocalColumn is always populated.
	LocalColumn string

	// New is the foreign key's new shape; zero value for DropForeignKey.
	New schema.ForeignKey
}

// PrimaryKeyEdit describes a primary-key replacement. Present on a
// TableDiff only when the ordered PK column list actually differs.
type PrimaryKeyEdit struct {
	// OldColumns is the primary key's current (live) column list, needed
	// to find foreign keys that reference it before it is dropped.
	OldColumns []string
	NewColumns []string
}

// TableDiff is the set of edits needed to bring one surviving table
// (present in both Live and Desired) into conformance.
type TableDiff struct {
	Name string

	ColumnEdits     []ColumnEdit
	UniqueEdits     []UniqueEdit
	IndexEdits      []IndexEdit
	ForeignKeyEdits []ForeignKeyEdit

	// PrimaryKeyEdit is nil when the PK is unchanged.
	PrimaryKeyEdit *PrimaryKeyEdit
}

// HasChanges reports whether this TableDiff carries any edit at all.
func (d *TableDiff) HasChanges() bool {
	return len(d.ColumnEdits) > 0 ||
		len(d.UniqueEdits) > 0 ||
		len(d.IndexEdits) > 0 ||
		len(d.ForeignKeyEdits) > 0 ||
		d.PrimaryKeyEdit != nil
}

// EnumEdit describes one enum-level change.
type EnumEdit struct {
	Name string

	// CreateLabels is populated for a brand-new enum (CreateEnum); it is
	// the full label sequence.
	CreateLabels []string

	// AppendLabels is populated for AddEnumValues: the labels to append,
	// in order, to the end of the existing sequence.
	AppendLabels []string

	// Drop marks this edit as DropEnum when true; CreateLabels and
	// AppendLabels are both empty in that case.
	Drop bool
}

// SchemaDiff is the complete set of edits needed to bring LiveSchema into
// conformance with DesiredSchema.
type SchemaDiff struct {
	CreateTables []*schema.Table
	DropTables   []string

	TableDiffs []*TableDiff

	EnumEdits []EnumEdit
}

// HasChanges reports whether applying this diff would issue any DDL at
// all. An idempotent run against an already-converged database produces
// a SchemaDiff for which this returns false.
func (d *SchemaDiff) HasChanges() bool {
	if len(d.CreateTables) > 0 || len(d.DropTables) > 0 || len(d.EnumEdits) > 0 {
		return true
	}
	for _, td := range d.TableDiffs {
		if td.HasChanges() {
			return true
		}
	}
	return false
}
