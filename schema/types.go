// Package schema defines the in-memory schema representation shared by the
// reflector, the desired-schema compiler, and the differ. Identity for
// every entity in this package is by name: there is no stable column or
// constraint identifier that survives a rename.
package schema

import "sort"

// TypeTag is a logical type abstraction over SQL column types. The tag
// plus the Column's Length and EnumName must be sufficient to produce a canonical SQL type
// string for comparison between a live and a desired column.
type TypeTag string

const (
	Integer    TypeTag = "integer"
	BigInteger TypeTag = "bigint"
	Boolean    TypeTag = "boolean"
	Float      TypeTag = "float"
	Text       TypeTag = "text"
	VarChar    TypeTag = "varchar"
	EnumTag    TypeTag = "enum"
)

// Column is a single column definition, shared by Table (as built by the
// reflector or the compiler).
type Column struct {
	Name string
	Tag  TypeTag

	// Length is the VarChar(n) parameter; zero for every other tag.
	Length int

	// EnumName names the EnumType this column references; only set when
	// Tag == EnumTag.
	EnumName string

	Nullable bool

	// Default is the explicit default expression, canonicalized for
	// comparison. Empty string means "no explicit default declared".
	// Defaults produced by identity/serial machinery are never recorded
	// here even when present in the catalog.
	Default string

	// Identity marks the column as a database-managed identity/serial
	// column. An identity column has no explicit Default.
	Identity bool
}

// PrimaryKey is the ordered list of primary-key column names. An empty
// Columns slice means the table has no declared primary key.
type PrimaryKey struct {
	Columns []string
}

// columnsKey returns a stable string identity for the column tuple, used
// as a map key during diffing.
func columnsKey(cols []string) string {
	joined := ""
	for i, c := range cols {
		if i > 0 {
			joined += "\x00"
		}
		joined += c
	}
	return joined
}

// UniqueConstraint is a single- or multi-column unique constraint. Two
// constraints over the same column set in a different order are distinct
// — the ordered tuple is the identity.
type UniqueConstraint struct {
	Columns []string
}

// Key returns the unique constraint's diffing identity.
func (u UniqueConstraint) Key() string { return columnsKey(u.Columns) }

// Index is a non-unique, non-primary-key, non-unique-constraint index.
// Primary key indexes and unique constraint indexes (including unique
// indexes PostgreSQL creates implicitly to back a unique constraint) are
// never represented as an Index value — see UniqueConstraint.
type Index struct {
	Columns []string
}

// Key returns the index's diffing identity.
func (i Index) Key() string { return columnsKey(i.Columns) }

// ForeignKey is a single-column foreign key. The core does not support
// composite foreign keys.
type ForeignKey struct {
	// LocalColumn is the referencing column on the owning table. There is
	// at most one ForeignKey per LocalColumn, so LocalColumn is the
	// diffing identity.
	LocalColumn string

	ForeignTable  string
	ForeignColumn string
}

// Table is a single table definition: an ordered column sequence plus its
// keys, constraints, indexes, and foreign keys.
type Table struct {
	Name    string
	Columns []Column

	PrimaryKey        PrimaryKey
	UniqueConstraints []UniqueConstraint
	Indexes           []Index
	ForeignKeys       []ForeignKey
}

// Column looks up a column by name, returning (column, true) if found.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ForeignKeyFor looks up the foreign key declared on the given local column.
func (t *Table) ForeignKeyFor(localColumn string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.LocalColumn == localColumn {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// EnumType is a named enumerated type with an ordered, unique label
// sequence. Order is semantically significant — it is the order used by
// CREATE TYPE ... AS ENUM and by ALTER TYPE ... ADD VALUE.
type EnumType struct {
	Name   string
	Labels []string
}

// Schema is the root container: a name-keyed map of tables and a
// name-keyed map of enum types. Both maps are unordered; callers that
// need deterministic iteration should sort the keys themselves (see
// TableNames/EnumNames below).
type Schema struct {
	Tables map[string]*Table
	Enums  map[string]*EnumType
}

// New returns an empty Schema ready for population.
func New() *Schema {
	return &Schema{
		Tables: make(map[string]*Table),
		Enums:  make(map[string]*EnumType),
	}
}

// TableNames returns the table names in sorted order, for deterministic
// iteration during diffing and planning.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumNames returns the enum names in sorted order.
func (s *Schema) EnumNames() []string {
	names := make([]string, 0, len(s.Enums))
	for name := range s.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnumsReferencedBy returns the set of enum names referenced by any
// column of the given table.
func (t *Table) EnumsReferencedBy() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range t.Columns {
		if c.Tag != EnumTag || c.EnumName == "" {
			continue
		}
		if _, ok := seen[c.EnumName]; ok {
			continue
		}
		seen[c.EnumName] = struct{}{}
		names = append(names, c.EnumName)
	}
	return names
}
