package schema

// TableDescriptor is the opaque shape the Desired Schema Compiler consumes
// from the caller's declarative model registry. The engine never looks
// inside the caller's own model types directly; it only ever reads through
// this interface, so any declarative schema DSL can be adapted to drive
// the engine by implementing it.
type TableDescriptor interface {
	// TableName is the table's name in the target database.
	TableName() string

	// ColumnDescriptors returns the table's columns in declaration order.
	ColumnDescriptors() []ColumnDescriptor

	// PrimaryKeyColumns returns the ordered primary key column names, or
	// nil if the table declares no primary key.
	PrimaryKeyColumns() []string

	// CompositeUniques returns the table's explicit composite unique
	// constraints (column-name tuples). Single-column uniques declared
	// via ColumnDescriptor.Unique are synthesized separately by the
	// compiler and must not be repeated here.
	CompositeUniques() [][]string

	// CompositeIndexes returns the table's explicit composite indexes
	// (column-name tuples). Single-column indexes declared via
	// ColumnDescriptor.Indexed are synthesized separately.
	CompositeIndexes() [][]string

	// ForeignKeys returns the table's foreign keys.
	ForeignKeys() []ForeignKeyDescriptor
}

// ColumnDescriptor is the opaque per-column shape the compiler consumes.
type ColumnDescriptor interface {
	Name() string
	Tag() TypeTag

	// Length is the VarChar(n) parameter; meaningless for other tags.
	Length() int

	// EnumName names the EnumType this column references; only
	// meaningful when Tag() == EnumTag.
	EnumName() string

	// EnumLabels returns the label sequence for the enum this column
	// references, in order. Only meaningful when Tag() == EnumTag; the
	// compiler uses this to populate the Schema's enum map the first
	// time a given EnumName is encountered.
	EnumLabels() []string

	Nullable() bool
	Default() string
	Identity() bool

	// Unique, when true, causes the compiler to synthesize a
	// single-column UniqueConstraint for this column, unless the column is
	// already part of an explicit composite unique. With tenant widening
	// enabled (see config.Options) the synthesized constraint also covers
	// the tenant column.
	Unique() bool

	// Indexed, when true, causes the compiler to synthesize a
	// single-column, non-unique Index for this column.
	Indexed() bool
}

// ForeignKeyDescriptor is the opaque per-foreign-key shape the compiler
// consumes.
type ForeignKeyDescriptor interface {
	LocalColumn() string
	ForeignTable() string
	ForeignColumn() string
}

// Registry maps table name to its descriptor. It is the input to the
// Desired Schema Compiler and is supplied by the caller.
type Registry map[string]TableDescriptor
