// Package config provides configuration options for the schema sync engine.
//
// This package offers a simple, programmatic API for configuring schema
// comparison and migration behavior. It favors a clean Go struct with
// fluent constructors over external configuration file management.
package config

// Options contains configuration knobs for schema comparison and planning.
type Options struct {
	// WidenUniqueWithTenantColumn controls whether a column declared
	// `unique` on a table that also has an `organization_id` column
	// has its synthesized unique constraint widened into a composite
	// (column, organization_id) instead of a plain single-column unique.
	//
	// Some deployments expect this widening for multi-tenant tables, but
	// the behavior is ambiguous in general, so it defaults to false.
	WidenUniqueWithTenantColumn bool

	// TenantColumnName is the column name recognized for the widening
	// above. Defaults to "organization_id".
	TenantColumnName string
}

// DefaultOptions returns the default comparison/planning options: no
// tenant-widening behavior enabled.
func DefaultOptions() *Options {
	return &Options{
		TenantColumnName: "organization_id",
	}
}

// WithTenantWidening returns a new Options with composite-unique widening
// enabled for the given tenant column name. Passing an empty name falls
// back to "organization_id".
//
// Example:
//
//	opts := config.WithTenantWidening("organization_id")
func WithTenantWidening(tenantColumn string) *Options {
	if tenantColumn == "" {
		tenantColumn = "organization_id"
	}
	return &Options{
		WidenUniqueWithTenantColumn: true,
		TenantColumnName:            tenantColumn,
	}
}
