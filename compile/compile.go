// Package compile turns the caller's declarative schema registry into a
// DesiredSchema (schema.Schema) value. It performs no I/O: every error it
// returns is a CompilationError describing an internally inconsistent
// declarative model.
package compile

import (
	"sort"

	"github.com/dbsyncengine/schemasync/config"
	"github.com/dbsyncengine/schemasync/schema"
	"github.com/dbsyncengine/schemasync/syncerr"
)

// Compile walks reg and produces a Schema with the same shape the
// Reflector produces from a live database: every referenced enum type
// collected into the schema's enum map, every column-level `unique`
// synthesized into a single-column UniqueConstraint unless the column is
// already part of an explicit composite unique, and every composite unique
// preserved verbatim.
//
// opts may be nil, in which case config.DefaultOptions() is used; the
// only policy knob that affects compilation is
// Options.WidenUniqueWithTenantColumn (see config.WithTenantWidening).
func Compile(reg schema.Registry, opts *config.Options) (*schema.Schema, error) {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	out := schema.New()

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		desc := reg[name]
		table, err := compileTable(desc, opts)
		if err != nil {
			return nil, err
		}
		out.Tables[table.Name] = table

		for _, col := range desc.ColumnDescriptors() {
			if col.Tag() != schema.EnumTag || col.EnumName() == "" {
				continue
			}
			if existing, ok := out.Enums[col.EnumName()]; ok {
				if !sameLabels(existing.Labels, col.EnumLabels()) {
					return nil, syncerr.Compilation(
						"enum %q referenced with conflicting label sets by table %q",
						col.EnumName(), table.Name,
					)
				}
				continue
			}
			out.Enums[col.EnumName()] = &schema.EnumType{
				Name:   col.EnumName(),
				Labels: append([]string(nil), col.EnumLabels()...),
			}
		}
	}

	if err := checkForeignKeys(out); err != nil {
		return nil, err
	}

	return out, nil
}

func compileTable(desc schema.TableDescriptor, opts *config.Options) (*schema.Table, error) {
	table := &schema.Table{
		Name: desc.TableName(),
	}
	if table.Name == "" {
		return nil, syncerr.Compilation("table descriptor has an empty name")
	}

	colSet := make(map[string]struct{})
	for _, cd := range desc.ColumnDescriptors() {
		col := schema.Column{
			Name:     cd.Name(),
			Tag:      cd.Tag(),
			Length:   cd.Length(),
			EnumName: cd.EnumName(),
			Nullable: cd.Nullable(),
			Default:  cd.Default(),
			Identity: cd.Identity(),
		}
		if col.Name == "" {
			return nil, syncerr.Compilation("table %q has a column with an empty name", table.Name)
		}
		if col.Tag == schema.EnumTag && col.EnumName == "" {
			return nil, syncerr.Compilation("table %q column %q declares enum type with no enum name", table.Name, col.Name)
		}
		if col.Identity {
			col.Default = ""
		}
		colSet[col.Name] = struct{}{}
		table.Columns = append(table.Columns, col)
	}

	table.PrimaryKey = schema.PrimaryKey{Columns: append([]string(nil), desc.PrimaryKeyColumns()...)}
	for _, pkCol := range table.PrimaryKey.Columns {
		if _, ok := colSet[pkCol]; !ok {
			return nil, syncerr.Compilation("table %q primary key references undefined column %q", table.Name, pkCol)
		}
	}

	inComposite := make(map[string]struct{})
	for _, cols := range desc.CompositeUniques() {
		for _, c := range cols {
			if _, ok := colSet[c]; !ok {
				return nil, syncerr.Compilation("table %q unique constraint references undefined column %q", table.Name, c)
			}
			inComposite[c] = struct{}{}
		}
		u := schema.UniqueConstraint{Columns: append([]string(nil), cols...)}
		table.UniqueConstraints = append(table.UniqueConstraints, u)
	}

	hasTenantColumn := false
	if opts.WidenUniqueWithTenantColumn {
		_, hasTenantColumn = colSet[opts.TenantColumnName]
	}

	for _, cd := range desc.ColumnDescriptors() {
		if !cd.Unique() {
			continue
		}
		if _, already := inComposite[cd.Name()]; already {
			continue
		}
		cols := []string{cd.Name()}
		if hasTenantColumn && cd.Name() != opts.TenantColumnName {
			cols = append(cols, opts.TenantColumnName)
		}
		table.UniqueConstraints = append(table.UniqueConstraints, schema.UniqueConstraint{Columns: cols})
	}

	for _, cols := range desc.CompositeIndexes() {
		for _, c := range cols {
			if _, ok := colSet[c]; !ok {
				return nil, syncerr.Compilation("table %q index references undefined column %q", table.Name, c)
			}
		}
		table.Indexes = append(table.Indexes, schema.Index{Columns: append([]string(nil), cols...)})
	}
	for _, cd := range desc.ColumnDescriptors() {
		if !cd.Indexed() {
			continue
		}
		table.Indexes = append(table.Indexes, schema.Index{Columns: []string{cd.Name()}})
	}

	for _, fkd := range desc.ForeignKeys() {
		if _, ok := colSet[fkd.LocalColumn()]; !ok {
			return nil, syncerr.Compilation("table %q foreign key references undefined local column %q", table.Name, fkd.LocalColumn())
		}
		table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
			LocalColumn:   fkd.LocalColumn(),
			ForeignTable:  fkd.ForeignTable(),
			ForeignColumn: fkd.ForeignColumn(),
		})
	}

	return table, nil
}

func checkForeignKeys(s *schema.Schema) error {
	for _, name := range s.TableNames() {
		t := s.Tables[name]
		for _, fk := range t.ForeignKeys {
			target, ok := s.Tables[fk.ForeignTable]
			if !ok {
				return syncerr.Compilation("table %q foreign key on %q targets undefined table %q", t.Name, fk.LocalColumn, fk.ForeignTable)
			}
			if _, ok := target.Column(fk.ForeignColumn); !ok {
				return syncerr.Compilation("table %q foreign key on %q targets undefined column %q.%q",
					t.Name, fk.LocalColumn, fk.ForeignTable, fk.ForeignColumn)
			}
		}
	}
	return nil
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
