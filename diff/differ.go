package diff

import (
	"github.com/dbsyncengine/schemasync/internal/normalize"
	"github.com/dbsyncengine/schemasync/schema"
	"github.com/dbsyncengine/schemasync/syncerr"
)

const bookkeepingTable = "alembic_version"

// Compute compares live against desired and returns the SchemaDiff
// needed to bring live into conformance. It returns UnsupportedDiffError
// when desired would require removing or reordering an enum label.
func Compute(live, desired *schema.Schema) (*SchemaDiff, error) {
	d := &SchemaDiff{}

	if err := diffEnums(live, desired, d); err != nil {
		return nil, err
	}
	diffTables(live, desired, d)

	return d, nil
}

func diffTables(live, desired *schema.Schema, d *SchemaDiff) {
	for _, name := range desired.TableNames() {
		if _, ok := live.Tables[name]; !ok {
			d.CreateTables = append(d.CreateTables, desired.Tables[name])
		}
	}

	for _, name := range live.TableNames() {
		if name == bookkeepingTable {
			continue
		}
		if _, ok := desired.Tables[name]; !ok {
			d.DropTables = append(d.DropTables, name)
		}
	}

	for _, name := range desired.TableNames() {
		liveTable, ok := live.Tables[name]
		if !ok {
			continue
		}
		td := diffTable(liveTable, desired.Tables[name])
		if td.HasChanges() {
			d.TableDiffs = append(d.TableDiffs, td)
		}
	}
}

func diffTable(live, desired *schema.Table) *TableDiff {
	td := &TableDiff{Name: desired.Name}

	diffColumns(live, desired, td)
	diffUniques(live, desired, td)
	diffIndexes(live, desired, td)
	diffForeignKeys(live, desired, td)
	diffPrimaryKey(live, desired, td)

	return td
}

func diffColumns(live, desired *schema.Table, td *TableDiff) {
	liveCols := columnSet(live)
	desiredCols := columnSet(desired)

	for _, col := range desired.Columns {
		if _, ok := liveCols[normalize.Identifier(col.Name)]; !ok {
			td.ColumnEdits = append(td.ColumnEdits, ColumnEdit{Kind: AddColumn, Column: col})
		}
	}

	for _, col := range live.Columns {
		if _, ok := desiredCols[normalize.Identifier(col.Name)]; !ok {
			td.ColumnEdits = append(td.ColumnEdits, ColumnEdit{Kind: DropColumn, Column: schema.Column{Name: col.Name}})
		}
	}

	for _, dc := range desired.Columns {
		lc, ok := liveCols[normalize.Identifier(dc.Name)]
		if !ok {
			continue
		}

		if lc.CanonicalType() != dc.CanonicalType() {
			td.ColumnEdits = append(td.ColumnEdits, ColumnEdit{Kind: AlterColumnType, Column: dc})
		}
		if lc.Nullable != dc.Nullable {
			td.ColumnEdits = append(td.ColumnEdits, ColumnEdit{Kind: AlterColumnNull, Column: dc})
		}
		if !dc.Identity && !lc.Identity {
			if normalize.Default(lc.Default) != normalize.Default(dc.Default) {
				td.ColumnEdits = append(td.ColumnEdits, ColumnEdit{Kind: AlterColumnDefault, Column: dc})
			}
		}
	}
}

// columnSet keys columns by their case-folded name so a column the
// catalog round-trips with different case than the declared model still
// matches up instead of diffing as an unrelated add/drop pair.
func columnSet(t *schema.Table) map[string]schema.Column {
	m := make(map[string]schema.Column, len(t.Columns))
	for _, c := range t.Columns {
		m[normalize.Identifier(c.Name)] = c
	}
	return m
}

func diffUniques(live, desired *schema.Table, td *TableDiff) {
	liveSet := uniqueSet(live)
	desiredSet := uniqueSet(desired)

	for key, u := range desiredSet {
		if _, ok := liveSet[key]; !ok {
			td.UniqueEdits = append(td.UniqueEdits, UniqueEdit{Kind: AddUnique, Constraint: u})
		}
	}
	for key, u := range liveSet {
		if _, ok := desiredSet[key]; !ok {
			td.UniqueEdits = append(td.UniqueEdits, UniqueEdit{Kind: DropUnique, Constraint: u})
		}
	}
}

func uniqueSet(t *schema.Table) map[string]schema.UniqueConstraint {
	m := make(map[string]schema.UniqueConstraint, len(t.UniqueConstraints))
	for _, u := range t.UniqueConstraints {
		m[u.Key()] = u
	}
	return m
}

func diffIndexes(live, desired *schema.Table, td *TableDiff) {
	liveSet := indexSet(live)
	desiredSet := indexSet(desired)

	for key, idx := range desiredSet {
		if _, ok := liveSet[key]; !ok {
			td.IndexEdits = append(td.IndexEdits, IndexEdit{Kind: AddIndex, Index: idx})
		}
	}
	for key, idx := range liveSet {
		if _, ok := desiredSet[key]; !ok {
			td.IndexEdits = append(td.IndexEdits, IndexEdit{Kind: DropIndex, Index: idx})
		}
	}
}

func indexSet(t *schema.Table) map[string]schema.Index {
	m := make(map[string]schema.Index, len(t.Indexes))
	for _, idx := range t.Indexes {
		m[idx.Key()] = idx
	}
	return m
}

func diffForeignKeys(live, desired *schema.Table, td *TableDiff) {
	liveSet := fkSet(live)
	desiredSet := fkSet(desired)

	for col, dfk := range desiredSet {
		lfk, ok := liveSet[col]
		switch {
		case !ok:
			td.ForeignKeyEdits = append(td.ForeignKeyEdits, ForeignKeyEdit{Kind: AddForeignKey, LocalColumn: col, New: dfk})
		case lfk.ForeignTable != dfk.ForeignTable || lfk.ForeignColumn != dfk.ForeignColumn:
			td.ForeignKeyEdits = append(td.ForeignKeyEdits, ForeignKeyEdit{Kind: AlterForeignKey, LocalColumn: col, New: dfk})
		}
	}
	for col := range liveSet {
		if _, ok := desiredSet[col]; !ok {
			td.ForeignKeyEdits = append(td.ForeignKeyEdits, ForeignKeyEdit{Kind: DropForeignKey, LocalColumn: col})
		}
	}
}

func fkSet(t *schema.Table) map[string]schema.ForeignKey {
	m := make(map[string]schema.ForeignKey, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		m[normalize.Identifier(fk.LocalColumn)] = fk
	}
	return m
}

func diffPrimaryKey(live, desired *schema.Table, td *TableDiff) {
	if sameOrderedColumns(live.PrimaryKey.Columns, desired.PrimaryKey.Columns) {
		return
	}
	td.PrimaryKeyEdit = &PrimaryKeyEdit{
		OldColumns: append([]string(nil), live.PrimaryKey.Columns...),
		NewColumns: append([]string(nil), desired.PrimaryKey.Columns...),
	}
}

func sameOrderedColumns(a, b []string) bool {
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

func diffEnums(live, desired *schema.Schema, d *SchemaDiff) error {
	for _, name := range desired.EnumNames() {
		de := desired.Enums[name]
		le, ok := live.Enums[name]
		if !ok {
			d.EnumEdits = append(d.EnumEdits, EnumEdit{Name: name, CreateLabels: append([]string(nil), de.Labels...)})
			continue
		}

		edit, err := diffEnumValues(le, de)
		if err != nil {
			return err
		}
		if edit != nil {
			d.EnumEdits = append(d.EnumEdits, *edit)
		}
	}

	referenced := make(map[string]struct{})
	for _, name := range desired.TableNames() {
		for _, enumName := range desired.Tables[name].EnumsReferencedBy() {
			referenced[enumName] = struct{}{}
		}
	}
	for _, name := range live.EnumNames() {
		if _, stillReferenced := referenced[name]; stillReferenced {
			continue
		}
		if _, inDesired := desired.Enums[name]; inDesired {
			continue
		}
		d.EnumEdits = append(d.EnumEdits, EnumEdit{Name: name, Drop: true})
	}

	return nil
}

// diffEnumValues compares live's label sequence against desired's. Only a
// pure, in-order append is supported: any removal or reordering of an
// existing label is rejected as UnsupportedDiff.
func diffEnumValues(live, desired *schema.EnumType) (*EnumEdit, error) {
	if sameOrderedColumns(live.Labels, desired.Labels) {
		return nil, nil
	}

	if len(desired.Labels) < len(live.Labels) {
		return nil, syncerr.UnsupportedDiff("enum %q would need a label removed (%v -> %v); not supported", live.Name, live.Labels, desired.Labels)
	}
	for i, label := range live.Labels {
		if desired.Labels[i] != label {
			return nil, syncerr.UnsupportedDiff("enum %q would need labels reordered (%v -> %v); not supported", live.Name, live.Labels, desired.Labels)
		}
	}

	return &EnumEdit{Name: live.Name, AppendLabels: append([]string(nil), desired.Labels[len(live.Labels):]...)}, nil
}
