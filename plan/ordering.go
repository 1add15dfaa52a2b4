package plan

import (
	"sort"

	"github.com/dbsyncengine/schemasync/diff"
	"github.com/dbsyncengine/schemasync/schema"
)

// sortedTables returns tables in name order so plan output is
// deterministic across runs against the same diff.
func sortedTables(tables []*schema.Table) []*schema.Table {
	out := append([]*schema.Table(nil), tables...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedTableDiffs(diffs []*diff.TableDiff) []*diff.TableDiff {
	out := append([]*diff.TableDiff(nil), diffs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}

func sortedEnumCreates(edits []diff.EnumEdit) []diff.EnumEdit {
	var out []diff.EnumEdit
	for _, e := range edits {
		if !e.Drop && len(e.CreateLabels) > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedEnumAppends(edits []diff.EnumEdit) []diff.EnumEdit {
	var out []diff.EnumEdit
	for _, e := range edits {
		if !e.Drop && len(e.AppendLabels) > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedEnumDrops(edits []diff.EnumEdit) []diff.EnumEdit {
	var out []diff.EnumEdit
	for _, e := range edits {
		if e.Drop {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedColumnEdits(edits []diff.ColumnEdit) []diff.ColumnEdit {
	out := append([]diff.ColumnEdit(nil), edits...)
	sort.Slice(out, func(i, j int) bool { return out[i].Column.Name < out[j].Column.Name })
	return out
}

func sortedUniqueEdits(edits []diff.UniqueEdit) []diff.UniqueEdit {
	out := append([]diff.UniqueEdit(nil), edits...)
	sort.Slice(out, func(i, j int) bool { return out[i].Constraint.Key() < out[j].Constraint.Key() })
	return out
}

func sortedIndexEdits(edits []diff.IndexEdit) []diff.IndexEdit {
	out := append([]diff.IndexEdit(nil), edits...)
	sort.Slice(out, func(i, j int) bool { return out[i].Index.Key() < out[j].Index.Key() })
	return out
}

func sortedFKEdits(edits []diff.ForeignKeyEdit) []diff.ForeignKeyEdit {
	out := append([]diff.ForeignKeyEdit(nil), edits...)
	sort.Slice(out, func(i, j int) bool { return out[i].LocalColumn < out[j].LocalColumn })
	return out
}
