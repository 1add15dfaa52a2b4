package diff_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/dbsyncengine/schemasync/diff"
	"github.com/dbsyncengine/schemasync/schema"
)

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Tag: schema.Integer, Identity: true},
			{Name: "email", Tag: schema.VarChar, Length: 255},
		},
		PrimaryKey:        schema.PrimaryKey{Columns: []string{"id"}},
		UniqueConstraints: []schema.UniqueConstraint{{Columns: []string{"email"}}},
	}
}

func TestComputeAddColumn(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Tables["users"] = usersTable()

	desired := schema.New()
	dt := usersTable()
	dt.Columns = append(dt.Columns,
		schema.Column{Name: "name", Tag: schema.VarChar, Length: 100, Nullable: true},
		schema.Column{Name: "age", Tag: schema.Integer, Nullable: true},
	)
	desired.Tables["users"] = dt

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)
	c.Assert(d.TableDiffs, qt.HasLen, 1)

	var added []string
	for _, e := range d.TableDiffs[0].ColumnEdits {
		if e.Kind == diff.AddColumn {
			added = append(added, e.Column.Name)
		}
	}
	c.Assert(added, qt.DeepEquals, []string{"name", "age"})
}

func TestComputeDropColumnPreservesOthers(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	lt := usersTable()
	lt.Columns = append(lt.Columns,
		schema.Column{Name: "name", Tag: schema.VarChar, Length: 100, Nullable: true},
		schema.Column{Name: "age", Tag: schema.Integer, Nullable: true},
	)
	live.Tables["users"] = lt

	desired := schema.New()
	desired.Tables["users"] = usersTable()

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)
	c.Assert(d.TableDiffs, qt.HasLen, 1)

	var dropped []string
	for _, e := range d.TableDiffs[0].ColumnEdits {
		if e.Kind == diff.DropColumn {
			dropped = append(dropped, e.Column.Name)
		}
	}
	c.Assert(dropped, qt.DeepEquals, []string{"name", "age"})
}

func TestComputeForeignKeyRetarget(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Tables["users"] = usersTable()
	live.Tables["authors"] = &schema.Table{Name: "authors", Columns: []schema.Column{{Name: "id", Tag: schema.Integer, Identity: true}}, PrimaryKey: schema.PrimaryKey{Columns: []string{"id"}}}
	live.Tables["posts"] = &schema.Table{
		Name:        "posts",
		Columns:     []schema.Column{{Name: "id", Tag: schema.Integer, Identity: true}, {Name: "user_id", Tag: schema.Integer}},
		PrimaryKey:  schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []schema.ForeignKey{{LocalColumn: "user_id", ForeignTable: "users", ForeignColumn: "id"}},
	}

	desired := schema.New()
	desired.Tables["users"] = usersTable()
	desired.Tables["authors"] = live.Tables["authors"]
	desired.Tables["posts"] = &schema.Table{
		Name:        "posts",
		Columns:     []schema.Column{{Name: "id", Tag: schema.Integer, Identity: true}, {Name: "user_id", Tag: schema.Integer}},
		PrimaryKey:  schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []schema.ForeignKey{{LocalColumn: "user_id", ForeignTable: "authors", ForeignColumn: "id"}},
	}

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)

	var postsDiff *diff.TableDiff
	for _, td := range d.TableDiffs {
		if td.Name == "posts" {
			postsDiff = td
		}
	}
	c.Assert(postsDiff, qt.Not(qt.IsNil))
	c.Assert(postsDiff.ForeignKeyEdits, qt.HasLen, 1)
	c.Assert(postsDiff.ForeignKeyEdits[0].Kind, qt.Equals, diff.AlterForeignKey)
	c.Assert(postsDiff.ForeignKeyEdits[0].New.ForeignTable, qt.Equals, "authors")
}

func TestComputeEnumExtension(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Enums["status"] = &schema.EnumType{Name: "status", Labels: []string{"active", "inactive", "pending"}}

	desired := schema.New()
	desired.Enums["status"] = &schema.EnumType{Name: "status", Labels: []string{"active", "inactive", "pending", "completed"}}

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)
	c.Assert(d.EnumEdits, qt.HasLen, 1)
	c.Assert(d.EnumEdits[0].AppendLabels, qt.DeepEquals, []string{"completed"})
}

func TestComputeEnumLabelRemovalUnsupported(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Enums["status"] = &schema.EnumType{Name: "status", Labels: []string{"active", "inactive", "pending"}}

	desired := schema.New()
	desired.Enums["status"] = &schema.EnumType{Name: "status", Labels: []string{"active", "pending"}}

	_, err := diff.Compute(live, desired)
	c.Assert(err, qt.ErrorMatches, ".*not supported.*")
}

func TestComputeTableDropPreservesBookkeeping(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Tables["users"] = usersTable()
	live.Tables["posts"] = &schema.Table{Name: "posts", Columns: []schema.Column{{Name: "id", Tag: schema.Integer, Identity: true}}}
	live.Tables["alembic_version"] = &schema.Table{Name: "alembic_version", Columns: []schema.Column{{Name: "version_num", Tag: schema.VarChar, Length: 32}}}

	desired := schema.New()
	desired.Tables["users"] = usersTable()

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)
	c.Assert(d.DropTables, qt.DeepEquals, []string{"posts"})
}

func TestComputeIdempotentOnConvergedSchema(t *testing.T) {
	c := qt.New(t)

	live := schema.New()
	live.Tables["users"] = usersTable()
	desired := schema.New()
	desired.Tables["users"] = usersTable()

	d, err := diff.Compute(live, desired)
	c.Assert(err, qt.IsNil)
	c.Assert(d.HasChanges(), qt.IsFalse)
}
