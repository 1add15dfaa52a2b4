package syncengine_test

import (
	"context"
	"database/sql"
	"testing"

	qt "github.com/frankban/quicktest"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dbsyncengine/schemasync/schema"
	"github.com/dbsyncengine/schemasync/syncengine"
)

type testPostgresContainer struct {
	container *postgres.PostgresContainer
	dsn       string
	db        *sql.DB
}

func setupPostgres(t *testing.T) *testPostgresContainer {
	t.Helper()
	c := qt.New(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("schemasync"),
		postgres.WithUsername("schemasync"),
		postgres.WithPassword("schemasync"),
	)
	c.Assert(err, qt.IsNil)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	c.Assert(err, qt.IsNil)

	db, err := sql.Open("pgx", dsn)
	c.Assert(err, qt.IsNil)
	c.Assert(db.PingContext(ctx), qt.IsNil)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return &testPostgresContainer{container: pgContainer, dsn: dsn, db: db}
}

type userTable struct{}

func (userTable) TableName() string { return "users" }
func (userTable) ColumnDescriptors() []schema.ColumnDescriptor {
	return []schema.ColumnDescriptor{
		integrationColumn{name: "id", tag: schema.Integer, identity: true},
		integrationColumn{name: "email", tag: schema.VarChar, length: 255, unique: true},
		integrationColumn{name: "active", tag: schema.Boolean, def: "true"},
	}
}
func (userTable) PrimaryKeyColumns() []string  { return []string{"id"} }
func (userTable) CompositeUniques() [][]string { return nil }
func (userTable) CompositeIndexes() [][]string { return nil }
func (userTable) ForeignKeys() []schema.ForeignKeyDescriptor { return nil }

type integrationColumn struct {
	name     string
	tag      schema.TypeTag
	length   int
	unique   bool
	def      string
	identity bool
}

func (c integrationColumn) Name() string         { return c.name }
func (c integrationColumn) Tag() schema.TypeTag   { return c.tag }
func (c integrationColumn) Length() int          { return c.length }
func (c integrationColumn) EnumName() string     { return "" }
func (c integrationColumn) EnumLabels() []string { return nil }
func (c integrationColumn) Nullable() bool       { return false }
func (c integrationColumn) Default() string      { return c.def }
func (c integrationColumn) Identity() bool       { return c.identity }
func (c integrationColumn) Unique() bool         { return c.unique }
func (c integrationColumn) Indexed() bool        { return false }

func TestSyncCreatesTableThenConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c := qt.New(t)
	tc := setupPostgres(t)
	ctx := context.Background()
	reg := schema.Registry{"users": userTable{}}

	report, err := syncengine.Sync(ctx, reg, tc.db)
	c.Assert(err, qt.IsNil)
	c.Assert(report.TablesCreated, qt.Equals, 1)
	c.Assert(report.Statements > 0, qt.IsTrue)

	var count int
	err = tc.db.QueryRowContext(ctx, `
		SELECT count(*) FROM information_schema.columns
		WHERE table_name = 'users' AND column_name = 'email'`).Scan(&count)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, 1)

	// Running again against the now-converged database must be a no-op.
	report2, err := syncengine.Sync(ctx, reg, tc.db)
	c.Assert(err, qt.IsNil)
	c.Assert(report2.TablesCreated, qt.Equals, 0)
	c.Assert(report2.TablesAltered, qt.Equals, 0)
	c.Assert(report2.Statements, qt.Equals, 0)
}

// roleTable and roleTableWidePK describe the same "roles" table before and
// after a primary-key change: the PK starts as the single column "id" and
// widens to "(tenant_id, id)", with "assignments" holding a foreign key
// into roles.id that must survive the change. roles.id is also declared
// unique, so the foreign key still has a unique target once the primary
// key no longer covers id alone.
type roleTable struct{}

func (roleTable) TableName() string { return "roles" }
func (roleTable) ColumnDescriptors() []schema.ColumnDescriptor {
	return []schema.ColumnDescriptor{
		integrationColumn{name: "id", tag: schema.Integer, identity: true, unique: true},
		integrationColumn{name: "tenant_id", tag: schema.Integer},
		integrationColumn{name: "name", tag: schema.VarChar, length: 100},
	}
}
func (roleTable) PrimaryKeyColumns() []string                { return []string{"id"} }
func (roleTable) CompositeUniques() [][]string                { return nil }
func (roleTable) CompositeIndexes() [][]string                { return nil }
func (roleTable) ForeignKeys() []schema.ForeignKeyDescriptor { return nil }

type roleTableWidePK struct{ roleTable }

func (roleTableWidePK) PrimaryKeyColumns() []string { return []string{"tenant_id", "id"} }

type assignmentTable struct{}

func (assignmentTable) TableName() string { return "assignments" }
func (assignmentTable) ColumnDescriptors() []schema.ColumnDescriptor {
	return []schema.ColumnDescriptor{
		integrationColumn{name: "id", tag: schema.Integer, identity: true},
		integrationColumn{name: "role_id", tag: schema.Integer},
	}
}
func (assignmentTable) PrimaryKeyColumns() []string  { return []string{"id"} }
func (assignmentTable) CompositeUniques() [][]string { return nil }
func (assignmentTable) CompositeIndexes() [][]string { return nil }
func (assignmentTable) ForeignKeys() []schema.ForeignKeyDescriptor {
	return []schema.ForeignKeyDescriptor{
		integrationForeignKey{localColumn: "role_id", foreignTable: "roles", foreignColumn: "id"},
	}
}

type integrationForeignKey struct {
	localColumn   string
	foreignTable  string
	foreignColumn string
}

func (fk integrationForeignKey) LocalColumn() string   { return fk.localColumn }
func (fk integrationForeignKey) ForeignTable() string  { return fk.foreignTable }
func (fk integrationForeignKey) ForeignColumn() string { return fk.foreignColumn }

// TestSyncChangesPrimaryKeyWithDependentForeignKey exercises widening a
// table's primary key while another table holds a foreign key into one of
// its surviving columns: the dependent FK must be dropped before the old
// PK, and both the PK and the FK must come back afterward.
func TestSyncChangesPrimaryKeyWithDependentForeignKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c := qt.New(t)
	tc := setupPostgres(t)
	ctx := context.Background()

	reg := schema.Registry{"roles": roleTable{}, "assignments": assignmentTable{}}
	report, err := syncengine.Sync(ctx, reg, tc.db)
	c.Assert(err, qt.IsNil)
	c.Assert(report.TablesCreated, qt.Equals, 2)

	wideReg := schema.Registry{"roles": roleTableWidePK{roleTable{}}, "assignments": assignmentTable{}}
	report2, err := syncengine.Sync(ctx, wideReg, tc.db)
	c.Assert(err, qt.IsNil)
	c.Assert(report2.TablesAltered, qt.Equals, 1)
	c.Assert(report2.Statements > 0, qt.IsTrue)

	var pkColumns []string
	rows, err := tc.db.QueryContext(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = 'roles'::regclass AND i.indisprimary
		ORDER BY array_position(i.indkey::int2[], a.attnum)`)
	c.Assert(err, qt.IsNil)
	defer rows.Close()
	for rows.Next() {
		var name string
		c.Assert(rows.Scan(&name), qt.IsNil)
		pkColumns = append(pkColumns, name)
	}
	c.Assert(pkColumns, qt.DeepEquals, []string{"tenant_id", "id"})

	var fkCount int
	err = tc.db.QueryRowContext(ctx, `
		SELECT count(*) FROM information_schema.table_constraints
		WHERE table_name = 'assignments' AND constraint_type = 'FOREIGN KEY'`).Scan(&fkCount)
	c.Assert(err, qt.IsNil)
	c.Assert(fkCount, qt.Equals, 1)

	// Re-running against the now-widened PK must be idempotent.
	report3, err := syncengine.Sync(ctx, wideReg, tc.db)
	c.Assert(err, qt.IsNil)
	c.Assert(report3.TablesAltered, qt.Equals, 0)
	c.Assert(report3.Statements, qt.Equals, 0)
}
