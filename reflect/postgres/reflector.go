// Package postgres implements the Catalog Reflector: it queries a live
// PostgreSQL database's information_schema and pg_catalog views and
// produces a schema.Schema ("LiveSchema") with the same shape the
// compile package produces from the caller's declarative model.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dbsyncengine/schemasync/internal/normalize"
	"github.com/dbsyncengine/schemasync/schema"
	"github.com/dbsyncengine/schemasync/syncerr"
)

// bookkeepingTable is the persisted migration-bookkeeping table the
// Reflector never reports and the rest of the engine never drops.
const bookkeepingTable = "alembic_version"

// Reflector reads the live schema of one PostgreSQL namespace.
type Reflector struct {
	db     *sql.DB
	schema string
	log    *slog.Logger
}

// New returns a Reflector bound to db, restricted to the given
// namespace. An empty namespace defaults to "public".
func New(db *sql.DB, namespace string) *Reflector {
	if namespace == "" {
		namespace = "public"
	}
	return &Reflector{db: db, schema: namespace, log: slog.Default()}
}

// WithLogger returns a copy of the Reflector logging through log instead
// of slog.Default().
func (r *Reflector) WithLogger(log *slog.Logger) *Reflector {
	clone := *r
	clone.log = log
	return &clone
}

// ReadSchema reads the complete live schema: tables with their columns,
// primary keys, unique constraints, non-unique indexes, and foreign
// keys, plus every user-defined enum type with its ordered labels.
func (r *Reflector) ReadSchema(ctx context.Context) (*schema.Schema, error) {
	out := schema.New()

	enums, err := r.readEnums(ctx)
	if err != nil {
		return nil, err
	}
	out.Enums = enums

	tableNames, err := r.readTableNames(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range tableNames {
		table, err := r.readTable(ctx, name)
		if err != nil {
			return nil, err
		}
		out.Tables[name] = table
		r.log.Debug("reflected table", "table", name, "columns", len(table.Columns))
	}

	r.log.Info("reflected schema", "tables", len(out.Tables), "enums", len(out.Enums))
	return out, nil
}

func (r *Reflector) readTableNames(ctx context.Context) ([]string, error) {
	const q = `
		SELECT t.table_name
		FROM information_schema.tables t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		AND t.table_name <> $2
		ORDER BY t.table_name`

	rows, err := r.db.QueryContext(ctx, q, r.schema, bookkeepingTable)
	if err != nil {
		return nil, syncerr.Reflection("", "", fmt.Errorf("query tables: %w", err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, syncerr.Reflection("", "", fmt.Errorf("scan table name: %w", err))
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Reflector) readTable(ctx context.Context, name string) (*schema.Table, error) {
	table := &schema.Table{Name: name}

	cols, err := r.readColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	table.Columns = cols

	pk, err := r.readPrimaryKey(ctx, name)
	if err != nil {
		return nil, err
	}
	table.PrimaryKey = pk

	uniques, indexes, err := r.readIndexesAndUniques(ctx, name, pk)
	if err != nil {
		return nil, err
	}
	table.UniqueConstraints = uniques
	table.Indexes = indexes

	fks, err := r.readForeignKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	table.ForeignKeys = fks

	return table, nil
}

func (r *Reflector) readColumns(ctx context.Context, table string) ([]schema.Column, error) {
	const q = `
		SELECT
			column_name,
			data_type,
			udt_name,
			is_nullable,
			column_default,
			character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := r.db.QueryContext(ctx, q, r.schema, table)
	if err != nil {
		return nil, syncerr.Reflection(table, "", fmt.Errorf("query columns: %w", err))
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			name, dataType, udtName, isNullable string
			columnDefault                       sql.NullString
			charMaxLen                           sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &udtName, &isNullable, &columnDefault, &charMaxLen); err != nil {
			return nil, syncerr.Reflection(table, "", fmt.Errorf("scan column: %w", err))
		}

		col := schema.Column{Name: name, Nullable: isNullable == "YES"}

		identity := columnDefault.Valid &&
			strings.Contains(columnDefault.String, "nextval(") &&
			strings.Contains(columnDefault.String, "_seq")

		switch dataType {
		case "integer":
			col.Tag = schema.Integer
		case "bigint":
			col.Tag = schema.BigInteger
		case "boolean":
			col.Tag = schema.Boolean
		case "double precision", "real", "numeric":
			col.Tag = schema.Float
		case "text":
			col.Tag = schema.Text
		case "character varying":
			col.Tag = schema.VarChar
			if charMaxLen.Valid {
				col.Length = int(charMaxLen.Int64)
			}
		case "USER-DEFINED":
			col.Tag = schema.EnumTag
			col.EnumName = udtName
		default:
			return nil, syncerr.Reflection(table, name, fmt.Errorf("uncanonicalizable type %q", dataType))
		}

		col.Identity = identity
		if !identity && columnDefault.Valid {
			col.Default = normalize.Default(columnDefault.String)
		}

		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (r *Reflector) readPrimaryKey(ctx context.Context, table string) (schema.PrimaryKey, error) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`

	rows, err := r.db.QueryContext(ctx, q, r.schema, table)
	if err != nil {
		return schema.PrimaryKey{}, syncerr.Reflection(table, "", fmt.Errorf("query primary key: %w", err))
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return schema.PrimaryKey{}, syncerr.Reflection(table, "", fmt.Errorf("scan primary key column: %w", err))
		}
		cols = append(cols, col)
	}
	return schema.PrimaryKey{Columns: cols}, rows.Err()
}

// readIndexesAndUniques classifies every catalog index on table into
// either a UniqueConstraint or a plain Index. A unique index is always
// reported as a UniqueConstraint regardless of whether PostgreSQL
// created it to back a named UNIQUE table constraint or implicitly —
// the two are indistinguishable from the caller's declarative model and
// must diff identically (see the Executor's "Composite uniques ..."
// contract). The primary key's own backing index is excluded entirely,
// since the primary key is already reported by readPrimaryKey.
func (r *Reflector) readIndexesAndUniques(ctx context.Context, table string, pk schema.PrimaryKey) ([]schema.UniqueConstraint, []schema.Index, error) {
	const q = `
		SELECT i.relname, ix.indisunique, ix.indisprimary, pg_get_indexdef(ix.indexrelid)
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = $1 AND t.relname = $2
		ORDER BY i.relname`

	rows, err := r.db.QueryContext(ctx, q, r.schema, table)
	if err != nil {
		return nil, nil, syncerr.Reflection(table, "", fmt.Errorf("query indexes: %w", err))
	}
	defer rows.Close()

	var uniques []schema.UniqueConstraint
	var indexes []schema.Index
	for rows.Next() {
		var name, indexDef string
		var isUnique, isPrimary bool
		if err := rows.Scan(&name, &isUnique, &isPrimary, &indexDef); err != nil {
			return nil, nil, syncerr.Reflection(table, "", fmt.Errorf("scan index: %w", err))
		}
		if isPrimary {
			continue
		}

		cols := parseIndexColumns(indexDef)
		if isUnique {
			uniques = append(uniques, schema.UniqueConstraint{Columns: cols})
		} else {
			indexes = append(indexes, schema.Index{Columns: cols})
		}
	}
	return uniques, indexes, rows.Err()
}

// parseIndexColumns extracts the column list from a pg_get_indexdef
// string such as `CREATE UNIQUE INDEX uq_users_email ON users USING
// btree (email)`.
func parseIndexColumns(indexDef string) []string {
	start := strings.Index(indexDef, "(")
	end := strings.LastIndex(indexDef, ")")
	if start < 0 || end < 0 || start >= end {
		return nil
	}
	parts := strings.Split(indexDef[start+1:end], ",")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(p)
	}
	return cols
}

func (r *Reflector) readForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	const q = `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = $1 AND tc.table_name = $2 AND tc.constraint_type = 'FOREIGN KEY'
		ORDER BY kcu.column_name`

	rows, err := r.db.QueryContext(ctx, q, r.schema, table)
	if err != nil {
		return nil, syncerr.Reflection(table, "", fmt.Errorf("query foreign keys: %w", err))
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.LocalColumn, &fk.ForeignTable, &fk.ForeignColumn); err != nil {
			return nil, syncerr.Reflection(table, "", fmt.Errorf("scan foreign key: %w", err))
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (r *Reflector) readEnums(ctx context.Context) (map[string]*schema.EnumType, error) {
	const q = `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = $1
		ORDER BY t.typname, e.enumsortorder`

	rows, err := r.db.QueryContext(ctx, q, r.schema)
	if err != nil {
		return nil, syncerr.Reflection("", "", fmt.Errorf("query enums: %w", err))
	}
	defer rows.Close()

	out := make(map[string]*schema.EnumType)
	for rows.Next() {
		var name, label string
		if err := rows.Scan(&name, &label); err != nil {
			return nil, syncerr.Reflection("", "", fmt.Errorf("scan enum label: %w", err))
		}
		e, ok := out[name]
		if !ok {
			e = &schema.EnumType{Name: name}
			out[name] = e
		}
		e.Labels = append(e.Labels, label)
	}
	return out, rows.Err()
}
