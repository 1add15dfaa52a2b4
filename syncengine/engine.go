// Package syncengine wires the Catalog Reflector, Desired Schema
// Compiler, Differ, Planner, and Executor into the single entry point a
// caller uses: Sync.
package syncengine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/dbsyncengine/schemasync/apply"
	"github.com/dbsyncengine/schemasync/compile"
	"github.com/dbsyncengine/schemasync/config"
	"github.com/dbsyncengine/schemasync/diff"
	"github.com/dbsyncengine/schemasync/plan"
	"github.com/dbsyncengine/schemasync/reflect/postgres"
	"github.com/dbsyncengine/schemasync/schema"
	"github.com/dbsyncengine/schemasync/syncerr"
)

// Report summarizes one Sync run for the caller's own logging. The
// engine itself never persists a Report.
type Report struct {
	TablesCreated int
	TablesDropped int
	TablesAltered int
	EnumsCreated  int
	EnumsAltered  int
	Statements    int
	Duration      time.Duration
}

// Option configures a Sync call.
type Option func(*settings)

type settings struct {
	namespace string
	opts      *config.Options
	logger    *slog.Logger
	now       func() time.Time
}

// WithNamespace overrides the working namespace (defaults to "public").
func WithNamespace(ns string) Option {
	return func(s *settings) { s.namespace = ns }
}

// WithOptions supplies comparison/planning policy options (see
// config.Options). Defaults to config.DefaultOptions().
func WithOptions(opts *config.Options) Option {
	return func(s *settings) { s.opts = opts }
}

// WithLogger overrides the *slog.Logger used for this run.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) { s.logger = log }
}

// Sync is the engine's single constructor/initializer. It accepts the
// caller's declarative schema registry and either a DSN string or an
// already-open *sql.DB, synchronously runs the full
// reflect-compile-diff-plan-apply pipeline, and returns a Report on
// success or a propagated, typed error (see package syncerr) on
// failure. There is no partial apply: either every planned statement
// commits, or none do.
func Sync(ctx context.Context, reg schema.Registry, dsnOrDB any, opts ...Option) (*Report, error) {
	s := &settings{namespace: "public", opts: config.DefaultOptions(), logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}

	db, ownsConnection, err := resolveDB(dsnOrDB)
	if err != nil {
		return nil, syncerr.Connection(err)
	}
	if ownsConnection {
		defer db.Close()
	}

	start := s.now()

	desired, err := compile.Compile(reg, s.opts)
	if err != nil {
		return nil, err
	}

	reflector := postgres.New(db, s.namespace).WithLogger(s.logger)
	live, err := reflector.ReadSchema(ctx)
	if err != nil {
		return nil, err
	}

	d, err := diff.Compute(live, desired)
	if err != nil {
		return nil, err
	}

	planNode, err := plan.Plan(d, desired)
	if err != nil {
		return nil, err
	}

	executor := apply.New(db).WithLogger(s.logger)
	stmtCount, err := executor.Apply(ctx, planNode)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TablesCreated: len(d.CreateTables),
		TablesDropped: len(d.DropTables),
		TablesAltered: len(d.TableDiffs),
		Statements:    stmtCount,
		Duration:      s.now().Sub(start),
	}
	for _, e := range d.EnumEdits {
		if e.Drop {
			continue
		}
		if len(e.CreateLabels) > 0 {
			report.EnumsCreated++
		} else {
			report.EnumsAltered++
		}
	}

	s.logger.Info("schema sync complete",
		"tables_created", report.TablesCreated,
		"tables_dropped", report.TablesDropped,
		"tables_altered", report.TablesAltered,
		"statements", report.Statements,
		"duration", report.Duration,
	)

	return report, nil
}

// resolveDB accepts either a DSN string or an already-open *sql.DB. When
// given a DSN it opens a new connection using the pgx stdlib driver and
// reports ownsConnection=true so Sync closes it when done; an
// already-open *sql.DB is never closed by the engine, since connection
// ownership remains with the caller.
func resolveDB(dsnOrDB any) (db *sql.DB, ownsConnection bool, err error) {
	switch v := dsnOrDB.(type) {
	case *sql.DB:
		return v, false, nil
	case string:
		opened, err := sql.Open("pgx", v)
		if err != nil {
			return nil, false, fmt.Errorf("open database: %w", err)
		}
		return opened, true, nil
	default:
		return nil, false, fmt.Errorf("unsupported connection argument of type %T, want string or *sql.DB", dsnOrDB)
	}
}
