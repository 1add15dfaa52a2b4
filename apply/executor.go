// Package apply implements the Executor: it renders a ddl.StatementList
// to PostgreSQL SQL and runs every statement inside a single transaction,
// committing on success and rolling back on the first failure.
package apply

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dbsyncengine/schemasync/ddl"
	"github.com/dbsyncengine/schemasync/syncerr"
)

// Executor applies a rendered plan against a database connection.
type Executor struct {
	db  *sql.DB
	log *slog.Logger
}

// New returns an Executor bound to db.
func New(db *sql.DB) *Executor {
	return &Executor{db: db, log: slog.Default()}
}

// WithLogger returns a copy of the Executor logging through log instead
// of slog.Default().
func (e *Executor) WithLogger(log *slog.Logger) *Executor {
	clone := *e
	clone.log = log
	return &clone
}

// Apply renders plan and runs every resulting statement inside one
// transaction. A failed statement rolls the transaction back and returns
// an ExecutionError naming the statement that failed; a render or commit
// failure is also an ExecutionError, and a failure to begin the
// transaction is a ConnectionError. There is no partial apply.
func (e *Executor) Apply(ctx context.Context, planNode ddl.Node) (statementCount int, err error) {
	statements, err := ddl.NewRenderer().Render(planNode)
	if err != nil {
		return 0, syncerr.Execution("render plan", "", err)
	}
	if len(statements) == 0 {
		e.log.Info("plan has no changes, nothing to apply")
		return 0, nil
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, syncerr.Connection(fmt.Errorf("begin transaction: %w", err))
	}

	for i, stmt := range statements {
		e.log.Debug("executing statement", "index", i, "sql", stmt)
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.log.Error("rollback failed after statement error", "rollback_error", rbErr)
			}
			return i, syncerr.Execution(fmt.Sprintf("statement %d/%d", i+1, len(statements)), stmt, execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return len(statements), syncerr.Execution("commit", "", err)
	}

	e.log.Info("applied plan", "statements", len(statements))
	return len(statements), nil
}
