// Package syncerr defines the error taxonomy surfaced by the schema sync
// engine. Every stage of the pipeline wraps its failures in one of these
// types so a caller can distinguish "cannot reach the database" from
// "the desired schema is internally inconsistent" without string
// matching. The engine recovers nothing locally: every error here aborts
// the run, and the caller decides whether to retry.
package syncerr

import "fmt"

// ConnectionError means the engine could not reach or authenticate to the
// database. It is surfaced immediately; no partial state is created.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("connect to database: %s", e.Err) }
func (e *ConnectionError) Unwrap() error  { return e.Err }

// Connection wraps err as a ConnectionError.
func Connection(err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{Err: err}
}

// ReflectionError means a catalog query failed or returned a type the
// Reflector could not canonicalize. Table and Column name the offending
// entity; Column is empty when the failure is table-scoped.
type ReflectionError struct {
	Table  string
	Column string
	Err    error
}

func (e *ReflectionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("reflect %s.%s: %s", e.Table, e.Column, e.Err)
	}
	if e.Table != "" {
		return fmt.Sprintf("reflect %s: %s", e.Table, e.Err)
	}
	return fmt.Sprintf("reflect schema: %s", e.Err)
}
func (e *ReflectionError) Unwrap() error { return e.Err }

// Reflection wraps err as a ReflectionError naming table/column.
func Reflection(table, column string, err error) error {
	if err == nil {
		return nil
	}
	return &ReflectionError{Table: table, Column: column, Err: err}
}

// CompilationError means the caller's declarative model is internally
// inconsistent: a foreign key target is missing, or a column references
// an undefined enum. The run aborts before any DDL is issued.
type CompilationError struct {
	msg string
}

func (e *CompilationError) Error() string { return e.msg }

// Compilation formats a CompilationError.
func Compilation(format string, args ...any) error {
	return &CompilationError{msg: fmt.Sprintf(format, args...)}
}

// UnsupportedDiffError means the computed diff requires an operation the
// engine refuses to perform automatically: removing or reordering an
// enum label. The run aborts; no DDL is issued.
type UnsupportedDiffError struct {
	msg string
}

func (e *UnsupportedDiffError) Error() string { return e.msg }

// UnsupportedDiff formats an UnsupportedDiffError.
func UnsupportedDiff(format string, args ...any) error {
	return &UnsupportedDiffError{msg: fmt.Sprintf(format, args...)}
}

// ExecutionError means a DDL statement failed at the database. The
// transaction has already been rolled back by the time this error is
// returned to the caller. Statement is the failed statement's SQL text
// (empty for a render or commit failure). Edit names the step that
// failed: the statement's position in the plan, "render plan", or
// "commit"; it does not identify the diff edit the statement came from.
type ExecutionError struct {
	Statement string
	Edit      string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s (%s): %s", e.Edit, e.Statement, e.Err)
}
func (e *ExecutionError) Unwrap() error { return e.Err }

// Execution wraps err as an ExecutionError naming the statement and the
// step that failed.
func Execution(edit, statement string, err error) error {
	if err == nil {
		return nil
	}
	return &ExecutionError{Statement: statement, Edit: edit, Err: err}
}
