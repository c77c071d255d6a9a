// Package adapter provides database adapter interfaces and
// implementations for sqldeck's execution boundary.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database engine (e.g., "duckdb", "sqlite", "postgres")
	Type string

	// Path is the file path for file-based databases (DuckDB, SQLite).
	// Use ":memory:" for an in-memory database.
	Path string

	// Host is the hostname for network-based databases
	Host string

	// Port is the port number for network-based databases
	Port int

	// Database is the database name
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Schema is the default schema to use
	Schema string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Column describes a single column as reported by engine introspection.
type Column struct {
	// Name is the column name
	Name string

	// DeclaredType is the type from the table definition (e.g., "TEXT", "INTEGER")
	DeclaredType string

	// NotNull indicates whether the column rejects NULL values
	NotNull bool

	// PrimaryKey indicates whether the column is part of the primary key
	PrimaryKey bool

	// Position is the ordinal position of the column in the table
	Position int
}

// RelationKind distinguishes tables from views. Views expose no stable
// row identifier and must not be addressed by row id.
type RelationKind string

// Relation kinds.
const (
	KindTable RelationKind = "table"
	KindView  RelationKind = "view"
)

// Relation is a queryable table or view.
type Relation struct {
	Name string
	Kind RelationKind
}

// Index describes a secondary index on a table.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
// The adapter keeps the query's cancellation registered until Close so
// that cancelling the tracked context cannot race row iteration.
type Rows struct {
	*sql.Rows
	done func()
}

// Close closes the result set and releases the query's cancellation
// tracking. It is safe to call more than once.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	if r.done != nil {
		r.done()
		r.done = nil
	}
	return err
}

// Adapter defines the interface that all database adapters must
// implement. It covers connecting, executing arbitrary SQL, plan
// inspection, cancellation, and schema introspection.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// GetRelations lists the tables and views visible to the connection.
	GetRelations(ctx context.Context) ([]Relation, error)

	// GetTableSchema retrieves column metadata for a table or view.
	GetTableSchema(ctx context.Context, table string) ([]Column, error)

	// GetTableIndexes retrieves the indexes defined on a table.
	GetTableIndexes(ctx context.Context, table string) ([]Index, error)

	// ExplainQueryPlan asks the engine for the plan of the given
	// statement without executing it. The statement is passed through
	// unmodified; the returned text is engine-specific.
	ExplainQueryPlan(ctx context.Context, sql string) (string, error)

	// AbortActiveQueries cancels whatever is currently running on this
	// adapter, best effort. It reports whether anything was cancelled.
	AbortActiveQueries() bool

	// DialectName returns the SQL dialect name (e.g., "duckdb").
	DialectName() string
}

// CollectRows materializes a result set into column names and one map
// per row. []byte values are converted to string for display and
// profiling. The rows are closed before returning.
func CollectRows(rows *Rows) ([]string, []map[string]any, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return cols, results, nil
}
