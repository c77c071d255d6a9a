package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver (pure Go)

	"github.com/sqldeck/sqldeck/internal/sqltext"
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLiteAdapter(logger) })
}

// SQLiteAdapter implements the Adapter interface for SQLite.
type SQLiteAdapter struct {
	BaseSQLAdapter
	config Config
}

// NewSQLiteAdapter creates a new SQLite adapter instance.
func NewSQLiteAdapter(logger *slog.Logger) *SQLiteAdapter {
	a := &SQLiteAdapter{}
	a.SetLogger(logger)
	return a
}

// Connect establishes a connection to SQLite.
// Use ":memory:" as the path for an in-memory database.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.config = cfg

	return nil
}

// GetRelations lists tables and views from sqlite_master.
func (a *SQLiteAdapter) GetRelations(ctx context.Context) ([]Relation, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name, type
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var relations []Relation
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		kind := KindTable
		if typ == "view" {
			kind = KindView
		}
		relations = append(relations, Relation{Name: name, Kind: kind})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relations: %w", err)
	}
	return relations, nil
}

// GetTableSchema retrieves column metadata via PRAGMA table_info.
func (a *SQLiteAdapter) GetTableSchema(ctx context.Context, table string) ([]Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if !sqltext.ValidIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", sqltext.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&col.Position, &col.Name, &col.DeclaredType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk > 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// GetTableIndexes retrieves index metadata via PRAGMA index_list and
// PRAGMA index_info.
func (a *SQLiteAdapter) GetTableIndexes(ctx context.Context, table string) ([]Index, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if !sqltext.ValidIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", sqltext.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []Index
	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		indexes = append(indexes, Index{Name: name, Unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes: %w", err)
	}

	// Index names come from index_list above, so they are trusted here.
	for i := range indexes {
		cols, err := a.indexColumns(ctx, indexes[i].Name)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = cols
	}
	return indexes, nil
}

func (a *SQLiteAdapter) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", sqltext.QuoteIdent(index)))
	if err != nil {
		return nil, fmt.Errorf("failed to query index columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("failed to scan index column: %w", err)
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index columns: %w", err)
	}
	return cols, nil
}

// ExplainQueryPlan returns SQLite's query plan for the statement.
func (a *SQLiteAdapter) ExplainQueryPlan(ctx context.Context, sqlStr string) (string, error) {
	if a.DB == nil {
		return "", fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, "EXPLAIN QUERY PLAN "+sqlStr)
	if err != nil {
		return "", fmt.Errorf("explain failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var b strings.Builder
	for rows.Next() {
		var id, parent, notused int
		var detail string
		if err := rows.Scan(&id, &parent, &notused, &detail); err != nil {
			return "", fmt.Errorf("failed to scan plan: %w", err)
		}
		b.WriteString(detail)
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating plan: %w", err)
	}
	return b.String(), nil
}

// DialectName returns the dialect identifier for this adapter.
func (a *SQLiteAdapter) DialectName() string {
	return "sqlite"
}

// Ensure SQLiteAdapter implements Adapter interface
var _ Adapter = (*SQLiteAdapter)(nil)
