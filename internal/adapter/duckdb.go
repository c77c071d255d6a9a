package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/sqldeck/sqldeck/internal/sqltext"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Adapter { return NewDuckDBAdapter(logger) })
}

// DuckDBAdapter implements the Adapter interface for DuckDB.
type DuckDBAdapter struct {
	BaseSQLAdapter
	config Config
}

// NewDuckDBAdapter creates a new DuckDB adapter instance.
func NewDuckDBAdapter(logger *slog.Logger) *DuckDBAdapter {
	a := &DuckDBAdapter{}
	a.SetLogger(logger)
	return a
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.DB = db
	a.config = cfg

	return nil
}

// GetRelations lists tables and views in the main schema.
func (a *DuckDBAdapter) GetRelations(ctx context.Context) ([]Relation, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema := a.config.Schema
	if schema == "" {
		schema = "main"
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name
	`, schema)
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
		if strings.EqualFold(typ, "VIEW") {
			kind = KindView
		}
		relations = append(relations, Relation{Name: name, Kind: kind})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relations: %w", err)
	}
	return relations, nil
}

// GetTableSchema retrieves column metadata via pragma_table_info.
func (a *DuckDBAdapter) GetTableSchema(ctx context.Context, table string) ([]Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if !sqltext.ValidIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf("SELECT cid, name, type, \"notnull\", pk FROM pragma_table_info('%s')", sqltext.EscapeString(table))
	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var notNull, pk bool
		if err := rows.Scan(&col.Position, &col.Name, &col.DeclaredType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.NotNull = notNull
		col.PrimaryKey = pk
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

// GetTableIndexes retrieves index metadata from duckdb_indexes().
func (a *DuckDBAdapter) GetTableIndexes(ctx context.Context, table string) ([]Index, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if !sqltext.ValidIdent(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT index_name, is_unique
		FROM duckdb_indexes()
		WHERE table_name = ?
		ORDER BY index_name
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []Index
	for rows.Next() {
		var idx Index
		if err := rows.Scan(&idx.Name, &idx.Unique); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes: %w", err)
	}
	return indexes, nil
}

// ExplainQueryPlan returns DuckDB's physical plan for the statement.
func (a *DuckDBAdapter) ExplainQueryPlan(ctx context.Context, sqlStr string) (string, error) {
	if a.DB == nil {
		return "", fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, "EXPLAIN "+sqlStr)
	if err != nil {
		return "", fmt.Errorf("explain failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var b strings.Builder
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", fmt.Errorf("failed to scan plan: %w", err)
		}
		b.WriteString(value)
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating plan: %w", err)
	}
	return b.String(), nil
}

// DialectName returns the dialect identifier for this adapter.
func (a *DuckDBAdapter) DialectName() string {
	return "duckdb"
}

// Ensure DuckDBAdapter implements Adapter interface
var _ Adapter = (*DuckDBAdapter)(nil)
