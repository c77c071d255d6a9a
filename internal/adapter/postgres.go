package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

func init() {
	Register("postgres", func(logger *slog.Logger) Adapter { return NewPostgresAdapter(logger) })
}

// PostgresAdapter implements the Adapter interface for PostgreSQL,
// using pgx in database/sql compatibility mode.
type PostgresAdapter struct {
	BaseSQLAdapter
	config Config
}

// NewPostgresAdapter creates a new PostgreSQL adapter instance.
func NewPostgresAdapter(logger *slog.Logger) *PostgresAdapter {
	a := &PostgresAdapter{}
	a.SetLogger(logger)
	return a
}

// Connect establishes a connection to PostgreSQL.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s", host, port, cfg.Database)
	if cfg.Username != "" {
		dsn += " user=" + cfg.Username
	}
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	for k, v := range cfg.Options {
		dsn += fmt.Sprintf(" %s=%s", k, v)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.config = cfg

	return nil
}

func (a *PostgresAdapter) schemaName() string {
	if a.config.Schema != "" {
		return a.config.Schema
	}
	return "public"
}

// GetRelations lists tables and views in the configured schema.
func (a *PostgresAdapter) GetRelations(ctx context.Context) ([]Relation, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`, a.schemaName())
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

// GetTableSchema retrieves column metadata from information_schema,
// joined with the primary-key constraint columns.
func (a *PostgresAdapter) GetTableSchema(ctx context.Context, table string) ([]Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.ordinal_position,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND kcu.column_name = c.column_name
			) AS is_pk
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, a.schemaName(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DeclaredType, &nullable, &col.Position, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.NotNull = nullable == "NO"
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

// GetTableIndexes retrieves index metadata from pg_indexes.
func (a *PostgresAdapter) GetTableIndexes(ctx context.Context, table string) ([]Index, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT indexname, indexdef
		FROM pg_indexes
		WHERE schemaname = $1 AND tablename = $2
		ORDER BY indexname
	`, a.schemaName(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var indexes []Index
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		indexes = append(indexes, Index{
			Name:    name,
			Unique:  strings.Contains(def, "UNIQUE INDEX"),
			Columns: parseIndexColumns(def),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes: %w", err)
	}
	return indexes, nil
}

// parseIndexColumns extracts the column list from an index definition
// like "CREATE INDEX idx ON t USING btree (a, b)".
func parseIndexColumns(def string) []string {
	open := strings.LastIndex(def, "(")
	close := strings.LastIndex(def, ")")
	if open == -1 || close == -1 || close <= open {
		return nil
	}
	parts := strings.Split(def[open+1:close], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

// ExplainQueryPlan returns PostgreSQL's plan for the statement.
func (a *PostgresAdapter) ExplainQueryPlan(ctx context.Context, sqlStr string) (string, error) {
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
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", fmt.Errorf("failed to scan plan: %w", err)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating plan: %w", err)
	}
	return b.String(), nil
}

// DialectName returns the dialect identifier for this adapter.
func (a *PostgresAdapter) DialectName() string {
	return "postgres"
}

// Ensure PostgresAdapter implements Adapter interface
var _ Adapter = (*PostgresAdapter)(nil)
