package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver (pure Go)

	"github.com/sqldeck/sqldeck/internal/sqltext"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new, unopened store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens the library database. Use ":memory:" for an in-memory
// database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open library database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping library database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the library database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// Save inserts or updates by normalized SQL within the scope. Two
// differently named entries are never created for equivalent text.
func (s *SQLiteStore) Save(stmt Statement) (*Statement, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if stmt.SQLText == "" {
		return nil, fmt.Errorf("statement text is empty")
	}
	if stmt.Scope == "" {
		stmt.Scope = ScopeGlobal
	}

	normalized := sqltext.Normalize(stmt.SQLText)
	tags, err := json.Marshal(tagsOrEmpty(stmt.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	var existingID string
	err = s.db.QueryRow(
		`SELECT id FROM statements WHERE scope = ? AND normalized_sql = ?`,
		stmt.Scope, normalized,
	).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		stmt.ID = generateID()
		stmt.CreatedAt = time.Now().UTC()
		_, err = s.db.Exec(
			`INSERT INTO statements (id, name, sql_text, normalized_sql, scope, description, tags, is_favorite, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			stmt.ID, stmt.Name, stmt.SQLText, normalized, stmt.Scope,
			stmt.Description, string(tags), boolToInt(stmt.IsFavorite), stmt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save statement: %w", err)
		}
		return s.Get(stmt.ID)

	case err != nil:
		return nil, fmt.Errorf("failed to look up statement: %w", err)

	default:
		_, err = s.db.Exec(
			`UPDATE statements SET name = ?, sql_text = ?, description = ?, tags = ?, is_favorite = ? WHERE id = ?`,
			stmt.Name, stmt.SQLText, stmt.Description, string(tags),
			boolToInt(stmt.IsFavorite), existingID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update statement: %w", err)
		}
		return s.Get(existingID)
	}
}

// Get retrieves a statement by ID.
func (s *SQLiteStore) Get(id string) (*Statement, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, name, sql_text, scope, description, tags, is_favorite, created_at, last_used_at
		 FROM statements WHERE id = ?`, id,
	)
	stmt, err := scanStatement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("statement not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return stmt, nil
}

// List returns a scope's statements, favorites first, then by most
// recent use (falling back to creation time for never-used entries).
func (s *SQLiteStore) List(scope string) ([]Statement, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if scope == "" {
		scope = ScopeGlobal
	}

	rows, err := s.db.Query(
		`SELECT id, name, sql_text, scope, description, tags, is_favorite, created_at, last_used_at
		 FROM statements
		 WHERE scope = ?
		 ORDER BY is_favorite DESC, COALESCE(last_used_at, created_at) DESC, name ASC`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Statement
	for rows.Next() {
		stmt, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		out = append(out, *stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return out, nil
}

// Delete removes a statement by ID.
func (s *SQLiteStore) Delete(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(`DELETE FROM statements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("statement not found: %s", id)
	}
	return nil
}

// MarkUsed stamps the statement's last-used time with now.
func (s *SQLiteStore) MarkUsed(id string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(
		`UPDATE statements SET last_used_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark statement used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("statement not found: %s", id)
	}
	return nil
}

// SetFavorite toggles the statement's favorite flag.
func (s *SQLiteStore) SetFavorite(id string, favorite bool) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec(
		`UPDATE statements SET is_favorite = ? WHERE id = ?`,
		boolToInt(favorite), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("statement not found: %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (*Statement, error) {
	var (
		stmt       Statement
		tags       string
		favorite   int
		lastUsedAt sql.NullTime
	)
	err := row.Scan(
		&stmt.ID, &stmt.Name, &stmt.SQLText, &stmt.Scope,
		&stmt.Description, &tags, &favorite, &stmt.CreatedAt, &lastUsedAt,
	)
	if err != nil {
		return nil, err
	}

	stmt.IsFavorite = favorite != 0
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		stmt.LastUsedAt = &t
	}
	if err := json.Unmarshal([]byte(tags), &stmt.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return &stmt, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
