// Package schemacache caches per-table column metadata fetched from the
// execution engine. Lookups are lazy; entries are invalidated whenever
// schema-altering SQL runs so the compiler and autocomplete never see
// stale type information.
package schemacache

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sqldeck/sqldeck/internal/adapter"
)

// defaultCapacity bounds the number of cached table schemas.
const defaultCapacity = 128

// Introspector is the slice of the adapter surface the cache needs.
type Introspector interface {
	GetRelations(ctx context.Context) ([]adapter.Relation, error)
	GetTableSchema(ctx context.Context, table string) ([]adapter.Column, error)
	GetTableIndexes(ctx context.Context, table string) ([]adapter.Index, error)
}

// Cache is a process-wide, read-mostly cache of column metadata keyed
// by table name. Safe for concurrent use; concurrent misses on the same
// table may both hit the engine, last write wins.
type Cache struct {
	introspector Introspector
	columns      *lru.Cache[string, []adapter.Column]
	logger       *slog.Logger
}

// New creates a schema cache over the given introspector.
func New(introspector Introspector, logger *slog.Logger) (*Cache, error) {
	c, err := lru.New[string, []adapter.Column](defaultCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{introspector: introspector, columns: c, logger: logger}, nil
}

// Columns returns the column metadata for table, fetching it from the
// engine on a cache miss.
func (c *Cache) Columns(ctx context.Context, table string) ([]adapter.Column, error) {
	if cols, ok := c.columns.Get(table); ok {
		return cols, nil
	}

	cols, err := c.introspector.GetTableSchema(ctx, table)
	if err != nil {
		return nil, err
	}

	c.columns.Add(table, cols)
	c.logger.Debug("cached table schema", "table", table, "columns", len(cols))
	return cols, nil
}

// ColumnNames returns just the column names for table, in engine order.
func (c *Cache) ColumnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := c.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names, nil
}

// Relations lists tables and views. Relation lists are cheap and
// volatile, so they are not cached.
func (c *Cache) Relations(ctx context.Context) ([]adapter.Relation, error) {
	return c.introspector.GetRelations(ctx)
}

// TableNames returns the names of all tables and views.
func (c *Cache) TableNames(ctx context.Context) ([]string, error) {
	relations, err := c.introspector.GetRelations(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(relations))
	for i, r := range relations {
		names[i] = r.Name
	}
	return names, nil
}

// Indexes returns the indexes on table, uncached.
func (c *Cache) Indexes(ctx context.Context, table string) ([]adapter.Index, error) {
	return c.introspector.GetTableIndexes(ctx, table)
}

// Invalidate removes the cached schema for a single table.
func (c *Cache) Invalidate(table string) {
	c.columns.Remove(table)
}

// Reset drops every cached entry. Used after DDL whose affected tables
// cannot be determined from the statement text.
func (c *Cache) Reset() {
	c.columns.Purge()
	c.logger.Debug("schema cache reset")
}

// Len reports the number of cached table schemas.
func (c *Cache) Len() int {
	return c.columns.Len()
}
