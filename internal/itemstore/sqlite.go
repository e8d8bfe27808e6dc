package itemstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-go/internal/todo"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS item_tables (
	name     TEXT PRIMARY KEY,
	hash_key TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	table_name TEXT NOT NULL REFERENCES item_tables(name) ON DELETE CASCADE,
	item_key   TEXT NOT NULL,
	attributes TEXT NOT NULL,
	PRIMARY KEY (table_name, item_key)
);
`

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs
// and creates the item tables if they are missing.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// from being split across connections.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create item tables: %w", err)
	}

	return db, nil
}

// sqliteBackend stores emulated tables in a SQLite database, one row per item.
type sqliteBackend struct {
	db *sql.DB
}

func (s *sqliteBackend) createTable(ctx context.Context, table, hashKey string) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO item_tables (name, hash_key) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		table, hashKey)
	if err != nil {
		return fmt.Errorf("inserting table: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting table: %w", err)
	}
	if n == 0 {
		return errTableExists
	}
	return nil
}

func (s *sqliteBackend) hashKey(ctx context.Context, table string) (string, error) {
	var hashKey string
	err := s.db.QueryRowContext(ctx, "SELECT hash_key FROM item_tables WHERE name = ?", table).Scan(&hashKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNoTable
	}
	if err != nil {
		return "", fmt.Errorf("finding table: %w", err)
	}
	return hashKey, nil
}

func (s *sqliteBackend) scan(ctx context.Context, table string, limit int) ([]item, bool, error) {
	// Fetch one extra row to learn whether the scan was truncated.
	fetch := -1
	if limit > 0 {
		fetch = limit + 1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT attributes FROM items WHERE table_name = ? ORDER BY item_key LIMIT ?",
		table, fetch)
	if err != nil {
		return nil, false, fmt.Errorf("scanning items: %w", err)
	}
	defer rows.Close()

	var items []item
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, false, fmt.Errorf("reading item: %w", err)
		}
		it, err := decodeItem(data)
		if err != nil {
			return nil, false, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("scanning items: %w", err)
	}

	more := false
	if limit > 0 && len(items) > limit {
		items = items[:limit]
		more = true
	}
	return items, more, nil
}

func (s *sqliteBackend) get(ctx context.Context, table, key string) (item, error) {
	return getItem(ctx, s.db, table, key)
}

func (s *sqliteBackend) mutate(ctx context.Context, table, key string, fn func(current item) (item, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getItem(ctx, tx, table, key)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE table_name = ? AND item_key = ?", table, key); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
	} else {
		data, err := encodeItem(next)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (table_name, item_key, attributes) VALUES (?, ?, ?)
			ON CONFLICT(table_name, item_key) DO UPDATE SET attributes = excluded.attributes`,
			table, key, string(data))
		if err != nil {
			return fmt.Errorf("writing item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getItem loads one item, returning errNoTable when the table is unknown and
// nil when the item is missing.
func getItem(ctx context.Context, q queryer, table, key string) (item, error) {
	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM item_tables WHERE name = ?", table).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNoTable
	}
	if err != nil {
		return nil, fmt.Errorf("finding table: %w", err)
	}

	var data []byte
	err = q.QueryRowContext(ctx,
		"SELECT attributes FROM items WHERE table_name = ? AND item_key = ?",
		table, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("reading item: %w", err)
	}
	return decodeItem(data)
}

// SQLiteConnector hands out emulated item-store handles backed by one SQLite database.
type SQLiteConnector struct {
	db   *sql.DB
	path string
}

// NewSQLiteConnector opens (creating if needed) the database at path.
// The caller must call Close when done.
func NewSQLiteConnector(path string) (*SQLiteConnector, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteConnector{db: db, path: path}, nil
}

// Connect returns a fresh handle on the database.
func (c *SQLiteConnector) Connect(context.Context) (todo.ItemStore, error) {
	return newEmulator(&sqliteBackend{db: c.db}), nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (c *SQLiteConnector) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *SQLiteConnector) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteConnector implements todo.Connector interface
var _ todo.Connector = (*SQLiteConnector)(nil)
