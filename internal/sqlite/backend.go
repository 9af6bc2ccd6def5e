// Package sqlite implements the SQLite storage backend. Data lives in a
// private in-memory database held on a single connection, so nothing
// survives Detach.
package sqlite

import (
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// dsn opens a private in-memory database. The pragma runs on every new
// connection, so foreign keys hold even if the pool reconnects.
const dsn = "file::memory:?_pragma=foreign_keys(1)"

// querier is the subset of *sql.DB and *sql.Tx the tables use.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Backend implements types.Store using SQLite as the query engine.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the in-memory database and creates the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database, so the store
	// lives on exactly one connection that is never recycled. If the driver
	// drops it, a fresh connection sees an empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	for _, stmt := range slices.Concat(schemaDDL, indexDDL) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	b.db = db
	b.attached = true
	return nil
}

// Detach closes the database, discarding all data. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Load replaces all rows with data inside one transaction.
func (b *Backend) Load(data types.Dataset) error {
	if err := data.Check(); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	return b.inTx(func(tx *sql.Tx) error {
		for _, table := range []string{"project_todos", "projects", "todos", "users"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		for _, u := range data.Users {
			if err := insertUser(tx, u); err != nil {
				return err
			}
		}
		for _, t := range data.Todos {
			if err := insertTodo(tx, t); err != nil {
				return err
			}
		}
		for _, p := range data.Projects {
			if err := insertProject(tx, p); err != nil {
				return err
			}
			for _, todoID := range p.TodoIDs {
				if err := linkTodo(tx, p.ID, todoID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Counts returns the number of rows per entity.
func (b *Backend) Counts() (map[string]int, error) {
	counts := make(map[string]int, 3)
	err := b.read(func(q querier) error {
		for entity, table := range map[string]string{
			types.EntityUser:    "users",
			types.EntityTodo:    "todos",
			types.EntityProject: "projects",
		} {
			var n int
			if err := q.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
				return fmt.Errorf("counting %s: %w", table, err)
			}
			counts[entity] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// read runs fn under the read lock when attached.
func (b *Backend) read(fn func(q querier) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn(b.db)
}

// inTx runs fn in a transaction under the write lock. fn's error rolls the
// transaction back.
func (b *Backend) inTx(fn func(tx *sql.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// nullString converts a nullable column to an optional field.
func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// toNull converts an optional field to a nullable column value.
func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
