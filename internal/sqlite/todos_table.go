package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

const selectTodo = "SELECT id, title, description, completed, user_id FROM todos"

func scanTodo(row interface{ Scan(...any) error }) (types.Todo, error) {
	var (
		t    types.Todo
		desc sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.Completed, &t.UserID); err != nil {
		return types.Todo{}, err
	}
	t.Description = nullString(desc)
	return t, nil
}

func queryTodos(q querier, query string, args ...any) ([]types.Todo, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	todos := []types.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}

func insertTodo(q querier, t types.Todo) error {
	_, err := q.Exec("INSERT INTO todos (id, title, description, completed, user_id) VALUES (?, ?, ?, ?, ?)",
		t.ID, t.Title, toNull(t.Description), t.Completed, t.UserID)
	if err != nil {
		return fmt.Errorf("inserting todo %s: %w", t.ID, err)
	}
	return nil
}

func getTodo(q querier, id string) (types.Todo, error) {
	t, err := scanTodo(q.QueryRow(selectTodo+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Todo{}, fmt.Errorf("todo %q: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return types.Todo{}, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return t, nil
}

func saveTodo(q querier, t types.Todo) error {
	_, err := q.Exec("UPDATE todos SET title = ?, description = ?, completed = ?, user_id = ? WHERE id = ?",
		t.Title, toNull(t.Description), t.Completed, t.UserID, t.ID)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", t.ID, err)
	}
	return nil
}

// ListTodos returns every todo in creation order.
func (b *Backend) ListTodos() ([]types.Todo, error) {
	var todos []types.Todo
	err := b.read(func(q querier) error {
		var err error
		todos, err = queryTodos(q, selectTodo+" ORDER BY seq")
		return err
	})
	return todos, err
}

// GetTodo returns the todo with id or ErrNotFound.
func (b *Backend) GetTodo(id string) (types.Todo, error) {
	var t types.Todo
	err := b.read(func(q querier) error {
		var err error
		t, err = getTodo(q, id)
		return err
	})
	return t, err
}

// CreateTodo stores a new todo under a fresh id.
func (b *Backend) CreateTodo(in types.NewTodo) (types.Todo, error) {
	t := in.Build(generateUUID())
	if err := b.inTx(func(tx *sql.Tx) error { return insertTodo(tx, t) }); err != nil {
		return types.Todo{}, err
	}
	return t, nil
}

// UpdateTodo merges patch into the todo with id.
func (b *Backend) UpdateTodo(id string, patch types.TodoPatch) (types.Todo, error) {
	var t types.Todo
	err := b.inTx(func(tx *sql.Tx) error {
		var err error
		if t, err = getTodo(tx, id); err != nil {
			return err
		}
		patch.Apply(&t)
		return saveTodo(tx, t)
	})
	if err != nil {
		return types.Todo{}, err
	}
	return t, nil
}

// DeleteTodo removes the todo. The project_todos foreign key cascades the
// removal to every project.
func (b *Backend) DeleteTodo(id string) error {
	return b.inTx(func(tx *sql.Tx) error {
		return deleteByID(tx, "todos", "todo", id)
	})
}

// TodosByUser returns the todos owned by userID in creation order.
func (b *Backend) TodosByUser(userID string) ([]types.Todo, error) {
	var todos []types.Todo
	err := b.read(func(q querier) error {
		var err error
		todos, err = queryTodos(q, selectTodo+" WHERE user_id = ? ORDER BY seq", userID)
		return err
	})
	return todos, err
}

// ToggleTodo flips Completed on the todo with id.
func (b *Backend) ToggleTodo(id string) (types.Todo, error) {
	var t types.Todo
	err := b.inTx(func(tx *sql.Tx) error {
		var err error
		if t, err = getTodo(tx, id); err != nil {
			return err
		}
		t.Completed = !t.Completed
		return saveTodo(tx, t)
	})
	if err != nil {
		return types.Todo{}, err
	}
	return t, nil
}
