package memory

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// ListTodos returns every todo in creation order.
func (b *Backend) ListTodos() ([]types.Todo, error) {
	var out []types.Todo
	err := b.readLocked(func() error {
		out = b.todos.list(types.Todo.Clone)
		return nil
	})
	return out, err
}

// GetTodo returns the todo with id or ErrNotFound.
func (b *Backend) GetTodo(id string) (types.Todo, error) {
	var out types.Todo
	err := b.readLocked(func() error {
		t, ok := b.todos.byID[id]
		if !ok {
			return fmt.Errorf("todo %q: %w", id, types.ErrNotFound)
		}
		out = t.Clone()
		return nil
	})
	return out, err
}

// CreateTodo stores a new todo under a fresh id.
func (b *Backend) CreateTodo(in types.NewTodo) (types.Todo, error) {
	var out types.Todo
	err := b.writeLocked(func() error {
		t := in.Build(generateUUID())
		b.todos.put(t.ID, t)
		out = t.Clone()
		return nil
	})
	return out, err
}

// UpdateTodo merges patch into the todo with id.
func (b *Backend) UpdateTodo(id string, patch types.TodoPatch) (types.Todo, error) {
	var out types.Todo
	err := b.writeLocked(func() error {
		t, ok := b.todos.byID[id]
		if !ok {
			return fmt.Errorf("todo %q: %w", id, types.ErrNotFound)
		}
		patch.Apply(&t)
		b.todos.put(id, t)
		out = t.Clone()
		return nil
	})
	return out, err
}

// DeleteTodo removes the todo and unlinks it from every project.
func (b *Backend) DeleteTodo(id string) error {
	return b.writeLocked(func() error {
		if !b.todos.remove(id) {
			return fmt.Errorf("todo %q: %w", id, types.ErrNotFound)
		}
		for pid, p := range b.projects.byID {
			if p.HasTodo(id) {
				p.TodoIDs = slices.DeleteFunc(slices.Clone(p.TodoIDs), func(v string) bool { return v == id })
				b.projects.byID[pid] = p
			}
		}
		return nil
	})
}

// TodosByUser returns the todos whose UserID equals userID, in store order.
func (b *Backend) TodosByUser(userID string) ([]types.Todo, error) {
	var out []types.Todo
	err := b.readLocked(func() error {
		out = []types.Todo{}
		for _, id := range b.todos.order {
			if t := b.todos.byID[id]; t.UserID == userID {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	return out, err
}

// ToggleTodo flips Completed on the todo with id.
func (b *Backend) ToggleTodo(id string) (types.Todo, error) {
	var out types.Todo
	err := b.writeLocked(func() error {
		t, ok := b.todos.byID[id]
		if !ok {
			return fmt.Errorf("todo %q: %w", id, types.ErrNotFound)
		}
		t.Completed = !t.Completed
		b.todos.put(id, t)
		out = t.Clone()
		return nil
	})
	return out, err
}
