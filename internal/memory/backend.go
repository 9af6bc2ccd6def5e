// Package memory implements the in-memory storage backend: id-keyed maps for
// lookup plus an insertion-order id slice per entity for listing.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

var _ types.Store = (*Backend)(nil)

// collection holds one entity kind: records keyed by id and the ids in
// insertion order.
type collection[T any] struct {
	byID  map[string]T
	order []string
}

func newCollection[T any]() collection[T] {
	return collection[T]{byID: make(map[string]T)}
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = v
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return true
}

// list returns copies of every record in insertion order. Never nil.
func (c *collection[T]) list(clone func(T) T) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.byID[id]))
	}
	return out
}

// Backend implements types.Store with plain Go maps guarded by one lock.
type Backend struct {
	mu       sync.RWMutex
	attached bool

	users    collection[types.User]
	todos    collection[types.Todo]
	projects collection[types.Project]
}

// NewBackend creates a new memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates config and prepares empty collections.
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
	b.reset()
	b.attached = true
	return nil
}

// Detach discards all data. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attached = false
	b.users, b.todos, b.projects = collection[types.User]{}, collection[types.Todo]{}, collection[types.Project]{}
	return nil
}

func (b *Backend) reset() {
	b.users = newCollection[types.User]()
	b.todos = newCollection[types.Todo]()
	b.projects = newCollection[types.Project]()
}

// Load replaces the store content with data.
func (b *Backend) Load(data types.Dataset) error {
	if err := data.Check(); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	b.reset()
	for _, u := range data.Users {
		b.users.put(u.ID, u.Clone())
	}
	for _, t := range data.Todos {
		b.todos.put(t.ID, t.Clone())
	}
	for _, p := range data.Projects {
		b.projects.put(p.ID, p.Clone())
	}
	return nil
}

// Counts returns the number of records per entity.
func (b *Backend) Counts() (map[string]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return map[string]int{
		types.EntityUser:    len(b.users.order),
		types.EntityTodo:    len(b.todos.order),
		types.EntityProject: len(b.projects.order),
	}, nil
}

// readLocked runs fn under the read lock when attached.
func (b *Backend) readLocked(fn func() error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn()
}

// writeLocked runs fn under the write lock when attached. The whole
// mutation, cascades included, happens inside fn.
func (b *Backend) writeLocked(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn()
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
