package memory

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// ListProjects returns every project in creation order.
func (b *Backend) ListProjects() ([]types.Project, error) {
	var out []types.Project
	err := b.readLocked(func() error {
		out = b.projects.list(types.Project.Clone)
		return nil
	})
	return out, err
}

// GetProject returns the project with id or ErrNotFound.
func (b *Backend) GetProject(id string) (types.Project, error) {
	var out types.Project
	err := b.readLocked(func() error {
		p, ok := b.projects.byID[id]
		if !ok {
			return fmt.Errorf("project %q: %w", id, types.ErrNotFound)
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// CreateProject stores a new project with no todos.
func (b *Backend) CreateProject(in types.NewProject) (types.Project, error) {
	var out types.Project
	err := b.writeLocked(func() error {
		p := in.Build(generateUUID())
		b.projects.put(p.ID, p)
		out = p.Clone()
		return nil
	})
	return out, err
}

// UpdateProject merges patch into the project with id.
func (b *Backend) UpdateProject(id string, patch types.ProjectPatch) (types.Project, error) {
	var out types.Project
	err := b.writeLocked(func() error {
		p, ok := b.projects.byID[id]
		if !ok {
			return fmt.Errorf("project %q: %w", id, types.ErrNotFound)
		}
		patch.Apply(&p)
		b.projects.put(id, p)
		out = p.Clone()
		return nil
	})
	return out, err
}

// DeleteProject removes the project. Its todos are left in place.
func (b *Backend) DeleteProject(id string) error {
	return b.writeLocked(func() error {
		if !b.projects.remove(id) {
			return fmt.Errorf("project %q: %w", id, types.ErrNotFound)
		}
		return nil
	})
}

// ProjectTodos resolves TodoIDs in order, skipping dangling ids.
func (b *Backend) ProjectTodos(projectID string) ([]types.Todo, error) {
	var out []types.Todo
	err := b.readLocked(func() error {
		out = []types.Todo{}
		p, ok := b.projects.byID[projectID]
		if !ok {
			return nil
		}
		for _, id := range p.TodoIDs {
			if t, ok := b.todos.byID[id]; ok {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	return out, err
}

// AddTodoToProject appends todoID to the project unless already present.
func (b *Backend) AddTodoToProject(projectID, todoID string) (types.Project, error) {
	var out types.Project
	err := b.writeLocked(func() error {
		p, ok := b.projects.byID[projectID]
		if !ok {
			return fmt.Errorf("project %q: %w", projectID, types.ErrNotFound)
		}
		if _, ok := b.todos.byID[todoID]; !ok {
			return fmt.Errorf("todo %q: %w", todoID, types.ErrNotFound)
		}
		if !p.HasTodo(todoID) {
			p.TodoIDs = append(slices.Clone(p.TodoIDs), todoID)
			b.projects.byID[projectID] = p
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// RemoveTodoFromProject drops todoID from the project if present.
func (b *Backend) RemoveTodoFromProject(projectID, todoID string) (types.Project, error) {
	var out types.Project
	err := b.writeLocked(func() error {
		p, ok := b.projects.byID[projectID]
		if !ok {
			return fmt.Errorf("project %q: %w", projectID, types.ErrNotFound)
		}
		if p.HasTodo(todoID) {
			p.TodoIDs = slices.DeleteFunc(slices.Clone(p.TodoIDs), func(v string) bool { return v == todoID })
			b.projects.byID[projectID] = p
		}
		out = p.Clone()
		return nil
	})
	return out, err
}
