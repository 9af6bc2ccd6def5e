package types

import (
	"slices"

	"github.com/99designs/gqlgen/graphql"
)

// Project groups todos. TodoIDs holds no duplicates and keeps insertion order.
type Project struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description *string  `json:"description" yaml:"description"`
	TodoIDs     []string `json:"todoIds" yaml:"todoIds"`
}

// Clone returns a copy of the project that shares no memory with p.
// TodoIDs is never nil in the copy.
func (p Project) Clone() Project {
	p.Description = cloneString(p.Description)
	if p.TodoIDs == nil {
		p.TodoIDs = []string{}
	} else {
		p.TodoIDs = slices.Clone(p.TodoIDs)
	}
	return p
}

// HasTodo reports whether todoID is linked to the project.
func (p Project) HasTodo(todoID string) bool {
	return slices.Contains(p.TodoIDs, todoID)
}

// NewProject carries the fields accepted by Store.CreateProject.
type NewProject struct {
	Name        string
	Description *string
}

// Build returns the Project described by n with the given id and no todos.
func (n NewProject) Build(id string) Project {
	return Project{ID: id, Name: n.Name, Description: cloneString(n.Description), TodoIDs: []string{}}
}

// ProjectPatch is a shallow merge applied by Store.UpdateProject. TodoIDs
// cannot be patched; use AddTodoToProject and RemoveTodoFromProject.
type ProjectPatch struct {
	Name        graphql.Omittable[string]
	Description graphql.Omittable[*string]
}

// Apply merges the set fields of p into project.
func (p ProjectPatch) Apply(project *Project) {
	if v, ok := p.Name.ValueOK(); ok {
		project.Name = v
	}
	if v, ok := p.Description.ValueOK(); ok {
		project.Description = cloneString(v)
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
