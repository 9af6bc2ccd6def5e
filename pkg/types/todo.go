package types

import "github.com/99designs/gqlgen/graphql"

// Todo is a unit of work belonging to a user.
type Todo struct {
	ID          string  `json:"id" yaml:"id"`                   // Assigned by the store on creation.
	Title       string  `json:"title" yaml:"title"`             // Required.
	Description *string `json:"description" yaml:"description"` // Optional.
	Completed   bool    `json:"completed" yaml:"completed"`     // False on creation unless supplied.
	UserID      string  `json:"userId" yaml:"userId"`           // Owner; not checked against users.
}

// Clone returns a copy of the todo that shares no memory with t.
func (t Todo) Clone() Todo {
	t.Description = cloneString(t.Description)
	return t
}

// NewTodo carries the fields accepted by Store.CreateTodo. A nil Completed
// means false.
type NewTodo struct {
	Title       string
	Description *string
	Completed   *bool
	UserID      string
}

// Build returns the Todo described by n with the given id.
func (n NewTodo) Build(id string) Todo {
	t := Todo{ID: id, Title: n.Title, Description: cloneString(n.Description), UserID: n.UserID}
	if n.Completed != nil {
		t.Completed = *n.Completed
	}
	return t
}

// TodoPatch is a shallow merge applied by Store.UpdateTodo. Setting
// Description to nil clears it. A set Completed of nil is ignored because
// completed is never null.
type TodoPatch struct {
	Title       graphql.Omittable[string]
	Description graphql.Omittable[*string]
	Completed   graphql.Omittable[*bool]
	UserID      graphql.Omittable[string]
}

// Apply merges the set fields of p into t.
func (p TodoPatch) Apply(t *Todo) {
	if v, ok := p.Title.ValueOK(); ok {
		t.Title = v
	}
	if v, ok := p.Description.ValueOK(); ok {
		t.Description = cloneString(v)
	}
	if v, ok := p.Completed.ValueOK(); ok && v != nil {
		t.Completed = *v
	}
	if v, ok := p.UserID.ValueOK(); ok {
		t.UserID = v
	}
}
