package graph

import (
	"github.com/99designs/gqlgen/graphql"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// UserInput mirrors the UserInput input object.
type UserInput struct {
	Name  string
	Email string
	Role  graphql.Omittable[*string]
}

// New returns the creation input; an omitted role is absent.
func (in UserInput) New() types.NewUser {
	return types.NewUser{Name: in.Name, Email: in.Email, Role: in.Role.Value()}
}

// Patch returns the update; an omitted role keeps the stored value.
func (in UserInput) Patch() types.UserPatch {
	return types.UserPatch{
		Name:  graphql.OmittableOf(in.Name),
		Email: graphql.OmittableOf(in.Email),
		Role:  in.Role,
	}
}

// TodoInput mirrors the TodoInput input object.
type TodoInput struct {
	Title       string
	Description graphql.Omittable[*string]
	Completed   graphql.Omittable[*bool]
	UserID      string
}

func (in TodoInput) New() types.NewTodo {
	return types.NewTodo{
		Title:       in.Title,
		Description: in.Description.Value(),
		Completed:   in.Completed.Value(),
		UserID:      in.UserID,
	}
}

func (in TodoInput) Patch() types.TodoPatch {
	return types.TodoPatch{
		Title:       graphql.OmittableOf(in.Title),
		Description: in.Description,
		Completed:   in.Completed,
		UserID:      graphql.OmittableOf(in.UserID),
	}
}

// ProjectInput mirrors the ProjectInput input object.
type ProjectInput struct {
	Name        string
	Description graphql.Omittable[*string]
}

func (in ProjectInput) New() types.NewProject {
	return types.NewProject{Name: in.Name, Description: in.Description.Value()}
}

func (in ProjectInput) Patch() types.ProjectPatch {
	return types.ProjectPatch{
		Name:        graphql.OmittableOf(in.Name),
		Description: in.Description,
	}
}
