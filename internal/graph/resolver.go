package graph

import (
	"context"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// Change actions reported to the Publisher.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionToggled  = "toggled"
	ActionLinked   = "linked"
	ActionUnlinked = "unlinked"
)

// Publisher is notified after every successful mutation.
type Publisher interface {
	Publish(entity, id, action string)
}

// ResolverRoot exposes the per-type resolvers used by the executable schema.
type ResolverRoot interface {
	Query() QueryResolver
	Mutation() MutationResolver
	Todo() TodoResolver
	Project() ProjectResolver
}

type QueryResolver interface {
	Users(ctx context.Context) ([]*types.User, error)
	User(ctx context.Context, id string) (*types.User, error)
	Todos(ctx context.Context) ([]*types.Todo, error)
	Todo(ctx context.Context, id string) (*types.Todo, error)
	UserTodos(ctx context.Context, userID string) ([]*types.Todo, error)
	Projects(ctx context.Context) ([]*types.Project, error)
	Project(ctx context.Context, id string) (*types.Project, error)
}

type MutationResolver interface {
	CreateUser(ctx context.Context, input UserInput) (*types.User, error)
	UpdateUser(ctx context.Context, id string, input UserInput) (*types.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	CreateTodo(ctx context.Context, input TodoInput) (*types.Todo, error)
	UpdateTodo(ctx context.Context, id string, input TodoInput) (*types.Todo, error)
	DeleteTodo(ctx context.Context, id string) (bool, error)
	ToggleTodoStatus(ctx context.Context, id string) (*types.Todo, error)
	CreateProject(ctx context.Context, input ProjectInput) (*types.Project, error)
	UpdateProject(ctx context.Context, id string, input ProjectInput) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)
	AddTodoToProject(ctx context.Context, projectID, todoID string) (*types.Project, error)
	RemoveTodoFromProject(ctx context.Context, projectID, todoID string) (*types.Project, error)
}

type TodoResolver interface {
	User(ctx context.Context, obj *types.Todo) (*types.User, error)
}

type ProjectResolver interface {
	Todos(ctx context.Context, obj *types.Project) ([]*types.Todo, error)
}

// Resolver maps schema operations onto a types.Store. Events may be nil.
type Resolver struct {
	Store  types.Store
	Events Publisher
}

var _ ResolverRoot = (*Resolver)(nil)

func (r *Resolver) Query() QueryResolver       { return &queryResolver{r} }
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }
func (r *Resolver) Todo() TodoResolver         { return &todoResolver{r} }
func (r *Resolver) Project() ProjectResolver   { return &projectResolver{r} }

func (r *Resolver) publish(entity, id, action string) {
	if r.Events != nil {
		r.Events.Publish(entity, id, action)
	}
}

type queryResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type todoResolver struct{ *Resolver }
type projectResolver struct{ *Resolver }
