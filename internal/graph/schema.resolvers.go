package graph

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// entity converts a store result into a nullable field value: ErrNotFound
// becomes null, any other error is returned.
func entity[T any](v T, err error) (*T, error) {
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// removed converts a delete result: ErrNotFound becomes false.
func removed(err error) (bool, error) {
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func pointers[T any](items []T, err error) ([]*T, error) {
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *queryResolver) Users(ctx context.Context) ([]*types.User, error) {
	return pointers(r.Store.ListUsers())
}

func (r *queryResolver) User(ctx context.Context, id string) (*types.User, error) {
	return entity(r.Store.GetUser(id))
}

func (r *queryResolver) Todos(ctx context.Context) ([]*types.Todo, error) {
	return pointers(r.Store.ListTodos())
}

func (r *queryResolver) Todo(ctx context.Context, id string) (*types.Todo, error) {
	return entity(r.Store.GetTodo(id))
}

func (r *queryResolver) UserTodos(ctx context.Context, userID string) ([]*types.Todo, error) {
	return pointers(r.Store.TodosByUser(userID))
}

func (r *queryResolver) Projects(ctx context.Context) ([]*types.Project, error) {
	return pointers(r.Store.ListProjects())
}

func (r *queryResolver) Project(ctx context.Context, id string) (*types.Project, error) {
	return entity(r.Store.GetProject(id))
}

func (r *mutationResolver) CreateUser(ctx context.Context, input UserInput) (*types.User, error) {
	u, err := r.Store.CreateUser(input.New())
	if err != nil {
		return nil, err
	}
	r.publish(types.EntityUser, u.ID, ActionCreated)
	return &u, nil
}

func (r *mutationResolver) UpdateUser(ctx context.Context, id string, input UserInput) (*types.User, error) {
	u, err := entity(r.Store.UpdateUser(id, input.Patch()))
	if u != nil {
		r.publish(types.EntityUser, id, ActionUpdated)
	}
	return u, err
}

func (r *mutationResolver) DeleteUser(ctx context.Context, id string) (bool, error) {
	ok, err := removed(r.Store.DeleteUser(id))
	if ok {
		r.publish(types.EntityUser, id, ActionDeleted)
	}
	return ok, err
}

func (r *mutationResolver) CreateTodo(ctx context.Context, input TodoInput) (*types.Todo, error) {
	t, err := r.Store.CreateTodo(input.New())
	if err != nil {
		return nil, err
	}
	r.publish(types.EntityTodo, t.ID, ActionCreated)
	return &t, nil
}

func (r *mutationResolver) UpdateTodo(ctx context.Context, id string, input TodoInput) (*types.Todo, error) {
	t, err := entity(r.Store.UpdateTodo(id, input.Patch()))
	if t != nil {
		r.publish(types.EntityTodo, id, ActionUpdated)
	}
	return t, err
}

func (r *mutationResolver) DeleteTodo(ctx context.Context, id string) (bool, error) {
	ok, err := removed(r.Store.DeleteTodo(id))
	if ok {
		r.publish(types.EntityTodo, id, ActionDeleted)
	}
	return ok, err
}

func (r *mutationResolver) ToggleTodoStatus(ctx context.Context, id string) (*types.Todo, error) {
	t, err := entity(r.Store.ToggleTodo(id))
	if t != nil {
		r.publish(types.EntityTodo, id, ActionToggled)
	}
	return t, err
}

func (r *mutationResolver) CreateProject(ctx context.Context, input ProjectInput) (*types.Project, error) {
	p, err := r.Store.CreateProject(input.New())
	if err != nil {
		return nil, err
	}
	r.publish(types.EntityProject, p.ID, ActionCreated)
	return &p, nil
}

func (r *mutationResolver) UpdateProject(ctx context.Context, id string, input ProjectInput) (*types.Project, error) {
	p, err := entity(r.Store.UpdateProject(id, input.Patch()))
	if p != nil {
		r.publish(types.EntityProject, id, ActionUpdated)
	}
	return p, err
}

func (r *mutationResolver) DeleteProject(ctx context.Context, id string) (bool, error) {
	ok, err := removed(r.Store.DeleteProject(id))
	if ok {
		r.publish(types.EntityProject, id, ActionDeleted)
	}
	return ok, err
}

func (r *mutationResolver) AddTodoToProject(ctx context.Context, projectID, todoID string) (*types.Project, error) {
	p, err := entity(r.Store.AddTodoToProject(projectID, todoID))
	if p != nil {
		r.publish(types.EntityProject, projectID, ActionLinked)
	}
	return p, err
}

func (r *mutationResolver) RemoveTodoFromProject(ctx context.Context, projectID, todoID string) (*types.Project, error) {
	p, err := entity(r.Store.RemoveTodoFromProject(projectID, todoID))
	if p != nil {
		r.publish(types.EntityProject, projectID, ActionUnlinked)
	}
	return p, err
}

// User resolves the owner; a dangling userId yields null.
func (r *todoResolver) User(ctx context.Context, obj *types.Todo) (*types.User, error) {
	return entity(r.Store.GetUser(obj.UserID))
}

func (r *projectResolver) Todos(ctx context.Context, obj *types.Project) ([]*types.Todo, error) {
	return pointers(r.Store.ProjectTodos(obj.ID))
}
