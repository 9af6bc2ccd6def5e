package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

var errIntrospectionDisabled = errors.New("introspection disabled")

// nullable turns a possibly nil pointer into a field value with an untyped
// nil for null.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return p
}

func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func list[T any](items []*T) any {
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = nullable(item)
	}
	return out
}

func (ec *executionContext) resolveQuery(ctx context.Context, f graphql.CollectedField, args map[string]any) (any, error) {
	q := ec.es.resolvers.Query()
	switch f.Name {
	case "users":
		return wrapList(q.Users(ctx))
	case "user":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return wrap(q.User(ctx, id))
	case "todos":
		return wrapList(q.Todos(ctx))
	case "todo":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return wrap(q.Todo(ctx, id))
	case "userTodos":
		userID, err := argID(args, "userId")
		if err != nil {
			return nil, err
		}
		return wrapList(q.UserTodos(ctx, userID))
	case "projects":
		return wrapList(q.Projects(ctx))
	case "project":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return wrap(q.Project(ctx, id))
	case "__schema":
		if ec.DisableIntrospection {
			return nil, errIntrospectionDisabled
		}
		return introspection.WrapSchema(ec.es.schema), nil
	case "__type":
		if ec.DisableIntrospection {
			return nil, errIntrospectionDisabled
		}
		name, err := graphql.UnmarshalString(args["name"])
		if err != nil {
			return nil, fmt.Errorf("argument name: %w", err)
		}
		return nullable(introspection.WrapTypeFromDef(ec.es.schema, ec.es.schema.Types[name])), nil
	}
	return nil, fmt.Errorf("unknown field Query.%s", f.Name)
}

func (ec *executionContext) resolveMutation(ctx context.Context, f graphql.CollectedField, args map[string]any) (any, error) {
	m := ec.es.resolvers.Mutation()
	switch f.Name {
	case "createUser":
		in, err := unmarshalUserInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.CreateUser(ctx, in))
	case "updateUser":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		in, err := unmarshalUserInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.UpdateUser(ctx, id, in))
	case "deleteUser":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return m.DeleteUser(ctx, id)
	case "createTodo":
		in, err := unmarshalTodoInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.CreateTodo(ctx, in))
	case "updateTodo":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		in, err := unmarshalTodoInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.UpdateTodo(ctx, id, in))
	case "deleteTodo":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return m.DeleteTodo(ctx, id)
	case "toggleTodoStatus":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return wrap(m.ToggleTodoStatus(ctx, id))
	case "createProject":
		in, err := unmarshalProjectInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.CreateProject(ctx, in))
	case "updateProject":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		in, err := unmarshalProjectInput(args["input"])
		if err != nil {
			return nil, fmt.Errorf("argument input: %w", err)
		}
		return wrap(m.UpdateProject(ctx, id, in))
	case "deleteProject":
		id, err := argID(args, "id")
		if err != nil {
			return nil, err
		}
		return m.DeleteProject(ctx, id)
	case "addTodoToProject", "removeTodoFromProject":
		projectID, err := argID(args, "projectId")
		if err != nil {
			return nil, err
		}
		todoID, err := argID(args, "todoId")
		if err != nil {
			return nil, err
		}
		if f.Name == "addTodoToProject" {
			return wrap(m.AddTodoToProject(ctx, projectID, todoID))
		}
		return wrap(m.RemoveTodoFromProject(ctx, projectID, todoID))
	}
	return nil, fmt.Errorf("unknown field Mutation.%s", f.Name)
}

func wrap[T any](p *T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return nullable(p), nil
}

func wrapList[T any](items []*T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return list(items), nil
}

func resolveUser(u *types.User, field string) (any, error) {
	switch field {
	case "id":
		return u.ID, nil
	case "name":
		return u.Name, nil
	case "email":
		return u.Email, nil
	case "role":
		return optString(u.Role), nil
	}
	return nil, fmt.Errorf("unknown field User.%s", field)
}

func (ec *executionContext) resolveTodo(ctx context.Context, t *types.Todo, field string) (any, error) {
	switch field {
	case "id":
		return t.ID, nil
	case "title":
		return t.Title, nil
	case "description":
		return optString(t.Description), nil
	case "completed":
		return t.Completed, nil
	case "userId":
		return t.UserID, nil
	case "user":
		return wrap(ec.es.resolvers.Todo().User(ctx, t))
	}
	return nil, fmt.Errorf("unknown field Todo.%s", field)
}

func (ec *executionContext) resolveProject(ctx context.Context, p *types.Project, field string) (any, error) {
	switch field {
	case "id":
		return p.ID, nil
	case "name":
		return p.Name, nil
	case "description":
		return optString(p.Description), nil
	case "todos":
		return wrapList(ec.es.resolvers.Project().Todos(ctx, p))
	}
	return nil, fmt.Errorf("unknown field Project.%s", field)
}
