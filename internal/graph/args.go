package graph

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql"
)

// argID reads a required ID argument.
func argID(args map[string]any, name string) (string, error) {
	id, err := graphql.UnmarshalID(args[name])
	if err != nil {
		return "", fmt.Errorf("argument %s: %w", name, err)
	}
	return id, nil
}

// omittable reads an optional input field. An absent key is unset; an
// explicit null is set to nil.
func omittable[T any](m map[string]any, key string, conv func(any) (T, error)) (graphql.Omittable[*T], error) {
	raw, ok := m[key]
	if !ok {
		return graphql.Omittable[*T]{}, nil
	}
	if raw == nil {
		return graphql.OmittableOf[*T](nil), nil
	}
	v, err := conv(raw)
	if err != nil {
		return graphql.Omittable[*T]{}, fmt.Errorf("%s: %w", key, err)
	}
	return graphql.OmittableOf(&v), nil
}

func inputObject(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%T is not an input object", v)
	}
	return m, nil
}

func unmarshalUserInput(v any) (UserInput, error) {
	var in UserInput
	m, err := inputObject(v)
	if err != nil {
		return in, err
	}
	if in.Name, err = graphql.UnmarshalString(m["name"]); err != nil {
		return in, fmt.Errorf("name: %w", err)
	}
	if in.Email, err = graphql.UnmarshalString(m["email"]); err != nil {
		return in, fmt.Errorf("email: %w", err)
	}
	if in.Role, err = omittable(m, "role", graphql.UnmarshalString); err != nil {
		return in, err
	}
	return in, nil
}

func unmarshalTodoInput(v any) (TodoInput, error) {
	var in TodoInput
	m, err := inputObject(v)
	if err != nil {
		return in, err
	}
	if in.Title, err = graphql.UnmarshalString(m["title"]); err != nil {
		return in, fmt.Errorf("title: %w", err)
	}
	if in.UserID, err = graphql.UnmarshalID(m["userId"]); err != nil {
		return in, fmt.Errorf("userId: %w", err)
	}
	if in.Description, err = omittable(m, "description", graphql.UnmarshalString); err != nil {
		return in, err
	}
	if in.Completed, err = omittable(m, "completed", graphql.UnmarshalBoolean); err != nil {
		return in, err
	}
	return in, nil
}

func unmarshalProjectInput(v any) (ProjectInput, error) {
	var in ProjectInput
	m, err := inputObject(v)
	if err != nil {
		return in, err
	}
	if in.Name, err = graphql.UnmarshalString(m["name"]); err != nil {
		return in, fmt.Errorf("name: %w", err)
	}
	if in.Description, err = omittable(m, "description", graphql.UnmarshalString); err != nil {
		return in, err
	}
	return in, nil
}
