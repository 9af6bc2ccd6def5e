package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/mesh-intelligence/todograph/pkg/types"
)

// Config configures NewExecutableSchema.
type Config struct {
	Resolvers ResolverRoot
}

// NewExecutableSchema returns an executable schema backed by cfg.Resolvers,
// ready for gqlgen's handler.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{schema: parsedSchema, resolvers: cfg.Resolvers}
}

type executableSchema struct {
	schema    *ast.Schema
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

// Complexity defers to gqlgen's default cost of one per field.
func (e *executableSchema) Complexity(ctx context.Context, typeName, field string, childComplexity int, rawArgs map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	ec := &executionContext{OperationContext: opCtx, es: e, errPaths: map[string]bool{}}

	var root *ast.Definition
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query
	case ast.Mutation:
		root = e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		// Fields run in document order, which gives mutations serial execution.
		data, ok := ec.executeSelectionSet(ctx, opCtx.Operation.SelectionSet, root, nil, nil)
		var buf bytes.Buffer
		if ok {
			data.MarshalGQL(&buf)
		} else {
			graphql.Null.MarshalGQL(&buf)
		}
		return &graphql.Response{Data: buf.Bytes(), Errors: ec.errors}
	}
}

// executionContext carries per-operation state. Execution is sequential.
type executionContext struct {
	*graphql.OperationContext
	es       *executableSchema
	errors   gqlerror.List
	errPaths map[string]bool
}

func (ec *executionContext) addError(path ast.Path, err error) {
	ec.errPaths[path.String()] = true
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		gqlErr.Path = path
		ec.errors = append(ec.errors, gqlErr)
		return
	}
	ec.errors = append(ec.errors, &gqlerror.Error{Err: err, Message: err.Error(), Path: path})
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	return append(slices.Clone(path), elem)
}

// executeSelectionSet resolves every field of obj selected by sel. It
// returns false when a non-null field came back null, in which case the
// whole object is null.
func (ec *executionContext) executeSelectionSet(ctx context.Context, sel ast.SelectionSet, obj *ast.Definition, source any, path ast.Path) (*graphql.FieldSet, bool) {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{obj.Name})
	out := graphql.NewFieldSet(fields)
	for i, f := range fields {
		fieldPath := appendPath(path, ast.PathName(f.Alias))
		if f.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(obj.Name)
			continue
		}

		def := obj.Fields.ForName(f.Name)
		if def == nil {
			ec.addError(fieldPath, fmt.Errorf("unknown field %s.%s", obj.Name, f.Name))
			out.Values[i] = graphql.Null
			continue
		}
		v, err := ec.resolve(ctx, obj, f, def, source)
		if err != nil {
			ec.addError(fieldPath, err)
			v = nil
		}
		completed, ok := ec.completeValue(ctx, def.Type, f, v, fieldPath)
		if !ok {
			return nil, false
		}
		out.Values[i] = completed
	}
	return out, true
}

// resolve runs the resolver for one field, turning panics into errors.
func (ec *executionContext) resolve(ctx context.Context, obj *ast.Definition, f graphql.CollectedField, def *ast.FieldDefinition, source any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ec.RecoverFunc != nil {
				err = ec.Recover(ctx, r)
			} else {
				err = fmt.Errorf("internal system error: %v", r)
			}
			v = nil
		}
	}()

	var args map[string]any
	if f.Definition != nil {
		args = f.ArgumentMap(ec.Variables)
	}

	switch obj.Name {
	case "Query":
		return ec.resolveQuery(ctx, f, args)
	case "Mutation":
		return ec.resolveMutation(ctx, f, args)
	case "User":
		return resolveUser(source.(*types.User), f.Name)
	case "Todo":
		return ec.resolveTodo(ctx, source.(*types.Todo), f.Name)
	case "Project":
		return ec.resolveProject(ctx, source.(*types.Project), f.Name)
	default:
		return resolveIntrospection(obj.Name, source, f.Name, args)
	}
}

// completeValue shapes a resolved value to the field type. The bool is false
// when a non-null position is null; the nearest nullable parent absorbs it.
func (ec *executionContext) completeValue(ctx context.Context, t *ast.Type, f graphql.CollectedField, v any, path ast.Path) (graphql.Marshaler, bool) {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		completed, ok := ec.completeInner(ctx, &inner, f, v, path)
		if !ok {
			return nil, false
		}
		if completed == graphql.Null {
			if !ec.errPaths[path.String()] {
				ec.addError(path, errors.New("must not be null"))
			}
			return nil, false
		}
		return completed, true
	}

	completed, ok := ec.completeInner(ctx, t, f, v, path)
	if !ok {
		return graphql.Null, true
	}
	return completed, true
}

func (ec *executionContext) completeInner(ctx context.Context, t *ast.Type, f graphql.CollectedField, v any, path ast.Path) (graphql.Marshaler, bool) {
	if v == nil {
		return graphql.Null, true
	}

	if t.Elem != nil {
		items, ok := v.([]any)
		if !ok {
			ec.addError(path, fmt.Errorf("expected a list, got %T", v))
			return graphql.Null, true
		}
		out := make(graphql.Array, len(items))
		for i, item := range items {
			completed, ok := ec.completeValue(ctx, t.Elem, f, item, appendPath(path, ast.PathIndex(i)))
			if !ok {
				return nil, false
			}
			out[i] = completed
		}
		return out, true
	}

	def := ec.es.schema.Types[t.NamedType]
	if def == nil {
		ec.addError(path, fmt.Errorf("unknown type %s", t.NamedType))
		return graphql.Null, true
	}
	switch def.Kind {
	case ast.Object:
		obj, ok := ec.executeSelectionSet(ctx, f.Selections, def, v, path)
		if !ok {
			return nil, false
		}
		return obj, true
	default:
		m, err := marshalLeaf(def, v)
		if err != nil {
			ec.addError(path, err)
			return graphql.Null, true
		}
		return m, true
	}
}

// marshalLeaf writes a scalar or enum value with gqlgen's marshalers.
func marshalLeaf(def *ast.Definition, v any) (graphql.Marshaler, error) {
	switch v := v.(type) {
	case string:
		if def.Name == "ID" {
			return graphql.MarshalID(v), nil
		}
		return graphql.MarshalString(v), nil
	case bool:
		return graphql.MarshalBoolean(v), nil
	case int:
		return graphql.MarshalInt(v), nil
	}
	return nil, fmt.Errorf("cannot marshal %T as %s", v, def.Name)
}
