package graph

import (
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
)

// Introspection fields are served by gqlgen's introspection model; this file
// only maps field names onto its methods.

func resolveIntrospection(typeName string, source any, field string, args map[string]any) (any, error) {
	switch typeName {
	case "__Schema":
		return resolveSchemaField(source.(*introspection.Schema), field)
	case "__Type":
		return resolveTypeField(source.(*introspection.Type), field, args)
	case "__Field":
		return resolveFieldField(source.(*introspection.Field), field)
	case "__InputValue":
		return resolveInputValueField(source.(*introspection.InputValue), field)
	case "__EnumValue":
		return resolveEnumValueField(source.(*introspection.EnumValue), field)
	case "__Directive":
		return resolveDirectiveField(source.(*introspection.Directive), field)
	}
	return nil, fmt.Errorf("unknown type %s", typeName)
}

// refs turns a slice of introspection values into list items pointing at
// each element.
func refs[T any](items []T) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func includeDeprecated(args map[string]any) bool {
	b, _ := graphql.UnmarshalBoolean(args["includeDeprecated"])
	return b
}

func resolveSchemaField(s *introspection.Schema, field string) (any, error) {
	switch field {
	case "description":
		return optString(s.Description()), nil
	case "types":
		return refs(s.Types()), nil
	case "queryType":
		return nullable(s.QueryType()), nil
	case "mutationType":
		return nullable(s.MutationType()), nil
	case "subscriptionType":
		return nullable(s.SubscriptionType()), nil
	case "directives":
		return refs(s.Directives()), nil
	}
	return nil, fmt.Errorf("unknown field __Schema.%s", field)
}

func resolveTypeField(t *introspection.Type, field string, args map[string]any) (any, error) {
	switch field {
	case "kind":
		return t.Kind(), nil
	case "name":
		return optString(t.Name()), nil
	case "description":
		return optString(t.Description()), nil
	case "specifiedByURL":
		return optString(t.SpecifiedByURL()), nil
	case "fields":
		if t.Kind() != "OBJECT" && t.Kind() != "INTERFACE" {
			return nil, nil
		}
		return refs(t.Fields(includeDeprecated(args))), nil
	case "interfaces":
		if t.Kind() != "OBJECT" && t.Kind() != "INTERFACE" {
			return nil, nil
		}
		return refs(t.Interfaces()), nil
	case "possibleTypes":
		if t.Kind() != "INTERFACE" && t.Kind() != "UNION" {
			return nil, nil
		}
		return refs(t.PossibleTypes()), nil
	case "enumValues":
		if t.Kind() != "ENUM" {
			return nil, nil
		}
		return refs(t.EnumValues(includeDeprecated(args))), nil
	case "inputFields":
		if t.Kind() != "INPUT_OBJECT" {
			return nil, nil
		}
		return refs(t.InputFields()), nil
	case "ofType":
		return nullable(t.OfType()), nil
	case "isOneOf":
		if t.Kind() != "INPUT_OBJECT" {
			return nil, nil
		}
		return t.IsOneOf(), nil
	}
	return nil, fmt.Errorf("unknown field __Type.%s", field)
}

func resolveFieldField(f *introspection.Field, field string) (any, error) {
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optString(f.Description()), nil
	case "args":
		return refs(f.Args), nil
	case "type":
		return nullable(f.Type), nil
	case "isDeprecated":
		return f.IsDeprecated(), nil
	case "deprecationReason":
		return optString(f.DeprecationReason()), nil
	}
	return nil, fmt.Errorf("unknown field __Field.%s", field)
}

func resolveInputValueField(v *introspection.InputValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optString(v.Description()), nil
	case "type":
		return nullable(v.Type), nil
	case "defaultValue":
		return optString(v.DefaultValue), nil
	case "isDeprecated":
		return v.IsDeprecated(), nil
	case "deprecationReason":
		return optString(v.DeprecationReason()), nil
	}
	return nil, fmt.Errorf("unknown field __InputValue.%s", field)
}

func resolveEnumValueField(v *introspection.EnumValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optString(v.Description()), nil
	case "isDeprecated":
		return v.IsDeprecated(), nil
	case "deprecationReason":
		return optString(v.DeprecationReason()), nil
	}
	return nil, fmt.Errorf("unknown field __EnumValue.%s", field)
}

func resolveDirectiveField(d *introspection.Directive, field string) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optString(d.Description()), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return enumList(d.Locations), nil
	case "args":
		return refs(d.Args), nil
	}
	return nil, fmt.Errorf("unknown field __Directive.%s", field)
}

// enumList returns enum list items as plain strings.
func enumList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
