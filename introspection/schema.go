// Package introspection extends a schema with the __Schema/__Type meta types
// and the __schema/__type root fields, resolved from the schema value itself.
package introspection

import (
	schema "github.com/hanpama/gqlexec/schema"
)

// Wrap returns a copy of the schema extended with introspection types and the
// __schema/__type fields on the query root. The original schema is left
// untouched and remains the source of truth for introspection answers.
func Wrap(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:        original.QueryType,
		MutationType:     original.MutationType,
		SubscriptionType: original.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(original.Types)+8),
		Directives:       original.Directives,
		Description:      original.Description,
	}
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}

	addIntrospectionTypes(extended)

	if queryType := extended.GetQueryType(); queryType != nil {
		queryTypeCopy := &schema.Type{
			Name:        queryType.Name,
			Kind:        queryType.Kind,
			Description: queryType.Description,
			Fields:      make([]*schema.Field, len(queryType.Fields)),
			Interfaces:  queryType.Interfaces,
			IsTypeOf:    queryType.IsTypeOf,
		}
		copy(queryTypeCopy.Fields, queryType.Fields)

		queryTypeCopy.Fields = append(queryTypeCopy.Fields,
			&schema.Field{
				Name:        "__schema",
				Description: "Access the current type schema of this server.",
				Type:        schema.NonNullType(schema.NamedType("__Schema")),
				Resolve:     schemaFieldResolver(original),
			},
			&schema.Field{
				Name:        "__type",
				Description: "Request the type information of a single type.",
				Arguments: []*schema.InputValue{
					schema.NewInputValue("name", "The name of the type to look up.", schema.NonNullType(schema.NamedType("String"))),
				},
				Type:    schema.NamedType("__Type"),
				Resolve: typeFieldResolver(original),
			},
		)
		extended.Types[queryType.Name] = queryTypeCopy
	}

	return extended
}

func addIntrospectionTypes(sch *schema.Schema) {
	for _, t := range []*schema.Type{
		schemaType(), typeType(), fieldType(), inputValueType(),
		enumValueType(), directiveType(), typeKindEnum(), directiveLocationEnum(),
	} {
		sch.Types[t.Name] = t
	}
}

func metaField(name, description string, t *schema.TypeRef) *schema.Field {
	return &schema.Field{Name: name, Description: description, Type: t, Resolve: resolveIntrospection}
}

func metaFieldWithArgs(name string, t *schema.TypeRef, args ...*schema.InputValue) *schema.Field {
	return &schema.Field{Name: name, Type: t, Arguments: args, Resolve: resolveIntrospection}
}

func includeDeprecatedArg() *schema.InputValue {
	return schema.NewInputValueWithDefault("includeDeprecated", "", schema.NamedType("Boolean"), false)
}

func schemaType() *schema.Type {
	return &schema.Type{
		Name:        "__Schema",
		Kind:        schema.TypeKindObject,
		Description: "A GraphQL Schema defines the capabilities of a GraphQL server.",
		Fields: []*schema.Field{
			metaField("types", "A list of all types supported by this server.", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type"))))),
			metaField("queryType", "The type that query operations will be rooted at.", schema.NonNullType(schema.NamedType("__Type"))),
			metaField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", schema.NamedType("__Type")),
			metaField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", schema.NamedType("__Type")),
			metaField("directives", "A list of all directives supported by this server.", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive"))))),
			metaField("description", "A description of the schema.", schema.NamedType("String")),
		},
	}
}

func typeType() *schema.Type {
	return &schema.Type{
		Name:        "__Type",
		Kind:        schema.TypeKindObject,
		Description: "The fundamental unit of any GraphQL Schema is the type.",
		Fields: []*schema.Field{
			metaField("kind", "The kind of type.", schema.NonNullType(schema.NamedType("__TypeKind"))),
			metaField("name", "The name of the type.", schema.NamedType("String")),
			metaField("description", "The description of the type.", schema.NamedType("String")),
			metaFieldWithArgs("fields", schema.ListType(schema.NonNullType(schema.NamedType("__Field"))), includeDeprecatedArg()),
			metaField("interfaces", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))),
			metaField("possibleTypes", "", schema.ListType(schema.NonNullType(schema.NamedType("__Type")))),
			metaFieldWithArgs("enumValues", schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue"))), includeDeprecatedArg()),
			metaFieldWithArgs("inputFields", schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))), includeDeprecatedArg()),
			metaField("ofType", "", schema.NamedType("__Type")),
			metaField("specifiedByURL", "", schema.NamedType("String")),
			metaField("isOneOf", "", schema.NamedType("Boolean")),
		},
	}
}

func fieldType() *schema.Type {
	return &schema.Type{
		Name: "__Field",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			metaField("name", "", schema.NonNullType(schema.NamedType("String"))),
			metaField("description", "", schema.NamedType("String")),
			metaFieldWithArgs("args", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))), includeDeprecatedArg()),
			metaField("type", "", schema.NonNullType(schema.NamedType("__Type"))),
			metaField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))),
			metaField("deprecationReason", "", schema.NamedType("String")),
		},
	}
}

func inputValueType() *schema.Type {
	return &schema.Type{
		Name: "__InputValue",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			metaField("name", "", schema.NonNullType(schema.NamedType("String"))),
			metaField("description", "", schema.NamedType("String")),
			metaField("type", "", schema.NonNullType(schema.NamedType("__Type"))),
			metaField("defaultValue", "", schema.NamedType("String")),
			metaField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))),
			metaField("deprecationReason", "", schema.NamedType("String")),
		},
	}
}

func enumValueType() *schema.Type {
	return &schema.Type{
		Name: "__EnumValue",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			metaField("name", "", schema.NonNullType(schema.NamedType("String"))),
			metaField("description", "", schema.NamedType("String")),
			metaField("isDeprecated", "", schema.NonNullType(schema.NamedType("Boolean"))),
			metaField("deprecationReason", "", schema.NamedType("String")),
		},
	}
}

func directiveType() *schema.Type {
	return &schema.Type{
		Name: "__Directive",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			metaField("name", "", schema.NonNullType(schema.NamedType("String"))),
			metaField("description", "", schema.NamedType("String")),
			metaField("isRepeatable", "", schema.NonNullType(schema.NamedType("Boolean"))),
			metaField("locations", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation"))))),
			metaFieldWithArgs("args", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))), includeDeprecatedArg()),
		},
	}
}

func typeKindEnum() *schema.Type {
	t := &schema.Type{Name: "__TypeKind", Kind: schema.TypeKindEnum}
	for _, name := range []string{
		"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT",
		"LIST", "NON_NULL", "SEMANTIC_NON_NULL",
	} {
		t.AddEnumValue(name, "")
	}
	return t
}

func directiveLocationEnum() *schema.Type {
	t := &schema.Type{Name: "__DirectiveLocation", Kind: schema.TypeKindEnum}
	for _, name := range []string{
		"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
		"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
		"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
		"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
		"INPUT_FIELD_DEFINITION",
	} {
		t.AddEnumValue(name, "")
	}
	return t
}
