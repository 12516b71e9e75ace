package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

func operationWithVariable(name, typeName string, nonNull bool) *language.OperationDefinition {
	return &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: name,
				Type:     &ast.Type{NamedType: typeName, NonNull: nonNull},
			},
		},
	}
}

func TestCoerceVariableValues_RequiredMissing(t *testing.T) {
	sch := schema.NewSchema("")
	op := operationWithVariable("count", "Int", true)

	_, errs := coerceVariableValues(sch, op, nil, 0)

	require.Len(t, errs, 1)
	require.Equal(t, `Variable "$count" of required type "Int!" was not provided.`, errs[0].Message)
}

func TestCoerceVariableValues_NonNullExplicitNull(t *testing.T) {
	sch := schema.NewSchema("")
	op := operationWithVariable("count", "Int", true)

	_, errs := coerceVariableValues(sch, op, map[string]any{"count": nil}, 0)

	require.Len(t, errs, 1)
	require.Equal(t, `Variable "$count" of non-null type "Int!" must not be null.`, errs[0].Message)
}

func TestCoerceVariableValues_ScalarTypeMismatch(t *testing.T) {
	sch := schema.NewSchema("")
	op := operationWithVariable("count", "Int", true)

	_, errs := coerceVariableValues(sch, op, map[string]any{"count": "42"}, 0)

	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `Variable "$count" got invalid value "42"`)
	require.Contains(t, errs[0].Message, "Int cannot represent non-integer value")
}

func TestCoerceVariableValues_MissingNullableStaysUndefined(t *testing.T) {
	sch := schema.NewSchema("")
	op := operationWithVariable("name", "String", false)

	coerced, errs := coerceVariableValues(sch, op, nil, 0)

	require.Empty(t, errs)
	_, present := coerced["name"]
	require.False(t, present, "missing variables must stay distinct from explicit null")
}

func TestCoerceVariableValues_InputObjectValidation(t *testing.T) {
	sch := schema.NewSchema("")
	input := schema.NewType("FilterInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("required", "", schema.NonNullType(schema.NamedType("String"))))
	input.AddInputField(schema.NewInputValue("optional", "", schema.NamedType("Int")))
	sch.AddType(input)
	op := operationWithVariable("input", "FilterInput", true)

	_, errs := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{"optional": 10},
	}, 0)

	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `Field "FilterInput.required" of required type "String!" was not provided.`)
}

func TestCoerceVariableValues_UnknownInputField(t *testing.T) {
	sch := schema.NewSchema("")
	input := schema.NewType("FilterInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("known", "", schema.NamedType("String")))
	sch.AddType(input)
	op := operationWithVariable("input", "FilterInput", false)

	_, errs := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{"known": "x", "bogus": 1},
	}, 0)

	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `Field "bogus" is not defined by type "FilterInput".`)
}

func TestCoerceVariableValues_NestedPathInMessage(t *testing.T) {
	sch := schema.NewSchema("")
	inner := schema.NewType("Inner", schema.TypeKindInputObject, "")
	inner.AddInputField(schema.NewInputValue("n", "", schema.NamedType("Int")))
	outer := schema.NewType("Outer", schema.TypeKindInputObject, "")
	outer.AddInputField(schema.NewInputValue("items", "", schema.ListType(schema.NamedType("Inner"))))
	sch.AddType(inner).AddType(outer)
	op := operationWithVariable("input", "Outer", false)

	_, errs := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{"items": []any{map[string]any{"n": "not an int"}}},
	}, 0)

	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, `at "input.items[0].n"`)
}

func TestCoerceVariableValues_SingleValueBecomesList(t *testing.T) {
	sch := schema.NewSchema("")
	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "ids",
				Type:     &ast.Type{Elem: &ast.Type{NamedType: "Int"}},
			},
		},
	}

	coerced, errs := coerceVariableValues(sch, op, map[string]any{"ids": 7}, 0)

	require.Empty(t, errs)
	require.Equal(t, []any{7}, coerced["ids"])
}

func TestCoerceVariableValues_OneOf(t *testing.T) {
	newSchema := func() *schema.Schema {
		sch := schema.NewSchema("")
		oneOf := schema.NewType("OneOfInput", schema.TypeKindInputObject, "").SetOneOf()
		oneOf.AddInputField(schema.NewInputValue("a", "", schema.NamedType("String")))
		oneOf.AddInputField(schema.NewInputValue("b", "", schema.NamedType("Int")))
		sch.AddType(oneOf)
		return sch
	}
	op := operationWithVariable("x", "OneOfInput", true)

	t.Run("exactly one non-null key accepted", func(t *testing.T) {
		coerced, errs := coerceVariableValues(newSchema(), op, map[string]any{
			"x": map[string]any{"a": "abc"},
		}, 0)
		require.Empty(t, errs)
		require.Equal(t, map[string]any{"a": "abc"}, coerced["x"])
	})

	t.Run("multiple keys rejected", func(t *testing.T) {
		_, errs := coerceVariableValues(newSchema(), op, map[string]any{
			"x": map[string]any{"a": "abc", "b": 123},
		}, 0)
		require.Len(t, errs, 1)
		require.Contains(t, errs[0].Message, `Variable "$x" got invalid value`)
		require.Contains(t, errs[0].Message, `Exactly one key must be specified for OneOf type "OneOfInput".`)
	})

	t.Run("explicit null sole key rejected", func(t *testing.T) {
		_, errs := coerceVariableValues(newSchema(), op, map[string]any{
			"x": map[string]any{"a": nil},
		}, 0)
		require.Len(t, errs, 1)
		require.Contains(t, errs[0].Message, `Field "a" of OneOf type "OneOfInput" must be non-null.`)
	})
}

func TestCoerceVariableValues_ErrorLimit(t *testing.T) {
	sch := schema.NewSchema("")
	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{Variable: "a", Type: &ast.Type{NamedType: "Int", NonNull: true}},
			&ast.VariableDefinition{Variable: "b", Type: &ast.Type{NamedType: "Int", NonNull: true}},
			&ast.VariableDefinition{Variable: "c", Type: &ast.Type{NamedType: "Int", NonNull: true}},
		},
	}

	_, errs := coerceVariableValues(sch, op, nil, 2)

	require.Len(t, errs, 3)
	require.Equal(t, tooManyErrorsMessage, errs[2].Message)
}

func TestCoerceArgumentValues_Rules(t *testing.T) {
	sch := schema.NewSchema("")
	queryType := schema.NewType("Query", schema.TypeKindObject, "")
	field := schema.NewField("item", schema.NamedType("String"))
	field.WithArgument(schema.NewInputValue("id", "", schema.NonNullType(schema.NamedType("Int"))))
	field.WithArgument(schema.NewInputValueWithDefault("limit", "", schema.NamedType("Int"), 10))
	queryType.AddField(field)
	sch.AddType(queryType)

	run := func(t *testing.T, query string, variables map[string]any) (map[string]any, *GraphQLError) {
		t.Helper()
		doc := mustParseQuery(t, query)
		s := &executionState{
			ctx:             context.Background(),
			schema:          sch,
			document:        doc,
			fragments:       map[string]*language.FragmentDefinition{},
			operation:       doc.Operations[0],
			variableValues:  variables,
			nullifiedPrefix: map[string]struct{}{},
		}
		fieldNode := doc.Operations[0].SelectionSet[0].(*language.Field)
		return coerceArgumentValues(s, field, fieldNode, []*language.Field{fieldNode}, Path{"item"})
	}

	t.Run("defaults applied", func(t *testing.T) {
		args, err := run(t, "{ item(id: 1) }", nil)
		require.Nil(t, err)
		require.Equal(t, map[string]any{"id": 1, "limit": 10}, args)
	})

	t.Run("required missing", func(t *testing.T) {
		_, err := run(t, "{ item }", nil)
		require.NotNil(t, err)
		require.Equal(t, `Argument "id" of required type "Int!" was not provided.`, err.Message)
	})

	t.Run("unprovided variable for required argument", func(t *testing.T) {
		_, err := run(t, "query ($v: Int!) { item(id: $v) }", map[string]any{})
		require.NotNil(t, err)
		require.Equal(t, `Argument "id" of required type "Int!" was provided the variable "$v" which was not provided a runtime value.`, err.Message)
	})

	t.Run("null variable for non-null argument", func(t *testing.T) {
		_, err := run(t, "query ($v: Int) { item(id: $v) }", map[string]any{"v": nil})
		require.NotNil(t, err)
		require.Equal(t, `Argument "id" of non-null type "Int!" must not be null.`, err.Message)
	})

	t.Run("explicit null literal for non-null argument", func(t *testing.T) {
		_, err := run(t, "{ item(id: null) }", nil)
		require.NotNil(t, err)
		require.Equal(t, `Argument "id" of non-null type "Int!" must not be null.`, err.Message)
	})

	t.Run("invalid literal", func(t *testing.T) {
		_, err := run(t, `{ item(id: "nope") }`, nil)
		require.NotNil(t, err)
		require.Contains(t, err.Message, `Argument "id" has invalid value`)
	})
}
