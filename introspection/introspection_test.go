package introspection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlexec/executor"
	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

func testSchema() *schema.Schema {
	sch := schema.NewSchema("test schema")
	query := schema.NewType("Query", schema.TypeKindObject, "")
	query.AddField(schema.NewField("hello", schema.NamedType("String")))
	sch.AddType(query)
	sch.QueryType = "Query"
	return sch
}

func execute(t *testing.T, sch *schema.Schema, query string) map[string]any {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	result := executor.Execute(context.Background(), &executor.Request{Schema: sch, Document: doc})
	require.Empty(t, result.Errors)
	data, ok := result.Data.(*executor.OrderedMap)
	require.True(t, ok)
	return plain(data).(map[string]any)
}

func plain(v any) any {
	switch val := v.(type) {
	case *executor.OrderedMap:
		m := map[string]any{}
		for _, k := range val.Keys() {
			inner, _ := val.Get(k)
			m[k] = plain(inner)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func TestWrap_SchemaField(t *testing.T) {
	sch := Wrap(testSchema())

	data := execute(t, sch, `{ __schema { queryType { name } description } }`)

	require.Equal(t, map[string]any{
		"__schema": map[string]any{
			"queryType":   map[string]any{"name": "Query"},
			"description": "test schema",
		},
	}, data)
}

func TestWrap_TypeField(t *testing.T) {
	sch := Wrap(testSchema())

	data := execute(t, sch, `{ __type(name: "Query") { kind name fields { name type { name } } } }`)

	require.Equal(t, map[string]any{
		"__type": map[string]any{
			"kind": "OBJECT",
			"name": "Query",
			"fields": []any{
				map[string]any{"name": "hello", "type": map[string]any{"name": "String"}},
			},
		},
	}, data)
}

func TestWrap_UnknownTypeIsNull(t *testing.T) {
	sch := Wrap(testSchema())

	data := execute(t, sch, `{ __type(name: "Missing") { name } }`)

	require.Equal(t, map[string]any{"__type": nil}, data)
}

func TestWrap_WrappedTypeRefs(t *testing.T) {
	base := testSchema()
	base.Types["Query"].AddField(schema.NewField("ids", schema.NonNullType(schema.ListType(schema.NamedType("ID")))))
	sch := Wrap(base)

	data := execute(t, sch, `{ __type(name: "Query") { fields { name type { kind name ofType { kind name } } } } }`)

	fields := data["__type"].(map[string]any)["fields"].([]any)
	require.Len(t, fields, 2)
	ids := fields[1].(map[string]any)
	require.Equal(t, "ids", ids["name"])
	typeRef := ids["type"].(map[string]any)
	require.Equal(t, "NON_NULL", typeRef["kind"])
	require.Nil(t, typeRef["name"])
	require.Equal(t, map[string]any{"kind": "LIST", "name": nil}, typeRef["ofType"])
}

func TestWrap_DoesNotTouchOriginal(t *testing.T) {
	original := testSchema()
	_ = Wrap(original)

	require.Nil(t, original.Types["Query"].Field("__schema"))
	require.NotContains(t, original.Types, "__Schema")
}
