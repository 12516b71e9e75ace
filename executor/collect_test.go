package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/gqlexec/schema"
)

// Pattern: Result comparison
func TestCollect_SkipInclude(t *testing.T) {
	sch := twoStringSchema(t)

	cases := []struct {
		name      string
		query     string
		variables map[string]any
		want      map[string]any
	}{
		{
			name:  "skip true omits the field",
			query: "{ a @skip(if: true) b }",
			want:  map[string]any{"b": "b"},
		},
		{
			name:  "include false omits the field",
			query: "{ a @include(if: false) b }",
			want:  map[string]any{"b": "b"},
		},
		{
			name:      "variables drive the decision",
			query:     "query ($s: Boolean!) { a @skip(if: $s) b @include(if: $s) }",
			variables: map[string]any{"s": true},
			want:      map[string]any{"b": "b"},
		},
		{
			name:  "skip wins over include",
			query: "{ a @skip(if: true) @include(if: true) b }",
			want:  map[string]any{"b": "b"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Execute(context.Background(), &Request{
				Schema:         sch,
				Document:       mustParseQuery(t, tc.query),
				VariableValues: tc.variables,
			})
			if got.Errors != nil {
				t.Fatalf("unexpected errors: %v", errorMessages(got.Errors))
			}
			if diff := cmp.Diff(tc.want, plainData(got.Data)); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Pattern: Result comparison
func TestCollect_FragmentMergeOrderAndDedupe(t *testing.T) {
	log := &callLog{}
	counted := func(name, value string) schema.ResolveFunc {
		return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
			log.record(name)
			return value, nil
		}
	}
	sch := &schema.Schema{
		QueryType: "Query",
		Types: map[string]*schema.Type{
			"Query": {
				Name: "Query",
				Kind: schema.TypeKindObject,
				Fields: []*schema.Field{
					{Name: "a", Type: schema.NamedType("String"), Resolve: counted("a", "A")},
					{Name: "b", Type: schema.NamedType("String"), Resolve: counted("b", "B")},
				},
			},
			"String": scalarType("String"),
		},
	}
	doc := mustParseQuery(t, "{ ...F b ...F } fragment F on Query { a }")

	got := Execute(context.Background(), &Request{Schema: sch, Document: doc})

	if diff := cmp.Diff([]string{"a", "b"}, dataKeys(got.Data)); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	// The spread is visited once; its field resolves once.
	if diff := cmp.Diff([]string{"a", "b"}, log.snapshot()); diff != "" {
		t.Fatalf("resolver calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCollect_TypeConditions(t *testing.T) {
	sch := petSchema(t, interfacePet(), dogImplementingPet(), []any{
		map[string]any{"__typename": "Dog", "name": "Rex"},
	})
	sch.Types["Cat"] = &schema.Type{
		Name:       "Cat",
		Kind:       schema.TypeKindObject,
		Interfaces: []string{"Pet"},
		Fields: []*schema.Field{
			{Name: "name", Type: schema.NamedType("String")},
			{Name: "lives", Type: schema.NamedType("String")},
		},
	}
	doc := mustParseQuery(t, `{
		pets {
			... on Pet { name }
			... on Dog { __typename }
			... on Cat { lives }
		}
	}`)

	got := Execute(context.Background(), &Request{Schema: sch, Document: doc})

	if got.Errors != nil {
		t.Fatalf("unexpected errors: %v", errorMessages(got.Errors))
	}
	want := map[string]any{"pets": []any{map[string]any{"name": "Rex", "__typename": "Dog"}}}
	if diff := cmp.Diff(want, plainData(got.Data)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCollect_AliasesGroupSeparately(t *testing.T) {
	sch := twoStringSchema(t)
	doc := mustParseQuery(t, "{ first: a second: a }")

	got := Execute(context.Background(), &Request{Schema: sch, Document: doc})

	want := map[string]any{"first": "a", "second": "a"}
	if diff := cmp.Diff(want, plainData(got.Data)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first", "second"}, dataKeys(got.Data)); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}
