package executor

import (
	"context"
	"sync"
	"testing"

	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// plainData converts OrderedMap-based response data into plain maps so tests
// can diff against literals.
func plainData(v any) any {
	switch val := v.(type) {
	case *OrderedMap:
		if val == nil {
			return nil
		}
		m := make(map[string]any, val.Len())
		for _, k := range val.Keys() {
			inner, _ := val.Get(k)
			m[k] = plainData(inner)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainData(item)
		}
		return out
	default:
		return v
	}
}

// dataKeys returns the response map's top-level key order.
func dataKeys(v any) []string {
	if m, ok := v.(*OrderedMap); ok {
		return m.Keys()
	}
	return nil
}

// errorMessages projects errors to their messages.
func errorMessages(errs []*GraphQLError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// errorPaths projects errors to their stringified paths.
func errorPaths(errs []*GraphQLError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = pathToString(e.Path)
	}
	return out
}

// valueResolver returns a resolver that always resolves the provided value.
func valueResolver(val any) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return val, nil
	}
}

// errorResolver returns a resolver that always fails with the provided error.
func errorResolver(err error) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return nil, err
	}
}

// promiseResolver resolves asynchronously from a separate goroutine.
func promiseResolver(val any, err error) schema.ResolveFunc {
	return func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		p, complete := NewResolvePromise()
		go complete(val, err)
		return p, nil
	}
}

// callLog records resolver invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// scalarType declares a plain leaf type for schema literals in tests.
func scalarType(name string) *schema.Type {
	return &schema.Type{Name: name, Kind: schema.TypeKindScalar}
}
