package executor

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/gqlexec/schema"
)

func emailSchema(t *testing.T, subscribe schema.SubscribeFunc) *schema.Schema {
	t.Helper()
	return &schema.Schema{
		QueryType:        "Query",
		SubscriptionType: "Subscription",
		Types: map[string]*schema.Type{
			"Query": {Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{{Name: "ok", Type: schema.NamedType("String")}}},
			"Subscription": {
				Name: "Subscription",
				Kind: schema.TypeKindObject,
				Fields: []*schema.Field{
					{
						Name:      "importantEmail",
						Type:      schema.NamedType("String"),
						Subscribe: subscribe,
						Resolve: func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
							return source, nil
						},
					},
				},
			},
			"String": scalarType("String"),
		},
	}
}

// Pattern: Result comparison
func TestSubscribe_MapsEventsAndStops(t *testing.T) {
	events := make(chan any, 4)
	stopped := make(chan struct{})
	sch := emailSchema(t, func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return NewSourceStream(events, func() {
			select {
			case <-stopped:
			default:
				close(stopped)
			}
		}), nil
	})
	doc := mustParseQuery(t, "subscription { importantEmail }")

	stream, errResult := Subscribe(context.Background(), &Request{Schema: sch, Document: doc})
	if errResult != nil {
		t.Fatalf("unexpected error result: %v", errorMessages(errResult.Errors))
	}

	events <- "E1"
	events <- "E2"

	for _, want := range []string{"E1", "E2"} {
		result, ok := stream.Next()
		if !ok {
			t.Fatalf("stream ended early")
		}
		if diff := cmp.Diff(map[string]any{"importantEmail": want}, plainData(result.Data)); diff != "" {
			t.Fatalf("event result mismatch (-want +got):\n%s", diff)
		}
	}

	stream.Stop()
	stream.Stop()

	if _, ok := stream.Next(); ok {
		t.Fatalf("stream must end after Stop")
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("upstream source was not released")
	}

	// Events emitted after Stop produce no payloads.
	events <- "E3"
	if _, ok := stream.Next(); ok {
		t.Fatalf("no payloads expected after Stop")
	}
}

func TestSubscribe_RequiresAsyncIterable(t *testing.T) {
	sch := emailSchema(t, func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return "not a stream", nil
	})
	doc := mustParseQuery(t, "subscription { importantEmail }")

	stream, errResult := Subscribe(context.Background(), &Request{Schema: sch, Document: doc})
	if stream != nil {
		t.Fatalf("expected no stream")
	}
	want := []string{`Subscription field must return Async Iterable. Received: "not a stream".`}
	if diff := cmp.Diff(want, errorMessages(errResult.Errors)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscribe_RequiresSubscriptionOperation(t *testing.T) {
	sch := emailSchema(t, nil)
	doc := mustParseQuery(t, "{ ok }")

	stream, errResult := Subscribe(context.Background(), &Request{Schema: sch, Document: doc})
	if stream != nil {
		t.Fatalf("expected no stream")
	}
	want := []string{"A subscription operation is required."}
	if diff := cmp.Diff(want, errorMessages(errResult.Errors)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestSubscribe_PerEventErrorsKeepStreamAlive(t *testing.T) {
	events := make(chan any, 2)
	sch := emailSchema(t, func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return NewSourceStream(events, nil), nil
	})
	sch.Types["Subscription"].Fields[0].Resolve = func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		if source == "bad" {
			return nil, errFromString("mapper failed")
		}
		return source, nil
	}
	doc := mustParseQuery(t, "subscription { importantEmail }")

	stream, errResult := Subscribe(context.Background(), &Request{Schema: sch, Document: doc})
	if errResult != nil {
		t.Fatalf("unexpected error result: %v", errorMessages(errResult.Errors))
	}

	events <- "bad"
	events <- "fine"

	first, ok := stream.Next()
	if !ok {
		t.Fatalf("stream ended early")
	}
	if diff := cmp.Diff(map[string]any{"importantEmail": nil}, plainData(first.Data)); diff != "" {
		t.Fatalf("error event data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mapper failed"}, errorMessages(first.Errors)); diff != "" {
		t.Fatalf("error event errors mismatch (-want +got):\n%s", diff)
	}

	second, ok := stream.Next()
	if !ok {
		t.Fatalf("stream ended early")
	}
	if diff := cmp.Diff(map[string]any{"importantEmail": "fine"}, plainData(second.Data)); diff != "" {
		t.Fatalf("event result mismatch (-want +got):\n%s", diff)
	}
	stream.Stop()
}

// Pattern: Result comparison
func TestSubscribe_SourceCloseEndsStream(t *testing.T) {
	events := make(chan any, 1)
	sch := emailSchema(t, func(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
		return NewSourceStream(events, nil), nil
	})
	doc := mustParseQuery(t, "subscription { importantEmail }")

	stream, _ := Subscribe(context.Background(), &Request{Schema: sch, Document: doc})

	events <- "only"
	close(events)

	if result, ok := stream.Next(); !ok || result == nil {
		t.Fatalf("expected the buffered event")
	}
	if _, ok := stream.Next(); ok {
		t.Fatalf("stream must end when the source closes")
	}
}

// errFromString keeps resolver error construction out of the test body.
func errFromString(msg string) error { return &GraphQLError{Message: msg} }
