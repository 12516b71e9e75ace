// Package executor implements the execution core of a GraphQL runtime: given
// a validated schema, a parsed operation document, a root value and a
// variable map, it produces a response tree by traversing selection sets and
// invoking resolvers. It coordinates value completion under the type system's
// nullability rules, transparent interleaving of synchronous and asynchronous
// resolution, incremental delivery of deferred and streamed work, and
// long-lived subscription event streams.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name, or by uniqueness when unnamed).
//  2. Coerces variables against the operation's variable definitions,
//     accumulating structured, path-annotated errors. Errors here stop
//     execution before any resolver runs and surface with no data key.
//  3. Builds an execution state: schema, document, operation, coerced
//     variables, root value, resolver defaults, error behavior, and the
//     abort signal (the context's cancellation cause).
//
// # Execution Model
//
// Execution is cooperative and single-threaded. Resolvers may return plain
// values, errors, slices, a ResolvePromise (a single-result channel fulfilled
// from a host goroutine), or a *SourceStream (an asynchronous sequence).
// Every asynchronous outcome becomes a poll-based future; the executor owns
// the polling loop. When no future can make progress, the executor blocks on
// the outstanding channels (or calls the request's IdleHandler), so an
// entirely synchronous operation completes without scheduling any
// asynchronous work at all.
//
// Selection sets collect into grouped field sets preserving response-name
// order; @skip and @include prune selections, while @defer and @stream
// register pending records with the incremental scheduler instead of
// inlining their work.
//
// Top-level query fields complete with unconstrained interleaving; top-level
// mutation fields execute strictly serially, each subtree finishing before
// the next resolver is invoked. List items complete in parallel and
// reassemble in index order.
//
// # Value Completion and Errors
//
// Field errors travel up the future chain until a nullable position catches
// them: the error is recorded, the position becomes null, and the subtree
// beneath it is tombstoned so queued incremental work there is dropped.
// Non-null positions propagate the null to their parent; a clean null under
// non-null synthesizes the violation error. Semantic-non-null positions are
// a half barrier: a null that arrived with an error stands, a clean null
// records the violation without nulling the parent. The operation-level
// @onError(action: NULL) directive turns every position into a catch point.
//
// # Incremental Delivery
//
// ExecuteIncrementally returns the initial payload plus a stream of
// subsequent payloads. The scheduler tracks pending records (deferred
// fragments, streamed list tails) in a parent-child tree: a record emits
// only after its parent, sibling completion order is emission order, and the
// final payload carries hasNext false exactly once. Aborting the operation
// cancels outstanding records and ends the stream.
//
// # Subscriptions
//
// Subscribe resolves the subscription root field to a *SourceStream and maps
// each event through the full pipeline, yielding one result per event.
// Stopping the response stream releases the upstream source; errors from the
// source terminate the stream while per-event execution errors surface
// inside that event's result.
package executor
