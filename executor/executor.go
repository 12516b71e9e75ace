package executor

import (
	"context"
	"errors"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/hanpama/gqlexec/events"
	"github.com/hanpama/gqlexec/internal/opid"
	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"

	"github.com/hanpama/gqlexec/executor/internal/future"
)

// ErrorBehavior selects how non-null violations propagate. The operation can
// override the request default with `@onError(action:)`.
type ErrorBehavior string

const (
	// ErrorPropagate nulls the nearest nullable ancestor on a non-null
	// violation (the GraphQL default).
	ErrorPropagate ErrorBehavior = "PROPAGATE"
	// ErrorNull records the error but leaves the violating field null without
	// touching its parent.
	ErrorNull ErrorBehavior = "NULL"
)

// Request defines all of the inputs required to execute a GraphQL operation.
// The context passed to the entry points doubles as the abort signal: its
// cancellation cause becomes the rejection reason of every in-flight promise
// and stream pull.
type Request struct {
	Schema         *schema.Schema
	Document       *language.QueryDocument
	OperationName  string
	VariableValues map[string]any
	RootValue      any

	// ContextValue is an opaque host value surfaced on ResolveInfo.
	ContextValue any

	// FieldResolver replaces the default resolver for fields without one.
	FieldResolver schema.ResolveFunc
	// TypeResolver replaces the default abstract-type resolution.
	TypeResolver schema.ResolveTypeFunc
	// SubscribeFieldResolver resolves subscription source streams for root
	// fields without a Subscribe hook.
	SubscribeFieldResolver schema.SubscribeFunc

	// ErrorBehavior is the operation-wide null-propagation default.
	ErrorBehavior ErrorBehavior

	// MaxCoercionErrors caps accumulated variable-coercion errors; zero means
	// unlimited.
	MaxCoercionErrors int

	// IdleHandler, when set, is invoked whenever execution cannot proceed.
	// Before it returns, at least one outstanding promise must have been
	// completed. When unset the executor blocks on the outstanding channels.
	IdleHandler func()

	// Logger receives resolver panic and subscription failure logs.
	Logger logrus.FieldLogger
}

type executionState struct {
	ctx               context.Context
	schema            *schema.Schema
	document          *language.QueryDocument
	fragments         map[string]*language.FragmentDefinition
	operation         *language.OperationDefinition
	variableValues    map[string]any
	rootValue         any
	contextValue      any
	fieldResolver     schema.ResolveFunc
	typeResolver      schema.ResolveTypeFunc
	subscribeResolver schema.SubscribeFunc
	errorBehavior     ErrorBehavior
	idleHandler       func()
	logger            logrus.FieldLogger

	// rootSink accumulates the initial payload's errors; incremental records
	// carry their own sinks.
	rootSink errorSink

	// sched is non-nil only for incremental executions.
	sched *scheduler

	pending     []*pendingRecv
	aborted     bool
	abortReason error

	// nullifiedPrefix tombstones response paths that were nulled by error
	// handling; pending incremental work under them is dropped.
	nullifiedPrefix map[string]struct{}

	// suspended flips when any resolution could not complete synchronously;
	// syncOnly turns a suspension into a hard failure.
	suspended bool
	syncOnly  bool
}

var errNoProgress = errors.New("GraphQL execution failed to complete synchronously.")

func newExecutionState(ctx context.Context, r *Request) (*executionState, []*GraphQLError) {
	operation, err := getOperation(r.Document, r.OperationName)
	if err != nil {
		return nil, []*GraphQLError{err}
	}

	behavior := r.ErrorBehavior
	if behavior == "" {
		behavior = ErrorPropagate
	}
	if d := operation.Directives.ForName("onError"); d != nil {
		if arg := d.Arguments.ForName("action"); arg != nil && arg.Value != nil {
			switch arg.Value.Raw {
			case string(ErrorNull):
				behavior = ErrorNull
			case string(ErrorPropagate):
				behavior = ErrorPropagate
			}
		}
	}

	ctx, _ = opid.NewContext(ctx)

	s := &executionState{
		ctx:               ctx,
		schema:            r.Schema,
		document:          r.Document,
		fragments:         make(map[string]*language.FragmentDefinition, len(r.Document.Fragments)),
		operation:         operation,
		rootValue:         r.RootValue,
		contextValue:      r.ContextValue,
		fieldResolver:     r.FieldResolver,
		typeResolver:      r.TypeResolver,
		subscribeResolver: r.SubscribeFieldResolver,
		errorBehavior:     behavior,
		idleHandler:       r.IdleHandler,
		logger:            r.Logger,
		nullifiedPrefix:   make(map[string]struct{}),
	}
	if s.fieldResolver == nil {
		s.fieldResolver = defaultFieldResolver
	}
	if s.typeResolver == nil {
		s.typeResolver = defaultResolveType
	}
	for _, f := range r.Document.Fragments {
		s.fragments[f.Name] = f
	}

	coerced, coercionErrs := coerceVariableValues(r.Schema, operation, r.VariableValues, r.MaxCoercionErrors)
	if len(coercionErrs) > 0 {
		return nil, coercionErrs
	}
	s.variableValues = coerced
	return s, nil
}

// getOperation selects the operation to execute.
func getOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, *GraphQLError) {
	if len(document.Operations) == 0 {
		return nil, newError("Must provide an operation.")
	}
	if operationName == "" {
		if len(document.Operations) > 1 {
			return nil, newError("Must provide operation name if query contains multiple operations.")
		}
		return document.Operations[0], nil
	}
	if op := document.Operations.ForName(operationName); op != nil {
		return op, nil
	}
	return nil, newError("Unknown operation named %q.", operationName)
}

func (s *executionState) rootType() (*schema.Type, *GraphQLError) {
	var name string
	switch s.operation.Operation {
	case language.Query:
		name = s.schema.QueryType
	case language.Mutation:
		name = s.schema.MutationType
	case language.Subscription:
		name = s.schema.SubscriptionType
	}
	t := s.schema.Types[name]
	if t == nil || t.Kind != schema.TypeKindObject {
		return nil, newError("Schema is not configured to execute %s operation.", string(s.operation.Operation))
	}
	return t, nil
}

func (s *executionState) registerRecv(ch reflect.Value) *pendingRecv {
	p := &pendingRecv{ch: ch}
	s.pending = append(s.pending, p)
	return p
}

func (s *executionState) abort(reason error) {
	if s.aborted {
		return
	}
	s.aborted = true
	if reason == nil {
		reason = context.Canceled
	}
	s.abortReason = reason
}

func (s *executionState) checkAbort() {
	if s.aborted {
		return
	}
	if err := s.ctx.Err(); err != nil {
		s.abort(context.Cause(s.ctx))
	}
}

// idle blocks until an outstanding receive completes or the context is
// cancelled. With no outstanding work and no idle handler, execution is stuck
// and errNoProgress is returned.
func (s *executionState) idle() error {
	s.checkAbort()
	if s.aborted {
		return nil
	}
	if s.syncOnly {
		return errNoProgress
	}
	if s.idleHandler != nil {
		s.idleHandler()
		return nil
	}

	live := s.pending[:0]
	for _, p := range s.pending {
		if !p.received && !p.consumed {
			live = append(live, p)
		}
	}
	s.pending = live

	if len(live) == 0 {
		return errNoProgress
	}

	cases := make([]reflect.SelectCase, 0, len(live)+1)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.ctx.Done())})
	for _, p := range live {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: p.ch})
	}
	chosen, recv, recvOK := reflect.Select(cases)
	if chosen == 0 {
		s.abort(context.Cause(s.ctx))
		return nil
	}
	p := live[chosen-1]
	if recvOK {
		p.val = recv.Interface()
	}
	p.chanOK = recvOK
	p.received = true
	return nil
}

// wait drives a future to completion, suspending through idle as needed.
func wait[T any](s *executionState, f future.Future[T]) (T, error) {
	for {
		f.Poll()
		if f.IsReady() {
			r := f.Result()
			return r.Value, r.Error
		}
		s.suspended = true
		if err := s.idle(); err != nil {
			var zero T
			return zero, err
		}
	}
}

// promiseFuture adapts a ResolvePromise into a future located at the field.
func (s *executionState) promiseFuture(p ResolvePromise, fields []*language.Field, path Path) future.Future[any] {
	recv := s.registerRecv(reflect.ValueOf(p))
	return future.New(func() (future.Result[any], bool) {
		s.checkAbort()
		if s.aborted {
			return future.Result[any]{Error: newFieldError(s.abortReason, fields, path)}, true
		}
		v, ok, ready := recv.poll()
		if !ready {
			return future.Result[any]{}, false
		}
		if !ok {
			return future.Result[any]{Error: newFieldError(errors.New("resolver promise was closed without a result"), fields, path)}, true
		}
		rr := v.(ResolveResult)
		if rr.Err != nil {
			return future.Result[any]{Error: newFieldError(rr.Err, fields, path)}, true
		}
		return future.Result[any]{Value: rr.Value}, true
	})
}

// streamEvent is one pull outcome from a SourceStream.
type streamEvent struct {
	value any
	done  bool
}

// streamNextFuture pulls the next event of a source stream as a future. A
// stream event carrying an error resolves the future to that error.
func (s *executionState) streamNextFuture(stream *SourceStream, fields []*language.Field, path Path) future.Future[streamEvent] {
	recv := s.registerRecv(stream.channel())
	return future.New(func() (future.Result[streamEvent], bool) {
		s.checkAbort()
		if s.aborted {
			stream.Stop()
			return future.Result[streamEvent]{Error: newFieldError(s.abortReason, fields, path)}, true
		}
		v, ok, ready := recv.poll()
		if !ready {
			return future.Result[streamEvent]{}, false
		}
		if !ok {
			return future.Result[streamEvent]{Value: streamEvent{done: true}}, true
		}
		if err, isErr := v.(error); isErr {
			return future.Result[streamEvent]{Error: newFieldError(err, fields, path)}, true
		}
		return future.Result[streamEvent]{Value: streamEvent{value: v}}, true
	})
}

func (s *executionState) publishStart() {
	events.Publish(s.ctx, events.ExecuteStart{
		OperationName: s.operation.Name,
		OperationType: string(s.operation.Operation),
	})
}

// Prefix tombstone helpers
func (s *executionState) markNullifiedPrefix(p Path) {
	key := pathToString(p)
	if key != "" {
		s.nullifiedPrefix[key] = struct{}{}
	}
}

func (s *executionState) hasNullifiedPrefix(p Path) bool {
	if len(s.nullifiedPrefix) == 0 {
		return false
	}
	cur := Path{}
	for _, elem := range p {
		cur = append(cur, elem)
		if _, ok := s.nullifiedPrefix[pathToString(cur)]; ok {
			return true
		}
	}
	return false
}

func (s *executionState) logError(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WithError(err).Error(msg)
}
