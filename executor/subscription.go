package executor

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/hanpama/gqlexec/events"
	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

// Subscribe builds the source event stream from the subscription's root field
// and maps every event through the execution pipeline. On failure it returns
// a nil stream and the error result.
func Subscribe(ctx context.Context, r *Request) (*ResponseStream, *ExecutionResult) {
	s, reqErrs := newExecutionState(ctx, r)
	if len(reqErrs) > 0 {
		return nil, requestErrorResult(reqErrs...)
	}
	if s.operation.Operation != language.Subscription {
		return nil, requestErrorResult(newError("A subscription operation is required."))
	}
	if operationUsesIncremental(s) {
		return nil, requestErrorResult(newError(multiplePayloadsMessage))
	}

	src, errResult := s.createSourceStream()
	if errResult != nil {
		return nil, errResult
	}
	return s.mapSourceStream(src), nil
}

// createSourceStream resolves the single root field's subscribe hook into the
// upstream event stream. Additional root fields are ignored: their resolvers
// are not called during subscription initialization.
func (s *executionState) createSourceStream() (*SourceStream, *ExecutionResult) {
	rootType, reqErr := s.rootType()
	if reqErr != nil {
		return nil, requestErrorResult(reqErr)
	}

	grouped, _ := collectFields(s, rootType, s.operation.SelectionSet)
	if len(grouped.fields) == 0 {
		return nil, requestErrorResult(newError("Subscription operation must select a root field."))
	}
	item := grouped.orderedFields()[0]
	fields := item.Fields
	field := fields[0]
	path := Path{item.ResponseName}

	fieldDef := rootType.Field(field.Name)
	if fieldDef == nil {
		return nil, requestErrorResult(newError("The subscription field \"%s\" is not defined.", field.Name))
	}

	argumentValues, argErr := coerceArgumentValues(s, fieldDef, field, fields, path)
	if argErr != nil {
		return nil, requestErrorResult(argErr)
	}

	info := schema.ResolveInfo{
		FieldName:      field.Name,
		FieldNodes:     fields,
		ParentType:     rootType,
		ReturnType:     fieldDef.Type,
		Path:           []any(path),
		Schema:         s.schema,
		Fragments:      s.fragments,
		VariableValues: s.variableValues,
		RootValue:      s.rootValue,
		Operation:      s.operation,
		ContextValue:   s.contextValue,
	}

	subscribe := schema.ResolveFunc(fieldDef.Subscribe)
	if subscribe == nil {
		if s.subscribeResolver != nil {
			subscribe = schema.ResolveFunc(s.subscribeResolver)
		} else {
			subscribe = defaultFieldResolver
		}
	}

	resolved, err := s.invokeResolver(subscribe, s.rootValue, argumentValues, info, path)
	if err != nil {
		return nil, requestErrorResult(newFieldError(err, fields, path))
	}

	if p, ok := resolved.(ResolvePromise); ok {
		resolved, err = wait(s, s.promiseFuture(p, fields, path))
		if err != nil {
			return nil, requestErrorResult(asGraphQLError(err))
		}
	}

	src, ok := resolved.(*SourceStream)
	if !ok {
		return nil, requestErrorResult(newFieldError(
			newError("Subscription field must return Async Iterable. Received: %s.", inspectValue(resolved)),
			fields, path))
	}
	return src, nil
}

// mapSourceStream runs the full execution pipeline once per source event.
// Per-event execution errors surface inside the yielded result and the stream
// continues; an error value emitted by the source itself, or the source's
// closure, terminates the stream.
func (s *executionState) mapSourceStream(src *SourceStream) *ResponseStream {
	out := make(chan *ExecutionResult)
	done := make(chan struct{})
	var once sync.Once

	events.Publish(s.ctx, events.SubscriptionStart{
		OperationName: s.operation.Name,
	})

	go func() {
		defer close(out)
		defer src.Stop()
		started := time.Now()
		count := 0
		defer func() {
			events.Publish(s.ctx, events.SubscriptionFinish{
				OperationName: s.operation.Name,
				Events:        count,
				Duration:      time.Since(started),
			})
		}()

		cases := []reflect.SelectCase{
			{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(done)},
			{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(s.ctx.Done())},
			{Dir: reflect.SelectRecv, Chan: src.channel()},
		}
		for {
			chosen, recv, recvOK := reflect.Select(cases)
			if chosen != 2 {
				return
			}
			if !recvOK {
				return
			}
			event := recv.Interface()
			if err, isErr := event.(error); isErr {
				s.logError("subscription source failed", err)
				result := requestErrorResult(asGraphQLError(err))
				select {
				case out <- result:
				case <-done:
				}
				return
			}

			count++
			events.Publish(s.ctx, events.SubscriptionEvent{
				OperationName: s.operation.Name,
				Sequence:      count,
			})
			result := s.executeSubscriptionEvent(event)
			select {
			case out <- result:
			case <-done:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()

	return &ResponseStream{ch: out, stop: func() { once.Do(func() { close(done) }) }}
}

// executeSubscriptionEvent executes the operation's selection set with the
// event as the root value, reusing the coerced variables and schema.
func (s *executionState) executeSubscriptionEvent(event any) *ExecutionResult {
	child := &executionState{
		ctx:               s.ctx,
		schema:            s.schema,
		document:          s.document,
		fragments:         s.fragments,
		operation:         s.operation,
		variableValues:    s.variableValues,
		rootValue:         event,
		contextValue:      s.contextValue,
		fieldResolver:     s.fieldResolver,
		typeResolver:      s.typeResolver,
		subscribeResolver: s.subscribeResolver,
		errorBehavior:     s.errorBehavior,
		idleHandler:       s.idleHandler,
		logger:            s.logger,
		nullifiedPrefix:   make(map[string]struct{}),
	}
	data, errs, reqFail := child.executeRoot()
	if reqFail != nil {
		s.logError("subscription event execution failed", reqFail)
		return requestErrorResult(reqFail)
	}
	return dataResult(data, errs)
}
