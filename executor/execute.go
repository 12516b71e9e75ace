package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hanpama/gqlexec/events"
	language "github.com/hanpama/gqlexec/language"
)

const multiplePayloadsMessage = "Executing this GraphQL operation would unexpectedly produce multiple payloads (due to @defer or @stream directive)"

// Execute runs a query, mutation, or single subscription event to a single
// result. It completes synchronously when no resolver suspends. Operations
// carrying @defer or @stream must go through ExecuteIncrementally instead.
func Execute(ctx context.Context, r *Request) *ExecutionResult {
	s, reqErrs := newExecutionState(ctx, r)
	if len(reqErrs) > 0 {
		return requestErrorResult(reqErrs...)
	}
	if operationUsesIncremental(s) {
		return requestErrorResult(newError(multiplePayloadsMessage))
	}
	return s.execute()
}

// ExecuteSync runs like Execute but fails with an error result when any step
// requires suspension.
func ExecuteSync(ctx context.Context, r *Request) *ExecutionResult {
	r2 := *r
	r2.IdleHandler = nil
	s, reqErrs := newExecutionState(ctx, &r2)
	if len(reqErrs) > 0 {
		return requestErrorResult(reqErrs...)
	}
	if operationUsesIncremental(s) {
		return requestErrorResult(newError(multiplePayloadsMessage))
	}
	s.syncOnly = true
	return s.execute()
}

// ExecuteIncrementally runs an operation that may defer or stream part of its
// response. Operations without @defer/@stream return a plain result and a nil
// IncrementalResults.
func ExecuteIncrementally(ctx context.Context, r *Request) (*IncrementalResults, *ExecutionResult) {
	s, reqErrs := newExecutionState(ctx, r)
	if len(reqErrs) > 0 {
		return nil, requestErrorResult(reqErrs...)
	}
	if !operationUsesIncremental(s) {
		return nil, s.execute()
	}

	s.sched = newScheduler(s)
	s.publishStart()
	started := time.Now()

	data, errs, reqFail := s.executeRoot()
	if reqFail != nil {
		s.publishFinishAfter(started, []*GraphQLError{reqFail})
		return nil, requestErrorResult(reqFail)
	}

	initial := &InitialResult{
		Data:    data,
		Errors:  errs,
		Pending: s.sched.pendingInfos(),
		HasNext: s.sched.hasPending(),
	}

	out := make(chan *SubsequentResult)
	done := make(chan struct{})
	var once sync.Once
	stream := &SubsequentStream{ch: out, stop: func() { once.Do(func() { close(done) }) }}

	if !s.sched.hasPending() {
		close(out)
		s.publishFinishAfter(started, errs)
		return &IncrementalResults{Initial: initial, Subsequent: stream}, nil
	}

	go func() {
		s.sched.drive(out, done)
		s.publishFinishAfter(started, errs)
	}()
	return &IncrementalResults{Initial: initial, Subsequent: stream}, nil
}

// execute runs the operation to a single result.
func (s *executionState) execute() *ExecutionResult {
	s.publishStart()
	started := time.Now()

	data, errs, reqFail := s.executeRoot()
	if reqFail != nil {
		s.publishFinishAfter(started, []*GraphQLError{reqFail})
		return requestErrorResult(reqFail)
	}
	s.publishFinishAfter(started, errs)
	return dataResult(data, errs)
}

// executeRoot executes the root selection set. It returns the data value
// (nil when a non-null violation bubbled to the root) and the accumulated
// errors; reqFail is non-nil only for request-level failures.
func (s *executionState) executeRoot() (any, []*GraphQLError, *GraphQLError) {
	rootType, reqErr := s.rootType()
	if reqErr != nil {
		return nil, nil, reqErr
	}

	serial := s.operation.Operation == language.Mutation

	f := s.executeSelections(s.operation.SelectionSet, rootType, s.rootValue, Path{}, serial, &s.rootSink, nil)
	data, err := wait(s, f)
	if err != nil {
		if errors.Is(err, errNoProgress) {
			return nil, nil, asGraphQLError(err)
		}
		s.rootSink.add(asGraphQLError(err))
		if s.sched != nil {
			s.sched.cancelAll()
		}
		return nil, s.rootSink.take(), nil
	}
	if data == nil {
		return nil, s.rootSink.take(), nil
	}
	return data, s.rootSink.take(), nil
}

func (s *executionState) publishFinishAfter(started time.Time, errs []*GraphQLError) {
	asErrors := make([]error, len(errs))
	for i, e := range errs {
		asErrors[i] = e
	}
	events.Publish(s.ctx, events.ExecuteFinish{
		OperationName: s.operation.Name,
		OperationType: string(s.operation.Operation),
		Errors:        asErrors,
		Duration:      time.Since(started),
	})
}
