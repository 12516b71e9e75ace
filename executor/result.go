package executor

// ExecutionResult is the complete response of a non-incremental execution, or
// of a single subscription event.
type ExecutionResult struct {
	Data   any             `json:"data"`
	Errors []*GraphQLError `json:"errors,omitempty"`

	// hasData distinguishes `data: null` from an absent data key (request and
	// variable-coercion errors produce no data at all).
	hasData bool
}

// HasData reports whether the result carries a data key (which may be null).
func (r *ExecutionResult) HasData() bool { return r.hasData }

// MarshalJSON omits the data key entirely for request-level errors.
func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	if !r.hasData {
		type errorsOnly struct {
			Errors []*GraphQLError `json:"errors,omitempty"`
		}
		return jsonConfig.Marshal(errorsOnly{Errors: r.Errors})
	}
	type full struct {
		Data   any             `json:"data"`
		Errors []*GraphQLError `json:"errors,omitempty"`
	}
	return jsonConfig.Marshal(full{Data: r.Data, Errors: r.Errors})
}

func dataResult(data any, errs []*GraphQLError) *ExecutionResult {
	return &ExecutionResult{Data: data, Errors: errs, hasData: true}
}

func requestErrorResult(errs ...*GraphQLError) *ExecutionResult {
	return &ExecutionResult{Errors: errs}
}

// PendingInfo announces a pending incremental record in the initial payload.
type PendingInfo struct {
	ID    int64  `json:"id,string"`
	Path  Path   `json:"path"`
	Label string `json:"label,omitempty"`
}

// CompletedInfo announces that a pending record finished, successfully or not.
type CompletedInfo struct {
	ID     int64           `json:"id,string"`
	Path   Path            `json:"path"`
	Label  string          `json:"label,omitempty"`
	Errors []*GraphQLError `json:"errors,omitempty"`
}

// IncrementalPayload carries one record's delivery: Data for deferred
// fragments, Items for streamed list entries.
type IncrementalPayload struct {
	ID     int64           `json:"id,string"`
	Path   Path            `json:"path"`
	Label  string          `json:"label,omitempty"`
	Data   any             `json:"data,omitempty"`
	Items  []any           `json:"items,omitempty"`
	Errors []*GraphQLError `json:"errors,omitempty"`
}

// InitialResult is the first payload of an incremental execution.
type InitialResult struct {
	Data    any             `json:"data"`
	Errors  []*GraphQLError `json:"errors,omitempty"`
	Pending []PendingInfo   `json:"pending,omitempty"`
	HasNext bool            `json:"hasNext"`
}

// SubsequentResult is one follow-up payload of an incremental execution.
// HasNext is false exactly once, on the final payload.
type SubsequentResult struct {
	Incremental []IncrementalPayload `json:"incremental,omitempty"`
	Completed   []CompletedInfo      `json:"completed,omitempty"`
	HasNext     bool                 `json:"hasNext"`
}

// SubsequentStream delivers subsequent incremental payloads in emission
// order. Stop abandons the stream and cancels outstanding incremental work.
type SubsequentStream struct {
	ch   chan *SubsequentResult
	stop func()
}

// Next blocks for the next payload; ok is false once the stream ended.
func (s *SubsequentStream) Next() (*SubsequentResult, bool) {
	r, ok := <-s.ch
	return r, ok
}

// Stop abandons the stream. Safe to call more than once.
func (s *SubsequentStream) Stop() { s.stop() }

// IncrementalResults is returned by ExecuteIncrementally for operations that
// defer or stream part of their response.
type IncrementalResults struct {
	Initial    *InitialResult
	Subsequent *SubsequentStream
}

// ResponseStream delivers one ExecutionResult per subscription source event.
type ResponseStream struct {
	ch   chan *ExecutionResult
	stop func()
}

// Next blocks for the next event result; ok is false once the stream ended.
func (s *ResponseStream) Next() (*ExecutionResult, bool) {
	r, ok := <-s.ch
	return r, ok
}

// Stop ends consumption and releases the upstream source stream. Events the
// source emits afterwards produce no payloads. Safe to call more than once.
func (s *ResponseStream) Stop() { s.stop() }
