package executor

import (
	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"

	"github.com/hanpama/gqlexec/events"
	"github.com/hanpama/gqlexec/executor/internal/future"
)

type recordKind int

const (
	recordDefer recordKind = iota
	recordStream
)

type recordState int

const (
	recordPending recordState = iota
	recordCompleted
	recordFailed
	recordCancelled
)

// streamItemResult is one outcome of a stream record's item generator.
type streamItemResult struct {
	value any
	done  bool
}

// pendingRecord is the scheduler's unit of deferred work: one deferred
// fragment or one streamed list tail. Each record owns its error sink; a
// record's payloads emit only after its parent record has emitted.
type pendingRecord struct {
	id     int64
	label  string
	path   Path
	parent *pendingRecord
	kind   recordKind
	state  recordState
	sink   errorSink

	// Deferred-fragment execution.
	run     func(rec *pendingRecord) future.Future[*OrderedMap]
	fut     future.Future[*OrderedMap]
	started bool
	data    *OrderedMap

	// Streamed-tail execution. nextItem completes one item per call; done
	// signals exhaustion.
	nextItem  func(rec *pendingRecord, itemSink *errorSink, index int) future.Future[streamItemResult]
	itemIndex int
	curItem   *future.Future[streamItemResult]
	curSink   *errorSink
	stop      func()

	failErrors []*GraphQLError
	emitted    bool
	outbox     []payloadPiece
}

type payloadPiece struct {
	incremental *IncrementalPayload
	completed   *CompletedInfo
}

func (r *pendingRecord) terminal() bool {
	return r.state != recordPending
}

// hasFailedAncestor walks up to find a failed or cancelled ancestor, which
// dooms this record: its path no longer exists in the delivered data.
func (r *pendingRecord) hasFailedAncestor() bool {
	for p := r.parent; p != nil; p = p.parent {
		if p.state == recordFailed || p.state == recordCancelled {
			return true
		}
	}
	return false
}

// scheduler manages pending incremental records and the subsequent-payload
// stream. All record updates flow through scheduler methods; the completer
// never mutates records directly.
type scheduler struct {
	state   *executionState
	nextID  int64
	records []*pendingRecord
}

func newScheduler(s *executionState) *scheduler {
	return &scheduler{state: s}
}

func (sc *scheduler) register(parent *pendingRecord, path Path, label string, kind recordKind) *pendingRecord {
	rec := &pendingRecord{
		id:     sc.nextID,
		label:  label,
		path:   path,
		parent: parent,
		kind:   kind,
	}
	sc.nextID++
	sc.records = append(sc.records, rec)
	return rec
}

// registerDefer creates a pending record for a deferred fragment. The
// fragment's selections are collected and executed only when the scheduler
// drives the record, after the initial payload.
func (sc *scheduler) registerDefer(parent *pendingRecord, path Path, d *deferredFragment, objectType *schema.Type, objectValue any) {
	rec := sc.register(parent, path, d.label, recordDefer)
	selections := d.selections
	rec.run = func(rec *pendingRecord) future.Future[*OrderedMap] {
		return sc.state.executeSelections(selections, objectType, objectValue, path, false, &rec.sink, rec)
	}
}

// registerStreamItems creates a stream record over an already-materialized
// list tail.
func (sc *scheduler) registerStreamItems(
	parent *pendingRecord,
	path Path,
	label string,
	itemType *schema.TypeRef,
	parentType *schema.Type,
	fields []*language.Field,
	tail []any,
	startIndex int,
) {
	rec := sc.register(parent, path, label, recordStream)
	rec.itemIndex = startIndex
	pos := 0
	rec.nextItem = func(rec *pendingRecord, itemSink *errorSink, index int) future.Future[streamItemResult] {
		if pos >= len(tail) {
			return future.Ok(streamItemResult{done: true})
		}
		item := tail[pos]
		pos++
		itemPath := appendPath(path, index)
		f := sc.state.catchErrorIfNullable(itemType,
			sc.state.completeValue(itemType, parentType, fields, nil, item, itemPath, itemSink, rec), itemSink, itemPath)
		return future.MapOk(f, func(v any) streamItemResult { return streamItemResult{value: v} })
	}
}

// registerStreamSource creates a stream record over a live source stream.
func (sc *scheduler) registerStreamSource(
	parent *pendingRecord,
	path Path,
	label string,
	itemType *schema.TypeRef,
	parentType *schema.Type,
	fields []*language.Field,
	src *SourceStream,
	startIndex int,
) {
	rec := sc.register(parent, path, label, recordStream)
	rec.itemIndex = startIndex
	rec.stop = src.Stop
	rec.nextItem = func(rec *pendingRecord, itemSink *errorSink, index int) future.Future[streamItemResult] {
		itemPath := appendPath(path, index)
		pull := sc.state.streamNextFuture(src, fields, itemPath)
		return future.Then(pull, func(r future.Result[streamEvent]) future.Future[streamItemResult] {
			if r.IsErr() {
				return future.Err[streamItemResult](r.Error)
			}
			if r.Value.done {
				return future.Ok(streamItemResult{done: true})
			}
			f := sc.state.catchErrorIfNullable(itemType,
				sc.state.completeValue(itemType, parentType, fields, nil, r.Value.value, itemPath, itemSink, rec), itemSink, itemPath)
			return future.MapOk(f, func(v any) streamItemResult { return streamItemResult{value: v} })
		})
	}
}

func (sc *scheduler) pendingInfos() []PendingInfo {
	infos := make([]PendingInfo, 0, len(sc.records))
	for _, rec := range sc.records {
		if rec.terminal() {
			continue
		}
		infos = append(infos, PendingInfo{ID: rec.id, Path: rec.path, Label: rec.label})
	}
	return infos
}

func (sc *scheduler) hasPending() bool {
	for _, rec := range sc.records {
		if !rec.terminal() {
			return true
		}
	}
	return false
}

// cancelAll drops every record; used when the whole response was nulled
// before any incremental payload could attach to it.
func (sc *scheduler) cancelAll() {
	for _, rec := range sc.records {
		if !rec.terminal() {
			rec.state = recordCancelled
		}
		sc.release(rec)
	}
}

// step advances every live record one poll. It returns whether any record
// made observable progress.
func (sc *scheduler) step() bool {
	progress := false
	for _, rec := range sc.records {
		if rec.terminal() {
			continue
		}
		if rec.hasFailedAncestor() || sc.state.hasNullifiedPrefix(rec.path) {
			rec.state = recordCancelled
			sc.release(rec)
			progress = true
			continue
		}
		switch rec.kind {
		case recordDefer:
			if !rec.started {
				rec.started = true
				rec.fut = rec.run(rec)
				progress = true
			}
			rec.fut.Poll()
			if !rec.fut.IsReady() {
				continue
			}
			progress = true
			r := rec.fut.Result()
			if r.IsErr() {
				// A null bubbled past the record's own root: the whole
				// fragment fails and reports completed with errors.
				rec.state = recordFailed
				rec.failErrors = append(rec.sink.take(), asGraphQLError(r.Error))
				rec.outbox = append(rec.outbox, payloadPiece{completed: &CompletedInfo{
					ID: rec.id, Path: rec.path, Label: rec.label, Errors: rec.failErrors,
				}})
				continue
			}
			rec.state = recordCompleted
			rec.data = r.Value
			rec.outbox = append(rec.outbox, payloadPiece{
				incremental: &IncrementalPayload{ID: rec.id, Path: rec.path, Label: rec.label, Data: rec.data, Errors: rec.sink.take()},
				completed:   &CompletedInfo{ID: rec.id, Path: rec.path, Label: rec.label},
			})

		case recordStream:
			for {
				if rec.curItem == nil {
					rec.curSink = &errorSink{}
					f := rec.nextItem(rec, rec.curSink, rec.itemIndex)
					rec.curItem = &f
					progress = true
				}
				rec.curItem.Poll()
				if !rec.curItem.IsReady() {
					break
				}
				progress = true
				r := rec.curItem.Result()
				rec.curItem = nil
				if r.IsErr() {
					rec.state = recordFailed
					rec.failErrors = append(rec.curSink.take(), asGraphQLError(r.Error))
					rec.outbox = append(rec.outbox, payloadPiece{completed: &CompletedInfo{
						ID: rec.id, Path: rec.path, Label: rec.label, Errors: rec.failErrors,
					}})
					sc.release(rec)
					break
				}
				if r.Value.done {
					rec.state = recordCompleted
					rec.outbox = append(rec.outbox, payloadPiece{completed: &CompletedInfo{
						ID: rec.id, Path: rec.path, Label: rec.label,
					}})
					break
				}
				itemPath := appendPath(rec.path, rec.itemIndex)
				rec.itemIndex++
				rec.outbox = append(rec.outbox, payloadPiece{incremental: &IncrementalPayload{
					ID: rec.id, Path: itemPath, Label: rec.label,
					Items: []any{r.Value.value}, Errors: rec.curSink.take(),
				}})
			}
		}
	}
	return progress
}

// release stops a stream record's upstream, if any.
func (sc *scheduler) release(rec *pendingRecord) {
	if rec.stop != nil {
		rec.stop()
	}
}

// releaseAll stops every live upstream; used on abort.
func (sc *scheduler) releaseAll() {
	for _, rec := range sc.records {
		if !rec.terminal() {
			rec.state = recordCancelled
		}
		sc.release(rec)
	}
}

// flush gathers the pieces whose records are allowed to emit (parent emitted
// or root) into one payload. hasNext turns false on the payload that drains
// the last record.
func (sc *scheduler) flush() *SubsequentResult {
	var incremental []IncrementalPayload
	var completed []CompletedInfo

	for changed := true; changed; {
		changed = false
		for _, rec := range sc.records {
			if len(rec.outbox) == 0 {
				continue
			}
			if rec.parent != nil && !rec.parent.emitted {
				continue
			}
			for _, piece := range rec.outbox {
				if piece.incremental != nil {
					incremental = append(incremental, *piece.incremental)
				}
				if piece.completed != nil {
					completed = append(completed, *piece.completed)
				}
			}
			rec.outbox = nil
			rec.emitted = true
			changed = true
		}
	}

	if len(incremental) == 0 && len(completed) == 0 {
		return nil
	}
	return &SubsequentResult{
		Incremental: incremental,
		Completed:   completed,
		HasNext:     !sc.drained(),
	}
}

// drained reports whether every record is terminal with an empty outbox.
func (sc *scheduler) drained() bool {
	for _, rec := range sc.records {
		if !rec.terminal() || len(rec.outbox) > 0 {
			return false
		}
	}
	return true
}

// drive runs the incremental phase, pushing subsequent payloads into out
// until every record drains, the consumer stops, or the operation aborts.
func (sc *scheduler) drive(out chan<- *SubsequentResult, done <-chan struct{}) {
	defer close(out)
	s := sc.state

	emit := func(payload *SubsequentResult) bool {
		events.Publish(s.ctx, events.IncrementalPayload{
			Records: len(payload.Incremental) + len(payload.Completed),
			HasNext: payload.HasNext,
		})
		select {
		case out <- payload:
			return true
		case <-done:
			return false
		}
	}

	sentFinal := false
	for {
		progress := sc.step()

		s.checkAbort()
		if s.aborted {
			sc.releaseAll()
			return
		}
		select {
		case <-done:
			sc.releaseAll()
			return
		default:
		}

		if payload := sc.flush(); payload != nil {
			if !emit(payload) {
				sc.releaseAll()
				return
			}
			sentFinal = !payload.HasNext
			continue
		}

		if sc.drained() {
			break
		}
		if !progress {
			if err := s.idle(); err != nil {
				// Execution can no longer make progress; fail the remaining
				// records so the stream terminates deterministically.
				for _, rec := range sc.records {
					if !rec.terminal() {
						rec.state = recordFailed
						rec.failErrors = []*GraphQLError{asGraphQLError(err)}
						rec.outbox = append(rec.outbox, payloadPiece{completed: &CompletedInfo{
							ID: rec.id, Path: rec.path, Label: rec.label, Errors: rec.failErrors,
						}})
						sc.release(rec)
					}
				}
			}
			if s.aborted {
				sc.releaseAll()
				return
			}
		}
	}

	if !sentFinal {
		if !emit(&SubsequentResult{HasNext: false}) {
			sc.releaseAll()
		}
	}
}
