package executor

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"

	"github.com/hanpama/gqlexec/executor/internal/future"
)

// completeValue drives value completion by type shape. Errors travel up the
// returned future until a nullable (or semantic-non-null) boundary catches
// them; a clean null under non-null synthesizes the violation error at this
// position.
func (s *executionState) completeValue(
	t *schema.TypeRef,
	parentType *schema.Type,
	fields []*language.Field,
	stream *streamConfig,
	result any,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	if p, ok := result.(ResolvePromise); ok {
		return future.Then(s.promiseFuture(p, fields, path), func(r future.Result[any]) future.Future[any] {
			if r.IsErr() {
				return future.Err[any](r.Error)
			}
			return s.completeValue(t, parentType, fields, stream, r.Value, path, sink, rec)
		})
	}
	if err, ok := result.(error); ok {
		return future.Err[any](newFieldError(err, fields, path))
	}

	if schema.IsNonNull(t) {
		inner := s.completeValue(t.Unwrap(), parentType, fields, stream, result, path, sink, rec)
		return future.Map(inner, func(r future.Result[any]) future.Result[any] {
			if r.IsOk() && r.Value == nil {
				violation := s.nonNullViolation(parentType, fields, path)
				if s.errorBehavior == ErrorNull {
					sink.add(violation)
					s.markNullifiedPrefix(path)
					return future.Result[any]{}
				}
				return future.Result[any]{Error: violation}
			}
			if r.IsErr() && s.errorBehavior == ErrorNull {
				sink.add(asGraphQLError(r.Error))
				s.markNullifiedPrefix(path)
				return future.Result[any]{}
			}
			return r
		})
	}

	if schema.IsSemanticNonNull(t) {
		inner := s.completeValue(t.Unwrap(), parentType, fields, stream, result, path, sink, rec)
		return future.Map(inner, func(r future.Result[any]) future.Result[any] {
			if r.IsErr() {
				// The null arrived with an error: it stands, and the wrapper
				// halts propagation here.
				sink.add(asGraphQLError(r.Error))
				s.markNullifiedPrefix(path)
				return future.Result[any]{}
			}
			if r.Value == nil {
				sink.add(newFieldError(
					newError("Cannot return null for semantic-non-nullable field %s.%s.", parentType.Name, fields[0].Name),
					fields, path))
			}
			return r
		})
	}

	if isNullish(result) {
		return future.Ok[any](nil)
	}

	if schema.IsList(t) {
		return s.completeListValue(t, parentType, fields, stream, result, path, sink, rec)
	}

	namedType := s.schema.Types[t.GetNamedType()]
	if namedType == nil {
		return future.Err[any](newFieldError(newError("Unknown type \"%s\".", t.GetNamedType()), fields, path))
	}

	switch namedType.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := completeLeafValue(namedType, result)
		if err != nil {
			return future.Err[any](newFieldError(err, fields, path))
		}
		return future.Ok(serialized)

	case schema.TypeKindObject:
		return objectAsAny(s.executeSelections(mergeSelectionSets(fields), namedType, result, path, false, sink, rec))

	case schema.TypeKindInterface, schema.TypeKindUnion:
		return s.completeAbstractValue(namedType, parentType, fields, result, path, sink, rec)
	}

	return future.Err[any](newFieldError(newError("Cannot complete value of unexpected type \"%s\".", namedType.Name), fields, path))
}

func objectAsAny(f future.Future[*OrderedMap]) future.Future[any] {
	return future.MapOk(f, func(m *OrderedMap) any { return m })
}

func (s *executionState) nonNullViolation(parentType *schema.Type, fields []*language.Field, path Path) *GraphQLError {
	return newFieldError(
		newError("Cannot return null for non-nullable field %s.%s.", parentType.Name, fields[0].Name),
		fields, path)
}

// completeLeafValue serializes a scalar or enum result.
func completeLeafValue(t *schema.Type, result any) (any, error) {
	if t.Serialize != nil {
		return t.Serialize(result)
	}
	if t.Kind == schema.TypeKindEnum {
		if name, ok := result.(string); ok && t.HasEnumValue(name) {
			return name, nil
		}
		return nil, fmt.Errorf("Enum \"%s\" cannot represent value: %s", t.Name, inspectValue(result))
	}
	return result, nil
}

// completeListValue completes an iterable value. Slices and arrays complete
// in parallel preserving index order; a *SourceStream completes by pulling
// items in sequence. A @stream configuration splits off the tail beyond
// initialCount into a pending incremental record.
func (s *executionState) completeListValue(
	listType *schema.TypeRef,
	parentType *schema.Type,
	fields []*language.Field,
	stream *streamConfig,
	result any,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	itemType := listType.Unwrap()

	if src, ok := result.(*SourceStream); ok {
		return s.completeStreamedList(itemType, parentType, fields, stream, src, path, sink, rec)
	}

	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return future.Err[any](newFieldError(
				newError("Expected Iterable, but did not find one for field \"%s.%s\".", parentType.Name, fields[0].Name),
				fields, path))
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inline := len(items)
	if stream != nil && s.sched != nil && stream.initialCount < len(items) {
		inline = stream.initialCount
		if inline < 0 {
			inline = 0
		}
		s.sched.registerStreamItems(rec, path, stream.label, itemType, parentType, fields, items[inline:], inline)
	}

	completed := make([]future.Future[any], inline)
	for i := 0; i < inline; i++ {
		itemPath := appendPath(path, i)
		completed[i] = s.catchErrorIfNullable(itemType,
			s.completeValue(itemType, parentType, fields, nil, items[i], itemPath, sink, rec), sink, itemPath)
	}
	return future.MapOk(future.Join(completed...), func(l []any) any { return l })
}

// completeStreamedList pulls a source stream as a list value. Without a
// @stream configuration the whole sequence is drained into the response;
// with one, pulling stops at initialCount and the live tail becomes a
// pending record.
func (s *executionState) completeStreamedList(
	itemType *schema.TypeRef,
	parentType *schema.Type,
	fields []*language.Field,
	stream *streamConfig,
	src *SourceStream,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	var items []any

	var step func() future.Future[any]
	step = func() future.Future[any] {
		if stream != nil && s.sched != nil && len(items) >= stream.initialCount {
			s.sched.registerStreamSource(rec, path, stream.label, itemType, parentType, fields, src, len(items))
			out := items
			return future.Ok[any](append([]any(nil), out...))
		}
		itemPath := appendPath(path, len(items))
		pull := s.streamNextFuture(src, fields, itemPath)
		return future.Then(pull, func(r future.Result[streamEvent]) future.Future[any] {
			if r.IsErr() {
				src.Stop()
				return future.Err[any](r.Error)
			}
			if r.Value.done {
				return future.Ok[any](append([]any(nil), items...))
			}
			itemF := s.catchErrorIfNullable(itemType,
				s.completeValue(itemType, parentType, fields, nil, r.Value.value, itemPath, sink, rec), sink, itemPath)
			return future.Then(itemF, func(ir future.Result[any]) future.Future[any] {
				if ir.IsErr() {
					src.Stop()
					return future.Err[any](ir.Error)
				}
				items = append(items, ir.Value)
				return step()
			})
		})
	}
	return step()
}

// completeAbstractValue resolves the runtime object type for an interface or
// union value, then completes it as that object.
func (s *executionState) completeAbstractValue(
	abstractType *schema.Type,
	parentType *schema.Type,
	fields []*language.Field,
	result any,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	if m, ok := result.(map[string]any); ok {
		if typename, ok := m["__typename"].(string); ok {
			return s.completeWithRuntimeType(abstractType, parentType, fields, result, typename, path, sink, rec)
		}
	}

	info := schema.ResolveInfo{
		FieldName:      fields[0].Name,
		FieldNodes:     fields,
		ParentType:     parentType,
		Path:           []any(path),
		Schema:         s.schema,
		Fragments:      s.fragments,
		VariableValues: s.variableValues,
		RootValue:      s.rootValue,
		Operation:      s.operation,
		ContextValue:   s.contextValue,
	}

	resolveType := abstractType.ResolveType
	if resolveType == nil {
		resolveType = s.typeResolver
	}

	resolved, err := resolveType(s.ctx, result, info)
	if err != nil {
		return future.Err[any](newFieldError(err, fields, path))
	}

	handle := func(resolved any) future.Future[any] {
		switch v := resolved.(type) {
		case nil:
			if name, ok := s.probeIsTypeOf(abstractType, result, info); ok {
				return s.completeWithRuntimeType(abstractType, parentType, fields, result, name, path, sink, rec)
			}
			return future.Err[any](newFieldError(
				newError("Abstract type \"%s\" must resolve to an Object type at runtime for field \"%s.%s\". Either the \"%s\" type should provide a \"resolve_type\" function or each possible type should provide an \"is_type_of\" function.",
					abstractType.Name, parentType.Name, fields[0].Name, abstractType.Name),
				fields, path))
		case string:
			return s.completeWithRuntimeType(abstractType, parentType, fields, result, v, path, sink, rec)
		case *schema.Type:
			return future.Err[any](newFieldError(
				newError("Support for returning object types from resolve_type was removed; return the type name instead."),
				fields, path))
		default:
			return future.Err[any](newFieldError(
				newError("Abstract type \"%s\" must resolve to an Object type at runtime for field \"%s.%s\" with value %s, received %s.",
					abstractType.Name, parentType.Name, fields[0].Name, inspectValue(result), inspectValue(v)),
				fields, path))
		}
	}

	if p, ok := resolved.(ResolvePromise); ok {
		return future.Then(s.promiseFuture(p, fields, path), func(r future.Result[any]) future.Future[any] {
			if r.IsErr() {
				return future.Err[any](r.Error)
			}
			return handle(r.Value)
		})
	}
	return handle(resolved)
}

// probeIsTypeOf tries each possible object type's IsTypeOf predicate and
// returns the first match.
func (s *executionState) probeIsTypeOf(abstractType *schema.Type, value any, info schema.ResolveInfo) (string, bool) {
	for _, name := range s.schema.PossibleTypes(abstractType.Name) {
		t := s.schema.Types[name]
		if t == nil || t.IsTypeOf == nil {
			continue
		}
		if t.IsTypeOf(s.ctx, value, info) {
			return name, true
		}
	}
	return "", false
}

// completeWithRuntimeType validates the resolved type name against the
// schema and the abstract type's membership, then completes the object.
func (s *executionState) completeWithRuntimeType(
	abstractType *schema.Type,
	parentType *schema.Type,
	fields []*language.Field,
	result any,
	runtimeTypeName string,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	runtimeType := s.schema.Types[runtimeTypeName]
	if runtimeType == nil {
		return future.Err[any](newFieldError(
			newError("Abstract type \"%s\" was resolved to a type \"%s\" that does not exist inside the schema.", abstractType.Name, runtimeTypeName),
			fields, path))
	}
	if runtimeType.Kind != schema.TypeKindObject {
		return future.Err[any](newFieldError(
			newError("Abstract type \"%s\" was resolved to a non-object type \"%s\".", abstractType.Name, runtimeTypeName),
			fields, path))
	}
	if !s.schema.IsPossibleType(abstractType.Name, runtimeTypeName) {
		return future.Err[any](newFieldError(
			newError("Runtime Object type \"%s\" is not a possible type for \"%s\".", runtimeTypeName, abstractType.Name),
			fields, path))
	}
	return objectAsAny(s.executeSelections(mergeSelectionSets(fields), runtimeType, result, path, false, sink, rec))
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
