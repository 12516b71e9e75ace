package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"

	"github.com/hanpama/gqlexec/executor/internal/future"
)

// executeSelections collects and executes a selection set against an object
// value. In serial mode each field's subtree completes before the next
// resolver runs (top-level mutations). Deferred fragments found during
// collection are handed to the incremental scheduler under rec.
func (s *executionState) executeSelections(
	selections language.SelectionSet,
	objectType *schema.Type,
	objectValue any,
	path Path,
	serial bool,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[*OrderedMap] {
	grouped, defers := collectFields(s, objectType, selections)

	if s.sched != nil {
		for _, d := range defers {
			s.sched.registerDefer(rec, path, d, objectType, objectValue)
		}
	}

	resultMap := NewOrderedMapWithLength(len(grouped.fields))
	futures := make([]future.Future[struct{}], 0, len(grouped.fields))

	for _, item := range grouped.orderedFields() {
		responseKey := item.ResponseName
		fields := item.Fields
		fieldName := fields[0].Name

		if fieldName == "__typename" {
			resultMap.Set(responseKey, objectType.Name)
			continue
		}

		fieldDef := objectType.Field(fieldName)
		if fieldDef == nil {
			// Validation rejects unknown fields; an unvalidated document just
			// omits them from the response.
			continue
		}

		fieldPath := appendPath(path, responseKey)
		f := s.catchErrorIfNullable(fieldDef.Type, s.executeField(objectType, objectValue, fields, fieldDef, item.Stream, fieldPath, sink, rec), sink, fieldPath)

		if serial {
			responseValue, err := wait(s, f)
			if err != nil {
				return future.Err[*OrderedMap](err)
			}
			resultMap.Set(responseKey, responseValue)
			continue
		}

		resultMap.Set(responseKey, nil)
		key := responseKey
		futures = append(futures, future.MapOk(f, func(v any) struct{} {
			resultMap.Set(key, v)
			return struct{}{}
		}))
	}

	return future.MapOk(future.After(futures...), func(struct{}) *OrderedMap {
		return resultMap
	})
}

// executeField coerces arguments, invokes the resolver and feeds the outcome
// into value completion. Errors surface as located field errors on the
// returned future; null bubbling is the caller's concern.
func (s *executionState) executeField(
	objectType *schema.Type,
	objectValue any,
	fields []*language.Field,
	fieldDef *schema.Field,
	stream *streamConfig,
	path Path,
	sink *errorSink,
	rec *pendingRecord,
) future.Future[any] {
	field := fields[0]

	argumentValues, argErr := coerceArgumentValues(s, fieldDef, field, fields, path)
	if argErr != nil {
		return future.Err[any](argErr)
	}

	s.checkAbort()
	if s.aborted {
		return future.Err[any](newFieldError(s.abortReason, fields, path))
	}

	info := schema.ResolveInfo{
		FieldName:      field.Name,
		FieldNodes:     fields,
		ParentType:     objectType,
		ReturnType:     fieldDef.Type,
		Path:           []any(path),
		Schema:         s.schema,
		Fragments:      s.fragments,
		VariableValues: s.variableValues,
		RootValue:      s.rootValue,
		Operation:      s.operation,
		ContextValue:   s.contextValue,
	}

	resolve := fieldDef.Resolve
	if resolve == nil {
		resolve = s.fieldResolver
	}

	resolvedValue, err := s.invokeResolver(resolve, objectValue, argumentValues, info, path)
	if err != nil {
		return future.Err[any](newFieldError(err, fields, path))
	}

	if p, ok := resolvedValue.(ResolvePromise); ok {
		return future.Then(s.promiseFuture(p, fields, path), func(r future.Result[any]) future.Future[any] {
			if r.IsErr() {
				return future.Err[any](r.Error)
			}
			return s.completeValue(fieldDef.Type, objectType, fields, stream, r.Value, path, sink, rec)
		})
	}

	return s.completeValue(fieldDef.Type, objectType, fields, stream, resolvedValue, path, sink, rec)
}

// invokeResolver calls a resolver, converting panics into field errors.
func (s *executionState) invokeResolver(
	resolve schema.ResolveFunc,
	source any,
	args map[string]any,
	info schema.ResolveInfo,
	path Path,
) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panic: %v", r)
			s.logError(fmt.Sprintf("resolver for %s.%s panicked at %s", info.ParentType.Name, info.FieldName, pathToString(path)), err)
		}
	}()
	return resolve(s.ctx, source, args, info)
}

// catchErrorIfNullable converts a field error into a recorded error plus a
// null value at nullable positions, tombstoning the nulled path. Non-null
// positions let the error propagate, unless the operation runs with ErrorNull
// behavior, which stops propagation everywhere.
func (s *executionState) catchErrorIfNullable(t *schema.TypeRef, f future.Future[any], sink *errorSink, path Path) future.Future[any] {
	if schema.IsNonNull(t) && s.errorBehavior != ErrorNull {
		return f
	}
	return future.Map(f, func(r future.Result[any]) future.Result[any] {
		if r.Error != nil {
			sink.add(asGraphQLError(r.Error))
			s.markNullifiedPrefix(path)
			return future.Result[any]{}
		}
		return r
	})
}

func asGraphQLError(err error) *GraphQLError {
	if ge, ok := err.(*GraphQLError); ok {
		return ge
	}
	return &GraphQLError{Message: err.Error(), originalError: err}
}

// defaultFieldResolver reads the field from a map source, invoking callable
// properties, or from a struct field of the same name.
func defaultFieldResolver(ctx context.Context, source any, args map[string]any, info schema.ResolveInfo) (any, error) {
	switch src := source.(type) {
	case map[string]any:
		return callIfCallable(ctx, src[info.FieldName], args, info)
	case *OrderedMap:
		v, _ := src.Get(info.FieldName)
		return callIfCallable(ctx, v, args, info)
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		mv := rv.MapIndex(reflect.ValueOf(info.FieldName))
		if mv.IsValid() {
			return callIfCallable(ctx, mv.Interface(), args, info)
		}
		return nil, nil
	}
	if rv.Kind() == reflect.Struct {
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if strings.EqualFold(t.Field(i).Name, info.FieldName) && t.Field(i).IsExported() {
				return callIfCallable(ctx, rv.Field(i).Interface(), args, info)
			}
		}
	}
	return nil, nil
}

func callIfCallable(ctx context.Context, v any, args map[string]any, info schema.ResolveInfo) (any, error) {
	switch fn := v.(type) {
	case func(ctx context.Context, args map[string]any, info schema.ResolveInfo) (any, error):
		return fn(ctx, args, info)
	case func() any:
		return fn(), nil
	case func() (any, error):
		return fn()
	}
	return v, nil
}

// defaultResolveType reads a __typename property from map-shaped values.
// Returning nil defers to is-type-of probing.
func defaultResolveType(ctx context.Context, value any, info schema.ResolveInfo) (any, error) {
	if m, ok := value.(map[string]any); ok {
		if typename, ok := m["__typename"].(string); ok {
			return typename, nil
		}
	}
	return nil, nil
}
