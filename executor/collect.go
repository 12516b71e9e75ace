package executor

import (
	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

// streamConfig is the `@stream` configuration attached to a collected field
// group. It only takes effect on list completion.
type streamConfig struct {
	label        string
	initialCount int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
	Stream       *streamConfig
}

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field, stream *streamConfig) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		if cfm.fields[idx].Stream == nil {
			cfm.fields[idx].Stream = stream
		}
	} else {
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*language.Field{field},
			Stream:       stream,
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField { return cfm.fields }

// deferredFragment is a `@defer` occurrence found during collection. Its
// selections are executed by the incremental scheduler, not inlined.
type deferredFragment struct {
	label      string
	fragment   string // fragment name, "" for inline fragments
	selections language.SelectionSet
}

// collectFields walks a selection set, producing the grouped field set and
// the deferred fragments encountered at this level. Deferred selections are
// not descended into here; the scheduler collects them again under their own
// deferred context, which is why the visited-fragment set is scoped to one
// collectFields call.
func collectFields(s *executionState, objectType *schema.Type, selectionSet language.SelectionSet) (*collectedFieldMap, []*deferredFragment) {
	grouped := newCollectedFieldMap()
	visited := make(map[string]bool)
	var defers []*deferredFragment
	collectFieldsImpl(s, objectType, selectionSet, grouped, visited, &defers)
	return grouped, defers
}

func collectFieldsImpl(
	s *executionState,
	objectType *schema.Type,
	selectionSet language.SelectionSet,
	grouped *collectedFieldMap,
	visited map[string]bool,
	defers *[]*deferredFragment,
) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel, streamConfigOf(s, sel.Directives))

		case *language.InlineFragment:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			if sel.TypeCondition != "" && !doesTypeApply(s.schema, objectType, sel.TypeCondition) {
				continue
			}
			if label, deferred := deferConfigOf(s, sel.Directives); deferred {
				registerDefer(defers, &deferredFragment{label: label, selections: sel.SelectionSet})
				continue
			}
			collectFieldsImpl(s, objectType, sel.SelectionSet, grouped, visited, defers)

		case *language.FragmentSpread:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			fragmentDef := s.fragments[sel.Name]
			if fragmentDef == nil {
				continue
			}
			if fragmentDef.TypeCondition != "" && !doesTypeApply(s.schema, objectType, fragmentDef.TypeCondition) {
				continue
			}
			if label, deferred := deferConfigOf(s, sel.Directives); deferred {
				// A spread that occurs both deferred and inlined executes
				// twice; the visited set only guards the inlined walk.
				registerDefer(defers, &deferredFragment{label: label, fragment: sel.Name, selections: fragmentDef.SelectionSet})
				continue
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			collectFieldsImpl(s, objectType, fragmentDef.SelectionSet, grouped, visited, defers)
		}
	}
}

// registerDefer deduplicates deferred fragments by (fragment, label): the same
// spread deferred twice at one level yields a single record.
func registerDefer(defers *[]*deferredFragment, d *deferredFragment) {
	for _, existing := range *defers {
		if existing.fragment != "" && existing.fragment == d.fragment && existing.label == d.label {
			return
		}
	}
	*defers = append(*defers, d)
}

// doesTypeApply reports whether a fragment with the given type condition
// applies to an object type: equal object, implemented interface, or
// containing union.
func doesTypeApply(s *schema.Schema, objectType *schema.Type, condition string) bool {
	if condition == objectType.Name {
		return true
	}
	conditionType := s.Types[condition]
	if conditionType == nil {
		return false
	}
	switch conditionType.Kind {
	case schema.TypeKindInterface:
		return objectType.Implements(condition)
	case schema.TypeKindUnion:
		return s.IsPossibleType(condition, objectType.Name)
	}
	return false
}

// shouldIncludeNode evaluates @skip and @include against variables.
func shouldIncludeNode(s *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveBoolArg(s, skip, "if"); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := directiveBoolArg(s, include, "if"); ok && !v {
			return false
		}
	}
	return true
}

// deferConfigOf reads a @defer directive. Per the incremental-delivery rules
// an omitted `if`, and an `if` bound to an explicit null variable, both leave
// the fragment deferred; only a false disables it.
func deferConfigOf(s *executionState, directives language.DirectiveList) (label string, deferred bool) {
	d := directives.ForName("defer")
	if d == nil {
		return "", false
	}
	if v, ok := directiveBoolArg(s, d, "if"); ok && !v {
		return "", false
	}
	if arg := d.Arguments.ForName("label"); arg != nil && arg.Value != nil {
		if sv, ok := valueFromAST(s, arg.Value).(string); ok {
			label = sv
		}
	}
	return label, true
}

// streamConfigOf reads a @stream directive from a field's directives.
func streamConfigOf(s *executionState, directives language.DirectiveList) *streamConfig {
	d := directives.ForName("stream")
	if d == nil {
		return nil
	}
	if v, ok := directiveBoolArg(s, d, "if"); ok && !v {
		return nil
	}
	cfg := &streamConfig{}
	if arg := d.Arguments.ForName("initialCount"); arg != nil && arg.Value != nil {
		switch n := valueFromAST(s, arg.Value).(type) {
		case int:
			cfg.initialCount = n
		case int64:
			cfg.initialCount = int(n)
		case float64:
			cfg.initialCount = int(n)
		}
	}
	if arg := d.Arguments.ForName("label"); arg != nil && arg.Value != nil {
		if sv, ok := valueFromAST(s, arg.Value).(string); ok {
			cfg.label = sv
		}
	}
	return cfg
}

// directiveBoolArg evaluates a directive argument to a bool. ok is false when
// the argument is absent or does not evaluate to a bool (an explicit null
// variable falls through to the directive's default).
func directiveBoolArg(s *executionState, directive *language.Directive, name string) (value, ok bool) {
	arg := directive.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return false, false
	}
	b, ok := valueFromAST(s, arg.Value).(bool)
	return b, ok
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// operationUsesIncremental reports whether the operation (or any fragment it
// reaches) carries @defer or @stream, which makes single-payload execution
// impossible.
func operationUsesIncremental(s *executionState) bool {
	seen := make(map[string]bool)
	var walk func(set language.SelectionSet) bool
	walk = func(set language.SelectionSet) bool {
		for _, selection := range set {
			switch sel := selection.(type) {
			case *language.Field:
				if sel.Directives.ForName("stream") != nil {
					return true
				}
				if walk(sel.SelectionSet) {
					return true
				}
			case *language.InlineFragment:
				if sel.Directives.ForName("defer") != nil {
					return true
				}
				if walk(sel.SelectionSet) {
					return true
				}
			case *language.FragmentSpread:
				if sel.Directives.ForName("defer") != nil {
					return true
				}
				if seen[sel.Name] {
					continue
				}
				seen[sel.Name] = true
				if f := s.fragments[sel.Name]; f != nil && walk(f.SelectionSet) {
					return true
				}
			}
		}
		return false
	}
	return walk(s.operation.SelectionSet)
}
