package executor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	language "github.com/hanpama/gqlexec/language"
	schema "github.com/hanpama/gqlexec/schema"
)

const tooManyErrorsMessage = "Too many errors processing variables, error limit reached. Execution aborted."

// coerceVariableValues coerces the external variable map against the
// operation's variable definitions. Missing variables without defaults stay
// absent from the returned map, which is how "undefined" is kept distinct
// from explicit null. Errors accumulate up to maxErrors (zero = unlimited).
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	input map[string]any,
	maxErrors int,
) (map[string]any, []*GraphQLError) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	var errs []*GraphQLError

	stopped := false
	addError := func(err *GraphQLError) bool {
		if stopped {
			return false
		}
		if maxErrors > 0 && len(errs) >= maxErrors {
			stopped = true
			errs = append(errs, newError(tooManyErrorsMessage))
			return false
		}
		errs = append(errs, err)
		return true
	}

	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		varType := schema.TypeRefFromAST(varDef.Type)

		value, hasValue := input[name]
		if !hasValue {
			if varDef.DefaultValue != nil {
				if v, ok := coerceInputLiteral(sch, varDef.DefaultValue, varType, nil); ok {
					coerced[name] = v
				}
				continue
			}
			if schema.IsNonNull(varType) {
				e := newError("Variable \"$%s\" of required type \"%s\" was not provided.", name, varType.String())
				e.Locations = positionLocation(varDef.Position)
				if !addError(e) {
					return nil, errs
				}
			}
			continue
		}

		if value == nil && schema.IsNonNull(varType) {
			e := newError("Variable \"$%s\" of non-null type \"%s\" must not be null.", name, varType.String())
			e.Locations = positionLocation(varDef.Position)
			if !addError(e) {
				return nil, errs
			}
			continue
		}

		ok := true
		v := coerceInputValue(sch, value, varType, nil, func(path []any, invalid any, err error) {
			ok = false
			msg := fmt.Sprintf("Variable \"$%s\" got invalid value %s", name, inspectValue(invalid))
			if len(path) > 0 {
				msg += fmt.Sprintf(" at \"%s%s\"", name, renderInputPath(path))
			}
			msg += "; " + err.Error()
			e := &GraphQLError{Message: msg, Locations: positionLocation(varDef.Position), originalError: err}
			if ge, isGQL := err.(*GraphQLError); isGQL && ge.Extensions != nil {
				e.Extensions = ge.Extensions
			}
			addError(e)
		})
		if stopped {
			return nil, errs
		}
		if ok {
			coerced[name] = v
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return coerced, nil
}

func renderInputPath(path []any) string {
	var b strings.Builder
	for _, elem := range path {
		switch v := elem.(type) {
		case string:
			b.WriteByte('.')
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// coerceInputValue coerces an external runtime value (a variable or a value
// nested in one) against an input type, reporting every violation through
// onError with the path inside the value.
func coerceInputValue(
	sch *schema.Schema,
	value any,
	t *schema.TypeRef,
	path []any,
	onError func(path []any, invalid any, err error),
) any {
	if schema.IsNonNull(t) {
		if value == nil {
			onError(path, value, fmt.Errorf("Expected non-nullable type \"%s\" not to be null.", t.String()))
			return nil
		}
		return coerceInputValue(sch, value, t.Unwrap(), path, onError)
	}
	if value == nil {
		return nil
	}
	if schema.IsList(t) {
		itemType := t.Unwrap()
		if items, ok := value.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = coerceInputValue(sch, item, itemType, append(path, i), onError)
			}
			return out
		}
		// Single values coerce as a one-element list of the item type.
		return []any{coerceInputValue(sch, value, itemType, path, onError)}
	}

	namedType := sch.Types[t.GetNamedType()]
	if namedType == nil {
		onError(path, value, fmt.Errorf("Unknown type \"%s\".", t.GetNamedType()))
		return nil
	}

	switch namedType.Kind {
	case schema.TypeKindScalar:
		parse := namedType.ParseValue
		if parse == nil {
			return value
		}
		v, err := parse(value)
		if err != nil {
			onError(path, value, err)
			return nil
		}
		return v

	case schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok || !namedType.HasEnumValue(name) {
			onError(path, value, fmt.Errorf("Value %s does not exist in \"%s\" enum.", inspectValue(value), namedType.Name))
			return nil
		}
		return name

	case schema.TypeKindInputObject:
		fields, ok := value.(map[string]any)
		if !ok {
			onError(path, value, fmt.Errorf("Expected type \"%s\" to be an object.", namedType.Name))
			return nil
		}
		out := make(map[string]any, len(fields))
		for _, fieldDef := range namedType.InputFields {
			fieldValue, present := fields[fieldDef.Name]
			if !present {
				if fieldDef.HasDefault {
					out[fieldDef.Name] = fieldDef.DefaultValue
				} else if schema.IsNonNull(fieldDef.Type) {
					onError(path, value, fmt.Errorf("Field \"%s.%s\" of required type \"%s\" was not provided.", namedType.Name, fieldDef.Name, fieldDef.Type.String()))
				}
				continue
			}
			out[fieldDef.Name] = coerceInputValue(sch, fieldValue, fieldDef.Type, append(path, fieldDef.Name), onError)
		}
		var unknown []string
		for name := range fields {
			if namedType.InputField(name) == nil {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		for _, name := range unknown {
			onError(path, value, fmt.Errorf("Field \"%s\" is not defined by type \"%s\".", name, namedType.Name))
		}
		if namedType.OneOf {
			if err := validateOneOf(namedType, out); err != nil {
				onError(path, value, err)
				return nil
			}
		}
		return out
	}

	onError(path, value, fmt.Errorf("Type \"%s\" cannot be used as an input type.", namedType.Name))
	return nil
}

// validateOneOf enforces the OneOf contract: exactly one key, and that key
// non-null.
func validateOneOf(t *schema.Type, fields map[string]any) error {
	if len(fields) != 1 {
		return fmt.Errorf("Exactly one key must be specified for OneOf type \"%s\".", t.Name)
	}
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("Field \"%s\" of OneOf type \"%s\" must be non-null.", name, t.Name)
		}
	}
	return nil
}

// coerceInputLiteral coerces a constant or variable-bearing AST value against
// an input type. ok is false when the literal cannot represent the type; the
// caller decides how to report it.
func coerceInputLiteral(sch *schema.Schema, v *language.Value, t *schema.TypeRef, variables map[string]any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if v.Kind == language.Variable {
		value, present := variables[v.Raw]
		if !present {
			return nil, false
		}
		if value == nil && schema.IsNonNull(t) {
			return nil, false
		}
		return value, true
	}
	if schema.IsNonNull(t) {
		if v.Kind == language.NullValue {
			return nil, false
		}
		return coerceInputLiteral(sch, v, t.Unwrap(), variables)
	}
	if v.Kind == language.NullValue {
		return nil, true
	}
	if schema.IsList(t) {
		itemType := t.Unwrap()
		if v.Kind == language.ListValue {
			out := make([]any, 0, len(v.Children))
			for _, child := range v.Children {
				item, ok := coerceInputLiteral(sch, child.Value, itemType, variables)
				if !ok {
					// An unprovided variable in a nullable item position
					// coerces to null; anything else fails the list.
					if child.Value.Kind == language.Variable && !schema.IsNonNull(itemType) {
						item = nil
					} else {
						return nil, false
					}
				}
				out = append(out, item)
			}
			return out, true
		}
		item, ok := coerceInputLiteral(sch, v, itemType, variables)
		if !ok {
			return nil, false
		}
		return []any{item}, true
	}

	namedType := sch.Types[t.GetNamedType()]
	if namedType == nil {
		return nil, false
	}

	switch namedType.Kind {
	case schema.TypeKindScalar:
		if parse := namedType.ParseLiteral; parse != nil {
			out, err := parse(v)
			if err != nil {
				return nil, false
			}
			return out, true
		}
		return astValueToGo(v), true

	case schema.TypeKindEnum:
		if v.Kind != language.EnumValue || !namedType.HasEnumValue(v.Raw) {
			return nil, false
		}
		return v.Raw, true

	case schema.TypeKindInputObject:
		if v.Kind != language.ObjectValue {
			return nil, false
		}
		out := make(map[string]any, len(v.Children))
		provided := make(map[string]*language.Value, len(v.Children))
		for _, child := range v.Children {
			provided[child.Name] = child.Value
		}
		for _, fieldDef := range namedType.InputFields {
			fv, present := provided[fieldDef.Name]
			if !present {
				if fieldDef.HasDefault {
					out[fieldDef.Name] = fieldDef.DefaultValue
				} else if schema.IsNonNull(fieldDef.Type) {
					return nil, false
				}
				continue
			}
			if fv.Kind == language.Variable {
				if _, varProvided := variables[fv.Raw]; !varProvided {
					if fieldDef.HasDefault {
						out[fieldDef.Name] = fieldDef.DefaultValue
					} else if schema.IsNonNull(fieldDef.Type) {
						return nil, false
					}
					continue
				}
			}
			fieldValue, ok := coerceInputLiteral(sch, fv, fieldDef.Type, variables)
			if !ok {
				return nil, false
			}
			out[fieldDef.Name] = fieldValue
		}
		for name := range provided {
			if namedType.InputField(name) == nil {
				return nil, false
			}
		}
		if namedType.OneOf {
			if err := validateOneOf(namedType, out); err != nil {
				return nil, false
			}
		}
		return out, true
	}

	return nil, false
}

// coerceArgumentValues produces the resolver argument map for a field node
// per the argument-collection rules. A non-nil error fails the field: it
// resolves to null with the error, without invoking the resolver.
func coerceArgumentValues(
	s *executionState,
	fieldDef *schema.Field,
	field *language.Field,
	fields []*language.Field,
	path Path,
) (map[string]any, *GraphQLError) {
	coerced := make(map[string]any, len(fieldDef.Arguments))

	for _, argDef := range fieldDef.Arguments {
		argNode := field.Arguments.ForName(argDef.Name)

		if argNode == nil {
			if argDef.HasDefault {
				coerced[argDef.Name] = argDef.DefaultValue
			} else if schema.IsNonNull(argDef.Type) {
				return nil, newFieldError(
					newError("Argument \"%s\" of required type \"%s\" was not provided.", argDef.Name, argDef.Type.String()),
					fields, path)
			}
			continue
		}

		if argNode.Value.Kind == language.Variable {
			variableName := argNode.Value.Raw
			runtimeValue, provided := s.variableValues[variableName]
			if !provided {
				if argDef.HasDefault {
					coerced[argDef.Name] = argDef.DefaultValue
				} else if schema.IsNonNull(argDef.Type) {
					return nil, newFieldError(
						newError("Argument \"%s\" of required type \"%s\" was provided the variable \"$%s\" which was not provided a runtime value.", argDef.Name, argDef.Type.String(), variableName),
						fields, path)
				}
				continue
			}
			if runtimeValue == nil && schema.IsNonNull(argDef.Type) {
				return nil, newFieldError(
					newError("Argument \"%s\" of non-null type \"%s\" must not be null.", argDef.Name, argDef.Type.String()),
					fields, path)
			}
			coerced[argDef.Name] = runtimeValue
			continue
		}

		if argNode.Value.Kind == language.NullValue && schema.IsNonNull(argDef.Type) {
			return nil, newFieldError(
				newError("Argument \"%s\" of non-null type \"%s\" must not be null.", argDef.Name, argDef.Type.String()),
				fields, path)
		}

		value, ok := coerceInputLiteral(s.schema, argNode.Value, argDef.Type, s.variableValues)
		if !ok {
			return nil, newFieldError(
				newError("Argument \"%s\" has invalid value %s.", argDef.Name, argNode.Value.String()),
				fields, path)
		}
		coerced[argDef.Name] = value
	}

	return coerced, nil
}

// valueFromAST converts an AST value to a runtime value with variable
// substitution, without type-directed coercion. Directive argument evaluation
// uses it; validation guarantees well-typed usage.
func valueFromAST(s *executionState, value *language.Value) any {
	if value == nil {
		return nil
	}
	if value.Kind == language.Variable {
		if v, ok := s.variableValues[value.Raw]; ok {
			return v
		}
		return nil
	}
	return astValueToGo(value)
}

// astValueToGo converts a constant AST value to a Go value.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

// inspectValue renders a value for error messages, JSON-style.
func inspectValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, inspectValue(v[k]))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = inspectValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
