package schema

import (
	"fmt"
	"math"
	"strconv"

	language "github.com/hanpama/gqlexec/language"
)

func newStringType() *Type {
	return &Type{
		Name:        "String",
		Kind:        TypeKindScalar,
		Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
		Serialize:   serializeString,
		ParseValue:  coerceToString,
		ParseLiteral: func(v *language.Value) (any, error) {
			if v.Kind != language.StringValue && v.Kind != language.BlockValue {
				return nil, fmt.Errorf("String cannot represent a non string value: %s", v.String())
			}
			return v.Raw, nil
		},
	}
}

func newIntType() *Type {
	return &Type{
		Name:        "Int",
		Kind:        TypeKindScalar,
		Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
		Serialize:   coerceToInt,
		ParseValue:  coerceToInt,
		ParseLiteral: func(v *language.Value) (any, error) {
			if v.Kind != language.IntValue {
				return nil, fmt.Errorf("Int cannot represent non-integer value: %s", v.String())
			}
			iv, err := strconv.ParseInt(v.Raw, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %s", v.Raw)
			}
			return int(iv), nil
		},
	}
}

func newFloatType() *Type {
	return &Type{
		Name:        "Float",
		Kind:        TypeKindScalar,
		Description: "The `Float` scalar type represents signed double-precision fractional values.",
		Serialize:   coerceToFloat,
		ParseValue:  coerceToFloat,
		ParseLiteral: func(v *language.Value) (any, error) {
			if v.Kind != language.IntValue && v.Kind != language.FloatValue {
				return nil, fmt.Errorf("Float cannot represent non numeric value: %s", v.String())
			}
			fv, err := strconv.ParseFloat(v.Raw, 64)
			if err != nil {
				return nil, fmt.Errorf("Float cannot represent non numeric value: %s", v.Raw)
			}
			return fv, nil
		},
	}
}

func newBooleanType() *Type {
	return &Type{
		Name:        "Boolean",
		Kind:        TypeKindScalar,
		Description: "The `Boolean` scalar type represents `true` or `false`.",
		Serialize:   coerceToBoolean,
		ParseValue:  coerceToBoolean,
		ParseLiteral: func(v *language.Value) (any, error) {
			if v.Kind != language.BooleanValue {
				return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %s", v.String())
			}
			return v.Raw == "true", nil
		},
	}
}

func newIDType() *Type {
	return &Type{
		Name:        "ID",
		Kind:        TypeKindScalar,
		Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
		Serialize:   coerceToID,
		ParseValue:  coerceToID,
		ParseLiteral: func(v *language.Value) (any, error) {
			if v.Kind != language.StringValue && v.Kind != language.IntValue {
				return nil, fmt.Errorf("ID cannot represent value: %s", v.String())
			}
			return v.Raw, nil
		},
	}
}

func coerceToInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		return int(v), nil
	case float32:
		return coerceToInt(float64(v))
	}
	return nil, fmt.Errorf("Int cannot represent non-integer value: %v (%T)", value, value)
}

func coerceToFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("Float cannot represent non numeric value: %v (%T)", value, value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", v), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v (%T)", value, value)
}

func coerceToString(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("String cannot represent a non string value: %v (%T)", value, value)
}

func coerceToBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v (%T)", value, value)
}

func coerceToID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10), nil
		}
	}
	return nil, fmt.Errorf("ID cannot represent value: %v (%T)", value, value)
}

func booleanRef() *TypeRef { return NamedType("Boolean") }

func newIncludeDirective() *Directive {
	return &Directive{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Arguments: []*InputValue{
			{Name: "if", Description: "Included when true.", Type: NonNullType(booleanRef())},
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func newSkipDirective() *Directive {
	return &Directive{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Arguments: []*InputValue{
			{Name: "if", Description: "Skipped when true.", Type: NonNullType(booleanRef())},
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func newDeferDirective() *Directive {
	return &Directive{
		Name:        "defer",
		Description: "Directs the executor to deliver this fragment in a later payload.",
		Arguments: []*InputValue{
			{Name: "if", Description: "Deferred when true.", Type: booleanRef(), DefaultValue: true, HasDefault: true},
			{Name: "label", Description: "Unique name to identify the deferred payload.", Type: NamedType("String")},
		},
		Locations: []string{"FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func newStreamDirective() *Directive {
	return &Directive{
		Name:        "stream",
		Description: "Directs the executor to deliver list items beyond initialCount in later payloads.",
		Arguments: []*InputValue{
			{Name: "if", Description: "Streamed when true.", Type: booleanRef(), DefaultValue: true, HasDefault: true},
			{Name: "initialCount", Description: "Number of items delivered in the initial payload.", Type: NonNullType(NamedType("Int"))},
			{Name: "label", Description: "Unique name to identify the streamed payloads.", Type: NamedType("String")},
		},
		Locations: []string{"FIELD"},
	}
}

func newOnErrorDirective() *Directive {
	return &Directive{
		Name:        "onError",
		Description: "Selects the null-propagation behavior for the whole operation.",
		Arguments: []*InputValue{
			{Name: "action", Description: "PROPAGATE or NULL.", Type: NonNullType(NamedType("String"))},
		},
		Locations: []string{"QUERY", "MUTATION", "SUBSCRIPTION"},
	}
}

func newOneOfDirective() *Directive {
	return &Directive{
		Name:        "oneOf",
		Description: "Marks an input object type as requiring exactly one non-null field.",
		Locations:   []string{"INPUT_OBJECT"},
	}
}
