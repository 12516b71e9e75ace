// Package schema defines the immutable schema value consumed by the executor:
// named types, wrapper types, field definitions with resolver hooks, and
// directive definitions. The host constructs a Schema through the builder
// functions; the executor never mutates it.
package schema

import (
	"context"
	"sync"

	language "github.com/hanpama/gqlexec/language"
)

// Schema represents the complete GraphQL schema
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string

	possibleOnce  sync.Once
	possibleIndex map[string][]string
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// PossibleTypes returns the object type names a value of the named abstract
// type may resolve to. The index is derived once per schema instance: unions
// list their members directly, interfaces collect the objects that name them
// in their own Interfaces. Interfaces implemented by other interfaces are not
// followed.
func (s *Schema) PossibleTypes(abstractType string) []string {
	s.possibleOnce.Do(func() {
		idx := make(map[string][]string)
		for _, t := range s.Types {
			switch t.Kind {
			case TypeKindUnion:
				idx[t.Name] = append(idx[t.Name], t.PossibleTypes...)
			case TypeKindObject:
				for _, iface := range t.Interfaces {
					idx[iface] = append(idx[iface], t.Name)
				}
			}
		}
		s.possibleIndex = idx
	})
	return s.possibleIndex[abstractType]
}

// IsPossibleType reports whether objectType is a member of abstractType.
func (s *Schema) IsPossibleType(abstractType, objectType string) bool {
	for _, name := range s.PossibleTypes(abstractType) {
		if name == objectType {
			return true
		}
	}
	return false
}

// ResolveInfo carries per-field execution metadata into resolver hooks.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*language.Field
	ParentType     *Type
	ReturnType     *TypeRef
	Path           []any
	Schema         *Schema
	Fragments      map[string]*language.FragmentDefinition
	VariableValues map[string]any
	RootValue      any
	Operation      *language.OperationDefinition
	// ContextValue is the opaque host value supplied on the request.
	ContextValue any
}

// ResolveFunc resolves a field value. The returned value may be a plain value,
// nil, a slice, an executor.ResolvePromise, or an *executor.SourceStream.
type ResolveFunc func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error)

// SubscribeFunc creates the source event stream for a subscription root field.
// The returned value must be an *executor.SourceStream.
type SubscribeFunc func(ctx context.Context, source any, args map[string]any, info ResolveInfo) (any, error)

// ResolveTypeFunc determines the concrete object type name for a value of an
// abstract type. It returns the type name as a string, or an
// executor.ResolvePromise yielding one.
type ResolveTypeFunc func(ctx context.Context, value any, info ResolveInfo) (any, error)

// IsTypeOfFunc reports whether a runtime value belongs to an object type.
type IsTypeOfFunc func(ctx context.Context, value any, info ResolveInfo) bool

// SerializeFunc converts an internal leaf value to its JSON-safe form.
type SerializeFunc func(value any) (any, error)

// ParseValueFunc coerces an external runtime value (a variable) into the
// scalar's internal representation.
type ParseValueFunc func(value any) (any, error)

// ParseLiteralFunc coerces a constant AST value into the scalar's internal
// representation.
type ParseLiteralFunc func(value *language.Value) (any, error)

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// ResolveType applies to INTERFACE and UNION.
	ResolveType ResolveTypeFunc
	// IsTypeOf applies to OBJECT.
	IsTypeOf IsTypeOfFunc

	// Scalar and enum hooks. Unset hooks fall back to identity serialization
	// and (for enums) name validation.
	Serialize    SerializeFunc
	ParseValue   ParseValueFunc
	ParseLiteral ParseLiteralFunc
}

// Field returns the field definition with the given name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the input field definition with the given name, or nil.
func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasEnumValue reports whether name is a declared value of the enum.
func (t *Type) HasEnumValue(name string) bool {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Implements reports whether the type declares the named interface.
func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Resolve           ResolveFunc
	Subscribe         SubscribeFunc
	IsDeprecated      bool
	DeprecationReason string
}

// Argument returns the argument definition with the given name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// IsAbstract reports whether the kind is interface or union.
func (k TypeKind) IsAbstract() bool {
	return k == TypeKindInterface || k == TypeKindUnion
}

// IsLeaf reports whether the kind is scalar or enum.
func (k TypeKind) IsLeaf() bool {
	return k == TypeKindScalar || k == TypeKindEnum
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue describes an argument or input-object field. HasDefault
// distinguishes an explicit null default from no default at all.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	HasDefault        bool
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}
