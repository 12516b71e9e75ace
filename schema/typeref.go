package schema

import language "github.com/hanpama/gqlexec/language"

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List, NonNull and SemanticNonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
	// TypeRefKindSemanticNonNull rejects null only when the null is not
	// accompanied by a field error, and never propagates the violation.
	TypeRefKindSemanticNonNull TypeRefKind = "SEMANTIC_NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsSemanticNonNull() bool {
	return t != nil && t.Kind == TypeRefKindSemanticNonNull
}

func (t *TypeRef) IsList() bool {
	return t != nil && t.Kind == TypeRefKindList
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList || t.Kind == TypeRefKindSemanticNonNull {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// String renders the reference in SDL notation; semantic-non-null renders with
// a trailing asterisk.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	case TypeRefKindSemanticNonNull:
		return t.OfType.String() + "*"
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	default:
		return t.Named
	}
}

func NonNullType(t *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeRefKindNonNull, OfType: t}
}

func SemanticNonNullType(t *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeRefKindSemanticNonNull, OfType: t}
}

func ListType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef {
	return &TypeRef{Kind: TypeRefKindNamed, Named: name}
}

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsSemanticNonNull reports whether the type is wrapped with Semantic-Non-Null.
func IsSemanticNonNull(t *TypeRef) bool { return t != nil && t.IsSemanticNonNull() }

// IsList reports whether the type is a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// TypeRefFromAST converts a gqlparser AST type (as found in variable
// definitions) into a TypeRef.
func TypeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return NonNullType(TypeRefFromAST(&inner))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(TypeRefFromAST(t.Elem))
	}
	return nil
}
