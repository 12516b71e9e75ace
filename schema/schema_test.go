package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeRefString(t *testing.T) {
	require.Equal(t, "String", NamedType("String").String())
	require.Equal(t, "String!", NonNullType(NamedType("String")).String())
	require.Equal(t, "String*", SemanticNonNullType(NamedType("String")).String())
	require.Equal(t, "[Int!]", ListType(NonNullType(NamedType("Int"))).String())
	require.Equal(t, "[[ID]]!", NonNullType(ListType(ListType(NamedType("ID")))).String())
}

func TestTypeRefPredicates(t *testing.T) {
	nn := NonNullType(ListType(NamedType("Int")))
	require.True(t, IsNonNull(nn))
	require.False(t, IsList(nn))
	require.True(t, IsList(nn.Unwrap()))
	require.Equal(t, "Int", GetNamedType(nn))

	sn := SemanticNonNullType(NamedType("Int"))
	require.True(t, IsSemanticNonNull(sn))
	require.False(t, IsNonNull(sn))
}

func TestPossibleTypesIndex(t *testing.T) {
	sch := NewSchema("")
	sch.AddType(NewType("Node", TypeKindInterface, ""))
	dog := NewType("Dog", TypeKindObject, "").AddInterface("Node")
	cat := NewType("Cat", TypeKindObject, "").AddInterface("Node")
	sch.AddType(dog).AddType(cat)
	sch.AddType(NewType("Media", TypeKindUnion, "").AddPossibleType("Dog"))

	require.ElementsMatch(t, []string{"Dog", "Cat"}, sch.PossibleTypes("Node"))
	require.True(t, sch.IsPossibleType("Node", "Dog"))
	require.False(t, sch.IsPossibleType("Media", "Cat"))
}

func TestBuiltinScalarCoercion(t *testing.T) {
	sch := NewSchema("")

	intType := sch.Types["Int"]
	v, err := intType.ParseValue(float64(3))
	require.NoError(t, err)
	require.Equal(t, 3, v)
	_, err = intType.ParseValue(3.5)
	require.Error(t, err)
	_, err = intType.ParseValue("3")
	require.Error(t, err)

	idType := sch.Types["ID"]
	v, err = idType.Serialize(42)
	require.NoError(t, err)
	require.Equal(t, "42", v)

	boolType := sch.Types["Boolean"]
	_, err = boolType.ParseValue("true")
	require.Error(t, err)
}

func TestNewSchemaRegistersDirectives(t *testing.T) {
	sch := NewSchema("")
	for _, name := range []string{"include", "skip", "defer", "stream", "onError", "oneOf"} {
		require.Contains(t, sch.Directives, name)
	}
}
