package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	doc, err := ParseQuery("query Q { a } fragment F on T { b }")
	require.NoError(t, err)
	require.Len(t, doc.Operations, 1)
	require.Len(t, doc.Fragments, 1)

	_, err = ParseQuery("query {")
	require.Error(t, err)
}

func TestLookups(t *testing.T) {
	doc, err := ParseQuery("query One { a } query Two { b } fragment F on T { c }")
	require.NoError(t, err)

	require.NotNil(t, FragmentByName(doc, "F"))
	require.Nil(t, FragmentByName(doc, "G"))

	require.Equal(t, "Two", OperationByName(doc, "Two").Name)
	require.Nil(t, OperationByName(doc, ""), "empty name requires a single-operation document")

	single, err := ParseQuery("{ a }")
	require.NoError(t, err)
	require.NotNil(t, OperationByName(single, ""))
}
