// Package language re-exports the gqlparser AST consumed by the executor and
// provides parsing and lookup helpers. Lexing, parsing and validation are
// gqlparser's job; nothing in this module mutates a parsed document.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FragmentByName finds a fragment definition in the document.
func FragmentByName(doc *QueryDocument, name string) *FragmentDefinition {
	return doc.Fragments.ForName(name)
}

// OperationByName finds an operation by name. The empty name matches only when
// the document contains exactly one operation.
func OperationByName(doc *QueryDocument, name string) *OperationDefinition {
	if name == "" {
		if len(doc.Operations) == 1 {
			return doc.Operations[0]
		}
		return nil
	}
	return doc.Operations.ForName(name)
}
