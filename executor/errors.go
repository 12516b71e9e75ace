package executor

import (
	"fmt"

	language "github.com/hanpama/gqlexec/language"
)

// Location is a line/column pair into the source document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is an error that occurred during execution. Field errors carry
// a path and the locations of the field nodes that produced them; request
// errors may have neither.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	originalError error
}

func (e *GraphQLError) Error() string { return e.Message }

// Unwrap exposes the resolver error the GraphQL error was built from, if any.
func (e *GraphQLError) Unwrap() error { return e.originalError }

func newError(format string, args ...any) *GraphQLError {
	return &GraphQLError{Message: fmt.Sprintf(format, args...)}
}

func locationsOf(nodes []*language.Field) []Location {
	locs := make([]Location, 0, len(nodes))
	for _, n := range nodes {
		if n.Position != nil {
			locs = append(locs, Location{Line: n.Position.Line, Column: n.Position.Column})
		}
	}
	return locs
}

func positionLocation(pos *language.Position) []Location {
	if pos == nil {
		return nil
	}
	return []Location{{Line: pos.Line, Column: pos.Column}}
}

// newFieldError builds a located error at the given path. If err is already a
// *GraphQLError its message, extensions and original error are preserved.
func newFieldError(err error, nodes []*language.Field, path Path) *GraphQLError {
	if ge, ok := err.(*GraphQLError); ok {
		if ge.Path == nil {
			ge.Path = path
		}
		if ge.Locations == nil {
			ge.Locations = locationsOf(nodes)
		}
		return ge
	}
	var extensions map[string]any
	type extended interface{ Extensions() map[string]any }
	if ee, ok := err.(extended); ok {
		extensions = ee.Extensions()
	}
	return &GraphQLError{
		Message:       err.Error(),
		Locations:     locationsOf(nodes),
		Path:          path,
		Extensions:    extensions,
		originalError: err,
	}
}

// errorSink accumulates the field errors of one payload scope: the initial
// result owns one, and every pending incremental record owns its own.
type errorSink struct {
	errs []*GraphQLError
}

func (s *errorSink) add(err *GraphQLError) {
	s.errs = append(s.errs, err)
}

func (s *errorSink) take() []*GraphQLError {
	errs := s.errs
	s.errs = nil
	return errs
}
