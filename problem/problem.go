// Package problem holds the errors surfaced to the HTTP boundary.
package problem

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds of problems. A Problem matches its kind with errors.Is.
var (
	ErrBadRequest                   = errors.New("bad request")
	ErrOutOfBounds                  = errors.New("out of bounds")
	ErrTooLargeOutput               = errors.New("too large output")
	ErrColormapNotFound             = errors.New("colormap not found")
	ErrFilepathNotFound             = errors.New("filepath not found")
	ErrNoAcceptableResponseMimetype = errors.New("no acceptable response mimetype")
	ErrNotImplemented               = errors.New("not implemented")
)

// Problem represents an error to be shown to the user.
type Problem struct {
	StatusCode int
	Kind       error
	Detail     string
}

// Error formats the Problem message.
func (p *Problem) Error() string {
	return fmt.Sprintf("%d (%s) %s", p.StatusCode, http.StatusText(p.StatusCode), p.Detail)
}

// Is reports whether target is the kind of this problem. Out of bounds
// problems are bad requests as well.
func (p *Problem) Is(target error) bool {
	if target == p.Kind {
		return true
	}
	return p.Kind == ErrOutOfBounds && target == ErrBadRequest
}

func newProblem(status int, kind error, format string, args ...interface{}) *Problem {
	return &Problem{
		StatusCode: status,
		Kind:       kind,
		Detail:     fmt.Sprintf(format, args...),
	}
}

// BadRequest is returned for malformed or semantically invalid input.
func BadRequest(format string, args ...interface{}) *Problem {
	return newProblem(http.StatusBadRequest, ErrBadRequest, format, args...)
}

// OutOfBounds is returned when an index or a rectangle falls outside the
// pyramid geometry.
func OutOfBounds(format string, args ...interface{}) *Problem {
	return newProblem(http.StatusBadRequest, ErrOutOfBounds, format, args...)
}

// TooLargeOutput is returned when the requested output exceeds the limit.
func TooLargeOutput(width, height, maxSize int) *Problem {
	return newProblem(http.StatusBadRequest, ErrTooLargeOutput,
		"Requested output %dx%d is too large (maximum size is %d)", width, height, maxSize)
}

// ColormapNotFound is returned for unknown colormap identifiers.
func ColormapNotFound(id string) *Problem {
	return newProblem(http.StatusNotFound, ErrColormapNotFound, "Colormap %s not found", id)
}

// FilepathNotFound is returned when the file does not exist under the root.
func FilepathNotFound(filepath string) *Problem {
	return newProblem(http.StatusNotFound, ErrFilepathNotFound, "%s not found", filepath)
}

// NoAcceptableResponseMimetype is returned when content negotiation fails.
func NoAcceptableResponseMimetype(accept string) *Problem {
	return newProblem(http.StatusNotAcceptable, ErrNoAcceptableResponseMimetype,
		"No acceptable response mimetype for %#v", accept)
}

// NotImplemented is returned for formats the server cannot read or write.
func NotImplemented(format string, args ...interface{}) *Problem {
	return newProblem(http.StatusNotImplemented, ErrNotImplemented, format, args...)
}

// StatusCode maps any error to an HTTP status code.
func StatusCode(err error) int {
	var p *Problem
	if errors.As(err, &p) {
		return p.StatusCode
	}
	return http.StatusInternalServerError
}
