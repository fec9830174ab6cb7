// Package apperr defines the error taxonomy shared by the provider client,
// the image fetcher and the tool dispatcher.
package apperr

import (
	"errors"
	"fmt"
)

// Kind labels an error with its place in the taxonomy.
type Kind string

const (
	KindConfig     Kind = "ConfigError"
	KindNoResults  Kind = "NoResultsError"
	KindUpstream   Kind = "UpstreamError"
	KindIO         Kind = "IOError"
	KindValidation Kind = "ValidationError"
)

// Error is a taxonomy-labelled error. StatusCode is set for upstream
// responses that arrived with a non-2xx status.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf is New with a formatted cause.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Upstream reports a non-2xx provider or image host response.
func Upstream(op string, status int, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, StatusCode: status, Err: err}
}

// KindOf returns the taxonomy label of err, looking through wrapping.
// Errors outside the taxonomy report an empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
