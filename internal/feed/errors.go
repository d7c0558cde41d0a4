package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by a parser given an empty or null document.
	// It is distinct from a document that parses to zero articles.
	ErrEmptyInput = errors.New("feed: empty input")

	// ErrMalformedStructure is returned when the document is not shaped like a feed.
	ErrMalformedStructure = errors.New("feed: malformed structure")

	// ErrSuperseded resolves a load that was replaced by a newer one.
	ErrSuperseded = errors.New("feed: load superseded")

	// ErrOffline is returned when the connectivity probe fails before a fetch.
	ErrOffline = errors.New("feed: no connectivity")
)

// InvalidURLError means the endpoint was rejected before any network I/O.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// StatusError means the server answered with a status other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

// TransportError wraps DNS, connection, timeout and cancellation failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MissingFieldError means a required field of result Index was absent or
// not a string. Path is relative to the result item, e.g. "fields.headline".
type MissingFieldError struct {
	Index int
	Path  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("feed: result %d: missing field %q", e.Index, e.Path)
}

// IsFetchError reports whether err carries one of the fetch failures.
func IsFetchError(err error) bool {
	var (
		invalid   *InvalidURLError
		status    *StatusError
		transport *TransportError
	)
	return errors.As(err, &invalid) || errors.As(err, &status) || errors.As(err, &transport)
}

// IsParseError reports whether err carries one of the parse failures.
func IsParseError(err error) bool {
	var missing *MissingFieldError
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrMalformedStructure) || errors.As(err, &missing)
}

// Stage names the pipeline step that failed.
type Stage string

const (
	StageFetch Stage = "fetch"
	StageParse Stage = "parse"
)

// PipelineError tags a fetch or parse failure with the stage it came from.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
