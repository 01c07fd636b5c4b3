package extract

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure. The values double as the stable
// error codes surfaced to API clients.
type Kind string

const (
	KindUnsupportedFileType Kind = "UNSUPPORTED_FILE_TYPE"
	KindInvalidDocument     Kind = "INVALID_DOCUMENT"
	KindEmptyDocument       Kind = "EMPTY_DOCUMENT"
	KindEncodingFailure     Kind = "ENCODING_FAILURE"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindUpstreamTimeout     Kind = "UPSTREAM_TIMEOUT"
	KindUpstreamRejected    Kind = "UPSTREAM_REJECTED"
	KindNoStructuredContent Kind = "NO_STRUCTURED_CONTENT"
	KindMalformedJSON       Kind = "MALFORMED_JSON"
	KindSchemaViolation     Kind = "SCHEMA_VIOLATION"
)

// Error is the single failure type produced by the extraction pipeline.
// Page is set for per-page failures (-1 otherwise); Path names the offending
// field for schema violations.
type Error struct {
	Kind  Kind
	Stage string
	Page  int
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	if e.Page >= 0 {
		msg += fmt.Sprintf(" (page %d)", e.Page)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" at %s", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a pipeline error for the given stage.
func NewError(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Page: -1, Err: err}
}

// NewPageError builds a pipeline error tied to a specific page index.
func NewPageError(kind Kind, stage string, page int, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Page: page, Err: err}
}

// KindOf reports the pipeline error kind wrapped anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
