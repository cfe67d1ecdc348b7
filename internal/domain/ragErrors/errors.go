package ragErrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	InvalidChunkConfig Kind = "invalid_chunk_config"
	DocumentLoad       Kind = "document_load_error"
	Retrieval          Kind = "retrieval_error"
	Generation         Kind = "generation_error"
	EmptyQuestion      Kind = "empty_question"
	ToolUnavailable    Kind = "tool_unavailable"
	Ingestion          Kind = "ingestion_error"
	InvalidArgument    Kind = "invalid_argument"
	Unknown            Kind = "internal_error"
)

// Error is the structured failure surfaced by the RAG core: a machine-readable
// kind plus a human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Sentinels for errors.Is matching. Only the kind is compared.
var (
	ErrInvalidChunkConfig = &Error{Kind: InvalidChunkConfig}
	ErrDocumentLoad       = &Error{Kind: DocumentLoad}
	ErrRetrieval          = &Error{Kind: Retrieval}
	ErrGeneration         = &Error{Kind: Generation}
	ErrEmptyQuestion      = &Error{Kind: EmptyQuestion}
	ErrToolUnavailable    = &Error{Kind: ToolUnavailable}
	ErrIngestion          = &Error{Kind: Ingestion}
	ErrInvalidArgument    = &Error{Kind: InvalidArgument}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Detail == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Detail == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// DetailOf returns a caller-safe message for err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Detail != "" {
			return e.Detail
		}
		return string(e.Kind)
	}
	return "Internal Server Error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case EmptyQuestion, InvalidArgument, InvalidChunkConfig, DocumentLoad:
		return http.StatusBadRequest
	case Retrieval, Generation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether repeating the same request can succeed.
func Retryable(kind Kind) bool {
	switch kind {
	case Retrieval, Generation, Ingestion:
		return true
	default:
		return false
	}
}
