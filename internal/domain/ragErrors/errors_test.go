package ragErrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(Retrieval, errors.New("connection refused"), "vector store unreachable")
	wrapped := fmt.Errorf("answer question: %w", err)

	assert.ErrorIs(t, wrapped, ErrRetrieval)
	assert.NotErrorIs(t, wrapped, ErrGeneration)
	assert.Equal(t, Retrieval, KindOf(wrapped))
	assert.Equal(t, "vector store unreachable", DetailOf(wrapped))
	assert.Equal(t, "retrieval_error: vector store unreachable: connection refused", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(errors.New("boom")))
	assert.Equal(t, "Internal Server Error", DetailOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		EmptyQuestion:      http.StatusBadRequest,
		InvalidArgument:    http.StatusBadRequest,
		InvalidChunkConfig: http.StatusBadRequest,
		DocumentLoad:       http.StatusBadRequest,
		Retrieval:          http.StatusBadGateway,
		Generation:         http.StatusBadGateway,
		Ingestion:          http.StatusInternalServerError,
		Unknown:            http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "empty_question", (&Error{Kind: EmptyQuestion}).Error())
	assert.Equal(t, "document_load_error: a.exe", New(DocumentLoad, "%s", "a.exe").Error())
}
