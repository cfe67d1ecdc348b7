package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/rag"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

// Documents is the read side of the vector store exposed to MCP clients.
type Documents interface {
	Count(ctx context.Context) (int64, error)
	ListUniqueSources(ctx context.Context) ([]commonModels.SourceSummary, error)
	BackendName() string
}

// Server exposes question answering and document listing as MCP tools.
type Server struct {
	rag       rag.Service
	documents Documents
	server    *mcp.Server
	logger    *logger_i.Logger
}

func NewServer(ragService rag.Service, documents Documents) (*Server, error) {
	if ragService == nil || documents == nil {
		return nil, errors.New("mcp server needs the rag service and the document store")
	}
	s := &Server{
		rag:       ragService,
		documents: documents,
		server:    mcp.NewServer(&mcp.Implementation{Name: "docassistant", Version: Version}, nil),
		logger:    logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// Run serves over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
