package mcpserver

import (
	"context"

	"github.com/akolanti/DocAssistant/internal/adapter"
	"github.com/akolanti/DocAssistant/internal/api"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the ingested documents"`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"number of chunks to retrieve, 1 to 10 (default 4)"`
	UseTools   bool   `json:"use_tools,omitempty" jsonschema:"allow the company policy lookup"`
	DocumentId string `json:"document_id,omitempty" jsonschema:"restrict retrieval to this document id"`
	Source     string `json:"source,omitempty" jsonschema:"restrict retrieval to this filename"`
	AllDocs    bool   `json:"all_documents,omitempty" jsonschema:"search every document instead of only the newest"`
}

type AskOutput struct {
	Answer     string                        `json:"answer"`
	Sources    []SourceExcerpt               `json:"sources"`
	ToolCalls  []commonModels.ToolInvocation `json:"tool_calls,omitempty"`
	TokensUsed int                           `json:"tokens_used"`
}

type SourceExcerpt struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

type ListDocumentsInput struct{}

type ListDocumentsOutput struct {
	Documents []commonModels.SourceSummary `json:"documents"`
	Count     int                          `json:"count"`
}

type StatsInput struct{}

type StatsOutput struct {
	TotalChunks int64  `json:"total_chunks"`
	Backend     string `json:"backend"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question using the ingested documents",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents, newest first",
	}, s.handleListDocuments)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_stats",
		Description: "Number of stored chunks and the vector backend in use",
	}, s.handleStats)
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	useLatest := !input.AllDocs
	q, err := adapter.ToQuestion(api.AskRequest{
		Question:   input.Question,
		MaxResults: input.MaxResults,
		UseTools:   input.UseTools,
		DocumentId: input.DocumentId,
		Source:     input.Source,
		UseLatest:  &useLatest,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}
	answer, err := s.rag.AnswerQuestion(ctx, q)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("ask_question failed", "error", err)
		return nil, AskOutput{}, err
	}

	out := AskOutput{
		Answer:     answer.Answer,
		Sources:    make([]SourceExcerpt, len(answer.Retrieved)),
		ToolCalls:  answer.ToolCalls,
		TokensUsed: answer.TokensUsed,
	}
	for i, r := range answer.Retrieved {
		out.Sources[i] = SourceExcerpt{
			Source:  r.Chunk.Metadata.Source(),
			Score:   r.Score,
			Content: r.Chunk.Content,
		}
	}
	return nil, out, nil
}

func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, _ ListDocumentsInput) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	sources, err := s.documents.ListUniqueSources(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if sources == nil {
		sources = []commonModels.SourceSummary{}
	}
	return nil, ListDocumentsOutput{Documents: sources, Count: len(sources)}, nil
}

func (s *Server) handleStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	n, err := s.documents.Count(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{TotalChunks: n, Backend: s.documents.BackendName()}, nil
}
