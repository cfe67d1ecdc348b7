package api

import (
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"6f1c2a9e-1d8b-4c55-9a3e-0b7f4f7c2d11"`
	Type      string            `json:"type,omitempty" example:"Query"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
	Kind    string `json:"kind,omitempty" example:"empty_question"`
}

type Result struct {
	Status       string        `json:"status"`
	Step         string        `json:"step,omitempty"`
	Answer       *AskResponse  `json:"answer,omitempty"`
	IngestResult *UploadResult `json:"ingest_result,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

// AskRequest scopes to one document. document_id wins over source, source
// wins over use_latest. use_latest defaults to true and max_results to 4 when
// omitted.
type AskRequest struct {
	Question   string `json:"question" validate:"required" example:"What is the refund policy?"`
	MaxResults *int   `json:"max_results,omitempty" example:"4"`
	UseTools   bool   `json:"use_tools,omitempty" example:"false"`
	DocumentId string `json:"document_id,omitempty"`
	Source     string `json:"source,omitempty" example:"handbook.pdf"`
	UseLatest  *bool  `json:"use_latest,omitempty" example:"true"`
}

type DeleteChunksRequest struct {
	Ids []string `json:"ids" validate:"required"`
}

// responses---------------------

type AskResponse struct {
	Answer     string                        `json:"answer"`
	Retrieved  []RetrievedChunk              `json:"retrieved"`
	ToolCalls  []commonModels.ToolInvocation `json:"tool_calls,omitempty"`
	TokensUsed int                           `json:"tokens_used"`
}

type RetrievedChunk struct {
	Content  string                `json:"content"`
	Metadata commonModels.Metadata `json:"metadata"`
	Score    float64               `json:"score" example:"0.83"`
}

type SimpleAskResponse struct {
	Answer string `json:"answer"`
}

type UploadResponse struct {
	Message       string `json:"message" example:"Document processed successfully"`
	Filename      string `json:"filename" example:"handbook.pdf"`
	ChunksCreated int    `json:"chunks_created" example:"12"`
	DocumentId    string `json:"document_id"`
}

type UploadResult struct {
	DocumentId string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

type StatsResponse struct {
	TotalDocuments int64  `json:"total_documents" example:"42"`
	Backend        string `json:"backend" example:"qdrant"`
}

type ListDocumentsResponse struct {
	TotalChunks     int64                        `json:"total_chunks"`
	UniqueDocuments int                          `json:"unique_documents"`
	Documents       []commonModels.SourceSummary `json:"documents"`
}

type DebugEmbeddingsResponse struct {
	Count int                          `json:"count"`
	Rows  []commonModels.EmbeddingInfo `json:"rows"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Backend   string `json:"backend,omitempty" example:"qdrant"`
	Embedding string `json:"embedding,omitempty" example:"google"`
	LLM       string `json:"llm,omitempty" example:"gemini:gemini-2.5-flash-lite"`
	Service   string `json:"service,omitempty"`
}

type BannerResponse struct {
	Message string `json:"message" example:"Document Q&A API"`
	Docs    string `json:"docs" example:"/swagger/index.html"`
}
