package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	UserQueryInit    InternalStatus = "Init"
	ScopeResolution  InternalStatus = "ScopeResolution"
	Retrieval        InternalStatus = "Retrieval"
	ToolAugmentation InternalStatus = "ToolAugmentation"
	ContextAssembly  InternalStatus = "ContextAssembly"
	LLMCall          InternalStatus = "LLM"
	RedisCall        InternalStatus = "Redis"

	IngestInit      InternalStatus = "IngestInit"
	IngestLoading   InternalStatus = "IngestLoading"
	IngestChunking  InternalStatus = "IngestChunking"
	IngestEmbedding InternalStatus = "IngestEmbedding"
	Error           InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
	Kind    string `json:"kind,omitempty"`
}

type JobPayload struct {
	Question   string             `json:"question,omitempty"`
	MaxResults int                `json:"max_results,omitempty"`
	UseTools   bool               `json:"use_tools,omitempty"`
	Scope      commonModels.Scope `json:"scope"`

	Answer *commonModels.Answer `json:"answer,omitempty"`

	IngestFileName string                     `json:"ingest_file_name,omitempty"`
	IngestURL      string                     `json:"ingest_url,omitempty"`
	IngestResult   *commonModels.IngestResult `json:"ingest_result,omitempty"`
}

// ToQuestion rebuilds the orchestrator request carried by a query job.
func (p JobPayload) ToQuestion() commonModels.Question {
	return commonModels.Question{
		Text:       p.Question,
		MaxResults: p.MaxResults,
		UseTools:   p.UseTools,
		Scope:      p.Scope,
	}
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
