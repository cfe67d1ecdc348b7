package adapter

import (
	"fmt"

	"github.com/akolanti/DocAssistant/internal/api"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("/status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
			Kind:    job.Error.Kind,
		}
	}

	result := api.Result{
		Status: string(job.Status),
		Step:   string(job.CurrentStep),
	}
	if job.JobPayload.Answer != nil {
		ans := ToAskResponse(*job.JobPayload.Answer)
		result.Answer = &ans
	}
	if job.JobPayload.IngestResult != nil {
		result.IngestResult = ToUploadResult(*job.JobPayload.IngestResult)
	}

	return api.JobResponse{
		Id:        job.Id,
		Type:      string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToAskResponse(answer commonModels.Answer) api.AskResponse {
	retrieved := make([]api.RetrievedChunk, len(answer.Retrieved))
	for i, r := range answer.Retrieved {
		retrieved[i] = api.RetrievedChunk{
			Content:  r.Chunk.Content,
			Metadata: r.Chunk.Metadata,
			Score:    r.Score,
		}
	}
	return api.AskResponse{
		Answer:     answer.Answer,
		Retrieved:  retrieved,
		ToolCalls:  answer.ToolCalls,
		TokensUsed: answer.TokensUsed,
	}
}

func ToUploadResult(res commonModels.IngestResult) *api.UploadResult {
	return &api.UploadResult{
		DocumentId: res.DocumentId,
		Filename:   res.Filename,
		ChunkCount: res.ChunkCount,
	}
}

func ToUploadResponse(res commonModels.IngestResult) api.UploadResponse {
	return api.UploadResponse{
		Message:       "Document processed successfully",
		Filename:      res.Filename,
		ChunksCreated: res.ChunkCount,
		DocumentId:    res.DocumentId,
	}
}

// ToQuestion maps the request body onto the orchestrator input. A missing
// use_latest means true and a missing max_results means the default. The
// orchestrator reads a zero max_results as the default, so an explicit value
// below the minimum is rejected here.
func ToQuestion(req api.AskRequest) (commonModels.Question, error) {
	useLatest := true
	if req.UseLatest != nil {
		useLatest = *req.UseLatest
	}
	maxResults := config.DefaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
		if maxResults < config.MinMaxResults {
			return commonModels.Question{}, ragErrors.New(ragErrors.InvalidArgument,
				"max_results must be between %d and %d, got %d", config.MinMaxResults, config.MaxMaxResults, maxResults)
		}
	}
	return commonModels.Question{
		Text:       req.Question,
		MaxResults: maxResults,
		UseTools:   req.UseTools,
		Scope: commonModels.Scope{
			DocumentId: req.DocumentId,
			Source:     req.Source,
			UseLatest:  useLatest,
		},
	}, nil
}

func ToListDocumentsResponse(total int64, sources []commonModels.SourceSummary) api.ListDocumentsResponse {
	if sources == nil {
		sources = []commonModels.SourceSummary{}
	}
	return api.ListDocumentsResponse{
		TotalChunks:     total,
		UniqueDocuments: len(sources),
		Documents:       sources,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id: id,
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

// FromError builds the error envelope for a failed synchronous call.
func FromError(err error) api.JobResponse {
	kind := ragErrors.KindOf(err)
	code := ragErrors.HTTPStatus(kind)
	return api.JobResponse{
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: ragErrors.DetailOf(err),
			Retry:   ragErrors.Retryable(kind),
			Kind:    string(kind),
		},
	}
}
