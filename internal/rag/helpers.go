package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

const toolErrorPrefix = "Error calling tool: "

func returnOutput(job jobModel.Job, ans *commonModels.Answer) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) jobError(job jobModel.Job, err error, log *logger_i.Logger) jobModel.Job {
	kind := ragErrors.KindOf(err)
	log.Error("Job failed", "step", job.CurrentStep, "kind", kind, "error", err)

	job.Error = jobModel.JobError{
		Code:    ragErrors.HTTPStatus(kind),
		Message: ragErrors.DetailOf(err),
		Retry:   ragErrors.Retryable(kind),
		Kind:    string(kind),
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeScopeStep(ctx context.Context, log *logger_i.Logger, scope commonModels.Scope) commonModels.Filter {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("scope_resolution", time.Since(start)) }()

	filter, err := resolveScope(ctx, s.store, scope)
	if err != nil {
		// unscoped retrieval may mix documents, accepted over failing the request
		metrics.IncrementScopeFallback()
		log.Warn("Latest scope resolution failed, searching unscoped", "error", err)
		return nil
	}
	log.Debug("Resolved scope", "filter", filter)
	return filter
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, question string, k int, filter commonModels.Filter) ([]commonModels.RetrievalResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	results, err := s.store.Search(ctx, question, k, filter)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		return nil, asKind(err, ragErrors.Retrieval, "search failed")
	}
	log.Debug("Retrieved chunks", "count", len(results), "k", k)
	return results, nil
}

// executeToolStep invokes at most one tool and appends its result as a
// synthetic chunk with the maximal score.
func (s *service) executeToolStep(ctx context.Context, log *logger_i.Logger, question string, retrieved []commonModels.RetrievalResult) ([]commonModels.RetrievalResult, []commonModels.ToolInvocation) {
	call, ok := s.tools.Detect(question)
	if !ok {
		return retrieved, nil
	}

	start := time.Now()
	result, err := s.tools.Execute(ctx, call)
	metrics.CaptureExecutionMetrics("tool_augmentation", time.Since(start))
	metrics.CaptureToolInvocation(call.ToolName(), err == nil)
	if err != nil {
		log.Warn("Tool unavailable", "tool", call.ToolName(), "error", err)
		result = toolErrorPrefix + err.Error()
	}

	synthetic := commonModels.RetrievalResult{
		Chunk: commonModels.Chunk{
			Content:  result,
			Metadata: commonModels.Metadata{commonModels.MetaSource: commonModels.ToolCallSource},
		},
		Score: 1.0,
	}
	invocation := commonModels.ToolInvocation{
		ToolName:  call.ToolName(),
		Arguments: call.Arguments(),
		Result:    result,
	}
	log.Debug("Tool invoked", "tool", call.ToolName(), "arguments", invocation.Arguments)
	return append(retrieved, synthetic), []commonModels.ToolInvocation{invocation}
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("generation", time.Since(start)) }()

	answer, err := s.llmProvider.Generate(ctx, prompt, s.temperature)
	if err != nil {
		log.Error("Generation failed", "provider", s.llmProvider.Name(), "error", err)
		return "", asKind(err, ragErrors.Generation, "%s generation failed", s.llmProvider.Name())
	}
	return answer, nil
}
