package worker

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.JobType)+"_"+string(job.Status), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(logger_i.ContextWithTrace(context.Background(), job.TraceId), p.jobTimeout)
	defer cancel()
	log := p.logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job", "type", job.JobType)

	job.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, job, log)

	if job.JobType == jobModel.JobTypeIngest {
		job = p.ragService.IngestDocument(ctx, job)
		p.removeUpload(job, log)
	} else {
		job = p.ragService.ProcessRequest(ctx, job)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && job.Status != jobModel.JobStatusError {
		log.Warn("Job exceeded its execution timeout")
	}

	job.EndTime = time.Now()
	if job.Status != jobModel.JobStatusError {
		job.Status = jobModel.JobStatusComplete
		job.CurrentStep = jobModel.Complete
	}
	// the job context may have expired; the final state still has to land
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer saveCancel()
	p.saveJobState(saveCtx, job, log)
}

func (p *Pool) removeUpload(job jobModel.Job, log *logger_i.Logger) {
	path := job.JobPayload.IngestURL
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not remove uploaded file", "path", path, "error", err)
	}
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job, log *logger_i.Logger) {
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job state", "status", job.Status, "error", err)
	}
}
