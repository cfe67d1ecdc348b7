package job

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("job queue is full")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// NewJob builds a queued job carrying the caller's trace id.
func NewJob(ctx context.Context, jobType jobModel.JobType, payload jobModel.JobPayload) jobModel.Job {
	step := jobModel.UserQueryInit
	if jobType == jobModel.JobTypeIngest {
		step = jobModel.IngestInit
	}
	return jobModel.Job{
		Id:          uuid.New().String(),
		TraceId:     logger_i.TraceId(ctx),
		JobType:     jobType,
		JobPayload:  payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: step,
	}
}

// Enqueue persists the job as queued and hands it to the worker pool. Every
// RequestsPerNewWorkerCount submissions the dispatcher is asked for another
// worker.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", j.Id)
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Could not save queued job", "error", err)
		return err
	}

	select {
	case s.JobChannel <- j:
	default:
		log.Warn("Job queue full, rejecting job")
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: http.StatusServiceUnavailable, Message: ErrQueueFull.Error(), Retry: true}
		_ = s.JobStore.SaveJob(ctx, j)
		return ErrQueueFull
	}
	metrics.IncrementJobsInQueue()

	if atomic.AddInt64(&s.RequestCount, 1)%config.RequestsPerNewWorkerCount == 0 {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
		}
	}
	log.Debug("Job queued", "type", j.JobType)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (jobModel.Job, bool) {
	return s.JobStore.GetJob(ctx, id)
}
