package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var retrievalCandidates = promauto.NewCounter(prometheus.CounterOpts{
	Name: "retrieval_candidates_total",
	Help: "Nearest neighbour candidates returned by the vector backend",
})

var retrievalFilteredOut = promauto.NewCounter(prometheus.CounterOpts{
	Name: "retrieval_filtered_out_total",
	Help: "Candidates dropped by the in-process metadata filter",
})

var scopeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "scope_resolution_fallback_total",
	Help: "Latest-document scope lookups that failed and fell back to unscoped search",
})

var toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tool_invocations_total",
	Help: "Tool calls made while answering, by tool and outcome",
}, []string{"tool", "outcome"})

var chunksIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chunks_ingested_total",
	Help: "Chunks written to the vector store",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func AddRetrievalCandidates(n int) {
	retrievalCandidates.Add(float64(n))
}

func AddRetrievalFilteredOut(n int) {
	retrievalFilteredOut.Add(float64(n))
}

func IncrementScopeFallback() {
	scopeFallbacks.Inc()
}

func CaptureToolInvocation(tool string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "unavailable"
	}
	toolInvocations.WithLabelValues(tool, outcome).Inc()
}

func AddChunksIngested(n int) {
	chunksIngested.Add(float64(n))
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent executing a job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls and pipeline stages.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
