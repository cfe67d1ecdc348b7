package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocAssistant/internal/metrics"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Pipeline runs trace injection and rate limiting in front of every handler
// and records the response status.
type Pipeline struct {
	limiter *IPRateLimiter
	logger  *logger_i.Logger
}

func NewPipeline(limiter *IPRateLimiter) *Pipeline {
	return &Pipeline{limiter: limiter, logger: logger_i.NewLogger("middleware")}
}

func (p *Pipeline) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := p.processRequest(requestResponseStruct{req: r, writer: rec})

		if !handleBadRequest(re) {
			metrics.HttpRequestsTotal.WithLabelValues(routeLabel(re.req), strconv.Itoa(rec.Status)).Inc()
			return
		}
		next.ServeHTTP(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(routeLabel(re.req), strconv.Itoa(rec.Status)).Inc()
	})
}

func (p *Pipeline) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = p.logger
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	return p.rateLimiter(re)
}

// routeLabel prefers the chi route pattern so ids do not explode the label set.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
