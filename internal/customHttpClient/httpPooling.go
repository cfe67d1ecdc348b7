package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/DocAssistant/internal/config"
)

// one transport for every provider SDK so embedder and llm calls reuse connections
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// New returns a client on the shared pooled transport. A zero timeout leaves
// deadlines to the request context.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
