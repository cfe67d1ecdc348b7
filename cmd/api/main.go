// @title           Document Q&A API
// @version         1.0
// @description     Upload documents and ask questions answered from their content.
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocAssistant/internal/app"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/data/redisStore"
	"github.com/akolanti/DocAssistant/internal/data/store"
	jobmodel "github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/handlers"
	"github.com/akolanti/DocAssistant/internal/job"
	"github.com/akolanti/DocAssistant/internal/mcpserver"
	"github.com/akolanti/DocAssistant/internal/middleware"
	"github.com/akolanti/DocAssistant/internal/server"
	"github.com/akolanti/DocAssistant/internal/worker"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"golang.org/x/time/rate"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	settings, err := config.Load()
	logger_i.Init(logger_i.Options{JSON: settings.LogJSON, Level: settings.LogLevel})
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&listenAddr, "listen-addr", settings.ListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
	}
	redis, err := redisStore.NewStore(serviceContext, redisStore.Options{
		Addr:     settings.RedisAddr,
		Password: settings.RedisPassword,
		DB:       config.RedisJobStore,
	})
	switch {
	case err == nil:
		serviceConfig.JobStore = store.NewRedisJobStore(redis)
		defer redis.Close()
	case config.FALLBACK_REDIS_TO_INTERNALSTORE:
		logger.Error("Redis store is offline, using in-memory job store", "error", err)
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	default:
		logger.Error("Redis store is offline", "error", err)
		os.Exit(1)
	}
	logger.Info("Starting job service")
	jobService := job.InitJobService(serviceConfig)

	services, err := app.New(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	mcp, err := mcpserver.NewServer(services.Rag, services.Store)
	if err != nil {
		logger.Error("Could not create MCP server", "error", err)
		os.Exit(1)
	}

	h := handlers.New(handlers.Config{
		Rag:       services.Rag,
		Documents: services.Store,
		Jobs:      jobService,
		Info: handlers.ServiceInfo{
			Backend:   services.Store.BackendName(),
			Embedding: settings.Embedding.Provider,
			LLM:       services.LLM.Name(),
		},
		UploadDir: settings.UploadDir,
	})
	limiter := middleware.NewIPRateLimiter(rate.Limit(settings.RateLimitPerSecond), settings.RateLimitBurst)
	router := server.NewRouter(h, middleware.NewPipeline(limiter), mcp.Handler())

	//init worker pool
	worker.NewPool(jobService, services.Rag, stopWorkerChannel, &workerWaitGroup).Start()

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	srv := server.CreateServer(listenAddr, router)
	go srv.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	})
	go srv.ListenAndServe()

	<-stopExecution
	logger.Info("Server stopped")
}
