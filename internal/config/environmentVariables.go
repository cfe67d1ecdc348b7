package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//vector store
	VectorBackendQdrant   = "qdrant"
	VectorBackendPGVector = "pgvector"
	VectorBackendMemory   = "memory"
	DefaultVectorBackend  = VectorBackendQdrant
	EmbeddingDBName       = "documents"
	PGVectorTable         = "documents"

	//chunking
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100

	//retrieval
	DefaultMaxResults = 4
	MinMaxResults     = 1
	MaxMaxResults     = 10

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	JobExecutionTimeout             = 120 * time.Second

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 90 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadSize   = 32 << 20 //32mb
	UploadDirectory = "temporary_data"

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = "localhost"
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//embeddings
	EmbeddingProviderGoogle = "google"
	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderHash   = "hash"
	DefaultEmbedding        = EmbeddingProviderHash
	GoogleEmbeddingModel    = "gemini-embedding-001"
	OpenAIEmbeddingModel    = "text-embedding-3-small"

	//same width as all-MiniLM-L6-v2
	EmbeddingOutputDimensionality = 384
	EmbeddingBatchSize            = 100

	//llm
	LLMProviderGemini    = "gemini"
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
	DefaultLLMProvider   = LLMProviderOpenAI
	GeminiModelName      = "gemini-2.5-flash-lite"
	OpenRouterBaseURL    = "https://openrouter.ai/api/v1"
	OpenRouterModelName  = "openai/gpt-4.1-mini"
	AnthropicModelName   = "claude-3-5-haiku-latest"
	AnthropicMaxTokens   = 1024

	ModelTemperature float32 = 0

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore = 0

	//redis timeouts
	RedisJobStoreTTL = 24 * time.Hour
)
