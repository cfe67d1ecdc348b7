package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the resolved runtime configuration. Defaults come from the
// const block, then an optional YAML file, then the environment (.env included).
type Settings struct {
	ListenAddr string `yaml:"listen_addr"`
	LogJSON    bool   `yaml:"log_json"`
	LogLevel   string `yaml:"log_level"`
	UploadDir  string `yaml:"upload_dir"`

	VectorBackend string           `yaml:"vector_backend"`
	Qdrant        QdrantSettings   `yaml:"qdrant"`
	PGVector      PGVectorSettings `yaml:"pgvector"`

	Embedding EmbeddingSettings `yaml:"embedding"`
	LLM       LLMSettings       `yaml:"llm"`
	Chunking  ChunkSettings     `yaml:"chunking"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
}

type QdrantSettings struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	UseTLS     bool   `yaml:"use_tls"`
	Collection string `yaml:"collection"`
}

type PGVectorSettings struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

type EmbeddingSettings struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

type LLMSettings struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"`
}

type ChunkSettings struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

func Defaults() Settings {
	return Settings{
		ListenAddr:    ServerListenAddr,
		LogJSON:       IS_PROD,
		LogLevel:      "debug",
		UploadDir:     UploadDirectory,
		VectorBackend: DefaultVectorBackend,
		Qdrant: QdrantSettings{
			Host:       QdrantHost,
			Port:       QdrantGrpcPort,
			UseTLS:     QdrantUseTLS,
			Collection: EmbeddingDBName,
		},
		PGVector: PGVectorSettings{Table: PGVectorTable},
		Embedding: EmbeddingSettings{
			Provider:  DefaultEmbedding,
			Dimension: EmbeddingOutputDimensionality,
		},
		LLM: LLMSettings{
			Provider:    DefaultLLMProvider,
			Temperature: ModelTemperature,
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		RedisAddr:          RedisAddr,
		RateLimitPerSecond: RATE_LIMIT_PER_SECOND,
		RateLimitBurst:     BURST_RATE_LIMIT_PER_SECOND,
	}
}

// Load resolves settings from defaults, RAG_CONFIG_FILE and the environment.
func Load() (Settings, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	s := Defaults()
	if path := os.Getenv("RAG_CONFIG_FILE"); path != "" {
		if err := s.mergeFile(path); err != nil {
			return s, err
		}
	}
	if err := s.mergeEnv(os.LookupEnv); err != nil {
		return s, err
	}
	s.fillProviderDefaults()
	return s, s.Validate()
}

func (s *Settings) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (s *Settings) mergeEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("LISTEN_ADDR", &s.ListenAddr)
	boolean("LOG_JSON", &s.LogJSON)
	str("LOG_LEVEL", &s.LogLevel)
	str("UPLOAD_DIR", &s.UploadDir)

	str("VECTOR_BACKEND", &s.VectorBackend)
	str("QDRANT_HOST", &s.Qdrant.Host)
	integer("QDRANT_PORT", &s.Qdrant.Port)
	str("QDRANT_API_KEY", &s.Qdrant.APIKey)
	boolean("QDRANT_USE_TLS", &s.Qdrant.UseTLS)
	str("QDRANT_COLLECTION", &s.Qdrant.Collection)
	str("DATABASE_URL", &s.PGVector.DSN)
	str("PGVECTOR_TABLE", &s.PGVector.Table)

	str("EMBEDDING_PROVIDER", &s.Embedding.Provider)
	str("EMBEDDING_MODEL", &s.Embedding.Model)
	str("EMBEDDING_API_KEY", &s.Embedding.APIKey)
	str("EMBEDDING_BASE_URL", &s.Embedding.BaseURL)
	integer("EMBEDDING_DIMENSION", &s.Embedding.Dimension)

	str("LLM_PROVIDER", &s.LLM.Provider)
	str("LLM_MODEL", &s.LLM.Model)
	str("LLM_API_KEY", &s.LLM.APIKey)
	str("LLM_BASE_URL", &s.LLM.BaseURL)
	if v, ok := lookup("LLM_TEMPERATURE"); ok && v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_TEMPERATURE: %w", err))
		} else {
			s.LLM.Temperature = float32(t)
		}
	}

	integer("CHUNK_SIZE", &s.Chunking.Size)
	integer("CHUNK_OVERLAP", &s.Chunking.Overlap)

	str("REDIS_ADDR", &s.RedisAddr)
	str("REDIS_PASSWORD", &s.RedisPassword)

	// provider specific keys used by the original deployment
	if s.LLM.APIKey == "" {
		switch s.LLM.Provider {
		case LLMProviderOpenAI:
			str("OPENROUTER_API_KEY", &s.LLM.APIKey)
			str("OPENAI_API_KEY", &s.LLM.APIKey)
		case LLMProviderGemini:
			str("GEMINI_API_KEY", &s.LLM.APIKey)
		case LLMProviderAnthropic:
			str("ANTHROPIC_API_KEY", &s.LLM.APIKey)
		}
	}
	if s.Embedding.APIKey == "" {
		switch s.Embedding.Provider {
		case EmbeddingProviderGoogle:
			str("GEMINI_API_KEY", &s.Embedding.APIKey)
		case EmbeddingProviderOpenAI:
			str("OPENAI_API_KEY", &s.Embedding.APIKey)
		}
	}
	return errors.Join(errs...)
}

func (s *Settings) fillProviderDefaults() {
	s.VectorBackend = strings.ToLower(strings.TrimSpace(s.VectorBackend))
	s.Embedding.Provider = strings.ToLower(strings.TrimSpace(s.Embedding.Provider))
	s.LLM.Provider = strings.ToLower(strings.TrimSpace(s.LLM.Provider))

	if s.Embedding.Model == "" {
		switch s.Embedding.Provider {
		case EmbeddingProviderGoogle:
			s.Embedding.Model = GoogleEmbeddingModel
		case EmbeddingProviderOpenAI:
			s.Embedding.Model = OpenAIEmbeddingModel
		}
	}
	if s.LLM.Model == "" {
		switch s.LLM.Provider {
		case LLMProviderGemini:
			s.LLM.Model = GeminiModelName
		case LLMProviderOpenAI:
			s.LLM.Model = OpenRouterModelName
		case LLMProviderAnthropic:
			s.LLM.Model = AnthropicModelName
		}
	}
	if s.LLM.Provider == LLMProviderOpenAI && s.LLM.BaseURL == "" {
		s.LLM.BaseURL = OpenRouterBaseURL
	}
}

func (s Settings) Validate() error {
	var errs []error
	switch s.VectorBackend {
	case VectorBackendQdrant, VectorBackendMemory:
	case VectorBackendPGVector:
		if s.PGVector.DSN == "" {
			errs = append(errs, errors.New("pgvector backend requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vector backend %q", s.VectorBackend))
	}
	switch s.Embedding.Provider {
	case EmbeddingProviderGoogle, EmbeddingProviderOpenAI, EmbeddingProviderHash:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", s.Embedding.Provider))
	}
	switch s.LLM.Provider {
	case LLMProviderGemini, LLMProviderOpenAI, LLMProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", s.LLM.Provider))
	}
	if s.Embedding.Dimension <= 0 {
		errs = append(errs, errors.New("embedding dimension must be positive"))
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Size <= s.Chunking.Overlap {
		errs = append(errs, fmt.Errorf("chunk size %d must exceed overlap %d >= 0", s.Chunking.Size, s.Chunking.Overlap))
	}
	return errors.Join(errs...)
}
