package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewStore connects and pings Redis. The caller owns Close.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    opts.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", opts.Addr, err)
	}

	log := logger_i.NewLogger(fmt.Sprintf("Redis Store %d", opts.DB))
	log.Info("Redis store initialised", "addr", opts.Addr)
	return &Store{client: client, Type: opts.DB, logger: log}, nil
}

// NewStoreFromClient wraps an existing client, used with miniredis in tests.
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client, logger: logger_i.NewLogger("Redis Store")}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis store")
	return s.client.Close()
}
