package pgvectorDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Storage keeps chunks in a Postgres table with a pgvector column. The
// bigserial seq column records persistence order.
type Storage struct {
	pool       *pgxpool.Pool
	table      string
	tableIdent string
	dimension  int
	logger     *logger_i.Logger
}

func NewStorage(ctx context.Context, settings config.PGVectorSettings, dimension int) (*Storage, error) {
	if settings.DSN == "" {
		return nil, errors.New("pgvector: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}
	s := &Storage{
		pool:      pool,
		table:     tableName(settings),
		dimension: dimension,
		logger:    logger_i.NewLogger("pgvector"),
	}
	s.tableIdent = pgx.Identifier{s.table}.Sanitize()
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.logger.Info("Connected to pgvector", "table", s.table, "dimension", dimension)
	return s, nil
}

func tableName(settings config.PGVectorSettings) string {
	if settings.Table != "" {
		return settings.Table
	}
	return config.PGVectorTable
}

func (s *Storage) ensureSchema(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("pgvector: acquire connection: %w", err)
	}
	defer conn.Release()
	if _, err = conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pgvector: enable extension: %w", err)
	}
	if _, err = conn.Exec(ctx, createTableSQL(s.tableIdent, s.dimension)); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}
	return nil
}

func createTableSQL(tableIdent string, dimension int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL,
		embedding vector(%d)
	)`, tableIdent, dimension)
}

func (s *Storage) Name() string { return "pgvector" }

// Insert writes the batch in one transaction so a failure leaves no rows behind.
func (s *Storage) Insert(ctx context.Context, chunks []commonModels.Chunk) (err error) {
	if len(chunks) == 0 {
		return nil
	}
	tx, txErr := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if txErr != nil {
		return fmt.Errorf("pgvector: begin tx: %w", txErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("pgvector: rollback failed: %w; original error: %v", rbErr, err)
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("pgvector: commit: %w", commitErr)
		}
	}()

	stmt := fmt.Sprintf(`INSERT INTO %s (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)`, s.tableIdent)
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("pgvector: chunk %q dimension mismatch (got %d want %d)", c.Id, len(c.Embedding), s.dimension)
		}
		meta, marshalErr := encodeMetadata(c.Metadata)
		if marshalErr != nil {
			return fmt.Errorf("pgvector: marshal metadata for %q: %w", c.Id, marshalErr)
		}
		if _, execErr := tx.Exec(ctx, stmt, c.Id, c.Content, meta, pgvector.NewVector(c.Embedding)); execErr != nil {
			return fmt.Errorf("pgvector: insert %q: %w", c.Id, execErr)
		}
	}
	return nil
}

func (s *Storage) Nearest(ctx context.Context, vector []float32, limit int) ([]commonModels.RetrievalResult, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("pgvector: query dimension %d, want %d", len(vector), s.dimension)
	}
	query := fmt.Sprintf(`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
FROM %s ORDER BY embedding <=> $1 ASC, seq ASC LIMIT $2`, s.tableIdent)
	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	results := make([]commonModels.RetrievalResult, 0, limit)
	for rows.Next() {
		var (
			c     commonModels.Chunk
			raw   []byte
			score float64
		)
		if err := rows.Scan(&c.Id, &c.Content, &raw, &score); err != nil {
			return nil, fmt.Errorf("pgvector: scan result: %w", err)
		}
		if c.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		results = append(results, commonModels.RetrievalResult{Chunk: c, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: iterate results: %w", err)
	}
	return results, nil
}

func (s *Storage) NewestFirst(ctx context.Context, limit int, withEmbeddings bool) ([]commonModels.Chunk, error) {
	columns := "id, content, metadata"
	if withEmbeddings {
		columns += ", embedding"
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq DESC", columns, s.tableIdent)
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector: list chunks: %w", err)
	}
	defer rows.Close()

	out := make([]commonModels.Chunk, 0)
	for rows.Next() {
		var (
			c   commonModels.Chunk
			raw []byte
			vec pgvector.Vector
		)
		dest := []any{&c.Id, &c.Content, &raw}
		if withEmbeddings {
			dest = append(dest, &vec)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("pgvector: scan chunk: %w", err)
		}
		if c.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
		if withEmbeddings {
			c.Embedding = vec.Slice()
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: iterate chunks: %w", err)
	}
	return out, nil
}

func (s *Storage) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.tableIdent)).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return n, nil
}

func (s *Storage) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", s.tableIdent), ids); err != nil {
		return fmt.Errorf("pgvector: delete: %w", err)
	}
	return nil
}

func (s *Storage) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.tableIdent)); err != nil {
		return fmt.Errorf("pgvector: delete all: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func encodeMetadata(m commonModels.Metadata) ([]byte, error) {
	if m == nil {
		m = commonModels.Metadata{}
	}
	return json.Marshal(m)
}

func decodeMetadata(raw []byte) (commonModels.Metadata, error) {
	meta := commonModels.Metadata{}
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("pgvector: decode metadata: %w", err)
	}
	return meta, nil
}
