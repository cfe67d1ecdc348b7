package qdrantDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	payloadContent  = "content"
	payloadMetadata = "metadata"
	payloadSeq      = "seq"
)

type ClientHolder struct {
	QObj       *qdrant.Client
	collection string
	dimension  uint64
	lastSeq    atomic.Int64
	clock      func() time.Time
	logger     *logger_i.Logger
}

// NewClientHolder connects to Qdrant and makes sure the collection and the seq
// payload index exist.
func NewClientHolder(ctx context.Context, settings config.QdrantSettings, dimension int) (*ClientHolder, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.Host,
		Port:     settings.Port,
		APIKey:   settings.APIKey,
		UseTLS:   settings.UseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: could not instantiate client: %w", err)
	}

	db := &ClientHolder{
		QObj:       client,
		collection: collectionName(settings),
		dimension:  uint64(dimension),
		clock:      time.Now,
		logger:     logger_i.NewLogger("Qdrant"),
	}

	if err := db.createCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := db.loadLastSeq(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	db.logger.Info("Connected to Qdrant", "host", settings.Host, "port", settings.Port, "collection", db.collection)
	return db, nil
}

func collectionName(settings config.QdrantSettings) string {
	if settings.Collection != "" {
		return settings.Collection
	}
	return config.EmbeddingDBName
}

func (db *ClientHolder) Name() string { return "qdrant" }

func (db *ClientHolder) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.QObj.Close()
}

func (db *ClientHolder) Insert(ctx context.Context, chunks []commonModels.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	base := db.reserveSeq(len(chunks))
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		if uint64(len(c.Embedding)) != db.dimension {
			return fmt.Errorf("qdrant: chunk %s has dimension %d, want %d", c.Id, len(c.Embedding), db.dimension)
		}
		meta, err := json.Marshal(orEmpty(c.Metadata))
		if err != nil {
			return fmt.Errorf("qdrant: marshal metadata for %s: %w", c.Id, err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(c.Id),
			Vectors: qdrant.NewVectors(c.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadContent:  c.Content,
				payloadMetadata: string(meta),
				payloadSeq:      base + int64(i),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		db.logUnavailable(ctx, err)
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Nearest(ctx context.Context, vector []float32, limit int) ([]commonModels.RetrievalResult, error) {
	if limit <= 0 {
		return []commonModels.RetrievalResult{}, nil
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		db.logUnavailable(ctx, err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	out := make([]commonModels.RetrievalResult, 0, len(result))
	for _, hit := range result {
		c, err := chunkFromPayload(hit.GetId().GetUuid(), hit.GetPayload())
		if err != nil {
			return nil, err
		}
		out = append(out, commonModels.RetrievalResult{Chunk: c, Score: float64(hit.GetScore())})
	}
	return out, nil
}

func (db *ClientHolder) NewestFirst(ctx context.Context, limit int, withEmbeddings bool) ([]commonModels.Chunk, error) {
	if limit <= 0 {
		n, err := db.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return []commonModels.Chunk{}, nil
		}
		limit = int(n)
	}
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(withEmbeddings),
		OrderBy: &qdrant.OrderBy{
			Key:       payloadSeq,
			Direction: qdrant.Direction_Desc.Enum(),
		},
	})
	if err != nil {
		db.logUnavailable(ctx, err)
		return nil, fmt.Errorf("qdrant scroll failed: %w", err)
	}

	out := make([]commonModels.Chunk, 0, len(points))
	for _, p := range points {
		c, err := chunkFromPayload(p.GetId().GetUuid(), p.GetPayload())
		if err != nil {
			return nil, err
		}
		if withEmbeddings {
			c.Embedding = p.GetVectors().GetVector().GetData()
		}
		out = append(out, c)
	}
	return out, nil
}

func (db *ClientHolder) Count(ctx context.Context) (int64, error) {
	n, err := db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: db.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		db.logUnavailable(ctx, err)
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int64(n), nil
}

func (db *ClientHolder) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIds := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIds[i] = qdrant.NewID(id)
	}
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIds...),
	})
	if err != nil {
		db.logUnavailable(ctx, err)
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

// DeleteAll drops and recreates the collection.
func (db *ClientHolder) DeleteAll(ctx context.Context) error {
	if err := db.QObj.DeleteCollection(ctx, db.collection); err != nil {
		db.logUnavailable(ctx, err)
		return fmt.Errorf("qdrant drop collection failed: %w", err)
	}
	return db.createCollection(ctx)
}

// reserveSeq hands out n consecutive sequence numbers starting at the wall
// clock in nanoseconds, or right after the last number handed out when the
// clock has not moved past it. Other processes writing to the same collection
// draw from the same clock, so seq order follows insert time across them.
func (db *ClientHolder) reserveSeq(n int) int64 {
	for {
		last := db.lastSeq.Load()
		base := max(db.clock().UnixNano(), last+1)
		if db.lastSeq.CompareAndSwap(last, base+int64(n)-1) {
			return base
		}
	}
}

// loadLastSeq starts the sequence after the newest stored point so a clock
// that went backwards since the last write cannot reorder documents.
func (db *ClientHolder) loadLastSeq(ctx context.Context) error {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: db.collection,
		Limit:          qdrant.PtrOf(uint32(1)),
		WithPayload:    qdrant.NewWithPayload(true),
		OrderBy: &qdrant.OrderBy{
			Key:       payloadSeq,
			Direction: qdrant.Direction_Desc.Enum(),
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: could not read latest %s: %w", payloadSeq, err)
	}
	if len(points) > 0 {
		db.lastSeq.Store(points[0].GetPayload()[payloadSeq].GetIntegerValue())
	}
	return nil
}

func (db *ClientHolder) createCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, db.collection)
	if err != nil {
		return fmt.Errorf("qdrant: could not check collection %s: %w", db.collection, err)
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: could not create collection %s: %w", db.collection, err)
	}

	// order_by on scroll needs a range index on the key
	_, err = db.QObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collection,
		FieldName:      payloadSeq,
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: could not index %s: %w", payloadSeq, err)
	}
	return nil
}

func (db *ClientHolder) logUnavailable(ctx context.Context, err error) {
	if status.Code(err) == codes.Unavailable {
		db.logger.WithTrace(ctx).Error("Qdrant is unreachable", "collection", db.collection, "error", err)
	}
}

func chunkFromPayload(id string, payload map[string]*qdrant.Value) (commonModels.Chunk, error) {
	c := commonModels.Chunk{
		Id:       id,
		Content:  payload[payloadContent].GetStringValue(),
		Metadata: commonModels.Metadata{},
	}
	if raw := payload[payloadMetadata].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Metadata); err != nil {
			return c, fmt.Errorf("qdrant: decode metadata of %s: %w", id, err)
		}
	}
	return c, nil
}

func orEmpty(m commonModels.Metadata) commonModels.Metadata {
	if m == nil {
		return commonModels.Metadata{}
	}
	return m
}
