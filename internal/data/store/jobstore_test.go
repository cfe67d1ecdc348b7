package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocAssistant/internal/data/redisStore"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisJobStore(t *testing.T) (*RedisJobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisJobStore(redisStore.NewStoreFromClient(client)), mr
}

func sampleJob(id string) jobModel.Job {
	return jobModel.Job{
		Id:      id,
		JobType: jobModel.JobTypeQuery,
		Status:  jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			Question: "What is the refund policy?",
			Scope:    commonModels.Scope{UseLatest: true},
			Answer:   &commonModels.Answer{Answer: "30 days", TokensUsed: 12},
		},
	}
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	jobStore, mr := newRedisJobStore(t)
	ctx := logger_i.ContextWithTrace(context.Background(), "test-trace")

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		require.NoError(t, jobStore.SaveJob(ctx, sampleJob("job_abc_123")))

		got, found := jobStore.GetJob(ctx, "job_abc_123")
		require.True(t, found)
		assert.Equal(t, "What is the refund policy?", got.JobPayload.Question)
		require.NotNil(t, got.JobPayload.Answer)
		assert.Equal(t, "30 days", got.JobPayload.Answer.Answer)
		assert.True(t, got.JobPayload.Scope.UseLatest)
		assert.True(t, mr.Exists(jobKeyPrefix+"job_abc_123"))
		assert.Positive(t, mr.TTL(jobKeyPrefix+"job_abc_123"))
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		assert.False(t, found)
	})

	t.Run("Corrupt value is not found", func(t *testing.T) {
		require.NoError(t, mr.Set(jobKeyPrefix+"bad", "{not json"))
		_, found := jobStore.GetJob(ctx, "bad")
		assert.False(t, found)
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, "job_abc_123")
		assert.False(t, mr.Exists(jobKeyPrefix+"job_abc_123"))
	})
}

func TestRedisJobStore_ConcurrentAccess(t *testing.T) {
	jobStore, _ := newRedisJobStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, sampleJob("race-job"))
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	_, found := jobStore.GetJob(ctx, "race-job")
	assert.True(t, found)
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	s := InitInMemoryJobStore()

	_, found := s.GetJob(ctx, "missing")
	assert.False(t, found)

	require.NoError(t, s.SaveJob(ctx, sampleJob("a")))
	got, found := s.GetJob(ctx, "a")
	require.True(t, found)
	assert.Equal(t, jobModel.JobStatusRunning, got.Status)

	s.DeleteJob(ctx, "a")
	_, found = s.GetJob(ctx, "a")
	assert.False(t, found)
}

func TestInMemoryJobStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newInMemoryJobStore(time.Minute, func() time.Time { return now })

	require.NoError(t, s.SaveJob(ctx, sampleJob("old")))
	now = now.Add(30 * time.Second)
	_, found := s.GetJob(ctx, "old")
	assert.True(t, found)

	now = now.Add(31 * time.Second)
	_, found = s.GetJob(ctx, "old")
	assert.False(t, found)

	// the next save sweeps expired entries
	require.NoError(t, s.SaveJob(ctx, sampleJob("new")))
	assert.Len(t, s.jobs, 1)
}
