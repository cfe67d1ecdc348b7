package adapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/akolanti/DocAssistant/internal/api"
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQuestion_UseLatestDefaultsTrue(t *testing.T) {
	q, err := ToQuestion(api.AskRequest{Question: "q"})
	require.NoError(t, err)
	assert.True(t, q.Scope.UseLatest)
	assert.Equal(t, 4, q.MaxResults)

	off, three := false, 3
	q, err = ToQuestion(api.AskRequest{Question: "q", UseLatest: &off, Source: "a.pdf", MaxResults: &three, UseTools: true})
	require.NoError(t, err)
	assert.False(t, q.Scope.UseLatest)
	assert.Equal(t, "a.pdf", q.Scope.Source)
	assert.Equal(t, 3, q.MaxResults)
	assert.True(t, q.UseTools)
}

func TestToQuestion_ExplicitZeroMaxResultsIsRejected(t *testing.T) {
	for _, n := range []int{0, -2} {
		_, err := ToQuestion(api.AskRequest{Question: "q", MaxResults: &n})
		require.Error(t, err)
		assert.ErrorIs(t, err, ragErrors.ErrInvalidArgument, "max_results %d", n)
		assert.Equal(t, http.StatusBadRequest, FromError(err).Error.Code)
	}
}

func TestToAPIResponse(t *testing.T) {
	job := jobModel.Job{
		Id:          "j1",
		JobType:     jobModel.JobTypeQuery,
		Status:      jobModel.JobStatusComplete,
		CurrentStep: jobModel.Complete,
		JobPayload: jobModel.JobPayload{
			Answer: &commonModels.Answer{
				Answer: "30 days",
				Retrieved: []commonModels.RetrievalResult{{
					Chunk: commonModels.Chunk{Content: "refunds", Metadata: commonModels.Metadata{"source": "a.txt"}},
					Score: 0.9,
				}},
				TokensUsed: 10,
			},
		},
	}

	res := ToAPIResponse(job)
	assert.Nil(t, res.Error)
	require.NotNil(t, res.Result.Answer)
	assert.Equal(t, "30 days", res.Result.Answer.Answer)
	assert.Equal(t, "a.txt", res.Result.Answer.Retrieved[0].Metadata.Source())
	assert.Nil(t, res.Result.IngestResult)
	assert.Equal(t, "Query", res.Type)
}

func TestToAPIResponse_Error(t *testing.T) {
	res := ToAPIResponse(jobModel.Job{
		Id:     "j2",
		Status: jobModel.JobStatusError,
		Error:  jobModel.JobError{Code: 502, Message: "model down", Retry: true, Kind: "generation_error"},
	})
	require.NotNil(t, res.Error)
	assert.Equal(t, "generation_error", res.Error.Kind)
	assert.True(t, res.Error.Retry)
}

func TestFromError(t *testing.T) {
	res := FromError(ragErrors.New(ragErrors.EmptyQuestion, "question must not be empty"))
	assert.Equal(t, http.StatusBadRequest, res.Error.Code)
	assert.Equal(t, "empty_question", res.Error.Kind)
	assert.Equal(t, "question must not be empty", res.Error.Message)

	res = FromError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, res.Error.Code)
}

func TestToInitJobResponse(t *testing.T) {
	assert.Equal(t, "/status/abc", ToInitJobResponse("abc").StatusURL)
}
