package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/akolanti/DocAssistant/internal/rag"
	"github.com/akolanti/DocAssistant/internal/rag/chunker"
	"github.com/akolanti/DocAssistant/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/DocAssistant/internal/rag/ingest"
	"github.com/akolanti/DocAssistant/internal/rag/tools"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB"
	"github.com/akolanti/DocAssistant/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunker(t *testing.T) *chunker.Chunker {
	t.Helper()
	c, err := chunker.New(500, 100)
	require.NoError(t, err)
	return c
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(v *MockVectorStore, l *MockLLM)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedCode   int
		expectedKind   ragErrors.Kind
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(v *MockVectorStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, p string, temp float32) (string, error) {
					return "final answer", nil
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Scope_Fallback",
			setupMocks: func(v *MockVectorStore, l *MockLLM) {
				v.OnResolveLatestScope = func(ctx context.Context) (commonModels.Filter, error) {
					return nil, errors.New("store unreachable")
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "mocked llm response",
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(v *MockVectorStore, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, q string, k int, f commonModels.Filter) ([]commonModels.RetrievalResult, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadGateway,
			expectedKind:   ragErrors.Retrieval,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(v *MockVectorStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, p string, temp float32) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadGateway,
			expectedKind:   ragErrors.Generation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mVec := &MockVectorStore{}
			mLLM := &MockLLM{}
			tt.setupMocks(mVec, mLLM)

			s := rag.NewService(mVec, mLLM, &MockLoader{}, newChunker(t), &MockTools{}, 0)

			ctx := logger_i.ContextWithTrace(context.Background(), "test-trace")
			job := jobModel.Job{
				Id:     "test-job",
				Status: jobModel.JobStatusQueued,
				JobPayload: jobModel.JobPayload{
					Question: "test question",
					Scope:    commonModels.Scope{UseLatest: true},
				},
			}

			result := s.ProcessRequest(ctx, job)

			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedStep, result.CurrentStep)
			if tt.expectedAnswer != "" {
				require.NotNil(t, result.JobPayload.Answer)
				assert.Equal(t, tt.expectedAnswer, result.JobPayload.Answer.Answer)
			}
			if tt.expectedCode != 0 {
				assert.Equal(t, tt.expectedCode, result.Error.Code)
				assert.Equal(t, string(tt.expectedKind), result.Error.Kind)
				assert.True(t, result.Error.Retry)
			}
		})
	}
}

func TestAnswerQuestion_Validation(t *testing.T) {
	s := rag.NewService(&MockVectorStore{}, &MockLLM{}, &MockLoader{}, newChunker(t), &MockTools{}, 0)
	ctx := context.Background()

	_, err := s.AnswerQuestion(ctx, commonModels.Question{Text: "   \n"})
	assert.ErrorIs(t, err, ragErrors.ErrEmptyQuestion)

	for _, n := range []int{-1, 11} {
		_, err = s.AnswerQuestion(ctx, commonModels.Question{Text: "q", MaxResults: n})
		assert.ErrorIs(t, err, ragErrors.ErrInvalidArgument, "max_results %d", n)
	}
}

func TestAnswerQuestion_DefaultsAndPackaging(t *testing.T) {
	mVec := &MockVectorStore{}
	mLLM := &MockLLM{}
	s := rag.NewService(mVec, mLLM, &MockLoader{}, newChunker(t), &MockTools{}, 0)

	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{Text: "What is it?"})
	require.NoError(t, err)

	assert.Equal(t, 4, mVec.SearchK)
	assert.Nil(t, mVec.SearchFilter)
	assert.Equal(t, float32(0), mLLM.Temperature)
	assert.Equal(t, "mocked llm response", ans.Answer)
	assert.Nil(t, ans.ToolCalls)
	assert.Equal(t, rag.EstimateTokens(mLLM.Prompt, ans.Answer), ans.TokensUsed)
	assert.Contains(t, mLLM.Prompt, "--- Document 1 (Source: default.txt, Page: N/A, Score: 0.50) ---\ndefault context\n")
	assert.True(t, strings.HasSuffix(mLLM.Prompt, "Question:\nWhat is it?\n\nAnswer:\n"))
}

func TestAnswerQuestion_ScopePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		scope commonModels.Scope
		want  commonModels.Filter
	}{
		{"document id wins", commonModels.Scope{DocumentId: "d-1", Source: "a.txt", UseLatest: true}, commonModels.Filter{commonModels.MetaDocumentId: "d-1"}},
		{"source over latest", commonModels.Scope{Source: "a.txt", UseLatest: true}, commonModels.Filter{commonModels.MetaSource: "a.txt"}},
		{"latest", commonModels.Scope{UseLatest: true}, commonModels.Filter{commonModels.MetaSource: "latest.txt"}},
		{"unscoped", commonModels.Scope{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mVec := &MockVectorStore{}
			s := rag.NewService(mVec, &MockLLM{}, &MockLoader{}, newChunker(t), &MockTools{}, 0)
			_, err := s.AnswerQuestion(context.Background(), commonModels.Question{Text: "q", MaxResults: 2, Scope: tt.scope})
			require.NoError(t, err)
			assert.Equal(t, tt.want, mVec.SearchFilter)
			assert.Equal(t, 2, mVec.SearchK)
		})
	}
}

func TestAnswerQuestion_ToolFailureDegrades(t *testing.T) {
	mTools := &MockTools{
		OnDetect: func(q string) (tools.Call, bool) {
			return tools.CompanyPolicyCall{Topic: tools.TopicRefund}, true
		},
		OnExecute: func(ctx context.Context, call tools.Call) (string, error) {
			return "", ragErrors.New(ragErrors.ToolUnavailable, "policy service down")
		},
	}
	mLLM := &MockLLM{}
	s := rag.NewService(&MockVectorStore{}, mLLM, &MockLoader{}, newChunker(t), mTools, 0)

	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{Text: "refund policy?", UseTools: true})
	require.NoError(t, err)
	require.Len(t, ans.ToolCalls, 1)
	result, ok := ans.ToolCalls[0].Result.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(result, "Error calling tool: "))
	assert.Contains(t, mLLM.Prompt, result)
}

func TestAnswerQuestion_ToolsDisabled(t *testing.T) {
	called := false
	mTools := &MockTools{OnDetect: func(q string) (tools.Call, bool) {
		called = true
		return nil, false
	}}
	s := rag.NewService(&MockVectorStore{}, &MockLLM{}, &MockLoader{}, newChunker(t), mTools, 0)
	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{Text: "vacation policy?"})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Nil(t, ans.ToolCalls)
}

func TestIngest_Failures(t *testing.T) {
	ctx := context.Background()

	loadFail := &MockLoader{OnLoad: func(path, filename string) ([]commonModels.Page, error) {
		return nil, errors.New("corrupt")
	}}
	s := rag.NewService(&MockVectorStore{}, &MockLLM{}, loadFail, newChunker(t), &MockTools{}, 0)
	_, err := s.Ingest(ctx, commonModels.Upload{Filename: "x.pdf", Path: "/tmp/x.pdf"})
	assert.ErrorIs(t, err, ragErrors.ErrDocumentLoad)

	storeFail := &MockVectorStore{OnIngest: func(ctx context.Context, chunks []commonModels.Chunk) ([]string, error) {
		return nil, errors.New("disk full")
	}}
	s = rag.NewService(storeFail, &MockLLM{}, &MockLoader{}, newChunker(t), &MockTools{}, 0)
	_, err = s.Ingest(ctx, commonModels.Upload{Filename: "x.txt"})
	assert.ErrorIs(t, err, ragErrors.ErrIngestion)

	job := s.IngestDocument(ctx, jobModel.Job{Id: "j", JobPayload: jobModel.JobPayload{IngestFileName: "x.txt"}})
	assert.Equal(t, jobModel.JobStatusError, job.Status)
	assert.Equal(t, http.StatusInternalServerError, job.Error.Code)
}

func TestIngest_MetadataOnChunks(t *testing.T) {
	var got []commonModels.Chunk
	mVec := &MockVectorStore{OnIngest: func(ctx context.Context, chunks []commonModels.Chunk) ([]string, error) {
		got = chunks
		return []string{"c1"}, nil
	}}
	s := rag.NewService(mVec, &MockLLM{}, &MockLoader{}, newChunker(t), &MockTools{}, 0)

	res, err := s.Ingest(context.Background(), commonModels.Upload{Filename: "Handbook.PDF", Path: "p"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Handbook.PDF", got[0].Metadata.Source())
	assert.Equal(t, res.DocumentId, got[0].Metadata.DocumentId())
	assert.Equal(t, "pdf", got[0].Metadata.FileType())
	assert.Equal(t, 1, res.ChunkCount)
}

// end to end on the in-memory backend

const refundSentence = "Our refund policy allows customers to return items within thirty days. "

func refundText() string {
	return strings.Repeat(refundSentence, 20)[:1200]
}

func newMemoryService(t *testing.T, registry rag.ToolRegistry) (rag.Service, *MockLLM) {
	t.Helper()
	store := vectorDB.NewStore(memoryDB.NewStorage(256), hashEmbedding.New(256))
	l := &MockLLM{OnGenerate: func(ctx context.Context, p string, temp float32) (string, error) {
		return "Items can be returned within thirty days.", nil
	}}
	return rag.NewService(store, l, ingest.NewLoader(), newChunker(t), registry, 0), l
}

func upload(t *testing.T, s rag.Service, filename, content string) commonModels.IngestResult {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	res, err := s.Ingest(context.Background(), commonModels.Upload{Filename: filename, Path: path})
	require.NoError(t, err)
	return res
}

func TestEndToEnd_RefundDocumentLatestScope(t *testing.T) {
	s, _ := newMemoryService(t, tools.DefaultRegistry())

	upload(t, s, "shipping.txt", "Shipping is free on orders above fifty dollars. Returns of items are handled by the warehouse.")
	res := upload(t, s, "refund.txt", refundText())
	assert.Equal(t, 3, res.ChunkCount)

	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{
		Text:       "What is the refund policy?",
		MaxResults: 3,
		Scope:      commonModels.Scope{UseLatest: true},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ans.Answer)
	require.Len(t, ans.Retrieved, 3)
	indexes := map[int]bool{}
	for _, r := range ans.Retrieved {
		assert.Equal(t, "refund.txt", r.Chunk.Metadata.Source())
		assert.Equal(t, res.DocumentId, r.Chunk.Metadata.DocumentId())
		total, _ := r.Chunk.Metadata.Int(commonModels.MetaChunkTotal)
		assert.Equal(t, 3, total)
		idx, _ := r.Chunk.Metadata.Int(commonModels.MetaChunkIndex)
		indexes[idx] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, indexes)
}

func TestEndToEnd_DocumentScopeIsolation(t *testing.T) {
	s, _ := newMemoryService(t, tools.DefaultRegistry())

	first := upload(t, s, "a.txt", refundText())
	upload(t, s, "b.txt", refundText())

	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{
		Text:       "refund",
		MaxResults: 10,
		Scope:      commonModels.Scope{DocumentId: first.DocumentId},
	})
	require.NoError(t, err)
	require.Len(t, ans.Retrieved, 3)
	for _, r := range ans.Retrieved {
		assert.Equal(t, first.DocumentId, r.Chunk.Metadata.DocumentId())
	}
}

func TestEndToEnd_ToolAugmentation(t *testing.T) {
	s, l := newMemoryService(t, tools.DefaultRegistry())
	upload(t, s, "refund.txt", refundText())

	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{
		Text:       "What is the vacation policy?",
		MaxResults: 2,
		UseTools:   true,
		Scope:      commonModels.Scope{UseLatest: true},
	})
	require.NoError(t, err)

	require.Len(t, ans.ToolCalls, 1)
	call := ans.ToolCalls[0]
	assert.Equal(t, "fetch_company_policy", call.ToolName)
	assert.Equal(t, map[string]any{"policy_name": "vacation"}, call.Arguments)
	assert.Equal(t, "Employees get 15 days paid vacation.", call.Result)

	last := ans.Retrieved[len(ans.Retrieved)-1]
	assert.Equal(t, commonModels.ToolCallSource, last.Chunk.Metadata.Source())
	assert.Equal(t, 1.0, last.Score)
	for _, r := range ans.Retrieved {
		assert.LessOrEqual(t, r.Score, last.Score)
	}
	assert.Contains(t, l.Prompt, "(Source: tool_call, Page: N/A, Score: 1.00) ---\nEmployees get 15 days paid vacation.\n")
}

func TestEndToEnd_EmptyStoreStillAnswers(t *testing.T) {
	s, _ := newMemoryService(t, tools.DefaultRegistry())
	ans, err := s.AnswerQuestion(context.Background(), commonModels.Question{Text: "anything", Scope: commonModels.Scope{UseLatest: true}})
	require.NoError(t, err)
	assert.Empty(t, ans.Retrieved)
	assert.NotEmpty(t, ans.Answer)
}
