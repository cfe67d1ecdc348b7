package rag_test

import (
	"context"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/rag/tools"
)

// MockVectorStore implements rag.VectorStore
type MockVectorStore struct {
	OnIngest             func(ctx context.Context, chunks []commonModels.Chunk) ([]string, error)
	OnSearch             func(ctx context.Context, query string, k int, filter commonModels.Filter) ([]commonModels.RetrievalResult, error)
	OnResolveLatestScope func(ctx context.Context) (commonModels.Filter, error)

	// last search arguments
	SearchK      int
	SearchFilter commonModels.Filter
}

func (m *MockVectorStore) Ingest(ctx context.Context, chunks []commonModels.Chunk) ([]string, error) {
	if m.OnIngest != nil {
		return m.OnIngest(ctx, chunks)
	}
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = "chunk-" + string(rune('a'+i))
	}
	return ids, nil
}

func (m *MockVectorStore) Search(ctx context.Context, query string, k int, filter commonModels.Filter) ([]commonModels.RetrievalResult, error) {
	m.SearchK = k
	m.SearchFilter = filter
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, k, filter)
	}
	return []commonModels.RetrievalResult{{
		Chunk: commonModels.Chunk{
			Id:       "default",
			Content:  "default context",
			Metadata: commonModels.Metadata{commonModels.MetaSource: "default.txt"},
		},
		Score: 0.5,
	}}, nil
}

func (m *MockVectorStore) ResolveLatestScope(ctx context.Context) (commonModels.Filter, error) {
	if m.OnResolveLatestScope != nil {
		return m.OnResolveLatestScope(ctx)
	}
	return commonModels.Filter{commonModels.MetaSource: "latest.txt"}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string, temperature float32) (string, error)

	Prompt      string
	Temperature float32
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.Prompt = prompt
	m.Temperature = temperature
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt, temperature)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Name() string { return "mock" }

// MockLoader implements rag.DocumentLoader
type MockLoader struct {
	OnLoad func(path, filename string) ([]commonModels.Page, error)
}

func (m *MockLoader) Load(path, filename string) ([]commonModels.Page, error) {
	if m.OnLoad != nil {
		return m.OnLoad(path, filename)
	}
	return []commonModels.Page{{Number: 1, Content: "page one"}}, nil
}

// MockTools implements rag.ToolRegistry
type MockTools struct {
	OnDetect  func(question string) (tools.Call, bool)
	OnExecute func(ctx context.Context, call tools.Call) (string, error)
}

func (m *MockTools) Detect(question string) (tools.Call, bool) {
	if m.OnDetect != nil {
		return m.OnDetect(question)
	}
	return nil, false
}

func (m *MockTools) Execute(ctx context.Context, call tools.Call) (string, error) {
	if m.OnExecute != nil {
		return m.OnExecute(ctx, call)
	}
	return "", nil
}
