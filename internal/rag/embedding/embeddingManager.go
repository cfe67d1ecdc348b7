package embedding

import "context"

// Embedder turns text into fixed width vectors. Implementations must be
// deterministic for the same input and model, safe for concurrent use, and keep
// BatchEmbedding output in input order.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// InBatches calls fn over consecutive slices of at most size texts and joins the results in order.
func InBatches(ctx context.Context, texts []string, size int, fn func(ctx context.Context, batch []string) ([][]float32, error)) ([][]float32, error) {
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += size {
		end := min(i+size, len(texts))
		vectors, err := fn(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}
