package vectorDB

import (
	"testing"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
)

func candidate(source string, score float64) commonModels.RetrievalResult {
	return commonModels.RetrievalResult{
		Chunk: commonModels.Chunk{Content: source, Metadata: commonModels.Metadata{commonModels.MetaSource: source}},
		Score: score,
	}
}

func TestPostFilter_CountsOnlyExaminedRejections(t *testing.T) {
	candidates := []commonModels.RetrievalResult{
		candidate("a.txt", 0.9),
		candidate("b.txt", 0.8),
		candidate("a.txt", 0.7),
		candidate("a.txt", 0.6),
		candidate("b.txt", 0.5),
		candidate("b.txt", 0.4),
	}

	results, rejected := postFilter(candidates, 2, commonModels.Filter{commonModels.MetaSource: "a.txt"})
	assert.Len(t, results, 2)
	// the loop stops at the second a.txt, the trailing b.txt rows are never examined
	assert.Equal(t, 1, rejected)

	results, rejected = postFilter(candidates, 5, commonModels.Filter{commonModels.MetaSource: "a.txt"})
	assert.Len(t, results, 3)
	assert.Equal(t, 3, rejected)
}

func TestPostFilter_NoFilterRejectsNothing(t *testing.T) {
	results, rejected := postFilter([]commonModels.RetrievalResult{candidate("a.txt", 1.4), candidate("b.txt", -0.1)}, 4, nil)
	assert.Zero(t, rejected)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 0.0, results[1].Score)
}
