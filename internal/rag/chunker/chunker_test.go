package chunker

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconstruct(chunks []commonModels.Chunk, overlap int) string {
	var b strings.Builder
	for i, c := range chunks {
		r := []rune(c.Content)
		if i > 0 {
			r = r[overlap:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func refundDocument() string {
	sentence := "Our refund policy allows customers to return items within thirty days. "
	return strings.Repeat(sentence, 20)[:1200]
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name         string
		max, overlap int
	}{
		{"overlap equals max", 100, 100},
		{"overlap above max", 100, 150},
		{"negative overlap", 100, -1},
		{"zero max", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.max, tt.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, ragErrors.ErrInvalidChunkConfig)
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)
	assert.Empty(t, c.Split("", commonModels.Metadata{}))
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)

	chunks := c.Split("short text", commonModels.Metadata{commonModels.MetaSource: "a.txt"})
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Metadata[commonModels.MetaChunkIndex])
	assert.Equal(t, 1, chunks[0].Metadata[commonModels.MetaChunkTotal])
	assert.Equal(t, "a.txt", chunks[0].Metadata.Source())
}

func TestSplit_RefundDocument(t *testing.T) {
	text := refundDocument()
	require.Len(t, text, 1200)

	c, err := New(500, 100)
	require.NoError(t, err)
	chunks := c.Split(text, commonModels.Metadata{commonModels.MetaSource: "refund.txt"})

	require.Len(t, chunks, 3)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Metadata[commonModels.MetaChunkIndex])
		assert.Equal(t, 3, ch.Metadata[commonModels.MetaChunkTotal])
		assert.LessOrEqual(t, len([]rune(ch.Content)), 500)
	}

	first := []rune(chunks[0].Content)
	second := []rune(chunks[1].Content)
	assert.Equal(t, string(first[len(first)-100:]), string(second[:100]))
	assert.Equal(t, text, reconstruct(chunks, 100))
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("word ", 14) + "end."
	text := para + "\n\n" + para + "\n\n" + para

	c, err := New(len(para)+10, 5)
	require.NoError(t, err)
	chunks := c.Split(text, commonModels.Metadata{})

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "\n\n"), "first chunk should end at the paragraph break: %q", chunks[0].Content)
	assert.Equal(t, text, reconstruct(chunks, 5))
}

func TestSplit_SentenceTerminators(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantFirst string
	}{
		{
			name:      "question mark",
			text:      "Can I return an opened item after using it for a week? Only with a receipt and the original tags attached.",
			wantFirst: "Can I return an opened item after using it for a week? ",
		},
		{
			name:      "exclamation mark",
			text:      "Refunds now reach your account within two business days! Only with a receipt and the original tags attached.",
			wantFirst: "Refunds now reach your account within two business days! ",
		},
		{
			name:      "latest terminator in the tier wins",
			text:      "Refunds take about five business days to arrive. Is that fast? Not really, but ok and more text goes here.",
			wantFirst: "Refunds take about five business days to arrive. Is that fast? ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(80, 10)
			require.NoError(t, err)
			chunks := c.Split(tt.text, commonModels.Metadata{})

			require.Greater(t, len(chunks), 1)
			assert.Equal(t, tt.wantFirst, chunks[0].Content)
			assert.Equal(t, tt.text, reconstruct(chunks, 10))
		})
	}
}

func TestSplit_NoSeparatorFallsBackToCharacters(t *testing.T) {
	text := strings.Repeat("x", 1000)
	c, err := New(300, 50)
	require.NoError(t, err)

	chunks := c.Split(text, commonModels.Metadata{})
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 300)
	}
	assert.Equal(t, 300, len(chunks[0].Content))
	assert.Equal(t, text, reconstruct(chunks, 50))
}

func TestSplit_MultibyteText(t *testing.T) {
	text := strings.Repeat("Größe ändern. Ünïcödé façade. ", 40)
	c, err := New(120, 20)
	require.NoError(t, err)

	chunks := c.Split(text, commonModels.Metadata{})
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Content)), 120)
	}
	assert.Equal(t, text, reconstruct(chunks, 20))
}

func TestSplit_ReconstructionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("ab .\n")

	for i := 0; i < 500; i++ {
		n := rng.Intn(2500)
		buf := make([]rune, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(buf)
		maxChars := 2 + rng.Intn(400)
		overlap := rng.Intn(maxChars)

		c, err := New(maxChars, overlap)
		require.NoError(t, err)
		chunks := c.Split(text, commonModels.Metadata{})

		require.Equal(t, text, reconstruct(chunks, overlap), "max=%d overlap=%d", maxChars, overlap)
		for _, ch := range chunks {
			require.LessOrEqual(t, len([]rune(ch.Content)), maxChars)
			require.NotEmpty(t, ch.Content)
		}
	}
}

func TestSplitPages_NumbersAcrossDocument(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	pages := []commonModels.Page{
		{Number: 1, Content: strings.Repeat("alpha beta ", 10)},
		{Number: 2, Content: "short page"},
		{Number: 3, Content: ""},
	}
	chunks := c.SplitPages(pages, commonModels.Metadata{commonModels.MetaDocumentId: "doc-1"})

	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Metadata[commonModels.MetaChunkIndex])
		assert.Equal(t, len(chunks), ch.Metadata[commonModels.MetaChunkTotal])
		assert.Equal(t, "doc-1", ch.Metadata.DocumentId())
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, "short page", last.Content)
	assert.Equal(t, 2, last.Metadata[commonModels.MetaPage])
}

func TestSplitPages_UnpaginatedHasNoPage(t *testing.T) {
	c, err := New(500, 100)
	require.NoError(t, err)

	chunks := c.SplitPages([]commonModels.Page{{Content: "plain text file"}}, commonModels.Metadata{})
	require.Len(t, chunks, 1)
	_, hasPage := chunks[0].Metadata[commonModels.MetaPage]
	assert.False(t, hasPage)
}
