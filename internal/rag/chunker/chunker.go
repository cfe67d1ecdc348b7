package chunker

import (
	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
	"github.com/akolanti/DocAssistant/internal/domain/ragErrors"
)

// separatorTiers ordered from best to worst for semantic meaning. Separators
// in one tier share a priority and the latest of them wins. With no separator
// in range the window is cut at maxChars.
var separatorTiers = [][][]rune{
	{[]rune("\n\n")},
	{[]rune("\n")},
	{[]rune(". "), []rune("? "), []rune("! ")},
	{[]rune(" ")},
}

// Chunker splits text into bounded windows. Window i+1 starts with exactly the
// last overlap characters of window i, so dropping those prefixes and
// concatenating gives back the input unchanged. Sizes count runes.
type Chunker struct {
	maxChars     int
	overlapChars int
}

func New(maxChars, overlapChars int) (*Chunker, error) {
	if overlapChars < 0 || maxChars <= overlapChars {
		return nil, ragErrors.New(ragErrors.InvalidChunkConfig,
			"max_chars (%d) must be greater than overlap_chars (%d) and overlap must not be negative", maxChars, overlapChars)
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}, nil
}

func (c *Chunker) MaxChars() int     { return c.maxChars }
func (c *Chunker) OverlapChars() int { return c.overlapChars }

// Split chunks one text. Every chunk gets a copy of meta plus chunk_index and chunk_total.
func (c *Chunker) Split(text string, meta commonModels.Metadata) []commonModels.Chunk {
	pieces := c.windows([]rune(text))
	chunks := make([]commonModels.Chunk, 0, len(pieces))
	for i, p := range pieces {
		m := meta.Clone()
		m[commonModels.MetaChunkIndex] = i
		m[commonModels.MetaChunkTotal] = len(pieces)
		chunks = append(chunks, commonModels.Chunk{Content: p, Metadata: m})
	}
	return chunks
}

// SplitPages chunks each page on its own, tags the page number and numbers the
// chunks across the whole document. Blank pages produce nothing.
func (c *Chunker) SplitPages(pages []commonModels.Page, meta commonModels.Metadata) []commonModels.Chunk {
	var chunks []commonModels.Chunk
	for _, page := range pages {
		for _, p := range c.windows([]rune(page.Content)) {
			m := meta.Clone()
			if page.Number > 0 {
				m[commonModels.MetaPage] = page.Number
			}
			chunks = append(chunks, commonModels.Chunk{Content: p, Metadata: m})
		}
	}
	for i := range chunks {
		chunks[i].Metadata[commonModels.MetaChunkIndex] = i
		chunks[i].Metadata[commonModels.MetaChunkTotal] = len(chunks)
	}
	return chunks
}

func (c *Chunker) windows(text []rune) []string {
	if len(text) == 0 {
		return nil
	}
	var out []string
	start := 0
	for {
		if len(text)-start <= c.maxChars {
			out = append(out, string(text[start:]))
			return out
		}
		end := c.cutPoint(text, start)
		out = append(out, string(text[start:end]))
		start = end - c.overlapChars
	}
}

// cutPoint picks the end of the window starting at start. The last occurrence
// of a separator from the highest priority tier wins, as long as the cut lands
// in the upper half of the usable stride. Otherwise the window is cut at
// maxChars.
func (c *Chunker) cutPoint(text []rune, start int) int {
	limit := start + c.maxChars
	stride := c.maxChars - c.overlapChars
	minCut := start + c.overlapChars + max(1, stride/2)

	for _, tier := range separatorTiers {
		best := -1
		for _, sep := range tier {
			best = max(best, lastCutBefore(text, sep, minCut, limit))
		}
		if best > 0 {
			return best
		}
	}
	return limit
}

// lastCutBefore returns the position just after the last sep that ends in
// [minCut, limit], or -1.
func lastCutBefore(text []rune, sep []rune, minCut, limit int) int {
	for end := limit; end >= minCut; end-- {
		begin := end - len(sep)
		if begin < 0 {
			return -1
		}
		if runesEqual(text[begin:end], sep) {
			return end
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
