package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocAssistant/internal/domain/commonModels"
)

const promptTemplate = `You are a helpful AI assistant that answers questions based on the provided context.

Your task:
1. Use ONLY the context to answer.
2. If the answer isn't in the context, say you don't have the information.
3. Be concise and direct.

Context:
%s

Question:
%s

Answer:
`

// charsPerToken is a rough heuristic, not a tokenizer.
const charsPerToken = 4

func BuildPrompt(context, question string) string {
	return fmt.Sprintf(promptTemplate, context, question)
}

// FormatContext renders results in their given order, numbered from 1.
func FormatContext(results []commonModels.RetrievalResult) string {
	entries := make([]string, len(results))
	for i, r := range results {
		page := "N/A"
		if p, ok := r.Chunk.Metadata[commonModels.MetaPage]; ok && p != nil {
			page = fmt.Sprint(p)
		}
		entries[i] = fmt.Sprintf("--- Document %d (Source: %s, Page: %s, Score: %.2f) ---\n%s\n",
			i+1, sourceOrUnknown(r.Chunk.Metadata), page, r.Score, r.Chunk.Content)
	}
	return strings.Join(entries, "\n")
}

// EstimateTokens approximates prompt plus answer tokens from character counts.
func EstimateTokens(prompt, answer string) int {
	return (len([]rune(prompt)) + len([]rune(answer))) / charsPerToken
}

func sourceOrUnknown(m commonModels.Metadata) string {
	if s := m.Source(); s != "" {
		return s
	}
	return "Unknown"
}
