package commonModels

import "fmt"

// metadata keys carried by every stored chunk
const (
	MetaSource     = "source"
	MetaDocumentId = "document_id"
	MetaChunkIndex = "chunk_index"
	MetaChunkTotal = "chunk_total"
	MetaPage       = "page"
	MetaFileType   = "file_type"

	ToolCallSource = "tool_call"
)

// Metadata values are scalars: string, bool, or a number. Numbers may come back
// from a store as float64 after a JSON round trip.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (m Metadata) Source() string     { return m.String(MetaSource) }
func (m Metadata) DocumentId() string { return m.String(MetaDocumentId) }
func (m Metadata) FileType() string   { return m.String(MetaFileType) }

// Int reads a numeric metadata value regardless of its stored numeric type.
func (m Metadata) Int(key string) (int, bool) {
	f, ok := toFloat(m[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Chunk is an immutable unit of retrievable text.
type Chunk struct {
	Id        string    `json:"id,omitempty"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"-"`
}

// RetrievalResult pairs a chunk with its similarity to the query, in [0,1].
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Filter is an exact-equality match over chunk metadata. All pairs must match.
type Filter map[string]any

func (f Filter) Matches(m Metadata) bool {
	for key, want := range f {
		got, ok := m[key]
		if !ok || !ScalarEqual(got, want) {
			return false
		}
	}
	return true
}

// ScalarEqual compares two metadata scalars. Numbers compare by value so an
// int written at ingest equals the float64 read back from JSON.
func ScalarEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// SourceSummary describes one ingested document for listings.
type SourceSummary struct {
	Source     string `json:"filename"`
	DocumentId string `json:"document_id"`
	FileType   string `json:"file_type"`
	ChunkId    string `json:"id"`
}

// EmbeddingInfo is a debug view of a stored row.
type EmbeddingInfo struct {
	Id           string    `json:"id"`
	Source       string    `json:"source"`
	HasEmbedding bool      `json:"has_embedding"`
	Length       int       `json:"embedding_length"`
	Preview      []float32 `json:"embedding_preview"`
}

type Page struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

type DocType string

var PDF DocType = "pdf"
var DOCX DocType = "docx"
var DOC DocType = "doc"
var TXT DocType = "txt"
var MD DocType = "md"
var RTF DocType = "rtf"
var ODT DocType = "odt"
var ERR DocType = "error"
