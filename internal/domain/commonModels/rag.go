package commonModels

// Scope restricts retrieval to one document. DocumentId wins over Source,
// Source wins over UseLatest.
type Scope struct {
	DocumentId string `json:"document_id,omitempty"`
	Source     string `json:"source,omitempty"`
	UseLatest  bool   `json:"use_latest"`
}

type Question struct {
	Text       string `json:"question"`
	MaxResults int    `json:"max_results"`
	UseTools   bool   `json:"use_tools"`
	Scope      Scope  `json:"scope"`
}

// ToolInvocation records one tool call made while answering. Never persisted.
type ToolInvocation struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result"`
}

// Answer is the packaged result of one question. TokensUsed is an estimate
// derived from character counts, not a tokenizer count.
type Answer struct {
	Answer     string            `json:"answer"`
	Retrieved  []RetrievalResult `json:"retrieved"`
	ToolCalls  []ToolInvocation  `json:"tool_calls,omitempty"`
	TokensUsed int               `json:"tokens_used"`
}

// Upload is a document on local disk waiting to be ingested.
type Upload struct {
	Filename string
	Path     string
}

type IngestResult struct {
	DocumentId string   `json:"document_id"`
	Filename   string   `json:"filename"`
	ChunkCount int      `json:"chunk_count"`
	ChunkIds   []string `json:"chunk_ids,omitempty"`
}
