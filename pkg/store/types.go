package store

// RetrievedChunk is one scored piece of document context returned by the
// retriever for a single query. Chunks are ephemeral: produced per query,
// never persisted.
type RetrievedChunk struct {
	ChunkId        string  `json:"chunk_id"`
	DocumentId     string  `json:"document_id"`
	Content        string  `json:"content"`
	SourceFileName string  `json:"source_file_name"`
	Score          float64 `json:"score"`
}

// AnswerFragment is the unit emitted by an answer stream. A stream for one
// answer ends with exactly one IsFinal fragment; once the confidence is
// resolved every fragment of that answer carries the same value.
//
// Err is set instead of Text when the backend fails mid-stream; consumers must
// check it before using the fragment.
type AnswerFragment struct {
	Text       string  `json:"text"`
	IsFinal    bool    `json:"is_final"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
	Err        error   `json:"-"`
}

// Answer sources recorded on the durable chat log.
const (
	SourceQnA = "QnA"
	SourceRAG = "RAG"
)
