package models

import "fmt"

// Chunk represents one window of a document as stored in the vector index.
type Chunk struct {
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
	FileName   string `json:"file_name"`
	Content    string `json:"content"`
}

// IngestResult is what the upload endpoint reports back.
type IngestResult struct {
	DocID         string    `json:"doc_id"`
	IndexedChunks int       `json:"indexed_chunks"`
	Findings      []Finding `json:"findings"`
	SavedPath     string    `json:"-"`
}

const (
	MetaDocID      = "doc_id"
	MetaChunkIndex = "chunk_index"
	MetaFileName   = "file_name"
	MetaKind       = "kind"

	KindFindings = "findings"
)

func ChunkRecordID(docID string, index int) string {
	return fmt.Sprintf("%s_%d", docID, index)
}

func FindingsRecordID(docID string) string {
	return docID + "_findings"
}
