package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"riskbot/internal/chromemdb"
	"riskbot/internal/db"
	"riskbot/internal/embedding"
	"riskbot/internal/models"
)

// Store owns the vector collection and the registry that maps documents to
// their records. All reads go through record ids, never a collection scan.
type Store struct {
	vectors  *chromemdb.VectorDBManager
	registry *db.Registry
	embedder embeddings.Embedder
}

func NewStore(vectors *chromemdb.VectorDBManager, registry *db.Registry, embedder embeddings.Embedder) *Store {
	return &Store{vectors: vectors, registry: registry, embedder: embedder}
}

func (s *Store) Open(ctx context.Context) error {
	return s.vectors.Open(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return errors.Join(s.vectors.Close(ctx), s.registry.Close())
}

// Vectors exposes the underlying collection manager for snapshot exports.
func (s *Store) Vectors() *chromemdb.VectorDBManager {
	return s.vectors
}

func (s *Store) Registry() *db.Registry {
	return s.registry
}

// IndexChunks embeds and stores the chunks of docID, replacing anything the
// document had before, findings included. Blank chunks are skipped but keep
// their index, so indices may have gaps. It returns the number of stored chunks.
func (s *Store) IndexChunks(ctx context.Context, docID, fileName string, chunks []string) (int, error) {
	var batch []models.Chunk
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			continue
		}
		batch = append(batch, models.Chunk{DocID: docID, ChunkIndex: i, FileName: fileName, Content: c})
	}

	vectors, err := embedding.GenerateEmbedding(ctx, s.embedder, batch)
	if err != nil {
		return 0, err
	}

	if err := s.purge(ctx, docID); err != nil {
		return 0, err
	}

	docs := make([]chromemdb.Document, len(batch))
	refs := make([]db.ChunkRef, len(batch))
	for i, c := range batch {
		id := models.ChunkRecordID(docID, c.ChunkIndex)
		docs[i] = chromemdb.Document{
			ID:      id,
			Content: c.Content,
			Metadata: map[string]string{
				models.MetaDocID:      docID,
				models.MetaChunkIndex: strconv.Itoa(c.ChunkIndex),
				models.MetaFileName:   fileName,
			},
			Embedding: vectors[i],
		}
		refs[i] = db.ChunkRef{RecordID: id, DocID: docID, ChunkIndex: c.ChunkIndex}
	}

	if err := s.vectors.CreateDocs(ctx, docs); err != nil {
		return 0, err
	}
	if err := s.registry.ReplaceChunks(ctx, docID, refs); err != nil {
		return 0, fmt.Errorf("register chunks: %w", err)
	}
	doc, err := s.registry.GetDocument(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("lookup document: %w", err)
	}
	if doc == nil {
		doc = &db.Document{ID: docID}
	}
	doc.FileName = fileName
	doc.ChunkCount = len(batch)
	doc.HasFindings = false
	if err := s.registry.UpsertDocument(ctx, doc); err != nil {
		return 0, fmt.Errorf("register document: %w", err)
	}

	log.Info().Str("doc_id", docID).Int("chunks", len(batch)).Int("skipped", len(chunks)-len(batch)).Msg("Indexed document")
	return len(batch), nil
}

// SetDocumentPath records where the original upload was saved.
func (s *Store) SetDocumentPath(ctx context.Context, docID, path string) error {
	doc, err := s.registry.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s is not registered", docID)
	}
	doc.Path = path
	return s.registry.UpsertDocument(ctx, doc)
}

// PutFindings stores findings as one JSON record, replacing the previous one.
func (s *Store) PutFindings(ctx context.Context, docID string, findings []models.Finding) error {
	if findings == nil {
		findings = []models.Finding{}
	}
	payload, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("encode findings: %w", err)
	}

	vec, err := s.embedder.EmbedQuery(ctx, string(payload))
	if err != nil {
		return fmt.Errorf("embed findings: %w", err)
	}

	id := models.FindingsRecordID(docID)
	if err := s.vectors.DeleteByIDs(ctx, id); err != nil {
		return err
	}
	err = s.vectors.CreateDocs(ctx, []chromemdb.Document{{
		ID:      id,
		Content: string(payload),
		Metadata: map[string]string{
			models.MetaDocID: docID,
			models.MetaKind:  models.KindFindings,
		},
		Embedding: vec,
	}})
	if err != nil {
		return err
	}
	if err := s.registry.MarkFindings(ctx, docID); err != nil {
		return fmt.Errorf("mark findings: %w", err)
	}
	return nil
}

// DeleteDocument removes every record of docID from both stores.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	if err := s.purge(ctx, docID); err != nil {
		return err
	}
	return s.registry.DeleteDocument(ctx, docID)
}

func (s *Store) purge(ctx context.Context, docID string) error {
	ids, err := s.registry.ChunkRecordIDs(ctx, docID)
	if err != nil {
		return fmt.Errorf("lookup records of %s: %w", docID, err)
	}
	ids = append(ids, models.FindingsRecordID(docID))
	return s.vectors.DeleteByIDs(ctx, ids...)
}
