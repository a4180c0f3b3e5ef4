package index

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"riskbot/internal/models"
)

// LoadChunks returns the stored chunks of docID in chunk order. An unknown id
// yields an empty slice.
func (s *Store) LoadChunks(ctx context.Context, docID string) ([]models.Chunk, error) {
	ids, err := s.registry.ChunkRecordIDs(ctx, docID)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(ids))
	for _, id := range ids {
		d, ok, err := s.vectors.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Warn().Str("doc_id", docID).Str("record_id", id).Msg("Registered chunk missing from collection")
			continue
		}
		idx, _ := strconv.Atoi(d.Metadata[models.MetaChunkIndex])
		chunks = append(chunks, models.Chunk{
			DocID:      docID,
			ChunkIndex: idx,
			FileName:   d.Metadata[models.MetaFileName],
			Content:    d.Content,
		})
	}
	return chunks, nil
}

// LoadContext joins the chunk texts of docID with newlines. Overlapping text
// between neighbouring chunks is kept.
func (s *Store) LoadContext(ctx context.Context, docID string) (string, error) {
	chunks, err := s.LoadChunks(ctx, docID)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n"), nil
}

// LoadFindings reads the findings record of docID. The bool is false when the
// document has none. A corrupt record decodes to an empty list.
func (s *Store) LoadFindings(ctx context.Context, docID string) ([]models.Finding, bool, error) {
	d, ok, err := s.vectors.GetByID(ctx, models.FindingsRecordID(docID))
	if err != nil || !ok {
		return nil, false, err
	}
	findings := []models.Finding{}
	if err := json.Unmarshal([]byte(d.Content), &findings); err != nil {
		log.Warn().Err(err).Str("doc_id", docID).Msg("Corrupt findings record")
		return []models.Finding{}, true, nil
	}
	return findings, true, nil
}
