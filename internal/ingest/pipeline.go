package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"riskbot/internal/config"
	"riskbot/internal/helper"
	"riskbot/internal/index"
	"riskbot/internal/metrics"
	"riskbot/internal/models"
	"riskbot/internal/parser"
)

// Detector tags sensitive spans of an indexed document.
type Detector interface {
	Detect(ctx context.Context, docID string) []models.Finding
}

// Pipeline saves an upload, extracts and chunks its text and indexes it.
// With a Detector set, findings are extracted right after indexing.
type Pipeline struct {
	store        *index.Store
	detector     Detector
	dataDir      string
	chunkSize    int
	chunkOverlap int
}

func NewPipeline(cfg *config.Config, store *index.Store, detector Detector) *Pipeline {
	return &Pipeline{
		store:        store,
		detector:     detector,
		dataDir:      cfg.Server.DataDir,
		chunkSize:    cfg.RAG.ChunkSize,
		chunkOverlap: cfg.RAG.ChunkOverlap,
	}
}

// Ingest stores r as {data_dir}/{doc_id}{ext} and indexes it under a fresh
// doc id. Unsupported extensions fail before anything is written; any later
// failure removes the saved upload and its sidecar.
func (p *Pipeline) Ingest(ctx context.Context, fileName string, r io.Reader) (models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !parser.IsSupported(ext) {
		return models.IngestResult{}, fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, ext)
	}

	docID, err := helper.GenerateUUID()
	if err != nil {
		return models.IngestResult{}, err
	}
	if err := helper.CreateFolder(p.dataDir); err != nil {
		return models.IngestResult{}, err
	}

	path := filepath.Join(p.dataDir, docID+ext)
	if err := saveFile(path, r); err != nil {
		discard(path)
		return models.IngestResult{}, err
	}
	log.Info().Str("doc_id", docID).Str("file", fileName).Str("path", path).Msg("Saved upload")

	result, err := p.process(ctx, docID, fileName, path)
	if err != nil {
		discard(path, path+".txt")
		return models.IngestResult{}, err
	}
	return result, nil
}

// IngestFile indexes a file already on disk. An empty docID gets a fresh one;
// an existing one is re-indexed in place.
func (p *Pipeline) IngestFile(ctx context.Context, path, docID string) (models.IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !parser.IsSupported(ext) {
		return models.IngestResult{}, fmt.Errorf("%w: %q", parser.ErrUnsupportedFormat, ext)
	}
	if docID == "" {
		id, err := helper.GenerateUUID()
		if err != nil {
			return models.IngestResult{}, err
		}
		docID = id
	}
	return p.process(ctx, docID, filepath.Base(path), path)
}

func (p *Pipeline) process(ctx context.Context, docID, fileName, path string) (models.IngestResult, error) {
	text, err := parser.ExtractText(path)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("extract %s: %w", fileName, err)
	}

	// sidecar for debugging what the model actually sees
	if err := os.WriteFile(path+".txt", []byte(text), 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write extracted text")
	}

	chunks, err := parser.ChunkText(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return models.IngestResult{}, err
	}

	n, err := p.store.IndexChunks(ctx, docID, fileName, chunks)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("index %s: %w", fileName, err)
	}
	metrics.IndexedChunks.Add(float64(n))
	if err := p.store.SetDocumentPath(ctx, docID, path); err != nil {
		log.Warn().Err(err).Str("doc_id", docID).Msg("Failed to record document path")
	}

	result := models.IngestResult{
		DocID:         docID,
		IndexedChunks: n,
		Findings:      []models.Finding{},
		SavedPath:     path,
	}
	if p.detector != nil {
		if findings := p.detector.Detect(ctx, docID); findings != nil {
			result.Findings = findings
		}
	}
	return result, nil
}

func discard(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove upload")
		}
	}
}

func saveFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
