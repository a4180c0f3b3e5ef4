package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"riskbot/internal/config"
)

// Document is one record of the collection: a chunk or a findings blob.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db             *chromem.DB
	collection     *chromem.Collection
	embed          chromem.EmbeddingFunc
	collectionName string
	inMemory       bool
	compress       bool
	encryptionKey  string
	exportPath     string
}

// NewVectorDBManager opens the database described by ragConfig. embed is used
// only for records added without a precomputed vector.
func NewVectorDBManager(ragConfig *config.RAGConfig, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if ragConfig.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(ragConfig.DBPath, ragConfig.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	return &VectorDBManager{
		db:             db,
		embed:          embed,
		collectionName: ragConfig.CollectionName,
		inMemory:       ragConfig.InMemory,
		compress:       ragConfig.Compress,
		encryptionKey:  ragConfig.EncryptionKey,
		exportPath:     ragConfig.ExportPath,
	}, nil
}

// Open loads the snapshot (in-memory mode with an export path, when the file
// exists) and binds the collection.
func (m *VectorDBManager) Open(ctx context.Context) error {
	if m.inMemory && m.exportPath != "" {
		if _, err := os.Stat(m.exportPath); err == nil {
			if err := m.Import(ctx); err != nil {
				return err
			}
			log.Info().Str("path", m.exportPath).Msg("Imported vector snapshot")
		}
	}
	_, err := m.GetOrCreateCollection()
	return err
}

// Close writes the snapshot when running in memory with an export path.
// Persistent databases are already on disk; without an export path an
// in-memory collection is discarded.
func (m *VectorDBManager) Close(ctx context.Context) error {
	if !m.inMemory || m.exportPath == "" || m.collection == nil {
		return nil
	}
	return m.Export(ctx)
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection() (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(m.collectionName, nil, m.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// add multiple documents
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []Document) error {
	if len(documents) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(documents))
	for i, d := range documents {
		docs[i] = chromem.Document{
			ID:        d.ID,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
		}
	}

	err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// GetByID returns the record with id, or false when there is none.
func (m *VectorDBManager) GetByID(ctx context.Context, id string) (Document, bool, error) {
	if id == "" {
		return Document{}, false, errors.New("id is required")
	}
	// chromem reports a missing id as an error
	d, err := m.collection.GetByID(ctx, id)
	if err != nil {
		log.Debug().Err(err).Str("id", id).Msg("Record not found")
		return Document{}, false, nil
	}
	return Document{
		ID:        d.ID,
		Content:   d.Content,
		Metadata:  d.Metadata,
		Embedding: d.Embedding,
	}, true, nil
}

// DeleteByIDs removes the given records. Unknown ids are ignored.
func (m *VectorDBManager) DeleteByIDs(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := m.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("failed to delete %d records: %w", len(ids), err)
	}
	return nil
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	err := m.db.DeleteCollection(m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	m.collection = nil
	return nil
}

// export to file
func (m *VectorDBManager) Export(ctx context.Context) error {
	return m.ExportTo(ctx, m.exportPath)
}

// ExportTo writes the collection to path, encrypted when a key is configured.
func (m *VectorDBManager) ExportTo(_ context.Context, path string) error {
	if m.collection == nil {
		return errors.New("collection is required")
	}
	if path == "" {
		return errors.New("export path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export folder: %w", err)
	}

	log.Debug().Str("collection", m.collectionName).Str("path", path).
		Bool("compress", m.compress).Bool("encrypted", m.encryptionKey != "").Msg("Exporting collection")
	err := m.db.ExportToFile(path, m.compress, m.encryptionKey, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// import from file
func (m *VectorDBManager) Import(_ context.Context) error {
	err := m.db.ImportFromFile(m.exportPath, m.encryptionKey, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	return nil
}
